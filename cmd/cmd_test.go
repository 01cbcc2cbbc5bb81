package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/groundsched/app"
	"github.com/kilianp07/groundsched/config"
	"github.com/kilianp07/groundsched/core/factory"
	"github.com/kilianp07/groundsched/core/model"
	"github.com/kilianp07/groundsched/core/search"
)

const memoryConfig = `
authority:
  type: memory
  conf:
    stations:
      - id: gs1
        name: Ohio 1
reservation:
  mission_profile_arn: arn:profile/default
logging:
  level: error
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	scheduleOpts = scheduleOptions{}
	contactsOpts = contactsOptions{}
	cfgPath, logLevel = "", ""
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestScheduleDryRunJSON(t *testing.T) {
	path := writeConfig(t, memoryConfig)
	out, err := execute(t, "schedule", "-c", path, "--satellite-arn", "arn:sat/1",
		"--start-time", "2025-01-27T10:00:00Z", "--duration", "600", "--dry-run", "-o", "json")
	require.NoError(t, err)

	var res app.ScheduleResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.DryRun)
	assert.Equal(t, "gs1", res.Candidate.Resource.ID)
	assert.Equal(t, time.Date(2025, 1, 27, 10, 0, 0, 0, time.UTC), res.Candidate.Window.Start)
}

func TestScheduleCommitsText(t *testing.T) {
	path := writeConfig(t, memoryConfig)
	out, err := execute(t, "schedule", "-c", path, "--satellite-arn", "arn:sat/1",
		"--start-time", "2025-01-27T10:00:00", "--duration", "60")
	require.NoError(t, err)
	assert.Contains(t, out, "on Ohio 1")
	assert.Contains(t, out, "contact: mem-000001")
}

func TestScheduleMalformedStart(t *testing.T) {
	_, err := execute(t, "schedule", "--satellite-arn", "arn:sat/1", "--start-time", "noon", "--duration", "60")
	assert.ErrorIs(t, err, model.ErrMalformedRequest)
}

func TestScheduleInfeasible(t *testing.T) {
	path := writeConfig(t, `
authority:
  type: memory
reservation:
  mission_profile_arn: arn:profile/default
logging:
  level: error
`)
	_, err := execute(t, "schedule", "-c", path, "--satellite-arn", "arn:sat/1",
		"--start-time", "2025-01-27T10:00:00Z", "--duration", "60")
	assert.ErrorIs(t, err, search.ErrInfeasible)
}

func TestVersionYAML(t *testing.T) {
	out, err := execute(t, "version", "-o", "yaml")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "version: dev"))
	assert.Contains(t, out, "- memory")
}

func TestRenderUnknownFormat(t *testing.T) {
	err := render(&bytes.Buffer{}, "xml", nil, nil)
	assert.Error(t, err)
}

func TestApplyRegion(t *testing.T) {
	cfg := &config.Config{
		Authority: factory.ModuleConfig{Type: "groundstation"},
	}
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "cloudwatch"}, {Type: "prometheus"}}
	applyRegion(cfg, "eu-west-1")
	assert.Equal(t, "eu-west-1", cfg.Authority.Conf["region"])
	assert.Equal(t, "eu-west-1", cfg.Metrics.Sinks[0].Conf["region"])
	assert.Nil(t, cfg.Metrics.Sinks[1].Conf)

	applyRegion(cfg, "")
	assert.Equal(t, "eu-west-1", cfg.Authority.Conf["region"])
}

func TestContactsQuery(t *testing.T) {
	now := time.Date(2025, 1, 27, 10, 0, 0, 0, time.UTC)
	rng, st, err := contactsOptions{}.query(now, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, model.TimeWindow{Start: now, End: now.Add(time.Hour)}, rng)
	assert.Nil(t, st)

	_, st, err = contactsOptions{statuses: []string{"scheduled", "EXECUTING"}}.query(now, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []model.BookingStatus{model.StatusScheduled, model.StatusExecuting}, st)

	_, _, err = contactsOptions{statuses: []string{"nope"}}.query(now, time.Hour)
	assert.Error(t, err)
	_, _, err = contactsOptions{from: "2025-01-27T10:00:00Z", to: "2025-01-27T09:00:00Z"}.query(now, time.Hour)
	assert.Error(t, err)
}
