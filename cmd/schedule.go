package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/groundsched/app"
	"github.com/kilianp07/groundsched/config"
	"github.com/kilianp07/groundsched/core/model"
)

type scheduleOptions struct {
	satelliteARN      string
	startTime         string
	durationSeconds   int64
	missionProfileARN string
	region            string
	dryRun            bool
	horizon           time.Duration
	step              time.Duration
	output            string
}

var scheduleOpts scheduleOptions

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Find the first free contact window and reserve it",
	Long: `Searches every ground station in directory order for the first slot free
of existing contacts and reserves it. With --dry-run the window is only
reported. Exits non-zero when no window exists or the reservation fails.`,
	RunE: runSchedule,
}

func init() {
	f := scheduleCmd.Flags()
	f.StringVar(&scheduleOpts.satelliteARN, "satellite-arn", "", "satellite to schedule")
	f.StringVar(&scheduleOpts.startTime, "start-time", "", "preferred start (ISO-8601, UTC when no zone)")
	f.Int64Var(&scheduleOpts.durationSeconds, "duration", 0, "contact duration in seconds")
	f.StringVar(&scheduleOpts.missionProfileARN, "mission-profile-arn", "", "mission profile (default reservation.mission_profile_arn)")
	f.StringVar(&scheduleOpts.region, "region", "", "AWS region for the authority and CloudWatch")
	f.BoolVar(&scheduleOpts.dryRun, "dry-run", false, "search only, do not reserve")
	f.DurationVar(&scheduleOpts.horizon, "horizon", 0, "search horizon (default search.horizon)")
	f.DurationVar(&scheduleOpts.step, "step", 0, "search step (default search.step)")
	f.StringVarP(&scheduleOpts.output, "output", "o", outputText, "output format: text, json or yaml")
	_ = scheduleCmd.MarkFlagRequired("satellite-arn")
	_ = scheduleCmd.MarkFlagRequired("start-time")
	_ = scheduleCmd.MarkFlagRequired("duration")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	req, err := scheduleOpts.request()
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyRegion(cfg, scheduleOpts.region)
	return withService(cfg, func(ctx context.Context, svc *app.Service) error {
		res, err := svc.Schedule(ctx, req)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), scheduleOpts.output, res, func(w io.Writer) error {
			return printSchedule(w, res)
		})
	})
}

func (o scheduleOptions) request() (app.ScheduleRequest, error) {
	start, err := model.ParseTime(o.startTime)
	if err != nil {
		return app.ScheduleRequest{}, fmt.Errorf("--start-time: %w", err)
	}
	return app.ScheduleRequest{
		Search: model.SearchRequest{
			Target:         o.satelliteARN,
			PreferredStart: start,
			Duration:       time.Duration(o.durationSeconds) * time.Second,
			Horizon:        o.horizon,
			Step:           o.step,
		},
		MissionProfile: o.missionProfileARN,
		DryRun:         o.dryRun,
	}, nil
}

// applyRegion overrides the region of the authority and of CloudWatch sinks.
func applyRegion(cfg *config.Config, region string) {
	if region == "" {
		return
	}
	setRegion := func(conf map[string]any) map[string]any {
		if conf == nil {
			conf = map[string]any{}
		}
		conf["region"] = region
		return conf
	}
	if cfg.Authority.Type == "groundstation" {
		cfg.Authority.Conf = setRegion(cfg.Authority.Conf)
	}
	for i, s := range cfg.Metrics.Sinks {
		if s.Type == "cloudwatch" {
			cfg.Metrics.Sinks[i].Conf = setRegion(s.Conf)
		}
	}
}

func printSchedule(w io.Writer, res app.ScheduleResult) error {
	c := res.Candidate
	station := c.Resource.Name
	if station == "" {
		station = c.Resource.ID
	}
	if _, err := fmt.Fprintf(w, "window: %s on %s\n", c.Window, station); err != nil {
		return err
	}
	if res.DryRun {
		_, err := fmt.Fprintln(w, "dry run: contact not reserved")
		return err
	}
	_, err := fmt.Fprintf(w, "contact: %s\n", res.ContactID)
	return err
}
