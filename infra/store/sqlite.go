// Package store is a local booking authority backed by SQLite. It holds the
// ground-station list and every contact reserved through it, so schedules can
// be planned and rehearsed without cloud access.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"

	"github.com/kilianp07/groundsched/core/authority"
	"github.com/kilianp07/groundsched/core/factory"
	"github.com/kilianp07/groundsched/core/model"
)

// Config locates the database and optional station seed data.
type Config struct {
	Path string `json:"path"`
	// SeedFile is a YAML document with a top-level "stations" list.
	SeedFile string           `json:"seed_file"`
	Stations []model.Resource `json:"stations"`
}

func init() {
	_ = authority.Register("sqlite", func(conf map[string]any) (authority.Authority, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return Open(context.Background(), c)
	})
}

// SQLiteStore implements authority.Authority.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database, ensures the schema and upserts the
// configured stations.
func Open(ctx context.Context, cfg Config) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one connection serialises the check-then-insert in Reserve
	db.SetMaxOpenConns(1)

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	for _, pragma := range []string{"PRAGMA foreign_keys = ON;", "PRAGMA busy_timeout = 5000;"} {
		if _, err := db.ExecContext(pctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if err := bootstrap(pctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	s := &SQLiteStore{db: db, now: time.Now}

	stations := cfg.Stations
	if cfg.SeedFile != "" {
		seeded, err := LoadSeedFile(cfg.SeedFile)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		stations = append(seeded, stations...)
	}
	if err := s.UpsertStations(pctx, stations...); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func bootstrap(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS stations (
  id       TEXT PRIMARY KEY,
  name     TEXT NOT NULL,
  locality TEXT NOT NULL DEFAULT '',
  rank     INTEGER NOT NULL
);`,
		`CREATE TABLE IF NOT EXISTS contacts (
  id          TEXT PRIMARY KEY,
  station_id  TEXT NOT NULL REFERENCES stations(id),
  start_ns    INTEGER NOT NULL,
  end_ns      INTEGER NOT NULL,
  status      TEXT NOT NULL,
  profile_ref TEXT NOT NULL DEFAULT '',
  target_ref  TEXT NOT NULL DEFAULT '',
  tags        JSON NOT NULL DEFAULT '{}',
  created_at  TEXT NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS contacts_station_time ON contacts(station_id, start_ns, end_ns);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap sqlite: %w", err)
		}
	}
	return nil
}

// LoadSeedFile reads stations from a YAML file.
func LoadSeedFile(path string) ([]model.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var doc struct {
		Stations []model.Resource `yaml:"stations"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return doc.Stations, nil
}

// UpsertStations inserts or renames stations. Directory order follows the
// order of first insertion.
func (s *SQLiteStore) UpsertStations(ctx context.Context, stations ...model.Resource) error {
	for _, st := range stations {
		if st.ID == "" {
			return fmt.Errorf("station without id")
		}
		name := st.Name
		if name == "" {
			name = st.ID
		}
		_, err := s.db.ExecContext(ctx, `INSERT INTO stations (id, name, locality, rank)
        VALUES (?, ?, ?, (SELECT COALESCE(MAX(rank), 0) + 1 FROM stations))
        ON CONFLICT(id) DO UPDATE SET name = excluded.name, locality = excluded.locality`,
			st.ID, name, st.Locality)
		if err != nil {
			return fmt.Errorf("upsert station %s: %w", st.ID, err)
		}
	}
	return nil
}

// ListResources returns every station in rank order.
func (s *SQLiteStore) ListResources(ctx context.Context, _ model.TimeWindow) ([]model.Resource, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, locality FROM stations ORDER BY rank`)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", authority.ErrDirectoryUnavailable, err)
	}
	defer func() { _ = rows.Close() }()
	var res []model.Resource
	for rows.Next() {
		var r model.Resource
		if err := rows.Scan(&r.ID, &r.Name, &r.Locality); err != nil {
			return nil, fmt.Errorf("%w: %w", authority.ErrDirectoryUnavailable, err)
		}
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", authority.ErrDirectoryUnavailable, err)
	}
	return res, nil
}

// ListBookings returns contacts on resourceID intersecting rng, ordered by start.
func (s *SQLiteStore) ListBookings(ctx context.Context, resourceID string, rng model.TimeWindow, statuses []model.BookingStatus) ([]model.Booking, error) {
	query := `SELECT id, station_id, start_ns, end_ns, status FROM contacts
        WHERE station_id = ? AND start_ns < ? AND end_ns > ?`
	args := []any{resourceID, rng.End.UnixNano(), rng.Start.UnixNano()}
	if len(statuses) > 0 {
		query += ` AND status IN (?` + strings.Repeat(", ?", len(statuses)-1) + `)`
		for _, st := range statuses {
			args = append(args, st.String())
		}
	}
	query += ` ORDER BY start_ns`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", authority.ErrConflictQueryUnavailable, err)
	}
	defer func() { _ = rows.Close() }()
	var res []model.Booking
	for rows.Next() {
		var (
			b            model.Booking
			start, end   int64
			statusString string
		)
		if err := rows.Scan(&b.ID, &b.ResourceID, &start, &end, &statusString); err != nil {
			return nil, fmt.Errorf("%w: %w", authority.ErrConflictQueryUnavailable, err)
		}
		b.Window = window(start, end)
		b.Status = model.ParseBookingStatus(statusString)
		res = append(res, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", authority.ErrConflictQueryUnavailable, err)
	}
	return res, nil
}

// Reserve records a SCHEDULED contact unless the station is unknown or
// already holds a live contact overlapping the window.
func (s *SQLiteStore) Reserve(ctx context.Context, in authority.ReserveInput) (string, error) {
	if !in.Window.Start.Before(in.Window.End) {
		return "", fmt.Errorf("%w: %v", authority.ErrRejected, model.ErrInvalidWindow)
	}
	tags, err := json.Marshal(in.Tags)
	if err != nil {
		return "", err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	var known int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM stations WHERE id = ?`, in.ResourceID).Scan(&known); err != nil {
		return "", err
	}
	if known == 0 {
		return "", fmt.Errorf("%w: unknown ground station %s", authority.ErrRejected, in.ResourceID)
	}
	live := model.LiveStatuses()
	args := []any{in.ResourceID, in.Window.End.UnixNano(), in.Window.Start.UnixNano()}
	for _, st := range live {
		args = append(args, st.String())
	}
	var clash string
	err = tx.QueryRowContext(ctx, `SELECT id FROM contacts
        WHERE station_id = ? AND start_ns < ? AND end_ns > ? AND status IN (?`+strings.Repeat(", ?", len(live)-1)+`) LIMIT 1`,
		args...).Scan(&clash)
	switch {
	case err == nil:
		return "", fmt.Errorf("%w: ground station %s no longer available (overlaps %s)", authority.ErrRejected, in.ResourceID, clash)
	case !errors.Is(err, sql.ErrNoRows):
		return "", err
	}

	id := uuid.NewString()
	_, err = tx.ExecContext(ctx, `INSERT INTO contacts
        (id, station_id, start_ns, end_ns, status, profile_ref, target_ref, tags, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, in.ResourceID, in.Window.Start.UnixNano(), in.Window.End.UnixNano(),
		model.StatusScheduled.String(), in.ProfileRef, in.TargetRef, string(tags),
		s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// Describe returns one contact.
func (s *SQLiteStore) Describe(ctx context.Context, id string) (model.BookingInfo, error) {
	var (
		info         model.BookingInfo
		start, end   int64
		statusString string
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, station_id, start_ns, end_ns, status FROM contacts WHERE id = ?`, id).
		Scan(&info.ID, &info.ResourceID, &start, &end, &statusString)
	if errors.Is(err, sql.ErrNoRows) {
		return model.BookingInfo{}, fmt.Errorf("%w: %s", authority.ErrNotFound, id)
	}
	if err != nil {
		return model.BookingInfo{}, err
	}
	info.Window = window(start, end)
	info.Status = model.ParseBookingStatus(statusString)
	return info, nil
}

// SetStatus moves a contact to a new state, as the AWS service would when a
// pass executes or is cancelled.
func (s *SQLiteStore) SetStatus(ctx context.Context, id string, status model.BookingStatus) error {
	res, err := s.db.ExecContext(ctx, `UPDATE contacts SET status = ? WHERE id = ?`, status.String(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", authority.ErrNotFound, id)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func window(startNS, endNS int64) model.TimeWindow {
	return model.TimeWindow{Start: time.Unix(0, startNS).UTC(), End: time.Unix(0, endNS).UTC()}
}

var _ authority.Authority = (*SQLiteStore)(nil)
