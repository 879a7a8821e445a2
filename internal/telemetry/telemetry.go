// Package telemetry records engagement runs to SQLite: one row per run and
// one row per agent per tick, for offline review and charting.
package telemetry

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ava5627/oort-ai/internal/capability"
	"github.com/ava5627/oort-ai/internal/radar"
	"github.com/ava5627/oort-ai/internal/scenario"
	"github.com/ava5627/oort-ai/internal/timeutil"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrUnknownRun is returned when ticks are recorded against a run that was
// never created.
var ErrUnknownRun = errors.New("unknown run")

// Recorder is a telemetry database handle.
type Recorder struct {
	*sql.DB
	clock timeutil.Clock
}

// Run describes one recorded engagement.
type Run struct {
	ID        string
	Scenario  string
	Seed      int64
	CreatedAt time.Time
}

// Open opens (creating if needed) the database at path. Call MigrateUp
// before recording.
func Open(path string) (*Recorder, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open telemetry db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open telemetry db: %w", err)
	}
	return &Recorder{DB: db, clock: timeutil.RealClock{}}, nil
}

// SetClock replaces the clock used to stamp runs.
func (r *Recorder) SetClock(c timeutil.Clock) { r.clock = c }

// MigrateUp applies all pending schema migrations. It is a no-op on an
// up-to-date database.
func (r *Recorder) MigrateUp() error {
	m, err := r.newMigrate()
	if err != nil {
		return err
	}
	// m is not closed: that would close the shared *sql.DB.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// Version returns the applied schema version, or 0 before any migration.
func (r *Recorder) Version() (uint, error) {
	m, err := r.newMigrate()
	if err != nil {
		return 0, err
	}
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if dirty {
		return v, fmt.Errorf("schema version %d is dirty", v)
	}
	return v, nil
}

func (r *Recorder) newMigrate() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(r.DB, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = migrateLogger{}
	return m, nil
}

type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...interface{}) {
	log.Printf("[telemetry migrate] "+format, v...)
}

func (migrateLogger) Verbose() bool { return false }

// CreateRun registers a new run and returns it.
func (r *Recorder) CreateRun(name string, seed int64) (Run, error) {
	run := Run{
		ID:        fmt.Sprintf("run_%s", uuid.NewString()),
		Scenario:  name,
		Seed:      seed,
		CreatedAt: r.clock.Now().UTC(),
	}
	_, err := r.Exec(`INSERT INTO runs (run_id, scenario, seed, created_unix_ns) VALUES (?, ?, ?, ?)`,
		run.ID, run.Scenario, run.Seed, run.CreatedAt.UnixNano())
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// Runs lists recorded runs, oldest first.
func (r *Recorder) Runs() ([]Run, error) {
	rows, err := r.Query(`SELECT run_id, scenario, seed, created_unix_ns FROM runs ORDER BY created_unix_ns, run_id`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var run Run
		var ns int64
		if err := rows.Scan(&run.ID, &run.Scenario, &run.Seed, &ns); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.CreatedAt = time.Unix(0, ns).UTC()
		out = append(out, run)
	}
	return out, rows.Err()
}

// RecordTicks appends records to a run in a single transaction.
func (r *Recorder) RecordTicks(runID string, records []scenario.Record) error {
	tx, err := r.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM runs WHERE run_id = ?`, runID).Scan(&exists); err != nil {
		return fmt.Errorf("look up run: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("record ticks for %s: %w", runID, ErrUnknownRun)
	}

	stmt, err := tx.Prepare(`INSERT INTO ticks (
		run_id, tick, body_id, class, team, x, y, vx, vy, heading, mode,
		has_belief, target_id, belief_x, belief_y, truth_x, truth_y,
		range_m, los_rate, shots, boost, detonate
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.Exec(
			runID, rec.Tick, rec.BodyID, int(rec.Class), rec.Team,
			rec.Position.X, rec.Position.Y, rec.Velocity.X, rec.Velocity.Y, rec.Heading, string(rec.Mode),
			rec.HasBelief, rec.TargetID, rec.Belief.X, rec.Belief.Y, rec.Truth.X, rec.Truth.Y,
			rec.Range, rec.LOSRate, rec.Shots, rec.Boost, rec.Detonate,
		)
		if err != nil {
			return fmt.Errorf("insert tick %d for %s: %w", rec.Tick, rec.BodyID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Ticks returns a run's records ordered by tick, then body.
func (r *Recorder) Ticks(runID string) ([]scenario.Record, error) {
	rows, err := r.Query(`SELECT
		tick, body_id, class, team, x, y, vx, vy, heading, mode,
		has_belief, target_id, belief_x, belief_y, truth_x, truth_y,
		range_m, los_rate, shots, boost, detonate
	FROM ticks WHERE run_id = ? ORDER BY tick, body_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query ticks: %w", err)
	}
	defer rows.Close()

	var out []scenario.Record
	for rows.Next() {
		var (
			rec   scenario.Record
			class int
			mode  string
		)
		err := rows.Scan(
			&rec.Tick, &rec.BodyID, &class, &rec.Team,
			&rec.Position.X, &rec.Position.Y, &rec.Velocity.X, &rec.Velocity.Y, &rec.Heading, &mode,
			&rec.HasBelief, &rec.TargetID, &rec.Belief.X, &rec.Belief.Y, &rec.Truth.X, &rec.Truth.Y,
			&rec.Range, &rec.LOSRate, &rec.Shots, &rec.Boost, &rec.Detonate,
		)
		if err != nil {
			return nil, fmt.Errorf("scan tick: %w", err)
		}
		rec.Class = capability.ClassFromByte(byte(class))
		rec.Mode = radar.Mode(mode)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Summary is a per-body digest of a run.
type Summary struct {
	BodyID    string
	Ticks     int
	Shots     int
	MinRange  float64
	MeanError float64
	Detonated bool
}

// Summarize digests records per body, in first-seen order.
func Summarize(records []scenario.Record) []Summary {
	index := map[string]int{}
	var out []Summary
	errCount := map[string]int{}
	for _, rec := range records {
		i, ok := index[rec.BodyID]
		if !ok {
			i = len(out)
			index[rec.BodyID] = i
			out = append(out, Summary{BodyID: rec.BodyID, MinRange: rec.Range})
		}
		s := &out[i]
		s.Ticks++
		s.Shots = rec.Shots
		s.Detonated = s.Detonated || rec.Detonate
		if rec.Range > 0 && (s.MinRange == 0 || rec.Range < s.MinRange) {
			s.MinRange = rec.Range
		}
		if rec.HasBelief && rec.Range > 0 {
			n := errCount[rec.BodyID] + 1
			errCount[rec.BodyID] = n
			s.MeanError += (rec.BeliefError() - s.MeanError) / float64(n)
		}
	}
	return out
}
