package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run records one attempt at generating the statistics artifact.
type Run struct {
	ID         string
	Started    time.Time
	LatestShow string
	Tour       string
	Degraded   bool
	Published  bool
	// ContentHash identifies the published content, ignoring its timestamp.
	ContentHash string
	Error       string
	Notified    time.Time
}

// NewRun starts a run record with a fresh ID.
func NewRun(started time.Time) Run {
	return Run{ID: uuid.NewString(), Started: started.UTC()}
}

func (s *Store) RecordRun(run Run) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO Run (id, started, latest_show, tour, degraded, published, content_hash, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Started, run.LatestShow, run.Tour, run.Degraded, run.Published, run.ContentHash, run.Error)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", run.ID, err)
	}
	return nil
}

func (s *Store) MarkNotified(id string, notified time.Time) error {
	_, err := s.db.Exec("UPDATE Run SET notified = ? WHERE id = ?", notified.UTC(), id)
	if err != nil {
		return fmt.Errorf("updating notified for run %s: %w", id, err)
	}
	return nil
}

// LastPublishedRun returns the most recent run that wrote an artifact, or a
// zero Run if there is none.
func (s *Store) LastPublishedRun() (Run, error) {
	row := s.db.QueryRow(runSelect + " WHERE published = 1 ORDER BY started DESC LIMIT 1")
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return Run{}, nil
	}
	if err != nil {
		return Run{}, fmt.Errorf("getting last published run: %w", err)
	}
	return run, nil
}

// ListRuns returns runs started in [start, end), newest first. A zero end
// means no upper bound; limit <= 0 means no limit.
func (s *Store) ListRuns(start, end time.Time, limit int) ([]Run, error) {
	if end.IsZero() {
		end = time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.Query(runSelect+" WHERE started >= ? AND started < ? ORDER BY started DESC LIMIT ?",
		start.UTC(), end.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

const runSelect = `SELECT id, started, latest_show, tour, degraded, published, content_hash, error, notified FROM Run`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run         Run
		contentHash sql.NullString
		runErr      sql.NullString
		notified    sql.NullTime
	)
	err := row.Scan(&run.ID, &run.Started, &run.LatestShow, &run.Tour, &run.Degraded, &run.Published,
		&contentHash, &runErr, &notified)
	if err != nil {
		return Run{}, err
	}
	run.ContentHash = contentHash.String
	run.Error = runErr.String
	run.Notified = notified.Time
	return run, nil
}
