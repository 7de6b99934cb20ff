// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/sperling/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for session data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			subject TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			aborted INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS responses (
			session_id TEXT NOT NULL,
			experiment TEXT NOT NULL,
			trial INTEGER NOT NULL,
			response_ms INTEGER NOT NULL,
			correct TEXT NOT NULL,
			actual TEXT NOT NULL,
			n_correct INTEGER NOT NULL,
			cells INTEGER NOT NULL,
			PRIMARY KEY (session_id, experiment, trial)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_subject ON sessions(subject);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSession stores a session and its responses in one transaction.
func (s *Store) InsertSession(ctx context.Context, session model.SessionRecord, trials []model.TrialRecord) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	aborted := 0
	if session.Aborted {
		aborted = 1
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, subject, started_at, ended_at, aborted) VALUES (?, ?, ?, ?, ?)`,
		session.ID,
		session.Subject,
		session.StartedAt.Format(time.RFC3339Nano),
		session.EndedAt.Format(time.RFC3339Nano),
		aborted,
	); err != nil {
		return err
	}

	if len(trials) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO responses (session_id, experiment, trial, response_ms, correct, actual, n_correct, cells)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, tr := range trials {
			if _, err = stmt.ExecContext(ctx, session.ID, tr.Experiment, tr.Trial, tr.ResponseTime.Milliseconds(),
				tr.Correct, tr.Actual, tr.NCorrect, tr.Cells); err != nil {
				return err
			}
		}
	}

	err = tx.Commit()
	return err
}

// ListSessions returns session aggregates filtered by stats config, oldest first.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Subject != "" {
		clauses = append(clauses, "s.subject = ?")
		args = append(args, cfg.Subject)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "s.ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT s.id, s.subject, s.ended_at, s.aborted,
		COUNT(r.trial), COALESCE(SUM(r.n_correct), 0), COALESCE(SUM(r.cells), 0), COALESCE(SUM(r.response_ms), 0)
		FROM sessions s
		LEFT JOIN responses r ON r.session_id = s.id
		WHERE %s
		GROUP BY s.id
		ORDER BY s.ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var endedAt string
		var aborted int
		if err := rows.Scan(&agg.SessionID, &agg.Subject, &endedAt, &aborted,
			&agg.Trials, &agg.Correct, &agg.Cells, &agg.ResponseMs); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		agg.Aborted = aborted != 0
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListExperimentAggregates sums responses per experiment across sessions.
func (s *Store) ListExperimentAggregates(ctx context.Context, sessionIDs []string) ([]model.ExperimentAggregate, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(sessionIDs))
	args := make([]any, len(sessionIDs))
	for i, id := range sessionIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT experiment, COUNT(*), SUM(n_correct), SUM(cells), SUM(response_ms)
		FROM responses
		WHERE session_id IN (%s)
		GROUP BY experiment
		ORDER BY experiment`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.ExperimentAggregate
	for rows.Next() {
		var agg model.ExperimentAggregate
		if err := rows.Scan(&agg.Experiment, &agg.Trials, &agg.Correct, &agg.Cells, &agg.ResponseMs); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListResponses returns the stored responses of one session in trial order.
func (s *Store) ListResponses(ctx context.Context, sessionID string) ([]model.TrialRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT experiment, trial, response_ms, correct, actual, n_correct, cells
		 FROM responses
		 WHERE session_id = ?
		 ORDER BY rowid`, sessionID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.TrialRecord
	for rows.Next() {
		var tr model.TrialRecord
		var ms int64
		if err := rows.Scan(&tr.Experiment, &tr.Trial, &ms, &tr.Correct, &tr.Actual, &tr.NCorrect, &tr.Cells); err != nil {
			return nil, err
		}
		tr.ResponseTime = time.Duration(ms) * time.Millisecond
		result = append(result, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
