package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/voxhold/voxhold/internal/config"
)

// Session is one completed recording session. Transcript text is deliberately
// not stored; the history exists to debug the recording lifecycle, not to
// archive what the user said.
type Session struct {
	ID              string
	StartedAt       time.Time
	EndedAt         time.Time
	Cause           string
	CapturedSamples int
	TrimmedSamples  int
	Transcribed     bool
	Language        string
}

// Store wraps a SQLite-backed session timeline.
type Store struct {
	db    *sql.DB
	cfg   config.HistoryConfig
	log   *slog.Logger
	clock func() time.Time
}

// Open initializes the history store according to config. In ephemeral mode
// nothing touches disk and every write is a no-op.
func Open(ctx context.Context, cfg config.HistoryConfig, log *slog.Logger) (*Store, error) {
	if cfg.RetentionMode == "ephemeral" {
		return &Store{cfg: cfg, log: log, clock: time.Now}, nil
	}

	dir := filepath.Dir(cfg.Path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", cfg.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &Store{db: db, cfg: cfg, log: log, clock: time.Now}

	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if cfg.VacuumOnStart {
		if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
			log.Warn("history vacuum failed", slog.String("error", err.Error()))
		}
	}

	if err := s.Prune(ctx); err != nil {
		log.Warn("history prune on start failed", slog.String("error", err.Error()))
	}

	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS sessions (
    session_id TEXT PRIMARY KEY,
    started_at TIMESTAMP NOT NULL,
    ended_at TIMESTAMP NOT NULL,
    cause TEXT NOT NULL,
    captured_samples INTEGER NOT NULL,
    trimmed_samples INTEGER NOT NULL,
    transcribed INTEGER NOT NULL,
    language TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at);
`
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

// Close releases underlying resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append records one completed session.
func (s *Store) Append(ctx context.Context, session Session) error {
	if s.cfg.RetentionMode == "ephemeral" || s.db == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions(session_id, started_at, ended_at, cause, captured_samples, trimmed_samples, transcribed, language)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.StartedAt.UTC().Format(time.RFC3339Nano),
		session.EndedAt.UTC().Format(time.RFC3339Nano), session.Cause,
		session.CapturedSamples, session.TrimmedSamples, session.Transcribed, session.Language)
	return err
}

// ListRecent retrieves up to limit sessions ordered newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]Session, error) {
	if s.cfg.RetentionMode == "ephemeral" || s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, started_at, ended_at, cause, captured_samples, trimmed_samples, transcribed, language
		 FROM sessions ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var started, ended string
		if err := rows.Scan(&sess.ID, &started, &ended, &sess.Cause,
			&sess.CapturedSamples, &sess.TrimmedSamples, &sess.Transcribed, &sess.Language); err != nil {
			return nil, err
		}
		if ts, err := time.Parse(time.RFC3339Nano, started); err == nil {
			sess.StartedAt = ts
		}
		if ts, err := time.Parse(time.RFC3339Nano, ended); err == nil {
			sess.EndedAt = ts
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// Prune applies configured retention, called on open and safe to re-run.
func (s *Store) Prune(ctx context.Context) error {
	if s.cfg.RetentionMode == "ephemeral" || s.db == nil {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if s.cfg.RetentionDays > 0 {
		cutoff := s.clock().Add(-time.Duration(s.cfg.RetentionDays) * 24 * time.Hour)
		if _, err = tx.ExecContext(ctx, `DELETE FROM sessions WHERE started_at < ?`,
			cutoff.UTC().Format(time.RFC3339Nano)); err != nil {
			return err
		}
	}
	if s.cfg.MaxSessions > 0 {
		_, err = tx.ExecContext(ctx, `DELETE FROM sessions WHERE session_id IN (
			SELECT session_id FROM sessions ORDER BY started_at DESC LIMIT -1 OFFSET ?
		)`, s.cfg.MaxSessions)
		if err != nil {
			return err
		}
	}
	err = tx.Commit()
	return err
}
