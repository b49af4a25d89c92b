package history

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/voxhold/voxhold/internal/config"
)

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestOpenEphemeral(t *testing.T) {
	cfg := config.HistoryConfig{RetentionMode: "ephemeral"}
	store, err := Open(context.Background(), cfg, newLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if err := store.Append(context.Background(), Session{ID: "s1"}); err != nil {
		t.Fatalf("append should be a no-op: %v", err)
	}
	sessions, err := store.ListRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if sessions != nil {
		t.Fatalf("expected no sessions in ephemeral mode, got %d", len(sessions))
	}
}

func TestAppendAndList(t *testing.T) {
	cfg := config.HistoryConfig{
		Path:          filepath.Join(t.TempDir(), "history.db"),
		RetentionMode: "session",
	}
	store, err := Open(context.Background(), cfg, newLogger())
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	started := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	session := Session{
		ID:              "session-123",
		StartedAt:       started,
		EndedAt:         started.Add(3 * time.Second),
		Cause:           "released",
		CapturedSamples: 48000,
		TrimmedSamples:  32000,
		Transcribed:     true,
		Language:        "en",
	}
	if err := store.Append(context.Background(), session); err != nil {
		t.Fatalf("append session: %v", err)
	}

	sessions, err := store.ListRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	got := sessions[0]
	if got.ID != "session-123" || got.Cause != "released" || !got.Transcribed {
		t.Fatalf("unexpected session %+v", got)
	}
	if !got.StartedAt.Equal(started) {
		t.Fatalf("unexpected start time %v", got.StartedAt)
	}
	if got.TrimmedSamples != 32000 {
		t.Fatalf("unexpected trimmed samples %d", got.TrimmedSamples)
	}
}

func TestPruneByDaysAndSessions(t *testing.T) {
	cfg := config.HistoryConfig{
		Path:          filepath.Join(t.TempDir(), "history.db"),
		RetentionMode: "persistent",
		RetentionDays: 1,
		MaxSessions:   1,
	}
	store, err := Open(context.Background(), cfg, newLogger())
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	old := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	if err := store.Append(context.Background(), Session{ID: "old", StartedAt: old, EndedAt: old, Cause: "released"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Append(context.Background(), Session{ID: "new", StartedAt: recent, EndedAt: recent, Cause: "watchdog-timeout"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	store.clock = func() time.Time { return time.Date(2026, 8, 3, 12, 0, 0, 0, time.UTC) }
	if err := store.Prune(context.Background()); err != nil {
		t.Fatalf("prune: %v", err)
	}

	sessions, err := store.ListRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != "new" {
		t.Fatalf("expected only the recent session, got %+v", sessions)
	}
}
