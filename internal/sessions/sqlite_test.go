package sessions

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/oakworth/steward/pkg/models"
)

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "steward.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	session := &models.Session{Title: "test", WorkDir: "/tmp", Metadata: map[string]any{"k": "v"}}
	if err := store.Create(ctx, session); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if session.ID == "" {
		t.Fatalf("create should assign an id")
	}

	got, err := store.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Title != "test" || got.WorkDir != "/tmp" {
		t.Fatalf("fields lost: %+v", got)
	}
	if got.Metadata["k"] != "v" {
		t.Fatalf("metadata lost: %+v", got.Metadata)
	}

	got.Model = "qwen2.5-coder:7b"
	if err := store.Update(ctx, got); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	updated, _ := store.Get(ctx, session.ID)
	if updated.Model != "qwen2.5-coder:7b" {
		t.Fatalf("update not persisted")
	}

	if err := store.Delete(ctx, session.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.Get(ctx, session.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestSQLiteStoreUpdateMissing(t *testing.T) {
	store := newSQLiteStore(t)
	err := store.Update(context.Background(), &models.Session{ID: "ghost"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Delete(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStoreMessages(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	session := &models.Session{}
	if err := store.Create(ctx, session); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	base := time.Now().Add(-time.Minute)
	for i, content := range []string{"one", "two", "three"} {
		msg := &models.Message{
			Role:      models.RoleUser,
			Content:   content,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := store.AppendMessage(ctx, session.ID, msg); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	history, err := store.History(ctx, session.ID, 0)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(history))
	}
	if history[0].Content != "one" || history[2].Content != "three" {
		t.Fatalf("history out of order: %v", history)
	}

	tail, err := store.History(ctx, session.ID, 2)
	if err != nil {
		t.Fatalf("limited history failed: %v", err)
	}
	if len(tail) != 2 || tail[0].Content != "two" {
		t.Fatalf("limit should keep the most recent messages, got %v", tail)
	}
}

func TestSQLiteStoreMessageMetaRoundtrip(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	session := &models.Session{}
	if err := store.Create(ctx, session); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	msg := &models.Message{
		Role:    models.RoleAssistant,
		Content: "done",
		Meta: &models.MessageMeta{
			Path:       "micro_model",
			Provider:   "ollama",
			Confidence: 0.85,
			LatencyMS:  120,
		},
	}
	if err := store.AppendMessage(ctx, session.ID, msg); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	history, err := store.History(ctx, session.ID, 0)
	if err != nil || len(history) != 1 {
		t.Fatalf("history failed: %v len=%d", err, len(history))
	}
	meta := history[0].Meta
	if meta == nil {
		t.Fatal("meta not persisted")
	}
	if meta.Path != "micro_model" || meta.Confidence != 0.85 || meta.LatencyMS != 120 {
		t.Fatalf("meta fields lost: %+v", meta)
	}
}

func TestSQLiteStoreAppendToMissingSession(t *testing.T) {
	store := newSQLiteStore(t)
	err := store.AppendMessage(context.Background(), "nope", &models.Message{Content: "x"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStoreList(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	first := &models.Session{Title: "first", CreatedAt: time.Now().Add(-2 * time.Hour)}
	second := &models.Session{Title: "second", CreatedAt: time.Now().Add(-time.Hour)}
	if err := store.Create(ctx, first); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := store.Create(ctx, second); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	sessions, err := store.List(ctx, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].Title != "second" {
		t.Fatalf("list should order by recency, got %q first", sessions[0].Title)
	}
}
