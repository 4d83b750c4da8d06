package escalate

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	return store
}

func TestFileStoreEnqueueAndList(t *testing.T) {
	store := newTestStore(t)

	task := Task{ID: "t1", Prompt: "explain this", Provider: "claude", Status: StatusPending, Created: time.Now().UTC()}
	if err := store.Enqueue(task); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if err := store.Enqueue(Task{ID: "t2", Status: StatusPending}); err != nil {
		t.Fatalf("second enqueue failed: %v", err)
	}

	tasks, err := store.Tasks()
	if err != nil {
		t.Fatalf("tasks failed: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].ID != "t1" || tasks[1].ID != "t2" {
		t.Fatalf("append order not preserved: %v", tasks)
	}
	if tasks[0].Prompt != "explain this" || tasks[0].Status != StatusPending {
		t.Fatalf("task fields lost: %+v", tasks[0])
	}
}

func TestFileStoreUpdateStatus(t *testing.T) {
	store := newTestStore(t)
	if err := store.Enqueue(Task{ID: "t1", Status: StatusPending}); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	if err := store.UpdateStatus("t1", StatusProcessing); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	tasks, _ := store.Tasks()
	if tasks[0].Status != StatusProcessing {
		t.Fatalf("status not updated: %s", tasks[0].Status)
	}

	// A missing id is tolerated; workers race with queue trims.
	if err := store.UpdateStatus("ghost", StatusDone); err != nil {
		t.Fatalf("missing id should not error: %v", err)
	}
}

func TestFileStoreResponses(t *testing.T) {
	store := newTestStore(t)

	if _, ok, err := store.Response("t1"); err != nil || ok {
		t.Fatalf("expected no response yet, got ok=%v err=%v", ok, err)
	}

	want := Response{Response: "the answer", Success: true, Timestamp: time.Now().UTC().Truncate(time.Second)}
	if err := store.Respond("t1", want); err != nil {
		t.Fatalf("respond failed: %v", err)
	}

	got, ok, err := store.Response("t1")
	if err != nil || !ok {
		t.Fatalf("response lookup failed: ok=%v err=%v", ok, err)
	}
	if got.Response != "the answer" || !got.Success {
		t.Fatalf("response fields lost: %+v", got)
	}
}

func TestFileStoreCorruptFilesRecover(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "tasks.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "responses.json"), []byte("[]"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	if err := store.Enqueue(Task{ID: "t1", Status: StatusPending}); err != nil {
		t.Fatalf("enqueue over corrupt queue failed: %v", err)
	}
	tasks, err := store.Tasks()
	if err != nil || len(tasks) != 1 {
		t.Fatalf("corrupt queue not replaced: %v %v", tasks, err)
	}

	if _, ok, err := store.Response("t1"); err != nil || ok {
		t.Fatalf("corrupt response store should read as empty: ok=%v err=%v", ok, err)
	}
}

func TestFileStoreConcurrentWriters(t *testing.T) {
	store := newTestStore(t)

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Enqueue(Task{ID: string(rune('a' + n)), Status: StatusPending})
		}(i)
	}
	wg.Wait()

	tasks, err := store.Tasks()
	if err != nil {
		t.Fatalf("tasks failed: %v", err)
	}
	if len(tasks) != writers {
		t.Fatalf("lost writes under contention: got %d of %d", len(tasks), writers)
	}
}
