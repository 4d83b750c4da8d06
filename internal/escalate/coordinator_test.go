package escalate

import (
	"context"
	"testing"
	"time"
)

func newTestCoordinator(t *testing.T) (*Coordinator, *FileStore) {
	t.Helper()
	store := newTestStore(t)
	coord := NewCoordinator(store, CoordinatorConfig{
		Provider:     "claude",
		PollInterval: 5 * time.Millisecond,
		Timeout:      50 * time.Millisecond,
	}, nil, nil)
	return coord, store
}

func TestResolveKeepsConfidentAnswer(t *testing.T) {
	coord, store := newTestCoordinator(t)

	local := LocalResult{Text: "fine answer", Confidence: 0.8}
	final := coord.Resolve(context.Background(), "prompt", local, 0.6, Options{})
	if final.Escalated {
		t.Fatal("confident answer should not escalate")
	}
	if final.Text != "fine answer" || final.Confidence != 0.8 {
		t.Fatalf("local result altered: %+v", final)
	}

	tasks, _ := store.Tasks()
	if len(tasks) != 0 {
		t.Fatalf("no task should be enqueued, got %d", len(tasks))
	}
}

func TestResolveForceLocalSkipsQueue(t *testing.T) {
	coord, store := newTestCoordinator(t)

	local := LocalResult{Text: "shaky", Confidence: 0.1}
	final := coord.Resolve(context.Background(), "prompt", local, 0.6, Options{ForceLocal: true})
	if final.Escalated || final.Text != "shaky" {
		t.Fatalf("ForceLocal must keep the local result: %+v", final)
	}
	tasks, _ := store.Tasks()
	if len(tasks) != 0 {
		t.Fatalf("ForceLocal must not enqueue, got %d tasks", len(tasks))
	}
}

func TestResolveTimeoutFallsBackToLocal(t *testing.T) {
	coord, store := newTestCoordinator(t)

	local := LocalResult{Text: "best local guess", Confidence: 0.2}
	start := time.Now()
	final := coord.Resolve(context.Background(), "hard question", local, 0.6, Options{})
	elapsed := time.Since(start)

	if final.Escalated {
		t.Fatal("timed-out escalation must not be marked escalated")
	}
	if final.Text != "best local guess" || final.Confidence != 0.2 {
		t.Fatalf("timeout should return the local result unchanged: %+v", final)
	}
	if elapsed < 40*time.Millisecond {
		t.Fatalf("returned before the timeout window: %v", elapsed)
	}

	tasks, err := store.Tasks()
	if err != nil || len(tasks) != 1 {
		t.Fatalf("expected one enqueued task, got %v err=%v", tasks, err)
	}
	if tasks[0].Prompt != "hard question" || tasks[0].Provider != "claude" || tasks[0].Status != StatusPending {
		t.Fatalf("task fields wrong: %+v", tasks[0])
	}
}

func TestResolvePicksUpRemoteAnswer(t *testing.T) {
	store := newTestStore(t)
	coord := NewCoordinator(store, CoordinatorConfig{
		PollInterval: 5 * time.Millisecond,
		Timeout:      2 * time.Second,
	}, nil, nil)

	// A stand-in worker that answers whatever shows up in the queue.
	done := make(chan struct{})
	go func() {
		defer close(done)
		deadline := time.After(time.Second)
		for {
			select {
			case <-deadline:
				return
			case <-time.After(2 * time.Millisecond):
			}
			tasks, _ := store.Tasks()
			if len(tasks) == 0 {
				continue
			}
			_ = store.Respond(tasks[0].ID, Response{
				Response:  "remote answer",
				Success:   true,
				Timestamp: time.Now().UTC(),
			})
			return
		}
	}()

	local := LocalResult{Text: "weak", Confidence: 0.3}
	final := coord.Resolve(context.Background(), "prompt", local, 0.6, Options{})
	<-done

	if !final.Escalated {
		t.Fatal("remote answer should mark the result escalated")
	}
	if final.Text != "remote answer" {
		t.Fatalf("remote text not surfaced: %q", final.Text)
	}
	if final.Confidence != 1.0 {
		t.Fatalf("escalated confidence should be 1.0, got %v", final.Confidence)
	}
}

func TestResolveRemoteFailureKeepsLocal(t *testing.T) {
	store := newTestStore(t)
	coord := NewCoordinator(store, CoordinatorConfig{
		PollInterval: 5 * time.Millisecond,
		Timeout:      2 * time.Second,
	}, nil, nil)

	go func() {
		deadline := time.After(time.Second)
		for {
			select {
			case <-deadline:
				return
			case <-time.After(2 * time.Millisecond):
			}
			tasks, _ := store.Tasks()
			if len(tasks) == 0 {
				continue
			}
			_ = store.Respond(tasks[0].ID, Response{Success: false, Timestamp: time.Now().UTC()})
			return
		}
	}()

	local := LocalResult{Text: "local", Confidence: 0.1}
	final := coord.Resolve(context.Background(), "prompt", local, 0.6, Options{})
	if final.Escalated || final.Text != "local" {
		t.Fatalf("failed remote answer must fall back to local: %+v", final)
	}
}

func TestResolveForceRemoteIgnoresThreshold(t *testing.T) {
	coord, store := newTestCoordinator(t)

	local := LocalResult{Text: "already confident", Confidence: 0.95}
	final := coord.Resolve(context.Background(), "prompt", local, 0.6, Options{ForceRemote: true})
	// No worker is running, so the round trip times out and keeps local.
	if final.Escalated || final.Text != "already confident" {
		t.Fatalf("unexpected result: %+v", final)
	}
	tasks, _ := store.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("ForceRemote must enqueue even above threshold, got %d tasks", len(tasks))
	}
}

func TestResolveCancelledContext(t *testing.T) {
	store := newTestStore(t)
	coord := NewCoordinator(store, CoordinatorConfig{
		PollInterval: time.Hour,
		Timeout:      time.Hour,
	}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	local := LocalResult{Text: "local", Confidence: 0.1}
	final := coord.Resolve(ctx, "prompt", local, 0.6, Options{})
	if final.Escalated || final.Text != "local" {
		t.Fatalf("cancelled escalation must keep the local result: %+v", final)
	}
}
