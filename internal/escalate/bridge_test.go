package escalate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type bridgeProvider struct {
	mu         sync.Mutex
	reply      string
	err        error
	calls      int
	lastModel  string
	lastPrompt string
}

func (p *bridgeProvider) Name() string { return "stub" }

func (p *bridgeProvider) Complete(_ context.Context, model, prompt string) (string, error) {
	p.mu.Lock()
	p.calls++
	p.lastModel = model
	p.lastPrompt = prompt
	p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	return p.reply, nil
}

func (p *bridgeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func TestBridgeHandlesPendingTask(t *testing.T) {
	store := newTestStore(t)
	provider := &bridgeProvider{reply: "remote wisdom"}
	bridge := NewBridge(store, provider, BridgeConfig{Model: "claude-test"}, nil)

	if err := store.Enqueue(Task{ID: "t1", Prompt: "hard question", Status: StatusPending}); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	bridge.drainPending(context.Background())

	if provider.calls != 1 {
		t.Fatalf("expected one provider call, got %d", provider.calls)
	}
	if provider.lastModel != "claude-test" {
		t.Fatalf("model not forwarded: %q", provider.lastModel)
	}
	if provider.lastPrompt != "hard question" {
		t.Fatalf("prompt not forwarded: %q", provider.lastPrompt)
	}

	resp, ok, err := store.Response("t1")
	if err != nil || !ok {
		t.Fatalf("response not written: ok=%v err=%v", ok, err)
	}
	if !resp.Success || resp.Response != "remote wisdom" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	tasks, _ := store.Tasks()
	if tasks[0].Status != StatusDone {
		t.Fatalf("task not marked done: %s", tasks[0].Status)
	}
}

func TestBridgeRecordsProviderFailure(t *testing.T) {
	store := newTestStore(t)
	provider := &bridgeProvider{err: errors.New("api unreachable")}
	bridge := NewBridge(store, provider, BridgeConfig{}, nil)

	if err := store.Enqueue(Task{ID: "t1", Prompt: "q", Status: StatusPending}); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	bridge.drainPending(context.Background())

	resp, ok, _ := store.Response("t1")
	if !ok {
		t.Fatal("failure response not written")
	}
	if resp.Success {
		t.Fatal("failed completion must not be marked success")
	}
	tasks, _ := store.Tasks()
	if tasks[0].Status != StatusFailed {
		t.Fatalf("task not marked failed: %s", tasks[0].Status)
	}
}

func TestBridgeSkipsNonPendingTasks(t *testing.T) {
	store := newTestStore(t)
	provider := &bridgeProvider{reply: "x"}
	bridge := NewBridge(store, provider, BridgeConfig{}, nil)

	_ = store.Enqueue(Task{ID: "t1", Status: StatusDone})
	_ = store.Enqueue(Task{ID: "t2", Status: StatusProcessing})
	_ = store.Enqueue(Task{ID: "t3", Status: StatusFailed})

	bridge.drainPending(context.Background())
	if provider.calls != 0 {
		t.Fatalf("non-pending tasks should be skipped, got %d calls", provider.calls)
	}
}

func TestBridgeRunStopsOnCancel(t *testing.T) {
	store := newTestStore(t)
	provider := &bridgeProvider{reply: "x"}
	bridge := NewBridge(store, provider, BridgeConfig{PollInterval: 5 * time.Millisecond}, nil)

	_ = store.Enqueue(Task{ID: "t1", Prompt: "q", Status: StatusPending})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- bridge.Run(ctx) }()

	deadline := time.After(time.Second)
	for provider.callCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("bridge never picked up the pending task")
		case <-time.After(2 * time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("bridge did not stop after cancel")
	}
}
