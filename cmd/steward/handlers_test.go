package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/oakworth/steward/internal/agent"
)

type fakeProvider struct {
	reply string
	err   error
	last  *agent.CompletionRequest
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Complete(_ context.Context, req *agent.CompletionRequest) (*agent.Completion, error) {
	p.last = req
	if p.err != nil {
		return nil, p.err
	}
	return &agent.Completion{Text: p.reply, Model: req.Model}, nil
}

func TestBridgeCompleterForwardsPrompt(t *testing.T) {
	provider := &fakeProvider{reply: "answer"}
	completer := bridgeCompleter{provider}

	text, err := completer.Complete(context.Background(), "claude-test", "hard question")
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if text != "answer" {
		t.Fatalf("wrong text: %q", text)
	}
	if completer.Name() != "fake" {
		t.Fatalf("name not forwarded: %q", completer.Name())
	}
	if provider.last.Model != "claude-test" {
		t.Fatalf("model not forwarded: %q", provider.last.Model)
	}
	if len(provider.last.Messages) != 1 || provider.last.Messages[0].Content != "hard question" {
		t.Fatalf("prompt not forwarded: %+v", provider.last.Messages)
	}
	if provider.last.Messages[0].Role != "user" {
		t.Fatalf("prompt should be a user message, got %q", provider.last.Messages[0].Role)
	}
}

func TestBridgeCompleterSurfacesErrors(t *testing.T) {
	provider := &fakeProvider{err: errors.New("api unreachable")}
	completer := bridgeCompleter{provider}

	_, err := completer.Complete(context.Background(), "m", "q")
	if err == nil || !strings.Contains(err.Error(), "api unreachable") {
		t.Fatalf("provider error not surfaced: %v", err)
	}
}
