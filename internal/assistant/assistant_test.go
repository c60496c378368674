package assistant_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/poochpalace/adoptions/internal/assistant"
	"github.com/poochpalace/adoptions/internal/llm"
	"github.com/poochpalace/adoptions/internal/sessions"
	"github.com/poochpalace/adoptions/pkg/models"
)

// stubBackend replays canned answers and records every request.
type stubBackend struct {
	answer   string
	err      error
	requests []*llm.ChatRequest
}

func (s *stubBackend) Chat(_ context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	return &llm.ChatResponse{Content: s.answer}, nil
}

// stubRetriever returns fixed documents.
type stubRetriever struct {
	results []models.SearchResult
	err     error
}

func (s *stubRetriever) Retrieve(_ context.Context, _ string) ([]models.SearchResult, error) {
	return s.results, s.err
}

func docs(contents ...string) []models.SearchResult {
	out := make([]models.SearchResult, len(contents))
	for i, c := range contents {
		out[i] = models.SearchResult{Doc: models.VectorDoc{Content: c}, Score: 0.9}
	}
	return out
}

func TestAnswerAppendsExchangeOnSuccess(t *testing.T) {
	backend := &stubBackend{answer: "Prancer sounds perfect for you."}
	registry := sessions.NewRegistry()
	a := assistant.New(backend, &stubRetriever{results: docs("id: 1, name: Prancer, description: a chihuahua")}, registry)

	got, err := a.Answer(context.Background(), "alice", "Do you have a chihuahua?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if got != "Prancer sounds perfect for you." {
		t.Errorf("Answer() = %q", got)
	}

	history := registry.SessionFor("alice").History()
	if len(history) != 2 {
		t.Fatalf("session holds %d turns after one inquiry, want 2", len(history))
	}
	if history[0].Role != models.RoleUser || history[0].Content != "Do you have a chihuahua?" {
		t.Errorf("first turn = %+v, want the user question", history[0])
	}
	if history[1].Role != models.RoleAssistant || history[1].Content != "Prancer sounds perfect for you." {
		t.Errorf("second turn = %+v, want the assistant answer", history[1])
	}
}

func TestAnswerBackendFailureLeavesSessionUntouched(t *testing.T) {
	backend := &stubBackend{err: fmt.Errorf("%w: status 503", llm.ErrBackendUnavailable)}
	registry := sessions.NewRegistry()
	a := assistant.New(backend, &stubRetriever{results: docs("a dog")}, registry)

	_, err := a.Answer(context.Background(), "alice", "hello?")
	if !errors.Is(err, llm.ErrBackendUnavailable) {
		t.Fatalf("Answer() error = %v, want ErrBackendUnavailable", err)
	}
	if n := registry.SessionFor("alice").Len(); n != 0 {
		t.Errorf("session holds %d turns after failed inquiry, want 0", n)
	}
}

func TestAnswerRetrievalFailureIsBackendUnavailable(t *testing.T) {
	backend := &stubBackend{answer: "unused"}
	registry := sessions.NewRegistry()
	a := assistant.New(backend, &stubRetriever{err: errors.New("index offline")}, registry)

	_, err := a.Answer(context.Background(), "alice", "hello?")
	if !errors.Is(err, llm.ErrBackendUnavailable) {
		t.Fatalf("Answer() error = %v, want ErrBackendUnavailable", err)
	}
	if len(backend.requests) != 0 {
		t.Errorf("backend was called %d times despite retrieval failure, want 0", len(backend.requests))
	}
	if n := registry.SessionFor("alice").Len(); n != 0 {
		t.Errorf("session holds %d turns, want 0", n)
	}
}

func TestAnswerGroundsSystemPrompt(t *testing.T) {
	backend := &stubBackend{answer: "ok"}
	a := assistant.New(backend, &stubRetriever{results: docs("id: 2, name: Rex, description: a shepherd")}, sessions.NewRegistry())

	if _, err := a.Answer(context.Background(), "alice", "any shepherds?"); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	req := backend.requests[0]
	if req.Messages[0].Role != models.RoleSystem {
		t.Fatalf("first message role = %q, want system", req.Messages[0].Role)
	}
	sys := req.Messages[0].Content
	if !strings.Contains(sys, "Pooch Palace") {
		t.Error("system prompt is missing the agency identity")
	}
	if !strings.Contains(sys, "id: 2, name: Rex, description: a shepherd") {
		t.Error("system prompt is missing the retrieved context")
	}
	last := req.Messages[len(req.Messages)-1]
	if last.Role != models.RoleUser || last.Content != "any shepherds?" {
		t.Errorf("last message = %+v, want the user question", last)
	}
}

func TestAnswerEmptyRetrievalKeepsBarePrompt(t *testing.T) {
	backend := &stubBackend{answer: "Sorry, we have no dogs available right now."}
	a := assistant.New(backend, &stubRetriever{}, sessions.NewRegistry())

	if _, err := a.Answer(context.Background(), "alice", "any dogs at all?"); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	sys := backend.requests[0].Messages[0].Content
	if strings.Contains(sys, "Information about the dogs available:") {
		t.Error("system prompt carries a context section despite empty retrieval")
	}
	if !strings.Contains(sys, "polite response") {
		t.Error("system prompt is missing the decline instruction")
	}
}

func TestAnswerCarriesHistoryAcrossTurns(t *testing.T) {
	backend := &stubBackend{answer: "answer"}
	registry := sessions.NewRegistry()
	a := assistant.New(backend, &stubRetriever{results: docs("a dog")}, registry)
	ctx := context.Background()

	if _, err := a.Answer(ctx, "alice", "first question"); err != nil {
		t.Fatalf("first Answer() error = %v", err)
	}
	if _, err := a.Answer(ctx, "alice", "second question"); err != nil {
		t.Fatalf("second Answer() error = %v", err)
	}

	second := backend.requests[1]
	// system + 2 history turns + new question
	if len(second.Messages) != 4 {
		t.Fatalf("second request carries %d messages, want 4", len(second.Messages))
	}
	if second.Messages[1].Content != "first question" || second.Messages[2].Content != "answer" {
		t.Errorf("history turns = %+v, %+v", second.Messages[1], second.Messages[2])
	}
}

func TestAnswerIsolatesUsers(t *testing.T) {
	backend := &stubBackend{answer: "answer"}
	registry := sessions.NewRegistry()
	a := assistant.New(backend, &stubRetriever{results: docs("a dog")}, registry)
	ctx := context.Background()

	if _, err := a.Answer(ctx, "alice", "alice's question"); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if _, err := a.Answer(ctx, "bob", "bob's question"); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	bobReq := backend.requests[1]
	for _, m := range bobReq.Messages {
		if strings.Contains(m.Content, "alice's question") {
			t.Error("bob's request leaks alice's history")
		}
	}
	if n := registry.SessionFor("bob").Len(); n != 2 {
		t.Errorf("bob's session holds %d turns, want 2", n)
	}
}
