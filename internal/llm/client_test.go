package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/poochpalace/adoptions/internal/config"
	"github.com/poochpalace/adoptions/internal/llm"
	"github.com/poochpalace/adoptions/internal/tools"
	"github.com/poochpalace/adoptions/pkg/models"
)

type wireMessage struct {
	Role       string            `json:"role"`
	Content    string            `json:"content"`
	ToolCalls  []models.ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string            `json:"tool_call_id,omitempty"`
}

type wireRequest struct {
	Model    string        `json:"model"`
	Messages []wireMessage `json:"messages"`
	Tools    []struct {
		Type     string `json:"type"`
		Function struct {
			Name string `json:"name"`
		} `json:"function"`
	} `json:"tools"`
}

func newClient(t *testing.T, endpoint string) *llm.HTTPClient {
	t.Helper()
	return llm.NewHTTPClient(config.ModelConfig{
		Kind:     "openai",
		Endpoint: endpoint,
		Model:    "gpt-4o-mini",
		APIKey:   "test-key",
	})
}

func completionJSON(content string, toolCalls string) string {
	calls := toolCalls
	if calls == "" {
		calls = "null"
	}
	return `{
		"id": "chatcmpl-1",
		"choices": [{"message": {"content": ` + marshalString(content) + `, "tool_calls": ` + calls + `}}],
		"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
	}`
}

func marshalString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestChatPlainAnswer(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionJSON("Prancer is a neurotic chihuahua.", "")))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL)
	resp, err := c.Chat(context.Background(), &llm.ChatRequest{
		Messages: []models.ChatMessage{
			{Role: models.RoleSystem, Content: "You are an assistant."},
			{Role: models.RoleUser, Content: "Tell me about Prancer"},
		},
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if resp.Content != "Prancer is a neurotic chihuahua." {
		t.Errorf("Chat() content = %q", resp.Content)
	}
	if len(resp.ToolInvocations) != 0 {
		t.Errorf("Chat() recorded %d tool invocations, want 0", len(resp.ToolInvocations))
	}
	if resp.Usage.TotalTokens != 15 {
		t.Errorf("Chat() total tokens = %d, want 15", resp.Usage.TotalTokens)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization header = %q, want bearer key", gotAuth)
	}
}

func TestChatDispatchesToolCalls(t *testing.T) {
	var round atomic.Int32
	var secondRequest wireRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if round.Add(1) == 1 {
			w.Write([]byte(completionJSON("", `[{
				"id": "call_1",
				"type": "function",
				"function": {"name": "schedule_appointment", "arguments": "{\"dogId\": 7, \"dogName\": \"Rex\"}"}
			}]`)))
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&secondRequest); err != nil {
			t.Errorf("decode second request: %v", err)
		}
		w.Write([]byte(completionJSON("Rex is booked for pickup.", "")))
	}))
	defer srv.Close()

	var handlerDogID int
	var handlerDogName string
	desc := tools.Descriptor{
		Name:        "schedule_appointment",
		Description: "book a pickup",
		Parameters: []tools.Parameter{
			{Name: "dogId", Type: "integer", Required: true},
			{Name: "dogName", Type: "string", Required: true},
		},
		Handler: func(_ context.Context, args json.RawMessage) (string, error) {
			var in struct {
				DogID   int    `json:"dogId"`
				DogName string `json:"dogName"`
			}
			if err := json.Unmarshal(args, &in); err != nil {
				return "", err
			}
			handlerDogID = in.DogID
			handlerDogName = in.DogName
			return "2025-06-04T09:00:00Z", nil
		},
	}

	c := newClient(t, srv.URL)
	resp, err := c.Chat(context.Background(), &llm.ChatRequest{
		Messages: []models.ChatMessage{{Role: models.RoleUser, Content: "Book Rex"}},
		Tools:    []tools.Descriptor{desc},
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	if handlerDogID != 7 || handlerDogName != "Rex" {
		t.Errorf("handler invoked with (%d, %q), want (7, Rex)", handlerDogID, handlerDogName)
	}
	if resp.Content != "Rex is booked for pickup." {
		t.Errorf("Chat() content = %q", resp.Content)
	}
	if len(resp.ToolInvocations) != 1 {
		t.Fatalf("Chat() recorded %d tool invocations, want 1", len(resp.ToolInvocations))
	}
	inv := resp.ToolInvocations[0]
	if inv.Name != "schedule_appointment" || inv.Result != "2025-06-04T09:00:00Z" {
		t.Errorf("invocation = %+v", inv)
	}

	// The second provider request must carry the assistant tool-call turn
	// followed by the tool result.
	last := secondRequest.Messages[len(secondRequest.Messages)-1]
	if last.Role != string(models.RoleTool) || last.Content != "2025-06-04T09:00:00Z" || last.ToolCallID != "call_1" {
		t.Errorf("last message of second request = %+v, want tool result for call_1", last)
	}
	prev := secondRequest.Messages[len(secondRequest.Messages)-2]
	if prev.Role != string(models.RoleAssistant) || len(prev.ToolCalls) != 1 {
		t.Errorf("second-to-last message = %+v, want assistant tool-call turn", prev)
	}
}

func TestChatUnknownToolBecomesTextualResult(t *testing.T) {
	var round atomic.Int32
	var secondRequest wireRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if round.Add(1) == 1 {
			w.Write([]byte(completionJSON("", `[{
				"id": "call_1",
				"type": "function",
				"function": {"name": "launch_rocket", "arguments": "{}"}
			}]`)))
			return
		}
		json.NewDecoder(r.Body).Decode(&secondRequest)
		w.Write([]byte(completionJSON("I cannot do that.", "")))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL)
	resp, err := c.Chat(context.Background(), &llm.ChatRequest{
		Messages: []models.ChatMessage{{Role: models.RoleUser, Content: "Launch"}},
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if resp.Content != "I cannot do that." {
		t.Errorf("Chat() content = %q", resp.Content)
	}
	last := secondRequest.Messages[len(secondRequest.Messages)-1]
	if last.Content != "unknown tool: launch_rocket" {
		t.Errorf("tool result = %q, want unknown-tool report", last.Content)
	}
}

func TestChatServerErrorIsBackendUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newClient(t, srv.URL)
	_, err := c.Chat(context.Background(), &llm.ChatRequest{
		Messages: []models.ChatMessage{{Role: models.RoleUser, Content: "hello"}},
	})
	if err == nil {
		t.Fatal("Chat() error = nil, want backend failure")
	}
	if !errors.Is(err, llm.ErrBackendUnavailable) {
		t.Errorf("Chat() error = %v, want ErrBackendUnavailable", err)
	}
}

func TestChatUnreachableEndpointIsBackendUnavailable(t *testing.T) {
	c := newClient(t, "http://127.0.0.1:1")
	_, err := c.Chat(context.Background(), &llm.ChatRequest{
		Messages: []models.ChatMessage{{Role: models.RoleUser, Content: "hello"}},
	})
	if !errors.Is(err, llm.ErrBackendUnavailable) {
		t.Errorf("Chat() error = %v, want ErrBackendUnavailable", err)
	}
}

func TestChatMissingAPIKey(t *testing.T) {
	c := llm.NewHTTPClient(config.ModelConfig{Kind: "openai", Model: "gpt-4o-mini"})
	_, err := c.Chat(context.Background(), &llm.ChatRequest{
		Messages: []models.ChatMessage{{Role: models.RoleUser, Content: "hello"}},
	})
	if !errors.Is(err, llm.ErrBackendUnavailable) {
		t.Errorf("Chat() error = %v, want ErrBackendUnavailable", err)
	}
}
