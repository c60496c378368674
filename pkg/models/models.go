// Package models holds the shared data types for the Pooch Palace
// adoption concierge: catalog records, chat messages, vector documents,
// and the wire-level tool call types exchanged with model providers.
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ── Catalog ─────────────────────────────────────────────────

// Dog is a single adoptable dog from the catalog. Records are owned by
// the catalog store; this service only reads them.
type Dog struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Owner       string `json:"owner"`
	Description string `json:"description"`
}

// DocumentText renders the searchable text for a dog. The owner field is
// deliberately left out of the indexed text.
func (d Dog) DocumentText() string {
	return fmt.Sprintf("id: %d, name: %s, description: %s", d.ID, d.Name, d.Description)
}

// ── Chat ────────────────────────────────────────────────────

// Chat message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ChatMessage is one turn in a conversation. ToolCalls and ToolCallID
// are only populated on the wire segments of a tool round-trip.
type ChatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is a provider-issued request to invoke a registered tool,
// in OpenAI wire form.
type ToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function ToolCallFunction `json:"function"`
}

// ToolCallFunction names the tool and carries its JSON-encoded arguments.
type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolInvocation records one tool execution performed during a chat
// round-trip. Ephemeral — surfaced on the response for observability.
type ToolInvocation struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
	Result    string          `json:"result"`
}

// TokenUsage is the provider-reported token accounting for one round-trip.
type TokenUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
	TotalTokens  int64 `json:"total_tokens"`
}

// ── Vector Store ────────────────────────────────────────────

// VectorDoc is one embedded document in the semantic index. Documents
// are write-once projections of catalog records and are never mutated
// after insertion.
type VectorDoc struct {
	ID        string            `json:"id"`
	Content   string            `json:"content"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Vector    []float64         `json:"vector,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// SearchResult is a scored document returned from a similarity search.
type SearchResult struct {
	Doc   VectorDoc `json:"doc"`
	Score float64   `json:"score"`
}
