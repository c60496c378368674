// Package llm is the client side of the reasoning backend. One Chat call
// is one logical round-trip: the provider may invoke registered tools any
// number of times before producing its final text, and the client
// dispatches those invocations transparently.
package llm

import (
	"context"
	"errors"

	"github.com/poochpalace/adoptions/internal/tools"
	"github.com/poochpalace/adoptions/pkg/models"
)

// ErrBackendUnavailable marks transport or provider failures. Callers
// check it with errors.Is; retries are their responsibility, not this
// package's.
var ErrBackendUnavailable = errors.New("reasoning backend unavailable")

// ChatRequest is one outbound round-trip: the assembled messages plus
// the capabilities the provider may invoke.
type ChatRequest struct {
	Messages []models.ChatMessage
	Tools    []tools.Descriptor
}

// ChatResponse is the final text of a round-trip plus a record of the
// tool invocations performed along the way.
type ChatResponse struct {
	Content         string
	ToolInvocations []models.ToolInvocation
	Usage           models.TokenUsage
}

// Client is the reasoning backend contract.
type Client interface {
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
}
