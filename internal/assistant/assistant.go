// Package assistant composes the inquiry pipeline: per-user memory,
// retrieval over the dog index, the appointment tool, and one round-trip
// to the reasoning backend.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/poochpalace/adoptions/internal/llm"
	"github.com/poochpalace/adoptions/internal/sessions"
	"github.com/poochpalace/adoptions/internal/tools"
	"github.com/poochpalace/adoptions/pkg/models"
	"github.com/rs/zerolog/log"
)

// systemPrompt is the assistant's fixed identity and scope. The grounding
// context is appended below it per inquiry; when there is none, the model
// is instructed to decline politely.
const systemPrompt = `You are an AI powered assistant to help people adopt a dog from the adoption
agency named Pooch Palace with locations in Antwerp, Seoul, Tokyo, Singapore, Paris,
Mumbai, New Delhi, Barcelona, San Francisco, and London. Information about the dogs available
will be presented below. If there is no information, then return a polite response suggesting we
don't have any dogs available.`

// Retriever fetches grounding context for a question.
type Retriever interface {
	Retrieve(ctx context.Context, question string) ([]models.SearchResult, error)
}

// Assistant answers adoption inquiries.
type Assistant struct {
	backend   llm.Client
	retriever Retriever
	registry  *sessions.Registry
	tools     []tools.Descriptor
}

// New creates an assistant. The session registry is injected so its
// lifecycle is owned by the caller, not this package.
func New(backend llm.Client, retriever Retriever, registry *sessions.Registry, descs ...tools.Descriptor) *Assistant {
	return &Assistant{
		backend:   backend,
		retriever: retriever,
		registry:  registry,
		tools:     descs,
	}
}

// Answer resolves the user's session, retrieves grounding context,
// assembles the request, and executes one backend round-trip. The
// question/answer pair is appended to the session only after the
// round-trip succeeds; on any failure the session is left untouched.
func (a *Assistant) Answer(ctx context.Context, userKey, question string) (string, error) {
	start := time.Now()
	session := a.registry.SessionFor(userKey)

	results, err := a.retriever.Retrieve(ctx, question)
	if err != nil {
		return "", fmt.Errorf("%w: retrieve context: %v", llm.ErrBackendUnavailable, err)
	}

	history := session.History()
	msgs := make([]models.ChatMessage, 0, len(history)+2)
	msgs = append(msgs, models.ChatMessage{
		Role:    models.RoleSystem,
		Content: groundedPrompt(results),
	})
	msgs = append(msgs, history...)
	msgs = append(msgs, models.ChatMessage{Role: models.RoleUser, Content: question})

	resp, err := a.backend.Chat(ctx, &llm.ChatRequest{Messages: msgs, Tools: a.tools})
	if err != nil {
		return "", err
	}

	session.AppendExchange(question, resp.Content)

	log.Info().
		Str("user", userKey).
		Int("context_docs", len(results)).
		Int("tool_invocations", len(resp.ToolInvocations)).
		Int64("tokens", resp.Usage.TotalTokens).
		Dur("elapsed", time.Since(start)).
		Msg("Inquiry answered")

	return resp.Content, nil
}

// groundedPrompt appends the retrieved documents to the system prompt so
// the backend answers from them rather than from its own priors.
func groundedPrompt(results []models.SearchResult) string {
	if len(results) == 0 {
		return systemPrompt
	}

	var sb strings.Builder
	sb.WriteString(systemPrompt)
	sb.WriteString("\n\nInformation about the dogs available:\n")
	for _, r := range results {
		sb.WriteString("- ")
		sb.WriteString(r.Doc.Content)
		sb.WriteByte('\n')
	}
	return sb.String()
}
