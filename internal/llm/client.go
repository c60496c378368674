package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/poochpalace/adoptions/internal/config"
	"github.com/poochpalace/adoptions/internal/tools"
	"github.com/poochpalace/adoptions/pkg/models"
	"github.com/rs/zerolog/log"
)

// maxToolRounds bounds how many times the provider may chain tool calls
// within one logical round-trip.
const maxToolRounds = 8

// providerTurn is one raw provider exchange inside a round-trip.
type providerTurn struct {
	content   string
	toolCalls []models.ToolCall
	usage     models.TokenUsage
}

// HTTPClient implements Client against OpenAI-compatible providers
// (openai, azure-openai, ollama) and Anthropic.
type HTTPClient struct {
	kind     string
	endpoint string
	model    string
	apiKey   string
	client   *http.Client
}

// NewHTTPClient creates a chat client from model configuration.
func NewHTTPClient(cfg config.ModelConfig) *HTTPClient {
	return &HTTPClient{
		kind:     cfg.Kind,
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: 120 * time.Second},
	}
}

// Chat executes one logical round-trip. While the provider answers with
// tool calls, the client dispatches them to the registered descriptors
// and feeds the results back; the loop ends when the provider produces
// plain text (or the round bound is hit).
func (c *HTTPClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	byName := make(map[string]tools.Descriptor, len(req.Tools))
	for _, d := range req.Tools {
		byName[d.Name] = d
	}

	msgs := make([]models.ChatMessage, len(req.Messages))
	copy(msgs, req.Messages)

	var invocations []models.ToolInvocation
	var usage models.TokenUsage

	for round := 0; round < maxToolRounds; round++ {
		turn, err := c.call(ctx, msgs, req.Tools)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}

		usage.InputTokens += turn.usage.InputTokens
		usage.OutputTokens += turn.usage.OutputTokens
		usage.TotalTokens += turn.usage.TotalTokens

		if len(turn.toolCalls) == 0 {
			return &ChatResponse{
				Content:         turn.content,
				ToolInvocations: invocations,
				Usage:           usage,
			}, nil
		}

		msgs = append(msgs, models.ChatMessage{
			Role:      models.RoleAssistant,
			Content:   turn.content,
			ToolCalls: turn.toolCalls,
		})

		for _, call := range turn.toolCalls {
			result := c.dispatch(ctx, byName, call)
			invocations = append(invocations, models.ToolInvocation{
				Name:      call.Function.Name,
				Arguments: json.RawMessage(call.Function.Arguments),
				Result:    result,
			})
			msgs = append(msgs, models.ChatMessage{
				Role:       models.RoleTool,
				Content:    result,
				ToolCallID: call.ID,
			})
		}
	}

	return nil, fmt.Errorf("%w: tool call rounds exceeded %d", ErrBackendUnavailable, maxToolRounds)
}

// dispatch runs one provider-issued tool call. Failures become textual
// results fed back to the model rather than errors: a bad invocation
// should not abort the round-trip.
func (c *HTTPClient) dispatch(ctx context.Context, byName map[string]tools.Descriptor, call models.ToolCall) string {
	d, ok := byName[call.Function.Name]
	if !ok {
		log.Warn().Str("tool", call.Function.Name).Msg("Provider requested unknown tool")
		return fmt.Sprintf("unknown tool: %s", call.Function.Name)
	}

	result, err := d.Handler(ctx, json.RawMessage(call.Function.Arguments))
	if err != nil {
		log.Warn().Err(err).Str("tool", call.Function.Name).Msg("Tool execution failed")
		return fmt.Sprintf("tool error: %s", err.Error())
	}
	return result
}

// call performs one raw provider exchange.
func (c *HTTPClient) call(ctx context.Context, msgs []models.ChatMessage, descs []tools.Descriptor) (*providerTurn, error) {
	switch c.kind {
	case "anthropic":
		return c.callAnthropic(ctx, msgs, descs)
	case "openai", "azure-openai", "ollama":
		return c.callOpenAI(ctx, msgs, descs)
	default:
		// Generic OpenAI-compatible endpoint
		return c.callOpenAI(ctx, msgs, descs)
	}
}
