package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/poochpalace/adoptions/internal/tools"
	"github.com/poochpalace/adoptions/pkg/models"
)

// ── Anthropic messages wire ─────────────────────────────────

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
	Tools     []anthropicTool    `json:"tools,omitempty"`
}

type anthropicMessage struct {
	Role    string             `json:"role"`
	Content []anthropicContent `json:"content"`
}

// anthropicContent is one content block; which fields are set depends on
// Type ("text", "tool_use", "tool_result").
type anthropicContent struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   string          `json:"content,omitempty"`
}

type anthropicTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

type anthropicResponse struct {
	ID      string             `json:"id"`
	Content []anthropicContent `json:"content"`
	Usage   struct {
		InputTokens  int64 `json:"input_tokens"`
		OutputTokens int64 `json:"output_tokens"`
	} `json:"usage"`
}

func (c *HTTPClient) callAnthropic(ctx context.Context, msgs []models.ChatMessage, descs []tools.Descriptor) (*providerTurn, error) {
	endpoint := c.endpoint
	if endpoint == "" {
		endpoint = "https://api.anthropic.com"
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("anthropic: api_key not configured")
	}

	system, wireMsgs := toAnthropicMessages(msgs)

	wireTools := make([]anthropicTool, len(descs))
	for i, d := range descs {
		wireTools[i] = anthropicTool{
			Name:        d.Name,
			Description: d.Description,
			InputSchema: d.InputSchema(),
		}
	}

	body, _ := json.Marshal(anthropicRequest{
		Model:     c.model,
		MaxTokens: 4096,
		System:    system,
		Messages:  wireMsgs,
		Tools:     wireTools,
	})

	url := endpoint + "/v1/messages"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("anthropic: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic: request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(httpResp.Body)
		return nil, fmt.Errorf("anthropic: status %d: %s", httpResp.StatusCode, string(respBody))
	}

	var anthResp anthropicResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&anthResp); err != nil {
		return nil, fmt.Errorf("anthropic: decode response: %w", err)
	}

	turn := &providerTurn{
		usage: models.TokenUsage{
			InputTokens:  anthResp.Usage.InputTokens,
			OutputTokens: anthResp.Usage.OutputTokens,
			TotalTokens:  anthResp.Usage.InputTokens + anthResp.Usage.OutputTokens,
		},
	}
	for _, blk := range anthResp.Content {
		switch blk.Type {
		case "text":
			turn.content += blk.Text
		case "tool_use":
			turn.toolCalls = append(turn.toolCalls, models.ToolCall{
				ID:   blk.ID,
				Type: "function",
				Function: models.ToolCallFunction{
					Name:      blk.Name,
					Arguments: string(blk.Input),
				},
			})
		}
	}
	return turn, nil
}

// toAnthropicMessages converts the neutral message list to Anthropic's
// shape: system turns become the top-level system string, tool results
// become user-role tool_result blocks.
func toAnthropicMessages(msgs []models.ChatMessage) (string, []anthropicMessage) {
	var system string
	var out []anthropicMessage

	for _, m := range msgs {
		switch m.Role {
		case models.RoleSystem:
			if system != "" {
				system += "\n\n"
			}
			system += m.Content

		case models.RoleAssistant:
			var blocks []anthropicContent
			if m.Content != "" {
				blocks = append(blocks, anthropicContent{Type: "text", Text: m.Content})
			}
			for _, call := range m.ToolCalls {
				blocks = append(blocks, anthropicContent{
					Type:  "tool_use",
					ID:    call.ID,
					Name:  call.Function.Name,
					Input: json.RawMessage(call.Function.Arguments),
				})
			}
			out = append(out, anthropicMessage{Role: "assistant", Content: blocks})

		case models.RoleTool:
			out = append(out, anthropicMessage{Role: "user", Content: []anthropicContent{{
				Type:      "tool_result",
				ToolUseID: m.ToolCallID,
				Content:   m.Content,
			}}})

		default:
			out = append(out, anthropicMessage{Role: "user", Content: []anthropicContent{{
				Type: "text",
				Text: m.Content,
			}}})
		}
	}
	return system, out
}
