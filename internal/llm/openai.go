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

// ── OpenAI-compatible wire (openai, azure-openai, ollama) ───

type openAIRequest struct {
	Model    string               `json:"model"`
	Messages []models.ChatMessage `json:"messages"`
	Tools    []openAITool         `json:"tools,omitempty"`
}

type openAITool struct {
	Type     string             `json:"type"`
	Function openAIToolFunction `json:"function"`
}

type openAIToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type openAIResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message struct {
			Content   string            `json:"content"`
			ToolCalls []models.ToolCall `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
		TotalTokens      int64 `json:"total_tokens"`
	} `json:"usage"`
}

func (c *HTTPClient) callOpenAI(ctx context.Context, msgs []models.ChatMessage, descs []tools.Descriptor) (*providerTurn, error) {
	endpoint := c.endpoint
	if endpoint == "" {
		if c.kind == "ollama" {
			endpoint = "http://localhost:11434"
		} else {
			endpoint = "https://api.openai.com/v1"
		}
	}

	if c.kind != "ollama" && c.apiKey == "" {
		return nil, fmt.Errorf("%s: api_key not configured", c.kind)
	}

	wireTools := make([]openAITool, len(descs))
	for i, d := range descs {
		wireTools[i] = openAITool{
			Type: "function",
			Function: openAIToolFunction{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  d.InputSchema(),
			},
		}
	}

	body, _ := json.Marshal(openAIRequest{Model: c.model, Messages: msgs, Tools: wireTools})

	url := endpoint + "/chat/completions"
	if c.kind == "ollama" {
		url = endpoint + "/v1/chat/completions"
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", c.kind, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	switch c.kind {
	case "azure-openai":
		httpReq.Header.Set("api-key", c.apiKey)
	case "ollama":
		// No auth
	default:
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", c.kind, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(httpResp.Body)
		return nil, fmt.Errorf("%s: status %d: %s", c.kind, httpResp.StatusCode, string(respBody))
	}

	var oaiResp openAIResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&oaiResp); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", c.kind, err)
	}

	turn := &providerTurn{
		usage: models.TokenUsage{
			InputTokens:  oaiResp.Usage.PromptTokens,
			OutputTokens: oaiResp.Usage.CompletionTokens,
			TotalTokens:  oaiResp.Usage.TotalTokens,
		},
	}
	if len(oaiResp.Choices) > 0 {
		turn.content = oaiResp.Choices[0].Message.Content
		turn.toolCalls = oaiResp.Choices[0].Message.ToolCalls
	}
	return turn, nil
}
