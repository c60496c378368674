// Package mcpserver exposes the concierge capabilities over the Model
// Context Protocol, so external agent hosts can schedule appointments
// and search the catalog without going through the chat pipeline.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/poochpalace/adoptions/internal/tools"
	"github.com/poochpalace/adoptions/pkg/models"
)

// Retriever abstracts semantic search for the MCP layer.
type Retriever interface {
	Retrieve(ctx context.Context, question string) ([]models.SearchResult, error)
}

// Deps holds dependencies for the MCP server.
type Deps struct {
	Scheduler *tools.Scheduler
	Retriever Retriever
}

// New creates an MCP server with the concierge tools registered.
func New(deps Deps) *server.MCPServer {
	s := server.NewMCPServer(
		"poochpalace-adoptions",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions("Pooch Palace adoption concierge — search adoptable dogs and schedule pickup appointments."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("schedule_appointment",
			mcp.WithDescription("Schedule an appointment to pick up or adopt a dog."),
			mcp.WithNumber("dogId", mcp.Description("The id of the dog"), mcp.Required()),
			mcp.WithString("dogName", mcp.Description("The name of the dog"), mcp.Required()),
		),
		mcpSchedule(deps),
	)

	s.AddTool(
		mcp.NewTool("search_dogs",
			mcp.WithDescription("Semantically search the adoptable dog catalog."),
			mcp.WithString("query", mcp.Description("Search query"), mcp.Required()),
		),
		mcpSearch(deps),
	)

	return s
}

func mcpSchedule(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dogID := req.GetInt("dogId", 0)
		dogName, err := req.RequireString("dogName")
		if err != nil {
			return mcpError("dogName is required"), nil
		}

		when := deps.Scheduler.Schedule(dogID, dogName)
		return mcpText(fmt.Sprintf("Appointment for %s (id %d) scheduled at %s", dogName, dogID, when)), nil
	}
}

func mcpSearch(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}

		results, err := deps.Retriever.Retrieve(ctx, query)
		if err != nil {
			return mcpError(fmt.Sprintf("search failed: %v", err)), nil
		}
		if len(results) == 0 {
			return mcpText("[]"), nil
		}

		type docResult struct {
			Content string  `json:"content"`
			Score   float64 `json:"score"`
		}
		out := make([]docResult, len(results))
		for i, r := range results {
			out[i] = docResult{Content: r.Doc.Content, Score: r.Score}
		}

		b, err := json.Marshal(out)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
