package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sketchsync/sketchboard/board/canvas"
	"github.com/sketchsync/sketchboard/board/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Sketchboard",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Sketchboard - MCP Interface

This is a thin client that proxies all requests to the REST API server.

Sketchboard hosts shared drawing sessions. Browsers connect over websocket
and draw together; each session keeps a bounded stroke history with
per-user undo.

AVAILABLE TOOLS:
- list_sessions: List all active drawing sessions
- get_history: Get the stroke history of a session
- clear_session: Wipe a session's canvas (all connected clients are told)
- delete_session: Remove a session entirely
- board_instructions: Get an overview of how sessions and strokes work`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active drawing sessions with action, stroke, and user counts",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_history",
		Description: "Get the stroke history of a drawing session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "clear_session",
		Description: "Wipe a session's canvas. Every connected client receives a clear event.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleClearSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "delete_session",
		Description: "Delete a drawing session and its stored history",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleDeleteSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "board_instructions",
		Description: "Get an overview of sessions, strokes, and history semantics",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleBoardInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	err := c.apiCall("GET", "/api/sessions", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		result += fmt.Sprintf("- %s (actions: %d, strokes: %d, users: %d)\n",
			s.ID, s.Actions, s.Strokes, s.Users)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var response struct {
		SessionID string          `json:"sessionId"`
		History   []canvas.Action `json:"history"`
	}

	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/history", sessionID), nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatHistory(response.SessionID, response.History)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleClearSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/clear", sessionID), nil, nil)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Session %s cleared", sessionID)), nil
}

func (c *Client) handleDeleteSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var response map[string]string
	err := c.apiCall("DELETE", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(response["message"]), nil
}

func (c *Client) handleBoardInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Sketchboard - How It Works

SESSIONS:
A session is a shared canvas identified by an id. Browsers land on "/" and
are redirected to /session/{id}; visiting someone else's session link puts
you on the same canvas. Sessions are created on first use, there is no
explicit create step.

STROKES AND ACTIONS:
Every drawn line segment is an action carrying a strokeId and the drawing
user's id. One continuous pen-down-to-pen-up motion shares a strokeId
across all of its segments. History is bounded by a configured number of
distinct strokes; when the bound is exceeded, the oldest whole strokes are
evicted.

UNDO:
Undo is per user: it removes the user's most recent stroke in its entirety
(every segment sharing the strokeId). Other users' strokes are untouched.
After an undo the full history is rebroadcast so every client redraws.

PERSISTENCE:
Session histories are persisted to disk with a short debounce, so a burst
of drawing results in a single durable write. Histories survive server
restarts.

TOOLS:
- list_sessions shows what is live right now
- get_history dumps a session's actions
- clear_session wipes a canvas for everyone connected
- delete_session removes the session and its stored history`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatHistory(sessionID string, history []canvas.Action) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Session %s: %d actions\n\n", sessionID, len(history)))

	if len(history) == 0 {
		b.WriteString("(empty canvas)")
		return b.String()
	}

	for i, action := range history {
		b.WriteString(fmt.Sprintf("%d. stroke=%s user=%s segment=%s\n",
			i+1, action.StrokeID, action.UserID, compactSegment(action.Segment)))
	}
	return b.String()
}

// compactSegment renders a segment payload on one line, truncated so a long
// history stays readable.
func compactSegment(segment json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, segment); err != nil {
		return string(segment)
	}
	s := buf.String()
	if len(s) > 120 {
		s = s[:117] + "..."
	}
	return s
}
