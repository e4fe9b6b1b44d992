package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/askouija/game/engine"
	"github.com/wricardo/askouija/game/service"
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
		baseURL: strings.TrimRight(baseURL, "/"),
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
		"Ask Ouija",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Ask Ouija - MCP Interface

This is a thin client that proxies all requests to the REST API server.

OBJECTIVE:
A mortal asks a question on a channel. You are the spirits: answer one capital
letter at a time. Every letter must keep the message spellable as a sequence of
dictionary words. Say goodbye when the message splits cleanly into words.

AVAILABLE TOOLS:
- ask_ouija: Open a board on a channel with a question
- tell_ouija: Offer one capital letter
- legal_letters: Letters that may come next (optionally filtered by a partial letter)
- goodbye: Close the board and reveal the answer
- get_board: Current board state
- list_boards: All open boards
- list_dictionaries: Available dictionaries
- game_instructions: Full rules and strategy`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	channelProp := map[string]any{
		"type":        "string",
		"description": "Channel the board lives on (case-insensitive)",
	}

	// Boards
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "ask_ouija",
		Description: "Ask the spirits a question, opening a board on the channel",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"channel_id": channelProp,
				"question": map[string]any{
					"type":        "string",
					"description": "The question for the spirits",
				},
				"dictionary": map[string]any{
					"type":        "string",
					"description": "Dictionary name (optional, defaults to the server default)",
				},
			},
			Required: []string{"channel_id", "question"},
		},
	}, c.handleAsk)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_board",
		Description: "Get the current state of a channel's board",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"channel_id": channelProp,
			},
			Required: []string{"channel_id"},
		},
	}, c.handleGetBoard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_boards",
		Description: "List all open boards",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"sort": map[string]any{
					"type":        "string",
					"enum":        []string{"created", "updated"},
					"description": "Sort field",
				},
				"order": map[string]any{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Sort order",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Maximum number of boards",
				},
			},
		},
	}, c.handleListBoards)

	// Spelling
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "tell_ouija",
		Description: "Move the planchette to one capital letter",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"channel_id": channelProp,
				"letter": map[string]any{
					"type":        "string",
					"description": "A single capital letter A-Z",
				},
			},
			Required: []string{"channel_id", "letter"},
		},
	}, c.handleTell)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "legal_letters",
		Description: "List the letters that keep the message spellable",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"channel_id": channelProp,
				"partial": map[string]any{
					"type":        "string",
					"description": "Optional partial input; a single letter checks just that letter",
				},
			},
			Required: []string{"channel_id"},
		},
	}, c.handleLegalLetters)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "goodbye",
		Description: "Say goodbye: close the board and reveal the answer if it splits into words",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"channel_id": channelProp,
			},
			Required: []string{"channel_id"},
		},
	}, c.handleGoodbye)

	// Reference
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_dictionaries",
		Description: "List available dictionaries",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListDictionaries)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules of the board and tips for spelling",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
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

func boardPath(channelID, suffix string) string {
	return "/api/boards/" + url.PathEscape(channelID) + suffix
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// Tool handlers

func (c *Client) handleAsk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	body := map[string]string{
		"channel_id": stringArg(args, "channel_id"),
		"question":   stringArg(args, "question"),
	}
	if dict := stringArg(args, "dictionary"); dict != "" {
		body["dictionary"] = dict
	}

	var info service.BoardInfo
	if err := c.apiCall(ctx, http.MethodPost, "/api/boards", body, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := info.Message + "\n\n" + formatBoardInfo(&info)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	channelID := stringArg(request.GetArguments(), "channel_id")

	var info service.BoardInfo
	if err := c.apiCall(ctx, http.MethodGet, boardPath(channelID, ""), nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBoardInfo(&info)), nil
}

func (c *Client) handleListBoards(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	params := url.Values{}
	if sort := stringArg(args, "sort"); sort != "" {
		params.Set("sort", sort)
	}
	if order := stringArg(args, "order"); order != "" {
		params.Set("order", order)
	}
	if limit, ok := args["limit"].(float64); ok {
		params.Set("limit", fmt.Sprintf("%d", int(limit)))
	}
	path := "/api/boards"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var response struct {
		Count  int                 `json:"count"`
		Boards []service.BoardInfo `json:"boards"`
	}
	if err := c.apiCall(ctx, http.MethodGet, path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Open Boards (%d):\n\n", response.Count)
	for _, b := range response.Boards {
		fmt.Fprintf(&sb, "- #%s: %q (message: %s, dictionary: %s, updated: %s)\n",
			b.ChannelID, b.Question, displayMessage(b.State.Message), b.Dictionary,
			b.LastUpdated.Format("15:04:05"))
	}

	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleTell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	channelID := stringArg(args, "channel_id")

	body := map[string]string{
		"letter": stringArg(args, "letter"),
	}

	var result service.TellResult
	if err := c.apiCall(ctx, http.MethodPost, boardPath(channelID, "/letters"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatTellResult(&result)), nil
}

func (c *Client) handleLegalLetters(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	channelID := stringArg(args, "channel_id")
	partial := stringArg(args, "partial")

	path := boardPath(channelID, "/hints")
	if partial != "" {
		path += "?partial=" + url.QueryEscape(partial)
	}

	var response struct {
		Letters []string `json:"letters"`
	}
	if err := c.apiCall(ctx, http.MethodGet, path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(response.Letters) == 0 {
		return mcp.NewToolResultText("No letter can come next."), nil
	}
	return mcp.NewToolResultText("Legal letters: " + strings.Join(response.Letters, " ")), nil
}

func (c *Client) handleGoodbye(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	channelID := stringArg(request.GetArguments(), "channel_id")

	var result service.GoodbyeResult
	if err := c.apiCall(ctx, http.MethodPost, boardPath(channelID, "/goodbye"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGoodbyeResult(&result)), nil
}

func (c *Client) handleListDictionaries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var dicts []service.DictionaryInfo
	if err := c.apiCall(ctx, http.MethodGet, "/api/dictionaries", nil, &dicts); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	sb.WriteString("Available Dictionaries:\n\n")
	for _, d := range dicts {
		marker := ""
		if d.Default {
			marker = " (default)"
		}
		fmt.Fprintf(&sb, "• %s%s: %d words\n", d.Name, marker, d.Words)
	}

	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Ask Ouija - Complete Instructions

OBJECTIVE:
A mortal asks a question. The spirits answer through the board, one capital
letter at a time, with no spaces. The board only accepts letters that keep the
whole message splittable into dictionary words.

HOW A BOARD WORKS:
• ask_ouija opens one board per channel. A second question on a busy channel is refused.
• tell_ouija offers a letter. Only A-Z are accepted.
• A letter that would make the message unspellable is refused and changes nothing.
• goodbye closes the board when the message splits exactly into words.
• A board with no activity for the idle timeout disappears.

EXAMPLE (dictionary with CAT, CATS, A, TAG):
  C A T       message "CAT", goodbye answers "CAT"
  C A T S     message "CATS", goodbye answers "CATS"
  C A T A     message "CATA", goodbye answers "CAT A"
  C A T Z     Z is refused: no word continues "CATZ"

STRATEGY:
• Call legal_letters before every letter; anything outside that list is refused.
• Pass partial with one letter to check it without committing.
• When several splits are possible, the board keeps them all. Goodbye picks the
  split with the fewest words.
• If goodbye is refused, the last word is unfinished. Keep spelling.

MESSAGES:
• "The mortals can only receive capital letters." - the input was not A-Z.
• "The mortals won't be able to comprehend this." - the letter or goodbye does not fit the dictionary.
• "The spirits have spoken!" - goodbye succeeded; the board is closed.

Good luck speaking from beyond!`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting

func displayMessage(msg string) string {
	if msg == "" {
		return "(nothing yet)"
	}
	return msg
}

func formatSnapshot(s *engine.Snapshot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Message: %s\n", displayMessage(s.Message))
	fmt.Fprintf(&sb, "State: %s\n", s.State)
	if s.AtBoundary {
		sb.WriteString("Ready for goodbye: yes\n")
	} else {
		sb.WriteString("Ready for goodbye: no\n")
	}
	if len(s.LegalNext) > 0 {
		fmt.Fprintf(&sb, "Legal next letters: %s\n", strings.Join(s.LegalNext, " "))
	} else {
		sb.WriteString("Legal next letters: none\n")
	}
	return sb.String()
}

func formatBoardInfo(info *service.BoardInfo) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Board #%s (%s)\n", info.ChannelID, info.ID)
	fmt.Fprintf(&sb, "Question: %s\n", info.Question)
	fmt.Fprintf(&sb, "Dictionary: %s\n", info.Dictionary)
	sb.WriteString(formatSnapshot(&info.State))
	return sb.String()
}

func formatTellResult(result *service.TellResult) string {
	var sb strings.Builder
	if result.Accepted {
		fmt.Fprintf(&sb, "✓ %s\n", result.Letter)
	} else {
		fmt.Fprintf(&sb, "✗ %s refused: %s\n", result.Letter, result.Message)
	}
	if result.Board != nil {
		sb.WriteString("\n")
		sb.WriteString(formatSnapshot(&result.Board.State))
	}
	return sb.String()
}

func formatGoodbyeResult(result *service.GoodbyeResult) string {
	if result.Done {
		log.Debug().Str("answer", result.Answer).Msg("board closed via mcp")
		return fmt.Sprintf("%s\nWords: %s\n", result.Message, strings.Join(result.Words, ", "))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "✗ Goodbye refused: %s\n", result.Message)
	if result.Board != nil {
		sb.WriteString("\n")
		sb.WriteString(formatSnapshot(&result.Board.State))
	}
	return sb.String()
}
