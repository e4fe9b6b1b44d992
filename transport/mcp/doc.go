// Package mcp provides the Model Context Protocol server for Ask Ouija.
//
// The server is a thin client: every tool proxies to the REST API over HTTP
// and renders the JSON response as text. API errors come back as tool errors
// carrying the API's user-facing message.
//
// MCP Tools:
//   - ask_ouija: Open a board on a channel with a question
//   - tell_ouija: Offer one capital letter
//   - legal_letters: Letters that may come next
//   - goodbye: Close the board and reveal the answer
//   - get_board: Current board state
//   - list_boards: All open boards
//   - list_dictionaries: Available dictionaries
//   - game_instructions: Rules and strategy
//
// Transport Modes:
//
// The same server runs over stdio (the "mcp" command) or behind POST /mcp on
// the REST server.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
