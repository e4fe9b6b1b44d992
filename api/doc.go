// Package api provides HTTP REST API handlers for Ask Ouija.
//
// Endpoints:
//
// Boards:
//   - POST /api/boards - Ask a question; opens the channel's board
//   - GET /api/boards - List live boards (sort=created|updated, order=asc|desc, limit)
//   - GET /api/boards/{channel} - Board state
//   - DELETE /api/boards/{channel} - Drop a board without an answer
//
// Spelling:
//   - POST /api/boards/{channel}/letters - Offer one capital letter
//   - GET /api/boards/{channel}/hints?partial= - Letters that may come next
//   - POST /api/boards/{channel}/goodbye - Close the board and read the answer
//
// Other:
//   - GET /api/dictionaries - Available dictionaries
//   - GET /api/health - Liveness
//   - GET /ws?channel=<id> - WebSocket feed of board events
//
// Request/Response Format:
//
// All endpoints accept and return JSON.
//
//	POST /api/boards            {"channel_id": "general", "question": "Is anyone there?", "dictionary": "english"}
//	POST /api/boards/general/letters  {"letter": "Y"}
//
// A refused letter or a premature goodbye is a normal 200 response with
// "accepted": false or "done": false and a reason.
//
// Error Handling:
//
// Errors are returned as JSON with the status of the underlying
// *apperr.Error (400, 404, 409 or 500):
//
//	{
//	  "error": "There isn't a board through which you can speak.",
//	  "code": "NOT_FOUND"
//	}
package api
