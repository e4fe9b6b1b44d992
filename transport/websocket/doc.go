// Package websocket pushes board events to clients watching a channel.
//
// Clients connect to /ws?channel=<id> and receive one JSON Message per board
// event (board_opened, letter, goodbye, board_deleted). Incoming messages are
// ignored; the connection is kept alive with ping/pong.
//
// The Hub's Run loop owns every client map. Register, unregister and
// broadcast requests reach it through channels, so callers never lock. A
// client whose outbound queue is full is dropped rather than slowing the
// others down. When Run's context ends all clients are disconnected and
// later Broadcast calls return immediately.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("channel"))
//	})
//	hub.Broadcast("general", websocket.EventLetter, result)
package websocket
