// Package service provides the business logic layer for Ask Ouija.
//
// The service package implements:
//   - Opening one board per chat channel
//   - Offering letters to a board and reporting why one was refused
//   - Closing a board with the fewest-words reading of its message
//   - Input hints for the next letter
//
// Core Interfaces:
//
// OuijaService is the main service interface used by every transport.
// BoardManager stores boards and serializes mutations per channel.
// DictionaryCatalog resolves dictionary names to loaded word lists.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the segmentation engine. Each board owns its own engine over a shared,
// read-only dictionary. Expected game outcomes such as a refused letter or a
// premature goodbye are returned as results; missing boards, duplicate boards
// and bad input are returned as *apperr.Error values.
//
// Usage:
//
//	boards := session.NewManager(10 * time.Minute)
//	dicts, _ := catalog.NewManager("dictionaries")
//	svc := service.NewOuijaService(boards, dicts)
//
//	info, err := svc.Ask(ctx, "general", "Is anyone there?", "")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	res, err := svc.Tell(ctx, "general", "Y")
//	bye, err := svc.Goodbye(ctx, "general")
package service
