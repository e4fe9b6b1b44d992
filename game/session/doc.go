// Package session provides the board registry for Ask Ouija.
//
// The session package implements:
//   - One board per chat channel, with case-insensitive channel ids
//   - Per-board serialization of mutations
//   - Idle expiry and a background janitor
//
// Core Types:
//
// Manager stores boards keyed by channel and implements service.BoardManager.
// Each board gets a ULID and its own engine over a shared dictionary.
//
// Concurrency:
//
// The board map is guarded by a read/write mutex. Mutations run through With,
// which holds the board's own mutex, so two requests for the same channel are
// applied one after the other while different channels never contend.
//
// Expiry:
//
// A board untouched for longer than the idle timeout (10 minutes by default)
// is treated as gone. It is evicted lazily on access, replaced by a new Create,
// or swept by RunJanitor.
//
// Usage:
//
//	boards := session.NewManager(10 * time.Minute)
//	go boards.RunJanitor(ctx, time.Minute)
//
//	board, err := boards.Create("general", "Is anyone there?", "default", dict)
//	err = boards.With("general", func(b *service.Board) error {
//		b.Engine.PushChar('Y')
//		return nil
//	})
package session
