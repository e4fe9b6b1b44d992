package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/askouija/game/dictionary"
	"github.com/wricardo/askouija/game/engine"
	"github.com/wricardo/askouija/game/service"
)

// DefaultIdleTimeout is how long a board survives without activity
const DefaultIdleTimeout = 10 * time.Minute

var ErrInvalidChannelID = errors.New("invalid channel ID")

// Option configures a Manager
type Option func(*Manager)

// WithClock replaces the wall clock used for timestamps and expiry
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// entry pairs a board with its last activity in unix nanoseconds, readable
// without taking the board lock
type entry struct {
	board   *service.Board
	touched atomic.Int64
}

// Manager handles board lifecycle, one board per channel
type Manager struct {
	boards      map[string]*entry
	idleTimeout time.Duration
	now         func() time.Time
	mu          sync.RWMutex
}

var _ service.BoardManager = (*Manager)(nil)

// NewManager creates a new board registry. A zero idleTimeout means DefaultIdleTimeout.
func NewManager(idleTimeout time.Duration, opts ...Option) *Manager {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	m := &Manager{
		boards:      make(map[string]*entry),
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// IdleTimeout returns the configured idle window
func (m *Manager) IdleTimeout() time.Duration {
	return m.idleTimeout
}

// Create opens a board for a channel. An idle-expired board is replaced.
func (m *Manager) Create(channelID, question, dictName string, dict *dictionary.Dictionary) (*service.Board, error) {
	key := channelKey(channelID)
	if key == "" {
		return nil, ErrInvalidChannelID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if existing, exists := m.boards[key]; exists {
		if !m.expired(existing, now) {
			return nil, service.ErrBoardAlreadyExists
		}
		log.Debug().
			Str("channel", channelID).
			Str("board", existing.board.ID).
			Msg("replacing idle board")
	}

	board := &service.Board{
		ID:          ulid.Make().String(),
		ChannelID:   strings.TrimSpace(channelID),
		Question:    question,
		Dictionary:  dictName,
		Engine:      engine.NewEngine(dict),
		CreatedAt:   now,
		LastUpdated: now,
	}
	e := &entry{board: board}
	e.touched.Store(now.UnixNano())
	m.boards[key] = e

	return board, nil
}

// Get retrieves a live board by channel (case-insensitive)
func (m *Manager) Get(channelID string) (*service.Board, error) {
	e, err := m.lookup(channelID)
	if err != nil {
		return nil, err
	}
	return e.board, nil
}

// With runs fn while holding the board's lock and marks the board active.
// Mutations of a board go through here so there is at most one per channel.
// A board removed or replaced while waiting for the lock is not found.
func (m *Manager) With(channelID string, fn func(*service.Board) error) error {
	e, err := m.acquire(channelID)
	if err != nil {
		return err
	}
	defer e.board.Unlock()

	now := m.now()
	e.board.LastUpdated = now
	e.touched.Store(now.UnixNano())

	return fn(e.board)
}

// View runs fn while holding the board's lock without marking it active
func (m *Manager) View(channelID string, fn func(*service.Board) error) error {
	e, err := m.acquire(channelID)
	if err != nil {
		return err
	}
	defer e.board.Unlock()

	return fn(e.board)
}

// Remove deletes a channel's board
func (m *Manager) Remove(channelID string) error {
	key := channelKey(channelID)

	m.mu.Lock()
	defer m.mu.Unlock()

	e, exists := m.boards[key]
	if !exists {
		return service.ErrBoardNotFound
	}
	delete(m.boards, key)

	if m.expired(e, m.now()) {
		return service.ErrBoardNotFound
	}
	return nil
}

// Discard removes board from its channel if the channel still holds it.
// It is safe to call from inside With.
func (m *Manager) Discard(board *service.Board) bool {
	key := channelKey(board.ChannelID)

	m.mu.Lock()
	defer m.mu.Unlock()

	if e, exists := m.boards[key]; exists && e.board == board {
		delete(m.boards, key)
		return true
	}
	return false
}

// List returns all live boards
func (m *Manager) List() []*service.Board {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.now()
	result := make([]*service.Board, 0, len(m.boards))
	for _, e := range m.boards {
		if m.expired(e, now) {
			continue
		}
		result = append(result, e.board)
	}

	return result
}

// Count returns the number of live boards
func (m *Manager) Count() int {
	return len(m.List())
}

// CleanupExpired removes boards idle for longer than the timeout
func (m *Manager) CleanupExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for key, e := range m.boards {
		if m.expired(e, now) {
			delete(m.boards, key)
			removed++
		}
	}

	if removed > 0 {
		log.Info().Int("removed", removed).Int("remaining", len(m.boards)).Msg("expired idle boards")
	}
	return removed
}

// RunJanitor calls CleanupExpired every interval until ctx is done
func (m *Manager) RunJanitor(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.CleanupExpired()
		}
	}
}

// lookup finds a live entry, evicting it if it has gone idle
func (m *Manager) lookup(channelID string) (*entry, error) {
	key := channelKey(channelID)

	m.mu.RLock()
	e, exists := m.boards[key]
	m.mu.RUnlock()

	if !exists {
		return nil, service.ErrBoardNotFound
	}
	if !m.expired(e, m.now()) {
		return e, nil
	}

	m.mu.Lock()
	if m.boards[key] == e {
		delete(m.boards, key)
	}
	m.mu.Unlock()

	return nil, service.ErrBoardNotFound
}

// acquire looks up a live entry and locks its board, confirming the channel
// still holds that entry once the lock is taken
func (m *Manager) acquire(channelID string) (*entry, error) {
	e, err := m.lookup(channelID)
	if err != nil {
		return nil, err
	}

	e.board.Lock()

	m.mu.RLock()
	current := m.boards[channelKey(channelID)] == e
	m.mu.RUnlock()

	if !current {
		e.board.Unlock()
		return nil, service.ErrBoardNotFound
	}
	return e, nil
}

func (m *Manager) expired(e *entry, now time.Time) bool {
	return now.Sub(time.Unix(0, e.touched.Load())) > m.idleTimeout
}

// channelKey normalizes a channel id for case-insensitive lookups
func channelKey(channelID string) string {
	return strings.ToLower(strings.TrimSpace(channelID))
}
