package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wricardo/askouija/game/dictionary"
	"github.com/wricardo/askouija/game/engine"
)

var (
	ErrBoardNotFound      = errors.New("board not found")
	ErrBoardAlreadyExists = errors.New("board already exists")
	ErrDictionaryNotFound = errors.New("dictionary not found")
	ErrEmptyDictionary    = errors.New("dictionary has no admissible words")
)

// OuijaService defines all board-related operations
type OuijaService interface {
	// Board lifecycle
	Ask(ctx context.Context, channelID, question, dictionary string) (*BoardInfo, error)
	GetBoard(ctx context.Context, channelID string) (*BoardInfo, error)
	ListBoards(ctx context.Context, opts ListOptions) ([]*BoardInfo, error)
	DeleteBoard(ctx context.Context, channelID string) error

	// Spelling
	Tell(ctx context.Context, channelID, letter string) (*TellResult, error)
	Goodbye(ctx context.Context, channelID string) (*GoodbyeResult, error)
	Hints(ctx context.Context, channelID, partial string) ([]string, error)

	// Dictionaries
	ListDictionaries(ctx context.Context) ([]*DictionaryInfo, error)
}

// BoardManager defines board storage operations
type BoardManager interface {
	Create(channelID, question, dictName string, dict *dictionary.Dictionary) (*Board, error)
	Get(channelID string) (*Board, error)
	With(channelID string, fn func(*Board) error) error
	View(channelID string, fn func(*Board) error) error
	Remove(channelID string) error
	Discard(board *Board) bool
	List() []*Board
}

// DictionaryCatalog resolves dictionary names
type DictionaryCatalog interface {
	Get(name string) (*dictionary.Dictionary, error)
	List() ([]*DictionaryInfo, error)
	DefaultName() string
}

// Board is one channel's game in progress. Fields other than ID, ChannelID,
// Question, Dictionary and CreatedAt are only touched while the board is locked.
type Board struct {
	ID          string
	ChannelID   string
	Question    string
	Dictionary  string
	Engine      engine.Engine
	CreatedAt   time.Time
	LastUpdated time.Time

	mu sync.Mutex
}

// Lock acquires the board for one mutation
func (b *Board) Lock() { b.mu.Lock() }

// Unlock releases the board
func (b *Board) Unlock() { b.mu.Unlock() }
