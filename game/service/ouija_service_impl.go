package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/askouija/game/apperr"
	"github.com/wricardo/askouija/game/engine"
)

// ouijaServiceImpl implements the OuijaService interface
type ouijaServiceImpl struct {
	boards BoardManager
	dicts  DictionaryCatalog
}

// NewOuijaService creates a new service instance
func NewOuijaService(boards BoardManager, dicts DictionaryCatalog) OuijaService {
	return &ouijaServiceImpl{
		boards: boards,
		dicts:  dicts,
	}
}

// Ask opens a board for a channel
func (s *ouijaServiceImpl) Ask(ctx context.Context, channelID, question, dictName string) (*BoardInfo, error) {
	channelID = strings.TrimSpace(channelID)
	if channelID == "" {
		return nil, apperr.NewInvalidRequest("channel_id is required")
	}
	if strings.TrimSpace(question) == "" {
		return nil, apperr.NewInvalidRequest("question is required")
	}

	if dictName == "" {
		dictName = s.dicts.DefaultName()
	}
	dict, err := s.dicts.Get(dictName)
	if err != nil {
		return nil, s.dictionaryError(dictName, err)
	}

	board, err := s.boards.Create(channelID, question, dictName, dict)
	if err != nil {
		if errors.Is(err, ErrBoardAlreadyExists) {
			return nil, apperr.NewAlreadyExists(MsgOneBoard, channelID, err)
		}
		return nil, apperr.NewInternal(fmt.Errorf("failed to create board: %w", err))
	}

	log.Info().
		Str("channel", board.ChannelID).
		Str("board", board.ID).
		Str("dictionary", dictName).
		Msg("board opened")

	board.Lock()
	info := toBoardInfo(board)
	board.Unlock()

	info.Message = fmt.Sprintf(MsgNewQuestion, question)
	return info, nil
}

// GetBoard returns the current state of a channel's board
func (s *ouijaServiceImpl) GetBoard(ctx context.Context, channelID string) (*BoardInfo, error) {
	var info *BoardInfo
	err := s.boards.View(channelID, func(b *Board) error {
		info = toBoardInfo(b)
		return nil
	})
	if err != nil {
		return nil, s.boardError(err)
	}
	return info, nil
}

// ListBoards returns all live boards
func (s *ouijaServiceImpl) ListBoards(ctx context.Context, opts ListOptions) ([]*BoardInfo, error) {
	boards := s.boards.List()
	result := make([]*BoardInfo, 0, len(boards))
	for _, b := range boards {
		b.Lock()
		result = append(result, toBoardInfo(b))
		b.Unlock()
	}

	desc := opts.Order == "desc"
	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if opts.Sort == "updated" {
			if !a.LastUpdated.Equal(b.LastUpdated) {
				return a.LastUpdated.Before(b.LastUpdated) != desc
			}
		} else if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt) != desc
		}
		return (a.ChannelID < b.ChannelID) != desc
	})

	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}
	return result, nil
}

// DeleteBoard removes a channel's board without revealing an answer
func (s *ouijaServiceImpl) DeleteBoard(ctx context.Context, channelID string) error {
	if err := s.boards.Remove(channelID); err != nil {
		return s.boardError(err)
	}
	log.Info().Str("channel", channelID).Msg("board deleted")
	return nil
}

// Tell offers one letter to a channel's board
func (s *ouijaServiceImpl) Tell(ctx context.Context, channelID, letter string) (*TellResult, error) {
	result := &TellResult{Letter: letter}

	err := s.boards.With(channelID, func(b *Board) error {
		switch {
		case !isCapitalLetter(letter):
			result.Reason = ReasonNotUppercase
			result.Message = MsgCapitalsOnly
		case b.Engine.PushChar(letter[0]) == engine.Accept:
			result.Accepted = true
			result.Message = letter
		default:
			result.Reason = ReasonIncomprehensible
			result.Message = MsgIncomprehensible
		}
		result.Board = toBoardInfo(b)
		return nil
	})
	if err != nil {
		return nil, s.boardError(err)
	}

	log.Debug().
		Str("channel", channelID).
		Str("letter", letter).
		Bool("accepted", result.Accepted).
		Str("status", result.Reason).
		Msg("letter offered")

	return result, nil
}

// Goodbye closes a board, revealing the fewest-words reading of the message.
// A board that cannot be read yet stays open.
func (s *ouijaServiceImpl) Goodbye(ctx context.Context, channelID string) (*GoodbyeResult, error) {
	result := &GoodbyeResult{}

	err := s.boards.With(channelID, func(b *Board) error {
		words, status := b.Engine.Finalize()
		if status == engine.Done {
			result.Done = true
			result.Words = words
			result.Answer = strings.Join(words, " ")
			result.Message = fmt.Sprintf(MsgSpoken, result.Answer)
			s.boards.Discard(b)
		} else {
			result.Reason = ReasonIncomprehensible
			result.Message = MsgIncomprehensible
		}
		result.Board = toBoardInfo(b)
		return nil
	})
	if err != nil {
		return nil, s.boardError(err)
	}

	if !result.Done {
		log.Debug().Str("channel", channelID).Msg("goodbye rejected")
		return result, nil
	}

	log.Info().
		Str("channel", channelID).
		Str("board", result.Board.ID).
		Strs("words", result.Words).
		Msg("the spirits have spoken")

	return result, nil
}

// Hints returns the letters a participant may type next
func (s *ouijaServiceImpl) Hints(ctx context.Context, channelID, partial string) ([]string, error) {
	var legal []byte
	err := s.boards.View(channelID, func(b *Board) error {
		legal = b.Engine.LegalNextCharacters()
		return nil
	})
	if err != nil {
		return nil, s.boardError(err)
	}
	return filterHints(legal, partial), nil
}

// ListDictionaries returns the available dictionaries
func (s *ouijaServiceImpl) ListDictionaries(ctx context.Context) ([]*DictionaryInfo, error) {
	dicts, err := s.dicts.List()
	if err != nil {
		return nil, apperr.NewInternal(fmt.Errorf("failed to list dictionaries: %w", err))
	}
	return dicts, nil
}

// boardError maps registry errors to coded errors
func (s *ouijaServiceImpl) boardError(err error) error {
	if errors.Is(err, ErrBoardNotFound) {
		return apperr.NewNotFound(MsgNoBoard, err)
	}
	var coded *apperr.Error
	if errors.As(err, &coded) {
		return coded
	}
	return apperr.NewInternal(err)
}

// dictionaryError maps catalog errors to coded errors, listing the alternatives
func (s *ouijaServiceImpl) dictionaryError(name string, err error) error {
	switch {
	case errors.Is(err, ErrDictionaryNotFound):
		available, listErr := s.dicts.List()
		if listErr == nil && len(available) > 0 {
			names := make([]string, 0, len(available))
			for _, d := range available {
				names = append(names, d.Name)
			}
			return apperr.NewNotFound(fmt.Sprintf("dictionary '%s' not found. Available dictionaries: %v", name, names), err)
		}
		return apperr.NewNotFound(fmt.Sprintf("dictionary '%s' not found", name), err)
	case errors.Is(err, ErrEmptyDictionary):
		return apperr.NewInvalidRequest(fmt.Sprintf("dictionary '%s' has no usable words", name))
	default:
		return apperr.NewInternal(fmt.Errorf("failed to load dictionary %s: %w", name, err))
	}
}

// toBoardInfo copies the observable board state; the caller holds the board lock
func toBoardInfo(b *Board) *BoardInfo {
	return &BoardInfo{
		ID:          b.ID,
		ChannelID:   b.ChannelID,
		Question:    b.Question,
		Dictionary:  b.Dictionary,
		CreatedAt:   b.CreatedAt,
		LastUpdated: b.LastUpdated,
		State:       b.Engine.Snapshot(),
	}
}

// isCapitalLetter reports whether s is exactly one ASCII capital letter
func isCapitalLetter(s string) bool {
	return len(s) == 1 && s[0] >= 'A' && s[0] <= 'Z'
}

// filterHints applies the autocomplete rule: an empty partial offers every
// legal letter, a single character offers itself when legal, anything longer
// offers nothing.
func filterHints(legal []byte, partial string) []string {
	hints := []string{}
	switch len(partial) {
	case 0:
		for _, c := range legal {
			hints = append(hints, string(c))
		}
	case 1:
		for _, c := range legal {
			if c == partial[0] {
				hints = append(hints, partial)
				break
			}
		}
	}
	return hints
}
