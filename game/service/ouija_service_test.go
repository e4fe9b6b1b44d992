package service_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/askouija/game/apperr"
	"github.com/wricardo/askouija/game/dictionary"
	"github.com/wricardo/askouija/game/engine"
	"github.com/wricardo/askouija/game/service"
)

// MockBoardManager implements service.BoardManager for testing
type MockBoardManager struct {
	boards map[string]*service.Board
	now    time.Time
}

func NewMockBoardManager() *MockBoardManager {
	return &MockBoardManager{
		boards: make(map[string]*service.Board),
		now:    time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *MockBoardManager) tick() time.Time {
	m.now = m.now.Add(time.Second)
	return m.now
}

func (m *MockBoardManager) Create(channelID, question, dictName string, dict *dictionary.Dictionary) (*service.Board, error) {
	key := strings.ToLower(channelID)
	if _, exists := m.boards[key]; exists {
		return nil, service.ErrBoardAlreadyExists
	}
	now := m.tick()
	b := &service.Board{
		ID:          fmt.Sprintf("board_%d", len(m.boards)+1),
		ChannelID:   channelID,
		Question:    question,
		Dictionary:  dictName,
		Engine:      engine.NewEngine(dict),
		CreatedAt:   now,
		LastUpdated: now,
	}
	m.boards[key] = b
	return b, nil
}

func (m *MockBoardManager) Get(channelID string) (*service.Board, error) {
	b, exists := m.boards[strings.ToLower(channelID)]
	if !exists {
		return nil, service.ErrBoardNotFound
	}
	return b, nil
}

func (m *MockBoardManager) With(channelID string, fn func(*service.Board) error) error {
	b, err := m.Get(channelID)
	if err != nil {
		return err
	}
	b.LastUpdated = m.tick()
	return fn(b)
}

func (m *MockBoardManager) View(channelID string, fn func(*service.Board) error) error {
	b, err := m.Get(channelID)
	if err != nil {
		return err
	}
	return fn(b)
}

func (m *MockBoardManager) Remove(channelID string) error {
	key := strings.ToLower(channelID)
	if _, exists := m.boards[key]; !exists {
		return service.ErrBoardNotFound
	}
	delete(m.boards, key)
	return nil
}

func (m *MockBoardManager) Discard(board *service.Board) bool {
	key := strings.ToLower(board.ChannelID)
	if m.boards[key] != board {
		return false
	}
	delete(m.boards, key)
	return true
}

func (m *MockBoardManager) List() []*service.Board {
	result := make([]*service.Board, 0, len(m.boards))
	for _, b := range m.boards {
		result = append(result, b)
	}
	return result
}

// MockCatalog implements service.DictionaryCatalog for testing
type MockCatalog struct {
	dicts map[string]*dictionary.Dictionary
	def   string
}

func NewMockCatalog() *MockCatalog {
	return &MockCatalog{
		dicts: map[string]*dictionary.Dictionary{
			"default": dictionary.New([]string{"CAT", "CATS", "A", "TAG"}),
			"animals": dictionary.New([]string{"DOG", "OWL"}),
		},
		def: "default",
	}
}

func (c *MockCatalog) Get(name string) (*dictionary.Dictionary, error) {
	if name == "" {
		name = c.def
	}
	d, ok := c.dicts[name]
	if !ok {
		return nil, service.ErrDictionaryNotFound
	}
	return d, nil
}

func (c *MockCatalog) List() ([]*service.DictionaryInfo, error) {
	result := make([]*service.DictionaryInfo, 0, len(c.dicts))
	for name, d := range c.dicts {
		result = append(result, &service.DictionaryInfo{Name: name, Words: d.Len(), Default: name == c.def})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (c *MockCatalog) DefaultName() string {
	return c.def
}

// reopeningBoards opens a new board on the channel as soon as a locked
// section finishes, the way a concurrent Ask can
type reopeningBoards struct {
	*MockBoardManager
	reopen bool
}

func (r *reopeningBoards) With(channelID string, fn func(*service.Board) error) error {
	if err := r.MockBoardManager.With(channelID, fn); err != nil {
		return err
	}
	if r.reopen {
		r.reopen = false
		_, err := r.Create(channelID, "q2", "default", dictionary.New([]string{"A"}))
		return err
	}
	return nil
}

func newTestService() (service.OuijaService, *MockBoardManager) {
	boards := NewMockBoardManager()
	return service.NewOuijaService(boards, NewMockCatalog()), boards
}

func tellAll(t *testing.T, svc service.OuijaService, channelID, letters string) {
	t.Helper()
	for _, c := range letters {
		res, err := svc.Tell(context.Background(), channelID, string(c))
		require.NoError(t, err)
		require.True(t, res.Accepted, "letter %q: %s", c, res.Message)
	}
}

func TestAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("opens board with default dictionary", func(t *testing.T) {
		svc, _ := newTestService()

		info, err := svc.Ask(ctx, "general", "Is anyone there?", "")
		require.NoError(t, err)
		assert.Equal(t, "general", info.ChannelID)
		assert.Equal(t, "default", info.Dictionary)
		assert.Equal(t, "New question for the spirits!\nIs anyone there?", info.Message)
		assert.Equal(t, engine.Empty, info.State.State)
		assert.Equal(t, []string{"A", "C", "T"}, info.State.LegalNext)
	})

	t.Run("named dictionary", func(t *testing.T) {
		svc, _ := newTestService()

		info, err := svc.Ask(ctx, "zoo", "Who hoots?", "animals")
		require.NoError(t, err)
		assert.Equal(t, "animals", info.Dictionary)
		assert.Equal(t, []string{"D", "O"}, info.State.LegalNext)
	})

	t.Run("one board per channel", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.Ask(ctx, "general", "first?", "")
		require.NoError(t, err)

		_, err = svc.Ask(ctx, "GENERAL", "second?", "")
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.CodeAlreadyExists))
		assert.Equal(t, "Channels can only fit one Ouija board at a time.", apperr.MessageOf(err))
		assert.True(t, errors.Is(err, service.ErrBoardAlreadyExists))
	})

	t.Run("empty channel", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.Ask(ctx, "  ", "hello?", "")
		assert.True(t, apperr.Is(err, apperr.CodeInvalidRequest))
	})

	t.Run("empty question", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.Ask(ctx, "general", "", "")
		assert.True(t, apperr.Is(err, apperr.CodeInvalidRequest))
	})

	t.Run("unknown dictionary lists alternatives", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.Ask(ctx, "general", "hello?", "klingon")
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.CodeNotFound))
		assert.Contains(t, apperr.MessageOf(err), "klingon")
		assert.Contains(t, apperr.MessageOf(err), "animals")
	})
}

func TestTell(t *testing.T) {
	ctx := context.Background()

	t.Run("accepts capital letters", func(t *testing.T) {
		svc, _ := newTestService()
		_, err := svc.Ask(ctx, "general", "q?", "")
		require.NoError(t, err)

		res, err := svc.Tell(ctx, "general", "C")
		require.NoError(t, err)
		assert.True(t, res.Accepted)
		assert.Equal(t, "C", res.Message)
		assert.Empty(t, res.Reason)
		assert.Equal(t, "C", res.Board.State.Message)
		assert.Equal(t, []string{"A"}, res.Board.State.LegalNext)
	})

	t.Run("rejects lower case and multi-character input", func(t *testing.T) {
		svc, _ := newTestService()
		_, err := svc.Ask(ctx, "general", "q?", "")
		require.NoError(t, err)

		for _, letter := range []string{"c", "CA", "", "1", "É"} {
			res, err := svc.Tell(ctx, "general", letter)
			require.NoError(t, err)
			assert.False(t, res.Accepted, "letter %q", letter)
			assert.Equal(t, service.ReasonNotUppercase, res.Reason)
			assert.Equal(t, "The mortals can only receive capital letters.", res.Message)
			assert.Equal(t, "", res.Board.State.Message)
		}
	})

	t.Run("rejects letters the dictionary cannot continue", func(t *testing.T) {
		svc, _ := newTestService()
		_, err := svc.Ask(ctx, "general", "q?", "")
		require.NoError(t, err)

		res, err := svc.Tell(ctx, "general", "X")
		require.NoError(t, err)
		assert.False(t, res.Accepted)
		assert.Equal(t, service.ReasonIncomprehensible, res.Reason)
		assert.Equal(t, "The mortals won't be able to comprehend this.", res.Message)
	})

	t.Run("bumps last updated", func(t *testing.T) {
		svc, _ := newTestService()
		info, err := svc.Ask(ctx, "general", "q?", "")
		require.NoError(t, err)

		res, err := svc.Tell(ctx, "general", "X")
		require.NoError(t, err)
		assert.True(t, res.Board.LastUpdated.After(info.LastUpdated))
	})

	t.Run("no board", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.Tell(ctx, "nowhere", "A")
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.CodeNotFound))
		assert.Equal(t, "There isn't a board through which you can speak.", apperr.MessageOf(err))
	})
}

func TestGoodbye(t *testing.T) {
	ctx := context.Background()

	t.Run("reveals the answer and removes the board", func(t *testing.T) {
		svc, boards := newTestService()
		_, err := svc.Ask(ctx, "general", "q?", "")
		require.NoError(t, err)
		tellAll(t, svc, "general", "ATAG")

		res, err := svc.Goodbye(ctx, "general")
		require.NoError(t, err)
		assert.True(t, res.Done)
		assert.Equal(t, []string{"A", "TAG"}, res.Words)
		assert.Equal(t, "A TAG", res.Answer)
		assert.Equal(t, "The spirits have spoken!\n> A TAG", res.Message)
		assert.Equal(t, engine.Finalized, res.Board.State.State)

		_, err = boards.Get("general")
		assert.ErrorIs(t, err, service.ErrBoardNotFound)

		// The channel is free again.
		_, err = svc.Ask(ctx, "general", "again?", "")
		assert.NoError(t, err)
	})

	t.Run("mid-word keeps the board open", func(t *testing.T) {
		svc, _ := newTestService()
		_, err := svc.Ask(ctx, "general", "q?", "")
		require.NoError(t, err)
		tellAll(t, svc, "general", "CA")

		res, err := svc.Goodbye(ctx, "general")
		require.NoError(t, err)
		assert.False(t, res.Done)
		assert.Equal(t, service.ReasonIncomprehensible, res.Reason)
		assert.Equal(t, "The mortals won't be able to comprehend this.", res.Message)

		tellAll(t, svc, "general", "T")
		res, err = svc.Goodbye(ctx, "general")
		require.NoError(t, err)
		assert.True(t, res.Done)
		assert.Equal(t, "CAT", res.Answer)
	})

	t.Run("empty board", func(t *testing.T) {
		svc, _ := newTestService()
		_, err := svc.Ask(ctx, "general", "q?", "")
		require.NoError(t, err)

		res, err := svc.Goodbye(ctx, "general")
		require.NoError(t, err)
		assert.False(t, res.Done)
	})

	t.Run("leaves a replacement board alone", func(t *testing.T) {
		boards := &reopeningBoards{MockBoardManager: NewMockBoardManager()}
		svc := service.NewOuijaService(boards, NewMockCatalog())
		_, err := svc.Ask(ctx, "general", "q1", "")
		require.NoError(t, err)
		tellAll(t, svc, "general", "CAT")

		boards.reopen = true
		res, err := svc.Goodbye(ctx, "general")
		require.NoError(t, err)
		assert.True(t, res.Done)

		b, err := boards.Get("general")
		require.NoError(t, err)
		assert.Equal(t, "q2", b.Question)
	})

	t.Run("no board", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.Goodbye(ctx, "general")
		assert.True(t, apperr.Is(err, apperr.CodeNotFound))
	})
}

func TestHints(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	_, err := svc.Ask(ctx, "general", "q?", "")
	require.NoError(t, err)

	tests := []struct {
		partial string
		want    []string
	}{
		{"", []string{"A", "C", "T"}},
		{"C", []string{"C"}},
		{"X", []string{}},
		{"c", []string{}},
		{"CA", []string{}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("partial=%q", tt.partial), func(t *testing.T) {
			got, err := svc.Hints(ctx, "general", tt.partial)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("no board", func(t *testing.T) {
		_, err := svc.Hints(ctx, "elsewhere", "")
		assert.True(t, apperr.Is(err, apperr.CodeNotFound))
	})
}

func TestListBoards(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	for _, ch := range []string{"b", "a", "c"} {
		_, err := svc.Ask(ctx, ch, "q?", "")
		require.NoError(t, err)
	}
	// Touch "b" last.
	_, err := svc.Tell(ctx, "b", "C")
	require.NoError(t, err)

	channels := func(infos []*service.BoardInfo) []string {
		out := make([]string, len(infos))
		for i, info := range infos {
			out[i] = info.ChannelID
		}
		return out
	}

	all, err := svc.ListBoards(ctx, service.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, channels(all))

	desc, err := svc.ListBoards(ctx, service.ListOptions{Order: "desc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, channels(desc))

	updated, err := svc.ListBoards(ctx, service.ListOptions{Sort: "updated", Order: "desc", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, channels(updated))
}

func TestDeleteBoard(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.Ask(ctx, "general", "q?", "")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteBoard(ctx, "general"))
	_, err = svc.GetBoard(ctx, "general")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))

	err = svc.DeleteBoard(ctx, "general")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestListDictionaries(t *testing.T) {
	svc, _ := newTestService()

	dicts, err := svc.ListDictionaries(context.Background())
	require.NoError(t, err)
	require.Len(t, dicts, 2)
	assert.Equal(t, "animals", dicts[0].Name)
	assert.Equal(t, 2, dicts[0].Words)
	assert.False(t, dicts[0].Default)
	assert.True(t, dicts[1].Default)
}
