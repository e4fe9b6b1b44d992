package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/askouija/game/dictionary"
)

func newTestEngine(words ...string) *SegmentationEngine {
	return NewEngine(dictionary.New(words))
}

// pushAll feeds every letter and fails the test on the first rejection
func pushAll(t *testing.T, e *SegmentationEngine, letters string) {
	t.Helper()
	for i := 0; i < len(letters); i++ {
		require.Equal(t, Accept, e.PushChar(letters[i]), "letter %q at %d", letters[i], i)
	}
}

func TestNewEngine(t *testing.T) {
	e := newTestEngine("CAT", "CATS", "A", "TAG")

	assert.Equal(t, Empty, e.State())
	assert.Equal(t, "", e.Message())
	assert.False(t, e.AtBoundary())
	assert.Equal(t, 4, e.CandidateCount())
	assert.Equal(t, []byte("ACT"), e.LegalNextCharacters())
}

func TestScenarioA_SingleWord(t *testing.T) {
	e := newTestEngine("CAT", "CATS", "A", "TAG")

	assert.Equal(t, Accept, e.PushChar('C'))
	assert.False(t, e.AtBoundary())
	assert.Equal(t, Accept, e.PushChar('A'))
	assert.False(t, e.AtBoundary())
	assert.Equal(t, Accept, e.PushChar('T'))
	assert.True(t, e.AtBoundary())
	assert.Equal(t, InProgress, e.State())

	words, status := e.Finalize()
	assert.Equal(t, Done, status)
	if diff := cmp.Diff([]string{"CAT"}, words); diff != "" {
		t.Errorf("Finalize() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, Finalized, e.State())
}

func TestScenarioB_LongerWord(t *testing.T) {
	e := newTestEngine("CAT", "CATS", "A", "TAG")
	pushAll(t, e, "CAT")

	assert.Equal(t, Accept, e.PushChar('S'))
	assert.True(t, e.AtBoundary())

	words, status := e.Finalize()
	assert.Equal(t, Done, status)
	assert.Equal(t, []string{"CATS"}, words)
}

func TestScenarioC_WordThenWord(t *testing.T) {
	e := newTestEngine("A", "TAG")

	assert.Equal(t, Accept, e.PushChar('A'))
	assert.True(t, e.AtBoundary())
	assert.Equal(t, Accept, e.PushChar('T'))
	assert.False(t, e.AtBoundary())
	assert.Equal(t, Accept, e.PushChar('A'))
	assert.Equal(t, Accept, e.PushChar('G'))
	assert.True(t, e.AtBoundary())
	assert.Equal(t, "ATAG", e.Message())

	words, status := e.Finalize()
	assert.Equal(t, Done, status)
	assert.Equal(t, []string{"A", "TAG"}, words)
}

func TestScenarioD_ImmediateReject(t *testing.T) {
	e := newTestEngine("DOG")

	assert.Equal(t, Reject, e.PushChar('C'))
	assert.Equal(t, "", e.Message())
	assert.Equal(t, Empty, e.State())
	assert.Equal(t, []byte("D"), e.LegalNextCharacters())
}

func TestScenarioE_OverlappingBoundary(t *testing.T) {
	e := newTestEngine("ANT", "AN", "T")
	pushAll(t, e, "AN")

	assert.True(t, e.AtBoundary())
	// "T" continuing ANT, plus the replenished ANT, AN, T.
	assert.Equal(t, 4, e.CandidateCount())
	assert.Equal(t, []byte("AT"), e.LegalNextCharacters())

	assert.Equal(t, Accept, e.PushChar('T'))
	assert.True(t, e.AtBoundary())

	words, status := e.Finalize()
	assert.Equal(t, Done, status)
	assert.Equal(t, []string{"ANT"}, words)
}

func TestPushChar_CaseInsensitive(t *testing.T) {
	e := newTestEngine("cat")

	assert.Equal(t, Accept, e.PushChar('c'))
	assert.Equal(t, Accept, e.PushChar('A'))
	assert.Equal(t, Accept, e.PushChar('t'))
	assert.Equal(t, "cAt", e.Message())

	words, status := e.Finalize()
	assert.Equal(t, Done, status)
	assert.Equal(t, []string{"CAT"}, words)
}

func TestPushChar_NonLetters(t *testing.T) {
	e := newTestEngine("CAT")

	for _, c := range []byte{0, ' ', '1', '@', '[', '`', '{', 0xC3} {
		assert.Equal(t, Reject, e.PushChar(c), "byte %#x", c)
	}
	assert.Equal(t, Empty, e.State())
}

func TestPushChar_RejectLeavesStateUnchanged(t *testing.T) {
	e := newTestEngine("CAT", "CATS", "A", "TAG")
	pushAll(t, e, "CAT")

	before := e.Snapshot()
	beforeCount := e.CandidateCount()

	assert.Equal(t, Reject, e.PushChar('X'))
	assert.Equal(t, Reject, e.PushChar('Q'))

	assert.Equal(t, before, e.Snapshot())
	assert.Equal(t, beforeCount, e.CandidateCount())
	assert.True(t, e.AtBoundary())
}

func TestFinalize_RejectsMidWord(t *testing.T) {
	e := newTestEngine("CAT", "CATS", "A", "TAG")
	pushAll(t, e, "CA")

	words, status := e.Finalize()
	assert.Equal(t, Reject, status)
	assert.Nil(t, words)

	// The board stays usable.
	assert.Equal(t, InProgress, e.State())
	assert.Equal(t, Accept, e.PushChar('T'))
	_, status = e.Finalize()
	assert.Equal(t, Done, status)
}

func TestFinalize_RejectsEmpty(t *testing.T) {
	e := newTestEngine("CAT")

	_, status := e.Finalize()
	assert.Equal(t, Reject, status)
	assert.Equal(t, Empty, e.State())
}

func TestFinalize_EngineIsSpentAfterDone(t *testing.T) {
	e := newTestEngine("A")
	pushAll(t, e, "A")

	_, status := e.Finalize()
	require.Equal(t, Done, status)

	assert.Equal(t, Reject, e.PushChar('A'))
	_, status = e.Finalize()
	assert.Equal(t, Reject, status)
	assert.Empty(t, e.LegalNextCharacters())
	assert.Equal(t, "A", e.Message())
}

func TestFinalize_MinimumWordCount(t *testing.T) {
	e := newTestEngine("A", "AB", "ABC", "BC", "C", "CAB")
	pushAll(t, e, "ABCAB")

	words, status := e.Finalize()
	assert.Equal(t, Done, status)
	// AB+CAB and ABC+AB both use two words; AB is earlier in the list.
	assert.Equal(t, []string{"AB", "CAB"}, words)
}

func TestFinalize_TieBreakFollowsDictionaryOrder(t *testing.T) {
	tests := []struct {
		name  string
		words []string
		input string
		want  []string
	}{
		{
			name:  "first word decides",
			words: []string{"AB", "A", "BA", "ABA"},
			input: "ABA",
			want:  []string{"ABA"},
		},
		{
			name:  "two-word tie, earlier first word wins",
			words: []string{"NO", "WHERE", "NOW", "HERE"},
			input: "NOWHERE",
			want:  []string{"NO", "WHERE"},
		},
		{
			name:  "two-word tie, reversed order",
			words: []string{"NOW", "HERE", "NO", "WHERE"},
			input: "NOWHERE",
			want:  []string{"NOW", "HERE"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(tt.words...)
			pushAll(t, e, tt.input)

			got, status := e.Finalize()
			require.Equal(t, Done, status)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Finalize() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBoundary_FollowsEachLetter(t *testing.T) {
	e := newTestEngine("A", "AA", "ABB")

	wantBoundary := []bool{true, true, false, true}
	for i, c := range []byte("AABB") {
		require.Equal(t, Accept, e.PushChar(c))
		assert.Equal(t, wantBoundary[i], e.AtBoundary(), "after %d letters", i+1)
	}

	words, status := e.Finalize()
	assert.Equal(t, Done, status)
	assert.Equal(t, []string{"A", "ABB"}, words)
}

func TestEmptyDictionary(t *testing.T) {
	e := NewEngine(dictionary.New(nil))

	assert.Empty(t, e.LegalNextCharacters())
	assert.Equal(t, 0, e.CandidateCount())
	assert.Equal(t, Reject, e.PushChar('A'))
}

func TestDuplicateWords(t *testing.T) {
	e := newTestEngine("GO", "GO")
	pushAll(t, e, "GOGO")

	words, status := e.Finalize()
	assert.Equal(t, Done, status)
	assert.Equal(t, []string{"GO", "GO"}, words)
}

func TestSnapshot(t *testing.T) {
	e := newTestEngine("ANT", "AN", "T")
	pushAll(t, e, "AN")

	snap := e.Snapshot()
	assert.Equal(t, Snapshot{
		Message:        "AN",
		State:          InProgress,
		AtBoundary:     true,
		LegalNext:      []string{"A", "T"},
		OpenHypotheses: 4,
	}, snap)
}

func TestEnginesShareDictionaryIndependently(t *testing.T) {
	dict := dictionary.New([]string{"CAT", "DOG"})
	a := NewEngine(dict)
	b := NewEngine(dict)

	pushAll(t, a, "CAT")
	assert.Equal(t, Empty, b.State())
	assert.Equal(t, []byte("CD"), b.LegalNextCharacters())
	assert.Equal(t, Accept, b.PushChar('D'))
	assert.Equal(t, "CAT", a.Message())
	assert.Equal(t, []string{"CAT", "DOG"}, dict.Words())
}
