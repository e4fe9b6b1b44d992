package engine

import (
	"github.com/wricardo/askouija/game/dictionary"
)

// Engine provides the main interface for board operations
type Engine interface {
	// Input
	PushChar(c byte) Status
	Finalize() ([]string, Status)

	// Queries
	LegalNextCharacters() []byte
	Message() string
	AtBoundary() bool
	State() State
	CandidateCount() int
	Snapshot() Snapshot
}

var _ Engine = (*SegmentationEngine)(nil)

// SegmentationEngine implements the Engine interface
type SegmentationEngine struct {
	dict       *dictionary.Dictionary
	message    []byte
	candidates []candidate
	atBoundary bool
	finalized  bool
}

// NewEngine creates an empty engine over a shared dictionary
func NewEngine(dict *dictionary.Dictionary) *SegmentationEngine {
	e := &SegmentationEngine{
		dict:       dict,
		candidates: make([]candidate, 0, dict.Len()),
	}
	e.candidates = e.appendFreshCandidates(e.candidates)
	return e
}

// appendFreshCandidates adds every dictionary word as a full-length hypothesis
func (e *SegmentationEngine) appendFreshCandidates(dst []candidate) []candidate {
	for i, w := range e.dict.Words() {
		if len(w) == 0 {
			continue
		}
		dst = append(dst, candidate{word: i})
	}
	return dst
}

// next returns the upper-cased next unconsumed letter of a candidate
func (e *SegmentationEngine) next(cand candidate) byte {
	return dictionary.FoldByte(e.dict.Word(cand.word)[cand.offset])
}

// PushChar offers one letter to the board. On Reject nothing changes.
func (e *SegmentationEngine) PushChar(c byte) Status {
	if e.finalized || !dictionary.IsLetter(c) {
		return Reject
	}
	folded := dictionary.FoldByte(c)

	if !e.accepts(folded) {
		return Reject
	}

	boundary := false
	kept := e.candidates[:0]
	for _, cand := range e.candidates {
		if e.next(cand) != folded {
			continue
		}
		cand.offset++
		if cand.offset == len(e.dict.Word(cand.word)) {
			boundary = true
			continue
		}
		kept = append(kept, cand)
	}
	if boundary {
		kept = e.appendFreshCandidates(kept)
	}

	e.candidates = kept
	e.atBoundary = boundary
	e.message = append(e.message, c)
	return Accept
}

// accepts reports whether any open hypothesis continues with folded
func (e *SegmentationEngine) accepts(folded byte) bool {
	for _, cand := range e.candidates {
		if e.next(cand) == folded {
			return true
		}
	}
	return false
}

// Finalize resolves the message into its fewest-words segmentation.
// It returns Done and the words on success; the engine is then finalized.
func (e *SegmentationEngine) Finalize() ([]string, Status) {
	if e.finalized || !e.atBoundary {
		return nil, Reject
	}

	words, ok := Segment(e.dict, string(e.message))
	if !ok {
		return nil, Reject
	}

	e.finalized = true
	e.candidates = nil
	return words, Done
}

// LegalNextCharacters returns the sorted upper-case letters some open
// hypothesis can take next.
func (e *SegmentationEngine) LegalNextCharacters() []byte {
	var seen [26]bool
	for _, cand := range e.candidates {
		c := e.next(cand)
		if c >= 'A' && c <= 'Z' {
			seen[c-'A'] = true
		}
	}

	letters := make([]byte, 0, 26)
	for i, ok := range seen {
		if ok {
			letters = append(letters, byte('A'+i))
		}
	}
	return letters
}

// Message returns the accepted letters as typed
func (e *SegmentationEngine) Message() string {
	return string(e.message)
}

// AtBoundary reports whether the message so far splits into whole words
func (e *SegmentationEngine) AtBoundary() bool {
	return e.atBoundary
}

// State returns the lifecycle state
func (e *SegmentationEngine) State() State {
	switch {
	case e.finalized:
		return Finalized
	case len(e.message) == 0:
		return Empty
	default:
		return InProgress
	}
}

// CandidateCount returns the number of open hypotheses
func (e *SegmentationEngine) CandidateCount() int {
	return len(e.candidates)
}

// Snapshot returns a copy of the observable state
func (e *SegmentationEngine) Snapshot() Snapshot {
	legal := e.LegalNextCharacters()
	next := make([]string, len(legal))
	for i, c := range legal {
		next[i] = string(c)
	}

	return Snapshot{
		Message:        e.Message(),
		State:          e.State(),
		AtBoundary:     e.atBoundary,
		LegalNext:      next,
		OpenHypotheses: len(e.candidates),
	}
}
