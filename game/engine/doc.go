// Package engine provides the incremental word-segmentation logic behind an
// Ouija board.
//
// The engine package implements:
//   - Character-by-character acceptance against a shared dictionary
//   - The set of letters that may legally come next
//   - Boundary tracking (does the message so far split into whole words?)
//   - Fewest-words segmentation of the finished message
//
// Core Types:
//
// The Engine interface defines the contract consumed by the session layer and
// is implemented by SegmentationEngine. Status is the outcome of PushChar and
// Finalize. Snapshot is a JSON-friendly view for transports.
//
// Open Hypotheses:
//
// The engine keeps a multiset of candidates, each one the unmatched tail of a
// dictionary word that could still be completed by the letters typed since
// some reachable word boundary. A candidate is stored as a (word, offset)
// pair into the shared dictionary, so no word data is copied. Accepting a
// letter advances every matching candidate and drops the rest; when any
// candidate is completed the whole dictionary is added back as fresh
// candidates, because a new word may start at the next letter. A letter that
// no candidate accepts is rejected and leaves the engine untouched.
//
// Usage:
//
//	dict := dictionary.New([]string{"ANT", "AN", "T"})
//	eng := engine.NewEngine(dict)
//
//	for _, c := range []byte("ANT") {
//		if eng.PushChar(c) == engine.Reject {
//			// ask for another letter
//		}
//	}
//
//	words, status := eng.Finalize() // ["ANT"], engine.Done
//
// Tie-break:
//
// When several segmentations share the minimum word count, Finalize returns
// the one whose sequence of dictionary indices is lexicographically smallest,
// which is the first one a depth-first search in dictionary order would find.
// The choice depends only on dictionary order and carries no other meaning.
package engine
