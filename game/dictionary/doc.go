// Package dictionary provides the shared word list used by every Ouija board.
//
// The dictionary package implements:
//   - An immutable, ordered list of upper-cased ASCII words
//   - ASCII case-insensitive prefix and equality predicates
//   - A line-oriented loader that applies the admission rule
//
// Core Types:
//
// Dictionary is built once (usually by Load at startup) and then shared by
// pointer across all boards and goroutines. It is never mutated after
// construction, so it needs no locking.
//
// Admission Rule:
//
// A line becomes a word only if it consists solely of ASCII letters and is
// at least two letters long. The single exception is the one-letter word "a"
// (in either case). Everything else is dropped and counted in LoadStats.
//
// Usage:
//
//	dict, stats, err := dictionary.Load("/usr/share/dict/words")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("kept %d of %d lines\n", stats.Kept, stats.Lines)
//
//	dict.WordMatchesPrefix("CATS", "ca") // true
package dictionary
