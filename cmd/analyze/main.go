// Command analyze prints quick, human-readable heuristics about dictionary
// files. It summarizes word counts and lengths, lists the words that are
// strict prefixes of longer words (each one is a point where a message can
// be read two ways), and shows which letters can open a message.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/askouija/game/dictionary"
	"github.com/wricardo/askouija/game/engine"
)

// maxListed bounds the prefix words printed per file
const maxListed = 10

// Analysis is the summary of one dictionary.
type Analysis struct {
	Words         int
	Unique        int
	MinLength     int
	MaxLength     int
	Lengths       map[int]int
	PrefixWords   []string
	StartLetters  []string
	SingleLetters []string
}

func main() {
	files := os.Args[1:]
	if len(files) == 0 {
		files, _ = filepath.Glob(filepath.Join("dictionaries", "*.txt"))
	}

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		d, stats, err := dictionary.Load(file)
		if err != nil {
			fmt.Printf("Error reading file: %v\n", err)
			continue
		}
		fmt.Printf("Lines: %d (kept %d, dropped %d)\n", stats.Lines, stats.Kept, stats.Dropped)
		printAnalysis(os.Stdout, analyze(d))
	}
}

// analyze computes the summary. Words are compared case-insensitively.
func analyze(d *dictionary.Dictionary) Analysis {
	a := Analysis{
		Words:   d.Len(),
		Lengths: make(map[int]int),
	}

	seen := make(map[string]bool)
	var unique []string
	for _, w := range d.Words() {
		upper := dictionary.ToUpper(w)
		if seen[upper] {
			continue
		}
		seen[upper] = true
		unique = append(unique, upper)

		n := len(upper)
		a.Lengths[n]++
		if a.MinLength == 0 || n < a.MinLength {
			a.MinLength = n
		}
		if n > a.MaxLength {
			a.MaxLength = n
		}
		if n == 1 {
			a.SingleLetters = append(a.SingleLetters, upper)
		}
	}
	a.Unique = len(unique)
	sort.Strings(a.SingleLetters)

	// Words extending w form a contiguous run right after w in sorted order
	sort.Strings(unique)
	for i := 0; i+1 < len(unique); i++ {
		if strings.HasPrefix(unique[i+1], unique[i]) {
			a.PrefixWords = append(a.PrefixWords, unique[i])
		}
	}

	for _, c := range engine.NewEngine(d).LegalNextCharacters() {
		a.StartLetters = append(a.StartLetters, string(c))
	}

	return a
}

func printAnalysis(w io.Writer, a Analysis) {
	fmt.Fprintf(w, "Words: %d (%d unique)\n", a.Words, a.Unique)
	if a.Unique == 0 {
		fmt.Fprintln(w, "⚠️  WARNING: no words, every letter will be refused")
		return
	}
	fmt.Fprintf(w, "Length: %d to %d\n", a.MinLength, a.MaxLength)

	lengths := make([]int, 0, len(a.Lengths))
	for n := range a.Lengths {
		lengths = append(lengths, n)
	}
	sort.Ints(lengths)
	for _, n := range lengths {
		fmt.Fprintf(w, "  %2d | %s %d\n", n, strings.Repeat("#", scaled(a.Lengths[n], a.Unique)), a.Lengths[n])
	}

	fmt.Fprintf(w, "Start letters (%d): %s\n", len(a.StartLetters), strings.Join(a.StartLetters, " "))
	if len(a.SingleLetters) > 0 {
		fmt.Fprintf(w, "Single-letter words: %s\n", strings.Join(a.SingleLetters, " "))
	}

	if len(a.PrefixWords) == 0 {
		fmt.Fprintln(w, "✅ No word is a prefix of another; every message reads one way")
		return
	}
	fmt.Fprintf(w, "Prefix words: %d\n", len(a.PrefixWords))
	for i, p := range a.PrefixWords {
		if i == maxListed {
			fmt.Fprintf(w, "   ... and %d more\n", len(a.PrefixWords)-maxListed)
			break
		}
		fmt.Fprintf(w, "   %s\n", p)
	}
}

// scaled maps count onto a bar of at most 40 characters
func scaled(count, total int) int {
	if total == 0 {
		return 0
	}
	n := count * 40 / total
	if n == 0 && count > 0 {
		n = 1
	}
	return n
}
