package dictionary

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Reasons a line is not admitted as a word.
const (
	ReasonEmpty    = "empty"
	ReasonNonAlpha = "non_alpha"
	ReasonTooShort = "too_short"
)

// maxLineSize bounds a single dictionary line.
const maxLineSize = 1 << 20

// LoadStats summarizes a load.
type LoadStats struct {
	Lines   int `json:"lines"`
	Kept    int `json:"kept"`
	Dropped int `json:"dropped"`
}

// Admissible reports whether line may become a dictionary word.
func Admissible(line string) bool {
	return RejectReason(line) == ""
}

// RejectReason returns why line is not admissible, or "" if it is.
func RejectReason(line string) string {
	if line == "" {
		return ReasonEmpty
	}
	for i := 0; i < len(line); i++ {
		if !IsLetter(line[i]) {
			return ReasonNonAlpha
		}
	}
	if len(line) < 2 && !strings.EqualFold(line, "a") {
		return ReasonTooShort
	}
	return ""
}

// ScanLines calls fn for every line of r, numbered from 1, with any
// trailing carriage return removed. Lines may be up to 1 MiB long.
func ScanLines(r io.Reader, fn func(n int, line string)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	n := 0
	for sc.Scan() {
		n++
		fn(n, strings.TrimSuffix(sc.Text(), "\r"))
	}
	return sc.Err()
}

// Parse reads one candidate word per line and keeps the admissible ones in order.
func Parse(r io.Reader) (*Dictionary, LoadStats, error) {
	var stats LoadStats
	var words []string

	err := ScanLines(r, func(_ int, line string) {
		stats.Lines++
		if !Admissible(line) {
			stats.Dropped++
			return
		}
		words = append(words, line)
		stats.Kept++
	})
	if err != nil {
		return nil, stats, fmt.Errorf("failed to read dictionary: %w", err)
	}

	return New(words), stats, nil
}

// Load opens path and parses it as a dictionary file.
func Load(path string) (*Dictionary, LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("failed to open dictionary: %w", err)
	}
	defer f.Close()

	dict, stats, err := Parse(f)
	if err != nil {
		return nil, stats, fmt.Errorf("%s: %w", path, err)
	}
	return dict, stats, nil
}
