// Command validate checks dictionary files line by line before they are
// served. For each file it reports:
//   - how many lines become words and how many are dropped
//   - the first dropped lines with the reason (empty, non_alpha, too_short)
//   - case-insensitive duplicate words
//
// Files are taken from the arguments, or every *.txt in ../dictionaries.
// The exit status is 1 if any file yields no words.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/askouija/game/dictionary"
)

// maxSamples bounds the dropped lines listed per file
const maxSamples = 5

// DroppedLine is a line that did not become a word.
type DroppedLine struct {
	Line   int
	Text   string
	Reason string
}

// ValidationResult captures the outcome of validating a single file.
// Errors holds problems that make the file unusable; Warnings are informational.
type ValidationResult struct {
	File       string
	Valid      bool
	Lines      int
	Kept       int
	Dropped    int
	Duplicates int
	Reasons    map[string]int
	Samples    []DroppedLine
	Errors     []string
	Warnings   []string
}

// validateDictionary reads one dictionary file and classifies every line
// with the same rule the server's loader applies.
func validateDictionary(filePath string) ValidationResult {
	result := ValidationResult{
		File:    filepath.Base(filePath),
		Valid:   true,
		Reasons: map[string]int{},
	}

	f, err := os.Open(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}
	defer f.Close()

	seen := make(map[string]bool)
	err = dictionary.ScanLines(f, func(n int, line string) {
		result.Lines = n

		if reason := dictionary.RejectReason(line); reason != "" {
			result.Dropped++
			result.Reasons[reason]++
			if len(result.Samples) < maxSamples {
				result.Samples = append(result.Samples, DroppedLine{Line: n, Text: line, Reason: reason})
			}
			return
		}

		result.Kept++
		key := dictionary.ToUpper(line)
		if seen[key] {
			result.Duplicates++
		}
		seen[key] = true
	})
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to scan file: %v", err))
		return result
	}

	if result.Kept == 0 {
		result.Valid = false
		result.Errors = append(result.Errors, "No admissible words")
	}
	if result.Duplicates > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%d duplicate words (case-insensitive)", result.Duplicates))
	}

	return result
}

// printResult writes a concise report for one file
func printResult(result ValidationResult) {
	fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

	if result.Valid {
		fmt.Println("✅ VALID")
	} else {
		fmt.Println("❌ INVALID")
		for _, err := range result.Errors {
			fmt.Println("  ❌ " + err)
		}
	}

	if result.Lines > 0 {
		fmt.Printf("  ✓ Lines: %d, kept: %d, dropped: %d\n", result.Lines, result.Kept, result.Dropped)
	}
	for _, reason := range []string{dictionary.ReasonEmpty, dictionary.ReasonNonAlpha, dictionary.ReasonTooShort} {
		if n := result.Reasons[reason]; n > 0 {
			fmt.Printf("    %s: %d\n", reason, n)
		}
	}
	for _, s := range result.Samples {
		fmt.Printf("    line %d %q: %s\n", s.Line, s.Text, s.Reason)
	}
	for _, w := range result.Warnings {
		fmt.Println("  ⚠ " + w)
	}
}

// main validates each file and exits non-zero if any is unusable.
func main() {
	files := os.Args[1:]
	if len(files) == 0 {
		var err error
		files, err = filepath.Glob(filepath.Join("../dictionaries", "*.txt"))
		if err != nil {
			fmt.Printf("Error finding dictionary files: %v\n", err)
			os.Exit(1)
		}
	}
	if len(files) == 0 {
		fmt.Println("No dictionary files given")
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateDictionary(file)
		printResult(result)
		if !result.Valid {
			allValid = false
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All dictionaries are usable!")
	} else {
		fmt.Println("❌ Some dictionaries have no words")
		os.Exit(1)
	}
}
