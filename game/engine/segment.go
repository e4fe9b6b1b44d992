package engine

import (
	"github.com/wricardo/askouija/game/dictionary"
)

const unreachable = -1

// Segment splits message into the fewest dictionary words, comparing
// case-insensitively. It reports false if message is empty or has no
// segmentation.
//
// dist[i] is the fewest words covering message[i:]. It is filled right to
// left in O(len(message) * |dict|) word comparisons, then the answer is read
// left to right taking, at each position, the first word in dictionary order
// that stays on a shortest path.
func Segment(dict *dictionary.Dictionary, message string) ([]string, bool) {
	n := len(message)
	if n == 0 {
		return nil, false
	}

	dist := make([]int, n+1)
	for i := range dist {
		dist[i] = unreachable
	}
	dist[n] = 0

	words := dict.Words()
	for i := n - 1; i >= 0; i-- {
		for _, w := range words {
			j := i + len(w)
			if len(w) == 0 || j > n || dist[j] == unreachable {
				continue
			}
			if !dictionary.WordMatches(w, message[i:j]) {
				continue
			}
			if dist[i] == unreachable || dist[j]+1 < dist[i] {
				dist[i] = dist[j] + 1
			}
		}
	}

	if dist[0] == unreachable {
		return nil, false
	}

	result := make([]string, 0, dist[0])
	for i := 0; i < n; {
		step := -1
		for _, w := range words {
			j := i + len(w)
			if len(w) == 0 || j > n || dist[j] != dist[i]-1 {
				continue
			}
			if dictionary.WordMatches(w, message[i:j]) {
				result = append(result, w)
				step = j
				break
			}
		}
		if step < 0 {
			return nil, false
		}
		i = step
	}

	return result, true
}
