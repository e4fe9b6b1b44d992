package dictionary

// Dictionary is an immutable ordered word list.
type Dictionary struct {
	words []string
}

// New creates a dictionary from an already admitted list of words.
// Words are upper-cased; order and duplicates are preserved.
func New(words []string) *Dictionary {
	normalized := make([]string, len(words))
	for i, w := range words {
		normalized[i] = ToUpper(w)
	}
	return &Dictionary{words: normalized}
}

// Words returns the word list. Callers must not modify the returned slice.
func (d *Dictionary) Words() []string {
	return d.words
}

// Len returns the number of words
func (d *Dictionary) Len() int {
	return len(d.words)
}

// Word returns the i-th word in dictionary order
func (d *Dictionary) Word(i int) string {
	return d.words[i]
}

// WordMatchesPrefix reports whether word starts with prefix, ignoring ASCII case.
func WordMatchesPrefix(word, prefix string) bool {
	if len(prefix) > len(word) {
		return false
	}
	return WordMatches(word[:len(prefix)], prefix)
}

// WordMatches reports whether word equals text, ignoring ASCII case.
func WordMatches(word, text string) bool {
	if len(word) != len(text) {
		return false
	}
	for i := 0; i < len(word); i++ {
		if FoldByte(word[i]) != FoldByte(text[i]) {
			return false
		}
	}
	return true
}

// WordMatchesPrefix is the method form of the package-level predicate.
func (d *Dictionary) WordMatchesPrefix(word, prefix string) bool {
	return WordMatchesPrefix(word, prefix)
}

// WordMatches is the method form of the package-level predicate.
func (d *Dictionary) WordMatches(word, text string) bool {
	return WordMatches(word, text)
}

// FoldByte maps an ASCII lower-case letter to upper case and leaves every
// other byte untouched.
func FoldByte(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}

// IsLetter reports whether c is an ASCII letter.
func IsLetter(c byte) bool {
	c = FoldByte(c)
	return c >= 'A' && c <= 'Z'
}

// ToUpper upper-cases the ASCII letters of s.
func ToUpper(s string) string {
	b := []byte(s)
	for i := range b {
		b[i] = FoldByte(b[i])
	}
	return string(b)
}
