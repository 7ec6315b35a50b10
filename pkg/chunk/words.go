package chunk

// Word is a maximal run of ASCII letters and where it starts in the source.
type Word struct {
	Text   string
	Offset int64
}

// Words returns every word in c in order of appearance. Digits, punctuation
// and any non-ASCII byte act as separators.
func Words(c Chunk) []Word {
	var words []Word
	start := -1
	for i, b := range c.Data {
		if isLetter(b) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			words = append(words, Word{Text: string(c.Data[start:i]), Offset: c.Offset + int64(start)})
			start = -1
		}
	}
	if start >= 0 {
		words = append(words, Word{Text: string(c.Data[start:]), Offset: c.Offset + int64(start)})
	}
	return words
}

// WordSet returns the distinct words of c, each mapped to its first offset.
func WordSet(c Chunk) map[string]int64 {
	set := make(map[string]int64)
	for _, w := range Words(c) {
		if _, seen := set[w.Text]; !seen {
			set[w.Text] = w.Offset
		}
	}
	return set
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
