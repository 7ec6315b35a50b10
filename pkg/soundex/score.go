package soundex

import "fmt"

// Scores follow the difference convention: 0 is a perfect match and larger
// is worse. Real scores never reach NoMatchScore.
const (
	// LetterMismatch is added when the leading letters differ.
	LetterMismatch = 1000
	// NoMatchScore marks codes that share no character at all.
	NoMatchScore = 2000
	// MaxSimilarity is the best value returned by Similarity.
	MaxSimilarity = 5
)

// Code is a validated four character Soundex code, e.g. "R163".
type Code string

// ParseCode validates s as a code: one upper case letter and three digits.
func ParseCode(s string) (Code, error) {
	if len(s) != CodeLen {
		return "", fmt.Errorf("%w: %q must be %d characters long", ErrInvalidCode, s, CodeLen)
	}
	if s[0] < 'A' || s[0] > 'Z' {
		return "", fmt.Errorf("%w: %q must start with an upper case letter", ErrInvalidCode, s)
	}
	for i := 1; i < CodeLen; i++ {
		if s[i] < '0' || s[i] > '9' {
			return "", fmt.Errorf("%w: %q must end with three digits", ErrInvalidCode, s)
		}
	}
	return Code(s), nil
}

// Letter returns the leading letter.
func (c Code) Letter() byte {
	return c[0]
}

// Suffix returns the numeric value of the three digits.
func (c Code) Suffix() int {
	return int(c[1]-'0')*100 + int(c[2]-'0')*10 + int(c[3]-'0')
}

func (c Code) String() string {
	return string(c)
}

// Score returns the difference between two codes.
//
// Equal codes score 0. Codes without a single shared character score
// NoMatchScore. Otherwise the score is the distance between the numeric
// suffixes, plus LetterMismatch when the leading letters differ.
func Score(a, b Code) (int, error) {
	if _, err := ParseCode(string(a)); err != nil {
		return 0, err
	}
	if _, err := ParseCode(string(b)); err != nil {
		return 0, err
	}
	if a == b {
		return 0, nil
	}
	if !shareChar(a, b) {
		return NoMatchScore, nil
	}

	score := 0
	if a.Letter() != b.Letter() {
		score += LetterMismatch
	}
	d := a.Suffix() - b.Suffix()
	if d < 0 {
		d = -d
	}
	return score + d, nil
}

// Similarity rates two codes from 0 to MaxSimilarity: 2 points for the
// leading letter and 1 for each digit in the same position.
func Similarity(a, b Code) (int, error) {
	if _, err := ParseCode(string(a)); err != nil {
		return 0, err
	}
	if _, err := ParseCode(string(b)); err != nil {
		return 0, err
	}
	rank := 0
	for i := 0; i < CodeLen; i++ {
		if a[i] != b[i] {
			continue
		}
		if i == 0 {
			rank += 2
		} else {
			rank++
		}
	}
	return rank, nil
}

func shareChar(a, b Code) bool {
	for i := 0; i < CodeLen; i++ {
		for j := 0; j < CodeLen; j++ {
			if a[i] == b[j] {
				return true
			}
		}
	}
	return false
}
