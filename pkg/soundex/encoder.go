/*
Package soundex encodes words into four character Soundex codes and scores
how far apart two codes are.

A code is the word's first letter followed by three digits:

	Robert   -> R163
	Ashcraft -> A261
	Tymczak  -> T522

Letters fold into digit groups (BFPV=1, CGJKQSXZ=2, DT=3, L=4, MN=5, R=6).
Adjacent letters of the same group produce one digit. A single H or W
between two coded letters does not break adjacency, vowels and Y do. The
leading letter is kept verbatim and its own digit is not repeated right after
it, but an H or W following it ends that rule:

	Pfister  -> P236
	Swhgler  -> S246

Encoding is deterministic, so an [Encoder] may memoize results in a [Cache]
supplied by the caller. Nothing is cached at package level.
*/
package soundex

import (
	"errors"
	"fmt"
)

// CodeLen is the length of every Soundex code.
const CodeLen = 4

var (
	// ErrInvalidInput is returned for empty or non-alphabetic words.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidCode is returned when a string is not a well formed code.
	ErrInvalidCode = errors.New("invalid soundex code")
)

const (
	separator   byte = 0   // vowels and Y
	transparent byte = '#' // H and W
	leading     byte = '@'
)

// groups maps upper case letters to their digit group.
var groups = [26]byte{
	'A' - 'A': separator,
	'B' - 'A': '1',
	'C' - 'A': '2',
	'D' - 'A': '3',
	'E' - 'A': separator,
	'F' - 'A': '1',
	'G' - 'A': '2',
	'H' - 'A': transparent,
	'I' - 'A': separator,
	'J' - 'A': '2',
	'K' - 'A': '2',
	'L' - 'A': '4',
	'M' - 'A': '5',
	'N' - 'A': '5',
	'O' - 'A': separator,
	'P' - 'A': '1',
	'Q' - 'A': '2',
	'R' - 'A': '6',
	'S' - 'A': '2',
	'T' - 'A': '3',
	'U' - 'A': separator,
	'V' - 'A': '1',
	'W' - 'A': transparent,
	'X' - 'A': '2',
	'Y' - 'A': separator,
	'Z' - 'A': '2',
}

// Encoder turns words into codes, optionally through a cache.
// An Encoder is as safe for concurrent use as its cache.
type Encoder struct {
	cache Cache
}

// NewEncoder creates an encoder backed by cache. A nil cache disables memoization.
func NewEncoder(cache Cache) *Encoder {
	return &Encoder{cache: cache}
}

// Encode returns the code for word, consulting the cache first.
func (e *Encoder) Encode(word string) (Code, error) {
	if e.cache != nil {
		if code, ok := e.cache.Get(word); ok {
			return code, nil
		}
	}
	code, err := Encode(word)
	if err != nil {
		return "", err
	}
	if e.cache != nil {
		e.cache.Put(word, code)
	}
	return code, nil
}

// Cache returns the encoder's cache, or nil.
func (e *Encoder) Cache() Cache {
	return e.cache
}

// Encode computes the Soundex code of word without any caching.
func Encode(word string) (Code, error) {
	if word == "" {
		return "", fmt.Errorf("%w: word cannot be empty", ErrInvalidInput)
	}

	var out [CodeLen]byte
	n := 0
	var lead byte
	// last and prev are the two most recent groups kept after the leading
	// letter; leading stands in for the letter itself.
	last, prev := leading, leading

	for i := 0; i < len(word); i++ {
		c := upper(word[i])
		if c < 'A' || c > 'Z' {
			return "", fmt.Errorf("%w: %q contains non-alphabetic character %q", ErrInvalidInput, word, word[i])
		}
		g := groups[c-'A']

		if i == 0 {
			out[0] = c
			n = 1
			lead = g
			continue
		}
		// keep validating the rest of the word once the code is full
		if n == CodeLen {
			continue
		}

		var keep bool
		switch last {
		case leading:
			keep = g != lead
		case transparent:
			// H and W bridge only between coded letters, never to the leading one
			keep = g != prev
		default:
			keep = g != last
		}
		if !keep {
			continue
		}
		prev, last = last, g
		if g != separator && g != transparent {
			out[n] = g
			n++
		}
	}

	for ; n < CodeLen; n++ {
		out[n] = '0'
	}
	return Code(out[:]), nil
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}
