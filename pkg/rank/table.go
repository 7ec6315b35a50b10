// Package rank keeps the K best scored words seen so far.
//
// Lower scores rank better. A Table holds at most one word per score: the
// first occurrence wins and later words with the same score are dropped.
package rank

import (
	"errors"
	"fmt"
	"sort"
)

const (
	// DefaultCapacity is the number of matches kept when none is configured.
	DefaultCapacity = 5
	// SentinelWord is reported in place of results when nothing was ranked.
	SentinelWord = "no match found"
	// noOffset marks entries inserted without a position.
	noOffset int64 = -1
)

// ErrInvalidCapacity is returned for a non-positive capacity.
var ErrInvalidCapacity = errors.New("invalid capacity")

// Entry is a ranked word.
type Entry struct {
	Score  int
	Word   string
	Offset int64 // byte offset of the word in its source, or -1
}

// Table is a bounded best-of-K structure keyed by score.
// It is not safe for concurrent use; callers merge tables instead.
type Table struct {
	entries  map[int]Entry
	capacity int
	sentinel int
}

// New creates a table keeping k entries. sentinelScore is reported with
// SentinelWord while the table is empty and must rank worse than any real score.
func New(k int, sentinelScore int) (*Table, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: top-k must be positive, got %d", ErrInvalidCapacity, k)
	}
	return &Table{
		entries:  make(map[int]Entry, k),
		capacity: k,
		sentinel: sentinelScore,
	}, nil
}

// Insert ranks word under score. It is a no-op when score is already present.
func (t *Table) Insert(score int, word string) bool {
	return t.InsertAt(score, word, noOffset)
}

// InsertAt ranks word found at offset. When score is already present the
// entry with the smaller known offset is kept, so the earliest occurrence in
// the source wins regardless of insertion order.
func (t *Table) InsertAt(score int, word string, offset int64) bool {
	if existing, ok := t.entries[score]; ok {
		if offset < 0 || existing.Offset < 0 || existing.Offset <= offset {
			return false
		}
		t.entries[score] = Entry{Score: score, Word: word, Offset: offset}
		return true
	}

	if len(t.entries) < t.capacity {
		t.entries[score] = Entry{Score: score, Word: word, Offset: offset}
		return true
	}

	worst := t.worstScore()
	if score >= worst {
		return false
	}
	delete(t.entries, worst)
	t.entries[score] = Entry{Score: score, Word: word, Offset: offset}
	return true
}

// Merge replays other's entries, best first, into t.
func (t *Table) Merge(other *Table) {
	if other == nil {
		return
	}
	for _, e := range other.sorted() {
		t.InsertAt(e.Score, e.Word, e.Offset)
	}
}

// Results returns the entries best first. An empty table reports a single
// sentinel entry instead.
func (t *Table) Results() []Entry {
	if len(t.entries) == 0 {
		return []Entry{{Score: t.sentinel, Word: SentinelWord, Offset: noOffset}}
	}
	return t.sorted()
}

// Len returns the number of real entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// Cap returns the table capacity.
func (t *Table) Cap() int {
	return t.capacity
}

// Worst returns the score that a new entry must beat once the table is full.
// It is the sentinel score while the table has room.
func (t *Table) Worst() int {
	if len(t.entries) < t.capacity {
		return t.sentinel
	}
	return t.worstScore()
}

// IsSentinel reports whether e is the placeholder returned by an empty table.
func IsSentinel(e Entry) bool {
	return e.Word == SentinelWord && e.Offset == noOffset
}

func (t *Table) worstScore() int {
	worst := 0
	first := true
	for score := range t.entries {
		if first || score > worst {
			worst = score
			first = false
		}
	}
	return worst
}

func (t *Table) sorted() []Entry {
	out := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Score < out[j].Score
	})
	return out
}
