package rank

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSentinel = 2000

func newTable(t *testing.T, k int) *Table {
	t.Helper()
	table, err := New(k, testSentinel)
	require.NoError(t, err)
	return table
}

func words(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Word
	}
	return out
}

func TestNewRejectsNonPositiveCapacity(t *testing.T) {
	for _, k := range []int{0, -1, -50} {
		_, err := New(k, testSentinel)
		assert.ErrorIs(t, err, ErrInvalidCapacity, "k=%d", k)
	}
}

func TestEmptyTableReportsSentinel(t *testing.T) {
	table := newTable(t, DefaultCapacity)
	results := table.Results()
	require.Len(t, results, 1)
	assert.Equal(t, testSentinel, results[0].Score)
	assert.True(t, IsSentinel(results[0]))
	assert.Equal(t, 0, table.Len())
	assert.Equal(t, testSentinel, table.Worst())
}

func TestInsertEvictsSentinel(t *testing.T) {
	table := newTable(t, 3)
	assert.True(t, table.Insert(10, "ten"))

	results := table.Results()
	require.Len(t, results, 1)
	assert.False(t, IsSentinel(results[0]))
	assert.Equal(t, "ten", results[0].Word)
}

func TestInsertKeepsBestK(t *testing.T) {
	table := newTable(t, 3)
	inputs := []struct {
		score int
		word  string
		added bool
	}{
		{50, "fifty", true},
		{10, "ten", true},
		{30, "thirty", true},
		{40, "forty", true},  // evicts fifty
		{45, "fortyfive", false},
		{40, "other", false}, // duplicate score
		{5, "five", true},    // evicts forty
	}
	for _, in := range inputs {
		assert.Equal(t, in.added, table.Insert(in.score, in.word), "insert %s", in.word)
		assert.LessOrEqual(t, table.Len(), 3)
	}

	assert.Equal(t, []string{"five", "ten", "thirty"}, words(table.Results()))
	assert.Equal(t, 30, table.Worst())
	assert.Equal(t, 3, table.Cap())
}

func TestDuplicateScoreNeverChangesTable(t *testing.T) {
	table := newTable(t, 5)
	table.Insert(7, "first")
	before := table.Results()

	assert.False(t, table.Insert(7, "second"))
	assert.False(t, table.InsertAt(7, "third", 100))
	assert.Equal(t, before, table.Results())
}

func TestInsertAtPrefersEarliestOffset(t *testing.T) {
	table := newTable(t, 5)
	table.InsertAt(7, "later", 500)
	assert.True(t, table.InsertAt(7, "earlier", 20))
	assert.False(t, table.InsertAt(7, "latest", 900))

	results := table.Results()
	require.Len(t, results, 1)
	assert.Equal(t, "earlier", results[0].Word)
	assert.Equal(t, int64(20), results[0].Offset)
}

func TestMergeMatchesUnboundedReference(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		k := 1 + rng.Intn(8)
		a := newTable(t, k)
		b := newTable(t, k)

		// reference: earliest occurrence of each score across both streams
		reference := map[int]Entry{}
		var offset int64
		n := rng.Intn(60)
		for i := 0; i < n; i++ {
			offset++
			score := rng.Intn(40)
			word := string(rune('a' + rng.Intn(26)))
			target := a
			if rng.Intn(2) == 0 {
				target = b
			}
			target.InsertAt(score, word, offset)
			if _, ok := reference[score]; !ok {
				reference[score] = Entry{Score: score, Word: word, Offset: offset}
			}
		}

		expected := make([]Entry, 0, len(reference))
		for _, e := range reference {
			expected = append(expected, e)
		}
		sort.Slice(expected, func(i, j int) bool { return expected[i].Score < expected[j].Score })
		if len(expected) > k {
			expected = expected[:k]
		}

		ab := newTable(t, k)
		ab.Merge(a)
		ab.Merge(b)
		ba := newTable(t, k)
		ba.Merge(b)
		ba.Merge(a)

		if len(expected) == 0 {
			assert.True(t, IsSentinel(ab.Results()[0]))
			continue
		}
		assert.Equal(t, expected, ab.Results(), "round %d", round)
		assert.Equal(t, ab.Results(), ba.Results(), "merge order must not matter")
	}
}

func TestMergeNil(t *testing.T) {
	table := newTable(t, 2)
	table.Insert(1, "one")
	table.Merge(nil)
	assert.Equal(t, []string{"one"}, words(table.Results()))
}
