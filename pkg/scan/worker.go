package scan

import (
	"fmt"

	"github.com/bastiangx/wordfind/pkg/chunk"
	"github.com/bastiangx/wordfind/pkg/rank"
	"github.com/bastiangx/wordfind/pkg/soundex"
)

// partial is what one worker hands back to the aggregation step.
type partial struct {
	table  *rank.Table
	set    *wordSet
	words  int
	chunks int
}

// worker owns its encoder, table and word set. Nothing in it is shared.
type worker struct {
	mode  Mode
	query soundex.Code
	enc   *soundex.Encoder
	out   partial
}

func newWorker(opts Options, query soundex.Code) (*worker, error) {
	w := &worker{
		mode:  opts.Mode,
		query: query,
		enc:   newEncoder(opts.CacheSize),
	}
	switch opts.Mode {
	case ModeWords:
		w.out.set = newWordSet()
	default:
		table, err := rank.New(opts.TopK, soundex.NoMatchScore)
		if err != nil {
			return nil, err
		}
		w.out.table = table
	}
	return w, nil
}

func newEncoder(cacheSize int) *soundex.Encoder {
	if cacheSize < 0 {
		return soundex.NewEncoder(nil)
	}
	return soundex.NewEncoder(soundex.NewMemo(cacheSize))
}

// consume extracts and ranks (or collects) the words of one chunk.
func (w *worker) consume(c chunk.Chunk) error {
	words := chunk.Words(c)
	w.out.words += len(words)
	w.out.chunks++

	if w.mode == ModeWords {
		for _, word := range words {
			w.out.set.add(word.Text, word.Offset)
		}
		return nil
	}

	for _, word := range words {
		if err := rankWord(w.out.table, w.enc, w.query, word.Text, word.Offset); err != nil {
			return fmt.Errorf("chunk %d: %w", c.Index, err)
		}
	}
	return nil
}

// rankWord scores word against query and inserts it unless the two codes
// have nothing in common.
func rankWord(table *rank.Table, enc *soundex.Encoder, query soundex.Code, word string, offset int64) error {
	code, err := enc.Encode(word)
	if err != nil {
		return err
	}
	score, err := soundex.Score(query, code)
	if err != nil {
		return err
	}
	if score >= soundex.NoMatchScore {
		return nil
	}
	table.InsertAt(score, word, offset)
	return nil
}
