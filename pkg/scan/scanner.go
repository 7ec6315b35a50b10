/*
Package scan finds the words of a text file that sound most like a query.

A Scanner reads the file in whitespace aligned chunks, extracts alphabetic
words, encodes them with Soundex, scores them against the query code and
keeps the best K. With more than one worker, chunks are handed to a fixed
pool over a channel and every worker returns its own partial result; the
partials are merged once all workers are finished.

# Modes

In rank mode (the default) every occurrence of a word is scored and each
worker keeps a bounded rank.Table. In words mode workers collect the set of
distinct words instead, the sets are unioned and the union is scored once.
Both modes return the same matches.

# Ties

A table keeps one word per score. When several words share a score the one
appearing first in the file wins, whatever the number of workers.
*/
package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bastiangx/wordfind/internal/logger"
	"github.com/bastiangx/wordfind/pkg/chunk"
	"github.com/bastiangx/wordfind/pkg/rank"
	"github.com/bastiangx/wordfind/pkg/soundex"
	"github.com/charmbracelet/log"
	"github.com/hbollon/go-edlib"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrNoWords is returned when the input holds no alphabetic word at all.
	ErrNoWords = errors.New("no words found in file")
	// ErrInvalidMode is returned by New for an unknown Mode.
	ErrInvalidMode = errors.New("invalid scan mode")
)

// Mode selects how workers accumulate words.
type Mode string

const (
	ModeRank  Mode = "rank"
	ModeWords Mode = "words"
)

const (
	// SequentialChunkSize is the default chunk size with a single worker.
	SequentialChunkSize = 2 * 1024
	// ParallelChunkSize is the default chunk size with several workers.
	ParallelChunkSize = 128 * 1024
	// DefaultCacheSize bounds each worker's encoder cache.
	DefaultCacheSize = 4096
)

// Options configures a Scanner. Zero values fall back to defaults.
type Options struct {
	Workers       int
	ChunkSize     int // bytes
	TopK          int
	Mode          Mode
	BoundaryLimit int
	CacheSize     int // per worker, negative disables caching
}

// DefaultOptions returns a sequential rank mode configuration.
func DefaultOptions() Options {
	return Options{
		Workers:       1,
		TopK:          rank.DefaultCapacity,
		Mode:          ModeRank,
		BoundaryLimit: chunk.MaxBoundaryScan,
		CacheSize:     DefaultCacheSize,
	}
}

// Match is one ranked word.
type Match struct {
	Word       string       `json:"word"`
	Code       soundex.Code `json:"code,omitempty"`
	Score      int          `json:"score"`
	Similarity int          `json:"similarity"`
	Spelling   float32      `json:"spelling"`
	Offset     int64        `json:"offset"`
	Sentinel   bool         `json:"sentinel,omitempty"`
}

// Result is the outcome of a scan.
type Result struct {
	Query   string        `json:"query"`
	Code    soundex.Code  `json:"code"`
	Matches []Match       `json:"matches"`
	Words   int           `json:"words"`
	Unique  int           `json:"unique,omitempty"`
	Chunks  int           `json:"chunks"`
	Workers int           `json:"workers"`
	Mode    Mode          `json:"mode"`
	Elapsed time.Duration `json:"elapsed"`
}

// Scanner runs searches with fixed options. A Scanner runs one search at a
// time; State reports the stage of the current or last run.
type Scanner struct {
	opts   Options
	state  atomic.Int32
	logger *log.Logger
}

// New validates opts and creates a Scanner.
func New(opts Options) (*Scanner, error) {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.TopK <= 0 {
		return nil, fmt.Errorf("%w: top-k must be positive, got %d", rank.ErrInvalidCapacity, opts.TopK)
	}
	switch opts.Mode {
	case "":
		opts.Mode = ModeRank
	case ModeRank, ModeWords:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, opts.Mode)
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = SequentialChunkSize
		if opts.Workers > 1 {
			opts.ChunkSize = ParallelChunkSize
		}
	}
	if opts.BoundaryLimit <= 0 {
		opts.BoundaryLimit = chunk.MaxBoundaryScan
	}
	return &Scanner{opts: opts, logger: logger.New("scan")}, nil
}

// Options returns the effective options after defaults were applied.
func (s *Scanner) Options() Options {
	return s.opts
}

// State returns the current stage.
func (s *Scanner) State() State {
	return State(s.state.Load())
}

func (s *Scanner) setState(st State) {
	s.state.Store(int32(st))
	s.logger.Debug("state", "stage", st.String())
}

// Run searches the file at path for words sounding like query.
// The file is closed before Run returns.
func (s *Scanner) Run(ctx context.Context, path, query string) (*Result, error) {
	fr, err := chunk.Open(path, s.opts.ChunkSize, chunk.WithBoundaryLimit(s.opts.BoundaryLimit))
	if err != nil {
		return nil, err
	}
	defer fr.Close()

	s.logger.Debug("opened input", "path", path, "bytes", fr.Size())
	return s.scan(ctx, fr.Reader, query)
}

// Scan searches r for words sounding like query.
func (s *Scanner) Scan(ctx context.Context, r io.Reader, query string) (*Result, error) {
	reader := chunk.NewReader(r, s.opts.ChunkSize, chunk.WithBoundaryLimit(s.opts.BoundaryLimit))
	return s.scan(ctx, reader, query)
}

func (s *Scanner) scan(ctx context.Context, reader *chunk.Reader, query string) (res *Result, err error) {
	start := time.Now()
	s.setState(Idle)
	defer func() {
		if err != nil {
			s.setState(Failed)
		}
	}()

	qcode, err := soundex.Encode(query)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	s.logger.Debug("query encoded", "query", query, "code", qcode)

	s.setState(Scanning)
	var partials []partial
	if s.opts.Workers == 1 {
		p, err := s.scanSequential(ctx, reader, qcode)
		if err != nil {
			return nil, err
		}
		partials = []partial{p}
	} else {
		partials, err = s.scanParallel(ctx, reader, qcode)
		if err != nil {
			return nil, err
		}
	}

	s.setState(Merging)
	res, err = s.aggregate(partials, query, qcode)
	if err != nil {
		return nil, err
	}
	res.Elapsed = time.Since(start)

	s.setState(Done)
	s.logger.Debugf("scanned %d words in %d chunks with %d worker(s) in %v", res.Words, res.Chunks, res.Workers, res.Elapsed)
	return res, nil
}

func (s *Scanner) scanSequential(ctx context.Context, reader *chunk.Reader, qcode soundex.Code) (partial, error) {
	w, err := newWorker(s.opts, qcode)
	if err != nil {
		return partial{}, err
	}
	for {
		if err := ctx.Err(); err != nil {
			return partial{}, err
		}
		c, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return w.out, nil
		}
		if err != nil {
			return partial{}, err
		}
		if err := w.consume(c); err != nil {
			return partial{}, err
		}
	}
}

// scanParallel feeds chunks to a fixed pool of workers. The first error
// cancels the group; every goroutine has exited when it returns.
func (s *Scanner) scanParallel(ctx context.Context, reader *chunk.Reader, qcode soundex.Code) ([]partial, error) {
	workers := s.opts.Workers
	g, gctx := errgroup.WithContext(ctx)

	chunks := make(chan chunk.Chunk, workers*2)
	results := make(chan partial, workers)

	g.Go(func() error {
		defer close(chunks)
		for {
			c, err := reader.Next()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			select {
			case chunks <- c:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	for i := 0; i < workers; i++ {
		id := i
		g.Go(func() error {
			w, err := newWorker(s.opts, qcode)
			if err != nil {
				return err
			}
			for c := range chunks {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := w.consume(c); err != nil {
					return err
				}
			}
			s.logger.Debug("worker finished", "worker", id, "chunks", w.out.chunks, "words", w.out.words)
			results <- w.out
			return nil
		})
	}

	err := g.Wait()
	close(results)
	if err != nil {
		return nil, err
	}

	partials := make([]partial, 0, workers)
	for p := range results {
		partials = append(partials, p)
	}
	return partials, nil
}

// aggregate merges partial results. The outcome does not depend on the
// order of partials.
func (s *Scanner) aggregate(partials []partial, query string, qcode soundex.Code) (*Result, error) {
	res := &Result{
		Query:   query,
		Code:    qcode,
		Workers: s.opts.Workers,
		Mode:    s.opts.Mode,
	}
	for _, p := range partials {
		res.Words += p.words
		res.Chunks += p.chunks
	}
	if res.Words == 0 {
		return nil, ErrNoWords
	}

	enc := newEncoder(s.opts.CacheSize)
	table, err := rank.New(s.opts.TopK, soundex.NoMatchScore)
	if err != nil {
		return nil, err
	}

	switch s.opts.Mode {
	case ModeWords:
		union := newWordSet()
		for _, p := range partials {
			if err := union.union(p.set); err != nil {
				return nil, err
			}
		}
		res.Unique = union.count()
		err := union.each(func(word string, offset int64) error {
			return rankWord(table, enc, qcode, word, offset)
		})
		if err != nil {
			return nil, err
		}
	default:
		for _, p := range partials {
			table.Merge(p.table)
		}
	}

	matches, err := buildMatches(table, enc, query, qcode)
	if err != nil {
		return nil, err
	}
	res.Matches = matches
	return res, nil
}

func buildMatches(table *rank.Table, enc *soundex.Encoder, query string, qcode soundex.Code) ([]Match, error) {
	entries := table.Results()
	matches := make([]Match, 0, len(entries))
	lowerQuery := strings.ToLower(query)

	for _, e := range entries {
		if rank.IsSentinel(e) {
			matches = append(matches, Match{Word: e.Word, Score: e.Score, Offset: e.Offset, Sentinel: true})
			continue
		}
		code, err := enc.Encode(e.Word)
		if err != nil {
			return nil, err
		}
		similarity, err := soundex.Similarity(qcode, code)
		if err != nil {
			return nil, err
		}
		spelling, err := edlib.StringsSimilarity(lowerQuery, strings.ToLower(e.Word), edlib.JaroWinkler)
		if err != nil {
			spelling = 0
		}
		matches = append(matches, Match{
			Word:       e.Word,
			Code:       code,
			Score:      e.Score,
			Similarity: similarity,
			Spelling:   spelling,
			Offset:     e.Offset,
		})
	}
	return matches, nil
}
