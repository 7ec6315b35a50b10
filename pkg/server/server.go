package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bastiangx/wordfind/internal/logger"
	"github.com/bastiangx/wordfind/pkg/chunk"
	"github.com/bastiangx/wordfind/pkg/rank"
	"github.com/bastiangx/wordfind/pkg/scan"
	"github.com/bastiangx/wordfind/pkg/soundex"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Server handles msgpack IPC for wordfind searches.
type Server struct {
	defaults     scan.Options
	decoder      *msgpack.Decoder
	encoder      *msgpack.Encoder
	requestCount int
	logger       *log.Logger
}

// NewServer creates a server reading requests from r and writing replies to w.
// defaults apply to every request that does not override them.
func NewServer(defaults scan.Options, r io.Reader, w io.Writer) *Server {
	return &Server{
		defaults: defaults,
		decoder:  msgpack.NewDecoder(r),
		encoder:  msgpack.NewEncoder(w),
		logger:   logger.New("ipc"),
	}
}

// Start processes requests until the input ends or ctx is done.
// A malformed frame ends the session since the stream cannot be resynced.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Debug("Starting server")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var req SearchRequest
		if err := s.decoder.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Debug("Input closed", "requests", s.requestCount)
				return nil
			}
			s.logger.Errorf("Decoding request: %v", err)
			s.sendError("", fmt.Sprintf("invalid request: %v", err), 400)
			return err
		}
		s.requestCount++
		if err := s.handleRequest(ctx, req); err != nil {
			return err
		}
	}
}

// handleRequest dispatches one request; the returned error is an I/O failure.
func (s *Server) handleRequest(ctx context.Context, req SearchRequest) error {
	switch req.Action {
	case "", "search":
		return s.handleSearch(ctx, req)
	case "health":
		return s.send(StatusResponse{ID: req.ID, Status: "ok", Requests: s.requestCount})
	default:
		return s.sendError(req.ID, fmt.Sprintf("unknown action: %s", req.Action), 400)
	}
}

func (s *Server) handleSearch(ctx context.Context, req SearchRequest) error {
	if req.File == "" {
		return s.sendError(req.ID, "missing 'f' (file) field", 400)
	}
	if req.Query == "" {
		return s.sendError(req.ID, "missing 'q' (query) field", 400)
	}

	opts := s.defaults
	if req.TopK != 0 {
		opts.TopK = req.TopK
	}
	if req.Workers > 0 {
		if req.Workers != opts.Workers {
			// default chunk size follows the worker count
			opts.ChunkSize = 0
		}
		opts.Workers = req.Workers
	}
	if req.Mode != "" {
		opts.Mode = scan.Mode(req.Mode)
	}

	scanner, err := scan.New(opts)
	if err != nil {
		return s.sendError(req.ID, err.Error(), ErrorCode(err))
	}

	start := time.Now()
	res, err := scanner.Run(ctx, req.File, req.Query)
	if err != nil {
		s.logger.Debug("Search failed", "id", req.ID, "err", err)
		return s.sendError(req.ID, err.Error(), ErrorCode(err))
	}
	elapsed := time.Since(start)
	s.logger.Debugf("Took [ %v ] for query '%s'", elapsed, req.Query)

	items := make([]MatchItem, 0, len(res.Matches))
	for _, m := range res.Matches {
		items = append(items, MatchItem{Word: m.Word, Score: m.Score, Code: string(m.Code)})
	}
	return s.send(SearchResponse{
		ID:        req.ID,
		Code:      string(res.Code),
		Matches:   items,
		Count:     len(items),
		Words:     res.Words,
		TimeTaken: elapsed.Microseconds(),
	})
}

// ErrorCode maps a search error to the status code sent to clients.
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, soundex.ErrInvalidInput),
		errors.Is(err, soundex.ErrInvalidCode),
		errors.Is(err, rank.ErrInvalidCapacity),
		errors.Is(err, scan.ErrInvalidMode):
		return 400
	case errors.Is(err, scan.ErrNoWords), errors.Is(err, os.ErrNotExist):
		return 404
	case errors.Is(err, chunk.ErrNoBoundary):
		return 422
	default:
		return 500
	}
}

func (s *Server) send(response any) error {
	if err := s.encoder.Encode(response); err != nil {
		s.logger.Errorf("Encoding response: %v", err)
		return err
	}
	return nil
}

func (s *Server) sendError(id, message string, code int) error {
	return s.send(SearchError{ID: id, Error: message, Code: code})
}
