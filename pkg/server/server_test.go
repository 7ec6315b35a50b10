package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/bastiangx/wordfind/pkg/chunk"
	"github.com/bastiangx/wordfind/pkg/rank"
	"github.com/bastiangx/wordfind/pkg/scan"
	"github.com/bastiangx/wordfind/pkg/soundex"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// session encodes reqs, runs a server over them and returns a decoder on its output.
func session(t *testing.T, reqs ...any) *msgpack.Decoder {
	t.Helper()
	var in, out bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, req := range reqs {
		require.NoError(t, enc.Encode(req))
	}
	srv := NewServer(scan.DefaultOptions(), &in, &out)
	require.NoError(t, srv.Start(context.Background()))
	return msgpack.NewDecoder(&out)
}

func TestSearchRequest(t *testing.T) {
	path := writeFile(t, "Lithuania Latvia Estonia")
	dec := session(t, SearchRequest{ID: "req_001", File: path, Query: "Lituania", TopK: 2})

	var resp SearchResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "req_001", resp.ID)
	assert.Equal(t, "L350", resp.Code)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, 3, resp.Words)
	require.Len(t, resp.Matches, 2)
	assert.Equal(t, MatchItem{Word: "Lithuania", Score: 0, Code: "L350"}, resp.Matches[0])
	assert.Equal(t, "Latvia", resp.Matches[1].Word)
	assert.Equal(t, 40, resp.Matches[1].Score)
	assert.GreaterOrEqual(t, resp.TimeTaken, int64(0))
}

func TestRequestOverrides(t *testing.T) {
	path := writeFile(t, "Robert Rupert Rubin Robert Rupert")
	dec := session(t,
		SearchRequest{ID: "a", File: path, Query: "Robert", Workers: 3, Mode: "words"},
		SearchRequest{ID: "b", File: path, Query: "Robert"},
	)

	var words, ranked SearchResponse
	require.NoError(t, dec.Decode(&words))
	require.NoError(t, dec.Decode(&ranked))
	assert.Equal(t, "a", words.ID)
	assert.Equal(t, "b", ranked.ID)
	assert.Equal(t, ranked.Matches, words.Matches, "both modes agree")
	assert.Equal(t, 5, ranked.Words)
}

func TestSearchErrors(t *testing.T) {
	path := writeFile(t, "Robert")
	empty := writeFile(t, "123 456")

	testCases := []struct {
		req         SearchRequest
		code        int
		description string
	}{
		{SearchRequest{ID: "1", File: path}, 400, "missing query"},
		{SearchRequest{ID: "2", Query: "Robert"}, 400, "missing file"},
		{SearchRequest{ID: "3", File: path, Query: "R2D2"}, 400, "invalid query"},
		{SearchRequest{ID: "4", File: path, Query: "Robert", TopK: -1}, 400, "negative top-k"},
		{SearchRequest{ID: "5", File: path, Query: "Robert", Mode: "fuzzy"}, 400, "unknown mode"},
		{SearchRequest{ID: "6", File: path + ".missing", Query: "Robert"}, 404, "missing file on disk"},
		{SearchRequest{ID: "7", File: empty, Query: "Robert"}, 404, "no words"},
		{SearchRequest{ID: "8", Action: "reload"}, 400, "unknown action"},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			dec := session(t, tc.req)
			var resp SearchError
			require.NoError(t, dec.Decode(&resp))
			assert.Equal(t, tc.req.ID, resp.ID)
			assert.Equal(t, tc.code, resp.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestHealth(t *testing.T) {
	path := writeFile(t, "Robert")
	dec := session(t,
		SearchRequest{ID: "s", File: path, Query: "Rupert"},
		SearchRequest{ID: "h", Action: "health"},
	)

	var search SearchResponse
	require.NoError(t, dec.Decode(&search))
	var status StatusResponse
	require.NoError(t, dec.Decode(&status))
	assert.Equal(t, StatusResponse{ID: "h", Status: "ok", Requests: 2}, status)
}

func TestMalformedInputEndsSession(t *testing.T) {
	in := bytes.NewBuffer([]byte{0xc1}) // never used msgpack code
	var out bytes.Buffer
	srv := NewServer(scan.DefaultOptions(), in, &out)

	assert.Error(t, srv.Start(context.Background()))

	var resp SearchError
	require.NoError(t, msgpack.NewDecoder(&out).Decode(&resp))
	assert.Equal(t, 400, resp.Code)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	srv := NewServer(scan.DefaultOptions(), &bytes.Buffer{}, &bytes.Buffer{})
	assert.ErrorIs(t, srv.Start(ctx), context.Canceled)
}

func TestErrorCode(t *testing.T) {
	testCases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("query: %w", soundex.ErrInvalidInput), 400},
		{soundex.ErrInvalidCode, 400},
		{rank.ErrInvalidCapacity, 400},
		{scan.ErrInvalidMode, 400},
		{scan.ErrNoWords, 404},
		{fmt.Errorf("open: %w", os.ErrNotExist), 404},
		{chunk.ErrNoBoundary, 422},
		{errors.New("disk on fire"), 500},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.code, ErrorCode(tc.err), tc.err.Error())
	}
}

// pipeServer runs a server on in-memory pipes and returns a client for it.
// Closing the returned writer ends the session; its result arrives on done.
func pipeServer(t *testing.T) (*Client, io.Closer, <-chan error) {
	t.Helper()
	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()
	srv := NewServer(scan.DefaultOptions(), reqR, respW)

	done := make(chan error, 1)
	go func() {
		err := srv.Start(context.Background())
		respW.Close()
		done <- err
	}()
	return NewClient(reqW, respR), reqW, done
}

// within fails the test if fn does not return in time; unbuffered pipes
// turn framing mistakes into hangs.
func within(t *testing.T, d time.Duration, fn func()) {
	t.Helper()
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		fn()
	}()
	select {
	case <-finished:
	case <-time.After(d):
		t.Fatalf("client round trip did not finish within %v", d)
	}
}

func TestClientOverPipes(t *testing.T) {
	path := writeFile(t, "Robert Rupert Rubin Ashcraft")
	client, closer, done := pipeServer(t)

	within(t, 10*time.Second, func() {
		resp, err := client.Search(SearchRequest{ID: "1", File: path, Query: "Rupert", TopK: 2})
		require.NoError(t, err)
		require.Len(t, resp.Matches, 2)
		assert.Equal(t, "Robert", resp.Matches[0].Word)
		assert.Equal(t, "Rubin", resp.Matches[1].Word)

		_, err = client.Search(SearchRequest{ID: "2", File: path, Query: "R2D2"})
		var remote *RemoteError
		require.ErrorAs(t, err, &remote)
		assert.Equal(t, "2", remote.ID)
		assert.Equal(t, 400, remote.Code)

		status, err := client.Health("3")
		require.NoError(t, err)
		assert.Equal(t, 3, status.Requests)

		require.NoError(t, closer.Close())
		assert.NoError(t, <-done)
	})
}

func TestClientRequestsWithEmptyFields(t *testing.T) {
	// health requests carry empty "f" and "q" strings
	client, closer, done := pipeServer(t)

	within(t, 10*time.Second, func() {
		for i := 1; i <= 3; i++ {
			status, err := client.Health(fmt.Sprintf("h%d", i))
			require.NoError(t, err)
			assert.Equal(t, StatusResponse{ID: fmt.Sprintf("h%d", i), Status: "ok", Requests: i}, *status)
		}

		_, err := client.Search(SearchRequest{ID: "e"})
		var remote *RemoteError
		require.ErrorAs(t, err, &remote)
		assert.Equal(t, 400, remote.Code)

		require.NoError(t, closer.Close())
		assert.NoError(t, <-done)
	})
}
