package server

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// RemoteError is a SearchError received by a Client.
type RemoteError struct {
	ID   string
	Msg  string
	Code int
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("request %s failed (%d): %s", e.ID, e.Code, e.Msg)
}

// Client talks to a Server over a pair of streams, typically the pipes of a
// `wordfind serve` child process. Requests are answered in order, so a
// Client must not be shared between goroutines.
type Client struct {
	w   io.Writer
	dec *msgpack.Decoder
}

// NewClient creates a client writing requests to w and reading replies from r.
func NewClient(w io.Writer, r io.Reader) *Client {
	return &Client{w: w, dec: msgpack.NewDecoder(r)}
}

// Search sends req and waits for its reply. A SearchError reply is returned
// as a *RemoteError.
func (c *Client) Search(req SearchRequest) (*SearchResponse, error) {
	raw, err := c.roundTrip(req)
	if err != nil {
		return nil, err
	}
	var resp SearchResponse
	if err := msgpack.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &resp, nil
}

// Health asks the server for its status.
func (c *Client) Health(id string) (*StatusResponse, error) {
	raw, err := c.roundTrip(SearchRequest{ID: id, Action: "health"})
	if err != nil {
		return nil, err
	}
	var status StatusResponse
	if err := msgpack.Unmarshal(raw, &status); err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}
	return &status, nil
}

func (c *Client) roundTrip(req SearchRequest) (msgpack.RawMessage, error) {
	// one Write per frame: on a pipe every Write blocks until it is read,
	// even an empty one, while the server may already be replying
	frame, err := msgpack.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	if _, err := c.w.Write(frame); err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	var raw msgpack.RawMessage
	if err := c.dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("read reply: %w", err)
	}

	// error replies are the only ones carrying "e"
	var head struct {
		Error string `msgpack:"e"`
	}
	if err := msgpack.Unmarshal(raw, &head); err == nil && head.Error != "" {
		var se SearchError
		if err := msgpack.Unmarshal(raw, &se); err != nil {
			return nil, fmt.Errorf("decode error reply: %w", err)
		}
		return nil, &RemoteError{ID: se.ID, Msg: se.Error, Code: se.Code}
	}
	return raw, nil
}
