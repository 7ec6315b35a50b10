/*
Package server implements msgpack IPC for wordfind searches.

The server reads a stream of msgpack encoded requests from stdin and writes one
msgpack encoded reply per request to stdout. Each request names a file and a
query; the reply carries the best phonetic matches.

# IPC

Search requests use this structure:

	{"id": "req_001", "f": "/data/book.txt", "q": "Lituania", "k": 5}

The server responds with matches ranked best first:

	{"id": "req_001", "m": [{"w": "Lithuania", "s": 0, "c": "L350"}], "n": 1204, "t": 845}

Optional fields override the server's defaults per request: "k" (top-k),
"w" (workers) and "mode" ("rank" or "words"). A request with action "health"
gets a status reply instead of a search.

Failures reply with a SearchError carrying an HTTP style code:

	400 invalid query, top-k or mode
	404 missing file, or no words in it
	422 no word boundary found in the file
	500 anything else
*/
package server

// SearchRequest asks for the words of File that sound like Query.
type SearchRequest struct {
	ID      string `msgpack:"id"`
	Action  string `msgpack:"action,omitempty"` // "search" (default) or "health"
	File    string `msgpack:"f"`
	Query   string `msgpack:"q"`
	TopK    int    `msgpack:"k,omitempty"`
	Workers int    `msgpack:"w,omitempty"`
	Mode    string `msgpack:"mode,omitempty"`
}

// MatchItem - minimal match in a response
type MatchItem struct {
	Word  string `msgpack:"w"`
	Score int    `msgpack:"s"`
	Code  string `msgpack:"c,omitempty"`
}

// SearchResponse - search response
type SearchResponse struct {
	ID        string      `msgpack:"id"`
	Code      string      `msgpack:"qc"`
	Matches   []MatchItem `msgpack:"m"`
	Count     int         `msgpack:"c"`
	Words     int         `msgpack:"n"`
	TimeTaken int64       `msgpack:"t"` // microseconds
}

// StatusResponse answers health checks.
type StatusResponse struct {
	ID       string `msgpack:"id"`
	Status   string `msgpack:"status"`
	Requests int    `msgpack:"requests"`
}

// SearchError holds basic error information for failed requests
type SearchError struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
