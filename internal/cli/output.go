// Package cli renders search results and errors for the terminal.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bastiangx/wordfind/internal/utils"
	"github.com/bastiangx/wordfind/pkg/chunk"
	"github.com/bastiangx/wordfind/pkg/rank"
	"github.com/bastiangx/wordfind/pkg/scan"
	"github.com/bastiangx/wordfind/pkg/soundex"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	wordStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#286983", Dark: "#9ccfd8"})
	missStyle = lipgloss.NewStyle().Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#797593", Dark: "#6e6a86"})
)

// Printer writes results to a terminal or a pipe.
type Printer struct {
	out   *log.Logger
	w     io.Writer
	color bool
}

// NewPrinter creates a Printer on w. color enables styled words.
func NewPrinter(w io.Writer, color bool) *Printer {
	return &Printer{
		out:   log.NewWithOptions(w, log.Options{ReportTimestamp: false}),
		w:     w,
		color: color,
	}
}

// PrintResult lists the matches best first, followed by the elapsed time.
func (p *Printer) PrintResult(res *scan.Result) {
	if len(res.Matches) == 1 && res.Matches[0].Sentinel {
		p.out.Print(p.style(missStyle, rank.SentinelWord))
		p.out.Print(utils.FormatElapsed(res.Elapsed))
		return
	}

	p.out.Printf("Found %d matches for '%s' (%s) among %s words:",
		len(res.Matches), res.Query, res.Code, utils.FormatWithCommas(res.Words))
	for i, m := range res.Matches {
		word := p.style(wordStyle, fmt.Sprintf("%-20s", m.Word))
		p.out.Printf("%2d. %s %s (score: %4d, similarity: %d)", i+1, word, m.Code, m.Score, m.Similarity)
	}
	p.out.Print(utils.FormatElapsed(res.Elapsed))
}

// PrintJSON writes res as indented JSON.
func (p *Printer) PrintJSON(res *scan.Result) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func (p *Printer) style(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

// Describe turns a search error into a one line message for the user.
func Describe(err error) string {
	var boundary *chunk.BoundaryError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, soundex.ErrInvalidInput):
		return "query must be a single word made of ASCII letters"
	case errors.Is(err, rank.ErrInvalidCapacity):
		return "top-k must be a positive number"
	case errors.Is(err, scan.ErrInvalidMode):
		return fmt.Sprintf("mode must be %q or %q", scan.ModeRank, scan.ModeWords)
	case errors.Is(err, scan.ErrNoWords):
		return "the file contains no words"
	case errors.As(err, &boundary):
		return fmt.Sprintf("no whitespace within %d bytes of a chunk end, try a larger boundary_limit", boundary.Limit)
	case errors.Is(err, chunk.ErrNoBoundary):
		return "no whitespace near a chunk end, the file may not be whitespace delimited"
	case errors.Is(err, os.ErrNotExist):
		return "file not found"
	case errors.Is(err, os.ErrPermission):
		return "file is not readable"
	default:
		return err.Error()
	}
}
