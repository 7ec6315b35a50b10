package cli

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/bastiangx/wordfind/pkg/scan"
	"github.com/charmbracelet/log"
)

// InputHandler reads queries line by line and searches one file for each.
type InputHandler struct {
	scanner      *scan.Scanner
	printer      *Printer
	path         string
	requestCount int
}

// NewInputHandler creates an interactive handler over the file at path.
func NewInputHandler(scanner *scan.Scanner, printer *Printer, path string) *InputHandler {
	return &InputHandler{scanner: scanner, printer: printer, path: path}
}

// Start prompts for queries until r is exhausted or ctx is done.
// Failed searches are reported and the loop continues.
func (h *InputHandler) Start(ctx context.Context, r io.Reader) error {
	log.Print("wordfind interactive, searching " + h.path)
	log.Print("type a word and press Enter (Ctrl+D to exit):")
	reader := bufio.NewReader(r)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		log.Print("> ")
		line, err := reader.ReadString('\n')
		query := strings.TrimSpace(line)
		if query != "" {
			h.handleInput(ctx, query)
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Requests returns how many queries were searched.
func (h *InputHandler) Requests() int {
	return h.requestCount
}

func (h *InputHandler) handleInput(ctx context.Context, query string) {
	h.requestCount++
	log.Debug("Processing request for", "query", query)

	res, err := h.scanner.Run(ctx, h.path, query)
	if err != nil {
		log.Error(Describe(err), "query", query)
		return
	}
	h.printer.PrintResult(res)
}
