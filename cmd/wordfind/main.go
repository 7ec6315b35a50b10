// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the wordfind command line tool.

wordfind finds the words of a text file that sound most like a query word.
Every word of the file is encoded with Soundex and compared to the query's
code; the K closest words are printed best first together with the time the
search took.

# Usage

Search a file with the defaults (one worker, top 5):

	wordfind book.txt Lituania

Use four workers with 256 kB chunks and print ten matches as JSON:

	wordfind -w 4 --cs 256 -k 10 --json book.txt Lituania

Run an interactive session over one file, reading queries from stdin:

	wordfind -i book.txt

# Scoring

Two codes score 0 when they are equal. Codes that share no character at all
are unrelated and never ranked. Otherwise a different first letter costs
1000 and the numeric parts add their absolute difference:

	L350 vs L310  ->  40
	L350 vs E235  ->  1115

When no word of the file is related to the query, the single line
"no match found" is printed.

# Chunks and workers

The file is read in chunks that always end on a space or newline, so no word
is split between two chunks. With -w 1 chunks are processed in order on the
calling goroutine; with more workers they are handed to a fixed pool and the
partial rankings are merged at the end. The result does not depend on the
number of workers or the chunk size: ties are broken by the first occurrence
of a word in the file.

The default chunk size is 2 kB for a single worker and 128 kB otherwise. A
chunk whose end cannot be moved to whitespace within 250 bytes fails the
search.

# Configuration

Defaults are read from a TOML file, created on first use in the user config
directory:

	[scan]
	workers = 1
	chunk_size_kb = 0
	top_k = 5
	mode = "rank"

	[cache]
	size = 4096

An optional .env file and the WORDFIND_WORKERS, WORDFIND_CHUNK_KB,
WORDFIND_TOP_K, WORDFIND_MODE and WORDFIND_CACHE_SIZE variables override the
file. Flags override everything.

# IPC

	wordfind serve

reads msgpack encoded search requests from stdin and writes one reply per
request to stdout. See package server for the message format.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/wordfind/internal/cli"
	"github.com/bastiangx/wordfind/internal/logger"
	"github.com/bastiangx/wordfind/internal/utils"
	"github.com/bastiangx/wordfind/pkg/config"
	"github.com/bastiangx/wordfind/pkg/scan"
	"github.com/bastiangx/wordfind/pkg/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	ucli "github.com/urfave/cli/v2"
)

const (
	Version = "0.3.0"
	AppName = "wordfind"
	gh      = "https://github.com/bastiangx/wordfind"
)

// sigHandler cancels the returned context on SIGINT or SIGTERM.
func sigHandler() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-c:
			fmt.Fprintf(os.Stderr, "\nExiting...\n")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(c)
	}()
	return ctx, cancel
}

func main() {
	ctx, cancel := sigHandler()
	defer cancel()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Error(err)
		cancel()
		os.Exit(1)
	}
}

func newApp() *ucli.App {
	return &ucli.App{
		Name:                   AppName,
		Usage:                  "find the words of a file that sound like a query",
		ArgsUsage:              "FILE QUERY",
		Version:                Version,
		UseShortOptionHandling: true,
		HideVersion:            true,
		Flags: []ucli.Flag{
			&ucli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Number of scanning workers (1 scans sequentially)",
				Value:   1,
			},
			&ucli.IntFlag{
				Name:    "chunk-size",
				Aliases: []string{"cs"},
				Usage:   "Chunk size in kB (0 picks 2 kB sequential, 128 kB parallel)",
			},
			&ucli.IntFlag{
				Name:    "top",
				Aliases: []string{"k"},
				Usage:   "Number of matches to report",
				Value:   5,
			},
			&ucli.StringFlag{
				Name:  "mode",
				Usage: "Accumulation mode: rank (score every occurrence) or words (deduplicate first)",
				Value: string(scan.ModeRank),
			},
			&ucli.StringFlag{
				Name:  "config",
				Usage: "Config file path",
			},
			&ucli.StringFlag{
				Name:  "env",
				Usage: "Optional .env file with WORDFIND_* overrides",
				Value: ".env",
			},
			&ucli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "Toggle debug logging",
			},
			&ucli.BoolFlag{
				Name:  "json",
				Usage: "Print the result as JSON",
			},
			&ucli.BoolFlag{
				Name:    "interactive",
				Aliases: []string{"i"},
				Usage:   "Read queries from stdin and search FILE for each",
			},
			&ucli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable styled output",
			},
		},
		Before: func(c *ucli.Context) error {
			logger.Setup(c.Bool("debug"))
			return nil
		},
		Action: searchCommand,
		Commands: []*ucli.Command{
			{
				Name:   "serve",
				Usage:  "Serve msgpack search requests over stdin/stdout",
				Action: serveCommand,
			},
			{
				Name:   "version",
				Usage:  "Show current version",
				Action: versionCommand,
			},
		},
	}
}

// loadConfigWithOverrides loads config, then env, then flags set on the command line.
func loadConfigWithOverrides(c *ucli.Context) (*config.Config, error) {
	cfg, path, err := config.LoadConfigWithPriority(c.String("config"))
	if err != nil {
		return nil, err
	}
	if path != "" {
		log.Debugf("Using config file: (%s)", utils.GetAbsolutePath(path))
	}
	if err := cfg.ApplyEnv(c.String("env")); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}

	if c.IsSet("workers") {
		cfg.Scan.Workers = c.Int("workers")
	}
	if c.IsSet("chunk-size") {
		cfg.Scan.ChunkSizeKB = c.Int("chunk-size")
	}
	if c.IsSet("top") {
		cfg.Scan.TopK = c.Int("top")
	}
	if c.IsSet("mode") {
		cfg.Scan.Mode = c.String("mode")
	}
	if c.IsSet("json") {
		cfg.CLI.JSON = c.Bool("json")
	}
	if c.Bool("no-color") {
		cfg.CLI.Color = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func searchCommand(c *ucli.Context) error {
	interactive := c.Bool("interactive")
	want := 2
	if interactive {
		want = 1
	}
	if c.NArg() != want {
		_ = ucli.ShowAppHelp(c)
		return fmt.Errorf("expected %d arguments, got %d", want, c.NArg())
	}

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	opts := cfg.ScanOptions()
	log.Debug("Scan options:",
		"workers", opts.Workers,
		"chunkSize", opts.ChunkSize,
		"topK", opts.TopK,
		"mode", opts.Mode)

	scanner, err := scan.New(opts)
	if err != nil {
		return errors.New(cli.Describe(err))
	}
	printer := cli.NewPrinter(c.App.Writer, cfg.CLI.Color)
	path := c.Args().Get(0)

	if interactive {
		log.SetReportTimestamp(false)
		return cli.NewInputHandler(scanner, printer, path).Start(c.Context, c.App.Reader)
	}

	res, err := scanner.Run(c.Context, path, c.Args().Get(1))
	if err != nil {
		log.Debugf("Search failed: %v", err)
		return errors.New(cli.Describe(err))
	}
	if cfg.CLI.JSON {
		return printer.PrintJSON(res)
	}
	printer.PrintResult(res)
	return nil
}

func serveCommand(c *ucli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	log.Debug("spawning IPC", "pid", os.Getpid())
	srv := server.NewServer(cfg.ScanOptions(), c.App.Reader, c.App.Writer)
	if err := srv.Start(c.Context); err != nil && c.Context.Err() == nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

func versionCommand(c *ucli.Context) error {
	banner := log.NewWithOptions(c.App.ErrWriter, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	banner.SetStyles(styles)

	banner.Print("")
	banner.Print("[ wordfind ] Finds the words that sound like yours")
	banner.Print("", "version", Version)
	banner.Print("")
	banner.Print("use -h or --help to see available options")
	banner.Print("Github Repo", "gh", gh)
	return nil
}
