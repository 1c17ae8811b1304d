// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/cadence/internal/client"
	"github.com/tomtom215/cadence/internal/config"
	"github.com/tomtom215/cadence/internal/events"
	"github.com/tomtom215/cadence/internal/logging"
	"github.com/tomtom215/cadence/internal/session"
	"github.com/tomtom215/cadence/internal/visualize"
)

// app carries the I/O streams and the lazily built session shared by all
// subcommands. Tests swap loadConfig and newBackend.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	loadConfig func() (*config.Config, error)
	newBackend func(*config.Config) client.Backend

	// global flags
	jsonOut   bool
	colorMode string
	verbose   bool
	apiURL    string
	userID    int64

	cfg      *config.Config
	bus      *events.Bus
	sess     *session.Session
	printer  *Printer
	renderer *visualize.Renderer
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	return &app{
		in:         in,
		out:        out,
		errOut:     errOut,
		loadConfig: config.Load,
		newBackend: defaultBackend,
		colorMode:  "auto",
		renderer:   visualize.NewRenderer(),
	}
}

// defaultBackend is the HTTP client behind a circuit breaker.
func defaultBackend(cfg *config.Config) client.Backend {
	return client.NewBreakerClient(client.New(&cfg.Backend), &cfg.Breaker)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "cadence",
		Short: "Lyric analysis and generation client",
		Long: `cadence talks to the lyric analysis and generation service.

It analyzes lyrics, generates and reworks songs, recommends similar songs
and browses the saved history of all three.

Example usage:
  cadence analyze --file song.txt         # Full analysis with charts
  cadence generate --theme 爱情 --length 8  # Generate by theme
  cadence recommend --top-k 3 < song.txt  # Similar songs
  cadence history list generation         # Saved generations
  cadence serve                           # Local bridge for chart renderers`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	pf := root.PersistentFlags()
	pf.BoolVar(&a.jsonOut, "json", false, "print results as JSON")
	pf.StringVar(&a.colorMode, "color", "auto", "color output: auto, always or never")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	pf.StringVar(&a.apiURL, "api-url", "", "backend base URL (overrides API_URL)")
	pf.Int64Var(&a.userID, "user", 0, "user id sent with every request (overrides USER_ID)")

	root.AddCommand(
		newAnalyzeCmd(a),
		newGenerateCmd(a),
		newConvertCmd(a),
		newContinueCmd(a),
		newRhymeCmd(a),
		newRecommendCmd(a),
		newGraphCmd(a),
		newPrefsCmd(a),
		newHistoryCmd(a),
		newServeCmd(a),
	)
	return root
}

// setup loads configuration, initializes logging and opens the session.
func (a *app) setup() error {
	if a.sess != nil {
		return nil
	}
	mode, err := ParseColorMode(a.colorMode)
	if err != nil {
		return err
	}
	a.printer = NewPrinter(a.out, a.errOut, ResolveColors(mode, true))

	cfg, err := a.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.apiURL != "" {
		cfg.Backend.URL = a.apiURL
	}
	if a.userID > 0 {
		cfg.Backend.UserID = a.userID
	}
	a.cfg = cfg

	level := cfg.Logging.Level
	if a.verbose {
		level = "debug"
	}
	logging.Init(logging.Config{
		Level:  level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
		Output: a.errOut,
	})
	logging.Debug().Str("backend", cfg.Backend.URL).Bool("user", cfg.Backend.HasUser()).Msg("Session starting")

	a.bus = events.NewBus()
	a.sess = session.New(a.newBackend(cfg), cfg, a.bus)
	return nil
}

// close releases the session and the event bus. Safe to call more than once.
func (a *app) close() {
	if a.sess != nil {
		a.sess.Close()
	}
	if a.bus != nil {
		if err := a.bus.Close(); err != nil && !errors.Is(err, events.ErrClosed) {
			logging.Warn().Err(err).Msg("Failed to close event bus")
		}
	}
}

// emit writes v as indented JSON when --json is set, otherwise the text
// produced by render.
func (a *app) emit(v any, render func() (string, error)) error {
	if a.jsonOut {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		_, err = fmt.Fprintln(a.out, string(data))
		return err
	}
	text, err := render()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, strings.TrimRight(text, "\n"))
	return err
}

// report prints the session's latest notice and turns a failure into the
// error main prints.
func (a *app) report(err error) error {
	n := a.sess.Snapshot().LastNotice
	if err == nil {
		if n != nil && n.Level == session.LevelSuccess {
			a.printer.Success("%s", n.String())
		}
		return nil
	}
	if n != nil && n.Level != session.LevelSuccess {
		return &noticeError{notice: *n, err: err}
	}
	return err
}

// noticeError shows the user-facing notice while keeping the cause
// available to errors.Is.
type noticeError struct {
	notice session.Notice
	err    error
}

func (e *noticeError) Error() string { return e.notice.String() }
func (e *noticeError) Unwrap() error { return e.err }

// readText returns the joined positional args, the contents of path ("-"
// for stdin) or stdin when neither is given.
func (a *app) readText(args []string, path string) (string, error) {
	switch {
	case path == "-":
		return a.readAll(a.in)
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		return a.readAll(f)
	case len(args) > 0:
		return strings.Join(args, "\n"), nil
	default:
		return a.readAll(a.in)
	}
}

func (a *app) readAll(r io.Reader) (string, error) {
	if r == nil {
		return "", nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(data), nil
}

// finish reports the successful operation once its output is written.
func (a *app) finish(writeErr error) error {
	if writeErr != nil {
		return writeErr
	}
	return a.report(nil)
}
