package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/youte"
	"github.com/fwojciec/youte/collect"
	"github.com/fwojciec/youte/fs"
	"github.com/fwojciec/youte/goquery"
	youtehttp "github.com/fwojciec/youte/http"
	youteslog "github.com/fwojciec/youte/slog"
	"github.com/fwojciec/youte/sqlite"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Home holds the quota ledger, stored keys and run history.
	// Set before calling Run().
	Home string

	// Stdin answers interactive prompts.
	Stdin io.Reader

	// Overrides for end-to-end testing.
	BaseURL     string
	HTTPClient  *http.Client
	Clock       youte.Clock
	RetryDelays []time.Duration
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		Home:  defaultHome(),
		Stdin: os.Stdin,
	}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:         ctx,
		Stdin:       m.Stdin,
		Stdout:      stdout,
		Stderr:      stderr,
		Clock:       m.Clock,
		BaseURL:     m.BaseURL,
		RetryDelays: m.RetryDelays,
		Jitter:      collect.DefaultJitter,
	}
	if deps.Clock == nil {
		deps.Clock = youte.SystemClock{}
	}
	if deps.Stdin == nil {
		deps.Stdin = strings.NewReader("")
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("youte"),
		kong.Description("Collect YouTube metadata in quota-aware, resumable runs."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		fmt.Fprintln(stderr, "error: no command specified")
		return youte.Errorf(youte.EINVALID, "no command specified. Run 'youte --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", err)
		return err
	}

	logger, closeLog := newLogger(cli, stderr)
	defer closeLog()
	deps.Logger = logger

	if err := os.MkdirAll(m.Home, 0755); err != nil {
		fmt.Fprintf(stderr, "Hint: Set YOUTE_HOME to use a different directory\n")
		return fmt.Errorf("failed to create %q: %w", m.Home, err)
	}

	deps.Profiles = fs.NewProfileStore(filepath.Join(m.Home, "config.json"))
	deps.Stores = youteslog.NewLoggingProgressStoreService(
		sqlite.NewProgressStoreService(filepath.Join(m.Home, "history")), logger)
	deps.Converter = goquery.NewTextConverter()

	// Wire the ledger and the API client only for commands that spend quota.
	switch strings.Fields(kongCtx.Command())[0] {
	case "search", "videos", "channels", "comments", "replies", "chart", "archive", "resume", "quota":
		path := filepath.Join(m.Home, "quota.db")
		ledger, err := sqlite.OpenQuotaLedger(path, deps.Clock)
		if err != nil {
			fmt.Fprintf(stderr, "error: %s\n", youte.ErrorMessage(err))
			fmt.Fprintf(stderr, "Hint: Remove %s to reset the ledger, or set YOUTE_HOME\n", path)
			return err
		}
		defer ledger.Close()
		deps.Quota = youteslog.NewLoggingQuotaLedger(ledger, logger)

		deps.NewExecutor = func(apiKey string) youte.RequestExecutor {
			opts := []youtehttp.Option{youtehttp.WithClock(deps.Clock)}
			if m.HTTPClient != nil {
				opts = append(opts, youtehttp.WithHTTPClient(m.HTTPClient))
			}
			return youteslog.NewLoggingExecutor(youtehttp.NewExecutor(apiKey, opts...), logger)
		}
	}

	return kongCtx.Run(deps)
}

// newLogger returns the logger for API call records and a func releasing it.
func newLogger(cli *CLI, stderr io.Writer) (*slog.Logger, func()) {
	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}

	var w io.Writer = stderr
	closeFn := func() {}
	if cli.LogFile != "" {
		lj := &lumberjack.Logger{
			Filename:   cli.LogFile,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		}
		w = lj
		closeFn = func() { _ = lj.Close() }
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closeFn
}

func defaultHome() string {
	if path := os.Getenv("YOUTE_HOME"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".youte"
	}
	return filepath.Join(home, ".youte")
}
