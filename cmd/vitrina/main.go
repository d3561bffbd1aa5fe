package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/erazemk/vitrina/internal/catalog"
	"github.com/erazemk/vitrina/internal/client"
	"github.com/erazemk/vitrina/internal/config"
	"github.com/erazemk/vitrina/internal/db"
	"github.com/erazemk/vitrina/internal/store"
)

// app carries the loaded configuration between the root command and its
// subcommands.
type app struct {
	envFile string
	verbose bool

	db      string
	remote  string
	logPath string
	timeout time.Duration

	cfg      *config.Config
	closeLog func()
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "vitrina",
		Short: "Vitrina - a small catalog of things to sell, donate, move or throw away",
		Long: `Vitrina keeps a catalog of personal items grouped by category. Items can
be selected and sent as a single chat inquiry listing their prices and total.

Commands run against the local SQLite database, or against a running
vitrina server when --remote is set.

Examples:
  vitrina seed testdata/catalog.yaml
  vitrina add --name "Caneca" --price 5,50 --description "Azul" --category Cozinha
  vitrina inquiry 1 3
  vitrina serve --addr :8080`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.closeLog != nil {
				a.closeLog()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.envFile, "env", ".env", "environment file to load")
	flags.StringVarP(&a.db, "db", "d", "", "SQLite database path (default: vitrina.sqlite3)")
	flags.StringVarP(&a.remote, "remote", "r", "", "base URL of a vitrina server to use instead of the database")
	flags.StringVarP(&a.logPath, "log", "l", "", "log file path (default: no file, stdout/stderr only)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log debug messages")
	flags.DurationVar(&a.timeout, "timeout", 0, "bound for every persistence call (default: none)")

	root.AddCommand(
		newServeCmd(a),
		newListCmd(a),
		newAddCmd(a),
		newEditCmd(a),
		newDeleteCmd(a),
		newInquiryCmd(a),
		newSeedCmd(a),
	)
	return root
}

// setup loads the configuration, applies explicitly set flags over it and
// installs the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DB = a.db
	}
	if flags.Changed("remote") {
		cfg.Remote = a.remote
	}
	if flags.Changed("log") {
		cfg.Log = a.logPath
	}
	if flags.Changed("timeout") {
		cfg.Timeout = a.timeout
	}
	a.cfg = cfg

	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	closeLog, err := setupLogger(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg.Log, level)
	if err != nil {
		return err
	}
	a.closeLog = closeLog
	return nil
}

// backend returns the persistence service selected by the configuration.
func (a *app) backend() (catalog.Persistence, func(), error) {
	if a.cfg.Remote != "" {
		slog.Debug("using remote server", "url", a.cfg.Remote)
		return client.New(a.cfg.Remote, &http.Client{}), func() {}, nil
	}

	database, err := db.Open(a.cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.EnsureSchema(database); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("ensuring schema: %w", err)
	}
	slog.Debug("using local database", "path", a.cfg.DB)
	return &store.Backend{DB: database, PublicURL: a.cfg.PublicURL}, func() { database.Close() }, nil
}

// session is a loaded catalog and the backend behind it.
type session struct {
	store   *catalog.Store
	backend catalog.Persistence
	close   func()
}

// open connects to the backend and loads the catalog.
func (a *app) open(ctx context.Context) (*session, error) {
	backend, closeBackend, err := a.backend()
	if err != nil {
		return nil, err
	}

	s := catalog.New(backend, nil, catalog.WithTimeout(a.cfg.Timeout))
	if err := s.Load(ctx); err != nil {
		closeBackend()
		return nil, err
	}
	return &session{store: s, backend: backend, close: closeBackend}, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
