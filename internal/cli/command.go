package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/rahulvramesh/appdata-cleaner/internal/cleaner"
	"github.com/rahulvramesh/appdata-cleaner/internal/config"
	"github.com/rahulvramesh/appdata-cleaner/internal/history"
	"github.com/rahulvramesh/appdata-cleaner/internal/logging"
	"github.com/rahulvramesh/appdata-cleaner/internal/paths"
	"github.com/rahulvramesh/appdata-cleaner/internal/scanner"
	"github.com/rahulvramesh/appdata-cleaner/internal/types"
	"github.com/rahulvramesh/appdata-cleaner/internal/ui"
)

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

// Execute runs the CLI, cancelling any running scan on interrupt.
func (c CLI) Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return c.Command().ExecuteContext(ctx)
}

// app carries what every subcommand needs after flags are parsed
type app struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

func (a *app) load(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		if _, err := logging.ParseLevel(a.logLevel); err != nil {
			return err
		}
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg
	return nil
}

// stderrLogger is the logger for non-interactive commands
func (a *app) stderrLogger(cmd *cobra.Command) (*slog.Logger, error) {
	return logging.New(cmd.ErrOrStderr(), a.cfg.Log.Level)
}

func (a *app) resolver() (*paths.Resolver, error) {
	overrides, err := a.cfg.RootOverrides()
	if err != nil {
		return nil, err
	}
	return paths.New(overrides), nil
}

func (a *app) newScanner(log *slog.Logger, minSize uint64, extra ...scanner.Option) (*scanner.Scanner, error) {
	resolver, err := a.resolver()
	if err != nil {
		return nil, err
	}
	opts := []scanner.Option{
		scanner.WithLogger(log),
		scanner.WithSkipHidden(a.cfg.Scan.SkipHidden),
		scanner.WithMinSize(minSize),
	}
	return scanner.New(resolver, append(opts, extra...)...), nil
}

// newCleaner opens the history store and builds a cleaner around it. A
// history store that cannot be opened only disables recording.
func (a *app) newCleaner(log *slog.Logger, useTrash bool) (*cleaner.Cleaner, io.Closer) {
	opts := []cleaner.Option{cleaner.WithLogger(log)}
	if useTrash {
		opts = append(opts, cleaner.WithTrash(a.cfg.TrashDir()))
	}

	var closer io.Closer = nopCloser{}
	db, err := history.Open(a.cfg.HistoryPath())
	if err != nil {
		log.Warn("history disabled", "path", a.cfg.HistoryPath(), "error", err)
	} else {
		opts = append(opts, cleaner.WithHistory(db))
		closer = db
	}
	return cleaner.New(opts...), closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Command builds the root command and its subcommands.
func (c CLI) Command() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "appdata-cleaner",
		Short: "Inventory and clean application-data folders",
		Long: heredoc.Doc(`
			appdata-cleaner measures every folder directly inside the per-user
			application-data locations (Roaming, Local and LocalLow) and lets you
			delete the ones you no longer need.

			Run without a command to open the interactive browser.
		`),
		Version:           c.version,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		PersistentPreRunE: a.load,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(a)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level: debug, info, warn or error")

	root.AddCommand(scanCommand(a), deleteCommand(a), historyCommand(a))

	return root
}

func runTUI(a *app) error {
	log, closer, err := logging.NewFile(a.cfg.LogFile(), a.cfg.Log.Level)
	if err != nil {
		return err
	}
	defer closer.Close()

	minSize, err := a.cfg.MinSizeBytes()
	if err != nil {
		return err
	}
	sc, err := a.newScanner(log, minSize)
	if err != nil {
		return err
	}
	cl, hist := a.newCleaner(log, a.cfg.Delete.UseTrash)
	defer hist.Close()

	return ui.Run(ui.Options{
		Scanner:          sc,
		Cleaner:          cl,
		Log:              log,
		PollInterval:     a.cfg.UI.PollInterval,
		MaxEventsPerTick: a.cfg.UI.MaxEventsPerTick,
	})
}

func scanCommand(a *app) *cobra.Command {
	var opts scanOptions

	cmd := &cobra.Command{
		Use:   "scan [target]",
		Short: "Measure the folders inside an application-data location",
		Long: heredoc.Doc(`
			Measure every folder directly inside an application-data location.

			Targets:
			  roaming    per-user roaming data (default)
			  local      per-user local data and caches
			  locallow   low-integrity local data (Windows only)

			Use --all to scan every target concurrently, or --root to scan an
			arbitrary directory.
		`),
		Example: heredoc.Doc(`
			appdata-cleaner scan local --min-size 100MB
			appdata-cleaner scan --all --json
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				if opts.all || opts.root != "" {
					return errors.New("a target cannot be combined with --all or --root")
				}
				opts.target = args[0]
			}
			if opts.all && opts.root != "" {
				return errors.New("--all and --root are mutually exclusive")
			}
			if !cmd.Flags().Changed("min-size") {
				opts.minSize = a.cfg.Scan.MinSize
			}
			return runScan(cmd, a, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.all, "all", false, "scan every target concurrently")
	cmd.Flags().StringVar(&opts.root, "root", "", "scan this directory instead of a target")
	cmd.Flags().BoolVar(&opts.json, "json", false, "output one JSON object per scanned root")
	cmd.Flags().StringVar(&opts.minSize, "min-size", "0B", "hide folders smaller than this (e.g. 10MB)")

	return cmd
}

func deleteCommand(a *app) *cobra.Command {
	var (
		yes   bool
		trash bool
	)

	cmd := &cobra.Command{
		Use:   "delete <target> <name>",
		Short: "Delete one folder from an application-data location",
		Long: heredoc.Doc(`
			Delete one folder directly inside an application-data location.
			<name> is the folder name exactly as printed by scan.

			Nothing is removed unless --yes is given. With --trash the folder is
			moved into the configured trash directory instead.
		`),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := types.ParseScanTarget(args[0])
			if err != nil {
				return err
			}
			if !yes {
				return fmt.Errorf("refusing to delete %q without --yes", args[1])
			}
			useTrash := a.cfg.Delete.UseTrash
			if cmd.Flags().Changed("trash") {
				useTrash = trash
			}
			return runDelete(cmd, a, target, args[1], useTrash)
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	cmd.Flags().BoolVar(&trash, "trash", false, "move to trash instead of permanent delete")

	return cmd
}

func historyCommand(a *app) *cobra.Command {
	var (
		sinceDays int
		jsonOut   bool
	)

	cmd := &cobra.Command{
		Use:   "history [query]",
		Short: "Search the deletion history",
		Long: heredoc.Doc(`
			List recorded deletions. With a query, search the deleted and
			trashed paths; otherwise show the last --since days (default 7).
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if sinceDays < 0 {
				return errors.New("--since cannot be negative")
			}
			query := ""
			if len(args) > 0 {
				query = args[0]
			}
			return runHistory(cmd, a, query, sinceDays, jsonOut)
		},
	}

	cmd.Flags().IntVar(&sinceDays, "since", 7, "show operations from the last N days")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")

	return cmd
}
