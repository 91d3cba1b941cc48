package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lrem/reorg/internal/config"
)

var (
	cfgPath  string
	dbPath   string
	logLevel string

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "reorg",
	Short: "Catalog a file tree into a SQLite database",
	Long: `reorg walks directory trees concurrently, fingerprints every file,
and records file, directory and symlink metadata in a SQLite catalog.

The catalog is the input for later dedup and reorganisation tooling:
identical files share a content hash, and a completed directory is not
rehashed on the next run.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		path := cfgPath
		explicit := path != ""
		if !explicit {
			path = config.DefaultPath()
		}
		loaded, err := config.Load(path, explicit)
		if err != nil {
			return err
		}
		if dbPath != "" {
			loaded.DB = dbPath
		}
		if logLevel != "" {
			loaded.LogLevel = logLevel
		}
		cfg = loaded

		return setupLogging(cfg.LogLevel)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging(level string) error {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "", "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return fmt.Errorf("unknown log level %q", level)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (default $XDG_CONFIG_HOME/reorg/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the catalog database (default reorg.db, env REORG_DB)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}
