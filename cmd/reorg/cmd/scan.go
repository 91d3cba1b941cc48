package cmd

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/lrem/reorg/internal/adapters/filesystem"
	"github.com/lrem/reorg/internal/adapters/sqlite"
	"github.com/lrem/reorg/internal/adapters/tui"
	"github.com/lrem/reorg/internal/config"
	"github.com/lrem/reorg/internal/fingerprint"
	"github.com/lrem/reorg/internal/metrics"
	"github.com/lrem/reorg/internal/scanner"
)

var (
	scanWorkers  int
	scanIgnore   []string
	scanQueue    int
	scanSink     int
	scanIdle     time.Duration
	scanFlush    time.Duration
	scanFP       string
	scanProgress bool
	scanMetrics  string
)

var scanCmd = &cobra.Command{
	Use:   "scan <path>...",
	Short: "Scan directory trees into the catalog",
	Long: `Scan walks the given roots with a pool of workers, fingerprints every
regular file, and records the results. Directories already completed by a
prior run are not rehashed, but their subtrees are still walked so new
children are discovered.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("workers") {
			cfg.Workers = scanWorkers
		}
		if cmd.Flags().Changed("ignore") {
			cfg.Ignore = scanIgnore
		}
		if cmd.Flags().Changed("queue") {
			cfg.QueueSize = scanQueue
		}
		if cmd.Flags().Changed("sink-queue") {
			cfg.SinkQueueSize = scanSink
		}
		if cmd.Flags().Changed("idle-timeout") {
			cfg.IdleTimeout = config.Duration(scanIdle)
		}
		if cmd.Flags().Changed("flush-interval") {
			cfg.FlushInterval = config.Duration(scanFlush)
		}
		if cmd.Flags().Changed("fingerprint") {
			cfg.Fingerprint = scanFP
		}
		if cmd.Flags().Changed("metrics-addr") {
			cfg.MetricsAddr = scanMetrics
		}

		catalog, err := sqlite.Open(cfg.DB)
		if err != nil {
			return err
		}
		defer catalog.Close()

		fp, err := fingerprint.New(cfg.Fingerprint)
		if err != nil {
			return err
		}

		engine, err := scanner.New(scanner.Config{
			Roots:         args,
			Workers:       cfg.Workers,
			Ignore:        cfg.Ignore,
			QueueSize:     cfg.QueueSize,
			SinkSize:      cfg.SinkQueueSize,
			IdleTimeout:   time.Duration(cfg.IdleTimeout),
			FlushInterval: time.Duration(cfg.FlushInterval),
		}, catalog, filesystem.New(), fp, slog.Default())
		if err != nil {
			return err
		}

		if cfg.MetricsAddr != "" {
			metrics.Serve(cfg.MetricsAddr, engine, func(err error) {
				slog.Error("metrics endpoint failed", "addr", cfg.MetricsAddr, "error", err)
			})
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if scanProgress {
			results := make(chan tui.Result, 1)
			go func() {
				summary, err := engine.Run(ctx)
				results <- tui.Result{Summary: summary, Err: err}
			}()

			model := tui.NewProgress(engine, results, stop)
			if _, err := tea.NewProgram(model).Run(); err != nil {
				return err
			}
			result := model.Result()
			if result == nil {
				return fmt.Errorf("progress view exited before the scan finished")
			}
			if result.Err != nil {
				return result.Err
			}
			printSummary(result.Summary)
			return nil
		}

		summary, err := engine.Run(ctx)
		if err != nil {
			return err
		}
		printSummary(summary)
		return nil
	},
}

func printSummary(s scanner.Summary) {
	fmt.Printf("run %s finished in %s\n", s.RunID, s.Duration.Round(time.Millisecond))
	fmt.Printf("  directories: %d scanned, %d resumed\n", s.DirsScanned, s.DirsResumed)
	fmt.Printf("  files:       %d hashed (%d bytes)\n", s.FilesHashed, s.BytesHashed)
	fmt.Printf("  symlinks:    %d\n", s.Symlinks)
	fmt.Printf("  failures:    %d\n", s.Failures)
}

func init() {
	scanCmd.Flags().IntVar(&scanWorkers, "workers", 0, "worker count (default 2x CPU cores)")
	scanCmd.Flags().StringArrayVar(&scanIgnore, "ignore", nil, "glob pattern for directory names to skip (repeatable)")
	scanCmd.Flags().IntVar(&scanQueue, "queue", 0, "work queue capacity, 0 for unbounded")
	scanCmd.Flags().IntVar(&scanSink, "sink-queue", 0, "writer queue capacity")
	scanCmd.Flags().DurationVar(&scanIdle, "idle-timeout", 0, "worker exit after this long with no work")
	scanCmd.Flags().DurationVar(&scanFlush, "flush-interval", 0, "writer commit interval")
	scanCmd.Flags().StringVar(&scanFP, "fingerprint", "", "fingerprint algorithm: md5, sha1, sha256")
	scanCmd.Flags().BoolVar(&scanProgress, "progress", false, "show live progress")
	scanCmd.Flags().StringVar(&scanMetrics, "metrics-addr", "", "serve Prometheus metrics on this address")

	rootCmd.AddCommand(scanCmd)
}
