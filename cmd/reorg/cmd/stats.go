package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lrem/reorg/internal/adapters/sqlite"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog totals and the last run",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := sqlite.Open(cfg.DB)
		if err != nil {
			return err
		}
		defer catalog.Close()

		counts, err := catalog.Counts(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("catalog %s\n", catalog.Path())
		fmt.Printf("  files:       %d\n", counts.Files)
		fmt.Printf("  directories: %d\n", counts.Directories)
		fmt.Printf("  symlinks:    %d\n", counts.Symlinks)
		fmt.Printf("  failures:    %d\n", counts.Failures)

		run, err := catalog.LastRun(cmd.Context())
		if err != nil {
			return err
		}
		if run == nil {
			fmt.Println("no runs recorded")
			return nil
		}
		fmt.Printf("last run %s\n", run.ID)
		fmt.Printf("  finished:    %s (%s)\n", run.FinishedAt.Format(time.DateTime),
			run.FinishedAt.Sub(run.StartedAt).Round(time.Second))
		fmt.Printf("  directories: %d\n", run.DirsScanned)
		fmt.Printf("  files:       %d\n", run.FilesHashed)
		fmt.Printf("  failures:    %d\n", run.Failures)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
