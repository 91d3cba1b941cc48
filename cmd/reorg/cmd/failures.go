package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lrem/reorg/internal/adapters/sqlite"
)

var failuresLimit int

var failuresCmd = &cobra.Command{
	Use:   "failures",
	Short: "List directories that failed to scan",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := sqlite.Open(cfg.DB)
		if err != nil {
			return err
		}
		defer catalog.Close()

		failures, err := catalog.Failures(cmd.Context(), failuresLimit)
		if err != nil {
			return err
		}

		if len(failures) == 0 {
			fmt.Println("no failures recorded")
			return nil
		}
		for _, f := range failures {
			fmt.Printf("%s  %s\n    %s\n", f.Time.Format(time.DateTime), f.AbsPath, f.Message)
		}
		return nil
	},
}

func init() {
	failuresCmd.Flags().IntVar(&failuresLimit, "limit", 0, "show at most this many failures, 0 for all")
	rootCmd.AddCommand(failuresCmd)
}
