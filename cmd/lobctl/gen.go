package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cedrichaddad/flash-lob/internal/feed"
)

func newGenCmd() *cobra.Command {
	var (
		count    int
		seed     int64
		cancelPr float64
	)

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate a synthetic command stream and print a run summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := uuid.New()

			cfg := feed.DefaultConfig()
			cfg.CancelChance = cancelPr

			gen := feed.New(cfg, seed)
			commands := gen.GenerateBatch(count)

			fmt.Printf("run %s: generated %d commands (seed=%d)\n", runID, len(commands), seed)
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 10000, "number of commands to generate")
	cmd.Flags().Int64Var(&seed, "seed", 1, "PRNG seed for reproducible generation")
	cmd.Flags().Float64Var(&cancelPr, "cancel-chance", 0.05, "probability of generating a cancel")

	return cmd
}
