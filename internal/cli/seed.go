package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/spacesedan/steamnoodles/internal/seed"
)

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var (
		count    int
		daysBack int
		rngSeed  uint64
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Store generated sample reviews",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openStore(cmd.Context(), opts.settings)
			if err != nil {
				return err
			}
			defer a.Close()

			records := seed.Generate(seed.Options{
				Count:    count,
				DaysBack: daysBack,
				Seed:     rngSeed,
				Now:      time.Now(),
			})
			if err := a.store.Append(cmd.Context(), records...); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "stored %d sample reviews over the last %d days\n", len(records), daysBack)
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", seed.DefaultCount, "number of reviews to generate")
	cmd.Flags().IntVar(&daysBack, "days", seed.DefaultDaysBack, "spread reviews over this many days back from today")
	cmd.Flags().Uint64Var(&rngSeed, "seed", 1, "random seed")
	return cmd
}
