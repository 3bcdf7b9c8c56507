package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/spacesedan/steamnoodles/internal/apperrors"
	"github.com/spacesedan/steamnoodles/internal/models"
	"github.com/spacesedan/steamnoodles/internal/visualization"
)

func newTrendsCmd(opts *rootOptions) *cobra.Command {
	var (
		chart       string
		summaryOnly bool
	)

	cmd := &cobra.Command{
		Use:   "trends <query>",
		Short: "Chart daily sentiment for a date range",
		Long:  "Chart daily sentiment counts for a range such as \"last 7 days\", \"last month\" or \"June 1 to June 15\".",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			kind := models.ChartKind(chart)
			if !kind.Valid() {
				return apperrors.InvalidInput("unknown chart kind %q", chart)
			}

			a, err := openStore(cmd.Context(), opts.settings)
			if err != nil {
				return err
			}
			defer a.Close()
			a.withTrends(opts.settings)

			var resp *visualization.Response
			if summaryOnly {
				resp, err = a.trends.Summarize(cmd.Context(), query, time.Now())
			} else {
				resp, err = a.trends.HandleQuery(cmd.Context(), query, time.Now(), kind)
			}
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if opts.isJSON() {
				return printJSON(w, resp)
			}
			fmt.Fprint(w, resp.Summary.Details)
			if resp.Artifact != "" {
				fmt.Fprintf(w, "\nChart saved to %s\n", resp.Artifact)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&chart, "chart", string(models.ChartTrendLine), "chart kind (trend-line|stacked-bar)")
	cmd.Flags().BoolVar(&summaryOnly, "summary", false, "print the data summary without rendering a chart")
	return cmd
}
