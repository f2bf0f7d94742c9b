package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"jobportal/internal/guard"
	"jobportal/internal/session"
)

func (c *cli) matchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match your CVs against open job offers",
	}

	run := &cobra.Command{
		Use:   "run",
		Short: "Start a matching run",
		RunE: c.gated(guard.ClientRoute, func(cmd *cobra.Command, args []string, _ session.State) error {
			res, err := c.client().RunMatch(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "%s (%d CVs, %d matches)\n", res.Message, res.MatchedCVs, res.Matches)
			return nil
		}),
	}

	results := &cobra.Command{
		Use:   "results",
		Short: "Show the latest matches",
		RunE: c.gated(guard.ClientRoute, func(cmd *cobra.Command, args []string, _ session.State) error {
			res, err := c.client().GetMatchResults(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(res.Matches))
			for _, m := range res.Matches {
				rows = append(rows, []string{m.JobOfferID, shorten(m.Title, 40), strconv.FormatFloat(m.Score, 'f', 2, 64)})
			}
			return c.printTable([]string{"OFFER", "TITLE", "SCORE"}, rows)
		}),
	}

	cmd.AddCommand(run, results)
	return cmd
}
