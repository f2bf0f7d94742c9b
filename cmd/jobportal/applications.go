package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"jobportal/internal/api"
	"jobportal/internal/auth"
	"jobportal/internal/guard"
	"jobportal/internal/session"
)

func (c *cli) applicationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "applications",
		Aliases: []string{"apps"},
		Short:   "Follow applications",
	}

	var offer string
	list := &cobra.Command{
		Use:   "list",
		Short: "List applications (yours, an offer's, or all for admins)",
		RunE: c.gated(guard.Private, func(cmd *cobra.Command, args []string, st session.State) error {
			if st.User == nil {
				return errNotLoggedIn
			}
			var (
				apps []api.Application
				err  error
			)
			switch st.User.Role {
			case auth.RoleCandidate:
				apps, err = c.client().ListApplicationsByUser(cmd.Context(), st.User.ID)
			case auth.RoleEmployer:
				if offer == "" {
					return fmt.Errorf("employers must pass --offer")
				}
				apps, err = c.client().ListApplicationsByOffer(cmd.Context(), offer)
			case auth.RoleAdmin:
				if offer != "" {
					apps, err = c.client().ListApplicationsByOffer(cmd.Context(), offer)
				} else {
					apps, err = c.client().ListApplications(cmd.Context())
				}
			}
			if err != nil {
				return err
			}
			return c.printApplications(apps)
		}),
	}
	list.Flags().StringVar(&offer, "offer", "", "Job offer id")

	generate := &cobra.Command{
		Use:   "generate",
		Short: "Apply to every offer from your latest matches",
		RunE: c.gated(guard.ClientRoute, func(cmd *cobra.Command, args []string, _ session.State) error {
			apps, err := c.client().GenerateApplicationsFromMatches(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Created %d applications\n", len(apps))
			return c.printApplications(apps)
		}),
	}

	cmd.AddCommand(list, generate)
	return cmd
}

func (c *cli) printApplications(apps []api.Application) error {
	rows := make([][]string, 0, len(apps))
	for _, a := range apps {
		rows = append(rows, []string{a.ID, a.OfferID, a.UserID, strconv.FormatFloat(a.MatchingScore, 'f', 2, 64)})
	}
	return c.printTable([]string{"ID", "OFFER", "USER", "SCORE"}, rows)
}
