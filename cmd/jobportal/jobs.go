package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"jobportal/internal/api"
	"jobportal/internal/auth"
	"jobportal/internal/guard"
	"jobportal/internal/session"
)

func (c *cli) jobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Browse and manage job offers",
	}

	var mine bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List job offers",
		RunE: c.gated(guard.Private, func(cmd *cobra.Command, args []string, st session.State) error {
			offers, err := c.client().ListJobOffers(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(offers))
			for _, o := range offers {
				if mine && o.CreatedBy != st.User.ID {
					continue
				}
				rows = append(rows, []string{o.ID, shorten(o.Title, 40), o.CreatedAt.Format("2006-01-02")})
			}
			return c.printTable([]string{"ID", "TITLE", "CREATED"}, rows)
		}),
	}
	list.Flags().BoolVar(&mine, "mine", false, "Only offers I created")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one job offer",
		Args:  cobra.ExactArgs(1),
		RunE: c.gated(guard.Private, func(cmd *cobra.Command, args []string, _ session.State) error {
			o, err := c.client().GetJobOffer(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.printJSON(o)
		}),
	}

	var in api.JobOfferInput
	var criteria string
	create := &cobra.Command{
		Use:   "create",
		Short: "Publish a job offer",
		RunE: c.gated(guard.EmployerRoute, func(cmd *cobra.Command, args []string, _ session.State) error {
			in.Criteria = criteriaJSON(criteria)
			o, err := c.client().CreateJobOffer(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Created job offer %s\n", o.ID)
			return nil
		}),
	}
	create.Flags().StringVar(&in.Title, "title", "", "Title")
	create.Flags().StringVar(&in.Description, "description", "", "Description")
	create.Flags().StringVar(&criteria, "criteria", "", "Matching criteria: free text or a JSON object")
	_ = create.MarkFlagRequired("title")
	_ = create.MarkFlagRequired("description")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a job offer",
		Args:  cobra.ExactArgs(1),
		RunE: c.gated(guard.Roles(auth.RoleEmployer, auth.RoleAdmin), func(cmd *cobra.Command, args []string, _ session.State) error {
			if err := c.client().DeleteJobOffer(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Deleted job offer %s\n", args[0])
			return nil
		}),
	}

	cmd.AddCommand(list, show, create, del)
	return cmd
}

// criteriaJSON keeps a JSON object as-is and wraps anything else as a string.
func criteriaJSON(s string) json.RawMessage {
	var obj map[string]any
	if json.Unmarshal([]byte(s), &obj) == nil {
		return json.RawMessage(s)
	}
	b, _ := json.Marshal(s)
	return b
}
