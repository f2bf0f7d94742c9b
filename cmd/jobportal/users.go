package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"jobportal/internal/guard"
	"jobportal/internal/session"
)

func (c *cli) usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Administer accounts",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List every account",
		RunE: c.gated(guard.AdminRoute, func(cmd *cobra.Command, args []string, _ session.State) error {
			users, err := c.client().ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(users))
			for _, u := range users {
				rows = append(rows, []string{u.ID, u.Email, u.FullName(), string(u.Role)})
			}
			return c.printTable([]string{"ID", "EMAIL", "NAME", "ROLE"}, rows)
		}),
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: c.gated(guard.AdminRoute, func(cmd *cobra.Command, args []string, st session.State) error {
			if args[0] == st.User.ID {
				return fmt.Errorf("refusing to delete the signed-in account")
			}
			if err := c.client().DeleteUser(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Deleted user %s\n", args[0])
			return nil
		}),
	}

	cmd.AddCommand(list, del)
	return cmd
}
