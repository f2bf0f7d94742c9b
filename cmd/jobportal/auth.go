package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"jobportal/internal/api"
	"jobportal/internal/auth"
	"jobportal/internal/guard"
	"jobportal/internal/session"
)

func (c *cli) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				p, err := c.readPassword("Password: ")
				if err != nil {
					return err
				}
				password = p
			}
			if err := c.manager.Login(cmd.Context(), email, password); err != nil {
				return err
			}
			c.greet(c.manager.State())
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when empty)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (c *cli) registerCmd() *cobra.Command {
	var in api.Registration
	var role string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in with it",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := auth.ParseRole(role)
			if err != nil || r == auth.RoleAdmin {
				return fmt.Errorf("role must be candidate or employer")
			}
			in.Role = r
			if in.Password == "" {
				p, err := c.readPassword("Password: ")
				if err != nil {
					return err
				}
				in.Password = p
			}
			if err := c.manager.Register(cmd.Context(), in); err != nil {
				return err
			}
			c.greet(c.manager.State())
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Email, "email", "", "Account email")
	f.StringVar(&in.Password, "password", "", "Account password (prompted when empty)")
	f.StringVar(&in.FirstName, "first-name", "", "First name")
	f.StringVar(&in.LastName, "last-name", "", "Last name")
	f.StringVar(&role, "role", string(auth.RoleCandidate), "candidate or employer")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("first-name")
	_ = cmd.MarkFlagRequired("last-name")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.manager.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "Logged out.")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: c.gated(guard.Private, func(cmd *cobra.Command, args []string, st session.State) error {
			if st.User == nil {
				return errNotLoggedIn
			}
			return c.printJSON(st.User)
		}),
	}
}

func (c *cli) greet(st session.State) {
	fmt.Fprintf(c.out, "Logged in as %s <%s> (%s). Home: %s\n",
		st.User.FullName(), st.User.Email, st.Role(), auth.HomePath(st.Role()))
}

// readPassword prompts without echo when input is a terminal and falls back
// to reading a plain line otherwise.
func (c *cli) readPassword(prompt string) (string, error) {
	f, ok := c.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return c.readLine(prompt)
	}
	fmt.Fprint(c.errOut, prompt)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(c.errOut)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if len(b) == 0 {
		return "", errors.New("no password given")
	}
	return string(b), nil
}

func (c *cli) readLine(prompt string) (string, error) {
	fmt.Fprint(c.errOut, prompt)
	line, err := bufio.NewReader(c.in).ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if err != nil && line == "" {
		return "", errors.New("no password given")
	}
	return line, nil
}
