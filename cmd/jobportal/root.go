package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"jobportal/internal/api"
	"jobportal/internal/auth"
	"jobportal/internal/config"
	"jobportal/internal/guard"
	"jobportal/internal/logger"
	"jobportal/internal/session"
	"jobportal/internal/tokenstore"
)

var (
	errNotLoggedIn = errors.New("not logged in: run `jobportal login` first")
	errLoading     = errors.New("session is still loading, try again")
)

// cli carries flags and the hydrated session shared by every command.
type cli struct {
	apiURL    string
	tokenFile string
	timeout   time.Duration
	logLevel  string

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	log     *slog.Logger
	manager *session.Manager
}

func rootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	c := &cli{in: in, out: out, errOut: errOut}

	cmd := &cobra.Command{
		Use:           "jobportal",
		Short:         "Job-matching platform client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd.Context())
		},
	}
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	flags := cmd.PersistentFlags()
	flags.StringVar(&c.apiURL, "api-url", "", "Backend base URL (default from API_BASE_URL)")
	flags.StringVar(&c.tokenFile, "token-file", "", "Where the session token is kept (default in the user config dir)")
	flags.DurationVar(&c.timeout, "timeout", 0, "Per-request timeout (default from API_TIMEOUT)")
	flags.StringVar(&c.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		c.loginCmd(),
		c.registerCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.jobsCmd(),
		c.cvCmd(),
		c.matchCmd(),
		c.applicationsCmd(),
		c.usersCmd(),
	)
	return cmd
}

// setup resolves configuration and restores the stored session.
func (c *cli) setup(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	c.log = slog.New(slog.NewTextHandler(c.errOut, &slog.HandlerOptions{Level: logger.ParseLevel(c.logLevel)}))

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if c.apiURL == "" {
		c.apiURL = cfg.APIBaseURL
	}
	if c.timeout == 0 {
		c.timeout = cfg.APITimeout
	}
	if c.tokenFile == "" {
		c.tokenFile = cfg.TokenFile
	}

	var store *tokenstore.File
	if c.tokenFile != "" {
		store = tokenstore.NewFileAt(c.tokenFile)
	} else {
		dir, err := tokenstore.DefaultDir()
		if err != nil {
			return err
		}
		store = tokenstore.NewFile(dir)
	}

	client, err := api.New(c.apiURL, api.WithTimeout(c.timeout), api.WithUserAgent("jobportal-cli"))
	if err != nil {
		return err
	}

	c.manager = session.NewManager(client, store, session.WithLogger(c.log))
	if err := c.manager.Hydrate(ctx); err != nil {
		// an unusable stored token has been dropped; commands see a logged-out session
		c.log.Info("stored session discarded", "error", err)
	}
	return nil
}

// gated runs fn only when g lets the current session through.
func (c *cli) gated(g guard.Guard, fn func(cmd *cobra.Command, args []string, st session.State) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		st := c.manager.State()
		d := g(st)
		switch d.Outcome {
		case guard.Render:
			return fn(cmd, args, st)
		case guard.Wait:
			return errLoading
		}
		if d.Target == auth.LoginPath {
			return errNotLoggedIn
		}
		return fmt.Errorf("command not available to the %s role", st.Role())
	}
}

func (c *cli) client() *api.Client {
	return c.manager.API()
}
