package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/chatsync/internal/app"
	"github.com/vovakirdan/chatsync/internal/config"
	applog "github.com/vovakirdan/chatsync/internal/log"
	"github.com/vovakirdan/chatsync/internal/proto"
)

type options struct {
	configPath string
	apiURL     string
	socketURL  string
	logLevel   string
	email      string
	password   string
}

// cli holds what every subcommand needs once the root pre-run is done.
type cli struct {
	opts   options
	cfg    config.Config
	log    *zerolog.Logger
	client *app.Client
}

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "chatsync",
		Short:         "Terminal client for the chat API and its real-time channel",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.client != nil {
				c.client.Close()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.opts.configPath, "config", "", "config file (default ./chatsync.yaml)")
	flags.StringVar(&c.opts.apiURL, "api-url", "", "API base URL, e.g. http://localhost:5001/api")
	flags.StringVar(&c.opts.socketURL, "socket-url", "", "real-time endpoint; derived from --api-url when empty")
	flags.StringVar(&c.opts.logLevel, "log-level", "", "debug, info, warn or error")
	flags.StringVar(&c.opts.email, "email", os.Getenv("CHATSYNC_EMAIL"), "account email")
	flags.StringVar(&c.opts.password, "password", os.Getenv("CHATSYNC_PASSWORD"), "account password")

	root.AddCommand(
		newSignupCmd(c),
		newWhoamiCmd(c),
		newProfileCmd(c),
		newUsersCmd(c),
		newGroupsCmd(c),
		newGroupCmd(c),
		newChatCmd(c),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	cfg, _, err := config.Load(nil, c.opts.configPath)
	if err != nil {
		return err
	}
	cfg.UpdateFrom(config.Config{
		APIURL:    c.opts.apiURL,
		SocketURL: c.opts.socketURL,
		LogLevel:  c.opts.logLevel,
	})
	c.cfg = cfg
	c.log = applog.New(cfg.LogLevel)

	client, err := app.NewClient(cfg, newColorNotifier(cmd.OutOrStdout()), c.log)
	if err != nil {
		return err
	}
	c.client = client
	return nil
}

// login authenticates with the --email/--password credentials.
func (c *cli) login(ctx context.Context) error {
	if c.opts.email == "" || c.opts.password == "" {
		return errors.New("credentials required: set --email and --password (or CHATSYNC_EMAIL / CHATSYNC_PASSWORD)")
	}
	if _, err := c.client.Session.Authenticate(ctx, proto.LoginRequest{Email: c.opts.email, Password: c.opts.password}); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return nil
}
