package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/clipkeeper/internal/capture"
	"github.com/dmitrijs2005/clipkeeper/internal/config"
	"github.com/dmitrijs2005/clipkeeper/internal/logging"
	"github.com/dmitrijs2005/clipkeeper/internal/tenancy"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Session flag names.
const (
	flagToken  = "token"
	flagUser   = "user"
	flagTenant = "tenant"
	flagEmail  = "email"
)

// RootOptions holds state shared by all commands.
type RootOptions struct {
	v      *viper.Viper
	cfg    *config.Config
	logger logging.Logger

	// newApp and newClipboard are replaced in tests.
	newApp       func(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error)
	newClipboard func() capture.Clipboard
}

// NewRootCommand creates the clipkeeper command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{
		v:      viper.New(),
		newApp: NewApp,
		newClipboard: func() capture.Clipboard {
			return capture.NewCommandClipboard(clipboardTimeout)
		},
	}

	cmd := &cobra.Command{
		Use:           "clipkeeper",
		Short:         "Clipboard history with offline-first cloud sync",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	fs := cmd.PersistentFlags()
	config.RegisterFlags(fs)
	fs.String(flagToken, "", "session token issued by the login flow")
	fs.String(flagUser, "", "user id (when no token is given)")
	fs.String(flagTenant, "", "tenant id (when no token is given)")
	fs.String(flagEmail, "", "user email (when no token is given)")

	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newSearchCommand(opts))
	cmd.AddCommand(newShowCommand(opts))
	cmd.AddCommand(newAddCommand(opts))
	cmd.AddCommand(newEditCommand(opts))
	cmd.AddCommand(newPinCommand(opts, true))
	cmd.AddCommand(newPinCommand(opts, false))
	cmd.AddCommand(newDeleteCommand(opts))
	cmd.AddCommand(newTagCommand(opts))
	cmd.AddCommand(newSyncCommand(opts))
	cmd.AddCommand(newBootstrapCommand(opts))
	cmd.AddCommand(newPurgeCommand(opts))
	cmd.AddCommand(newSettingsCommand(opts))
	cmd.AddCommand(newTokenCommand(opts))
	cmd.AddCommand(newVersionCommand())

	return cmd
}

func (o *RootOptions) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.v, cmd.Flags())
	if err != nil {
		return err
	}
	for _, name := range []string{flagToken, flagUser, flagTenant, flagEmail} {
		if err := o.v.BindPFlag("session."+name, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	logger, err := logging.New(cfg.LogFormat, cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	o.cfg = cfg
	o.logger = logger
	return nil
}

// session resolves the tenancy context from a token or from the explicit
// user and tenant flags.
func (o *RootOptions) session() (tenancy.Context, error) {
	if token := o.v.GetString("session.token"); token != "" {
		if o.cfg.SessionSecret == "" {
			return tenancy.Context{}, errors.New("a session secret is required to verify the token")
		}
		return tenancy.ParseToken(token, []byte(o.cfg.SessionSecret))
	}

	tc := tenancy.New(o.v.GetString("session.user"), o.v.GetString("session.tenant"), o.v.GetString("session.email"))
	if err := tc.Validate(); err != nil {
		return tenancy.Context{}, fmt.Errorf("%w: pass --token or --user and --tenant", err)
	}
	return tc, nil
}

// withApp opens the stores for the current session and runs fn.
func (o *RootOptions) withApp(cmd *cobra.Command, fn func(ctx context.Context, app *App, tc tenancy.Context) error) error {
	tc, err := o.session()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	app, err := o.newApp(ctx, o.cfg, o.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			o.logger.Warn(ctx, "close failed", "error", err)
		}
	}()

	return fn(ctx, app, tc)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
