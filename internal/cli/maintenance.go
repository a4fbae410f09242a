package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/clipkeeper/internal/models"
	"github.com/dmitrijs2005/clipkeeper/internal/tenancy"
	"github.com/spf13/cobra"
)

// clipboardTimeout bounds one invocation of the paste tool.
const clipboardTimeout = 2 * time.Second

func newRunCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Capture the clipboard and sync in the background until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *App, tc tenancy.Context) error {
				return app.Run(ctx, tc, opts.newClipboard())
			})
		},
	}
}

func newSyncCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push local tags, entries and settings to the remote store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *App, tc tenancy.Context) error {
				rep, err := app.sync.Sync(ctx, tc)
				if err != nil {
					return err
				}
				return renderReport(cmd.OutOrStdout(), rep)
			})
		},
	}
}

func newBootstrapCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Pull tags, entries and settings from the remote store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *App, tc tenancy.Context) error {
				rep, err := app.sync.Bootstrap(ctx, tc)
				if err != nil {
					return err
				}
				return renderReport(cmd.OutOrStdout(), rep)
			})
		},
	}
}

func newPurgeCommand(opts *RootOptions) *cobra.Command {
	var (
		all        bool
		olderThan  time.Duration
		keepTagged bool
	)

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete unpinned local entries",
		Long: "Without flags the configured purge cadence is applied. " +
			"--all removes every unpinned entry, --older-than removes unpinned entries older than the given age.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all && olderThan > 0 {
				return errors.New("--all and --older-than are mutually exclusive")
			}
			return opts.withApp(cmd, func(ctx context.Context, app *App, tc tenancy.Context) error {
				var (
					n   int64
					err error
				)
				switch {
				case all:
					n, err = app.retention.PurgeUnpinned(ctx, tc, keepTagged)
				case olderThan > 0:
					n, err = app.retention.PurgeOlderThan(ctx, tc, olderThan, keepTagged)
				default:
					n, err = app.retention.Run(ctx, tc)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Purged %d entries.\n", n)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "remove every unpinned entry")
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "remove unpinned entries older than this age")
	cmd.Flags().BoolVar(&keepTagged, "keep-tagged", false, "keep entries that carry a tag")
	return cmd
}

func newSettingsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change tenant settings",
	}
	cmd.AddCommand(newSettingsGetCommand(opts))
	cmd.AddCommand(newSettingsSetCommand(opts))
	return cmd
}

func newSettingsGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show tenant settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *App, tc tenancy.Context) error {
				s, err := app.settings.Get(ctx, tc)
				if err != nil {
					return err
				}
				return renderSettings(cmd.OutOrStdout(), s)
			})
		},
	}
}

func newSettingsSetCommand(opts *RootOptions) *cobra.Command {
	var (
		cadence    string
		retainTags bool
		enabled    bool
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change the purge cadence or the keep-tagged rule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *App, tc tenancy.Context) error {
				current, err := app.settings.Get(ctx, tc)
				if err != nil {
					return err
				}

				next := current.Cadence
				if cmd.Flags().Changed("cadence") {
					if next, err = models.ParseCadence(cadence); err != nil {
						return err
					}
				}
				retain := current.RetainTags
				if cmd.Flags().Changed("retain-tags") {
					retain = retainTags
				}

				s, err := app.settings.UpdatePurgeSettings(ctx, tc, enabled, next, retain)
				if err != nil {
					return err
				}
				return renderSettings(cmd.OutOrStdout(), s)
			})
		},
	}

	cmd.Flags().StringVar(&cadence, "cadence", "", "purge cadence: never, daily, 3d, weekly or monthly")
	cmd.Flags().BoolVar(&retainTags, "retain-tags", false, "keep tagged entries when purging")
	cmd.Flags().BoolVar(&enabled, "enabled", true, "set to false to turn purging off")
	return cmd
}

func newTokenCommand(opts *RootOptions) *cobra.Command {
	var validity time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a session token for --user and --tenant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.cfg.SessionSecret == "" {
				return errors.New("a session secret is required to issue tokens")
			}
			tc, err := opts.session()
			if err != nil {
				return err
			}
			token, err := tenancy.IssueToken(tc, []byte(opts.cfg.SessionSecret), validity)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().DurationVar(&validity, "validity", 30*24*time.Hour, "token lifetime")
	return cmd
}
