package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/clipkeeper/internal/common"
	"github.com/dmitrijs2005/clipkeeper/internal/models"
	"github.com/dmitrijs2005/clipkeeper/internal/services"
	"github.com/dmitrijs2005/clipkeeper/internal/tenancy"
	"github.com/spf13/cobra"
)

func newListCommand(opts *RootOptions) *cobra.Command {
	var (
		limit int
		tag   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *App, tc tenancy.Context) error {
				var (
					list []*models.ClipboardEntry
					err  error
				)
				if tag != "" {
					list, err = app.entries.ListTagged(ctx, tc, tag)
				} else {
					list, err = app.entries.List(ctx, tc, limit)
				}
				if err != nil {
					return err
				}
				return renderEntries(cmd.OutOrStdout(), list)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of entries (0 uses the configured limit)")
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "only entries carrying this tag")
	return cmd
}

func newSearchCommand(opts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Find entries containing text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return opts.withApp(cmd, func(ctx context.Context, app *App, tc tenancy.Context) error {
				list, err := app.entries.Search(ctx, tc, query, limit)
				if err != nil {
					return err
				}
				return renderEntries(cmd.OutOrStdout(), list)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of entries (0 uses the configured limit)")
	return cmd
}

func newShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one entry in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(ctx context.Context, app *App, tc tenancy.Context) error {
				e, err := app.entries.Get(ctx, tc, id)
				if err != nil {
					return err
				}
				return renderEntry(cmd.OutOrStdout(), e)
			})
		},
	}
}

// readContent joins args, or reads stdin when there are none.
func readContent(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	b, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), 10<<20))
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(string(b), "\n"), nil
}

func newAddCommand(opts *RootOptions) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "add [text]",
		Short: "Store text as if it had been copied (reads stdin without arguments)",
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readContent(cmd, args)
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(ctx context.Context, app *App, tc tenancy.Context) error {
				e, err := app.entries.Capture(ctx, tc, services.Capture{
					Content:   content,
					SourceApp: source,
					Timestamp: time.Now(),
				})
				if errors.Is(err, common.ErrDuplicate) {
					fmt.Fprintln(cmd.OutOrStdout(), "Already stored.")
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Stored entry %d (%s).\n", e.ID, e.ContentType)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&source, "source", "clipkeeper", "source application recorded with the entry")
	return cmd
}

func newEditCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> [text]",
		Short: "Replace the content of an entry (reads stdin without text)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			content, err := readContent(cmd, args[1:])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(ctx context.Context, app *App, tc tenancy.Context) error {
				e, err := app.entries.UpdateContent(ctx, tc, id, content)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated entry %d.\n", e.ID)
				return nil
			})
		},
	}
}

func newPinCommand(opts *RootOptions, pinned bool) *cobra.Command {
	use, short, done := "pin <id>", "Pin an entry so retention keeps it", "Pinned"
	if !pinned {
		use, short, done = "unpin <id>", "Unpin an entry", "Unpinned"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(ctx context.Context, app *App, tc tenancy.Context) error {
				if _, err := app.entries.SetPinned(ctx, tc, id, pinned); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s entry %d.\n", done, id)
				return nil
			})
		},
	}
}

func newDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(ctx context.Context, app *App, tc tenancy.Context) error {
				if err := app.entries.Delete(ctx, tc, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted entry %d.\n", id)
				return nil
			})
		},
	}
}
