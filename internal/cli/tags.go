package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/clipkeeper/internal/tenancy"
	"github.com/spf13/cobra"
)

func newTagCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage tags",
	}

	cmd.AddCommand(newTagCreateCommand(opts))
	cmd.AddCommand(newTagListCommand(opts))
	cmd.AddCommand(newTagUpdateCommand(opts))
	cmd.AddCommand(newTagDeleteCommand(opts))
	cmd.AddCommand(newTagAssignCommand(opts))
	cmd.AddCommand(newTagRemoveCommand(opts))
	return cmd
}

func newTagCreateCommand(opts *RootOptions) *cobra.Command {
	var color string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *App, tc tenancy.Context) error {
				t, err := app.tags.Create(ctx, tc, args[0], color)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created tag %d %q (%s).\n", t.ID, t.Name, t.Color)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&color, "color", "", "hex color such as #3B82F6")
	return cmd
}

func newTagListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tags with their entry counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *App, tc tenancy.Context) error {
				usage, err := app.tags.Usage(ctx, tc)
				if err != nil {
					return err
				}
				return renderTagUsage(cmd.OutOrStdout(), usage)
			})
		},
	}
}

func newTagUpdateCommand(opts *RootOptions) *cobra.Command {
	var name, color string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename or recolor a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(ctx context.Context, app *App, tc tenancy.Context) error {
				t, err := app.tags.Update(ctx, tc, id, name, color)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated tag %d %q (%s).\n", t.ID, t.Name, t.Color)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&color, "color", "", "new hex color")
	return cmd
}

func newTagDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a tag and remove it from all entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(ctx context.Context, app *App, tc tenancy.Context) error {
				if err := app.tags.Delete(ctx, tc, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted tag %d.\n", id)
				return nil
			})
		},
	}
}

func newTagAssignCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "assign <entry-id> <name>",
		Short: "Attach a tag to an entry, creating the tag if needed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(ctx context.Context, app *App, tc tenancy.Context) error {
				e, err := app.entries.AssignTag(ctx, tc, id, args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Entry %d tags: %s\n", e.ID, joinTags(e.Tags))
				return nil
			})
		},
	}
}

func newTagRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <entry-id> <name>",
		Short: "Detach a tag from an entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(ctx context.Context, app *App, tc tenancy.Context) error {
				e, err := app.entries.RemoveTag(ctx, tc, id, args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Entry %d tags: %s\n", e.ID, joinTags(e.Tags))
				return nil
			})
		},
	}
}
