package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"qcloud/internal/app"
)

func newTasksCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List stored tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(application *app.App) error {
				store, err := application.Store()
				if err != nil {
					return err
				}
				entries, err := store.List()
				if err != nil {
					return err
				}
				return writeEntries(cmd.OutOrStdout(), entries, opts.jsonOutput)
			})
		},
	}
	cmd.AddCommand(newTasksRemoveCmd(opts))
	return cmd
}

func newTasksRemoveCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>...",
		Aliases: []string{"remove"},
		Short:   "Forget stored tasks",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(application *app.App) error {
				store, err := application.Store()
				if err != nil {
					return err
				}
				for _, id := range args {
					if err := store.Delete(id); err != nil {
						return err
					}
				}
				if opts.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), map[string]any{"removed": args})
				}
				for _, id := range args {
					fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", id)
				}
				return nil
			})
		},
	}
}
