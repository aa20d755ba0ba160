package main

import (
	"github.com/spf13/cobra"

	"qcloud/internal/app"
)

func newSubmitCmd(opts *cliOptions) *cobra.Command {
	tf := &taskFlags{}
	cmd := &cobra.Command{
		Use:   "submit <kind> <file.ir>...",
		Short: "Submit programs without waiting",
		Long: "Submit one or more OriginIR programs and remember the task in the local store.\n" +
			"Use query or wait with the printed id.\n\nKinds:\n" + kindUsage(),
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(application *app.App) error {
				task, progs, err := prepare(application, args, *tf)
				if err != nil {
					return err
				}
				report, err := application.Submit(cmd.Context(), task, progs, tf.batch)
				if err != nil {
					return err
				}
				if err := writeReport(cmd.OutOrStdout(), report, opts.jsonOutput); err != nil {
					return err
				}
				return reportExit(report)
			})
		},
	}
	bindTaskFlags(cmd, tf)
	return cmd
}

func newQueryCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "query <id>",
		Short: "Check a stored task once",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(application *app.App) error {
				report, err := application.Query(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if err := writeReport(cmd.OutOrStdout(), report, opts.jsonOutput); err != nil {
					return err
				}
				return reportExit(report)
			})
		},
	}
}

func newWaitCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "wait <id>",
		Short: "Poll a stored task until it finishes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(application *app.App) error {
				report, err := application.Wait(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if err := writeReport(cmd.OutOrStdout(), report, opts.jsonOutput); err != nil {
					return err
				}
				return reportExit(report)
			})
		},
	}
}
