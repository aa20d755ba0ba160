package main

import (
	"github.com/spf13/cobra"

	"qcloud/internal/app"
)

func newRunCmd(opts *cliOptions) *cobra.Command {
	tf := &taskFlags{}
	cmd := &cobra.Command{
		Use:   "run <kind> <file.ir>...",
		Short: "Run programs and wait for the result",
		Long: "Submit one or more OriginIR programs and block until the result is ready.\n" +
			"Several files are sent as one batch.\n\nKinds:\n" + kindUsage(),
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(application *app.App) error {
				task, progs, err := prepare(application, args, *tf)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if tf.batch || len(progs) > 1 {
					res, err := application.Client().RunBatch(cmd.Context(), task, progs)
					if err != nil {
						return err
					}
					return writeBatch(out, res, opts.jsonOutput)
				}
				res, err := application.Client().Run(cmd.Context(), task, progs[0])
				if err != nil {
					return err
				}
				return writeResult(out, res, opts.jsonOutput)
			})
		},
	}
	bindTaskFlags(cmd, tf)
	return cmd
}
