package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"qcloud/internal/app"
)

type cliOptions struct {
	configPath string
	apiBase    string
	apiKey     string
	verbose    bool
	jsonOutput bool
	storePath  string
	metricsOut string
	overrides  app.Overrides
}

func newRootCommand() *cobra.Command {
	opts := cliOptions{}

	root := &cobra.Command{
		Use:           "qcloudctl",
		Short:         "Submit and track quantum tasks on the cloud service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			applyRootFlagBindings(cmd, &opts)
		},
	}

	bindRootFlags(root.PersistentFlags(), &opts)

	root.AddCommand(
		newRunCmd(&opts),
		newSubmitCmd(&opts),
		newQueryCmd(&opts),
		newWaitCmd(&opts),
		newTasksCmd(&opts),
		newConfigCmd(&opts),
	)

	return root
}

func bindRootFlags(flags *pflag.FlagSet, opts *cliOptions) {
	flags.StringVar(&opts.configPath, "config", "", "path to config file (yaml or toml)")
	flags.StringVar(&opts.apiBase, "api-base", "", "cloud service base URL")
	flags.StringVar(&opts.apiKey, "api-key", "", "api key (overrides config and env)")
	flags.BoolVar(&opts.verbose, "verbose", false, "log raw responses and use development logging")
	flags.BoolVar(&opts.jsonOutput, "json", false, "output JSON")
	flags.StringVar(&opts.storePath, "store", "", "task store path")
	flags.StringVar(&opts.metricsOut, "metrics-out", "", "write metrics to this textfile on exit (- for stderr)")
}

// applyRootFlagBindings turns explicitly set flags into overrides so unset
// flags never mask values from the config file.
func applyRootFlagBindings(cmd *cobra.Command, opts *cliOptions) {
	flags := cmd.Flags()
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "api-base":
			opts.apiBase, _ = flags.GetString("api-base")
			opts.overrides.APIBase = &opts.apiBase
		case "api-key":
			opts.apiKey, _ = flags.GetString("api-key")
			opts.overrides.APIKey = &opts.apiKey
		case "verbose":
			opts.verbose, _ = flags.GetBool("verbose")
			opts.overrides.Verbose = &opts.verbose
		case "store":
			opts.storePath, _ = flags.GetString("store")
			opts.overrides.StorePath = opts.storePath
		case "metrics-out":
			opts.metricsOut, _ = flags.GetString("metrics-out")
			opts.overrides.MetricsTextfile = opts.metricsOut
		case "config":
			opts.configPath, _ = flags.GetString("config")
		case "json":
			opts.jsonOutput, _ = flags.GetBool("json")
		}
	})
}

// withApp opens the application for one command and closes it afterwards.
func withApp(cmd *cobra.Command, opts *cliOptions, fn func(*app.App) error) (err error) {
	application, err := app.New(cmd.Context(), app.Options{
		ConfigPath: opts.configPath,
		Overrides:  opts.overrides,
	})
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := application.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(application)
}
