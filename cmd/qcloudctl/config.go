package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"qcloud/internal/app"
	"qcloud/internal/infra/config"
)

func newConfigCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or inspect configuration",
	}
	cmd.AddCommand(newConfigInitCmd(), newConfigShowCmd(opts))
	return cmd
}

type configInitArgs struct {
	format string
	output string
	force  bool
}

func newConfigInitCmd() *cobra.Command {
	args := &configInitArgs{format: string(config.FormatYAML)}
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := config.ParseFormat(args.format)
			if err != nil {
				return err
			}
			if args.output == "" || args.output == "-" {
				return config.Write(cmd.OutOrStdout(), config.DefaultFile(), format)
			}
			return writeConfigFile(args.output, format, args.force)
		},
	}
	cmd.Flags().StringVar(&args.format, "format", args.format, "output format (yaml or toml)")
	cmd.Flags().StringVarP(&args.output, "output", "o", "", "write to this file instead of stdout")
	cmd.Flags().BoolVar(&args.force, "force", false, "overwrite an existing file")
	return cmd
}

func writeConfigFile(path string, format config.Format, force bool) (err error) {
	if !force {
		if _, statErr := os.Stat(path); statErr == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if !errors.Is(statErr, os.ErrNotExist) {
			return statErr
		}
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return config.Write(file, config.DefaultFile(), format)
}

func newConfigShowCmd(opts *cliOptions) *cobra.Command {
	var format string
	var reveal bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(application *app.App) error {
				file := application.Config().File(reveal)
				if opts.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), file)
				}
				parsed, err := config.ParseFormat(format)
				if err != nil {
					return err
				}
				return showConfig(cmd.OutOrStdout(), application.Config().Source, file, parsed)
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", string(config.FormatYAML), "output format (yaml or toml)")
	cmd.Flags().BoolVar(&reveal, "reveal", false, "print the api key unmasked")
	return cmd
}

func showConfig(w io.Writer, source string, file config.File, format config.Format) error {
	if strings.TrimSpace(source) == "" {
		source = "defaults and environment"
	}
	fmt.Fprintf(w, "# source: %s\n", source)
	return config.Write(w, file, format)
}
