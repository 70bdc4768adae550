// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeranaias/rigchat/internal/cloud"
	"github.com/jeranaias/rigchat/internal/config"
)

const configLongDesc string = `Inspect or create the rigchat config file.

Examples:
  rigchat config path
  rigchat config show
  rigchat config init
  rigchat --config ./dev.toml config init --force`

type configCommander struct {
	opts  *globalOptions
	force bool
}

func newConfigCmd(opts *globalOptions) *cobra.Command {
	cmder := &configCommander{opts: opts}

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
		Long:  configLongDesc,
		Args:  cobra.NoArgs,
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := cmder.path()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved config with the API key masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.show(cmd)
		},
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.init(cmd)
		},
	}
	initCmd.Flags().BoolVarP(&cmder.force, "force", "f", false, "Overwrite an existing file")

	cmd.AddCommand(pathCmd, showCmd, initCmd)
	return cmd
}

func (c *configCommander) path() (string, error) {
	if c.opts.configPath != "" {
		return c.opts.configPath, nil
	}
	return config.Path()
}

// show prints the file, environment and flag overrides merged, as the
// chat commands would see them.
func (c *configCommander) show(cmd *cobra.Command) error {
	path, err := c.path()
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if c.opts.model != "" {
		cfg.Cloud.Model = c.opts.model
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "# file: %s\n", path)
	fmt.Fprintf(out, "# api key: %s\n\n", cloud.MaskKey(cfg.Cloud.APIKey))
	fmt.Fprint(out, cfg.String())
	return nil
}

func (c *configCommander) init(cmd *cobra.Command) error {
	path, err := c.path()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil && !c.force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat config file: %w", err)
	}

	if err := config.Save(config.Default(), path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	fmt.Fprintln(cmd.OutOrStdout(), "Set api_key under [cloud] or export RIGCHAT_CLOUD_API_KEY to start chatting.")
	return nil
}
