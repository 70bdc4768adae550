// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"

	"github.com/spf13/cobra"
)

const rootLongDesc string = `rigchat is a terminal chat client for an OpenAI-compatible
chat completion service.

Without a subcommand it opens the full-screen chat. Replies support
**bold**, ` + "`inline code`" + ` and fenced code blocks with syntax highlighting.

Configuration lives in ~/.rigchat/config.toml (RIGCHAT_HOME moves the
directory). Every key can be overridden from the environment, e.g.
RIGCHAT_CLOUD_API_KEY or RIGCHAT_CLOUD_MODEL. OPENAI_API_KEY is used
when no key is configured.

Examples:
  rigchat
  rigchat --model gpt-4o
  rigchat ask "What does fsync guarantee?"
  git diff | rigchat ask
  rigchat repl`

const rootShortDesc string = "Chat with an assistant in your terminal"

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	model      string
	debug      bool
	logStderr  bool
}

// NewRootCmd builds the rigchat command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "rigchat",
		Short:         rootShortDesc,
		Long:          rootLongDesc,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), cmd, opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to the config file (default ~/.rigchat/config.toml)")
	flags.StringVarP(&opts.model, "model", "m", "", "Model identifier (overrides config)")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	flags.BoolVar(&opts.logStderr, "log-stderr", false, "Write logs to stderr instead of the log file")

	cmd.AddCommand(
		newAskCmd(opts),
		newReplCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)

	return cmd
}

// Execute runs the command tree with the process arguments.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
