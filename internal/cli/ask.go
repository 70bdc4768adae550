// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/rigchat/internal/render"
	"github.com/jeranaias/rigchat/internal/ui/styles"
)

const askLongDesc string = `Send a single prompt and print the reply.

The prompt is taken from the arguments, or from stdin when no arguments
are given and stdin is not a terminal. The reply is rendered with colors
and highlighted code when stdout is a terminal, and as plain text
otherwise.

Examples:
  rigchat ask "Explain Go's select statement"
  cat main.go | rigchat ask
  rigchat ask --raw "Write a haiku" > haiku.md`

const askShortDesc string = "Ask a single question"

// maxStdinPrompt caps a prompt read from stdin.
const maxStdinPrompt = 256 * 1024

// errNoReply is returned when the assistant answered with a notice.
var errNoReply = errors.New("no reply from the assistant")

type askCommander struct {
	opts   *globalOptions
	raw    bool
	system string
}

func newAskCmd(opts *globalOptions) *cobra.Command {
	cmder := &askCommander{opts: opts}

	cmd := &cobra.Command{
		Use:   "ask [prompt...]",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, args)
		},
	}

	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print the reply exactly as received")
	cmd.Flags().StringVarP(&cmder.system, "system", "s", "", "System prompt for this question (overrides config)")

	return cmd
}

func (c *askCommander) run(ctx context.Context, cmd *cobra.Command, args []string) error {
	prompt, err := readPrompt(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	a, err := newApp(c.opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	controller := a.newController(c.system)
	controller.SendAndWait(ctx, prompt)

	reply, ok := controller.LastReply()
	if !ok {
		return errNoReply
	}
	if reply.Synthetic {
		a.logger.Warn("ask finished without a reply", zap.String("notice", reply.Content))
		fmt.Fprintln(cmd.ErrOrStderr(), reply.Content)
		return errNoReply
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, formatReply(reply.Content, out, c.raw, a.cfg.UI.CodeTheme))
	return nil
}

// readPrompt joins args into a prompt, falling back to piped stdin.
func readPrompt(args []string, stdin io.Reader) (string, error) {
	prompt := strings.TrimSpace(strings.Join(args, " "))
	if prompt == "" && !isTerminal(stdin) {
		data, err := io.ReadAll(io.LimitReader(stdin, maxStdinPrompt))
		if err != nil {
			return "", fmt.Errorf("failed to read prompt from stdin: %w", err)
		}
		prompt = strings.TrimSpace(string(data))
	}
	if prompt == "" {
		return "", errors.New("no prompt given: pass it as arguments or pipe it on stdin")
	}
	return prompt, nil
}

// formatReply renders content for w: styled on a color terminal, plain
// otherwise, untouched when raw is set.
func formatReply(content string, w io.Writer, raw bool, codeTheme string) string {
	if raw {
		return content
	}
	profile := colorProfile(w)
	if profile == termenv.Ascii {
		return render.Plain(content)
	}

	lipgloss.SetColorProfile(profile)
	theme := styles.NewThemeFor(profile, lipgloss.HasDarkBackground())
	r := render.New(theme,
		render.WithCodeTheme(codeTheme),
		render.WithWidth(terminalWidth(w)-2),
	)
	return r.Render(content)
}
