// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/rigchat/internal/config"
	"github.com/jeranaias/rigchat/internal/conversation"
	"github.com/jeranaias/rigchat/internal/export"
	"github.com/jeranaias/rigchat/internal/ui/styles"
	"github.com/jeranaias/rigchat/internal/util"
)

const replLongDesc string = `Chat line by line without the full-screen UI.

Arrow keys walk the input history, which is kept in ~/.rigchat/history.
Each line is sent as a message and the reply is printed below it.

Commands:
  /new, /clear      Start a new conversation
  /export <path>    Save the transcript as .md, .html or .json
  /help             Show this list
  /quit, /exit, /q  Leave (Ctrl+D also works)

Start a line with // to send a literal leading slash.`

const replShortDesc string = "Line-mode chat with input history"

type replCommand struct {
	names []string
	usage string
	desc  string
}

// replCommands are the REPL commands in help order.
var replCommands = []replCommand{
	{[]string{"/new", "/clear"}, "/new, /clear", "start a new conversation"},
	{[]string{"/export"}, "/export <path>", "save the transcript (.md, .html, .json)"},
	{[]string{"/help", "/?"}, "/help", "show this list"},
	{[]string{"/quit", "/exit", "/q"}, "/quit, /exit, /q", "leave"},
}

// replHelp renders replCommands as an aligned table.
func replHelp() string {
	lines := make([]string, len(replCommands))
	for i, c := range replCommands {
		lines[i] = util.PadWidth(c.usage, 18) + c.desc
	}
	return strings.Join(lines, "\n")
}

func replCommandNames() []string {
	return lo.FlatMap(replCommands, func(c replCommand, _ int) []string {
		return c.names
	})
}

type replCommander struct {
	opts *globalOptions
}

func newReplCmd(opts *globalOptions) *cobra.Command {
	cmder := &replCommander{opts: opts}

	return &cobra.Command{
		Use:   "repl",
		Short: replShortDesc,
		Long:  replLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}
}

func (c *replCommander) run(ctx context.Context, cmd *cobra.Command) error {
	a, err := newApp(c.opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	session := newReplSession(a, a.newController(""), cmd.OutOrStdout())
	defer session.controller.Close()

	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	defer line.Close()

	historyFile, err := config.HistoryPath()
	if err != nil {
		a.logger.Warn("input history disabled", zap.Error(err))
	} else {
		loadHistory(line, historyFile)
		defer saveHistory(line, historyFile, a.logger)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "rigchat %s | %s | /help for commands\n", Version, a.cfg.Cloud.Model)
	if !a.cfg.HasCredential() {
		fmt.Fprintln(out, conversation.NoticeUnavailable)
	}

	prompt := session.userLabel + "> "
	for {
		input, err := line.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}

		if session.handleLine(ctx, input) {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// =============================================================================
// SESSION
// =============================================================================

// replSession turns input lines into commands or messages and prints the
// results. It has no terminal state so it can be driven directly.
type replSession struct {
	controller    *conversation.Controller
	out           io.Writer
	logger        *zap.Logger
	assistantName string
	userLabel     string
	codeTheme     string
}

func newReplSession(a *app, controller *conversation.Controller, out io.Writer) *replSession {
	return &replSession{
		controller:    controller,
		out:           out,
		logger:        a.logger.Named("repl"),
		assistantName: a.cfg.Assistant.Name,
		userLabel:     a.cfg.CurrentUser().Label(),
		codeTheme:     a.cfg.UI.CodeTheme,
	}
}

// handleLine processes one input line and reports whether to quit.
func (s *replSession) handleLine(ctx context.Context, input string) bool {
	text := strings.TrimSpace(input)
	if text == "" {
		return false
	}

	if strings.HasPrefix(text, "/") && !strings.HasPrefix(text, "//") {
		return s.runCommand(text)
	}
	// "//text" sends "/text".
	text = strings.TrimPrefix(text, "/")

	before := s.controller.Len()
	s.controller.SendAndWait(ctx, text)
	for _, msg := range s.controller.Messages()[before:] {
		if msg.IsUser() {
			continue
		}
		fmt.Fprintf(s.out, "\n%s:\n%s\n\n", s.assistantName, formatReply(msg.Content, s.out, false, s.codeTheme))
	}
	return false
}

func (s *replSession) runCommand(line string) bool {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case "/new", "/clear":
		s.controller.Reset()
		fmt.Fprintln(s.out, styles.RenderInfo("Started a new conversation."))
	case "/export":
		s.export(strings.Join(fields[1:], " "))
	case "/help", "/?":
		fmt.Fprintln(s.out, replHelp())
	case "/quit", "/exit", "/q":
		return true
	default:
		hint := "try /help"
		if suggestion := util.Suggest(fields[0], replCommandNames()); suggestion != "" {
			hint = "did you mean " + suggestion + "?"
		}
		fmt.Fprintln(s.out, styles.RenderWarning(fmt.Sprintf("Unknown command %s (%s)", fields[0], hint)))
	}
	return false
}

func (s *replSession) export(path string) {
	if path == "" {
		fmt.Fprintln(s.out, "Usage: /export <path>")
		return
	}
	msgs := s.controller.Messages()
	if len(msgs) == 0 {
		fmt.Fprintln(s.out, "Nothing to export yet.")
		return
	}

	t := export.NewTranscript(msgs, s.assistantName, s.userLabel, s.controller.Model())
	written, err := export.ExportToFile(t, path, nil)
	if err != nil {
		s.logger.Warn("export failed", zap.Error(err))
		fmt.Fprintln(s.out, styles.RenderError("Export failed: "+err.Error()))
		return
	}
	s.logger.Info("transcript exported", zap.String("path", written))
	fmt.Fprintln(s.out, styles.RenderSuccess("Exported to "+written))
}

// =============================================================================
// INPUT HISTORY
// =============================================================================

// loadHistory reads the history file if it exists.
func loadHistory(line *liner.State, path string) {
	if f, err := os.Open(path); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
}

// saveHistory persists the history with owner-only permissions.
func saveHistory(line *liner.State, path string, logger *zap.Logger) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		logger.Warn("failed to create history directory", zap.Error(err))
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		logger.Warn("failed to save input history", zap.Error(err))
		return
	}
	defer f.Close()

	if _, err := line.WriteHistory(f); err != nil {
		logger.Warn("failed to save input history", zap.Error(err))
	}
}
