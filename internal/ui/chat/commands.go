// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"

	"github.com/jeranaias/rigchat/internal/export"
	"github.com/jeranaias/rigchat/internal/ui/styles"
	"github.com/jeranaias/rigchat/internal/util"
)

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// Command describes a slash command.
type Command struct {
	Name        string
	Aliases     []string
	Args        string
	Description string
	run         func(m Model, args []string) (tea.Model, tea.Cmd)
}

// Commands returns the slash commands in help order.
func Commands() []Command {
	return []Command{
		{
			Name:        "/new",
			Description: "Start a new conversation",
			run: func(m Model, _ []string) (tea.Model, tea.Cmd) {
				return m.newConversation()
			},
		},
		{
			Name:        "/clear",
			Description: "Clear the transcript (same as /new)",
			run: func(m Model, _ []string) (tea.Model, tea.Cmd) {
				return m.newConversation()
			},
		},
		{
			Name:        "/export",
			Args:        "<path>",
			Description: "Save the transcript as .md, .html or .json",
			run:         runExport,
		},
		{
			Name:        "/help",
			Aliases:     []string{"/?"},
			Description: "Show keys and commands",
			run: func(m Model, _ []string) (tea.Model, tea.Cmd) {
				m.showHelp = true
				return m, nil
			},
		},
		{
			Name:        "/quit",
			Aliases:     []string{"/exit", "/q"},
			Description: "Exit rigchat",
			run: func(m Model, _ []string) (tea.Model, tea.Cmd) {
				return m.quit()
			},
		},
	}
}

// isCommand reports whether text is a command line rather than a message.
func isCommand(text string) bool {
	return strings.HasPrefix(text, "/") && !strings.HasPrefix(text, "//")
}

// lookupCommand finds a command by name or alias, case-insensitively.
func lookupCommand(name string) (Command, bool) {
	name = strings.ToLower(name)
	return lo.Find(Commands(), func(c Command) bool {
		return c.Name == name || lo.Contains(c.Aliases, name)
	})
}

// commandNames lists every command name and alias.
func commandNames() []string {
	return lo.FlatMap(Commands(), func(c Command, _ int) []string {
		return append([]string{c.Name}, c.Aliases...)
	})
}

// runCommand dispatches a command line.
func (m Model) runCommand(line string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(line)
	cmd, ok := lookupCommand(fields[0])
	if !ok {
		hint := "try /help"
		if s := util.Suggest(fields[0], commandNames()); s != "" {
			hint = "did you mean " + s + "?"
		}
		m.statusMsg = styles.StatusIndicators.Warning + " Unknown command " + fields[0] + " (" + hint + ")"
		return m, nil
	}
	m.logger.Debug("running command " + cmd.Name)
	return cmd.run(m, fields[1:])
}

// runExport writes the transcript off the update loop.
func runExport(m Model, args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		m.statusMsg = styles.StatusIndicators.Warning + " Usage: /export <path>"
		return m, nil
	}
	path := strings.Join(args, " ")

	msgs := m.controller.Messages()
	if len(msgs) == 0 {
		m.statusMsg = styles.StatusIndicators.Warning + " Nothing to export yet"
		return m, nil
	}

	transcript := export.NewTranscript(msgs, m.assistantName, m.controller.User().Label(), m.controller.Model())
	m.statusMsg = styles.StatusIndicators.Pending + " Exporting..."
	return m, func() tea.Msg {
		written, err := export.ExportToFile(transcript, path, nil)
		if errors.Is(err, export.ErrUnsupportedFormat) {
			err = errors.New("unsupported format, use .md, .html or .json")
		}
		return ExportDoneMsg{Path: written, Err: err}
	}
}
