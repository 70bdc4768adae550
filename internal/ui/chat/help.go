// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	glamourStyles "github.com/charmbracelet/glamour/styles"
	"github.com/muesli/termenv"

	"github.com/jeranaias/rigchat/internal/ui/styles"
)

// helpMarkdown builds the help document from the key map and command table.
func helpMarkdown(keys KeyMap) string {
	var sb strings.Builder
	sb.WriteString("# rigchat help\n\n")
	sb.WriteString("## Keys\n\n")
	sb.WriteString("| Key | Action |\n|---|---|\n")
	for _, group := range keys.FullHelp() {
		for _, b := range group {
			h := b.Help()
			sb.WriteString(fmt.Sprintf("| `%s` | %s |\n", h.Key, h.Desc))
		}
	}

	sb.WriteString("\n## Commands\n\n")
	sb.WriteString("| Command | Action |\n|---|---|\n")
	for _, c := range Commands() {
		usage := c.Name
		if c.Args != "" {
			usage += " " + c.Args
		}
		sb.WriteString(fmt.Sprintf("| `%s` | %s |\n", usage, c.Description))
	}

	sb.WriteString("\nStart a message with `//` to send a literal leading slash.\n")
	sb.WriteString("\nReplies support **bold**, `inline code` and fenced code blocks.\n")
	return sb.String()
}

// glamourStyleFor picks a glamour style matching the theme.
func glamourStyleFor(theme *styles.Theme) string {
	switch {
	case theme.ColorProfile == termenv.Ascii:
		return glamourStyles.AsciiStyle
	case theme.IsDark:
		return glamourStyles.DarkStyle
	default:
		return glamourStyles.LightStyle
	}
}

// renderHelp renders the help document for the given width. It falls back
// to the raw Markdown if glamour fails.
func renderHelp(theme *styles.Theme, keys KeyMap, width int) string {
	doc := helpMarkdown(keys)
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(glamourStyleFor(theme)),
		glamour.WithWordWrap(max(width, 20)),
	)
	if err != nil {
		return doc
	}
	out, err := r.Render(doc)
	if err != nil {
		return doc
	}
	return strings.Trim(out, "\n")
}
