// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"

	"github.com/jeranaias/rigchat/internal/segment"
)

// Plain renders content without escape sequences. Markers are dropped,
// inline code keeps its backticks and code blocks are indented by four
// spaces under an optional "[language]" line.
func Plain(content string) string {
	var b strings.Builder
	for _, seg := range segment.Parse(content) {
		switch s := seg.(type) {
		case segment.PlainText:
			b.WriteString(s.Text)
		case segment.Bold:
			b.WriteString(s.Text)
		case segment.InlineCode:
			b.WriteString("`" + s.Text + "`")
		case segment.CodeBlock:
			ensureNewline(&b)
			if s.Language != "" {
				b.WriteString("[" + s.Language + "]\n")
			}
			for i, line := range strings.Split(s.Code, "\n") {
				if i > 0 {
					b.WriteString("\n")
				}
				if line != "" {
					b.WriteString("    " + line)
				}
			}
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// ensureNewline terminates a non-empty builder with a newline.
func ensureNewline(b *strings.Builder) {
	s := b.String()
	if s != "" && !strings.HasSuffix(s, "\n") {
		b.WriteString("\n")
	}
}
