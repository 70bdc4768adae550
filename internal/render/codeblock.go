// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"

	"github.com/jeranaias/rigchat/internal/segment"
	"github.com/jeranaias/rigchat/internal/util"
)

// DefaultCodeTheme is the chroma style used when none is configured.
const DefaultCodeTheme = "monokai"

// minCodeWidth keeps very narrow terminals from collapsing the box.
const minCodeWidth = 20

// lineNumWidth is the gutter width including its right margin.
const lineNumWidth = 5

// renderCodeBlock draws a fenced block as a bordered box. width is the
// total width available to the box.
func (r *Renderer) renderCodeBlock(block segment.CodeBlock, width int) string {
	if width < minCodeWidth {
		width = minCodeWidth
	}

	// Border and padding take four columns.
	inner := width - 4
	codeWidth := inner - lineNumWidth
	if codeWidth < 1 {
		codeWidth = 1
	}

	plainLines := strings.Split(block.Code, "\n")
	for i, line := range plainLines {
		plainLines[i] = util.TruncateWidth(expandTabs(line), codeWidth)
	}

	// Highlight after truncation so escape sequences are never cut.
	lines := strings.Split(r.highlight(strings.Join(plainLines, "\n"), block.Language), "\n")
	if extra := len(lines) - len(plainLines); extra > 0 {
		// Trailing reset sequences land on a line of their own.
		tail := strings.Join(lines[len(plainLines):], "")
		lines = lines[:len(plainLines)]
		lines[len(lines)-1] += tail
	}

	var b strings.Builder
	if block.Language != "" {
		b.WriteString(r.theme.CodeLangBadge.Render(block.Language))
		b.WriteString("\n")
	}
	for i, line := range lines {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(r.theme.CodeLineNum.Render(strconv.Itoa(i + 1)))
		b.WriteString(line)
	}

	return r.theme.CodeBlock.Width(inner + 2).Render(b.String())
}

// highlight applies chroma highlighting. It returns code unchanged when no
// formatter output can be produced.
func (r *Renderer) highlight(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get(r.codeTheme)
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get(r.formatter)
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// DetectLanguage guesses the language of untagged code, or returns "".
func DetectLanguage(code string) string {
	if lexer := lexers.Analyse(code); lexer != nil {
		return lexer.Config().Name
	}
	return ""
}

// HasTheme reports whether name is a registered chroma style.
func HasTheme(name string) bool {
	for _, known := range chromaStyles.Names() {
		if strings.EqualFold(known, name) {
			return true
		}
	}
	return false
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}
