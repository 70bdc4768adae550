// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/rigchat/internal/ui/styles"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func newTestRenderer(opts ...Option) *Renderer {
	return New(styles.NewThemeFor(termenv.Ascii, true), opts...)
}

// =============================================================================
// PROSE
// =============================================================================

func TestRender_Prose(t *testing.T) {
	r := newTestRenderer()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"plain", "hello world", "hello world"},
		{"bold markers dropped", "a **b** c", "a b c"},
		{"inline code markers dropped", "run `ls` now", "run ls now"},
		{"literal stray markers", "2 * 3 ** 4", "2 * 3 ** 4"},
		{"empty", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, r.Render(tc.content))
		})
	}
}

func TestRender_WrapsProse(t *testing.T) {
	r := newTestRenderer(WithWidth(7))
	assert.Equal(t, "aaa bbb\nccc", r.Render("aaa bbb ccc"))
	assert.Equal(t, "abcdefg\nhij", r.Render("abcdefghij"), "long words are hard-wrapped")
}

// =============================================================================
// CODE BLOCKS
// =============================================================================

func TestRender_CodeBlock(t *testing.T) {
	r := newTestRenderer(WithWidth(40))
	out := r.Render("Here:\n```go\nfmt.Println(1)\nreturn\n```\nDone.")

	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 6)
	assert.Equal(t, "Here:", lines[0])
	assert.Equal(t, "Done.", lines[len(lines)-1])
	assert.Contains(t, out, "╭")
	assert.Contains(t, out, " go ")
	assert.Contains(t, out, "   1 fmt.Println(1)")
	assert.Contains(t, out, "   2 return")

	for _, line := range lines {
		assert.LessOrEqual(t, lipgloss.Width(line), 40, "line %q is too wide", line)
	}
}

func TestRender_CodeBlockWithoutLanguage(t *testing.T) {
	r := newTestRenderer(WithWidth(40))
	out := r.Render("```\nplain code\n```")
	assert.Contains(t, out, "   1 plain code")
	assert.NotContains(t, out, "[")
}

func TestRender_TruncatesLongCodeLines(t *testing.T) {
	r := newTestRenderer(WithWidth(30))
	out := r.Render("```\n" + strings.Repeat("x", 100) + "\n```")

	assert.Contains(t, out, "…")
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), 30)
	}
}

func TestRender_NarrowWidthClamped(t *testing.T) {
	r := newTestRenderer(WithWidth(5))
	out := r.Render("```\ncode\n```")
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), minCodeWidth)
	}
}

// =============================================================================
// CACHE
// =============================================================================

func TestRender_Cache(t *testing.T) {
	r := newTestRenderer(WithWidth(40))

	first := r.Render("hello **there**")
	assert.Equal(t, first, r.Render("hello **there**"))
	assert.Equal(t, 1, r.CacheLen())

	r.RenderWidth("hello **there**", 20)
	assert.Equal(t, 2, r.CacheLen(), "width is part of the key")

	r.SetWidth(40)
	assert.Equal(t, 2, r.CacheLen(), "unchanged width keeps the cache")
	r.SetWidth(60)
	assert.Equal(t, 0, r.CacheLen())
	assert.Equal(t, 60, r.Width())

	r.Render("x")
	r.SetCodeTheme("dracula")
	assert.Equal(t, 0, r.CacheLen())
	assert.Equal(t, "dracula", r.CodeTheme())

	r.SetCodeTheme("")
	assert.Equal(t, DefaultCodeTheme, r.CodeTheme())
}

func TestRender_CacheBounded(t *testing.T) {
	r := newTestRenderer(WithCacheSize(2))
	r.Render("a")
	r.Render("b")
	r.Render("c")
	assert.Equal(t, 2, r.CacheLen())

	off := newTestRenderer(WithCacheSize(0))
	off.Render("a")
	assert.Equal(t, 0, off.CacheLen())
}

// =============================================================================
// HELPERS
// =============================================================================

func TestFormatterFor(t *testing.T) {
	assert.Equal(t, "terminal16m", formatterFor(termenv.TrueColor))
	assert.Equal(t, "terminal256", formatterFor(termenv.ANSI256))
	assert.Equal(t, "terminal16", formatterFor(termenv.ANSI))
	assert.Equal(t, "noop", formatterFor(termenv.Ascii))
}

func TestHasTheme(t *testing.T) {
	assert.True(t, HasTheme("monokai"))
	assert.True(t, HasTheme("Monokai"))
	assert.False(t, HasTheme("no-such-theme"))
}

func TestHighlight_ColorProfile(t *testing.T) {
	r := New(styles.NewThemeFor(termenv.ANSI256, true))
	out := r.highlight("package main", "go")
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "package")
}

// =============================================================================
// PLAIN
// =============================================================================

func TestPlain(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"prose", "hello **world**", "hello world"},
		{"inline code keeps backticks", "use `go test`", "use `go test`"},
		{
			"code block",
			"Try:\n```sh\nls -la\ncd /tmp\n```\nok",
			"Try:\n[sh]\n    ls -la\n    cd /tmp\n\nok",
		},
		{"untagged block", "```\nx\n```", "    x"},
		{"blank lines stay empty", "```\na\n\nb\n```", "    a\n\n    b"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Plain(tc.content))
		})
	}
}
