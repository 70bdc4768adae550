// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package segment

import (
	"strings"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// PARSE TESTS
// =============================================================================

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Segment
	}{
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:  "plain text only",
			input: "just some words, nothing else",
			want:  []Segment{PlainText{Text: "just some words, nothing else"}},
		},
		{
			name:  "bold",
			input: "Hello **world**",
			want:  []Segment{PlainText{Text: "Hello "}, Bold{Text: "world"}},
		},
		{
			name:  "inline code",
			input: "Use `npm install`",
			want:  []Segment{PlainText{Text: "Use "}, InlineCode{Text: "npm install"}},
		},
		{
			name:  "fenced block with language",
			input: "```ts\nconst x=1;\n```",
			want:  []Segment{CodeBlock{Language: "ts", Code: "const x=1;"}},
		},
		{
			name:  "fenced block without language",
			input: "```\nls -la\n```",
			want:  []Segment{CodeBlock{Code: "ls -la"}},
		},
		{
			name:  "whitespace only fence",
			input: "```\n   \n\t\n```",
			want:  []Segment{CodeBlock{Code: ""}},
		},
		{
			name:  "single line fence",
			input: "run ```make test``` now",
			want: []Segment{
				PlainText{Text: "run "},
				CodeBlock{Code: "make test"},
				PlainText{Text: " now"},
			},
		},
		{
			name:  "text around fence",
			input: "Here:\n```go\nfmt.Println(1)\n```\nDone **ok**",
			want: []Segment{
				PlainText{Text: "Here:\n"},
				CodeBlock{Language: "go", Code: "fmt.Println(1)"},
				PlainText{Text: "\nDone "},
				Bold{Text: "ok"},
			},
		},
		{
			name:  "two fences",
			input: "```py\na\n```\n```c++\nb\n```",
			want: []Segment{
				CodeBlock{Language: "py", Code: "a"},
				PlainText{Text: "\n"},
				CodeBlock{Language: "c++", Code: "b"},
			},
		},
		{
			name:  "non tag header belongs to the code",
			input: "```echo hi\n```",
			want:  []Segment{CodeBlock{Code: "echo hi"}},
		},
		{
			name:  "unterminated fence",
			input: "```js\nbroken",
			want:  []Segment{PlainText{Text: "```js\nbroken"}},
		},
		{
			name:  "unterminated fence keeps later inline code",
			input: "```js `x`",
			want:  []Segment{PlainText{Text: "```js "}, InlineCode{Text: "x"}},
		},
		{
			name:  "unpaired backtick",
			input: "a ` b",
			want:  []Segment{PlainText{Text: "a ` b"}},
		},
		{
			name:  "backticks across lines are literal",
			input: "a `b\nc` d",
			want:  []Segment{PlainText{Text: "a `b\nc` d"}},
		},
		{
			name:  "double backticks are literal",
			input: "``x``",
			want:  []Segment{PlainText{Text: "``x``"}},
		},
		{
			name:  "bold inside inline code stays code",
			input: "`**x**`",
			want:  []Segment{InlineCode{Text: "**x**"}},
		},
		{
			name:  "unpaired bold",
			input: "a ** b",
			want:  []Segment{PlainText{Text: "a ** b"}},
		},
		{
			name:  "empty bold is literal",
			input: "****",
			want:  []Segment{PlainText{Text: "****"}},
		},
		{
			name:  "bold across lines is literal",
			input: "**a\nb**",
			want:  []Segment{PlainText{Text: "**a\nb**"}},
		},
		{
			name:  "bold does not cross a fence",
			input: "**a ```x``` b**",
			want: []Segment{
				PlainText{Text: "**a "},
				CodeBlock{Code: "x"},
				PlainText{Text: " b**"},
			},
		},
		{
			name:  "mixed",
			input: "**Note:** run `go test` then check",
			want: []Segment{
				Bold{Text: "Note:"},
				PlainText{Text: " run "},
				InlineCode{Text: "go test"},
				PlainText{Text: " then check"},
			},
		},
		{
			name:  "multibyte text",
			input: "héllo **wörld** `ü`",
			want: []Segment{
				PlainText{Text: "héllo "},
				Bold{Text: "wörld"},
				PlainText{Text: " "},
				InlineCode{Text: "ü"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_PlainInputIsOneSegment(t *testing.T) {
	inputs := []string{
		"a",
		" ",
		"multi\nline\ntext",
		"single * star and _underscores_",
		"# not a header\n- not a list",
	}
	for _, in := range inputs {
		got := Parse(in)
		require.Len(t, got, 1, "input %q", in)
		assert.Equal(t, PlainText{Text: in}, got[0])
	}
}

func TestParse_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"Hello **world**",
		"```go\nx := 1\n```\nand `y` **z**",
		"```js\nbroken",
		"** ` ``` **",
	}
	for _, in := range inputs {
		assert.Equal(t, Parse(in), Parse(in), "input %q", in)
	}
}

func TestParse_NoCodeBlockForUnterminatedFence(t *testing.T) {
	inputs := []string{
		"```js\nbroken",
		"```",
		"text ```",
		"```\n",
	}
	for _, in := range inputs {
		segs := Parse(in)
		assert.Empty(t, CodeBlocks(segs), "input %q", in)
	}
}

func TestParse_LiteralsDropMarkers(t *testing.T) {
	in := "A **b** `c`\n```sh\n  d  \n```"
	literals := lo.Map(Parse(in), func(s Segment, _ int) string { return s.Literal() })
	assert.Equal(t, "A b c\nd", strings.Join(literals, ""))
}

// =============================================================================
// HELPER TESTS
// =============================================================================

func TestKindString(t *testing.T) {
	tests := []struct {
		seg  Segment
		want string
	}{
		{PlainText{}, "text"},
		{Bold{}, "bold"},
		{InlineCode{}, "inline_code"},
		{CodeBlock{}, "code_block"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.seg.Kind().String())
	}
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestCodeBlocks(t *testing.T) {
	segs := Parse("a\n```go\none\n```\nb\n```\ntwo\n```")
	blocks := CodeBlocks(segs)
	require.Len(t, blocks, 2)
	assert.Equal(t, "go", blocks[0].Language)
	assert.Equal(t, "one", blocks[0].Code)
	assert.Equal(t, "", blocks[1].Language)
	assert.Equal(t, "two", blocks[1].Code)
}
