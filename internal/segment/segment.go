// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package segment splits assistant replies into typed, renderable pieces.
//
// Only three markers are recognized: fenced code blocks, inline code and
// bold emphasis. Everything else is plain text. Parsing never fails; a
// marker that is not properly paired is kept as literal text.
package segment

// =============================================================================
// SEGMENT KINDS
// =============================================================================

// Kind identifies the variant of a Segment.
type Kind int

const (
	KindPlainText Kind = iota
	KindBold
	KindInlineCode
	KindCodeBlock
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindPlainText:
		return "text"
	case KindBold:
		return "bold"
	case KindInlineCode:
		return "inline_code"
	case KindCodeBlock:
		return "code_block"
	default:
		return "unknown"
	}
}

// Segment is one piece of parsed content. The set of implementations is
// closed: PlainText, Bold, InlineCode and CodeBlock.
type Segment interface {
	// Kind reports which variant this is.
	Kind() Kind

	// Literal returns the text of the segment with its markers removed.
	Literal() string

	segment()
}

// =============================================================================
// VARIANTS
// =============================================================================

// PlainText is unformatted text.
type PlainText struct {
	Text string
}

func (PlainText) Kind() Kind        { return KindPlainText }
func (s PlainText) Literal() string { return s.Text }
func (PlainText) segment()          {}

// Bold is text that was wrapped in ** markers.
type Bold struct {
	Text string
}

func (Bold) Kind() Kind        { return KindBold }
func (s Bold) Literal() string { return s.Text }
func (Bold) segment()          {}

// InlineCode is text that was wrapped in single backticks.
type InlineCode struct {
	Text string
}

func (InlineCode) Kind() Kind        { return KindInlineCode }
func (s InlineCode) Literal() string { return s.Text }
func (InlineCode) segment()          {}

// CodeBlock is the body of a fenced block. Language is empty when the
// opening fence carried no tag. Code is trimmed of surrounding whitespace.
type CodeBlock struct {
	Language string
	Code     string
}

func (CodeBlock) Kind() Kind        { return KindCodeBlock }
func (s CodeBlock) Literal() string { return s.Code }
func (CodeBlock) segment()          {}

// =============================================================================
// HELPERS
// =============================================================================

// CodeBlocks returns the code blocks among segs, in order.
func CodeBlocks(segs []Segment) []CodeBlock {
	var blocks []CodeBlock
	for _, s := range segs {
		if cb, ok := s.(CodeBlock); ok {
			blocks = append(blocks, cb)
		}
	}
	return blocks
}
