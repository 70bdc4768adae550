// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package segment

import "strings"

const (
	fenceMarker = "```"
	boldMarker  = "**"
)

// Parse splits raw into segments in document order.
//
// Markers are claimed by precedence: fenced code blocks first, then inline
// code inside the text between fences, then bold inside what is left.
// An unterminated fence, an unpaired backtick or an unpaired ** stays in
// the surrounding PlainText. Adjacent plain pieces are merged, so input
// without any markers yields exactly one PlainText.
//
// Parse is pure: the same input always produces an equal result.
func Parse(raw string) []Segment {
	if raw == "" {
		return nil
	}

	var out []Segment
	rest := raw
	for rest != "" {
		start, end, block, ok := nextFence(rest)
		if !ok {
			out = appendInline(out, rest)
			break
		}
		out = appendInline(out, rest[:start])
		out = append(out, block)
		rest = rest[end:]
	}
	return mergePlain(out)
}

// =============================================================================
// FENCED CODE BLOCKS
// =============================================================================

// nextFence locates the first complete fenced block in s. start and end
// bound the whole block including both fences.
func nextFence(s string) (start, end int, block CodeBlock, ok bool) {
	start = strings.Index(s, fenceMarker)
	if start < 0 {
		return 0, 0, CodeBlock{}, false
	}

	bodyStart := start + len(fenceMarker)
	lang := ""

	// The tag must sit alone on the opening line. Anything else on that
	// line is part of the code.
	if nl := strings.IndexByte(s[bodyStart:], '\n'); nl >= 0 {
		header := strings.TrimSpace(s[bodyStart : bodyStart+nl])
		if header == "" || isLanguageTag(header) {
			lang = header
			bodyStart += nl + 1
		}
	}

	closeRel := strings.Index(s[bodyStart:], fenceMarker)
	if closeRel < 0 {
		return 0, 0, CodeBlock{}, false
	}

	code := s[bodyStart : bodyStart+closeRel]
	end = bodyStart + closeRel + len(fenceMarker)
	return start, end, CodeBlock{Language: lang, Code: strings.TrimSpace(code)}, true
}

// isLanguageTag reports whether tok looks like a language identifier
// such as "go", "c++", "objective-c" or "c#".
func isLanguageTag(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_', r == '-', r == '+', r == '#', r == '.':
		default:
			return false
		}
	}
	return true
}

// =============================================================================
// INLINE CODE
// =============================================================================

// appendInline claims inline code spans in s and hands the text between
// them to appendBold.
func appendInline(out []Segment, s string) []Segment {
	for s != "" {
		open, closing := nextInlineCode(s)
		if open < 0 {
			return appendBold(out, s)
		}
		out = appendBold(out, s[:open])
		out = append(out, InlineCode{Text: s[open+1 : closing]})
		s = s[closing+1:]
	}
	return out
}

// nextInlineCode returns the byte offsets of the first pair of single
// backticks on one line, or -1, -1. Runs of two or more backticks are
// never delimiters.
func nextInlineCode(s string) (open, closing int) {
	i := 0
	for i < len(s) {
		if s[i] != '`' {
			i++
			continue
		}
		run := backtickRun(s, i)
		if run != 1 {
			i += run
			continue
		}

		for k := i + 1; k < len(s); k++ {
			if s[k] == '\n' {
				break
			}
			if s[k] == '`' {
				if backtickRun(s, k) == 1 {
					return i, k
				}
				break
			}
		}
		i++
	}
	return -1, -1
}

func backtickRun(s string, i int) int {
	n := 0
	for i+n < len(s) && s[i+n] == '`' {
		n++
	}
	return n
}

// =============================================================================
// BOLD
// =============================================================================

// appendBold claims **bold** spans in s. Everything else becomes
// PlainText.
func appendBold(out []Segment, s string) []Segment {
	var plain strings.Builder
	for {
		open := strings.Index(s, boldMarker)
		if open < 0 {
			break
		}
		body := s[open+len(boldMarker):]
		end := strings.Index(body, boldMarker)
		if end <= 0 || strings.ContainsRune(body[:end], '\n') {
			// Not a usable opener; keep one '*' and look again.
			plain.WriteString(s[:open+1])
			s = s[open+1:]
			continue
		}
		plain.WriteString(s[:open])
		out = flushPlain(out, &plain)
		out = append(out, Bold{Text: body[:end]})
		s = body[end+len(boldMarker):]
	}
	plain.WriteString(s)
	return flushPlain(out, &plain)
}

func flushPlain(out []Segment, sb *strings.Builder) []Segment {
	if sb.Len() == 0 {
		return out
	}
	out = append(out, PlainText{Text: sb.String()})
	sb.Reset()
	return out
}

// mergePlain joins neighbouring PlainText segments.
func mergePlain(segs []Segment) []Segment {
	if len(segs) < 2 {
		return segs
	}
	merged := make([]Segment, 0, len(segs))
	for _, s := range segs {
		if p, ok := s.(PlainText); ok && len(merged) > 0 {
			if prev, ok := merged[len(merged)-1].(PlainText); ok {
				merged[len(merged)-1] = PlainText{Text: prev.Text + p.Text}
				continue
			}
		}
		merged = append(merged, s)
	}
	return merged
}
