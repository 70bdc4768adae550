// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"
	"sync"

	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
	"github.com/muesli/termenv"

	"github.com/jeranaias/rigchat/internal/segment"
	"github.com/jeranaias/rigchat/internal/ui/styles"
)

// DefaultCacheSize bounds the number of cached renders.
const DefaultCacheSize = 256

// =============================================================================
// RENDERER
// =============================================================================

// Renderer styles message content for the terminal. It is safe for
// concurrent use.
type Renderer struct {
	mu sync.Mutex

	theme     *styles.Theme
	codeTheme string
	formatter string
	width     int

	cache     map[cacheKey]string
	order     []cacheKey
	cacheSize int
}

type cacheKey struct {
	content string
	width   int
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithCodeTheme selects the chroma style for code blocks.
func WithCodeTheme(name string) Option {
	return func(r *Renderer) {
		if name != "" {
			r.codeTheme = name
		}
	}
}

// WithWidth sets the wrap width. Zero disables wrapping.
func WithWidth(width int) Option {
	return func(r *Renderer) {
		r.width = max(width, 0)
	}
}

// WithCacheSize bounds the render cache. Zero disables caching.
func WithCacheSize(n int) Option {
	return func(r *Renderer) {
		r.cacheSize = max(n, 0)
	}
}

// New creates a renderer using theme's styles and color profile.
func New(theme *styles.Theme, opts ...Option) *Renderer {
	if theme == nil {
		theme = styles.NewTheme()
	}
	r := &Renderer{
		theme:     theme,
		codeTheme: DefaultCodeTheme,
		formatter: formatterFor(theme.ColorProfile),
		cache:     make(map[cacheKey]string),
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// formatterFor picks the chroma terminal formatter matching the profile.
func formatterFor(profile termenv.Profile) string {
	switch profile {
	case termenv.TrueColor:
		return "terminal16m"
	case termenv.ANSI256:
		return "terminal256"
	case termenv.ANSI:
		return "terminal16"
	default:
		return "noop"
	}
}

// Render styles content at the renderer's current width.
func (r *Renderer) Render(content string) string {
	r.mu.Lock()
	width := r.width
	r.mu.Unlock()
	return r.RenderWidth(content, width)
}

// RenderWidth styles content wrapped to width columns.
func (r *Renderer) RenderWidth(content string, width int) string {
	key := cacheKey{content: content, width: width}

	r.mu.Lock()
	defer r.mu.Unlock()

	if out, ok := r.cache[key]; ok {
		return out
	}
	out := r.renderSegments(segment.Parse(content), width)
	r.store(key, out)
	return out
}

// store adds an entry, evicting the oldest once the cache is full.
// The caller must hold r.mu.
func (r *Renderer) store(key cacheKey, out string) {
	if r.cacheSize == 0 {
		return
	}
	if len(r.order) >= r.cacheSize {
		oldest := r.order[0]
		r.order = r.order[1:]
		delete(r.cache, oldest)
	}
	r.cache[key] = out
	r.order = append(r.order, key)
}

// renderSegments lays out runs of inline segments as wrapped prose and
// code blocks as boxes on their own lines.
func (r *Renderer) renderSegments(segs []segment.Segment, width int) string {
	var blocks []string
	var prose strings.Builder

	flush := func() {
		text := strings.Trim(prose.String(), "\n")
		prose.Reset()
		if strings.TrimSpace(text) == "" {
			return
		}
		blocks = append(blocks, wrapText(text, width))
	}

	for _, seg := range segs {
		switch s := seg.(type) {
		case segment.PlainText:
			prose.WriteString(s.Text)
		case segment.Bold:
			prose.WriteString(r.theme.Bold.Render(s.Text))
		case segment.InlineCode:
			prose.WriteString(r.theme.InlineCode.Render(s.Text))
		case segment.CodeBlock:
			flush()
			codeWidth := width
			if codeWidth == 0 {
				codeWidth = 80
			}
			blocks = append(blocks, r.renderCodeBlock(s, codeWidth))
		}
	}
	flush()

	return strings.Join(blocks, "\n")
}

// wrapText word-wraps to width, hard-wrapping words that are still too long.
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	return wrap.String(wordwrap.String(text, width), width)
}

// =============================================================================
// SETTINGS
// =============================================================================

// SetWidth changes the wrap width and drops cached renders.
func (r *Renderer) SetWidth(width int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	width = max(width, 0)
	if width == r.width {
		return
	}
	r.width = width
	r.clearLocked()
}

// SetCodeTheme changes the chroma style and drops cached renders.
func (r *Renderer) SetCodeTheme(name string) {
	if name == "" {
		name = DefaultCodeTheme
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if name == r.codeTheme {
		return
	}
	r.codeTheme = name
	r.clearLocked()
}

// CodeTheme returns the chroma style name in use.
func (r *Renderer) CodeTheme() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.codeTheme
}

// Width returns the wrap width.
func (r *Renderer) Width() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width
}

// CacheLen returns the number of cached renders.
func (r *Renderer) CacheLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cache)
}

func (r *Renderer) clearLocked() {
	r.cache = make(map[cacheKey]string)
	r.order = nil
}
