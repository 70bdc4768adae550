// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/jeranaias/rigchat/internal/model"
	"github.com/jeranaias/rigchat/internal/util"
)

var (
	// ErrEmpty is returned when there are no messages to export.
	ErrEmpty = errors.New("conversation has no messages")

	// ErrUnsupportedFormat is returned for unknown file extensions.
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter defines the interface for transcript exporters.
type Exporter interface {
	// Export converts a transcript to the target format.
	Export(t *Transcript) ([]byte, error)

	// FileExtension returns the canonical file extension (e.g., ".md").
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// Options configures export behavior.
type Options struct {
	// IncludeMetadata adds a header with model, participants and dates.
	IncludeMetadata bool

	// IncludeTimestamps adds per-message times.
	IncludeTimestamps bool

	// Theme for HTML export ("light" or "dark").
	Theme string
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		IncludeMetadata:   true,
		IncludeTimestamps: true,
		Theme:             "dark",
	}
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Transcript is a snapshot of a conversation for export.
type Transcript struct {
	Title      string
	Assistant  string
	User       string
	Model      string
	ExportedAt time.Time
	Messages   []model.Message
}

// NewTranscript snapshots msgs. Empty names fall back to "Assistant" and
// "You".
func NewTranscript(msgs []model.Message, assistant, user, modelID string) *Transcript {
	assistant = lo.CoalesceOrEmpty(strings.TrimSpace(assistant), "Assistant")
	user = lo.CoalesceOrEmpty(strings.TrimSpace(user), "You")
	return &Transcript{
		Title:      "Conversation with " + assistant,
		Assistant:  assistant,
		User:       user,
		Model:      modelID,
		ExportedAt: time.Now(),
		Messages:   append([]model.Message(nil), msgs...),
	}
}

// StartedAt returns the time of the first message, or ExportedAt.
func (t *Transcript) StartedAt() time.Time {
	if len(t.Messages) == 0 {
		return t.ExportedAt
	}
	return t.Messages[0].CreatedAt
}

// roleLabel names the author of msg.
func (t *Transcript) roleLabel(msg model.Message) string {
	switch {
	case msg.Synthetic:
		return "Notice"
	case msg.IsUser():
		return t.User
	case msg.IsAssistant():
		return t.Assistant
	default:
		return msg.Role.DisplayName()
	}
}

func (t *Transcript) validate() error {
	if t == nil || len(t.Messages) == 0 {
		return ErrEmpty
	}
	return nil
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ExporterFor returns the exporter matching path's extension. A path
// without an extension selects Markdown.
func ExporterFor(path string, opts *Options) (Exporter, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case "", ".md", ".markdown":
		return NewMarkdownExporter(opts), nil
	case ".html", ".htm":
		return NewHTMLExporter(opts), nil
	case ".json":
		return NewJSONExporter(opts), nil
	default:
		return nil, fmt.Errorf("%w: %q (use .md, .html or .json)", ErrUnsupportedFormat, ext)
	}
}

// ExportToFile writes t to path in the format chosen by its extension and
// returns the absolute path written.
func ExportToFile(t *Transcript, path string, opts *Options) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("export path is empty")
	}

	exporter, err := ExporterFor(path, opts)
	if err != nil {
		return "", err
	}
	if filepath.Ext(path) == "" {
		path += exporter.FileExtension()
	}

	content, err := exporter.Export(t)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve export path: %w", err)
	}
	if err := util.AtomicWriteFile(absPath, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return absPath, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// formatShortTimestamp formats a timestamp for inline display.
func formatShortTimestamp(t time.Time) string {
	return t.Format("15:04:05")
}
