// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"time"

	"github.com/samber/lo"

	"github.com/jeranaias/rigchat/internal/model"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports transcripts to JSON. Options do not filter fields.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

type jsonTranscript struct {
	Title      string        `json:"title"`
	Assistant  string        `json:"assistant"`
	User       string        `json:"user"`
	Model      string        `json:"model,omitempty"`
	ExportedAt time.Time     `json:"exported_at"`
	Messages   []jsonMessage `json:"messages"`
}

type jsonMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Synthetic bool      `json:"synthetic,omitempty"`
}

// Export converts a transcript to indented JSON.
func (e *JSONExporter) Export(t *Transcript) ([]byte, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	out := jsonTranscript{
		Title:      t.Title,
		Assistant:  t.Assistant,
		User:       t.User,
		Model:      t.Model,
		ExportedAt: t.ExportedAt,
		Messages: lo.Map(t.Messages, func(m model.Message, _ int) jsonMessage {
			return jsonMessage{
				ID:        m.ID,
				Role:      m.Role.String(),
				Content:   m.Content,
				CreatedAt: m.CreatedAt,
				Synthetic: m.Synthetic,
			}
		}),
	}
	return json.MarshalIndent(out, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
