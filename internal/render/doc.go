// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns message content into terminal text.
//
// Content is split with segment.Parse and each segment is styled by kind:
// plain text as-is, bold with the theme's bold style, inline code with a
// subtle background, and fenced code blocks as a bordered box with a
// language badge, line numbers and chroma syntax highlighting.
//
// Renderer caches output per (content, width) pair. Plain renders the
// same structure without escape sequences for pipes and files.
package render
