// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes a conversation transcript to a file.
//
// Supported formats, chosen by file extension:
//   - Markdown (.md, .markdown): message text as written, fences preserved
//   - HTML (.html, .htm): standalone page, message Markdown converted by
//     blackfriday with raw HTML dropped
//   - JSON (.json): the messages with their IDs, roles and timestamps
//
// A path without an extension gets ".md". Files are written atomically.
// Export is a one-way snapshot; nothing reads these files back.
package export
