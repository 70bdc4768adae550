// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small file and text helpers shared by rigchat
// packages.
//
//   - AtomicWriteFile: crash-safe file writing with fsync
//   - TruncateWidth, PadWidth: display-width aware string fitting
//   - Suggest: closest-match lookup for mistyped commands
package util
