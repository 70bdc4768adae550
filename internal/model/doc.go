// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat messages.
//
// # Key Types
//
//   - Message: one immutable chat turn with role, content and creation time
//   - Role: sender enumeration (user, assistant, system)
//   - User: the person at the keyboard, used only for display
//
// # Usage
//
//	msg := model.NewUserMessage("Hello!")
//	fmt.Println(msg.Role.DisplayName(), msg.Content)
//
// Message IDs are UUIDv7 strings, so sorting IDs lexically sorts messages
// by creation time.
package model
