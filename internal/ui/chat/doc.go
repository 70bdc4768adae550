// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view for the rigchat TUI.
//
// The Model owns a conversation.Controller. Submitting text calls
// Controller.Send; the returned Exchange runs as a tea.Cmd off the update
// loop and comes back as an ExchangeDoneMsg, which Update hands to
// Controller.Resolve. Every state change re-renders the transcript into the
// viewport and scrolls it to the bottom.
//
// Key bindings:
//
//	Enter       send
//	Ctrl+N      new conversation
//	Ctrl+Y      copy last reply
//	Ctrl+B      copy last code block
//	?, F1       toggle help
//	PgUp/PgDn   scroll
//	Ctrl+C, Esc quit
//
// Lines starting with "/" are commands (/new, /clear, /export, /help,
// /quit). Start a message with "//" to send a literal leading slash.
package chat
