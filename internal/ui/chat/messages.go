// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/rigchat/internal/config"
	"github.com/jeranaias/rigchat/internal/conversation"
)

// ExchangeDoneMsg carries the outcome of a completion request back to
// the update loop.
type ExchangeDoneMsg struct {
	Outcome conversation.Outcome
}

// SettingsReloadedMsg delivers a config that changed on disk. Only the
// [ui] section is applied; the credential stays as injected at start.
type SettingsReloadedMsg struct {
	Config *config.Config
}

// ClipboardResultMsg reports the result of a copy.
type ClipboardResultMsg struct {
	What string
	Err  error
}

// ExportDoneMsg reports the result of /export.
type ExportDoneMsg struct {
	Path string
	Err  error
}
