// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/rigchat/internal/model"
	"github.com/jeranaias/rigchat/internal/segment"
	"github.com/jeranaias/rigchat/internal/ui/styles"
)

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

// lastRealReply returns the newest assistant message that came from the
// service, skipping local notices.
func (m Model) lastRealReply() (model.Message, bool) {
	msgs := m.controller.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].IsAssistant() && !msgs[i].Synthetic {
			return msgs[i], true
		}
	}
	return model.Message{}, false
}

// copyLastReply copies the newest reply's raw text.
func (m *Model) copyLastReply() tea.Cmd {
	reply, ok := m.lastRealReply()
	if !ok {
		m.statusMsg = styles.StatusIndicators.Info + " No reply to copy"
		return nil
	}
	return copyCmd("reply", reply.Content)
}

// copyLastCodeBlock copies the last code block of the newest reply.
func (m *Model) copyLastCodeBlock() tea.Cmd {
	reply, ok := m.lastRealReply()
	if !ok {
		m.statusMsg = styles.StatusIndicators.Info + " No reply to copy"
		return nil
	}
	blocks := segment.CodeBlocks(segment.Parse(reply.Content))
	if len(blocks) == 0 {
		m.statusMsg = styles.StatusIndicators.Info + " Last reply has no code block"
		return nil
	}
	return copyCmd("code block", blocks[len(blocks)-1].Code)
}

func copyCmd(what, text string) tea.Cmd {
	return func() tea.Msg {
		return ClipboardResultMsg{What: what, Err: writeClipboard(text)}
	}
}
