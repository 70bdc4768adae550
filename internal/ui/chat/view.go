// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/jeranaias/rigchat/internal/conversation"
	"github.com/jeranaias/rigchat/internal/model"
	"github.com/jeranaias/rigchat/internal/ui/styles"
)

// View renders the chat view.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderInput(),
		m.renderStatusBar(),
	)
}

// =============================================================================
// HEADER
// =============================================================================

func (m Model) renderHeader() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	title := m.theme.HeaderTitle.Render(m.assistantName)

	var badge string
	if !m.controller.Configured() {
		badge = " " + styles.RenderWarning("no API key")
	}
	if m.theme.GetLayoutMode() == styles.LayoutNarrow {
		return m.theme.Header.Width(width).Render(truncateStyled(title+badge, width-2))
	}

	parts := []string{}
	if modelID := m.controller.Model(); modelID != "" {
		parts = append(parts, modelID)
	}
	parts = append(parts, "as "+m.controller.User().Label())
	subtitle := m.theme.HeaderSubtitle.Render(" | " + strings.Join(parts, " | "))

	content := truncateStyled(title+subtitle+badge, width-2)
	return m.theme.Header.Width(width).Render(content)
}

// =============================================================================
// MESSAGES
// =============================================================================

// renderMessages renders the whole transcript for the viewport.
func (m Model) renderMessages() string {
	msgs := m.controller.Messages()
	if len(msgs) == 0 {
		return m.renderEmptyState()
	}

	parts := make([]string, 0, len(msgs)+1)
	for _, msg := range msgs {
		parts = append(parts, m.renderMessage(msg))
	}
	if m.awaiting() {
		parts = append(parts, m.renderThinking())
	}
	return strings.Join(parts, "\n\n")
}

// renderMessage renders one message based on its role.
func (m Model) renderMessage(msg model.Message) string {
	switch {
	case msg.Synthetic:
		return m.renderNotice(msg)
	case msg.IsUser():
		return m.renderUserMessage(msg)
	default:
		return m.renderAssistantMessage(msg)
	}
}

func (m Model) renderLabel(style lipgloss.Style, label string, at time.Time) string {
	line := style.Render(label)
	if m.showTimestamps && !at.IsZero() {
		line += " " + m.theme.Timestamp.Render(formatTimestamp(at))
	}
	return line
}

func (m Model) renderUserMessage(msg model.Message) string {
	width := m.contentWidth()
	label := m.renderLabel(m.theme.UserLabel, m.controller.User().Label(), msg.CreatedAt)

	// Border and padding take four columns.
	bodyWidth := min(lipgloss.Width(msg.Content), width-4)
	body := m.theme.UserBubble.Width(bodyWidth + 2).Render(msg.Content)
	return label + "\n" + body
}

func (m Model) renderAssistantMessage(msg model.Message) string {
	label := m.renderLabel(m.theme.AssistantLabel, m.assistantName, msg.CreatedAt)
	// Border and padding take four columns.
	width := m.contentWidth()
	body := m.renderer.RenderWidth(msg.Content, width-4)
	return label + "\n" + m.theme.AssistantBubble.Width(width-2).Render(body)
}

func (m Model) renderNotice(msg model.Message) string {
	label := m.renderLabel(m.theme.NoticeLabel, styles.StatusIndicators.Warning+" "+m.assistantName, msg.CreatedAt)
	body := m.theme.NoticeBubble.Width(m.contentWidth() - 2).Render(msg.Content)
	return label + "\n" + body
}

func (m Model) renderThinking() string {
	return m.spinner.View() + " " + m.theme.ThinkingText.Render(m.assistantName+" is thinking")
}

func (m Model) renderEmptyState() string {
	lines := []string{
		m.theme.HeaderTitle.Render("Start a conversation with " + m.assistantName),
		"",
		m.theme.ShortcutDesc.Render("Type a message and press Enter. Press ? for help."),
	}
	if !m.controller.Configured() {
		lines = append(lines, "", styles.RenderWarning(conversation.NoticeUnavailable))
	}
	return lipgloss.NewStyle().
		Width(m.contentWidth()).
		Margin(1, 2).
		Render(strings.Join(lines, "\n"))
}

// =============================================================================
// INPUT AND STATUS
// =============================================================================

func (m Model) renderInput() string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	return m.theme.InputContainer.Width(width).Render(m.input.View())
}

func (m Model) renderStatusBar() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	var state string
	if m.awaiting() {
		state = m.theme.StatusBusy.Render(m.spinner.View() + " waiting")
	} else {
		state = m.theme.StatusIdle.Render("ready")
	}

	left := fmt.Sprintf("%s  %d messages", state, m.controller.Len())
	if m.statusMsg != "" {
		left += "  " + m.theme.StatusNotice.Render(m.statusMsg)
	}

	right := m.help.View(m.keyMap)
	gap := width - 2 - lipgloss.Width(left) - lipgloss.Width(right)
	line := left
	if gap >= 2 {
		line = left + strings.Repeat(" ", gap) + right
	}

	return m.theme.StatusBar.Width(width).Render(truncateStyled(line, width-2))
}

// =============================================================================
// HELP OVERLAY
// =============================================================================

func (m Model) renderHelpOverlay() string {
	body := renderHelp(m.theme, m.keyMap, m.width-6)
	footer := m.theme.ShortcutDesc.Render("Press ? or Esc to close")
	box := m.theme.HelpBox.
		Width(max(m.width-4, 20)).
		Render(body + "\n\n" + footer)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// formatTimestamp formats a message time:
//   - Today: just time (e.g., "15:04")
//   - This week: day and time (e.g., "Mon 15:04")
//   - Older: date and time (e.g., "Jan 2 15:04")
func formatTimestamp(t time.Time) string {
	now := time.Now()
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	if now.Sub(t) < 7*24*time.Hour {
		return t.Format("Mon 15:04")
	}
	return t.Format("Jan 2 15:04")
}

// truncateStyled cuts styled text to width columns, ignoring escape
// sequences when measuring.
func truncateStyled(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	return truncate.StringWithTail(s, uint(width), "…")
}
