// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jeranaias/rigchat/internal/conversation"
	"github.com/jeranaias/rigchat/internal/render"
	"github.com/jeranaias/rigchat/internal/ui/styles"
)

// inputCharLimit caps a single composed message.
const inputCharLimit = 4096

// =============================================================================
// CHAT MODEL
// =============================================================================

// Options configures a chat Model.
type Options struct {
	Controller *conversation.Controller
	Renderer   *render.Renderer
	Theme      *styles.Theme

	// AssistantName labels replies. Empty means "Assistant".
	AssistantName string

	ShowTimestamps bool

	// WrapWidth caps the transcript width. Zero follows the terminal.
	WrapWidth int

	// ShowHelp opens the help overlay on start.
	ShowHelp bool

	Logger *zap.Logger
}

// Model is the Bubble Tea model for the chat view.
type Model struct {
	controller *conversation.Controller
	renderer   *render.Renderer
	theme      *styles.Theme
	logger     *zap.Logger

	// Dimensions
	width  int
	height int

	// UI Components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	help     help.Model
	keyMap   KeyMap

	// Display settings
	assistantName  string
	showTimestamps bool
	wrapWidth      int

	// Overlay and status
	showHelp  bool
	statusMsg string
	quitting  bool
}

// New creates a new chat model.
func New(opts Options) Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme()
	}
	renderer := opts.Renderer
	if renderer == nil {
		renderer = render.New(theme)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	name := strings.TrimSpace(opts.AssistantName)
	if name == "" {
		name = "Assistant"
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a message..."
	ti.CharLimit = inputCharLimit
	ti.PromptStyle = theme.InputPrompt
	ti.PlaceholderStyle = theme.InputPlaceholder
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = styles.ThinkingSpinner
	sp.Style = theme.Spinner

	h := help.New()
	h.Styles.ShortKey = theme.ShortcutKey
	h.Styles.ShortDesc = theme.ShortcutDesc

	m := Model{
		controller:     opts.Controller,
		renderer:       renderer,
		theme:          theme,
		logger:         logger.Named("chat"),
		viewport:       viewport.New(80, 20),
		input:          ti,
		spinner:        sp,
		help:           h,
		keyMap:         DefaultKeyMap(),
		assistantName:  name,
		showTimestamps: opts.ShowTimestamps,
		wrapWidth:      opts.WrapWidth,
		showHelp:       opts.ShowHelp,
	}
	return m
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ExchangeDoneMsg:
		if !m.controller.Resolve(msg.Outcome) {
			m.logger.Debug("ignored outcome of a superseded request")
		}
		m.syncViewport()
		return m, nil

	case SettingsReloadedMsg:
		return m.applySettings(msg)

	case ClipboardResultMsg:
		if msg.Err != nil {
			m.logger.Warn("clipboard write failed", zap.Error(msg.Err))
			m.statusMsg = styles.StatusIndicators.Error + " Copy failed: " + msg.Err.Error()
		} else {
			m.statusMsg = styles.StatusIndicators.Success + " Copied " + msg.What
		}
		return m, nil

	case ExportDoneMsg:
		if msg.Err != nil {
			m.logger.Warn("export failed", zap.Error(msg.Err))
			m.statusMsg = styles.StatusIndicators.Error + " Export failed: " + msg.Err.Error()
		} else {
			m.logger.Info("transcript exported", zap.String("path", msg.Path))
			m.statusMsg = styles.StatusIndicators.Success + " Exported to " + msg.Path
		}
		return m, nil

	case spinner.TickMsg:
		if m.awaiting() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			m.viewport.SetContent(m.renderMessages())
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleResize recomputes the viewport size from the rendered chrome.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetWidth(m.width)
	m.help.Width = m.width

	// Prompt plus container padding.
	m.input.Width = max(m.width-len(m.input.Prompt)-3, 10)

	m.viewport.Width = max(m.width, 1)
	m.viewport.Height = max(m.height-m.chromeHeight(), 1)

	m.renderer.SetWidth(m.contentWidth())
	m.syncViewport()
	return m, nil
}

// chromeHeight is the number of rows used by everything but the viewport.
func (m Model) chromeHeight() int {
	return lipgloss.Height(m.renderHeader()) +
		lipgloss.Height(m.renderInput()) +
		lipgloss.Height(m.renderStatusBar())
}

// contentWidth is the width available to message bodies.
func (m Model) contentWidth() int {
	width := m.width - 4
	if m.wrapWidth > 0 && m.wrapWidth < width {
		width = m.wrapWidth
	}
	return max(width, 20)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		switch {
		case msg.String() == "ctrl+c":
			return m.quit()
		case key.Matches(msg, m.keyMap.Help), msg.String() == "esc", msg.String() == "q":
			m.showHelp = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m.quit()

	case msg.String() == "f1", msg.String() == "?" && m.input.Value() == "":
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keyMap.NewChat):
		return m.newConversation()

	case key.Matches(msg, m.keyMap.CopyReply):
		cmd := m.copyLastReply()
		return m, cmd

	case key.Matches(msg, m.keyMap.CopyCode):
		cmd := m.copyLastCodeBlock()
		return m, cmd

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.ViewDown()
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		return m.submit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit sends the composed text, or runs it as a command.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return m, nil
	}

	if isCommand(trimmed) {
		m.input.Reset()
		return m.runCommand(trimmed)
	}
	// "//text" sends "/text".
	trimmed = strings.TrimPrefix(trimmed, "/")

	if m.awaiting() {
		m.statusMsg = styles.StatusIndicators.Pending + " Waiting for the current reply"
		return m, nil
	}

	m.input.Reset()
	m.statusMsg = ""
	ex := m.controller.Send(trimmed)
	m.syncViewport()
	if ex == nil {
		return m, nil
	}
	return m, tea.Batch(runExchange(ex), m.spinner.Tick)
}

// runExchange performs the request off the update loop.
func runExchange(ex *conversation.Exchange) tea.Cmd {
	return func() tea.Msg {
		return ExchangeDoneMsg{Outcome: ex.Run(context.Background())}
	}
}

func (m Model) newConversation() (tea.Model, tea.Cmd) {
	m.controller.Reset()
	m.statusMsg = styles.StatusIndicators.Info + " New conversation"
	m.syncViewport()
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.controller.Close()
	m.quitting = true
	return m, tea.Quit
}

// applySettings applies the [ui] section of a reloaded config.
func (m Model) applySettings(msg SettingsReloadedMsg) (tea.Model, tea.Cmd) {
	if msg.Config == nil {
		return m, nil
	}
	ui := msg.Config.UI
	m.renderer.SetCodeTheme(ui.CodeTheme)
	m.showTimestamps = ui.ShowTimestamps
	m.wrapWidth = ui.WrapWidth
	if m.width > 0 {
		m.renderer.SetWidth(m.contentWidth())
	}
	m.statusMsg = styles.StatusIndicators.Info + " Settings reloaded"
	m.logger.Info("settings reloaded", zap.String("code_theme", ui.CodeTheme))
	m.syncViewport()
	return m, nil
}

// syncViewport re-renders the transcript and scrolls to the newest message.
func (m *Model) syncViewport() {
	m.viewport.SetContent(m.renderMessages())
	m.viewport.GotoBottom()
}

func (m Model) awaiting() bool {
	return m.controller.Status() == conversation.StatusAwaitingResponse
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Controller returns the conversation controller.
func (m Model) Controller() *conversation.Controller {
	return m.controller
}

// StatusMessage returns the transient status line text.
func (m Model) StatusMessage() string {
	return m.statusMsg
}

// HelpVisible reports whether the help overlay is open.
func (m Model) HelpVisible() bool {
	return m.showHelp
}

// InputValue returns the composer contents.
func (m Model) InputValue() string {
	return m.input.Value()
}

// SetInputValue replaces the composer contents.
func (m *Model) SetInputValue(s string) {
	m.input.SetValue(s)
}
