// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"context"
	"strings"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/rigchat/internal/cloud"
	"github.com/jeranaias/rigchat/internal/model"
)

// =============================================================================
// STATUS
// =============================================================================

// Status is the request state of a conversation.
type Status int

const (
	// StatusIdle accepts new messages.
	StatusIdle Status = iota

	// StatusAwaitingResponse has one request in flight; sends are ignored.
	StatusAwaitingResponse
)

// String returns a human-readable name for the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusAwaitingResponse:
		return "awaiting response"
	default:
		return "unknown"
	}
}

// Notices shown in place of a reply.
const (
	NoticeUnavailable = "The assistant is unavailable right now: no API key is configured. " +
		"Set RIGCHAT_CLOUD_API_KEY or add api_key to the [cloud] section of the config file."
	NoticeFailure = "Sorry, something went wrong while getting a response. Please try again."
)

// DefaultSystemPrompt is the preamble sent when none is configured.
const DefaultSystemPrompt = "You are a helpful assistant in a terminal chat. " +
	"Keep answers concise. Use fenced code blocks with a language tag for code, " +
	"single backticks for short identifiers and commands, and **bold** sparingly for emphasis. " +
	"Do not use headings, tables or links."

// =============================================================================
// CONTROLLER
// =============================================================================

// Completer sends a chat payload and returns the reply text.
// *cloud.Client implements it.
type Completer interface {
	Complete(ctx context.Context, messages []cloud.ChatMessage) (string, error)
}

// Options are the controller's injected settings.
type Options struct {
	// Configured reports whether the completion credential is present.
	// When false, sends are answered locally with NoticeUnavailable.
	Configured bool

	// SystemPrompt is the preamble sent ahead of the history.
	// Empty means DefaultSystemPrompt.
	SystemPrompt string

	// User describes the person at the keyboard, for display only.
	User model.User

	// Model is the model identifier, for display only.
	Model string

	Logger *zap.Logger
}

// Controller manages one conversation. All methods are safe for
// concurrent use.
type Controller struct {
	mu sync.Mutex

	client Completer
	opts   Options
	logger *zap.Logger

	messages   []model.Message
	status     Status
	generation uint64
	pending    *Exchange
}

// New creates an idle, empty conversation.
func New(client Completer, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = DefaultSystemPrompt
	}
	return &Controller{
		client: client,
		opts:   opts,
		logger: logger.Named("conversation"),
	}
}

// Send appends text as a user message and starts a request for the reply.
//
// It does nothing and returns nil when text is blank or a reply is still
// pending. When no credential is configured the service-unavailable notice
// is appended at once and nil is returned. Otherwise the returned Exchange
// must be run and its Outcome passed to Resolve.
func (c *Controller) Send(text string) *Exchange {
	ex, _ := c.send(text)
	return ex
}

func (c *Controller) send(text string) (*Exchange, bool) {
	text = strings.TrimSpace(norm.NFC.String(text))
	if text == "" {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != StatusIdle {
		c.logger.Debug("send ignored while awaiting response")
		return nil, false
	}

	c.messages = append(c.messages, model.NewUserMessage(text))
	c.status = StatusAwaitingResponse
	c.generation++

	if !c.opts.Configured {
		c.logger.Warn("completion service not configured, answering with notice")
		c.messages = append(c.messages, model.NewNotice(NoticeUnavailable))
		c.status = StatusIdle
		return nil, true
	}

	ex := &Exchange{
		generation: c.generation,
		payload:    c.payloadLocked(),
		client:     c.client,
	}
	c.pending = ex

	c.logger.Debug("request started",
		zap.Uint64("generation", ex.generation),
		zap.Int("payload_messages", len(ex.payload)))
	return ex, true
}

// payloadLocked builds the request payload: the system preamble followed
// by every message in order. The caller must hold c.mu.
func (c *Controller) payloadLocked() []cloud.ChatMessage {
	history := lo.Map(c.messages, func(m model.Message, _ int) cloud.ChatMessage {
		return chatMessage(m)
	})
	return append([]cloud.ChatMessage{cloud.NewSystemMessage(c.opts.SystemPrompt)}, history...)
}

// chatMessage converts a stored message to its wire form. Notices go out
// as assistant turns.
func chatMessage(m model.Message) cloud.ChatMessage {
	switch m.Role {
	case model.RoleUser:
		return cloud.NewUserMessage(m.Content)
	case model.RoleSystem:
		return cloud.NewSystemMessage(m.Content)
	default:
		return cloud.NewAssistantMessage(m.Content)
	}
}

// Resolve applies the outcome of an exchange. It returns false, changing
// nothing, when the outcome belongs to a request that was superseded by
// Reset.
func (c *Controller) Resolve(out Outcome) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if out.generation != c.generation || c.status != StatusAwaitingResponse {
		c.logger.Debug("discarding stale outcome",
			zap.Uint64("outcome_generation", out.generation),
			zap.Uint64("generation", c.generation))
		return false
	}

	if out.Err != nil {
		c.logger.Error("completion request failed",
			zap.Uint64("generation", out.generation),
			zap.Error(out.Err))
		c.messages = append(c.messages, model.NewNotice(NoticeFailure))
	} else {
		c.messages = append(c.messages, model.NewAssistantMessage(out.Reply))
	}

	c.pending = nil
	c.status = StatusIdle
	return true
}

// SendAndWait runs Send, the request and Resolve in one blocking call. It
// reports whether text was accepted.
func (c *Controller) SendAndWait(ctx context.Context, text string) bool {
	ex, accepted := c.send(text)
	if ex != nil {
		c.Resolve(ex.Run(ctx))
	}
	return accepted
}

// Reset empties the conversation and returns it to Idle from any state.
// A request in flight is cancelled and its outcome will be ignored.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.abortPendingLocked()
	c.messages = nil
	c.status = StatusIdle
	c.generation++
	c.logger.Debug("conversation reset", zap.Uint64("generation", c.generation))
}

// Close cancels a request in flight without touching the history. The
// cancelled request's outcome is ignored by Resolve.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == nil {
		return
	}
	c.abortPendingLocked()
	c.status = StatusIdle
	c.generation++
	c.logger.Debug("pending request closed", zap.Uint64("generation", c.generation))
}

func (c *Controller) abortPendingLocked() {
	if c.pending != nil {
		c.pending.abort()
		c.pending = nil
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Messages returns a copy of the history in order.
func (c *Controller) Messages() []model.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// Status returns the current state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// LastReply returns the most recent assistant message.
func (c *Controller) LastReply() (model.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg, _, ok := lo.FindLastIndexOf(c.messages, func(m model.Message) bool {
		return m.IsAssistant()
	})
	return msg, ok
}

// User returns the injected user descriptor.
func (c *Controller) User() model.User {
	return c.opts.User
}

// Model returns the configured model identifier.
func (c *Controller) Model() string {
	return c.opts.Model
}

// Configured reports whether requests will be sent to the service.
func (c *Controller) Configured() bool {
	return c.opts.Configured
}
