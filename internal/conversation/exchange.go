// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"context"
	"sync"

	"github.com/jeranaias/rigchat/internal/cloud"
)

// Exchange is one accepted send waiting for its reply. It carries a copy
// of the request payload, so running it never reads controller state.
type Exchange struct {
	generation uint64
	payload    []cloud.ChatMessage
	client     Completer

	mu         sync.Mutex
	cancelFunc context.CancelFunc
	aborted    bool
}

// Outcome is the result of running an Exchange.
type Outcome struct {
	generation uint64

	// Reply is the completion text when Err is nil.
	Reply string

	// Err is the upstream failure, if any.
	Err error
}

// Payload returns a copy of the messages that will be sent.
func (e *Exchange) Payload() []cloud.ChatMessage {
	out := make([]cloud.ChatMessage, len(e.payload))
	copy(out, e.payload)
	return out
}

// Run performs the completion request. It blocks until the service
// answers, ctx is done, or the owning conversation is reset.
func (e *Exchange) Run(ctx context.Context) Outcome {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if !e.setCancelFunc(cancel) {
		return Outcome{generation: e.generation, Err: context.Canceled}
	}
	defer e.setCancelFunc(nil)

	reply, err := e.client.Complete(ctx, e.payload)
	return Outcome{generation: e.generation, Reply: reply, Err: err}
}

// setCancelFunc records the cancel function of the running request. It
// returns false when the exchange was aborted before it started.
func (e *Exchange) setCancelFunc(fn context.CancelFunc) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.aborted && fn != nil {
		return false
	}
	e.cancelFunc = fn
	return true
}

// abort cancels the request if it is running and prevents it from
// starting otherwise. Safe to call more than once.
func (e *Exchange) abort() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.aborted = true
	if e.cancelFunc != nil {
		e.cancelFunc()
		e.cancelFunc = nil
	}
}
