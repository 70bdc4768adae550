// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation owns the state of a single chat thread.
//
// A Controller holds the ordered message history and a two-state machine
// (Idle, AwaitingResponse). Sending is split in three steps so the caller
// never blocks while a reply is pending:
//
//	ex := ctrl.Send("Hi")        // optimistic append, now AwaitingResponse
//	if ex != nil {
//	    out := ex.Run(ctx)       // network call, touches no state
//	    ctrl.Resolve(out)        // append reply or failure notice, Idle again
//	}
//
// In the TUI, Run executes inside a tea.Cmd and Resolve runs in Update.
// Synchronous callers use SendAndWait.
//
// Failures never reach the caller. A missing API key or an upstream error
// becomes an assistant notice in the history and the thread stays usable.
// Reset bumps a generation counter, so an Outcome from before the reset is
// ignored when it finally arrives.
package conversation
