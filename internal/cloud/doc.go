// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud is the client for OpenAI-compatible chat completion APIs.
//
// # Key Types
//
//   - Client: HTTP client with retry, rate limiting and size limits
//   - ChatMessage: one {role, content} pair of the request payload
//   - ChatRequest: the non-streaming request body
//   - APIError: an error response from the service
//
// # Usage
//
//	client := cloud.NewClient(apiKey).
//	    WithBaseURL("https://api.openai.com/v1").
//	    WithModel("gpt-4o-mini")
//	text, err := client.Complete(ctx, []cloud.ChatMessage{
//	    cloud.NewSystemMessage("You are terse."),
//	    cloud.NewUserMessage("Hello"),
//	})
//
// # Security
//
// The API key is only ever placed in the Authorization header. It is never
// logged; APIKeyMasked returns a fingerprint for display.
package cloud
