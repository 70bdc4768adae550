// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the rigchat command tree.
//
// # Commands
//
//   - rigchat: full-screen chat (Bubble Tea)
//   - rigchat ask [prompt...]: one question, reply printed to stdout
//   - rigchat repl: line-mode chat with input history
//   - rigchat config path|show|init: inspect or create the config file
//   - rigchat version: build information
//
// Global flags --config, --model, --debug and --log-stderr apply to every
// command. Logs go to ~/.rigchat/rigchat.log unless --log-stderr is set,
// since the terminal belongs to the UI.
//
// # Usage
//
//	if err := cli.Execute(ctx); err != nil {
//	    os.Exit(1)
//	}
package cli
