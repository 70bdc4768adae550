// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the rigchat TUI.
//
// Colors are Lip Gloss AdaptiveColor values so the palette follows the
// terminal's light or dark background automatically. Theme bundles the
// styles the chat view needs and records the detected color profile.
//
// # Usage
//
//	theme := styles.NewTheme()
//	bubble := theme.UserBubble.Width(60).Render(text)
//
// Status helpers pair every color with an ASCII shape so state stays
// readable without color:
//
//	styles.RenderWarning("no API key") // "[!] no API key"
package styles
