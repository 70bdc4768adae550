// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for rigchat.
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (RIGCHAT_<SECTION>_<KEY>, then OPENAI_API_KEY)
//   - ~/.rigchat/config.toml (RIGCHAT_HOME moves the directory)
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//	client := cloud.NewClient(cfg.Cloud.APIKey).WithModel(cfg.Cloud.Model)
//
// The loaded Config is passed explicitly to the components that need it.
// There is no package-level instance.
package config
