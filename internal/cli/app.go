// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/jeranaias/rigchat/internal/cloud"
	"github.com/jeranaias/rigchat/internal/config"
	"github.com/jeranaias/rigchat/internal/conversation"
	"github.com/jeranaias/rigchat/internal/logging"
)

// app holds what every chat command needs: the resolved config, a logger
// and the completion client built from them.
type app struct {
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
	closeLog   func() error
	client     *cloud.Client
}

// newApp loads the configuration and wires the logger and client. Logs go
// to stderr when --log-stderr is set, otherwise to the configured log file.
func newApp(opts *globalOptions, stderr io.Writer) (*app, error) {
	path := opts.configPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if m := strings.TrimSpace(opts.model); m != "" {
		cfg.Cloud.Model = m
	}

	logOpts := logging.Options{
		Level: cfg.Logging.Level,
		Debug: opts.debug,
	}
	if opts.logStderr {
		logOpts.Writer = stderr
		logOpts.Color = isTerminal(stderr)
	} else {
		file, err := cfg.LogFile()
		if err != nil {
			return nil, err
		}
		logOpts.File = file
	}
	logger, closeLog, err := logging.New(logOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to start logging: %w", err)
	}

	client := cloud.NewClient(cfg.Cloud.APIKey).
		WithBaseURL(cfg.Cloud.BaseURL).
		WithModel(cfg.Cloud.Model).
		WithTimeout(cfg.Timeout()).
		WithMaxRetries(cfg.Cloud.MaxRetries).
		WithSampling(cfg.Cloud.Temperature, cfg.Cloud.TopP, cfg.Cloud.MaxTokens).
		WithRateLimit(cfg.Cloud.RequestsPerMinute).
		WithLogger(logger)

	logger.Info("rigchat starting",
		zap.String("version", Version),
		zap.String("config", path),
		zap.String("model", cfg.Cloud.Model),
		zap.String("base_url", cfg.Cloud.BaseURL),
		zap.String("api_key", client.APIKeyMasked()))

	return &app{
		configPath: path,
		cfg:        cfg,
		logger:     logger,
		closeLog:   closeLog,
		client:     client,
	}, nil
}

// newController starts an empty conversation against the app's client.
// systemPrompt overrides the configured one when non-empty.
func (a *app) newController(systemPrompt string) *conversation.Controller {
	if systemPrompt == "" {
		systemPrompt = a.cfg.Assistant.SystemPrompt
	}
	return conversation.New(a.client, conversation.Options{
		Configured:   a.cfg.HasCredential(),
		SystemPrompt: systemPrompt,
		User:         a.cfg.CurrentUser(),
		Model:        a.cfg.Cloud.Model,
		Logger:       a.logger,
	})
}

// Close flushes and closes the log.
func (a *app) Close() error {
	return a.closeLog()
}
