// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/rigchat/internal/config"
	"github.com/jeranaias/rigchat/internal/render"
	"github.com/jeranaias/rigchat/internal/ui/chat"
	"github.com/jeranaias/rigchat/internal/ui/styles"
)

// runTUI opens the full-screen chat and blocks until it exits.
func runTUI(ctx context.Context, cmd *cobra.Command, opts *globalOptions) error {
	a, err := newApp(opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	controller := a.newController("")
	defer controller.Close()

	theme := styles.NewTheme()
	renderer := render.New(theme, render.WithCodeTheme(a.cfg.UI.CodeTheme))

	m := chat.New(chat.Options{
		Controller:     controller,
		Renderer:       renderer,
		Theme:          theme,
		AssistantName:  a.cfg.Assistant.Name,
		ShowTimestamps: a.cfg.UI.ShowTimestamps,
		WrapWidth:      a.cfg.UI.WrapWidth,
		ShowHelp:       a.cfg.UI.HelpOnStart,
		Logger:         a.logger,
	})

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	// Only the [ui] section is applied live; the client keeps the
	// credential it was started with.
	err = config.Watch(watchCtx, a.configPath, a.logger, func(cfg *config.Config) {
		p.Send(chat.SettingsReloadedMsg{Config: cfg})
	})
	if err != nil {
		a.logger.Warn("config hot reload disabled", zap.Error(err))
	}

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		a.logger.Error("chat UI exited with error", zap.Error(err))
		return fmt.Errorf("chat UI failed: %w", err)
	}
	a.logger.Info("chat UI closed", zap.Int("messages", controller.Len()))
	return nil
}
