package main

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/garrettladley/medibook/internal/tui"
)

func runTUI(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	logOut, closeLog := openLogFile()
	defer closeLog()

	a, err := newApp(ctx, logOut)
	if err != nil {
		return err
	}
	defer a.close()

	model := tui.New(tui.Deps{
		Ctx:    ctx,
		Logger: a.logger,
		Inbox:  a.sync,
	})
	defer model.Close()

	stop := a.sync.Start(ctx)
	defer stop()

	p := tea.NewProgram(&model, tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
