// File: cmd/counselor/main.go
package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/iyunix/go-counselor/internal/app"
	"github.com/iyunix/go-counselor/internal/config"
	"github.com/iyunix/go-counselor/internal/services"
	"github.com/iyunix/go-counselor/internal/tui"
)

func main() {
	cfg := config.Load()

	// log lines would corrupt the screen; COUNSELOR_LOG_FILE sends them to a file
	var logOut io.Writer = io.Discard
	if path := os.Getenv("COUNSELOR_LOG_FILE"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	logger := services.NewLoggerTo("go_counselor_tui", logOut)

	application, err := app.New(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	m := tui.NewModel(application.Store, application.Orchestrator)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		application.Close()
		os.Exit(1)
	}
}
