package main

import (
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/sharondevs/echo-chat/internal/client"
	"github.com/sharondevs/echo-chat/internal/config"
	chatservice "github.com/sharondevs/echo-chat/internal/service/chat"
	"github.com/sharondevs/echo-chat/internal/ui"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	httpClient := client.New(cfg.Client.BaseURL, cfg.Client.Timeout)

	// The controller pushes snapshots into this channel; the UI drains it
	// through its event loop. Coalescing on overflow keeps the controller
	// from ever blocking on a slow terminal.
	states := make(chan chatservice.State, 64)
	notify := func(state chatservice.State) {
		for {
			select {
			case states <- state:
				return
			default:
				select {
				case <-states:
				default:
				}
			}
		}
	}

	svc := chatservice.NewService(chatservice.NewTransport(httpClient), notify)
	svc.SetCommitInterval(cfg.Client.CommitInterval)

	program := tea.NewProgram(ui.NewModel(svc, states), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		log.Printf("error running program: %v", err)
		os.Exit(1)
	}
}
