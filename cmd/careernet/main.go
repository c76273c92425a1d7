package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/careernet/internal/api"
	"github.com/nhle/careernet/internal/app"
	"github.com/nhle/careernet/internal/credential"
	"github.com/nhle/careernet/internal/feed"
	"github.com/nhle/careernet/internal/mailalert"
	"github.com/nhle/careernet/internal/model"
	"github.com/nhle/careernet/internal/network"
	"github.com/nhle/careernet/internal/store"
	appsync "github.com/nhle/careernet/internal/sync"
)

func main() {
	// Bubble Tea owns stdout; route log output to a file instead.
	logFile, err := tea.LogToFile(defaultLogPath(), "careernet")
	if err == nil {
		defer logFile.Close()
	}

	cfg, err := model.LoadConfig(model.DefaultConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	token := os.Getenv("CAREERNET_TOKEN")
	if token == "" {
		token, err = credential.Get(credential.TokenKey)
		if err != nil {
			// First run; the setup view collects the token.
			log.Printf("no stored session token: %v", err)
		}
	}

	client := api.NewClient(cfg.APIBaseURL, token)
	connections := api.NewConnectionsClient(client)
	notifications := api.NewNotificationsClient(client)

	feedStore := feed.NewStore(notifications)
	coordinator := network.NewCoordinator(connections, notifications, feedStore)
	tracker := network.NewRequestTracker()

	leadStore, err := store.NewSQLiteStore(defaultDBPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open lead database: %v\n", err)
		os.Exit(1)
	}
	defer leadStore.Close()

	// Declared as the interface so a missing mail setup stays a true
	// nil inside the refresher.
	var ingestor appsync.AlertIngestor
	if cfg.MailAlert.Enabled && cfg.MailAlert.IMAPHost != "" {
		mailPassword, err := credential.Get(credential.MailPasswordKey)
		if err != nil {
			log.Printf("mail alerts configured but no mailbox password stored: %v", err)
		} else {
			imapClient := mailalert.NewIMAPClient(
				cfg.MailAlert.IMAPHost,
				cfg.MailAlert.IMAPPort,
				cfg.MailAlert.Username,
				mailPassword,
				cfg.MailAlert.TLS,
			)
			ingestor = mailalert.NewIngestor(
				imapClient, leadStore, cfg.MailAlert.SenderFilter,
			)
		}
	}

	refresher := appsync.NewRefresher(feedStore, connections, ingestor)

	root := app.New(app.Deps{
		Config:        cfg,
		Client:        client,
		Connections:   connections,
		Notifications: notifications,
		Feed:          feedStore,
		Coordinator:   coordinator,
		Tracker:       tracker,
		Leads:         leadStore,
		Refresher:     refresher,
	})

	p := tea.NewProgram(root, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

// defaultDBPath returns the path of the local lead cache, creating its
// parent directory if needed.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "careernet.db"
	}
	dir := filepath.Join(home, ".local", "share", "careernet")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "careernet.db"
	}
	return filepath.Join(dir, "careernet.db")
}

func defaultLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "careernet.log"
	}
	dir := filepath.Join(home, ".local", "share", "careernet")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "careernet.log"
	}
	return filepath.Join(dir, "careernet.log")
}
