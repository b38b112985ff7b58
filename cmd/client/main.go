package main

import (
	"fmt"

	"github.com/narahq/nara-chat/internal/adapter"
	"github.com/narahq/nara-chat/internal/client"
	"github.com/narahq/nara-chat/internal/config"
	"github.com/narahq/nara-chat/internal/identity"
	"github.com/narahq/nara-chat/internal/logger"
	"github.com/narahq/nara-chat/internal/service"
	"github.com/narahq/nara-chat/internal/session"
	"github.com/narahq/nara-chat/internal/state"
	"github.com/narahq/nara-chat/internal/tui"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewClientLogger("nara-client")
	cfg, err := config.GetClientConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	provider, err := identity.NewHTTPProvider(cfg.Identity, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create identity provider")
	}

	sessions := session.NewManager(provider, log)

	backend, err := adapter.NewHTTPBackendAdapter(cfg.Adapter, sessions, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create backend adapter")
	}

	st := state.NewStore(log)
	services := service.NewClientServices(provider, backend, st, log)

	ui, err := tui.New(services, st, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating ui")
	}

	app, err := client.NewApp(services, st, ui, cfg.Workers, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init client app error")
	}

	if err = app.Run(); err != nil {
		log.Fatal().Err(err).Msg("client run error")
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
