package main

import (
	"context"
	"fmt"

	"github.com/narahq/nara-chat/internal/config"
	httphandler "github.com/narahq/nara-chat/internal/handler/http"
	"github.com/narahq/nara-chat/internal/logger"
	"github.com/narahq/nara-chat/internal/server"
	"github.com/narahq/nara-chat/internal/service"
	"github.com/narahq/nara-chat/internal/store"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("nara-server")
	cfg, err := config.GetServerConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	db, err := store.Connect(context.Background(), cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to database")
	}

	if err = db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("error applying migrations")
	}

	repos := store.NewRepositories(db, log)
	services := service.NewServices(cfg.App, repos, log)
	handler := httphandler.NewHandler(services, cfg.Auth, log)

	srv, err := server.NewServer(handler.Init(), cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
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
