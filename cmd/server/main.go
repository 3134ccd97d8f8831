package main

import (
	"context"

	"github.com/nazsats/blood-report-analyzer-sub000/app"
	"github.com/nazsats/blood-report-analyzer-sub000/app/config"

	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	server, err := app.NewServerFromConfig(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to initialize server: %v", err)
	}

	router := server.Router()
	if err := router.Run("0.0.0.0:" + cfg.Port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
