package main

import (
	"log"
	"os"

	"cellvm/adapters/api"
	"cellvm/app"
	"cellvm/internal"
	"cellvm/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := internal.NewDefaultLogger()
	session, err := app.NewSession(cfg, logger)
	if err != nil {
		log.Fatalf("session: %v", err)
	}

	addr := os.Getenv("CELLVM_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	if err := api.NewServer(session, logger).ListenAndServe(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
