// Package main is the entry point for the notemaker API server
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/james-see/notemaker/pkg/api"
	"github.com/james-see/notemaker/pkg/config"
	"github.com/james-see/notemaker/pkg/engine"
	"github.com/james-see/notemaker/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	defaultPort, err := strconv.Atoi(cfg.Port)
	if err != nil {
		defaultPort = 8080
	}
	port := flag.Int("port", defaultPort, "Server port")
	flag.Parse()

	logger := logging.New(cfg.LogLevel, os.Stderr)
	if _, _, err := cfg.DefaultKey(); err != nil {
		logger.Error("invalid default key", "root", cfg.Root, "scale", cfg.Scale, "error", err)
		os.Exit(1)
	}

	logger.Info("starting notemaker API server",
		"port", *port,
		"environment", cfg.Environment,
		"swagger", fmt.Sprintf("http://localhost:%d/swagger/index.html", *port),
	)

	store := engine.NewStore(cfg.Seed, cfg.Tempo, logger)
	if err := api.StartServer(*port, store, cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
