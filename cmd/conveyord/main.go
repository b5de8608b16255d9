package main

import (
	"context"
	"log"
	"os"

	"conveyor/internal/config"
	"conveyor/internal/daemonrun"
)

func main() {
	opts, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	cfg, _, _, err := config.Load(opts.configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{
		LogLevel:    opts.logLevel,
		Development: opts.development,
	}); err != nil {
		log.Fatalf("conveyord: %v", err)
	}
}
