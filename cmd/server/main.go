package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"deadlock/server/internal/app"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "optional YAML config overriding the built-in defaults")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, app.Options{ConfigPath: configPath}); err != nil {
		log.Fatalf("%v", err)
	}
}
