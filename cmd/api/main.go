package main

import (
	"context"
	"log"
	"os"

	"github.com/expertraah/marketplace-api/internal/app"
	"github.com/expertraah/marketplace-api/internal/config"
)

func main() {
	cfg := config.MustLoad()

	ctx := context.Background()

	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(ctx); err != nil {
		log.Printf("application error: %v", err)
		os.Exit(1)
	}
}
