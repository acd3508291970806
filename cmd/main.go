package main

import (
	"context"
	"fmt"
	"os"

	"github.com/yungbote/contacts-backend/internal/app"
	"github.com/yungbote/contacts-backend/internal/platform/envutil"
	"github.com/yungbote/contacts-backend/internal/platform/logger"
	"github.com/yungbote/contacts-backend/internal/platform/shutdown"
)

func main() {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	a, err := app.New(ctx, log)
	if err != nil {
		stop()
		log.Fatal("Startup failed", "error", err)
	}

	runErr := a.Run(ctx)
	a.Close()
	if runErr != nil {
		stop()
		log.Fatal("Server exited", "error", runErr)
	}
	log.Info("Server stopped")
	log.Sync()
}
