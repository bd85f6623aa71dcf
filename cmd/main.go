package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fitpilot/fitpilot-backend/internal/app"
	"github.com/fitpilot/fitpilot-backend/internal/platform/envutil"
	"github.com/fitpilot/fitpilot-backend/internal/platform/logger"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Printf("Failed to read .env: %v\n", err)
	}

	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, log)
	if err != nil {
		log.Error("Failed to init app", "error", err)
		log.Sync()
		os.Exit(1)
	}

	runErr := a.Run(ctx)

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.Close(closeCtx)

	if runErr != nil {
		log.Error("Server stopped with error", "error", runErr)
		os.Exit(1)
	}
}
