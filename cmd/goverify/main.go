// Command goverify serves the credential verification pipeline over HTTP.
//
// Configuration comes from GOVERIFY_* environment variables, optionally
// preloaded from a .env file in the working directory. See
// internal/config for the full list.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MrEthical07/goVerify/internal/app"
	"github.com/MrEthical07/goVerify/internal/config"
)

func main() {
	envFile := flag.String("env-file", ".env", "dotenv file loaded before the environment; missing files are ignored")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	log := app.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("startup")
	}
	if err := a.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("bye")
}
