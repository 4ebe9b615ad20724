package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/contrib/bridges/otelslog"

	cfgpkg "github.com/Wolfnicos/DevizElite/internal/config"
	"github.com/Wolfnicos/DevizElite/internal/emitter"
	otelsetup "github.com/Wolfnicos/DevizElite/internal/otel"
)

const name = "github.com/Wolfnicos/DevizElite"

func main() {
	if err := run(); err != nil {
		log.Fatalln(err)
	}
}

func run() (err error) {
	// Instance logger bridged to OTel.
	logger := otelslog.NewLogger(name)
	slog.SetDefault(logger)

	// Set up OpenTelemetry.
	otelShutdown, err := otelsetup.Setup(context.Background())
	if err != nil {
		return err
	}

	defer func() { err = errors.Join(err, otelShutdown(context.Background())) }()

	// Config
	readFlags := cfgpkg.RegisterFlags()

	for _, skipped := range cfgpkg.ParseLenient(flag.CommandLine, os.Args[1:]) {
		slog.Warn("Ignoring argument", slog.String("reason", skipped.Error()))
	}

	cfg := readFlags()

	slog.Debug("Emitting catalog", slog.String("output", cfg.OutputPath))

	e, err := emitter.New(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return e.Run(ctx)
}
