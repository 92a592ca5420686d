package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/specialistvlad/embedcheck/internal/app"
	"github.com/specialistvlad/embedcheck/internal/cli"
)

// main is the entrypoint for the embedcheck application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()

	if err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintln(os.Stderr, exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitFailure)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW, errW io.Writer, args []string) error {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	embedcheck, err := app.NewApp(outW, errW, appConfig)
	if err != nil {
		return &cli.ExitError{Code: cli.ExitUsage, Message: err.Error()}
	}

	if appConfig.Watch {
		err := embedcheck.Watch(ctx, app.DefaultDebounce, nil)
		if app.IsInterrupt(err) {
			return &cli.ExitError{Code: cli.ExitInterrupt, Message: "interrupted"}
		}
		return err
	}

	result, err := embedcheck.Run(ctx)
	if err != nil {
		if app.IsInterrupt(err) {
			return &cli.ExitError{Code: cli.ExitInterrupt, Message: "interrupted"}
		}
		return &cli.ExitError{Code: cli.ExitFailure, Message: err.Error()}
	}
	if result.ShouldFail() {
		return &cli.ExitError{Code: cli.ExitFailure}
	}
	return nil
}
