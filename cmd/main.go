package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/scx/internal/shared"
	"github.com/desertthunder/scx/internal/ui"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	app := &cli.Command{
		Name:     "scx",
		Usage:    "Authenticate against SoundCloud and call its API",
		Version:  "0.1.0",
		Flags:    globalFlags(),
		Before:   runner.Init,
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, ui.ErrPromptCancelled) {
			logger.Warn("cancelled")
			os.Exit(0)
		}
		logger.Fatalf("application error: %v", err)
	}
}
