package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/buildq/internal/app"
	"github.com/vk/buildq/internal/cli"
	"github.com/vk/buildq/internal/hcl"
)

// main is the entrypoint for the buildq driver.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	code, err := run(os.Stdout, os.Args[1:])
	if err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if code < 0 {
		// The signalled sentinel has no direct process-exit equivalent;
		// report it as the low byte of -2.
		code = 254
	}
	os.Exit(code)
}

// run encapsulates the main application logic for easier testing and error
// handling. It returns the build's exit status.
func run(outW io.Writer, args []string) (int, error) {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return 0, err
	}
	if shouldExit {
		return 0, nil
	}

	loader := hcl.NewLoader()
	buildApp, err := app.NewApp(outW, os.Stderr, appConfig, loader)
	if err != nil {
		return 0, err
	}

	return buildApp.Run(context.Background(), appConfig)
}
