package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"labattendance/internal/cli"
	"labattendance/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cmd := cli.NewRootCommand(config.Load())
	if err := cmd.ExecuteContext(ctx); err != nil {
		var exitErr *cli.ExitError
		// Rejections were already printed by the command.
		if !errors.As(err, &exitErr) || exitErr.Code != cli.ExitFailure {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		cancel()
		os.Exit(cli.GetExitCode(err))
	}
}
