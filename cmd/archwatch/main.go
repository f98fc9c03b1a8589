package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/arthur-debert/archwatch/internal/cli"
	"github.com/arthur-debert/archwatch/pkg/style"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cli.NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Print the error in red
		fmt.Fprintln(os.Stderr, style.NewRenderer(os.Stderr).RenderError(err))
		stop()
		os.Exit(1)
	}
}
