package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/todo-manager/internal/cli"
)

func main() {
	// Ctrl-C cancels the command context; stores are closed on the way out.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, cli.NewRootCommand())
	stop()
	os.Exit(code)
}
