package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/andy/kihopunch/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// The first interrupt cancels ctx; restore the default so a second one
	// kills the process even if a command ignores ctx.
	go func() {
		<-ctx.Done()
		stop()
	}()

	if err := cli.Execute(ctx, os.Stdin, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
