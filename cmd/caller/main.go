// Package main provides the appcaller CLI. It lists, documents and runs the
// external tools described in the tool catalogs.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"appcaller/pkg/caller"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := NewCLI().CreateRootCommand().ExecuteContext(ctx)
	stop()

	if err != nil {
		var exitErr *caller.ExitError
		if errors.As(err, &exitErr) {
			// The wrapped program already wrote its own stderr
			os.Exit(exitErr.ExitCode)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
