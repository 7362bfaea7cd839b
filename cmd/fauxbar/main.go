package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	fauxbarcmd "fauxbar/internal/cli/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := fauxbarcmd.ExitOK
	if err := fauxbarcmd.Execute(ctx); err != nil {
		code = fauxbarcmd.ExitCLIError
		var ee *fauxbarcmd.ExitError
		if errors.As(err, &ee) {
			code = ee.Code
		}
		if msg := err.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, "fauxbar:", msg)
		}
	}
	stop()
	os.Exit(code)
}
