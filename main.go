package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"s3util/cmd"
)

func main() {
	// A first SIGINT/SIGTERM cancels the run so partial results still get
	// reported; a second one kills the process via the default handler.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cmd.Execute(ctx)
	stop()
	os.Exit(code)
}
