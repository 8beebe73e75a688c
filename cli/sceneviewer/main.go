// Package main is the sceneviewer command.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.viam.com/sceneviewer/cli"
	"go.viam.com/sceneviewer/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	app := cli.NewApp(os.Stdout, os.Stderr)
	err := app.RunContext(ctx, os.Args)
	stop()
	if err != nil {
		logging.Global().Fatal(err)
	}
}
