// Package main runs the storefront operator CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/louisbranch/storefront/internal/cmd/storefrontctl"
	entrypoint "github.com/louisbranch/storefront/internal/platform/cmd"
	"github.com/louisbranch/storefront/internal/platform/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceCtl, func(ctx context.Context) error {
		root, err := storefrontctl.NewRootCommand(nil)
		if err != nil {
			return err
		}
		return root.ExecuteContext(ctx)
	})
	if err != nil {
		stop()
		config.Exitf("storefrontctl: %v", err)
	}
}
