// Command docgap finds documentation gaps in release notes.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/docgap/internal/adapters/driving/cli"
	"github.com/custodia-labs/docgap/internal/app"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetBootstrap(func(ctx context.Context) (*cli.Services, error) {
		a, err := app.New(ctx, app.Options{WatchStopWords: true})
		if err != nil {
			return nil, err
		}
		return services(a), nil
	})

	if err := cli.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// services exposes the assembled application to the commands.
func services(a *app.App) *cli.Services {
	s := &cli.Services{
		Analysis: a.Analysis,
		Articles: a.Articles,
		Drafting: a.Drafting,
		Export:   a.Export,
		Settings: a.Config,
		Notes:    a,
		Server:   a.Settings.Server,
		Close:    a.Close,
	}
	if a.Cache != nil {
		s.Cache = a.Cache
	}
	return s
}
