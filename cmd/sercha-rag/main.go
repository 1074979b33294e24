// Command sercha-rag ingests documents into a vector store and answers
// questions about them.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/cli"
	"github.com/custodia-labs/sercha-rag/internal/app"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
)

// version is overridden with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)

	cli.SetSettingsBuilder(func(configDir string) (driving.SettingsService, error) {
		_, store, _, err := app.LoadSettings(app.Options{Dir: configDir})
		if err != nil {
			return nil, err
		}
		return services.NewSettingsService(store), nil
	})

	cli.SetServicesBuilder(func(ctx context.Context, configDir string) (*cli.Services, error) {
		a, err := app.New(ctx, app.Options{Dir: configDir})
		if err != nil {
			return nil, err
		}
		return &cli.Services{
			Ingestion: a.Ingestion,
			Query:     a.Query,
			Settings:  a.Settings,
			Checks:    a.Checks,
			Close:     a.Close,
		}, nil
	})

	if err := cli.Execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
