// Command lending applies the lending schema: items, borrows and penalties.
package main

import (
	"context"
	"embed"
	"log/slog"
	"os"

	"github.com/ghuser/lendingdesk/pkg/config"
	"github.com/ghuser/lendingdesk/pkg/logger"
	"github.com/ghuser/lendingdesk/pkg/migrator"
)

//go:embed *.sql
var MigrationsFS embed.FS

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg)

	applied, err := migrator.RunMigrations(context.Background(), cfg.DatabaseURL, MigrationsFS)
	if err != nil {
		log.Error("lending migrations failed", "error", err)
		os.Exit(1)
	}
	log.Info("lending migrations applied", "versions", applied)
}
