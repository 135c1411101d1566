// Package main implements the entry point for the memberguard server, which
// verifies YouTube channel memberships for Discord communities and serves
// the membership dashboard API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"

	"github.com/phrazzld/memberguard/internal/config"
	"github.com/phrazzld/memberguard/internal/platform/logger"
	"github.com/phrazzld/memberguard/internal/platform/postgres"
)

func main() {
	migrateOnly := flag.Bool("migrate", false, "apply database migrations and exit")
	flag.Parse()

	if err := run(context.Background(), *migrateOnly); err != nil {
		log.Fatalf("memberguard: %v", err)
	}
}

// run loads configuration, prepares the database and either exits after
// migrating or runs the application until it is shut down.
func run(ctx context.Context, migrateOnly bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"reconcile_enabled", cfg.Reconcile.Enabled)
	slog.Debug("Discord configuration", "app_id", cfg.Discord.AppID, "guild_id", cfg.Discord.GuildID)

	db, err := setupAppDatabase(ctx, cfg, l)
	if err != nil {
		return err
	}

	if err := postgres.Migrate(ctx, db, l); err != nil {
		_ = db.Close()
		return err
	}
	if migrateOnly {
		return db.Close()
	}

	app, err := newApplication(ctx, cfg, l, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
