package main

import (
	"context"

	config "github.com/webchecker/backend/internal/config/api"
	pg "github.com/webchecker/backend/internal/repository/postgres"
)

func initDB(ctx context.Context, cfg *config.Config) (*pg.DB, error) {
	return pg.NewDB(ctx, cfg.DB)
}
