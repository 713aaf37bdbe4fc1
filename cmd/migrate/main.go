package main

import (
	"flag"

	"github.com/jhoicas/tienda-api/internal/infrastructure/postgres"
	"github.com/jhoicas/tienda-api/pkg/config"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

// Uso: go run ./cmd/migrate [-down]
func main() {
	down := flag.Bool("down", false, "revierte la última migración")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	dsn := cfg.DB.ConnectionString()
	if *down {
		err = postgres.Rollback(dsn, cfg.Storage.MigrationsPath, log)
	} else {
		err = postgres.Migrate(dsn, cfg.Storage.MigrationsPath, log)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}
}
