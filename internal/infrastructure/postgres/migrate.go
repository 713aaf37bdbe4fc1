package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/jhoicas/tienda-api/pkg/logger"
)

// Migrate aplica las migraciones pendientes del directorio path.
func Migrate(databaseURL, path string, log *logger.Logger) error {
	m, err := migrate.New("file://"+path, databaseURL)
	if err != nil {
		return fmt.Errorf("migraciones: inicializar: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info().Msg("migraciones: sin cambios")
			return nil
		}
		return fmt.Errorf("migraciones: up: %w", err)
	}
	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("migraciones: versión: %w", err)
	}
	log.Info().Uint("version", version).Bool("dirty", dirty).Msg("migraciones aplicadas")
	return nil
}

// Rollback revierte la última migración aplicada.
func Rollback(databaseURL, path string, log *logger.Logger) error {
	m, err := migrate.New("file://"+path, databaseURL)
	if err != nil {
		return fmt.Errorf("migraciones: inicializar: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migraciones: down: %w", err)
	}
	log.Info().Msg("migración revertida")
	return nil
}
