// seed_catalog importa el catálogo inicial de un tenant desde un CSV.
// Cada fila pasa por el caso de uso de productos: el stock inicial queda en el libro como ajuste.
//
// Uso: go run ./cmd/seed_catalog -tenant <id> [-latin1] catalogo.csv
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/tienda-api/internal/application/usecase"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/infrastructure/lock"
	"github.com/jhoicas/tienda-api/internal/infrastructure/postgres"
	"github.com/jhoicas/tienda-api/pkg/config"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

const seedUser = "seed_catalog"

func main() {
	tenantID := flag.String("tenant", "", "tenant dueño de los productos")
	latin1 := flag.Bool("latin1", false, "el CSV está en ISO-8859-1")
	flag.Parse()
	if *tenantID == "" || flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "uso: seed_catalog -tenant <id> [-latin1] catalogo.csv")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir CSV")
	}
	defer f.Close()

	items, err := readCatalog(f, *latin1)
	if err != nil {
		log.Fatal().Err(err).Msg("leer CSV")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	uc := usecase.NewProductUseCase(
		postgres.NewTxRunner(pool),
		lock.NewKeyedMutex(),
		postgres.NewProductRepository(pool),
		postgres.NewCategoryRepository(pool),
		log,
	)

	var created, skipped int
	for _, in := range items {
		_, err := uc.Create(ctx, *tenantID, seedUser, in)
		switch {
		case errors.Is(err, domain.ErrDuplicate):
			skipped++
			log.Warn().Str("sku", in.SKU).Msg("producto ya existe, se omite")
		case err != nil:
			log.Fatal().Err(err).Str("sku", in.SKU).Msg("crear producto")
		default:
			created++
		}
	}
	log.Info().Int("creados", created).Int("omitidos", skipped).Msg("catálogo importado")
}
