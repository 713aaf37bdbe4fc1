package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/text/language"

	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/application/sales"
	"github.com/jhoicas/tienda-api/internal/application/usecase"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
	"github.com/jhoicas/tienda-api/internal/infrastructure/lock"
	"github.com/jhoicas/tienda-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/tienda-api/internal/infrastructure/pdf"
	"github.com/jhoicas/tienda-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/tienda-api/internal/interfaces/http"
	"github.com/jhoicas/tienda-api/pkg/config"
	pkgjwt "github.com/jhoicas/tienda-api/pkg/jwt"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

// storage agrupa los adaptadores de persistencia del backend elegido.
type storage struct {
	txRunner   inventory.TxRunner
	products   repository.ProductRepository
	movements  repository.StockMovementRepository
	sales      repository.SaleRepository
	categories repository.CategoryRepository
	close      func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("storage", cfg.Storage.Backend).
		Str("lock", cfg.Lock.Backend).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log.Named("storage"))
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	locker, closeLocker, err := openLocker(ctx, cfg, log.Named("lock"))
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar locks")
	}
	defer closeLocker()

	tokens, err := pkgjwt.NewVerifier(cfg.JWT.Secret, cfg.JWT.Issuer)
	if err != nil {
		log.Fatal().Err(err).Msg("configurar verificación JWT")
	}

	productUC := usecase.NewProductUseCase(store.txRunner, locker, store.products, store.categories, log.Named("products"))
	stockUC := inventory.NewStockUseCase(store.txRunner, locker, store.products, store.movements, log.Named("stock"))
	saleUC := sales.NewSaleUseCase(store.txRunner, locker, store.sales, nil, log.Named("sales"))
	receiptUC := sales.NewReceiptUseCase(saleUC, infrapdf.NewMarotoReceiptGenerator(language.Spanish), cfg.App.StoreName)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Named("http")))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.HTTP.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Tienda API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC: productUC,
		StockUC:   stockUC,
		SaleUC:    saleUC,
		ReceiptUC: receiptUC,
		Tokens:    tokens,
		Log:       log.Named("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.Storage.Backend == "memory" {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		s := memory.NewStore()
		return &storage{
			txRunner:   s,
			products:   s.Products(),
			movements:  s.Movements(),
			sales:      s.Sales(),
			categories: s.Categories(),
			close:      func() {},
		}, nil
	}

	if cfg.Storage.AutoMigrate {
		if err := postgres.Migrate(cfg.DB.ConnectionString(), cfg.Storage.MigrationsPath, log); err != nil {
			return nil, err
		}
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &storage{
		txRunner:   postgres.NewTxRunner(pool),
		products:   postgres.NewProductRepository(pool),
		movements:  postgres.NewStockMovementRepository(pool),
		sales:      postgres.NewSaleRepository(pool),
		categories: postgres.NewCategoryRepository(pool),
		close:      pool.Close,
	}, nil
}

func openLocker(ctx context.Context, cfg *config.Config, log *logger.Logger) (inventory.ProductLocker, func(), error) {
	if cfg.Lock.Backend != "redis" {
		return lock.NewKeyedMutex(), func() {}, nil
	}
	client, err := lock.NewRedisClient(ctx, cfg.Lock.RedisAddr, cfg.Lock.RedisPassword, cfg.Lock.RedisDB)
	if err != nil {
		return nil, nil, err
	}
	ttl := time.Duration(cfg.Lock.TTLSeconds) * time.Second
	closeFn := func() {
		if err := client.Close(); err != nil {
			log.Error().Err(err).Msg("cerrar cliente redis")
		}
	}
	return lock.NewRedisLocker(client, ttl, log), closeFn, nil
}
