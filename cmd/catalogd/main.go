package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lattice-commerce/lattice-catalog/internal/app"
	"github.com/lattice-commerce/lattice-catalog/internal/catalog/assignments"
	"github.com/lattice-commerce/lattice-catalog/internal/catalog/attributes"
	"github.com/lattice-commerce/lattice-catalog/internal/catalog/attrsets"
	"github.com/lattice-commerce/lattice-catalog/internal/catalog/categories"
	"github.com/lattice-commerce/lattice-catalog/internal/catalog/guard"
	"github.com/lattice-commerce/lattice-catalog/internal/catalog/products"
	"github.com/lattice-commerce/lattice-catalog/internal/catalog/tags"
	"github.com/lattice-commerce/lattice-catalog/internal/platform/cache"
	"github.com/lattice-commerce/lattice-catalog/internal/platform/db"
	"github.com/lattice-commerce/lattice-catalog/internal/shared"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, tag cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
	}()

	auditLogger := shared.NewAuditLogger(pool)

	categoryService := categories.NewService(categories.NewRepository(pool), auditLogger)
	attributeService := attributes.NewService(attributes.NewRepository(pool), auditLogger)
	setService := attrsets.NewService(attrsets.NewRepository(pool), auditLogger)
	productService := products.NewService(products.NewRepository(pool), auditLogger)
	assignmentService := assignments.NewService(assignments.NewRepository(pool), attributeService)
	tagService := tags.NewService(tags.NewRepository(pool), redisClient, cfg.TagCacheTTL)
	deleteGuard := guard.New(categoryService, attributeService, setService, assignmentService)

	router := app.NewRouter(app.RouterParams{
		Logger: logger,
		Config: cfg,
		Pool:   pool,
		Redis:  redisClient,
		Catalog: &app.CatalogServices{
			Categories:  categoryService,
			Attributes:  attributeService,
			Sets:        setService,
			Products:    productService,
			Assignments: assignmentService,
			Tags:        tagService,
			Guard:       deleteGuard,
		},
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}
