package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	cartstore "github.com/dwikikusuma/storefront/internal/cart/infra/localdb"
	cartgw "github.com/dwikikusuma/storefront/internal/cart/infra/rest"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	cataloggw "github.com/dwikikusuma/storefront/internal/catalog/infra/rest"
	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	"github.com/dwikikusuma/storefront/internal/checkout/infra/adapter"
	"github.com/dwikikusuma/storefront/internal/session"
	"github.com/dwikikusuma/storefront/internal/web"
	"github.com/dwikikusuma/storefront/pkg/config"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/dwikikusuma/storefront/pkg/shutdown"
	"github.com/dwikikusuma/storefront/pkg/sqlitekv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Service:   "storefront",
		Env:       cfg.AppEnv,
		Level:     cfg.LogLevel,
		AddSource: true,
	})

	root := context.Background()
	ctx, cancel := shutdown.WithSignals(root)
	defer cancel()

	kv, err := sqlitekv.Open(cfg.LocalStorePath)
	if err != nil {
		log.Error("open local store", slog.Any("err", err))
		os.Exit(1)
	}
	defer kv.Close()

	carts := cartapp.NewRegistry(
		cartgw.New(cfg.CartServiceURL, cfg.RemoteTimeout),
		cartstore.NewSnapshotStore(kv),
		log,
	)
	catalog := catalogapp.NewService(cataloggw.New(cfg.ProductServiceURL, cfg.RemoteTimeout))
	checkout := checkoutapp.NewService(
		adapter.NewCartControllerReader(carts),
		adapter.NewCatalogServiceReader(catalog),
		10,
	)

	srv := web.NewServer(
		log,
		session.NewVerifier(cfg.JWTSecret),
		session.NewIdentityStore(kv),
		carts,
		catalog,
		checkout,
	)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("http server starting", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", slog.Any("err", err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", slog.Any("err", err))
	}

	wg.Wait()
	log.Info("bye")
}
