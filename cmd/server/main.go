package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mebelmart-backend/internal/auth"
	"mebelmart-backend/internal/config"
	"mebelmart-backend/internal/filestore"
	"mebelmart-backend/internal/httpapi"
	"mebelmart-backend/internal/repository"
	"mebelmart-backend/internal/service"
)

type repos struct {
	users    repository.UserRepository
	products repository.ProductRepository
	carts    repository.CartRepository
	orders   repository.OrderRepository
	close    func(context.Context) error
}

func openRepos(ctx context.Context, cfg *config.Config) (*repos, error) {
	if cfg.Storage.Driver == config.DriverMemory {
		log.Println("using in-memory storage; data is lost on restart")
		m := repository.NewMemoryStore()
		return &repos{
			users:    m.Users(),
			products: m.Products(),
			carts:    m.Carts(),
			orders:   m.Orders(),
			close:    func(context.Context) error { return nil },
		}, nil
	}

	log.Printf("connecting to MongoDB database %q", cfg.Mongo.Database)
	store, err := repository.ConnectMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.ConnectTimeout)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureIndexes(ctx); err != nil {
		store.Close(ctx)
		return nil, err
	}
	return &repos{
		users:    store.UserRepository(),
		products: store.ProductRepository(),
		carts:    store.CartRepository(),
		orders:   store.OrderRepository(),
		close:    store.Close,
	}, nil
}

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	r, err := openRepos(ctx, cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	images, err := filestore.NewDisk(cfg.Uploads.Dir)
	if err != nil {
		log.Fatalf("uploads: %v", err)
	}
	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	srv := httpapi.NewServer(httpapi.Services{
		Users:    service.NewUserService(r.users, auth.NewHasher(cfg.Auth.BcryptCost), tokens),
		Products: service.NewProductService(r.products, images),
		Carts:    service.NewCartService(r.carts),
		Orders:   service.NewOrderService(r.orders),
	}, tokens, httpapi.Options{
		AllowOrigins:     cfg.HTTP.AllowOrigins,
		MaxUploadBytes:   cfg.HTTP.MaxUploadBytes,
		ClearCartOnOrder: cfg.Cart.ClearOnOrder,
	})

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: srv.Engine(),
	}

	go func() {
		log.Printf("listening on %s", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	if err := r.close(shutdownCtx); err != nil {
		log.Printf("storage close: %v", err)
	}
}
