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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/kmezhova/online-shop/internal/config"
	"github.com/kmezhova/online-shop/internal/es"
	"github.com/kmezhova/online-shop/internal/handlers"
	"github.com/kmezhova/online-shop/internal/handlers/cart"
	"github.com/kmezhova/online-shop/internal/logging"
	"github.com/kmezhova/online-shop/internal/models"
	"github.com/kmezhova/online-shop/internal/mykafka"
	"github.com/kmezhova/online-shop/internal/payment"
	"github.com/kmezhova/online-shop/internal/repo"
	searchsvc "github.com/kmezhova/online-shop/internal/service/search"
	"github.com/kmezhova/online-shop/internal/service/token"
	httpserver "github.com/kmezhova/online-shop/internal/transport/http"
	"github.com/kmezhova/online-shop/internal/view"
)

var seedProducts = []models.Product{
	{Name: "T-shirt", Description: "Plain cotton t-shirt", Price: 15},
	{Name: "Mug", Description: "Ceramic mug, 300ml", Price: 8.5},
	{Name: "Tote bag", Description: "Canvas tote bag", Price: 12},
	{Name: "Notebook", Description: "A5 dotted notebook", Price: 6.9},
}

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	ctx := context.Background()
	db, err := config.InitDB(ctx, configuration)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	store := &repo.GormRepo{DB: db}

	catalog, err := store.SeedProducts(ctx, seedProducts)
	if err != nil {
		log.Fatalf("catalog seed error: %v", err)
	}

	prod := mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatalf("elasticsearch error: %v", err)
	}
	if esClient != nil {
		if err := searchsvc.IndexProducts(ctx, esClient, "product", catalog); err != nil {
			logger.Warn("search index error", "error", err)
		}
	}

	tokens := &token.Service{Secret: []byte(configuration.JWT_SECRET)}
	gateway := payment.NewStripeGateway(configuration.STRIPE_SECRET_KEY, configuration.BASE_URL)

	e := echo.New()
	e.Renderer = view.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := logging.IntoContext(c.Request().Context(), logger)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})

	deps := httpserver.Deps{
		PageHandler:   &handlers.PageHandler{Repo: store},
		AuthHandler:   &handlers.AuthHandler{Repo: store, Tokens: tokens, Producer: prod},
		CartHandler:   &cart.CartHandler{Repo: store, Tokens: tokens, Producer: prod, Gateway: gateway},
		SearchHandler: &handlers.SearchHandler{ES: esClient, Index: "product"},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.APP_PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()
	logger.Info("server started", "port", configuration.APP_PORT)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
