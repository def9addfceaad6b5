package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nanayawb/kentecart/internal/logger"
	"github.com/nanayawb/kentecart/internal/order"
	"github.com/nanayawb/kentecart/internal/payment"
	"github.com/nanayawb/kentecart/internal/product"
	"github.com/nanayawb/kentecart/internal/promo"
	"github.com/nanayawb/kentecart/internal/router"
	storage "github.com/nanayawb/kentecart/internal/storage/postgres"
	"github.com/nanayawb/kentecart/internal/user"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		panic(err)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := NewConfig()
	if err != nil {
		log.Fatal(err)
	}
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.NewPostgresStorage(cfg.DatabaseConnection)
	if err != nil {
		log.Fatalf("Failed to initialize Postgres storage: %v", err)
	}
	if err := store.Ping(ctx); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Warning: failed to close storage: %v", err)
		}
	}()

	userSvc := user.NewService(store, []byte(cfg.JWTSecret), cfg.JWTTTL)
	userHandler := user.NewHandler(userSvc)

	productSvc := product.NewService(store)
	productHandler := product.NewHandler(productSvc)

	promoSvc := promo.NewService(store)
	promoHandler := promo.NewHandler(promoSvc)

	orderSvc := order.NewService(store, store, promoSvc)
	orderHandler := order.NewHandler(orderSvc)

	httpClient := &http.Client{
		Timeout: 10 * time.Second,
	}
	gateway := &payment.HTTPGatewayClient{
		Client:    httpClient,
		BaseURL:   cfg.PaystackAddress,
		SecretKey: cfg.PaystackSecret,
	}
	paymentSvc := payment.NewService(gateway, store, cfg.PaystackSecret)
	paymentHandler := payment.NewHandler(paymentSvc)

	r := router.NewRouter(userHandler, productHandler, orderHandler, promoHandler, paymentHandler, []byte(cfg.JWTSecret), store)

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		payment.DispatcherLoop(
			ctx,
			paymentSvc,
			cfg.PaymentWorkers,
			cfg.PaymentInterval,
		)
	}()

	go func() {
		log.Printf("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
	return nil
}
