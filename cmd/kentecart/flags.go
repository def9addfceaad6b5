package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env"
)

type Config struct {
	Address            string        `env:"RUN_ADDRESS" envDefault:"localhost:8080"`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"INFO"`
	DatabaseConnection string        `env:"DATABASE_URI"`
	JWTSecret          string        `env:"JWT_SECRET" envDefault:"dontexposethis"`
	JWTTTL             time.Duration `env:"JWT_TTL" envDefault:"24h"`
	PaystackAddress    string        `env:"PAYSTACK_ADDRESS" envDefault:"https://api.paystack.co"`
	PaystackSecret     string        `env:"PAYSTACK_SECRET_KEY"`
	PaymentWorkers     int           `env:"PAYMENT_WORKERS" envDefault:"4"`
	PaymentInterval    time.Duration `env:"PAYMENT_INTERVAL" envDefault:"1m"`
}

func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if cfg.PaystackSecret == "" {
		return nil, fmt.Errorf("ENV PAYSTACK_SECRET_KEY must be set")
	}

	address := flag.String("a", cfg.Address, "{Host:port} for server")
	loglevel := flag.String("l", cfg.LogLevel, "Log level for server")
	databaseConnection := flag.String("d", cfg.DatabaseConnection, "Database connection string")
	jwtTTL := flag.Duration("t", cfg.JWTTTL, "TTL for JWT token(e.g. 24h; 30m )")
	paystackAddress := flag.String("p", cfg.PaystackAddress, "Payment gateway base URL")
	paymentWorkers := flag.Int("w", cfg.PaymentWorkers, "Size of payment reconcile worker pool")
	paymentInterval := flag.Duration("i", cfg.PaymentInterval, "Payment reconcile interval")

	flag.Parse()

	cfg.Address = *address
	cfg.LogLevel = *loglevel
	cfg.DatabaseConnection = *databaseConnection
	cfg.JWTTTL = *jwtTTL
	cfg.PaystackAddress = *paystackAddress
	cfg.PaymentWorkers = *paymentWorkers
	cfg.PaymentInterval = *paymentInterval

	return cfg, nil
}
