package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/huaxuan-books/bookstore/internal/auth"
	"github.com/huaxuan-books/bookstore/internal/catalog"
	"github.com/huaxuan-books/bookstore/internal/config"
	"github.com/huaxuan-books/bookstore/internal/httpx"
	kafkax "github.com/huaxuan-books/bookstore/internal/kafka"
	"github.com/huaxuan-books/bookstore/internal/mail"
	"github.com/huaxuan-books/bookstore/internal/orders"
	"github.com/huaxuan-books/bookstore/internal/postgres"
	"github.com/huaxuan-books/bookstore/internal/redisx"
	"github.com/huaxuan-books/bookstore/internal/users"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, 1024)
	prod.Start()

	// Wiring
	ledger := &orders.Repo{
		DB:         db,
		Accounting: orders.ParseAccountingMode(cfg.SalesAccounting),
	}
	svc := &orders.Service{
		Ledger: ledger,
		Cart:   ledger,
		Mailer: &mail.SMTPMailer{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			Sender:   cfg.SMTPSender,
		},
		Producer:    prod,
		ServiceName: cfg.ServiceName,
	}
	verifier := &auth.Verifier{
		Secret: []byte(cfg.JWTSecret),
		Users:  &users.Repo{DB: db},
	}

	router := httpx.NewRouter()
	oh := &httpx.OrdersHandler{
		Svc:      svc,
		Verifier: verifier,
		Redis:    rdb,
		PerPage:  cfg.OrdersPerPage,
	}
	oh.Register(router)
	ch := &httpx.CatalogHandler{
		Repo:    &catalog.Repo{DB: db},
		Redis:   rdb,
		PerPage: cfg.BooksPerPage,
	}
	ch.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // tutup inbox -> flush & close writer
	prod.WaitClosed() // drain
}
