package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/huaxuan-books/bookstore/internal/config"
	kafkax "github.com/huaxuan-books/bookstore/internal/kafka"
	"github.com/huaxuan-books/bookstore/internal/orders"
	"github.com/huaxuan-books/bookstore/internal/postgres"
	"github.com/huaxuan-books/bookstore/internal/redisx"
	"github.com/huaxuan-books/bookstore/internal/worker"
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
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &worker.Service{
		Redis:       rdb,
		Cart:        &orders.Repo{DB: db},
		ServiceName: cfg.ServiceName + "-worker",
	}

	// Consumer untuk ketiga order topic
	group := getenv("WORKER_GROUP", "bookstore-worker")
	workers := mustAtoi(os.Getenv("WORKER_CONCURRENCY"), "8")
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, orders.Topics(), workers)

	go func() {
		log.Printf("worker consumer started: group=%s topics=%v workers=%d", group, orders.Topics(), workers)
		if err := cons.Start(ctx, svc.HandleOrderEvent); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	purgeEvery := time.Duration(mustAtoi(os.Getenv("CART_PURGE_MINUTES"), "30")) * time.Minute
	go svc.RunCartPurge(ctx, purgeEvery)

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down worker...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}
