package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shazidulislam/final-project-plant-server/internal/audit"
	"github.com/Shazidulislam/final-project-plant-server/internal/config"
	"github.com/Shazidulislam/final-project-plant-server/internal/events"
	kafkax "github.com/Shazidulislam/final-project-plant-server/internal/kafka"
	"github.com/Shazidulislam/final-project-plant-server/internal/obs"
	"github.com/Shazidulislam/final-project-plant-server/internal/postgres"
	"github.com/Shazidulislam/final-project-plant-server/internal/redisx"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracer, err := obs.InitTracer(ctx, cfg.ServiceName+"-audit", cfg.Env, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("tracer: %v", err)
	}

	// DB
	db, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.ServiceName+"-audit")
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &audit.Service{
		Log:   &audit.Repo{DB: db},
		Dedup: &redisx.Dedup{RDB: rdb, Service: cfg.ServiceName + "-audit"},
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.AuditGroup, events.Topics, cfg.AuditWorkers)
	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Printf("audit consumer started: group=%s topics=%d workers=%d", cfg.AuditGroup, len(events.Topics), cfg.AuditWorkers)
		if err := cons.Start(ctx, svc.HandleEvent); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Println("shutting down consumer...")
	cancel()
	<-done

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	if err := shutdownTracer(ctx2); err != nil {
		log.Printf("tracer shutdown: %v", err)
	}
}
