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

	"github.com/Shazidulislam/final-project-plant-server/internal/auth"
	"github.com/Shazidulislam/final-project-plant-server/internal/config"
	"github.com/Shazidulislam/final-project-plant-server/internal/docstore"
	"github.com/Shazidulislam/final-project-plant-server/internal/events"
	"github.com/Shazidulislam/final-project-plant-server/internal/httpx"
	kafkax "github.com/Shazidulislam/final-project-plant-server/internal/kafka"
	"github.com/Shazidulislam/final-project-plant-server/internal/obs"
	"github.com/Shazidulislam/final-project-plant-server/internal/orders"
	"github.com/Shazidulislam/final-project-plant-server/internal/payment"
	"github.com/Shazidulislam/final-project-plant-server/internal/plants"
	"github.com/Shazidulislam/final-project-plant-server/internal/postgres"
	"github.com/Shazidulislam/final-project-plant-server/internal/users"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.ValidateAPI(); err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracer, err := obs.InitTracer(ctx, cfg.ServiceName, cfg.Env, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("tracer: %v", err)
	}

	// DB
	db, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.ServiceName)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	plantsTbl := docstore.NewTable(db, "plants")
	ordersTbl := docstore.NewTable(db, "orders")
	usersTbl := docstore.NewTable(db, "users")

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, 1024)
	prod.Start()
	emitter := events.NewEmitter(prod, cfg.ServiceName)

	// Services
	plantSvc := &plants.Service{Plants: plantsTbl, Events: emitter}
	orderSvc := &orders.Service{Orders: ordersTbl, Users: usersTbl, Plants: plantsTbl, Events: emitter}
	userSvc := &users.Service{Users: usersTbl, Events: emitter}
	bridge := &payment.Bridge{
		Plants:    plantSvc,
		Processor: payment.NewStripe(cfg.StripeSecretKey),
		Currency:  cfg.PaymentCurrency,
	}
	if cfg.StripeSecretKey == "" {
		log.Println("STRIPE_SK_KEY not set; payment intents will fail")
	}

	tokens := auth.NewTokens(cfg.AccessTokenSecret)
	gate := &httpx.Gate{Tokens: tokens, Admins: userSvc, AdminGuard: cfg.AdminGuard}
	if !cfg.AdminGuard {
		log.Println("ADMIN_GUARD disabled; any signed-in user passes admin routes")
	}

	// Router & handlers
	router := httpx.NewRouter(cfg.CORSOrigins, cfg.ServiceName)
	(&httpx.AuthHandler{Tokens: tokens, Cookies: auth.Cookies{Production: cfg.Production()}}).Register(router)
	(&httpx.PlantsHandler{Plants: plantSvc}).Register(router)
	(&httpx.OrdersHandler{Orders: orderSvc}).Register(router)
	(&httpx.UsersHandler{Users: userSvc, Gate: gate}).Register(router)
	(&httpx.AdminHandler{Orders: orderSvc, Gate: gate}).Register(router)
	(&httpx.PaymentHandler{Bridge: bridge}).Register(router)

	// HTTP server
	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("plantNet is sitting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), httpx.RequestTimeout+5*time.Second)
	defer cancel2()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	prod.Close()
	prod.WaitClosed()
	if err := shutdownTracer(ctx2); err != nil {
		log.Printf("tracer shutdown: %v", err)
	}
}
