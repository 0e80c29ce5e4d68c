package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/seat-inventory/internal/audit"
	"github.com/iliyamo/seat-inventory/internal/config"
	"github.com/iliyamo/seat-inventory/internal/database"
	"github.com/iliyamo/seat-inventory/internal/engine"
	"github.com/iliyamo/seat-inventory/internal/handler"
	"github.com/iliyamo/seat-inventory/internal/identity"
	"github.com/iliyamo/seat-inventory/internal/lock"
	"github.com/iliyamo/seat-inventory/internal/pricing"
	"github.com/iliyamo/seat-inventory/internal/queue"
	"github.com/iliyamo/seat-inventory/internal/report"
	"github.com/iliyamo/seat-inventory/internal/repository"
	"github.com/iliyamo/seat-inventory/internal/router"
	"github.com/iliyamo/seat-inventory/internal/store"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	// Seat store and audit log: MySQL when configured, in-memory otherwise.
	var (
		seats    store.SeatStore
		auditLog audit.Log
		authH    *handler.AuthHandler
	)
	if cfg.UseDatabase() {
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = database.EnsureSchema(ctx, db, store.Schema, audit.Schema, repository.Schema)
		cancel()
		if err != nil {
			log.Fatalf("schema: %v", err)
		}
		seats = store.NewMySQLStore(db)
		auditLog = audit.NewMySQLLog(db)
		authH = handler.NewAuthHandler(cfg, repository.NewOperatorRepo(db))
		log.Printf("seat store: mysql (%s/%s)", cfg.DBHost, cfg.DBName)
	} else {
		seats = store.NewMemoryStore()
		auditLog = audit.NewMemoryLog()
		log.Printf("seat store: in-memory (DB_HOST not set)")
	}

	// Pricing: built-in tables unless a JSON override file is configured.
	table := pricing.Default()
	if cfg.PricingFile != "" {
		loaded, err := pricing.LoadFile(cfg.PricingFile)
		if err != nil {
			log.Fatalf("pricing file %s: %v", cfg.PricingFile, err)
		}
		table = loaded
		log.Printf("pricing: loaded override from %s", cfg.PricingFile)
	}

	// Per-service write lock: Redis when reachable, else in-process.
	var locker lock.Locker = lock.NewKeyedMutex()
	if rdb := config.NewRedisClient(); rdb != nil {
		locker = lock.NewRedisLocker(rdb, 10*time.Second)
		log.Printf("reservation lock: redis")
	} else {
		log.Printf("reservation lock: in-process (redis unreachable)")
	}

	eng := engine.New(seats, table, identity.NewVerifier(), auditLog, locker,
		engine.WithRetention(time.Duration(cfg.RetentionHours)*time.Hour),
		engine.WithTicketSink(queue.NewPublisher()),
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go engine.NewSweeper(eng, time.Duration(cfg.SweepIntervalMin)*time.Minute).Run(ctx)
	go func() {
		if err := queue.StartTicketConsumer(); err != nil {
			log.Printf("ticket consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e)
	if authH != nil {
		router.RegisterAuth(e, authH)
	}
	router.RegisterReservations(e, handler.NewReservationHandler(eng), cfg.JWTSecret)
	router.RegisterReports(e, handler.NewReportHandler(report.New(seats), auditLog), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
