package main // server entry point

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-seat-reservation/internal/catalog"
	"github.com/iliyamo/event-seat-reservation/internal/config"
	"github.com/iliyamo/event-seat-reservation/internal/database"
	"github.com/iliyamo/event-seat-reservation/internal/handler"
	"github.com/iliyamo/event-seat-reservation/internal/queue"
	"github.com/iliyamo/event-seat-reservation/internal/repository"
	"github.com/iliyamo/event-seat-reservation/internal/router"
	"github.com/iliyamo/event-seat-reservation/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env wins

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	// The sheets table is static reference data; load it once and
	// serve every later lookup from memory.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	sheets, err := repository.NewSheetRepo(db).LoadAll(ctx)
	cancel()
	if err != nil {
		log.Fatalf("load sheets: %v", err)
	}
	cat, err := catalog.New(sheets)
	if err != nil {
		log.Fatalf("build catalog: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, cache and rate limiting disabled")
	}

	events := repository.NewEventRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	reservations := repository.NewReservationRepo(db)

	inventory := service.NewInventoryService(events, reservations, cat)
	allocator := service.NewReservationService(reservations, cat, service.SystemClock())
	reports := service.NewReportService(reservations)

	publisher := queue.NewPublisher(cfg.AMQPURL)
	if cfg.AMQPURL != "" {
		go func() {
			if err := queue.StartReservationConsumer(cfg.AMQPURL); err != nil {
				log.Printf("reservation consumer stopped: %v", err)
			}
		}()
	}

	h := router.Handlers{
		Auth:   handler.NewAuthHandler(cfg, users, tokens),
		Events: handler.NewEventHandler(events, inventory, allocator, cat, publisher),
		Users:  handler.NewUserHandler(users, events, reservations, inventory),
		Admin:  handler.NewAdminHandler(events, inventory, reports),
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, h, cfg, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
