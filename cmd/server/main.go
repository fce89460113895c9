package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/greenwork/greenwork-api/internal/config"
	"github.com/greenwork/greenwork-api/internal/database"
	"github.com/greenwork/greenwork-api/internal/handler"
	"github.com/greenwork/greenwork-api/internal/middleware"
	"github.com/greenwork/greenwork-api/internal/queue"
	"github.com/greenwork/greenwork-api/internal/repository"
	"github.com/greenwork/greenwork-api/internal/router"
	"github.com/greenwork/greenwork-api/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	companies := repository.NewCompanyRepo(db)
	rooms := repository.NewRoomRepo(db)
	reservations := repository.NewReservationRepo(db)
	images := repository.NewImageRepo(db)

	// Rate limiting and response caching degrade to pass-throughs
	// when Redis is unreachable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and response cache disabled")
	}
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	authMW := middleware.JWTAuth(cfg.JWTSecret, users)

	// Expired refresh tokens accumulate forever otherwise; sweep them
	// hourly.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			n, err := tokens.DeleteExpired(ctx)
			cancel()
			if err != nil {
				log.Printf("token cleanup: %v", err)
			} else if n > 0 {
				log.Printf("token cleanup: removed %d expired tokens", n)
			}
		}
	}()

	publisher := service.NewQueuePublisher(queue.BrokerURL())
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), authMW, limiter)
	router.RegisterUsers(e, handler.NewUserHandler(cfg, users, tokens), authMW)
	router.RegisterCompanies(e, handler.NewCompanyHandler(companies, users), authMW)
	router.RegisterPublic(e,
		handler.NewRoomHandler(rooms, companies),
		handler.NewReservationHandler(reservations, users, rooms, publisher),
		handler.NewImageHandler(images),
		cache)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
