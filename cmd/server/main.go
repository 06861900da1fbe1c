package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/task-tracker/internal/auth"
	"github.com/iliyamo/task-tracker/internal/config"
	"github.com/iliyamo/task-tracker/internal/database"
	"github.com/iliyamo/task-tracker/internal/handler"
	"github.com/iliyamo/task-tracker/internal/middleware"
	"github.com/iliyamo/task-tracker/internal/queue"
	"github.com/iliyamo/task-tracker/internal/repository"
	"github.com/iliyamo/task-tracker/internal/router"
)

func main() {
	// Local development reads a .env file; in production the variables come
	// from the environment and the file is simply absent.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	tasks := repository.NewTaskRepo(db)

	// The auth core: one codec holding the process-wide signing secret, and
	// the stateless components built on top of it.
	codec := auth.NewCodec(cfg.JWTSecret)
	issuer := auth.NewIssuer(codec,
		time.Duration(cfg.AccessTTLMin)*time.Minute,
		time.Duration(cfg.RefreshTTLDays)*24*time.Hour)
	hasher := auth.NewHasher(cfg.BcryptCost)
	resolver := auth.NewResolver(codec)
	refresher := auth.NewRefresher(codec, issuer)

	authHandler := handler.NewAuthHandler(cfg, users, hasher, issuer, refresher)
	taskHandler := handler.NewTaskHandler(tasks)

	e := echo.New()
	e.HideBanner = true

	// Redis-backed rate limiting and response caching; both are no-ops when
	// Redis is unreachable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable: rate limiting and caching disabled")
	}
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, resolver, users)
	router.RegisterTasks(e, taskHandler, resolver, users, cacheMW)

	// Drain task-activity events in the background for the activity log.
	go func() {
		if err := queue.StartActivityConsumer(); err != nil {
			log.Printf("activity consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
