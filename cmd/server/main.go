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

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"canteen-backend/internal/config"
	"canteen-backend/internal/db"
	"canteen-backend/internal/es"
	"canteen-backend/internal/events"
	"canteen-backend/internal/graph"
	"canteen-backend/internal/handlers"
	"canteen-backend/internal/logging"
	loggingmw "canteen-backend/internal/middleware/logging"
	"canteen-backend/internal/ratelimit"
	"canteen-backend/internal/search"
	"canteen-backend/internal/session"
	httpserver "canteen-backend/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	ctx := context.Background()
	database, err := db.Open(ctx, configuration.DatabaseDSN())
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		log.Fatalf("database migrate error: %v", err)
	}

	limiter := ratelimit.NewRedisStore(configuration.REDIS_ADDR)

	prod := events.NewProducer(configuration.KAFKA_ADDRESS)

	var esClient *elasticsearch.Client
	if configuration.ES_URL != "" {
		esClient, err = es.NewClient(configuration)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
	} else {
		logger.Warn("ES_URL not set, meal search disabled")
	}

	resolver := &graph.Resolver{
		DB:       database,
		Limiter:  limiter,
		Producer: prod,
	}
	schema, err := graph.NewSchema(resolver)
	if err != nil {
		log.Fatalf("schema build error: %v", err)
	}

	jwtSecret := []byte(configuration.JWT_SECRET)
	sess := &session.Middleware{DB: database, Secret: jwtSecret}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		DB:             database,
		GraphQLHandler: &handlers.GraphQLHandler{Schema: schema},
		AuthHandler:    &handlers.AuthHandler{DB: database, JWTSecret: jwtSecret, Producer: prod},
		AdminHandler:   &handlers.AdminHandler{DB: database, Producer: prod, ES: esClient, Index: search.MealIndex},
		SearchHandler:  &handlers.SearchHandler{ES: esClient, Index: search.MealIndex},
		Session:        sess,
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := database.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	if err := limiter.Close(); err != nil {
		log.Printf("redis close error: %v", err)
	}

	log.Println("shutdown complete")
}
