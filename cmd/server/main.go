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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/todo_service/internal/config"
	"github.com/Skotchmaster/todo_service/internal/es"
	"github.com/Skotchmaster/todo_service/internal/events"
	"github.com/Skotchmaster/todo_service/internal/handlers"
	"github.com/Skotchmaster/todo_service/internal/logging"
	authmw "github.com/Skotchmaster/todo_service/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/todo_service/internal/middleware/logging"
	"github.com/Skotchmaster/todo_service/internal/repo"
	"github.com/Skotchmaster/todo_service/internal/service"
	"github.com/Skotchmaster/todo_service/internal/tokens"
	httpserver "github.com/Skotchmaster/todo_service/internal/transport/http"
)

const todoIndex = "todo"

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	config.MustNonEmpty(configuration.AUTH_SECRET, "AUTH_SECRET")

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	var prod *events.Producer
	if configuration.KAFKA_ADDRESS != "" {
		prod = events.NewProducer([]string{configuration.KAFKA_ADDRESS})
	}

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Printf("Notice: elasticsearch unavailable, search disabled: %v", err)
		esClient = nil
	}

	gormRepo := &repo.GormRepo{DB: db}
	codec := &tokens.Codec{Secret: []byte(configuration.AUTH_SECRET)}
	authSvc := &service.AuthService{Repo: gormRepo, Codec: codec}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		AuthHandler: &handlers.AuthHandler{
			Svc:          authSvc,
			Producer:     prod,
			CookieSecure: configuration.IsProduction(),
		},
		TodoHandler: &handlers.TodoHandler{
			DB:       db,
			Producer: prod,
			ES:       esClient,
			Index:    todoIndex,
		},
		SearchHandler: &handlers.SearchHandler{ES: esClient, Index: todoIndex},
		Gate:          authmw.NewGate(authSvc),
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
