package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"surveygraph/internal/cache"
	"surveygraph/internal/config"
	"surveygraph/internal/engine"
	"surveygraph/internal/repository"
	"surveygraph/internal/service"
	"surveygraph/internal/transport/rest"
	"surveygraph/internal/transport/ws"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	redisAddr := strings.TrimPrefix(cfg.RedisAddr, "redis://")
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	go wsHub.Run()
	log.Println("WebSocket hub started")

	// Initialize repositories
	surveyRepo := repository.NewSurveyRepo(db)
	pageRepo := repository.NewPageRepo(db)
	questionRepo := repository.NewQuestionRepo(db)
	sessionRepo := repository.NewSessionRepo(db)
	responseRepo := repository.NewResponseRepo(db)
	reportRepo := repository.NewReportRepo(db)
	seedRepo := repository.NewSeedRepo(db)

	// Initialize caches
	sessionCache := cache.NewSessionCache(rdb)
	pageCache := cache.NewPageCache(rdb)

	// Initialize engine
	loader := service.NewGraphLoader(pageRepo, questionRepo, pageCache)
	traverser := engine.NewTraverser(loader)
	builder := engine.NewBuilder(service.NewGraphStore(surveyRepo, pageRepo, questionRepo))

	// Initialize services
	authSvc := service.NewAuthService()
	surveySvc := service.NewSurveyService(surveyRepo, pageRepo, questionRepo, seedRepo, pageCache, builder)
	reportSvc := service.NewReportService(reportRepo, responseRepo, surveyRepo, loader)
	sessionSvc := service.NewSessionService(sessionRepo, surveyRepo, responseRepo, sessionCache, loader, traverser, authSvc, reportSvc)
	responseSvc := service.NewResponseService(responseRepo, sessionRepo, sessionSvc, loader, traverser)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	sessionSvc.SetBroadcaster(wsHub)

	// Create router with container
	container := &rest.Container{
		AuthService:     authSvc,
		SurveyService:   surveySvc,
		SessionService:  sessionSvc,
		ResponseService: responseSvc,
		ReportService:   reportSvc,
		WSHub:           wsHub,
	}

	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/login")
		log.Println("  GET  /v1/surveys")
		log.Println("  GET  /v1/surveys/{surveyId}")
		log.Println("  POST /v1/surveys/{surveyId}/sessions")
		log.Println("  GET  /v1/session")
		log.Println("  GET  /v1/responses/{responseId}")
		log.Println("  POST /v1/responses/{responseId}/respond")
		log.Println("  GET  /v1/reports/{sessionId}")
		log.Println("  GET  /v1/reports/{sessionId}/csv")
		log.Println("  WS   /v1/ws/operator")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
