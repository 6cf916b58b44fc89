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

	"itoparty/internal/cache"
	"itoparty/internal/config"
	"itoparty/internal/repository"
	"itoparty/internal/service"
	"itoparty/internal/store"
	"itoparty/internal/transport/rest"
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

	db := mongoClient.Database(cfg.MongoDatabase)

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

	// Initialize store and repositories
	gameStore := store.NewRedisStore(rdb)
	accountRepo := repository.NewAccountRepo(db)
	limiter := cache.NewCreationLimiter(rdb)

	// Initialize services
	authSvc := service.NewAuthService(accountRepo, cfg.JWTSecret)
	codes := service.NewCodeAllocator(gameStore)
	gameSvc := service.NewGameService(gameStore, authSvc, limiter, codes)
	playerSvc := service.NewPlayerService(gameStore)
	cleanupSvc := service.NewCleanupService(gameStore, accountRepo)

	// Create router with container
	container := &rest.Container{
		AuthService:    authSvc,
		GameService:    gameSvc,
		PlayerService:  playerSvc,
		CleanupService: cleanupSvc,
	}
	router := rest.NewRouter(container)

	// In-process sweeper, in addition to the /internal/cleanup trigger
	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	if cfg.CleanupInterval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.CleanupInterval)
			defer ticker.Stop()
			for {
				select {
				case <-sweepCtx.Done():
					return
				case <-ticker.C:
					report, err := cleanupSvc.Sweep(sweepCtx, time.Now().UnixMilli())
					if err != nil {
						log.Println("Cleanup sweep failed:", err)
						continue
					}
					log.Printf("Cleanup: players=%d accounts=%d games=%d codes=%d",
						report.PlayersRemoved, report.AccountsRemoved, report.GamesRemoved, report.CodesRemoved)
				}
			}
		}()
	}

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
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
