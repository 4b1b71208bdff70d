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

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/echord/echord-backend/api"
	"github.com/echord/echord-backend/config"
	"github.com/echord/echord-backend/db"
	"github.com/echord/echord-backend/services"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	gdb, err := db.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("database error: %v", err)
	}
	log.Printf("SQLite database ready at %s", cfg.DatabasePath)

	store := services.NewStore(gdb, cfg)
	gateway := services.NewShodanClient(cfg)
	resolver := services.NewResolver(store)
	orchestrator := services.NewOrchestrator(store, gateway, resolver)
	favorites := services.NewFavoritesService(gdb)

	// Periodic sweep of expired cache entries. Safe against concurrent
	// reads/writes: both sweep and lazy expiry only delete rows already
	// past their expiry.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := store.Sweep(); err != nil {
					log.Printf("[SWEEP] cache sweep failed: %v", err)
				}
			case <-sweepCtx.Done():
				return
			}
		}
	}()

	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	api.SetupRoutes(r, api.NewServer(cfg, orchestrator, store, favorites))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Echord backend listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutdown signal received, closing server")

	stopSweep()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("forced shutdown: %v", err)
	}
	log.Println("server closed")
}
