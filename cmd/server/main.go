package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hpgroup/marketplace-analytics/internal/ads"
	"github.com/hpgroup/marketplace-analytics/internal/api"
	"github.com/hpgroup/marketplace-analytics/internal/config"
	"github.com/hpgroup/marketplace-analytics/internal/credstore"
	"github.com/hpgroup/marketplace-analytics/internal/repository/postgres"
	"github.com/hpgroup/marketplace-analytics/internal/roas"
	"github.com/hpgroup/marketplace-analytics/internal/shop"
	"github.com/hpgroup/marketplace-analytics/internal/tokens"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v", port, addr, err)
	}
	ln.Close()
	return nil
}

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if os.Getenv("DATABASE_URL") != "" {
		log.Println("[config] DATABASE_URL env override active")
	}

	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 10*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		// Keep serving: the resolver falls back to env credentials.
		log.Printf("WARNING: database unreachable, serving from env credentials: %v", err)
	}
	cancelPing()

	credRepo := postgres.NewCredentialRepo(db)
	resolver := credstore.NewResolver(credRepo, cfg.Shops)

	shopClient := shop.NewClient(cfg.ShopAPI)
	adsClient := ads.NewClient(cfg.AdsAPI)
	tokenService := tokens.NewService(cfg.ShopAPI, credRepo)
	roasService := roas.NewService(cfg, adsClient, shopClient, resolver)

	handlers := api.NewHandlers(cfg, shopClient, adsClient, resolver, tokenService, roasService)
	server := api.NewServer(cfg.Server, handlers)

	addr := fmt.Sprintf("%s:%d", host, port)
	go func() {
		log.Printf("Server listening on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
