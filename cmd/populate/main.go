// Command populate bootstraps the credential store: it creates the
// schema and table, then upserts one row per configured shop from the
// TIKTOK_SHOP<N>_* environment variables.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/hpgroup/marketplace-analytics/internal/config"
	"github.com/hpgroup/marketplace-analytics/internal/credstore"
	"github.com/hpgroup/marketplace-analytics/internal/repository/postgres"

	_ "github.com/lib/pq" // PostgreSQL driver
)

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("Database unreachable: %v", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}
	log.Println("Schema ready")

	repo := postgres.NewCredentialRepo(db)
	var seeded, skipped int
	for _, s := range cfg.Shops {
		accessToken := config.CleanEnv(os.Getenv(fmt.Sprintf("TIKTOK_SHOP%d_ACCESS_TOKEN", s.Number)))
		refreshToken := config.CleanEnv(os.Getenv(fmt.Sprintf("TIKTOK_SHOP%d_REFRESH_TOKEN", s.Number)))
		shopCipher := config.CleanEnv(os.Getenv(fmt.Sprintf("TIKTOK_SHOP%d_SHOP_CIPHER", s.Number)))

		if accessToken == "" || refreshToken == "" || shopCipher == "" {
			log.Printf("Shop %d (%s): missing env credentials, skipped", s.Number, s.Name)
			skipped++
			continue
		}

		err := repo.Upsert(ctx, &credstore.Credential{
			ShopNumber:   s.Number,
			ShopName:     s.Name,
			ShopID:       s.ShopID,
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ShopCipher:   shopCipher,
		})
		if err != nil {
			log.Fatalf("Shop %d (%s): upsert failed: %v", s.Number, s.Name, err)
		}
		log.Printf("Shop %d (%s): credential stored", s.Number, s.Name)
		seeded++
	}

	log.Printf("Done: %d stored, %d skipped", seeded, skipped)
}
