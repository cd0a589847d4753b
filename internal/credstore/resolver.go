package credstore

import (
	"context"
	"fmt"
	"os"

	"github.com/hpgroup/marketplace-analytics/internal/config"
	"github.com/hpgroup/marketplace-analytics/internal/pkg/logger"
)

// Resolver reads credentials from the store and falls back to
// environment variables when the row is missing or the store is down.
// The fallback covers bootstrap (before cmd/populate has run) and
// disaster recovery (database outage with tokens still valid in env).
type Resolver struct {
	store Store
	shops []config.ShopAccount
}

// NewResolver creates a Resolver over the given store and shop roster.
func NewResolver(store Store, shops []config.ShopAccount) *Resolver {
	return &Resolver{store: store, shops: shops}
}

// Resolve returns the credential for a shop number. Database first,
// then the TIKTOK_SHOP<N>_* environment variables combined with the
// static shop roster from configuration.
func (r *Resolver) Resolve(ctx context.Context, shopNumber int) (*Credential, error) {
	if r.store != nil {
		cred, err := r.store.Get(ctx, shopNumber)
		if err == nil {
			return cred, nil
		}
		if err != ErrNotFound {
			logger.Warn("credential store read failed, falling back to env",
				"shop_number", shopNumber, "error", err.Error())
		}
	}
	return r.fromEnv(shopNumber)
}

// fromEnv builds a credential from TIKTOK_SHOP<N>_ACCESS_TOKEN,
// TIKTOK_SHOP<N>_REFRESH_TOKEN and TIKTOK_SHOP<N>_SHOP_CIPHER.
func (r *Resolver) fromEnv(shopNumber int) (*Credential, error) {
	accessToken := config.CleanEnv(os.Getenv(fmt.Sprintf("TIKTOK_SHOP%d_ACCESS_TOKEN", shopNumber)))
	refreshToken := config.CleanEnv(os.Getenv(fmt.Sprintf("TIKTOK_SHOP%d_REFRESH_TOKEN", shopNumber)))
	shopCipher := config.CleanEnv(os.Getenv(fmt.Sprintf("TIKTOK_SHOP%d_SHOP_CIPHER", shopNumber)))

	if accessToken == "" || refreshToken == "" || shopCipher == "" {
		return nil, fmt.Errorf("no credential for shop %d in store or environment", shopNumber)
	}

	for _, s := range r.shops {
		if s.Number == shopNumber {
			return &Credential{
				ShopNumber:   shopNumber,
				ShopName:     s.Name,
				ShopID:       s.ShopID,
				AccessToken:  accessToken,
				RefreshToken: refreshToken,
				ShopCipher:   shopCipher,
			}, nil
		}
	}
	return nil, fmt.Errorf("shop %d not present in shop roster", shopNumber)
}

// ListAll returns every credential the store knows about.
func (r *Resolver) ListAll(ctx context.Context) ([]Credential, error) {
	if r.store == nil {
		return nil, fmt.Errorf("credential store not configured")
	}
	return r.store.List(ctx)
}
