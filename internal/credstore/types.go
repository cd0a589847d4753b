// Package credstore defines the per-shop credential entity and the
// lookup logic that backs every upstream API call. Credentials live in
// Postgres; environment variables act as a bootstrap/disaster-recovery
// fallback when the database row is missing or unreadable.
package credstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no credential exists for a shop number.
var ErrNotFound = errors.New("credential not found")

// Credential is the durable token record for one shop. Exactly one row
// exists per shop number; tokens are rotated in place by the refresh
// service and never deleted in normal operation.
type Credential struct {
	ShopNumber           int       `json:"shop_number"`
	ShopName             string    `json:"shop_name"`
	ShopID               string    `json:"shop_id"`
	AccessToken          string    `json:"-"`
	RefreshToken         string    `json:"-"`
	ShopCipher           string    `json:"-"`
	AccessTokenExpireIn  int64     `json:"access_token_expire_in,omitempty"`
	RefreshTokenExpireIn int64     `json:"refresh_token_expire_in,omitempty"`
	CreatedAt            time.Time `json:"created_at,omitempty"`
	UpdatedAt            time.Time `json:"updated_at,omitempty"`
}

// Store is the durable credential repository.
type Store interface {
	// Get returns the credential for one shop, or ErrNotFound.
	Get(ctx context.Context, shopNumber int) (*Credential, error)
	// List returns all credentials ordered by shop number.
	List(ctx context.Context) ([]Credential, error)
	// Upsert inserts or replaces the credential keyed by shop number.
	Upsert(ctx context.Context, c *Credential) error
	// UpdateTokens rotates the token pair for one shop. Expiry values
	// are Unix seconds; zero means the upstream omitted the field.
	UpdateTokens(ctx context.Context, shopNumber int, accessToken, refreshToken string, accessExp, refreshExp int64) error
}
