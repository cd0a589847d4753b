// Package postgres implements the durable repositories against PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hpgroup/marketplace-analytics/internal/credstore"
)

// CredentialRepo implements credstore.Store against PostgreSQL.
type CredentialRepo struct{ db *sql.DB }

// NewCredentialRepo creates a Postgres-backed credential repository.
func NewCredentialRepo(db *sql.DB) *CredentialRepo { return &CredentialRepo{db: db} }

func (r *CredentialRepo) Get(ctx context.Context, shopNumber int) (*credstore.Credential, error) {
	c := &credstore.Credential{}
	var accessExp, refreshExp sql.NullInt64
	err := r.db.QueryRowContext(ctx, `
		SELECT shop_number, shop_name, shop_id, access_token, refresh_token, shop_cipher,
		       access_token_expire_in, refresh_token_expire_in, created_at, updated_at
		FROM credentials.refresh_tiktokshops_token
		WHERE shop_number = $1
	`, shopNumber).Scan(
		&c.ShopNumber, &c.ShopName, &c.ShopID, &c.AccessToken, &c.RefreshToken, &c.ShopCipher,
		&accessExp, &refreshExp, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, credstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get credential: %w", err)
	}
	c.AccessTokenExpireIn = accessExp.Int64
	c.RefreshTokenExpireIn = refreshExp.Int64
	return c, nil
}

func (r *CredentialRepo) List(ctx context.Context) ([]credstore.Credential, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT shop_number, shop_name, shop_id, access_token, refresh_token, shop_cipher,
		       access_token_expire_in, refresh_token_expire_in, created_at, updated_at
		FROM credentials.refresh_tiktokshops_token
		ORDER BY shop_number
	`)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	var out []credstore.Credential
	for rows.Next() {
		var c credstore.Credential
		var accessExp, refreshExp sql.NullInt64
		if err := rows.Scan(
			&c.ShopNumber, &c.ShopName, &c.ShopID, &c.AccessToken, &c.RefreshToken, &c.ShopCipher,
			&accessExp, &refreshExp, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		c.AccessTokenExpireIn = accessExp.Int64
		c.RefreshTokenExpireIn = refreshExp.Int64
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CredentialRepo) Upsert(ctx context.Context, c *credstore.Credential) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO credentials.refresh_tiktokshops_token
			(shop_number, shop_name, shop_id, access_token, refresh_token, shop_cipher, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP)
		ON CONFLICT (shop_number)
		DO UPDATE SET
			shop_name = EXCLUDED.shop_name,
			shop_id = EXCLUDED.shop_id,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			shop_cipher = EXCLUDED.shop_cipher,
			updated_at = CURRENT_TIMESTAMP
	`, c.ShopNumber, c.ShopName, c.ShopID, c.AccessToken, c.RefreshToken, c.ShopCipher)
	if err != nil {
		return fmt.Errorf("upsert credential: %w", err)
	}
	return nil
}

func (r *CredentialRepo) UpdateTokens(ctx context.Context, shopNumber int, accessToken, refreshToken string, accessExp, refreshExp int64) error {
	var accessVal, refreshVal sql.NullInt64
	if accessExp > 0 {
		accessVal = sql.NullInt64{Int64: accessExp, Valid: true}
	}
	if refreshExp > 0 {
		refreshVal = sql.NullInt64{Int64: refreshExp, Valid: true}
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE credentials.refresh_tiktokshops_token
		SET access_token = $1,
		    refresh_token = $2,
		    access_token_expire_in = $3,
		    refresh_token_expire_in = $4,
		    updated_at = CURRENT_TIMESTAMP
		WHERE shop_number = $5
	`, accessToken, refreshToken, accessVal, refreshVal, shopNumber)
	if err != nil {
		return fmt.Errorf("update tokens: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return credstore.ErrNotFound
	}
	return nil
}

// EnsureSchema creates the credentials schema and token table if they do
// not exist. Used by cmd/populate during bootstrap.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE SCHEMA IF NOT EXISTS credentials`,
		`CREATE TABLE IF NOT EXISTS credentials.refresh_tiktokshops_token (
			id SERIAL PRIMARY KEY,
			shop_number INTEGER NOT NULL UNIQUE,
			shop_name VARCHAR(255) NOT NULL,
			shop_id VARCHAR(255) NOT NULL,
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL,
			shop_cipher VARCHAR(255) NOT NULL,
			access_token_expire_in BIGINT,
			refresh_token_expire_in BIGINT,
			open_id VARCHAR(255),
			seller_name VARCHAR(255),
			seller_base_region VARCHAR(10),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_shop_number
			ON credentials.refresh_tiktokshops_token(shop_number)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
