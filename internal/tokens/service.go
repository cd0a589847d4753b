// Package tokens implements the OAuth-style refresh flow against the
// shop platform's auth endpoint, including response-shape normalization
// and durable rotation of the per-shop token pair.
package tokens

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hpgroup/marketplace-analytics/internal/config"
	"github.com/hpgroup/marketplace-analytics/internal/credstore"
	"github.com/hpgroup/marketplace-analytics/internal/pkg/httpretry"
	"github.com/hpgroup/marketplace-analytics/internal/pkg/logger"
)

const refreshEndpoint = "/api/v2/token/refresh"

// Expiry values above this are milliseconds; the endpoint is not
// consistent about the unit it returns.
const millisThreshold = 10_000_000_000

// Service refreshes shop access tokens and persists the rotated pair.
type Service struct {
	store       credstore.Store
	authBaseURL string
	appKey      string
	appSecret   string
	httpClient  httpretry.HTTPDoer
}

// NewService creates a token refresh service.
func NewService(cfg config.ShopAPIConfig, store credstore.Store) *Service {
	return &Service{
		store:       store,
		authBaseURL: cfg.AuthBaseURL,
		appKey:      cfg.AppKey,
		appSecret:   cfg.AppSecret,
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: cfg.Timeout(),
		}, 3),
	}
}

// SetHTTPClient sets a custom HTTP client (useful for testing)
func (s *Service) SetHTTPClient(client httpretry.HTTPDoer) {
	s.httpClient = client
}

// Refresh rotates one shop's token pair. Upstream errors and shape
// surprises are converted into a failed Result, never a panic or a
// propagated error: the batch boundary depends on that.
func (s *Service) Refresh(ctx context.Context, cred credstore.Credential) Result {
	res := Result{ShopNumber: cred.ShopNumber, ShopName: cred.ShopName}

	params := url.Values{}
	params.Set("app_key", s.appKey)
	params.Set("app_secret", s.appSecret)
	params.Set("grant_type", "refresh_token")
	params.Set("refresh_token", cred.RefreshToken)

	reqURL := fmt.Sprintf("%s%s?%s", s.authBaseURL, refreshEndpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		res.Error = fmt.Sprintf("build request: %v", err)
		return res
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		res.Error = fmt.Sprintf("request failed: %v", err)
		return res
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		res.Error = fmt.Sprintf("read response: %v", err)
		return res
	}

	var parsed refreshResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		res.Error = fmt.Sprintf("malformed response: %v", err)
		return res
	}
	if msg := parsed.errMessage(); msg != "" {
		res.Error = msg
		return res
	}

	payload := parsed.payload()
	if payload.AccessToken == "" {
		res.Error = "invalid response format from token endpoint"
		return res
	}

	newAccess := payload.AccessToken
	// Upstream does not always rotate the refresh token; keep the old
	// one when it is omitted.
	newRefresh := payload.RefreshToken
	if newRefresh == "" {
		newRefresh = cred.RefreshToken
	}

	accessExp := normalizeExpiry(firstNumber(payload.AccessTokenExpireIn, payload.ExpiresIn))
	refreshExp := normalizeExpiry(firstNumber(payload.RefreshTokenExpireIn, payload.RefreshExpiresIn))

	if err := s.store.UpdateTokens(ctx, cred.ShopNumber, newAccess, newRefresh, accessExp, refreshExp); err != nil {
		res.Error = fmt.Sprintf("persist rotated tokens: %v", err)
		return res
	}

	res.Success = true
	res.NewAccessToken = newAccess
	res.NewRefreshToken = newRefresh
	logger.Info("token refreshed",
		"shop_number", cred.ShopNumber,
		"shop_name", cred.ShopName,
		"access_token", newAccess)
	return res
}

// RefreshAll refreshes every shop in the store concurrently. A missing
// app key/secret is a fatal precondition checked before any account; a
// failing account never blocks the others.
func (s *Service) RefreshAll(ctx context.Context) (*Summary, error) {
	if s.appKey == "" || s.appSecret == "" {
		return nil, fmt.Errorf("missing app_key or app_secret")
	}

	creds, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	if len(creds) == 0 {
		return nil, fmt.Errorf("no shops found in credential store; run cmd/populate first")
	}

	summary := &Summary{
		RunID:   uuid.New().String(),
		Total:   len(creds),
		Results: make([]Result, len(creds)),
	}

	start := time.Now()
	var wg sync.WaitGroup
	for i, cred := range creds {
		wg.Add(1)
		go func(i int, cred credstore.Credential) {
			defer wg.Done()
			summary.Results[i] = s.Refresh(ctx, cred)
		}(i, cred)
	}
	wg.Wait()

	sort.Slice(summary.Results, func(i, j int) bool {
		return summary.Results[i].ShopNumber < summary.Results[j].ShopNumber
	})
	for _, r := range summary.Results {
		if r.Success {
			summary.Successful++
		} else {
			summary.Failed++
		}
	}

	logger.Info("batch token refresh complete",
		"run_id", summary.RunID,
		"total", summary.Total,
		"successful", summary.Successful,
		"failed", summary.Failed,
		"elapsed", time.Since(start).String())
	return summary, nil
}

// normalizeExpiry converts an upstream expiry value to Unix seconds.
// Values above 10^10 are milliseconds.
func normalizeExpiry(v int64) int64 {
	if v > millisThreshold {
		return v / 1000
	}
	return v
}

// firstNumber returns the first parseable non-zero value.
func firstNumber(nums ...json.Number) int64 {
	for _, n := range nums {
		if v, err := n.Int64(); err == nil && v != 0 {
			return v
		}
	}
	return 0
}
