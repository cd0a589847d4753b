// Package shop implements the TikTok Shop open API client: signed
// order search with pagination and GMV aggregation over the results.
package shop

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hpgroup/marketplace-analytics/internal/config"
	"github.com/hpgroup/marketplace-analytics/internal/credstore"
	"github.com/hpgroup/marketplace-analytics/internal/pkg/httpretry"
	"github.com/hpgroup/marketplace-analytics/internal/pkg/logger"
)

const (
	orderSearchPath = "/order/202309/orders/search"
	orderPageSize   = 50

	// Upstream opaque page tokens could in principle loop; cap the walk.
	maxOrderPages = 200
)

// Client calls the Shop open API on behalf of one developer app.
type Client struct {
	baseURL    string
	version    string
	appKey     string
	appSecret  string
	httpClient httpretry.HTTPDoer
}

// NewClient creates a Shop API client from configuration.
func NewClient(cfg config.ShopAPIConfig) *Client {
	return &Client{
		baseURL:   cfg.BaseURL,
		version:   cfg.Version,
		appKey:    cfg.AppKey,
		appSecret: cfg.AppSecret,
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: cfg.Timeout(),
		}, 3),
	}
}

// SetHTTPClient sets a custom HTTP client (useful for testing)
func (c *Client) SetHTTPClient(client httpretry.HTTPDoer) {
	c.httpClient = client
}

// SearchOrders fetches every order created inside the window, following
// next_page_token until the upstream stops returning one. On an
// upstream error mid-walk it returns the orders accumulated so far
// together with the error, so callers can degrade instead of losing the
// whole window.
func (c *Client) SearchOrders(ctx context.Context, cred *credstore.Credential, window Window) ([]Order, error) {
	body, err := json.Marshal(window)
	if err != nil {
		return nil, fmt.Errorf("marshal window: %w", err)
	}

	var (
		orders    []Order
		pageToken string
	)
	for page := 1; page <= maxOrderPages; page++ {
		resp, err := c.searchPage(ctx, cred, body, pageToken)
		if err != nil {
			return orders, err
		}
		orders = append(orders, resp.Data.Orders...)
		if resp.Data.NextPageToken == "" {
			logger.Debug("order search complete",
				"shop_number", cred.ShopNumber,
				"pages", page,
				"orders", len(orders))
			return orders, nil
		}
		pageToken = resp.Data.NextPageToken
	}
	return orders, fmt.Errorf("order search exceeded %d pages", maxOrderPages)
}

func (c *Client) searchPage(ctx context.Context, cred *credstore.Credential, body []byte, pageToken string) (*orderSearchResponse, error) {
	params := url.Values{}
	params.Set("access_token", cred.AccessToken)
	params.Set("app_key", c.appKey)
	params.Set("shop_id", cred.ShopID)
	params.Set("shop_cipher", cred.ShopCipher)
	params.Set("version", c.version)
	params.Set("page_size", strconv.Itoa(orderPageSize))
	params.Set("timestamp", strconv.FormatInt(time.Now().Unix(), 10))
	if pageToken != "" {
		params.Set("page_token", pageToken)
	}
	params.Set("sign", Sign(c.appSecret, orderSearchPath, params, body))

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, orderSearchPath, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-tts-access-token", cred.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("order search request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("order search returned status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed orderSearchResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if parsed.Code != 0 {
		return nil, fmt.Errorf("order search failed (code %d): %s", parsed.Code, parsed.Message)
	}
	return &parsed, nil
}
