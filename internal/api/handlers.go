// Package api exposes the dashboard's HTTP surface over chi.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/hpgroup/marketplace-analytics/internal/ads"
	"github.com/hpgroup/marketplace-analytics/internal/config"
	"github.com/hpgroup/marketplace-analytics/internal/credstore"
	"github.com/hpgroup/marketplace-analytics/internal/pkg/httputil"
	"github.com/hpgroup/marketplace-analytics/internal/roas"
	"github.com/hpgroup/marketplace-analytics/internal/shop"
	"github.com/hpgroup/marketplace-analytics/internal/tokens"
)

// Handlers carries every dependency the HTTP surface needs.
type Handlers struct {
	cfg          *config.Config
	shopClient   *shop.Client
	adsClient    *ads.Client
	resolver     *credstore.Resolver
	tokenService *tokens.Service
	roasService  *roas.Service
}

// NewHandlers creates the handler set.
func NewHandlers(
	cfg *config.Config,
	shopClient *shop.Client,
	adsClient *ads.Client,
	resolver *credstore.Resolver,
	tokenService *tokens.Service,
	roasService *roas.Service,
) *Handlers {
	return &Handlers{
		cfg:          cfg,
		shopClient:   shopClient,
		adsClient:    adsClient,
		resolver:     resolver,
		tokenService: tokenService,
		roasService:  roasService,
	}
}

// HealthCheck reports service liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]any{
		"status":    "healthy",
		"service":   "marketplace-analytics",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// dateRange echoes the requested window in responses.
type dateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// parseDates reads startDate/endDate query params. Both empty is
// allowed (defaults to today); exactly one empty is not.
func parseDates(r *http.Request) (string, string, bool) {
	start := r.URL.Query().Get("startDate")
	end := r.URL.Query().Get("endDate")
	if (start == "") != (end == "") {
		return "", "", false
	}
	return start, end, true
}

// parseShopNumber reads the shopNumber query param, defaulting to 1.
func parseShopNumber(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("shopNumber")
	if raw == "" {
		return 1, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
