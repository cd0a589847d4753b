package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hpgroup/marketplace-analytics/internal/ads"
	"github.com/hpgroup/marketplace-analytics/internal/config"
	"github.com/hpgroup/marketplace-analytics/internal/credstore"
	"github.com/hpgroup/marketplace-analytics/internal/roas"
	"github.com/hpgroup/marketplace-analytics/internal/shop"
	"github.com/hpgroup/marketplace-analytics/internal/tokens"
)

// memStore is an in-memory credstore.Store for handler tests.
type memStore struct {
	creds map[int]*credstore.Credential
}

func (s *memStore) Get(ctx context.Context, shopNumber int) (*credstore.Credential, error) {
	c, ok := s.creds[shopNumber]
	if !ok {
		return nil, credstore.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *memStore) List(ctx context.Context) ([]credstore.Credential, error) {
	var out []credstore.Credential
	for _, c := range s.creds {
		out = append(out, *c)
	}
	return out, nil
}

func (s *memStore) Upsert(ctx context.Context, c *credstore.Credential) error {
	s.creds[c.ShopNumber] = c
	return nil
}

func (s *memStore) UpdateTokens(ctx context.Context, shopNumber int, accessToken, refreshToken string, accessExp, refreshExp int64) error {
	c, ok := s.creds[shopNumber]
	if !ok {
		return credstore.ErrNotFound
	}
	c.AccessToken = accessToken
	c.RefreshToken = refreshToken
	return nil
}

// upstream fakes every external endpoint the handlers reach.
func upstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/order/202309/orders/search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":0,"message":"ok","data":{"orders":[
			{"id":"o1","status":"COMPLETED","buyer_user_id":"b1",
			 "line_items":[{"sale_price":"100.00","platform_discount":"10.00"}]},
			{"id":"o2","status":"CANCELLED","buyer_user_id":"b2",
			 "line_items":[{"sale_price":"50.00"}]}
		],"next_page_token":""}}`)
	})

	mux.HandleFunc("/open_api/v1.3/gmv_max/campaign/get/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":0,"data":{"list":[
			{"campaign_id":"c1","campaign_name":"[Alpha] One"}
		],"page_info":{"page":1,"total_page":1}}}`)
	})

	mux.HandleFunc("/open_api/v1.3/gmv_max/report/get/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":0,"data":{"list":[
			{"dimensions":{"campaign_id":"c1","stat_time_day":"2024-01-15"},
			 "metrics":{"cost":"50.00","gross_revenue":"200.00","orders":"4"}},
			{"dimensions":{"campaign_id":"leaked","stat_time_day":"2024-01-15"},
			 "metrics":{"cost":"500.00","gross_revenue":"5000.00","orders":"50"}}
		],"page_info":{"page":1,"total_page":1}}}`)
	})

	mux.HandleFunc("/open_api/v1.3/report/integrated/get/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":0,"data":{"list":[
			{"dimensions":{"campaign_id":"m1","stat_time_day":"2024-01-15"},
			 "metrics":{"spend":"80.00","billed_cost":"88.00","impressions":"8000","clicks":"160"}},
			{"dimensions":{"campaign_id":"c1","stat_time_day":"2024-01-15"},
			 "metrics":{"spend":"999.00","billed_cost":"999.00","impressions":"1","clicks":"1"}}
		],"page_info":{"page":1,"total_page":1}}}`)
	})

	mux.HandleFunc("/api/v2/token/refresh", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"access_token":"rotated","refresh_token":"rotated-r"}}`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	up := upstream(t)
	t.Setenv("TEST_API_ADS_TOKEN", "ads-tok")

	cfg := &config.Config{
		ShopAPI: config.ShopAPIConfig{
			BaseURL:        up.URL,
			AuthBaseURL:    up.URL,
			Version:        "202309",
			AppKey:         "k",
			AppSecret:      "s",
			TimeoutSeconds: 5,
		},
		AdsAPI: config.AdsAPIConfig{
			BaseURL:         up.URL,
			Version:         "v1.3",
			TimeoutSeconds:  5,
			PageDelayMillis: 1,
		},
		Shops: []config.ShopAccount{{
			Number:       1,
			Name:         "Test Shop",
			ShopID:       "sid-1",
			AdvertiserID: "adv-1",
			AdsTokenEnv:  "TEST_API_ADS_TOKEN",
			HasGMVMax:    true,
		}},
	}

	store := &memStore{creds: map[int]*credstore.Credential{
		1: {ShopNumber: 1, ShopName: "Test Shop", ShopID: "sid-1",
			AccessToken: "acc", RefreshToken: "ref", ShopCipher: "cipher"},
	}}
	resolver := credstore.NewResolver(store, cfg.Shops)

	shopClient := shop.NewClient(cfg.ShopAPI)
	shopClient.SetHTTPClient(http.DefaultClient)
	adsClient := ads.NewClient(cfg.AdsAPI)
	adsClient.SetHTTPClient(http.DefaultClient)
	tokenService := tokens.NewService(cfg.ShopAPI, store)
	tokenService.SetHTTPClient(http.DefaultClient)
	roasService := roas.NewService(cfg, adsClient, shopClient, resolver)

	return SetupRoutes(NewHandlers(cfg, shopClient, adsClient, resolver, tokenService, roasService))
}

func doRequest(t *testing.T, router http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, rec.Body.String())
	}
}

func TestHealthCheck(t *testing.T) {
	rec := doRequest(t, testRouter(t), http.MethodGet, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]any
	decodeBody(t, rec, &body)
	if body["status"] != "healthy" {
		t.Errorf("unexpected health body: %v", body)
	}
}

func TestGetShopGMVNet(t *testing.T) {
	rec := doRequest(t, testRouter(t), http.MethodGet, "/api/shop/gmv?startDate=2024-01-15&endDate=2024-01-15")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body GMVResponse
	decodeBody(t, rec, &body)
	if body.GMV != 110.00 {
		t.Errorf("expected net GMV 110.00 (cancelled excluded, discount added), got %.2f", body.GMV)
	}
	if body.OrderCount != 1 || body.TotalOrderCount != 2 {
		t.Errorf("unexpected counts: %d/%d", body.OrderCount, body.TotalOrderCount)
	}
}

func TestGetShopGMVGross(t *testing.T) {
	rec := doRequest(t, testRouter(t), http.MethodGet, "/api/shop/gmv/gross?startDate=2024-01-15&endDate=2024-01-15")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body GMVResponse
	decodeBody(t, rec, &body)
	if body.GMV != 150.00 {
		t.Errorf("expected gross GMV 150.00 (everything at sale price), got %.2f", body.GMV)
	}
}

func TestGetShopGMVLoneDateParam(t *testing.T) {
	rec := doRequest(t, testRouter(t), http.MethodGet, "/api/shop/gmv?startDate=2024-01-15")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for lone startDate, got %d", rec.Code)
	}
}

func TestGetGMVMaxReconciles(t *testing.T) {
	rec := doRequest(t, testRouter(t), http.MethodGet,
		"/api/ads/gmv-max?startDate=2024-01-01&endDate=2024-01-31&promotion_type=PRODUCT_GMV_MAX")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body GMVMaxResponse
	decodeBody(t, rec, &body)
	if body.Cost != 50.00 || body.GMV != 200.00 {
		t.Errorf("leaked row must be dropped: cost %.2f gmv %.2f", body.Cost, body.GMV)
	}
	if len(body.Accounts) != 1 || body.Accounts[0].Name != "Alpha" {
		t.Errorf("unexpected account breakdown: %+v", body.Accounts)
	}
}

func TestGetGMVMaxRejectsBadPromotionType(t *testing.T) {
	rec := doRequest(t, testRouter(t), http.MethodGet,
		"/api/ads/gmv-max?startDate=2024-01-01&endDate=2024-01-31&promotion_type=BANNER")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown promotion type, got %d", rec.Code)
	}
}

func TestGetManualSpendExcludesGMVMax(t *testing.T) {
	rec := doRequest(t, testRouter(t), http.MethodGet,
		"/api/ads/manual-spend?startDate=2024-01-01&endDate=2024-01-31")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body ManualSpendResponse
	decodeBody(t, rec, &body)
	if body.TotalSpend != 80.00 {
		t.Errorf("expected GMV-Max campaign excluded from spend, got %.2f", body.TotalSpend)
	}
	if body.CampaignCount != 1 {
		t.Errorf("expected 1 manual campaign, got %d", body.CampaignCount)
	}
}

func TestGetROASComposes(t *testing.T) {
	rec := doRequest(t, testRouter(t), http.MethodGet,
		"/api/roas?startDate=2024-01-01&endDate=2024-01-31")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body roas.Result
	decodeBody(t, rec, &body)
	// Live and product report the same reconciled 50.00; max keeps 50.
	if body.GMVMaxCost != 50.00 {
		t.Errorf("expected gmvMaxCost 50.00, got %.2f", body.GMVMaxCost)
	}
	if body.ManualCampaignSpend != 80.00 {
		t.Errorf("expected manual spend 80.00, got %.2f", body.ManualCampaignSpend)
	}
	if body.TotalAdsSpend != 130.00 {
		t.Errorf("expected total spend 130.00, got %.2f", body.TotalAdsSpend)
	}
	if body.GMV != 150.00 {
		t.Errorf("expected gross GMV 150.00, got %.2f", body.GMV)
	}
	if len(body.Errors) != 0 {
		t.Errorf("expected no degraded components, got %v", body.Errors)
	}
}

func TestRefreshTokensEndpoint(t *testing.T) {
	rec := doRequest(t, testRouter(t), http.MethodPost, "/api/tokens/refresh")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body tokens.Summary
	decodeBody(t, rec, &body)
	if body.Total != 1 || body.Successful != 1 {
		t.Errorf("expected 1/1 refresh, got %d/%d", body.Total, body.Successful)
	}
}
