// Package ads implements the TikTok Business API client and the
// aggregation pipeline for GMV-Max and manual campaign performance.
package ads

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hpgroup/marketplace-analytics/internal/config"
	"github.com/hpgroup/marketplace-analytics/internal/pkg/httpretry"
	"github.com/hpgroup/marketplace-analytics/internal/pkg/logger"
)

const (
	campaignPath   = "/gmv_max/campaign/get/"
	gmvMaxPath     = "/gmv_max/report/get/"
	integratedPath = "/report/integrated/get/"

	campaignPageSize = 100
	reportPageSize   = 1000

	// Safety cap so a buggy total_page cannot loop forever.
	maxPages = 100
)

// Client calls the Business API. The access token is per-advertiser and
// supplied per call; the client itself is shared.
type Client struct {
	baseURL    string
	version    string
	pageDelay  time.Duration
	httpClient httpretry.HTTPDoer
}

// NewClient creates a Business API client from configuration.
func NewClient(cfg config.AdsAPIConfig) *Client {
	return &Client{
		baseURL:   cfg.BaseURL,
		version:   cfg.Version,
		pageDelay: cfg.PageDelay(),
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: cfg.Timeout(),
		}, 3),
	}
}

// SetHTTPClient sets a custom HTTP client (useful for testing)
func (c *Client) SetHTTPClient(client httpretry.HTTPDoer) {
	c.httpClient = client
}

// SetPageDelay overrides the inter-page pacing delay (useful for testing)
func (c *Client) SetPageDelay(d time.Duration) {
	c.pageDelay = d
}

func (c *Client) doGet(ctx context.Context, accessToken, path string, params url.Values, out any) error {
	reqURL := fmt.Sprintf("%s/open_api/%s%s?%s", c.baseURL, c.version, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Access-Token", accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d: %s", path, resp.StatusCode, string(raw))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// GetCampaigns fetches every GMV-Max campaign of the given promotion
// type for an advertiser, keyed by campaign ID. Account attribution is
// parsed from the campaign name as part of the walk.
func (c *Client) GetCampaigns(ctx context.Context, accessToken, advertiserID string, promotionType PromotionType) (map[string]Campaign, error) {
	filtering, _ := json.Marshal(map[string][]PromotionType{
		"gmv_max_promotion_types": {promotionType},
	})

	campaigns := make(map[string]Campaign)
	for page := 1; page <= maxPages; page++ {
		params := url.Values{}
		params.Set("advertiser_id", advertiserID)
		params.Set("filtering", string(filtering))
		params.Set("page", strconv.Itoa(page))
		params.Set("page_size", strconv.Itoa(campaignPageSize))

		var resp campaignListResponse
		if err := c.doGet(ctx, accessToken, campaignPath, params, &resp); err != nil {
			return campaigns, err
		}
		if resp.Code != 0 {
			return campaigns, fmt.Errorf("campaign list failed (code %d): %s", resp.Code, resp.Message)
		}

		for _, item := range resp.Data.List {
			campaigns[item.CampaignID] = Campaign{
				ID:          item.CampaignID,
				Name:        item.CampaignName,
				AccountName: ExtractAccountName(item.CampaignName),
			}
		}

		totalPages := resp.Data.PageInfo.TotalPage
		if totalPages == 0 {
			totalPages = 1
		}
		if page >= totalPages {
			break
		}
	}
	return campaigns, nil
}

// GMVMaxReportQuery describes one GMV-Max report request.
type GMVMaxReportQuery struct {
	AdvertiserID  string
	StoreID       string
	PromotionType PromotionType
	Dimensions    []string
	Metrics       []string
	// CampaignIDs, when non-empty, narrows the report to those campaigns.
	CampaignIDs []string
	StartDate   string
	EndDate     string
}

// GetGMVMaxReport fetches a GMV-Max performance report. The endpoint
// serves the full window in a single page at this page size.
func (c *Client) GetGMVMaxReport(ctx context.Context, accessToken string, q GMVMaxReportQuery) ([]ReportRow, error) {
	storeIDs, _ := json.Marshal([]string{q.StoreID})
	dimensions, _ := json.Marshal(q.Dimensions)
	metrics, _ := json.Marshal(q.Metrics)

	params := url.Values{}
	params.Set("advertiser_id", q.AdvertiserID)
	params.Set("store_ids", string(storeIDs))
	if q.PromotionType != "" {
		params.Set("gmv_max_promotion_type", string(q.PromotionType))
	}
	params.Set("dimensions", string(dimensions))
	params.Set("metrics", string(metrics))
	params.Set("start_date", q.StartDate)
	params.Set("end_date", q.EndDate)
	params.Set("page_size", strconv.Itoa(reportPageSize))
	if len(q.CampaignIDs) > 0 {
		filtering, _ := json.Marshal(map[string][]string{"campaign_ids": q.CampaignIDs})
		params.Set("filtering", string(filtering))
	}

	var resp reportResponse
	if err := c.doGet(ctx, accessToken, gmvMaxPath, params, &resp); err != nil {
		return nil, err
	}
	if resp.Code != 0 {
		return nil, fmt.Errorf("gmv max report failed (code %d): %s", resp.Code, resp.Message)
	}
	return resp.Data.List, nil
}

// GetIntegratedReport fetches the auction campaign report for an
// advertiser, walking every page. The endpoint rate-limits hard, so
// successive pages are paced by the configured delay. A failure mid-walk
// returns the rows accumulated so far together with the error.
func (c *Client) GetIntegratedReport(ctx context.Context, accessToken, advertiserID, startDate, endDate string, metricNames []string) ([]ReportRow, error) {
	dimensions, _ := json.Marshal([]string{"stat_time_day", "campaign_id"})
	metrics, _ := json.Marshal(metricNames)

	var rows []ReportRow
	for page := 1; page <= maxPages; page++ {
		if page > 1 && c.pageDelay > 0 {
			timer := time.NewTimer(c.pageDelay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return rows, ctx.Err()
			}
		}

		params := url.Values{}
		params.Set("advertiser_id", advertiserID)
		params.Set("report_type", "BASIC")
		params.Set("data_level", "AUCTION_CAMPAIGN")
		params.Set("dimensions", string(dimensions))
		params.Set("metrics", string(metrics))
		params.Set("start_date", startDate)
		params.Set("end_date", endDate)
		params.Set("page", strconv.Itoa(page))
		params.Set("page_size", strconv.Itoa(reportPageSize))

		var resp reportResponse
		if err := c.doGet(ctx, accessToken, integratedPath, params, &resp); err != nil {
			return rows, err
		}
		if resp.Code != 0 {
			return rows, fmt.Errorf("integrated report failed (code %d): %s", resp.Code, resp.Message)
		}

		rows = append(rows, resp.Data.List...)

		totalPages := resp.Data.PageInfo.TotalPage
		if totalPages == 0 {
			totalPages = 1
		}
		if page >= totalPages {
			logger.Debug("integrated report complete",
				"advertiser_id", advertiserID,
				"pages", page,
				"rows", len(rows))
			return rows, nil
		}
	}
	return rows, fmt.Errorf("integrated report exceeded %d pages", maxPages)
}

// GMVMaxCampaignIDs returns the union of campaign IDs across both
// promotion types for an advertiser. Manual spend is defined by
// exclusion against this set.
func (c *Client) GMVMaxCampaignIDs(ctx context.Context, accessToken, advertiserID string) (map[string]struct{}, error) {
	ids := make(map[string]struct{})
	for _, pt := range []PromotionType{PromotionProduct, PromotionLive} {
		campaigns, err := c.GetCampaigns(ctx, accessToken, advertiserID, pt)
		if err != nil {
			return nil, fmt.Errorf("list %s campaigns: %w", pt, err)
		}
		for id := range campaigns {
			ids[id] = struct{}{}
		}
	}
	return ids, nil
}
