package api

import (
	"net/http"

	"github.com/hpgroup/marketplace-analytics/internal/ads"
	"github.com/hpgroup/marketplace-analytics/internal/pkg/httputil"
)

// GMVMaxResponse is the reconciled GMV-Max report for one promotion type.
type GMVMaxResponse struct {
	ShopName      string                  `json:"shopName"`
	PromotionType ads.PromotionType       `json:"promotionType"`
	GMV           float64                 `json:"gmv"`
	Cost          float64                 `json:"cost"`
	ROI           float64                 `json:"roi"`
	OrderCount    int64                   `json:"orderCount"`
	CampaignCount int                     `json:"campaignCount"`
	Currency      string                  `json:"currency"`
	DateRange     dateRange               `json:"dateRange"`
	Accounts      []ads.AccountBreakdown  `json:"accounts"`
	Campaigns     []ads.CampaignBreakdown `json:"campaigns"`
}

// GetGMVMax returns the reconciled GMV-Max performance report for one
// promotion type: report rows are filtered against the campaign list
// because the report endpoint leaks rows across promotion types.
func (h *Handlers) GetGMVMax(w http.ResponseWriter, r *http.Request) {
	startDate, endDate, ok := parseDates(r)
	if !ok || startDate == "" {
		httputil.BadRequest(w, "startDate and endDate are required")
		return
	}
	promotionType := ads.PromotionType(r.URL.Query().Get("promotion_type"))
	if !promotionType.Valid() {
		httputil.BadRequest(w, "promotion_type must be PRODUCT_GMV_MAX or LIVE_GMV_MAX")
		return
	}
	shopNumber, ok := parseShopNumber(r)
	if !ok {
		httputil.BadRequest(w, "invalid shopNumber")
		return
	}

	acct, found := h.cfg.FindShop(shopNumber)
	if !found {
		httputil.BadRequest(w, "unknown shopNumber")
		return
	}
	if !acct.HasGMVMax {
		httputil.BadRequest(w, "shop does not run GMV-Max campaigns")
		return
	}
	token := acct.AdsAccessToken()
	if token == "" {
		httputil.Error(w, http.StatusInternalServerError, "ads access token not configured for "+acct.Name)
		return
	}

	campaigns, err := h.adsClient.GetCampaigns(r.Context(), token, acct.AdvertiserID, promotionType)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	rows, err := h.adsClient.GetGMVMaxReport(r.Context(), token, ads.GMVMaxReportQuery{
		AdvertiserID:  acct.AdvertiserID,
		StoreID:       acct.ShopID,
		PromotionType: promotionType,
		Dimensions:    []string{"stat_time_day", "campaign_id"},
		Metrics:       []string{"cost", "orders", "gross_revenue", "roi", "cost_per_order", "net_cost"},
		StartDate:     startDate,
		EndDate:       endDate,
	})
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	summary := ads.AggregateGMVMax(rows, campaigns)
	httputil.OK(w, GMVMaxResponse{
		ShopName:      acct.Name,
		PromotionType: promotionType,
		GMV:           summary.GMV,
		Cost:          summary.Cost,
		ROI:           summary.ROI,
		OrderCount:    summary.OrderCount,
		CampaignCount: summary.CampaignCount,
		Currency:      "MYR",
		DateRange:     dateRange{Start: startDate, End: endDate},
		Accounts:      summary.Accounts,
		Campaigns:     summary.Campaigns,
	})
}

// GetLiveRooms returns the per-livestream breakdown of one LIVE
// GMV-Max campaign.
func (h *Handlers) GetLiveRooms(w http.ResponseWriter, r *http.Request) {
	startDate, endDate, ok := parseDates(r)
	if !ok || startDate == "" {
		httputil.BadRequest(w, "startDate and endDate are required")
		return
	}
	campaignID := r.URL.Query().Get("campaignId")
	if campaignID == "" {
		httputil.BadRequest(w, "campaignId is required")
		return
	}
	shopNumber, ok := parseShopNumber(r)
	if !ok {
		httputil.BadRequest(w, "invalid shopNumber")
		return
	}

	acct, found := h.cfg.FindShop(shopNumber)
	if !found {
		httputil.BadRequest(w, "unknown shopNumber")
		return
	}
	if !acct.HasGMVMax {
		httputil.BadRequest(w, "shop does not run GMV-Max campaigns")
		return
	}
	token := acct.AdsAccessToken()
	if token == "" {
		httputil.Error(w, http.StatusInternalServerError, "ads access token not configured for "+acct.Name)
		return
	}

	rows, err := h.adsClient.GetGMVMaxReport(r.Context(), token, ads.GMVMaxReportQuery{
		AdvertiserID:  acct.AdvertiserID,
		StoreID:       acct.ShopID,
		PromotionType: ads.PromotionLive,
		Dimensions:    []string{"room_id", "stat_time_day"},
		Metrics: []string{
			"live_name", "live_status", "live_launched_time", "live_duration",
			"cost", "net_cost", "orders", "cost_per_order", "gross_revenue", "roi",
			"live_views", "cost_per_live_view",
			"10_second_live_views", "cost_per_10_second_live_view", "live_follows",
		},
		CampaignIDs: []string{campaignID},
		StartDate:   startDate,
		EndDate:     endDate,
	})
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	sessions := ads.LiveSessions(rows)
	if sessions == nil {
		sessions = []ads.LiveSession{}
	}
	httputil.OK(w, map[string]any{
		"campaignId":   campaignID,
		"liveSessions": sessions,
	})
}

// ManualSpendResponse is the manual (non GMV-Max) campaign spend
// summary for one advertiser account.
type ManualSpendResponse struct {
	ShopName  string    `json:"shopName"`
	Currency  string    `json:"currency"`
	DateRange dateRange `json:"dateRange"`
	ads.SpendSummary
	// Error is set when the report walk aborted and the totals cover
	// only the pages fetched before the failure.
	Error string `json:"error,omitempty"`
}

// GetManualSpend returns aggregate spend of manually managed campaigns,
// defined by exclusion against the GMV-Max campaign set.
func (h *Handlers) GetManualSpend(w http.ResponseWriter, r *http.Request) {
	startDate, endDate, ok := parseDates(r)
	if !ok || startDate == "" {
		httputil.BadRequest(w, "startDate and endDate are required")
		return
	}
	shopNumber, ok := parseShopNumber(r)
	if !ok {
		httputil.BadRequest(w, "invalid shopNumber")
		return
	}

	acct, found := h.cfg.FindShop(shopNumber)
	if !found {
		httputil.BadRequest(w, "unknown shopNumber")
		return
	}
	token := acct.AdsAccessToken()
	if token == "" {
		httputil.Error(w, http.StatusInternalServerError, "ads access token not configured for "+acct.Name)
		return
	}

	ids, err := h.adsClient.GMVMaxCampaignIDs(r.Context(), token, acct.AdvertiserID)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	rows, reportErr := h.adsClient.GetIntegratedReport(r.Context(), token, acct.AdvertiserID,
		startDate, endDate,
		[]string{"spend", "billed_cost", "impressions", "clicks", "cpm", "cpc", "ctr"})
	if reportErr != nil && len(rows) == 0 {
		httputil.InternalError(w, reportErr)
		return
	}

	resp := ManualSpendResponse{
		ShopName:     acct.Name,
		Currency:     "MYR",
		DateRange:    dateRange{Start: startDate, End: endDate},
		SpendSummary: ads.ManualSpend(rows, ids),
	}
	if reportErr != nil {
		resp.Error = reportErr.Error()
	}
	httputil.OK(w, resp)
}
