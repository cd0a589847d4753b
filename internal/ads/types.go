package ads

import (
	"encoding/json"
	"strconv"
)

// PromotionType selects a GMV-Max campaign family.
type PromotionType string

const (
	PromotionLive    PromotionType = "LIVE_GMV_MAX"
	PromotionProduct PromotionType = "PRODUCT_GMV_MAX"
)

// Valid reports whether the value is one of the known promotion types.
func (p PromotionType) Valid() bool {
	return p == PromotionLive || p == PromotionProduct
}

// Campaign is one GMV-Max campaign with its parsed account attribution.
type Campaign struct {
	ID          string `json:"campaignId"`
	Name        string `json:"campaignName"`
	AccountName string `json:"accountName"`
}

// ReportRow is one row of a report response. The API keys both maps by
// the requested dimension/metric names and serializes most values as
// strings, but numeric identifiers occasionally arrive as JSON numbers,
// so values are decoded loosely and normalized through the accessors.
type ReportRow struct {
	Dimensions map[string]any `json:"dimensions"`
	Metrics    map[string]any `json:"metrics"`
}

// Dimension returns the named dimension as a string.
func (r ReportRow) Dimension(key string) string {
	return asString(r.Dimensions[key])
}

// Metric returns the named metric as a string.
func (r ReportRow) Metric(key string) string {
	return asString(r.Metrics[key])
}

// MetricFloat returns the named metric as a float, zero when the
// metric is absent or malformed.
func (r ReportRow) MetricFloat(key string) float64 {
	v, _ := strconv.ParseFloat(asString(r.Metrics[key]), 64)
	return v
}

// MetricInt returns the named metric as an integer, zero when the
// metric is absent or malformed.
func (r ReportRow) MetricInt(key string) int64 {
	s := asString(r.Metrics[key])
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	// Some count metrics arrive with a decimal point.
	v, _ := strconv.ParseFloat(s, 64)
	return int64(v)
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

type pageInfo struct {
	Page        int `json:"page"`
	PageSize    int `json:"page_size"`
	TotalPage   int `json:"total_page"`
	TotalNumber int `json:"total_number"`
}

type campaignListResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		List []struct {
			CampaignID   string `json:"campaign_id"`
			CampaignName string `json:"campaign_name"`
		} `json:"list"`
		PageInfo pageInfo `json:"page_info"`
	} `json:"data"`
}

type reportResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		List     []ReportRow `json:"list"`
		PageInfo pageInfo    `json:"page_info"`
	} `json:"data"`
}
