// Package roas composes GMV and ad spend into return-on-ad-spend
// metrics, including the Malaysian SST and WHT loading on ad cost.
package roas

// Tax rates applied on top of ad spend. SST is charged by the platform,
// WHT is remitted separately; both are 8% of the spend.
const (
	sstRate = 0.08
	whtRate = 0.08
)

// Result is the composed ROAS snapshot for one shop and window.
type Result struct {
	ShopName            string    `json:"shopName"`
	GMV                 float64   `json:"gmv"`
	LiveGMVMaxCost      float64   `json:"liveGMVMaxCost"`
	ProductGMVMaxCost   float64   `json:"productGMVMaxCost"`
	GMVMaxCost          float64   `json:"gmvMaxCost"`
	ManualCampaignSpend float64   `json:"manualCampaignSpend"`
	TotalAdsSpend       float64   `json:"totalAdsSpend"`
	SST                 float64   `json:"sst"`
	WHT                 float64   `json:"wht"`
	TotalCostWithTaxes  float64   `json:"totalCostWithTaxes"`
	ROAS                float64   `json:"roas"`
	ActualROAS          float64   `json:"actualRoas"`
	Currency            string    `json:"currency"`
	DateRange           DateRange `json:"dateRange"`
	// Errors lists the components that degraded to zero this run.
	Errors []string `json:"errors,omitempty"`
}

// DateRange echoes the requested window.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Compose derives every spend and ROAS figure from the four inputs.
// GMV-Max cost takes the larger of the live and product figures, not
// their sum: the report endpoint double-reports campaigns across the
// two promotion types and finance signed off on max() as the
// reconciliation rule.
func Compose(gmv, liveCost, productCost, manualSpend float64) Result {
	gmvMaxCost := liveCost
	if productCost > gmvMaxCost {
		gmvMaxCost = productCost
	}

	totalAdsSpend := gmvMaxCost + manualSpend
	sst := totalAdsSpend * sstRate
	wht := totalAdsSpend * whtRate
	totalCostWithTaxes := totalAdsSpend + sst + wht

	r := Result{
		GMV:                 gmv,
		LiveGMVMaxCost:      liveCost,
		ProductGMVMaxCost:   productCost,
		GMVMaxCost:          gmvMaxCost,
		ManualCampaignSpend: manualSpend,
		TotalAdsSpend:       totalAdsSpend,
		SST:                 sst,
		WHT:                 wht,
		TotalCostWithTaxes:  totalCostWithTaxes,
	}
	if totalAdsSpend > 0 {
		r.ROAS = gmv / totalAdsSpend
	}
	if totalCostWithTaxes > 0 {
		r.ActualROAS = gmv / totalCostWithTaxes
	}
	return r
}
