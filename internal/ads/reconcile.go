package ads

import (
	"fmt"
	"sort"
)

// AccountBreakdown is per-account GMV-Max performance.
type AccountBreakdown struct {
	Name      string  `json:"name"`
	Cost      float64 `json:"cost"`
	GMV       float64 `json:"gmv"`
	Orders    int64   `json:"orders"`
	Campaigns int     `json:"campaigns"`
	ROI       float64 `json:"roi"`
}

// CampaignBreakdown is per-campaign GMV-Max performance.
type CampaignBreakdown struct {
	CampaignID   string  `json:"campaignId"`
	CampaignName string  `json:"campaignName"`
	AccountName  string  `json:"accountName"`
	Cost         float64 `json:"cost"`
	GMV          float64 `json:"gmv"`
	Orders       int64   `json:"orders"`
	ROI          float64 `json:"roi"`
}

// GMVMaxSummary is the aggregated GMV-Max performance for one promotion
// type over a window.
type GMVMaxSummary struct {
	GMV           float64             `json:"gmv"`
	Cost          float64             `json:"cost"`
	ROI           float64             `json:"roi"`
	OrderCount    int64               `json:"orderCount"`
	CampaignCount int                 `json:"campaignCount"`
	Accounts      []AccountBreakdown  `json:"accounts"`
	Campaigns     []CampaignBreakdown `json:"campaigns"`
}

// Reconcile drops report rows whose campaign is not in the index. The
// report endpoint leaks rows from other promotion types even when one
// is requested, so the campaign list is the source of truth for
// membership.
func Reconcile(rows []ReportRow, campaigns map[string]Campaign) []ReportRow {
	out := make([]ReportRow, 0, len(rows))
	for _, row := range rows {
		if _, ok := campaigns[row.Dimension("campaign_id")]; ok {
			out = append(out, row)
		}
	}
	return out
}

// AggregateGMVMax reconciles and folds report rows into totals plus
// per-account and per-campaign breakdowns. Accounts come back sorted by
// GMV descending; campaigns by account name, then GMV descending.
func AggregateGMVMax(rows []ReportRow, campaigns map[string]Campaign) GMVMaxSummary {
	rows = Reconcile(rows, campaigns)

	summary := GMVMaxSummary{CampaignCount: len(rows)}
	accounts := make(map[string]*AccountBreakdown)
	byCampaign := make(map[string]*CampaignBreakdown)

	for _, row := range rows {
		campaignID := row.Dimension("campaign_id")
		cost := row.MetricFloat("cost")
		gmv := row.MetricFloat("gross_revenue")
		orders := row.MetricInt("orders")

		summary.Cost += cost
		summary.GMV += gmv
		summary.OrderCount += orders

		info := campaigns[campaignID]
		accountName := info.AccountName
		if accountName == "" {
			accountName = DefaultAccount
		}
		campaignName := info.Name
		if campaignName == "" {
			campaignName = fmt.Sprintf("Campaign %s", campaignID)
		}

		acc, ok := accounts[accountName]
		if !ok {
			acc = &AccountBreakdown{Name: accountName}
			accounts[accountName] = acc
		}
		acc.Cost += cost
		acc.GMV += gmv
		acc.Orders += orders
		acc.Campaigns++

		camp, ok := byCampaign[campaignID]
		if !ok {
			camp = &CampaignBreakdown{
				CampaignID:   campaignID,
				CampaignName: campaignName,
				AccountName:  accountName,
			}
			byCampaign[campaignID] = camp
		}
		camp.Cost += cost
		camp.GMV += gmv
		camp.Orders += orders
	}

	if summary.Cost > 0 {
		summary.ROI = summary.GMV / summary.Cost
	}

	summary.Accounts = make([]AccountBreakdown, 0, len(accounts))
	for _, acc := range accounts {
		if acc.Cost > 0 {
			acc.ROI = acc.GMV / acc.Cost
		}
		summary.Accounts = append(summary.Accounts, *acc)
	}
	sort.Slice(summary.Accounts, func(i, j int) bool {
		return summary.Accounts[i].GMV > summary.Accounts[j].GMV
	})

	summary.Campaigns = make([]CampaignBreakdown, 0, len(byCampaign))
	for _, camp := range byCampaign {
		if camp.Cost > 0 {
			camp.ROI = camp.GMV / camp.Cost
		}
		summary.Campaigns = append(summary.Campaigns, *camp)
	}
	sort.Slice(summary.Campaigns, func(i, j int) bool {
		a, b := summary.Campaigns[i], summary.Campaigns[j]
		if a.AccountName != b.AccountName {
			return a.AccountName < b.AccountName
		}
		return a.GMV > b.GMV
	})

	return summary
}
