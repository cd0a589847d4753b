package ads

// SpendSummary is the aggregated spend of manual (non GMV-Max)
// campaigns for one advertiser over a window.
type SpendSummary struct {
	TotalSpend       float64 `json:"totalSpend"`
	TotalBilledCost  float64 `json:"totalBilledCost"`
	TotalImpressions int64   `json:"totalImpressions"`
	TotalClicks      int64   `json:"totalClicks"`
	CampaignCount    int     `json:"campaignCount"`
	AvgCPM           float64 `json:"avgCPM"`
	AvgCPC           float64 `json:"avgCPC"`
}

// ManualSpend folds integrated report rows into a spend summary,
// excluding every campaign in the GMV-Max set. CPM and CPC are
// recomputed from the totals rather than averaged per row.
func ManualSpend(rows []ReportRow, gmvMaxIDs map[string]struct{}) SpendSummary {
	var s SpendSummary
	campaigns := make(map[string]struct{})

	for _, row := range rows {
		campaignID := row.Dimension("campaign_id")
		if campaignID == "" {
			continue
		}
		if _, isGMVMax := gmvMaxIDs[campaignID]; isGMVMax {
			continue
		}
		campaigns[campaignID] = struct{}{}
		s.TotalSpend += row.MetricFloat("spend")
		s.TotalBilledCost += row.MetricFloat("billed_cost")
		s.TotalImpressions += row.MetricInt("impressions")
		s.TotalClicks += row.MetricInt("clicks")
	}

	s.CampaignCount = len(campaigns)
	if s.TotalImpressions > 0 {
		s.AvgCPM = s.TotalSpend / float64(s.TotalImpressions) * 1000
	}
	if s.TotalClicks > 0 {
		s.AvgCPC = s.TotalSpend / float64(s.TotalClicks)
	}
	return s
}
