package ads

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func gmvRow(campaignID string, cost, gmv float64, orders int) ReportRow {
	return ReportRow{
		Dimensions: map[string]any{"campaign_id": campaignID, "stat_time_day": "2024-01-15"},
		Metrics: map[string]any{
			"cost":          floatStr(cost),
			"gross_revenue": floatStr(gmv),
			"orders":        intStr(orders),
		},
	}
}

func floatStr(v float64) string { return fmt.Sprintf("%.2f", v) }
func intStr(v int) string       { return fmt.Sprintf("%d", v) }

func TestReconcileDropsLeakedRows(t *testing.T) {
	campaigns := map[string]Campaign{
		"c1": {ID: "c1", Name: "[A] One", AccountName: "A"},
	}
	rows := []ReportRow{
		gmvRow("c1", 10, 100, 5),
		gmvRow("leaked", 99, 999, 9),
	}

	kept := Reconcile(rows, campaigns)
	assert.Len(t, kept, 1)
	assert.Equal(t, "c1", kept[0].Dimension("campaign_id"))
}

func TestAggregateGMVMaxBreakdowns(t *testing.T) {
	campaigns := map[string]Campaign{
		"c1": {ID: "c1", Name: "[Alpha] One", AccountName: "Alpha"},
		"c2": {ID: "c2", Name: "[Beta] Two", AccountName: "Beta"},
		"c3": {ID: "c3", Name: "[Beta] Three", AccountName: "Beta"},
	}
	rows := []ReportRow{
		gmvRow("c1", 50, 200, 4),
		// Two stat days for the same campaign fold into one breakdown row.
		gmvRow("c2", 30, 300, 6),
		gmvRow("c2", 20, 100, 2),
		gmvRow("c3", 10, 50, 1),
		gmvRow("not-in-type", 500, 5000, 50),
	}

	s := AggregateGMVMax(rows, campaigns)

	assert.Equal(t, 110.0, s.Cost)
	assert.Equal(t, 650.0, s.GMV)
	assert.Equal(t, int64(13), s.OrderCount)
	assert.InDelta(t, 650.0/110.0, s.ROI, 1e-9)
	assert.Equal(t, 4, s.CampaignCount)

	// Accounts sorted by GMV descending: Beta 450 > Alpha 200.
	assert.Equal(t, []string{"Beta", "Alpha"}, []string{s.Accounts[0].Name, s.Accounts[1].Name})
	assert.Equal(t, 3, s.Accounts[0].Campaigns)

	// Campaigns sorted by account, then GMV descending within Beta.
	assert.Len(t, s.Campaigns, 3)
	assert.Equal(t, "c1", s.Campaigns[0].CampaignID)
	assert.Equal(t, "c2", s.Campaigns[1].CampaignID)
	assert.Equal(t, "c3", s.Campaigns[2].CampaignID)
}

func TestAggregateGMVMaxZeroCost(t *testing.T) {
	campaigns := map[string]Campaign{"c1": {ID: "c1", Name: "[A] One", AccountName: "A"}}
	rows := []ReportRow{gmvRow("c1", 0, 100, 1)}

	s := AggregateGMVMax(rows, campaigns)
	assert.Equal(t, 0.0, s.ROI, "zero cost must not divide")
	assert.Equal(t, 0.0, s.Accounts[0].ROI)
}

func TestExtractAccountName(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"[HQ Team] Live 01", "HQ Team"},
		{"prefix [Tagged] suffix", "Tagged"},
		{"[First][Second]", "First"},
		{"no tag at all", "Other"},
		{"", "Other"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ExtractAccountName(tc.name), "campaign %q", tc.name)
	}
}

func TestLiveSessionsGroupingAndOrder(t *testing.T) {
	roomRow := func(roomID, launched, statDay string, cost, gmv float64, orders int) ReportRow {
		metrics := map[string]any{
			"cost":          floatStr(cost),
			"gross_revenue": floatStr(gmv),
			"orders":        intStr(orders),
			"live_name":     "Live " + roomID,
		}
		if launched != "" {
			metrics["live_launched_time"] = launched
		}
		return ReportRow{
			Dimensions: map[string]any{"room_id": roomID, "stat_time_day": statDay},
			Metrics:    metrics,
		}
	}

	rows := []ReportRow{
		// r1 spans midnight: two stat days, the earlier launch wins.
		roomRow("r1", "2024-01-15 23:00:00", "2024-01-15", 10, 100, 2),
		roomRow("r1", "2024-01-16 00:00:00", "2024-01-16", 5, 50, 1),
		roomRow("r2", "2024-01-16 20:00:00", "2024-01-16", 20, 400, 8),
		roomRow("r3", "", "", 1, 10, 1),
	}

	sessions := LiveSessions(rows)
	assert.Len(t, sessions, 3)

	// Most recent first; the unparseable launch time sorts last.
	assert.Equal(t, "r2", sessions[0].RoomID)
	assert.Equal(t, "r1", sessions[1].RoomID)
	assert.Equal(t, "r3", sessions[2].RoomID)

	r1 := sessions[1]
	assert.Equal(t, "2024-01-15 23:00:00", r1.LaunchedTime)
	assert.Equal(t, 15.0, r1.Cost)
	assert.Equal(t, 150.0, r1.GMV)
	assert.Equal(t, int64(3), r1.Orders)
	assert.InDelta(t, 10.0, r1.ROI, 1e-9)
}

func TestManualSpendExcludesGMVMax(t *testing.T) {
	spendWith := func(campaignID string, spend, billed float64, impressions, clicks int) ReportRow {
		return ReportRow{
			Dimensions: map[string]any{"campaign_id": campaignID},
			Metrics: map[string]any{
				"spend":       floatStr(spend),
				"billed_cost": floatStr(billed),
				"impressions": intStr(impressions),
				"clicks":      intStr(clicks),
			},
		}
	}
	gmvMaxIDs := map[string]struct{}{"g1": {}}

	rows := []ReportRow{
		spendWith("m1", 100, 110, 10000, 200),
		spendWith("m1", 50, 55, 5000, 100),
		spendWith("g1", 999, 999, 1, 1),
	}

	s := ManualSpend(rows, gmvMaxIDs)
	assert.Equal(t, 150.0, s.TotalSpend)
	assert.Equal(t, 165.0, s.TotalBilledCost)
	assert.Equal(t, int64(15000), s.TotalImpressions)
	assert.Equal(t, int64(300), s.TotalClicks)
	assert.Equal(t, 1, s.CampaignCount)
	assert.InDelta(t, 10.0, s.AvgCPM, 1e-9)
	assert.InDelta(t, 0.5, s.AvgCPC, 1e-9)
}

func TestManualSpendZeroTraffic(t *testing.T) {
	rows := []ReportRow{{
		Dimensions: map[string]any{"campaign_id": "m1"},
		Metrics:    map[string]any{"spend": "25.00"},
	}}
	s := ManualSpend(rows, nil)
	assert.Equal(t, 0.0, s.AvgCPM)
	assert.Equal(t, 0.0, s.AvgCPC)
}
