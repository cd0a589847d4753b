package ads

import (
	"fmt"
	"sort"
	"time"
)

// LiveSession is one livestream room aggregated across its daily report
// rows.
type LiveSession struct {
	RoomID       string  `json:"roomId"`
	LiveName     string  `json:"liveName"`
	LiveStatus   string  `json:"liveStatus"`
	LiveDuration string  `json:"liveDuration"`
	LaunchedTime string  `json:"launchedTime"`
	Cost         float64 `json:"cost"`
	GMV          float64 `json:"gmv"`
	Orders       int64   `json:"orders"`
	ROI          float64 `json:"roi"`
}

// Sessions that span midnight produce one row per stat day; the
// earliest launched time is the canonical session start.
func parseLiveTime(s string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// LiveSessions groups room-level report rows into one session per room,
// summing cost, GMV and orders, sorted by launched time descending.
// Sessions whose launched time could not be parsed sort last.
func LiveSessions(rows []ReportRow) []LiveSession {
	type roomAgg struct {
		session  LiveSession
		launched time.Time
	}
	roomMap := make(map[string]*roomAgg)
	var order []string

	for _, row := range rows {
		roomID := row.Dimension("room_id")
		if roomID == "" {
			continue
		}
		launchedStr := row.Metric("live_launched_time")
		if launchedStr == "" {
			launchedStr = row.Dimension("stat_time_day")
		}
		launched := parseLiveTime(launchedStr)

		agg, ok := roomMap[roomID]
		if !ok {
			agg = &roomAgg{session: LiveSession{
				RoomID:       roomID,
				LiveName:     row.Metric("live_name"),
				LiveStatus:   row.Metric("live_status"),
				LiveDuration: row.Metric("live_duration"),
				LaunchedTime: launchedStr,
			}, launched: launched}
			if agg.session.LiveName == "" {
				agg.session.LiveName = fmt.Sprintf("Room %s", roomID)
			}
			roomMap[roomID] = agg
			order = append(order, roomID)
		} else if !launched.IsZero() && (agg.launched.IsZero() || launched.Before(agg.launched)) {
			agg.launched = launched
			agg.session.LaunchedTime = launchedStr
		}

		agg.session.Cost += row.MetricFloat("cost")
		agg.session.GMV += row.MetricFloat("gross_revenue")
		agg.session.Orders += row.MetricInt("orders")
	}

	sessions := make([]LiveSession, 0, len(roomMap))
	for _, roomID := range order {
		agg := roomMap[roomID]
		if agg.session.Cost > 0 {
			agg.session.ROI = agg.session.GMV / agg.session.Cost
		}
		sessions = append(sessions, agg.session)
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		a := parseLiveTime(sessions[i].LaunchedTime)
		b := parseLiveTime(sessions[j].LaunchedTime)
		return a.After(b)
	})
	return sessions
}
