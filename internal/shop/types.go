package shop

import (
	"fmt"
	"time"
)

// Order statuses that are excluded from net-mode GMV.
const (
	StatusCancelled = "CANCELLED"
	StatusRefunded  = "REFUNDED"
	StatusCompleted = "COMPLETED"
)

// Order is one shop order as returned by the order search endpoint.
type Order struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	CreateTime  int64      `json:"create_time"`
	BuyerUserID string     `json:"buyer_user_id"`
	UserID      string     `json:"user_id"`
	LineItems   []LineItem `json:"line_items"`
}

// BuyerID returns the buyer identity, falling back to the legacy
// user_id field on older order records.
func (o Order) BuyerID() string {
	if o.BuyerUserID != "" {
		return o.BuyerUserID
	}
	return o.UserID
}

// LineItem carries the per-SKU monetary fields. The API serializes
// amounts as decimal strings.
type LineItem struct {
	SalePrice        string `json:"sale_price"`
	PlatformDiscount string `json:"platform_discount"`
}

// orderSearchResponse is the order search envelope. A non-zero Code is
// an upstream API error and Message carries the reason.
type orderSearchResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Orders        []Order `json:"orders"`
		NextPageToken string  `json:"next_page_token"`
		TotalCount    int     `json:"total_count"`
	} `json:"data"`
}

// Window is a closed order-creation time window in Unix seconds.
type Window struct {
	StartTime int64 `json:"create_time_ge"`
	EndTime   int64 `json:"create_time_lt"`
}

// Shops operate on Malaysia time; day boundaries are computed in GMT+8
// regardless of where the service runs.
var gmt8 = time.FixedZone("GMT+8", 8*3600)

// WindowForDates builds a Window spanning startDate 00:00:00 through
// endDate 23:59:59.999 in GMT+8. Dates are ISO (YYYY-MM-DD). Empty
// dates default to today.
func WindowForDates(startDate, endDate string) (Window, error) {
	if startDate == "" || endDate == "" {
		today := time.Now().In(gmt8).Format("2006-01-02")
		startDate, endDate = today, today
	}
	start, err := time.ParseInLocation("2006-01-02", startDate, gmt8)
	if err != nil {
		return Window{}, fmt.Errorf("invalid startDate %q: %w", startDate, err)
	}
	end, err := time.ParseInLocation("2006-01-02", endDate, gmt8)
	if err != nil {
		return Window{}, fmt.Errorf("invalid endDate %q: %w", endDate, err)
	}
	end = end.Add(24*time.Hour - time.Millisecond)
	return Window{StartTime: start.Unix(), EndTime: end.Unix()}, nil
}

// parseAmount converts a decimal-string amount to float64, treating
// empty or malformed values as zero (upstream omits zero amounts).
func parseAmount(s string) float64 {
	if s == "" {
		return 0
	}
	var v float64
	if _, err := fmt.Sscanf(s, "%f", &v); err != nil {
		return 0
	}
	return v
}
