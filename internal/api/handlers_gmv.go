package api

import (
	"net/http"

	"github.com/hpgroup/marketplace-analytics/internal/pkg/httputil"
	"github.com/hpgroup/marketplace-analytics/internal/pkg/logger"
	"github.com/hpgroup/marketplace-analytics/internal/shop"
)

// GMVResponse is the per-shop GMV payload for both modes.
type GMVResponse struct {
	ShopName        string             `json:"shopName"`
	Mode            shop.GMVMode       `json:"mode"`
	GMV             float64            `json:"gmv"`
	OrderCount      int                `json:"orderCount"`
	TotalOrderCount int                `json:"totalOrderCount"`
	UniqueCustomers int                `json:"uniqueCustomers"`
	Currency        string             `json:"currency"`
	DateRange       dateRange          `json:"dateRange"`
	Orders          []shop.OrderDetail `json:"orders"`
	// Error is set when pagination aborted and the figures cover only
	// the orders fetched before the failure.
	Error string `json:"error,omitempty"`
}

// GetShopGMV returns net-mode GMV: cancellations and refunds excluded,
// platform discounts included.
func (h *Handlers) GetShopGMV(w http.ResponseWriter, r *http.Request) {
	h.shopGMV(w, r, shop.GMVNet)
}

// GetShopGMVGross returns gross-mode GMV: every order at sale price,
// matching the ads manager dashboard.
func (h *Handlers) GetShopGMVGross(w http.ResponseWriter, r *http.Request) {
	h.shopGMV(w, r, shop.GMVGross)
}

func (h *Handlers) shopGMV(w http.ResponseWriter, r *http.Request, mode shop.GMVMode) {
	startDate, endDate, ok := parseDates(r)
	if !ok {
		httputil.BadRequest(w, "startDate and endDate must be provided together")
		return
	}
	shopNumber, ok := parseShopNumber(r)
	if !ok {
		httputil.BadRequest(w, "invalid shopNumber")
		return
	}

	window, err := shop.WindowForDates(startDate, endDate)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	cred, err := h.resolver.Resolve(r.Context(), shopNumber)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	orders, searchErr := h.shopClient.SearchOrders(r.Context(), cred, window)
	if searchErr != nil && len(orders) == 0 {
		httputil.InternalError(w, searchErr)
		return
	}

	report := shop.AggregateGMV(orders, mode)
	resp := GMVResponse{
		ShopName:        cred.ShopName,
		Mode:            mode,
		GMV:             report.GMV,
		OrderCount:      report.OrderCount,
		TotalOrderCount: report.TotalOrderCount,
		UniqueCustomers: report.UniqueCustomers,
		Currency:        "MYR",
		DateRange:       dateRange{Start: startDate, End: endDate},
		Orders:          report.Orders,
	}
	if resp.Orders == nil {
		resp.Orders = []shop.OrderDetail{}
	}
	if searchErr != nil {
		resp.Error = searchErr.Error()
		logger.Warn("gmv served from partial order walk",
			"shop_number", shopNumber,
			"orders", len(orders),
			"error", searchErr.Error())
	}
	httputil.OK(w, resp)
}
