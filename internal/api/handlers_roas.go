package api

import (
	"net/http"

	"github.com/hpgroup/marketplace-analytics/internal/pkg/httputil"
	"github.com/hpgroup/marketplace-analytics/internal/shop"
)

// GetROAS returns the composed ROAS snapshot: GMV against GMV-Max cost
// plus manual campaign spend, with the SST/WHT loading applied. GMV is
// taken in gross mode by default so it matches the ads manager; pass
// gmv_mode=net for the finance view.
func (h *Handlers) GetROAS(w http.ResponseWriter, r *http.Request) {
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

	mode := shop.GMVGross
	switch r.URL.Query().Get("gmv_mode") {
	case "", "gross":
	case "net":
		mode = shop.GMVNet
	default:
		httputil.BadRequest(w, "gmv_mode must be net or gross")
		return
	}

	result, err := h.roasService.Snapshot(r.Context(), shopNumber, startDate, endDate, mode)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, result)
}
