package api

import (
	"net/http"

	"github.com/hpgroup/marketplace-analytics/internal/pkg/httputil"
)

// RefreshTokens rotates the access/refresh token pair of every shop in
// the credential store and returns the per-shop outcome. Individual
// shop failures are reported in the summary, not as an HTTP error.
func (h *Handlers) RefreshTokens(w http.ResponseWriter, r *http.Request) {
	summary, err := h.tokenService.RefreshAll(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, summary)
}
