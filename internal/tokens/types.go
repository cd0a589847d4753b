package tokens

import "encoding/json"

// Result is the per-shop outcome of one refresh attempt. Failures are
// carried as strings so a batch can report them without aborting.
type Result struct {
	ShopNumber      int    `json:"shopNumber"`
	ShopName        string `json:"shopName"`
	Success         bool   `json:"success"`
	Error           string `json:"error,omitempty"`
	NewAccessToken  string `json:"-"`
	NewRefreshToken string `json:"-"`
}

// Summary aggregates a batch refresh run.
type Summary struct {
	RunID      string   `json:"runId"`
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// refreshPayload is the token material portion of the upstream response.
// The auth endpoint has shipped several field names for the same values
// over time; all are accepted and normalized in one place.
type refreshPayload struct {
	AccessToken          string      `json:"access_token"`
	RefreshToken         string      `json:"refresh_token"`
	TokenType            string      `json:"token_type"`
	ExpiresIn            json.Number `json:"expires_in"`
	AccessTokenExpireIn  json.Number `json:"access_token_expire_in"`
	RefreshExpiresIn     json.Number `json:"refresh_expires_in"`
	RefreshTokenExpireIn json.Number `json:"refresh_token_expire_in"`
}

// refreshResponse covers both observed envelope shapes: token material
// nested under "data", or flat at the top level. Error indicators may
// likewise appear under any of three names.
type refreshResponse struct {
	ErrorField       string          `json:"error"`
	ErrorCode        json.Number     `json:"error_code"`
	ErrorDescription string          `json:"error_description"`
	Data             *refreshPayload `json:"data"`
	refreshPayload
}

// payload returns the nested data block when present, else the flat body.
func (r *refreshResponse) payload() *refreshPayload {
	if r.Data != nil {
		return r.Data
	}
	return &r.refreshPayload
}

// errMessage returns the upstream error string, or "" when the response
// carries no error indicator.
func (r *refreshResponse) errMessage() string {
	if r.ErrorDescription != "" {
		return r.ErrorDescription
	}
	if r.ErrorField != "" {
		return r.ErrorField
	}
	if r.ErrorCode.String() != "" && r.ErrorCode.String() != "0" {
		return "error code: " + r.ErrorCode.String()
	}
	return ""
}
