package shop

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// Sign computes the request signature required by the Shop open API.
// The base string is app_secret + path + sorted key/value pairs + body +
// app_secret, HMAC-SHA256 keyed by the app secret, hex encoded. The
// "sign" and "access_token" parameters never participate.
func Sign(appSecret, path string, params url.Values, body []byte) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "sign" || k == "access_token" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(path)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(params.Get(k))
	}
	if len(body) > 0 {
		b.Write(body)
	}

	base := appSecret + b.String() + appSecret
	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write([]byte(base))
	return hex.EncodeToString(mac.Sum(nil))
}
