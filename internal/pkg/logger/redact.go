package logger

import "strings"

// secretKeyFragments marks log field names whose values are credential
// material and must never appear in full in log output.
var secretKeyFragments = []string{"token", "secret", "cipher", "password"}

// RedactSecret masks a credential value, keeping a short prefix so that
// rotations can still be distinguished in logs.
func RedactSecret(val string) string {
	if val == "" {
		return ""
	}
	if len(val) <= 8 {
		return "****"
	}
	return val[:6] + "****"
}

func redactValue(key, val string) string {
	lower := strings.ToLower(key)
	for _, frag := range secretKeyFragments {
		if strings.Contains(lower, frag) {
			return RedactSecret(val)
		}
	}
	return val
}
