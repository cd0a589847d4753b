package ads

import "regexp"

// DefaultAccount is the attribution bucket for campaigns whose name
// carries no account tag.
const DefaultAccount = "Other"

// Campaign names embed their owning account in square brackets, for
// example "[HQ Team] Live 01". Only the first tag counts.
var accountTag = regexp.MustCompile(`\[([^\]]+)\]`)

// ExtractAccountName parses the account tag out of a campaign name.
func ExtractAccountName(campaignName string) string {
	if m := accountTag.FindStringSubmatch(campaignName); m != nil {
		return m[1]
	}
	return DefaultAccount
}
