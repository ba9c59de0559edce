package inspection

import "strings"

// RegionProfile is the monitoring endpoint, credential and label for a region.
// The credential never leaves the process in responses or logs.
type RegionProfile struct {
	EndpointURL string `json:"-"`
	Credential  string `json:"-"`
	Label       string `json:"label"`
}

// RegionRule selects Profile for addresses starting with any of Prefixes.
type RegionRule struct {
	Name     string
	Prefixes []string
	Profile  RegionProfile
}

// Regions is the ordered rule table plus the profile used when nothing matches.
type Regions struct {
	Rules    []RegionRule
	Fallback RegionProfile
}

// Resolve maps an address to its region profile. Rules are tried in order
// and the first prefix match wins. The address is not validated.
func (r Regions) Resolve(address string) RegionProfile {
	for _, rule := range r.Rules {
		for _, prefix := range rule.Prefixes {
			if prefix != "" && strings.HasPrefix(address, prefix) {
				return rule.Profile
			}
		}
	}
	return r.Fallback
}
