package inspection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testRegions() Regions {
	return Regions{
		Rules: []RegionRule{
			{Name: "shenzhen", Prefixes: []string{"10.162."}, Profile: RegionProfile{EndpointURL: "http://sz/api", Credential: "key-sz", Label: "Shenzhen"}},
			{Name: "changzhou", Prefixes: []string{"10.77."}, Profile: RegionProfile{EndpointURL: "http://cz/api", Credential: "key-cz", Label: "Changzhou"}},
		},
		Fallback: RegionProfile{EndpointURL: "http://cz/api", Credential: "key-cz", Label: "other"},
	}
}

func TestRegionsResolve(t *testing.T) {
	regions := testRegions()

	tests := []struct {
		address    string
		label      string
		credential string
	}{
		{"10.162.5.1", "Shenzhen", "key-sz"},
		{"10.162.", "Shenzhen", "key-sz"},
		{"10.162.not-an-ip", "Shenzhen", "key-sz"},
		{"10.77.0.9", "Changzhou", "key-cz"},
		{"10.77.999.999", "Changzhou", "key-cz"},
		{"192.168.1.100", "other", "key-cz"},
		{"10.1620.1.1", "other", "key-cz"},
		{" 10.162.5.1", "other", "key-cz"},
		{"", "other", "key-cz"},
		{"hostname.example", "other", "key-cz"},
	}
	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			got := regions.Resolve(tt.address)
			assert.Equal(t, tt.label, got.Label)
			assert.Equal(t, tt.credential, got.Credential)
		})
	}
}

func TestRegionsResolve_Deterministic(t *testing.T) {
	regions := testRegions()
	for _, addr := range []string{"10.162.1.1", "10.77.1.1", "8.8.8.8"} {
		assert.Equal(t, regions.Resolve(addr), regions.Resolve(addr))
	}
}

func TestRegionsResolve_FirstRuleWins(t *testing.T) {
	regions := Regions{
		Rules: []RegionRule{
			{Prefixes: []string{"10."}, Profile: RegionProfile{Label: "wide"}},
			{Prefixes: []string{"10.77."}, Profile: RegionProfile{Label: "narrow"}},
		},
		Fallback: RegionProfile{Label: "other"},
	}
	assert.Equal(t, "wide", regions.Resolve("10.77.1.1").Label)
}

func TestRegionsResolve_EmptyPrefixIgnored(t *testing.T) {
	regions := Regions{
		Rules:    []RegionRule{{Prefixes: []string{""}, Profile: RegionProfile{Label: "everything"}}},
		Fallback: RegionProfile{Label: "other"},
	}
	assert.Equal(t, "other", regions.Resolve("1.2.3.4").Label)
}
