// internal/venue/regions.go
package venue

import "strings"

type cityRegion struct {
	city   string
	region string
}

// cityRegions is consulted in order; multi-word and longer names come first
// so "navi mumbai" wins over "mumbai" and "new delhi" over "delhi".
var cityRegions = []cityRegion{
	{"navi mumbai", "West"},
	{"new delhi", "North"},
	{"mcleodganj", "North"},
	{"dharamshala", "North"},
	{"chandigarh", "North"},
	{"bangalore", "South"},
	{"bengaluru", "South"},
	{"hyderabad", "South"},
	{"pondicherry", "South"},
	{"puducherry", "South"},
	{"kodaikanal", "South"},
	{"ahmedabad", "West"},
	{"udaipur", "West"},
	{"jaisalmer", "West"},
	{"jodhpur", "West"},
	{"jaipur", "West"},
	{"pushkar", "West"},
	{"gokarna", "South"},
	{"hampi", "South"},
	{"kochi", "South"},
	{"munnar", "South"},
	{"varkala", "South"},
	{"chennai", "South"},
	{"mysore", "South"},
	{"coorg", "South"},
	{"ooty", "South"},
	{"wayanad", "South"},
	{"mumbai", "West"},
	{"pune", "West"},
	{"goa", "West"},
	{"delhi", "North"},
	{"gurgaon", "North"},
	{"gurugram", "North"},
	{"noida", "North"},
	{"rishikesh", "North"},
	{"manali", "North"},
	{"kasol", "North"},
	{"shimla", "North"},
	{"varanasi", "North"},
	{"agra", "North"},
	{"amritsar", "North"},
	{"leh", "North"},
	{"kolkata", "East"},
	{"darjeeling", "East"},
	{"puri", "East"},
	{"gangtok", "Northeast"},
	{"shillong", "Northeast"},
	{"guwahati", "Northeast"},
}

// regionFor returns the region of the first table city found as a substring
// of text, or "" when none matches.
func regionFor(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return ""
	}
	for _, cr := range cityRegions {
		if strings.Contains(text, cr.city) {
			return cr.region
		}
	}
	return ""
}
