package service

import (
	"strings"

	"github.com/iliyamo/rental-pricing/internal/pricing"
)

// areaKeywords is checked in order; the first keyword found in the address
// or city wins. More specific names precede the generic "jumeirah".
var areaKeywords = []struct {
	keyword string
	area    pricing.AreaTag
}{
	{"marina", pricing.AreaMarina},
	{"downtown", pricing.AreaDowntown},
	{"business bay", pricing.AreaBusinessBay},
	{"jbr", pricing.AreaJBR},
	{"jumeirah beach", pricing.AreaJBR},
	{"palm", pricing.AreaPalmJumeirah},
	{"jlt", pricing.AreaJLT},
	{"jumeirah lake", pricing.AreaJLT},
	{"silicon oasis", pricing.AreaSiliconOasis},
	{"bur dubai", pricing.AreaBurDubai},
	{"deira", pricing.AreaDeira},
	{"jumeirah", pricing.AreaJumeirah},
}

// DefaultArea is used when no keyword matches.
const DefaultArea = pricing.AreaJLT

// ResolveAreaTag maps a free-text address and city onto a market area.
func ResolveAreaTag(address, city string) pricing.AreaTag {
	addr := strings.ToLower(address)
	c := strings.ToLower(city)
	for _, k := range areaKeywords {
		if strings.Contains(addr, k.keyword) || strings.Contains(c, k.keyword) {
			return k.area
		}
	}
	return DefaultArea
}
