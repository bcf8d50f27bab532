// Package intent turns free-text queries into structured constraints and
// into the simplified query variants used for site-restricted searches.
package intent

import (
	"regexp"
	"strconv"
	"strings"

	"muadil/models"
)

var (
	budgetRe = regexp.MustCompile(`(\d+)\s*[-–]\s*(\d+)`)
	dpiRe    = regexp.MustCompile(`(?i)(\d+)\s*dpi\b`)
	weightRe = regexp.MustCompile(`(?i)(\d+)\s*g\b`)

	// budget/unit tokens stripped before building site-search variants
	budgetTokenRe = regexp.MustCompile(`(?i)(\d+)\s*[-–]\s*(\d+)\s*tl`)
	currencyRe    = regexp.MustCompile(`(?i)\btl\b|₺`)
	weightTokenRe = regexp.MustCompile(`(?i)\b\d+\s*g\b`)
	spaceRe       = regexp.MustCompile(`\s+`)
)

var atMostMarkers = []string{"altı", "alti", "altında", "altinda", "en fazla", "max", "<=", "<", "under"}
var atLeastMarkers = []string{"üstü", "ustu", "üzeri", "üzerinde", "uzerinde", "en az", "min", ">=", ">", "over"}

var wirelessTerms = []string{"kablosuz", "wireless", "bluetooth", "lightspeed", "2.4g"}
var wiredTerms = []string{"kablolu", "wired"}

// Parse extracts a Want from a raw query. Extraction rules are independent
// and order-insensitive; malformed numerics are ignored, never an error.
func Parse(query string) models.Want {
	s := strings.ToLower(strings.TrimSpace(query))
	var want models.Want

	if m := dpiRe.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			want.DPI = &n
		}
	}

	if m := weightRe.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 20 && n <= 200 {
			switch {
			case containsAny(s, atMostMarkers):
				want.WeightMaxG = &n
			case containsAny(s, atLeastMarkers):
				want.WeightMinG = &n
			default:
				want.WeightG = &n
			}
		}
	}

	if containsAny(s, wirelessTerms) {
		want.Connection = models.ConnectionWireless
	} else if containsAny(s, wiredTerms) {
		want.Connection = models.ConnectionWired
	}

	if m := budgetRe.FindStringSubmatch(s); m != nil {
		lo, errLo := strconv.ParseFloat(m[1], 64)
		hi, errHi := strconv.ParseFloat(m[2], 64)
		if errLo == nil && errHi == nil {
			if lo > hi {
				lo, hi = hi, lo
			}
			want.BudgetMin = &lo
			want.BudgetMax = &hi
		}
	}

	return want
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// baseTerms are the storefront nouns per category used to build variants.
var baseTerms = map[models.Category][]string{
	models.CategoryMouse:    {"mouse", "fare"},
	models.CategoryKeyboard: {"klavye"},
	models.CategoryHeadset:  {"kulaklık"},
}

// SiteQueryVariants strips price and unit tokens from the query and builds
// a small, deduplicated set of simplified variants for site-restricted
// searches. The variant count is fixed to bound stage-5 fan-out.
func SiteQueryVariants(query string, category models.Category) []string {
	s := strings.ToLower(query)
	s = budgetTokenRe.ReplaceAllString(s, " ")
	s = currencyRe.ReplaceAllString(s, " ")
	s = weightTokenRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))

	hasWireless := containsAny(s, wirelessTerms)

	bases := baseTerms[category]
	if len(bases) == 0 {
		bases = []string{string(category)}
	}

	var variants []string
	seen := map[string]bool{}
	add := func(v string) {
		v = strings.TrimSpace(v)
		if v != "" && !seen[v] {
			seen[v] = true
			variants = append(variants, v)
		}
	}
	for _, base := range bases {
		if hasWireless {
			add("kablosuz " + base)
		} else {
			add(base)
		}
		add("oyuncu " + base)
	}
	return variants
}
