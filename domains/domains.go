// Package domains holds the retailer allow-list and classifies URLs as
// product pages vs. listing/search pages.
package domains

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Allowed is the fixed set of regional retailer root domains.
var Allowed = []string{
	"hepsiburada.com",
	"trendyol.com",
	"n11.com",
	"vatanbilgisayar.com",
	"teknosa.com",
	"mediamarkt.com.tr",
	"incehesap.com",
	"itopya.com",
	"inventus.com.tr",
	"gamegaraj.com",
	"amazon.com.tr",
	"sinerji.gen.tr",
	"teknobiyotik.com",
	"pazarama.com",
}

// SearchPriority is the ordered subset of domains used for the
// site-restricted fallback stage. Fixed length bounds the fan-out.
var SearchPriority = []string{
	"hepsiburada.com",
	"trendyol.com",
	"n11.com",
	"vatanbilgisayar.com",
	"teknosa.com",
	"incehesap.com",
	"mediamarkt.com.tr",
	"amazon.com.tr",
}

// productPatterns maps a retailer root domain to its product-path shapes.
// Adding a retailer is a table entry, not new code.
var productPatterns = map[string][]*regexp.Regexp{
	"hepsiburada.com":     {regexp.MustCompile(`-p-\d+`)},
	"trendyol.com":        {regexp.MustCompile(`-p-\d+`)},
	"n11.com":             {regexp.MustCompile(`/urun/`)},
	"teknosa.com":         {regexp.MustCompile(`/urun/`)},
	"mediamarkt.com.tr":   {regexp.MustCompile(`/p/`), regexp.MustCompile(`/product/`)},
	"itopya.com":          {regexp.MustCompile(`/urun/`)},
	"incehesap.com":       {regexp.MustCompile(`-fiyati-\d+/?$`), regexp.MustCompile(`/urun/`)},
	"vatanbilgisayar.com": {regexp.MustCompile(`/urun/`), regexp.MustCompile(`/product`), regexp.MustCompile(`(?i)productdetails\.aspx`)},
	"inventus.com.tr":     {regexp.MustCompile(`/product/`)},
	"gamegaraj.com":       {regexp.MustCompile(`/urun/`)},
	"amazon.com.tr":       {regexp.MustCompile(`/dp/`), regexp.MustCompile(`/gp/product/`)},
	"sinerji.gen.tr":      {regexp.MustCompile(`/urun/`)},
	"teknobiyotik.com":    {regexp.MustCompile(`/urun/`)},
	"pazarama.com":        {regexp.MustCompile(`/urun/`)},
}

var (
	listingPathRe  = regexp.MustCompile(`(search|arama|ara|kategori|category|listing|liste|urunler|products)\b`)
	listingQueryRe = regexp.MustCompile(`[?&](q|k|s|search|kategori|kriter|sort|order|price|min|max|page)=`)
	assetRe        = regexp.MustCompile(`(?i)\.(?:jpg|jpeg|png|webp|gif|svg|mp4|webm|css|js|mjs|ico|woff2?)(?:[?#]|$)`)
	genericPathRe  = regexp.MustCompile(`/(p|product|urun)/`)
	genericIDRe    = regexp.MustCompile(`-p-\d+`)
	genericDpRe    = regexp.MustCompile(`/dp/`)
)

// RootDomain returns the effective registrable domain for a hostname,
// accounting for national multi-label TLDs (com.tr, gen.tr, ...).
func RootDomain(host string) string {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if root, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return root
	}
	// publicsuffix rejects bare TLDs and odd hosts; fall back to label math
	parts := strings.Split(host, ".")
	n := 2
	if strings.HasSuffix(host, ".com.tr") || strings.HasSuffix(host, ".net.tr") ||
		strings.HasSuffix(host, ".org.tr") || strings.HasSuffix(host, ".gen.tr") {
		n = 3
	}
	if len(parts) <= n {
		return host
	}
	return strings.Join(parts[len(parts)-n:], ".")
}

// IsAllowed reports whether the URL's hostname belongs to an allow-listed
// retailer.
func IsAllowed(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, d := range Allowed {
		if strings.Contains(host, d) {
			return true
		}
	}
	return false
}

// IsListingURL reports whether the URL carries search/listing/category
// markers in its path or query string.
func IsListingURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if listingPathRe.MatchString(strings.ToLower(u.Path)) {
		return true
	}
	return listingQueryRe.MatchString(strings.ToLower("?" + u.RawQuery))
}

// IsAssetURL reports whether the URL points at a static asset.
func IsAssetURL(rawURL string) bool {
	return assetRe.MatchString(rawURL)
}

// IsProductPage classifies a URL as a single-item detail page. Listing
// markers are rejected before any per-domain pattern runs: a paginated
// category URL with digits must never pass a numeric-id pattern.
func IsProductPage(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if IsListingURL(rawURL) {
		return false
	}
	path := strings.ToLower(u.Path)
	root := RootDomain(u.Hostname())
	if pats, ok := productPatterns[root]; ok {
		for _, re := range pats {
			if re.MatchString(path) {
				return true
			}
		}
		return false
	}
	return genericPathRe.MatchString(path) || genericIDRe.MatchString(path) || genericDpRe.MatchString(path)
}
