package scraper

import (
	"encoding/json"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"muadil/domains"
)

// Sanity bounds for a verified TRY price. Anything outside is an
// extraction artifact ("9 TL" shipping fragments, concatenated SKU digits).
const (
	sanePriceMin = 200
	sanePriceMax = 200000
)

// Looser plausibility band used while mining embedded JSON, before the
// final sanity gate.
const (
	plausibleMin = 10
	plausibleMax = 1000000
)

// IsPriceSane reports whether n is a plausible TRY accessory price.
func IsPriceSane(n int) bool {
	return n >= sanePriceMin && n <= sanePriceMax
}

var currencyStripRe = regexp.MustCompile(`(?i)[₺]|TL|TRY`)
var nonNumberRe = regexp.MustCompile(`[^\d.,]`)

// NormalizePriceTRY parses a Turkish-formatted price string ("1.234,56",
// "12.999 TL", "3.482₺") into a rounded integer TRY amount. `.` is the
// thousands separator, `,` the decimal separator.
func NormalizePriceTRY(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	s := strings.ReplaceAll(raw, " ", " ")
	s = currencyStripRe.ReplaceAllString(s, " ")
	s = nonNumberRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
		return 0, false
	}
	return int(math.Round(n)), true
}

var (
	// number followed by a currency marker: "1.234,56 TL", "3482₺"
	trailingCurrencyRe = regexp.MustCompile(`(?i)([0-9]{1,3}(?:\.[0-9]{3})*(?:,[0-9]{2})?|[0-9]+(?:,[0-9]{2})?)\s*(?:TL\b|₺|TRY\b)`)
	// currency marker followed by a number: "₺1.234,56"
	leadingCurrencyRe = regexp.MustCompile(`₺\s*([0-9]{1,3}(?:\.[0-9]{3})*(?:,[0-9]{2})?|[0-9]+(?:,[0-9]{2})?)`)
)

// ParsePriceTextTRY collects every currency-marked number in the text,
// keeps the sane ones and returns their median. The median guards against
// picking an unrelated figure (a shipping fee, an installment amount) when
// several currency tokens appear.
func ParsePriceTextTRY(text string) (int, bool) {
	var candidates []int
	for _, re := range []*regexp.Regexp{trailingCurrencyRe, leadingCurrencyRe} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if n, ok := NormalizePriceTRY(m[1]); ok && IsPriceSane(n) {
				candidates = append(candidates, n)
			}
		}
	}
	if len(candidates) == 0 {
		return 0, false
	}
	sort.Ints(candidates)
	return candidates[len(candidates)/2], true
}

/* ---------- embedded framework state ---------- */

var (
	nextDataRe   = regexp.MustCompile(`(?is)<script[^>]+id=["']__NEXT_DATA__["'][^>]*>(.*?)</script>`)
	jsonScriptRe = regexp.MustCompile(`(?is)<script[^>]*type=["']application/json["'][^>]*>(.*?)</script>`)
)

var priceKeyTokens = []string{
	"price", "saleprice", "sellprice", "finalprice", "discountedprice",
	"currentprice", "bestprice", "listprice", "lowprice", "highprice",
	"amount", "value",
}

func isPriceKey(key string) bool {
	lk := strings.ToLower(key)
	for _, tok := range priceKeyTokens {
		if strings.Contains(lk, tok) {
			return true
		}
	}
	return false
}

// findPriceInValue walks a decoded JSON value looking for price-like keys
// with numeric (or numeric-string) values inside the plausibility band.
// Map keys are visited in sorted order so extraction is deterministic.
func findPriceInValue(root any) (int, bool) {
	stack := []any{root}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch v := cur.(type) {
		case map[string]any:
			keys := make([]string, 0, len(v))
			for k := range v {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				val := v[k]
				if isPriceKey(k) {
					switch n := val.(type) {
					case float64:
						if n > plausibleMin && n < plausibleMax {
							return int(math.Round(n)), true
						}
					case string:
						if p, ok := NormalizePriceTRY(n); ok && p > plausibleMin && p < plausibleMax {
							return p, true
						}
					}
				}
				switch val.(type) {
				case map[string]any, []any:
					stack = append(stack, val)
				}
			}
		case []any:
			for _, item := range v {
				switch item.(type) {
				case map[string]any, []any:
					stack = append(stack, item)
				}
			}
		}
	}
	return 0, false
}

func extractFromEmbeddedJSON(html string) (int, bool) {
	if m := nextDataRe.FindStringSubmatch(html); m != nil {
		var data any
		if err := json.Unmarshal([]byte(m[1]), &data); err == nil {
			if n, ok := findPriceInValue(data); ok {
				return n, true
			}
		}
	}
	for _, m := range jsonScriptRe.FindAllStringSubmatch(html, -1) {
		var data any
		if err := json.Unmarshal([]byte(m[1]), &data); err != nil {
			continue
		}
		if n, ok := findPriceInValue(data); ok {
			return n, true
		}
	}
	return 0, false
}

/* ---------- JSON-LD and meta tags ---------- */

var jsonLdRe = regexp.MustCompile(`(?is)<script[^>]*type=["']application/ld\+json["'][^>]*>(.*?)</script>`)

func extractFromJSONLD(html string) (int, bool) {
	for _, m := range jsonLdRe.FindAllStringSubmatch(html, -1) {
		var data any
		if err := json.Unmarshal([]byte(m[1]), &data); err != nil {
			continue
		}
		nodes, ok := data.([]any)
		if !ok {
			nodes = []any{data}
		}
		for _, raw := range nodes {
			node, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if graph, ok := node["@graph"].([]any); ok {
				for _, g := range graph {
					if gm, ok := g.(map[string]any); ok {
						if n, found := priceFromLdProduct(gm); found {
							return n, true
						}
					}
				}
			}
			if n, found := priceFromLdProduct(node); found {
				return n, true
			}
		}
	}
	return 0, false
}

func priceFromLdProduct(node map[string]any) (int, bool) {
	typ := ""
	switch t := node["@type"].(type) {
	case string:
		typ = t
	case []any:
		if len(t) > 0 {
			typ, _ = t[0].(string)
		}
	}
	if !strings.Contains(strings.ToLower(typ), "product") {
		return 0, false
	}
	for _, key := range []string{"offers", "aggregateOffer", "aggregateOffers"} {
		offer := node[key]
		if arr, ok := offer.([]any); ok && len(arr) > 0 {
			offer = arr[0]
		}
		om, ok := offer.(map[string]any)
		if !ok {
			continue
		}
		for _, pk := range []string{"price", "lowPrice", "highPrice"} {
			switch v := om[pk].(type) {
			case float64:
				return int(math.Round(v)), true
			case string:
				if n, ok := NormalizePriceTRY(v); ok {
					return n, true
				}
			}
		}
	}
	return 0, false
}

var metaPriceRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<meta[^>]+itemprop=["']price["'][^>]+content=["']([\d.,]+)["']`),
	regexp.MustCompile(`(?i)<meta[^>]+property=["']product:price:amount["'][^>]+content=["']([\d.,]+)["']`),
	regexp.MustCompile(`(?i)data-price=["']([\d.,]+)["']`),
}

func extractFromMeta(html string) (int, bool) {
	for _, re := range metaPriceRes {
		if m := re.FindStringSubmatch(html); m != nil {
			if n, ok := NormalizePriceTRY(m[1]); ok {
				return n, true
			}
		}
	}
	return 0, false
}

/* ---------- per-retailer extractors ---------- */

type priceExtractor func(html string) (int, bool)

var (
	priceClassRe    = regexp.MustCompile(`(?i)class=["'][^"']*price[^"']*["'][^>]*>\s*([\d.,]+)\s*(?:TL|₺)\s*<`)
	hbPriceValueRe  = regexp.MustCompile(`(?i)"priceValue"\s*:\s*"([\d.,]+)"`)
	hbPriceRe       = regexp.MustCompile(`(?i)"price"\s*:\s*"?([\d.,]+)"?`)
	tySalePriceRe   = regexp.MustCompile(`(?i)"salePrice"\s*:\s*"?([\d.,]+)"?`)
	tySellPriceRe   = regexp.MustCompile(`(?i)"sellPrice"\s*:\s*"?([\d.,]+)"?`)
	amzOffscreenRe  = regexp.MustCompile(`(?i)<span[^>]*class=["']a-offscreen["'][^>]*>\s*([\d.,]+)\s*(?:TL|₺)\s*</span>`)
	amzPriceblockRe = regexp.MustCompile(`(?i)id=["']priceblock_(?:ourprice|dealprice)["'][^>]*>\s*([\d.,]+)\s*(?:TL|₺)?\s*<`)
	amzWholeRe      = regexp.MustCompile(`(?i)class=["']a-price-whole["'][^>]*>\s*([\d.]+)\s*<`)
	amzFractionRe   = regexp.MustCompile(`(?i)class=["']a-price-fraction["'][^>]*>\s*(\d{2})\s*<`)
	genericTLRe     = regexp.MustCompile(`(?i)([\d.,]+)\s*(?:TL|₺)`)
)

func firstRegexPrice(html string, res ...*regexp.Regexp) (int, bool) {
	for _, re := range res {
		if m := re.FindStringSubmatch(html); m != nil {
			if n, ok := NormalizePriceTRY(m[1]); ok {
				return n, true
			}
		}
	}
	return 0, false
}

func metaOrJSONLD(html string) (int, bool) {
	if n, ok := extractFromMeta(html); ok {
		return n, true
	}
	return extractFromJSONLD(html)
}

// retailerExtractors encodes each retailer's known price markup. Each
// entry falls back internally to JSON-LD/meta. Adding a retailer is a
// table entry, not new branching.
var retailerExtractors = map[string]priceExtractor{
	"amazon.com.tr": func(html string) (int, bool) {
		if n, ok := firstRegexPrice(html, amzOffscreenRe, amzPriceblockRe); ok {
			return n, true
		}
		if m := amzWholeRe.FindStringSubmatch(html); m != nil {
			s := strings.ReplaceAll(m[1], ".", "")
			if f := amzFractionRe.FindStringSubmatch(html); f != nil {
				s += "," + f[1]
			}
			if n, ok := NormalizePriceTRY(s); ok {
				return n, true
			}
		}
		return metaOrJSONLD(html)
	},
	"hepsiburada.com": func(html string) (int, bool) {
		if n, ok := extractFromMeta(html); ok {
			return n, true
		}
		if n, ok := firstRegexPrice(html, hbPriceValueRe, hbPriceRe); ok {
			return n, true
		}
		return extractFromJSONLD(html)
	},
	"trendyol.com": func(html string) (int, bool) {
		if n, ok := firstRegexPrice(html, tySalePriceRe, tySellPriceRe); ok {
			return n, true
		}
		return metaOrJSONLD(html)
	},
	"vatanbilgisayar.com": func(html string) (int, bool) {
		if n, ok := extractFromJSONLD(html); ok {
			return n, true
		}
		if n, ok := firstRegexPrice(html, priceClassRe); ok {
			return n, true
		}
		return extractFromMeta(html)
	},
	"teknosa.com": func(html string) (int, bool) {
		if n, ok := metaOrJSONLD(html); ok {
			return n, true
		}
		return firstRegexPrice(html, priceClassRe)
	},
	"incehesap.com": func(html string) (int, bool) {
		if n, ok := metaOrJSONLD(html); ok {
			return n, true
		}
		return firstRegexPrice(html, priceClassRe)
	},
	"mediamarkt.com.tr": metaOrJSONLD,
	"n11.com":           metaOrJSONLD,
}

// ExtractPrice pulls a normalized TRY price out of raw page HTML using the
// full cascade: embedded framework state, the retailer-specific extractor
// for the URL's domain, generic currency/JSON-LD/meta patterns, and
// finally the median of all currency-marked tokens on the page. Every
// stage failure falls through; the final result must pass the sanity
// bound.
func ExtractPrice(html, pageURL string) (int, bool) {
	if n, ok := extractFromEmbeddedJSON(html); ok && IsPriceSane(n) {
		return n, true
	}

	if u, err := url.Parse(pageURL); err == nil {
		root := domains.RootDomain(u.Hostname())
		if extract, ok := retailerExtractors[root]; ok {
			if n, ok := extract(html); ok && IsPriceSane(n) {
				return n, true
			}
		}
	}

	if n, ok := firstRegexPrice(html, genericTLRe); ok && IsPriceSane(n) {
		return n, true
	}
	if n, ok := extractFromJSONLD(html); ok && IsPriceSane(n) {
		return n, true
	}
	if n, ok := extractFromMeta(html); ok && IsPriceSane(n) {
		return n, true
	}

	return ParsePriceTextTRY(html)
}
