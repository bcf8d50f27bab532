package scraper

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"muadil/domains"
)

// maxLinksPerPage caps one listing page's contribution to the candidate
// pool.
const maxLinksPerPage = 40

const ldWalkDepth = 6

// LinkExtraction is the result of mining one listing page for product
// URLs.
type LinkExtraction struct {
	Links   []string
	Anchors int
	JSONLD  int
	RawJSON int
	BotWall bool
}

// ExtractProductLinks runs four independent strategies over listing-page
// HTML — anchor scan, JSON-LD walk, embedded-state mining and a raw
// quoted-path scan — unions the results, and keeps only deduplicated
// same-root product-page URLs. BotWall flags challenge pages: their empty
// extractions are not evidence of an empty listing.
func ExtractProductLinks(html, baseURL string) *LinkExtraction {
	out := &LinkExtraction{BotWall: IsBotWall(html)}

	base, err := url.Parse(baseURL)
	if err != nil {
		return out
	}
	baseRoot := domains.RootDomain(base.Hostname())

	var doc *goquery.Document
	if d, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		doc = d
	}

	anchors := extractViaAnchors(doc, base, baseRoot)
	jsonld := extractViaJSONLD(doc, base, baseRoot)
	rawjson := extractViaEmbeddedState(doc, base, baseRoot)
	rawpattern := extractViaRawPattern(html, base, baseRoot)

	out.Anchors = len(anchors)
	out.JSONLD = len(jsonld)
	out.RawJSON = len(rawjson) + len(rawpattern)

	seen := map[string]bool{}
	for _, group := range [][]string{anchors, jsonld, rawjson, rawpattern} {
		for _, u := range group {
			if seen[u] {
				continue
			}
			seen[u] = true
			out.Links = append(out.Links, u)
			if len(out.Links) >= maxLinksPerPage {
				return out
			}
		}
	}
	return out
}

// absolutize resolves href against base, fixing entity-encoded ampersands.
func absolutize(href string, base *url.URL) (string, bool) {
	href = strings.ReplaceAll(href, "&amp;", "&")
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	return abs.String(), true
}

// keepProductLink applies the shared filters: same effective root domain,
// not an asset, not a listing, classified as a product page.
func keepProductLink(abs, baseRoot string) bool {
	if domains.IsAssetURL(abs) || domains.IsListingURL(abs) {
		return false
	}
	u, err := url.Parse(abs)
	if err != nil {
		return false
	}
	if domains.RootDomain(u.Hostname()) != baseRoot {
		return false
	}
	return domains.IsProductPage(abs) && len(u.Path) > 3
}

func extractViaAnchors(doc *goquery.Document, base *url.URL, baseRoot string) []string {
	if doc == nil {
		return nil
	}
	var out []string
	seen := map[string]bool{}
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		abs, ok := absolutize(href, base)
		if !ok || seen[abs] {
			return
		}
		if keepProductLink(abs, baseRoot) {
			seen[abs] = true
			out = append(out, abs)
		}
	})
	return out
}

func extractViaJSONLD(doc *goquery.Document, base *url.URL, baseRoot string) []string {
	if doc == nil {
		return nil
	}
	var raw []string
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		var data any
		if err := json.Unmarshal([]byte(sel.Text()), &data); err != nil {
			return // some sites ship broken JSON-LD
		}
		nodes, ok := data.([]any)
		if !ok {
			nodes = []any{data}
		}
		for _, node := range nodes {
			collectLDURLs(node, &raw, 0)
		}
	})
	return filterHarvested(raw, base, baseRoot)
}

// collectLDURLs walks ItemList/Product/@graph nodes collecting url and
// offers.url fields, depth-bounded.
func collectLDURLs(node any, out *[]string, depth int) {
	if depth > ldWalkDepth {
		return
	}
	m, ok := node.(map[string]any)
	if !ok {
		if arr, ok := node.([]any); ok {
			for _, item := range arr {
				collectLDURLs(item, out, depth+1)
			}
		}
		return
	}

	if m["@type"] == "ItemList" {
		if elems, ok := m["itemListElement"].([]any); ok {
			for _, e := range elems {
				em, ok := e.(map[string]any)
				if !ok {
					continue
				}
				switch item := em["item"].(type) {
				case string:
					*out = append(*out, item)
				case map[string]any:
					if u, ok := item["url"].(string); ok {
						*out = append(*out, u)
					}
				}
				if u, ok := em["url"].(string); ok {
					*out = append(*out, u)
				}
			}
		}
	}
	if m["@type"] == "Product" {
		if u, ok := m["url"].(string); ok {
			*out = append(*out, u)
		}
		if u, ok := m["mainEntityOfPage"].(string); ok {
			*out = append(*out, u)
		}
		offers := m["offers"]
		offerList, ok := offers.([]any)
		if !ok && offers != nil {
			offerList = []any{offers}
		}
		for _, o := range offerList {
			om, ok := o.(map[string]any)
			if !ok {
				continue
			}
			if u, ok := om["url"].(string); ok {
				*out = append(*out, u)
			}
			if item, ok := om["itemOffered"].(map[string]any); ok {
				if u, ok := item["url"].(string); ok {
					*out = append(*out, u)
				}
			}
		}
	}
	if graph, ok := m["@graph"].([]any); ok {
		for _, g := range graph {
			collectLDURLs(g, out, depth+1)
		}
	}
	for _, v := range m {
		switch v.(type) {
		case map[string]any, []any:
			collectLDURLs(v, out, depth+1)
		}
	}
}

// quoted product-path shapes inside inline scripts / raw HTML
var (
	scriptURLPatternRe = regexp.MustCompile(`["']((?:https?://|/)[^"' ]*(?:-p-\d+|/dp/[^"'?]+|/urun/[^"'?]+|/product/[^"'?]+)[^"' ]*)["']`)
	rawURLPatternRe    = regexp.MustCompile(`["'](/[^"']*(?:-p-\d+|/dp/[^"'?]+|/urun/[^"'?]+|/product/[^"'?]+)[^"']*)["']`)
	jsonStartRe        = regexp.MustCompile(`^\s*[{\[]`)
)

// extractViaEmbeddedState mines the hydration payloads frameworks inline
// into the page: the named initial-state block, application/json scripts,
// and quoted URLs in plain inline JS.
func extractViaEmbeddedState(doc *goquery.Document, base *url.URL, baseRoot string) []string {
	if doc == nil {
		return nil
	}
	var raw []string
	doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
		body := strings.TrimSpace(sel.Text())
		if body == "" {
			return
		}
		if jsonStartRe.MatchString(body) {
			var data any
			if err := json.Unmarshal([]byte(body), &data); err == nil {
				collectJSONURLs(data, &raw, 0)
				return
			}
		}
		// window.__STATE__ = {...} and friends: not valid bare JSON,
		// fall back to the quoted-path scan
		for _, m := range scriptURLPatternRe.FindAllStringSubmatch(body, -1) {
			raw = append(raw, m[1])
		}
	})
	return filterHarvested(raw, base, baseRoot)
}

// collectJSONURLs walks decoded JSON collecting strings that look like
// absolute or root-relative URLs.
func collectJSONURLs(node any, out *[]string, depth int) {
	if depth > ldWalkDepth {
		return
	}
	switch v := node.(type) {
	case map[string]any:
		for _, val := range v {
			collectJSONURLs(val, out, depth+1)
		}
	case []any:
		for _, item := range v {
			collectJSONURLs(item, out, depth+1)
		}
	case string:
		if strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://") ||
			(strings.HasPrefix(v, "/") && len(v) > 1 && !strings.HasPrefix(v, "//")) {
			*out = append(*out, v)
		}
	}
}

// extractViaRawPattern scans the raw HTML text for quoted product-path
// shapes; the last resort for non-JSON inline state.
func extractViaRawPattern(html string, base *url.URL, baseRoot string) []string {
	var raw []string
	for _, m := range rawURLPatternRe.FindAllStringSubmatch(html, -1) {
		raw = append(raw, m[1])
	}
	return filterHarvested(raw, base, baseRoot)
}

func filterHarvested(raw []string, base *url.URL, baseRoot string) []string {
	var out []string
	seen := map[string]bool{}
	for _, href := range raw {
		abs, ok := absolutize(href, base)
		if !ok || seen[abs] {
			continue
		}
		if keepProductLink(abs, baseRoot) {
			seen[abs] = true
			out = append(out, abs)
		}
	}
	return out
}

var titleSpaceRe = regexp.MustCompile(`\s+`)

// PageTitle returns the page's <title> or og:title, whitespace-collapsed.
func PageTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	t := strings.TrimSpace(doc.Find("title").First().Text())
	if t == "" {
		t = doc.Find(`meta[property="og:title"]`).AttrOr("content", "")
		if t == "" {
			t = doc.Find(`meta[name="og:title"]`).AttrOr("content", "")
		}
	}
	return strings.TrimSpace(titleSpaceRe.ReplaceAllString(t, " "))
}
