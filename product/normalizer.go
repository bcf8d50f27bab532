// Package product converts raw candidate tuples into canonical Product
// records and groups them into brand/model entities.
package product

import (
	"regexp"
	"strings"

	"muadil/models"
	"muadil/scraper"
)

// normalized-name alphabet: ascii alphanumerics plus Turkish letters
var nameStripRe = regexp.MustCompile(`[^a-z0-9ğüşöçı]`)

// NormalizeName lowers, strips whitespace and punctuation, and keeps
// Turkish letters. Two titles normalizing to the same key are the same
// product.
func NormalizeName(name string) string {
	s := strings.ToLower(name)
	s = strings.Join(strings.Fields(s), "")
	return nameStripRe.ReplaceAllString(s, "")
}

// Merge deduplicates candidate links by normalized title. On collision the
// new source is appended and price bounds are extended with the new
// source's sane hint price; nulls never shrink the range. Merging is
// idempotent: a (title, url) pair already absorbed changes nothing.
func Merge(links []models.CandidateLink) []*models.Product {
	byKey := map[string]*models.Product{}
	var order []string

	for _, link := range links {
		if link.URL == "" {
			continue
		}
		key := NormalizeName(link.Title)
		if key == "" {
			key = link.URL
		}

		var hint *int
		if n, ok := scraper.ParsePriceTextTRY(link.PriceHint); ok {
			hint = &n
		}

		p, exists := byKey[key]
		if !exists {
			name := link.Title
			if name == "" {
				name = "Ürün"
			}
			p = models.NewProduct(name, link.URL)
			p.Sources[0].Price = hint
			byKey[key] = p
			order = append(order, key)
		} else {
			if hasSource(p, link.URL) {
				continue
			}
			p.Sources = append(p.Sources, models.Source{URL: link.URL, Price: hint})
		}
		if hint != nil {
			p.ExtendPrice(*hint)
		}
	}

	out := make([]*models.Product, 0, len(order))
	for _, key := range order {
		out = append(out, byKey[key])
	}
	return out
}

func hasSource(p *models.Product, url string) bool {
	for _, s := range p.Sources {
		if s.URL == url {
			return true
		}
	}
	return false
}

// Priced filters to products with a verified sane minimum price. The
// response contract guarantees every returned product passed this gate.
func Priced(products []*models.Product) []*models.Product {
	out := make([]*models.Product, 0, len(products))
	for _, p := range products {
		if n, ok := p.PriceMin(); ok && scraper.IsPriceSane(n) {
			out = append(out, p)
		}
	}
	return out
}
