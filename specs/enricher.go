package specs

import (
	"context"
	"log"
	"regexp"
	"strings"

	"muadil/models"
	"muadil/scraper"
)

var pageSpaceRe = regexp.MustCompile(`\s+`)

// Enricher fills a product's category schema: patterns against the title
// first, the product page second, the oracle last. The oracle is optional
// and its failures are swallowed.
type Enricher struct {
	fetcher scraper.Fetcher
	oracle  Oracle
}

// NewEnricher wires the enricher. oracle may be nil.
func NewEnricher(fetcher scraper.Fetcher, oracle Oracle) *Enricher {
	return &Enricher{fetcher: fetcher, oracle: oracle}
}

// Enrich fills still-empty schema keys in place. The product page is
// fetched at most once, and only when some key cannot be filled from the
// name alone.
func (e *Enricher) Enrich(ctx context.Context, p *models.Product, category models.Category) {
	defs := SchemaFor(category)
	if len(defs) == 0 {
		return
	}
	if p.Specs == nil {
		p.Specs = models.Specs{}
	}

	pageText := ""
	pageFetched := false
	fetchPage := func() string {
		if pageFetched {
			return pageText
		}
		pageFetched = true
		if e.fetcher == nil || len(p.Sources) == 0 {
			return ""
		}
		res, err := e.fetcher.Fetch(ctx, p.Sources[0].URL)
		if err != nil {
			log.Printf("⚠️ spec page fetch failed for %s: %v", p.Sources[0].URL, err)
			return ""
		}
		pageText = pageSpaceRe.ReplaceAllString(res.HTML, " ")
		return pageText
	}

	for _, d := range defs {
		if _, exists := p.Specs[d.Key]; exists {
			continue
		}
		raw, ok := matchFirst(d.Patterns, p.Name)
		if !ok {
			if text := fetchPage(); text != "" {
				raw, ok = matchFirst(d.Patterns, text)
			}
		}
		if !ok {
			continue
		}
		val := any(raw)
		if d.Post != nil {
			val = d.Post(raw)
		}
		if val != nil {
			p.Specs[d.Key] = val
		}
	}

	e.fillFromOracle(ctx, p, category, defs, fetchPage)
}

func matchFirst(patterns []*regexp.Regexp, text string) (string, bool) {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if len(m) > 1 && m[1] != "" {
			return m[1], true
		}
		return m[0], true
	}
	return "", false
}

// fillFromOracle asks the oracle for keys the heuristics left empty.
// Oracle values never override heuristic matches and keys outside the
// schema allow-list are dropped.
func (e *Enricher) fillFromOracle(ctx context.Context, p *models.Product, category models.Category, defs []Def, fetchPage func() string) {
	if e.oracle == nil {
		return
	}
	var missing []string
	for _, d := range defs {
		if _, exists := p.Specs[d.Key]; !exists {
			missing = append(missing, d.Key)
		}
	}
	if len(missing) == 0 {
		return
	}

	filled, err := e.oracle.Fill(ctx, p.Name, fetchPage(), missing)
	if err != nil {
		log.Printf("⚠️ oracle fill failed for %q: %v", p.Name, err)
		return
	}
	allowed := AllowedKeys(category)
	for k, v := range filled {
		if v == nil || !allowed[k] {
			continue
		}
		if _, exists := p.Specs[k]; exists {
			continue
		}
		p.Specs[k] = v
	}
}

// Sanitize discards out-of-range weights and canonicalizes the connection
// field by keyword-matching the name and any raw extracted value.
func Sanitize(p *models.Product) {
	if p.Specs == nil {
		p.Specs = models.Specs{}
	}

	if w, ok := p.Specs.Int("weight_g"); ok {
		if w < 20 || w > 200 {
			delete(p.Specs, "weight_g")
		} else {
			p.Specs["weight_g"] = w
		}
	} else if _, exists := p.Specs["weight_g"]; exists {
		delete(p.Specs, "weight_g")
	}

	conn := ""
	if s, ok := p.Specs.Str("connection"); ok {
		conn = s
	}
	probe := strings.ToLower(p.Name + " " + conn)
	switch {
	case wirelessRe.MatchString(probe):
		p.Specs["connection"] = string(models.ConnectionWireless)
	case wiredRe.MatchString(probe):
		p.Specs["connection"] = string(models.ConnectionWired)
	case conn != "":
		// raw value matched neither vocabulary; drop it rather than leak
		// retailer-specific wording into the enum
		delete(p.Specs, "connection")
	}
}
