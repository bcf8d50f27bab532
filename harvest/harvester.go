// Package harvest collects candidate product links for a query, falling
// back through progressively more expensive search stages until enough
// candidates are found.
package harvest

import (
	"context"
	"log"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"muadil/diag"
	"muadil/domains"
	"muadil/intent"
	"muadil/models"
	"muadil/scraper"
)

const (
	// shoppingResults is the result count requested from the shopping index.
	shoppingResults = 30
	// webResults is the result count requested from the web index.
	webResults = 20
	// minCandidates is the pool size below which fallback stages kick in.
	minCandidates = 3
	// maxListingPages caps how many listing pages get expanded.
	maxListingPages = 8
	// maxLinksPerListing caps links taken from a single listing page.
	maxLinksPerListing = 20
	// maxSiteQueries caps the per-domain query variants in the last stage.
	maxSiteQueries = 4
	// siteResults is the result count for site-restricted queries.
	siteResults = 10
)

// Provider is the search backend. Both methods return raw results; the
// harvester does its own domain filtering.
type Provider interface {
	Shopping(ctx context.Context, query string, num int) ([]models.CandidateLink, error)
	Web(ctx context.Context, query string, num int) ([]models.CandidateLink, error)
}

type Harvester struct {
	provider Provider
	fetcher  scraper.Fetcher
	workers  int
}

func NewHarvester(provider Provider, fetcher scraper.Fetcher, workers int) *Harvester {
	if workers < 1 {
		workers = 4
	}
	return &Harvester{provider: provider, fetcher: fetcher, workers: workers}
}

// Harvest runs the fallback cascade. strict limits candidates to the
// allowed Turkish retail domains; with strict off, any URL that looks
// like a product page passes. An empty result is not an error.
func (h *Harvester) Harvest(ctx context.Context, query string, category models.Category, strict bool, trace *diag.Trace) ([]models.CandidateLink, error) {
	shopping, err := h.provider.Shopping(ctx, query, shoppingResults)
	if err != nil {
		return nil, err
	}
	trace.Stage("shopping", map[string]int{"raw": len(shopping)})

	pool := newCandidatePool(strict)
	listings := pool.absorb(shopping)
	trace.Stage("shopping_filtered", map[string]int{"kept": pool.len(), "listings": len(listings)})

	// The web index only runs when shopping came back empty, not merely thin.
	if len(shopping) == 0 {
		web, werr := h.provider.Web(ctx, query, webResults)
		if werr != nil {
			log.Printf("⚠️ Web search fallback failed: %v", werr)
		} else {
			trace.Stage("web", map[string]int{"raw": len(web)})
			listings = append(listings, pool.absorb(web)...)
		}
	}

	if pool.len() < minCandidates && len(listings) > 0 {
		expanded := h.expandListings(ctx, listings, pool, trace)
		trace.Stage("listing_expansion", map[string]int{"pages": expanded, "kept": pool.len()})
	}

	if pool.len() < minCandidates {
		h.siteQueries(ctx, query, category, pool, trace)
		trace.Stage("site_queries", map[string]int{"kept": pool.len()})
	}

	return pool.links(), nil
}

// expandListings fetches up to maxListingPages expansion URLs in
// parallel, mines their product links, then fetches each mined link so
// the candidate carries its own page title and price rather than the
// listing's. Returns the page count.
func (h *Harvester) expandListings(ctx context.Context, listings []string, pool *candidatePool, trace *diag.Trace) int {
	if len(listings) > maxListingPages {
		listings = listings[:maxListingPages]
	}

	var mu sync.Mutex
	var mined []string
	seen := map[string]bool{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.workers)
	for _, listURL := range listings {
		listURL := listURL
		g.Go(func() error {
			res, err := h.fetcher.Fetch(gctx, listURL)
			if err != nil {
				log.Printf("⚠️ Listing fetch failed for %s: %v", listURL, err)
				return nil
			}
			ext := scraper.ExtractProductLinks(res.HTML, listURL)
			trace.Listing(diag.ListingNote{
				URL:     listURL,
				Status:  res.Status,
				Anchors: ext.Anchors,
				JSONLD:  ext.JSONLD,
				RawJSON: ext.RawJSON,
				BotWall: res.BotWall || ext.BotWall,
			})
			links := ext.Links
			if len(links) > maxLinksPerListing {
				links = links[:maxLinksPerListing]
			}
			mu.Lock()
			for _, u := range links {
				if !seen[u] && !pool.contains(u) {
					seen[u] = true
					mined = append(mined, u)
				}
			}
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(h.workers)
	for _, prodURL := range mined {
		prodURL := prodURL
		g.Go(func() error {
			res, err := h.fetcher.Fetch(gctx, prodURL)
			if err != nil {
				log.Printf("⚠️ Product fetch failed for %s: %v", prodURL, err)
				return nil
			}
			c := models.CandidateLink{URL: prodURL}
			if !res.BotWall {
				c.Title = scraper.PageTitle(res.HTML)
				if n, ok := scraper.ExtractPrice(res.HTML, prodURL); ok {
					c.PriceHint = strconv.Itoa(n) + " TL"
				}
			}
			pool.absorb([]models.CandidateLink{c})
			return nil
		})
	}
	g.Wait()
	return len(listings)
}

// siteQueries runs site-restricted web searches against the priority
// domains, a few query variants per domain, until the pool fills up.
func (h *Harvester) siteQueries(ctx context.Context, query string, category models.Category, pool *candidatePool, trace *diag.Trace) {
	variants := intent.SiteQueryVariants(query, category)
	if len(variants) > maxSiteQueries {
		variants = variants[:maxSiteQueries]
	}
	for _, domain := range domains.SearchPriority {
		for _, variant := range variants {
			if pool.len() >= minCandidates {
				return
			}
			q := "site:" + domain + " " + variant
			results, err := h.provider.Web(ctx, q, siteResults)
			if err != nil {
				log.Printf("⚠️ Site query failed for %s: %v", domain, err)
				continue
			}
			pool.absorb(results)
		}
	}
}

// candidatePool deduplicates candidates by URL and applies the domain
// and product-page filters as links arrive.
type candidatePool struct {
	mu     sync.Mutex
	strict bool
	seen   map[string]bool
	items  []models.CandidateLink
}

func newCandidatePool(strict bool) *candidatePool {
	return &candidatePool{strict: strict, seen: make(map[string]bool)}
}

// absorb filters and keeps product links; any other URL on an allowed
// domain is returned to the caller for possible expansion instead of
// kept, whether it carries a listing marker or not.
func (p *candidatePool) absorb(candidates []models.CandidateLink) []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var listings []string
	for _, c := range candidates {
		if c.URL == "" || p.seen[c.URL] {
			continue
		}
		allowed := domains.IsAllowed(c.URL)
		if p.strict && !allowed {
			continue
		}
		switch {
		case domains.IsProductPage(c.URL):
			p.seen[c.URL] = true
			p.items = append(p.items, c)
		case allowed && !domains.IsAssetURL(c.URL):
			p.seen[c.URL] = true
			listings = append(listings, c.URL)
		}
	}
	return listings
}

func (p *candidatePool) contains(url string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seen[url]
}

func (p *candidatePool) len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}

func (p *candidatePool) links() []models.CandidateLink {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.CandidateLink, len(p.items))
	copy(out, p.items)
	return out
}
