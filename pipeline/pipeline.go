// Package pipeline wires the full search flow: query intent, candidate
// harvesting, price verification, spec enrichment, and band building.
package pipeline

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"muadil/diag"
	"muadil/harvest"
	"muadil/intent"
	"muadil/models"
	"muadil/product"
	"muadil/rank"
	"muadil/scraper"
	"muadil/specs"
)

// Turkish user-facing outcomes. An empty pool or a fully filtered result
// set is a normal response, never an HTTP error.
const (
	msgNoProducts     = "Türkiye sitelerinde uygun ürün bulunamadı."
	msgNoURLs         = "URL bulunamadı."
	msgNoVerified     = "Fiyatı doğrulanmış ürün bulunamadı."
	msgFilterMismatch = "Aradığınız kriterlere birebir uyan ürün bulunamadı, en yakın sonuçlar listelendi."
)

type Request struct {
	Query            string
	Category         models.Category
	StrictRegionOnly bool
	Debug            bool
}

type Searcher struct {
	harvester *harvest.Harvester
	fetcher   scraper.Fetcher
	enricher  *specs.Enricher
	workers   int
}

func NewSearcher(harvester *harvest.Harvester, fetcher scraper.Fetcher, enricher *specs.Enricher, workers int) *Searcher {
	if workers < 1 {
		workers = 4
	}
	return &Searcher{harvester: harvester, fetcher: fetcher, enricher: enricher, workers: workers}
}

func (s *Searcher) Search(ctx context.Context, req Request) (*models.SearchResponse, error) {
	started := time.Now()
	want := intent.Parse(req.Query)

	var trace *diag.Trace
	if req.Debug {
		trace = diag.New(req.Query)
	}

	resp := &models.SearchResponse{
		Query:     req.Query,
		Category:  req.Category,
		CheckedAt: started.UTC(),
	}
	finish := func() (*models.SearchResponse, error) {
		if trace != nil {
			resp.Debug = trace
		}
		log.Printf("✅ Search finished for %q in %v", req.Query, time.Since(started).Round(time.Millisecond))
		return resp, nil
	}

	links, err := s.harvester.Harvest(ctx, req.Query, req.Category, req.StrictRegionOnly, trace)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		resp.Message = msgNoProducts
		return finish()
	}

	products := product.Merge(links)
	if len(products) == 0 {
		resp.Message = msgNoURLs
		return finish()
	}
	log.Printf("🔍 %d candidate links merged into %d products", len(links), len(products))

	s.verifyPrices(ctx, products, trace)

	priced := product.Priced(products)
	if len(priced) == 0 {
		resp.Message = msgNoVerified
		return finish()
	}

	s.enrich(ctx, priced, req.Category)
	shareEntitySpecs(priced)

	matched := rank.FilterByQuery(priced, want)
	if len(matched) == 0 {
		resp.Message = msgFilterMismatch
		resp.Products = []*models.Product{}
		resp.Bands = rank.BuildBands(matched, want)
		resp.FallbackBands = rank.BuildBands(priced, want)
		return finish()
	}

	resp.Products = matched
	resp.Bands = rank.BuildBands(matched, want)
	return finish()
}

// verifyPrices fetches each product's first source page and extends the
// price bounds with whatever the extractor finds. Hint-seeded bounds are
// never overwritten; a failed check just leaves them as they were.
func (s *Searcher) verifyPrices(ctx context.Context, products []*models.Product, trace *diag.Trace) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, p := range products {
		if len(p.Sources) == 0 {
			continue
		}
		p := p
		g.Go(func() error {
			srcURL := p.Sources[0].URL
			res, err := s.fetcher.Fetch(gctx, srcURL)
			if err != nil {
				trace.Check(diag.CheckNote{URL: srcURL, Reason: err.Error()})
				return nil
			}
			if res.BotWall {
				trace.Check(diag.CheckNote{URL: srcURL, Status: res.Status, Reason: "bot wall"})
				return nil
			}
			n, ok := scraper.ExtractPrice(res.HTML, srcURL)
			if !ok {
				trace.Check(diag.CheckNote{URL: srcURL, Status: res.Status, Reason: "no price found"})
				return nil
			}
			p.ExtendPrice(n)
			p.Sources[0].Price = &n
			trace.Check(diag.CheckNote{URL: srcURL, Status: res.Status, Price: &n})
			return nil
		})
	}
	g.Wait()
}

// shareEntitySpecs propagates specs between retailer listings of the same
// brand+model: a gap in one listing is filled from a sibling that has the
// value. Existing values are never overwritten.
func shareEntitySpecs(products []*models.Product) {
	for _, e := range product.GroupEntities(products) {
		if len(e.Products) < 2 {
			continue
		}
		for _, p := range e.Products {
			for k, v := range e.Specs {
				if _, exists := p.Specs[k]; !exists {
					p.Specs[k] = v
				}
			}
		}
	}
}

// enrich fills missing specs in parallel and sanitizes afterwards.
// A product that stays without specs still ranks on price.
func (s *Searcher) enrich(ctx context.Context, products []*models.Product, category models.Category) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, p := range products {
		p := p
		g.Go(func() error {
			s.enricher.Enrich(gctx, p, category)
			specs.Sanitize(p)
			return nil
		})
	}
	g.Wait()
}
