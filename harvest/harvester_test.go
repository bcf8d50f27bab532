package harvest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"muadil/models"
	"muadil/product"
	"muadil/scraper"
)

type fakeProvider struct {
	shopping []models.CandidateLink
	web      []models.CandidateLink
	webCalls []string
}

func (f *fakeProvider) Shopping(_ context.Context, _ string, _ int) ([]models.CandidateLink, error) {
	return f.shopping, nil
}

func (f *fakeProvider) Web(_ context.Context, q string, _ int) ([]models.CandidateLink, error) {
	f.webCalls = append(f.webCalls, q)
	return f.web, nil
}

type fakeFetcher struct {
	pages map[string]string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*scraper.FetchResult, error) {
	html := f.pages[url]
	return &scraper.FetchResult{HTML: html, Status: 200, BotWall: scraper.IsBotWall(html)}, nil
}

func link(title, url string) models.CandidateLink {
	return models.CandidateLink{Title: title, URL: url}
}

func productHTML(title string, price int) string {
	return fmt.Sprintf(`<html><head><title>%s</title></head><body><span class="price">%d TL</span></body></html>`, title, price)
}

func TestHarvestKeepsAllowedProductPages(t *testing.T) {
	provider := &fakeProvider{shopping: []models.CandidateLink{
		link("G502", "https://www.trendyol.com/logitech/g502-p-111111"),
		link("Viper", "https://www.n11.com/urun/razer-viper-222"),
		link("G Pro", "https://www.hepsiburada.com/logitech-g-pro-p-333333"),
		link("off-site", "https://www.aliexpress.com/item/444.html"),
		link("listing", "https://www.trendyol.com/sr?q=mouse"),
	}}
	h := NewHarvester(provider, &fakeFetcher{}, 2)

	out, err := h.Harvest(context.Background(), "kablosuz mouse", models.CategoryMouse, true, nil)
	require.NoError(t, err)
	require.Len(t, out, 3)
	// enough direct candidates: no fallback queries fired
	assert.Empty(t, provider.webCalls)
}

func TestHarvestNonStrictAcceptsGenericProductPages(t *testing.T) {
	provider := &fakeProvider{shopping: []models.CandidateLink{
		link("G502", "https://www.trendyol.com/logitech/g502-p-111111"),
		link("global", "https://globalshop.example.com/product/gaming-mouse"),
	}}
	h := NewHarvester(provider, &fakeFetcher{}, 2)

	strictOut, err := h.Harvest(context.Background(), "mouse", models.CategoryMouse, true, nil)
	require.NoError(t, err)

	looseOut, err := h.Harvest(context.Background(), "mouse", models.CategoryMouse, false, nil)
	require.NoError(t, err)

	assert.Len(t, strictOut, 1)
	assert.Len(t, looseOut, 2)
}

func TestHarvestExpandsListingsWhenThin(t *testing.T) {
	listingURL := "https://www.trendyol.com/sr?q=kablosuz+mouse"
	provider := &fakeProvider{shopping: []models.CandidateLink{
		link("G502", "https://www.trendyol.com/logitech/g502-p-111111"),
		link("listing", listingURL),
	}}
	fetcher := &fakeFetcher{pages: map[string]string{
		listingURL: `<html><head><title>Mouse Listesi</title></head><body>
			<a href="/razer/viper-p-222222">Viper</a>
			<a href="/steelseries/rival-p-333333">Rival</a>
		</body></html>`,
	}}
	h := NewHarvester(provider, fetcher, 2)

	out, err := h.Harvest(context.Background(), "kablosuz mouse", models.CategoryMouse, true, nil)
	require.NoError(t, err)
	assert.Len(t, out, 3)
	assert.Empty(t, provider.webCalls)
}

func TestHarvestMinedLinksCarryOwnPageData(t *testing.T) {
	listingURL := "https://www.trendyol.com/sr?q=kablosuz+mouse"
	provider := &fakeProvider{shopping: []models.CandidateLink{link("Mouse Listesi", listingURL)}}
	fetcher := &fakeFetcher{pages: map[string]string{
		listingURL: `<html><head><title>Mouse Listesi</title></head><body>
			<a href="/logitech/g502-x-p-111111">G502</a>
			<a href="/razer/viper-p-222222">Viper</a>
			<a href="/steelseries/rival-p-333333">Rival</a>
		</body></html>`,
		"https://www.trendyol.com/logitech/g502-x-p-111111":   productHTML("Logitech G502 X Kablosuz Mouse", 1899),
		"https://www.trendyol.com/razer/viper-p-222222":       productHTML("Razer Viper V2 Kablosuz Mouse", 2499),
		"https://www.trendyol.com/steelseries/rival-p-333333": productHTML("SteelSeries Rival 3 Kablosuz Mouse", 1299),
	}}
	h := NewHarvester(provider, fetcher, 2)

	out, err := h.Harvest(context.Background(), "kablosuz mouse", models.CategoryMouse, true, nil)
	require.NoError(t, err)
	require.Len(t, out, 3)

	// each candidate carries its own product page's title and price,
	// not the listing page's
	titles := map[string]bool{}
	for _, c := range out {
		titles[c.Title] = true
		assert.NotContains(t, c.Title, "Listesi")
		assert.NotEmpty(t, c.PriceHint)
	}
	assert.Len(t, titles, 3)

	// distinct titles survive name-keyed merging as distinct products
	assert.Len(t, product.Merge(out), 3)
}

func TestHarvestExpandsBrandPagesWithoutListingMarkers(t *testing.T) {
	brandURL := "https://www.hepsiburada.com/logitech"
	provider := &fakeProvider{shopping: []models.CandidateLink{link("Logitech", brandURL)}}
	fetcher := &fakeFetcher{pages: map[string]string{
		brandURL: `<html><body>
			<a href="/logitech-g502-x-p-111111">G502</a>
			<a href="/logitech-g-pro-p-222222">G Pro</a>
		</body></html>`,
		"https://www.hepsiburada.com/logitech-g502-x-p-111111": productHTML("Logitech G502 X Mouse", 1899),
		"https://www.hepsiburada.com/logitech-g-pro-p-222222":  productHTML("Logitech G Pro Mouse", 2899),
	}}
	h := NewHarvester(provider, fetcher, 2)

	// the brand page has no listing marker in its URL, but it sits on an
	// allowed domain, so it still gets expanded
	out, err := h.Harvest(context.Background(), "mouse", models.CategoryMouse, true, nil)
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestHarvestBotWalledListingStillFallsThrough(t *testing.T) {
	listingURL := "https://www.trendyol.com/sr?q=mouse"
	provider := &fakeProvider{
		shopping: []models.CandidateLink{link("listing", listingURL)},
		web: []models.CandidateLink{
			link("G502", "https://www.hepsiburada.com/logitech-g502-p-111111"),
			link("Viper", "https://www.hepsiburada.com/razer-viper-p-222222"),
			link("Rival", "https://www.hepsiburada.com/steelseries-rival-p-333333"),
		},
	}
	fetcher := &fakeFetcher{pages: map[string]string{
		listingURL: "<body>Checking your browser before accessing</body>",
	}}
	h := NewHarvester(provider, fetcher, 2)

	out, err := h.Harvest(context.Background(), "mouse", models.CategoryMouse, true, nil)
	require.NoError(t, err)

	// the bot-walled listing produced nothing, so the site-restricted
	// stage must have run and filled the pool
	require.NotEmpty(t, provider.webCalls)
	assert.True(t, strings.HasPrefix(provider.webCalls[0], "site:"))
	assert.Len(t, out, 3)
}

func TestHarvestEmptyEverywhereIsNotAnError(t *testing.T) {
	provider := &fakeProvider{}
	h := NewHarvester(provider, &fakeFetcher{}, 2)

	out, err := h.Harvest(context.Background(), "mouse", models.CategoryMouse, true, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
	// shopping was empty, so the plain web fallback ran before the
	// site-restricted queries
	require.NotEmpty(t, provider.webCalls)
	assert.False(t, strings.HasPrefix(provider.webCalls[0], "site:"))
}

func TestHarvestDeduplicatesAcrossStages(t *testing.T) {
	dup := "https://www.trendyol.com/logitech/g502-p-111111"
	provider := &fakeProvider{shopping: []models.CandidateLink{
		link("G502", dup),
		link("G502 again", dup),
		link("Viper", "https://www.n11.com/urun/razer-viper-222"),
		link("Rival", "https://www.n11.com/urun/steelseries-rival-333"),
	}}
	h := NewHarvester(provider, &fakeFetcher{}, 2)

	out, err := h.Harvest(context.Background(), "mouse", models.CategoryMouse, true, nil)
	require.NoError(t, err)
	assert.Len(t, out, 3)
}
