package scraper

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

const (
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"
	acceptLanguage = "tr-TR,tr;q=0.9,en;q=0.8"

	// maxBodyBytes caps how much of a page we read; retailer pages past a
	// few MB are not product detail pages.
	maxBodyBytes = 4 << 20
)

// FetchResult is one fetched page.
type FetchResult struct {
	HTML    string
	Status  int
	BotWall bool
}

// Fetcher retrieves a page body. Implementations must honor ctx
// cancellation and carry their own timeouts.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// StaticFetcher is the fast path: a plain HTTP GET with browser-like
// headers.
type StaticFetcher struct {
	client *http.Client
}

// NewStaticFetcher creates a static fetcher with a per-request timeout.
func NewStaticFetcher(timeout time.Duration) *StaticFetcher {
	return &StaticFetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch performs a GET and flags bot-wall bodies.
func (f *StaticFetcher) Fetch(ctx context.Context, url string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", acceptLanguage)
	req.Header.Set("Cache-Control", "no-cache")

	res, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	html := string(body)
	return &FetchResult{HTML: html, Status: res.StatusCode, BotWall: IsBotWall(html)}, nil
}

// BrowserFetcher renders pages through a headless browser. It is the slow
// path for pages where the static fetch only gets a challenge body.
type BrowserFetcher struct {
	browser *rod.Browser
}

// NewBrowserFetcher launches a headless browser. Failure here disables the
// browser path only; it is never fatal for the service.
func NewBrowserFetcher() (*BrowserFetcher, error) {
	u, err := launcher.New().Headless(true).NoSandbox(true).Leakless(false).Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	return &BrowserFetcher{browser: browser}, nil
}

// Fetch renders the page and returns its final DOM.
func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (*FetchResult, error) {
	page, err := f.browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, err
	}
	defer page.Close()
	page = page.Context(ctx)

	if err := page.WaitLoad(); err != nil {
		return nil, err
	}
	html, err := page.HTML()
	if err != nil {
		return nil, err
	}
	// The browser completed the challenge or there never was one; status
	// is not observable through the DOM, assume OK.
	return &FetchResult{HTML: html, Status: http.StatusOK, BotWall: IsBotWall(html)}, nil
}

// Close shuts the browser down.
func (f *BrowserFetcher) Close() {
	if f.browser != nil {
		_ = f.browser.Close()
	}
}

// HybridFetcher tries the static fetch first and falls back to the browser
// when the static body is a bot wall. Without a browser it degrades to
// static-only.
type HybridFetcher struct {
	static  *StaticFetcher
	browser *BrowserFetcher
}

// NewHybridFetcher wires the cascade. browser may be nil.
func NewHybridFetcher(static *StaticFetcher, browser *BrowserFetcher) *HybridFetcher {
	return &HybridFetcher{static: static, browser: browser}
}

// Fetch runs the static-then-browser cascade.
func (f *HybridFetcher) Fetch(ctx context.Context, url string) (*FetchResult, error) {
	res, err := f.static.Fetch(ctx, url)
	if err == nil && !res.BotWall {
		return res, nil
	}
	if f.browser == nil {
		return res, err
	}
	if err != nil {
		log.Printf("⚠️ static fetch failed for %s, trying browser: %v", url, err)
	} else {
		log.Printf("🤖 bot wall at %s, retrying with browser", url)
	}
	bres, berr := f.browser.Fetch(ctx, url)
	if berr != nil {
		// keep the static result if there was one
		if res != nil {
			return res, nil
		}
		return nil, berr
	}
	return bres, nil
}

// Close releases the browser, if any.
func (f *HybridFetcher) Close() {
	if f.browser != nil {
		f.browser.Close()
	}
}
