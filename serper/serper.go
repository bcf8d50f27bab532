// Package serper wraps the serper.dev keyword-search API in shopping and
// web modes, region-pinned to Turkey.
package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"muadil/models"
)

const defaultBaseURL = "https://google.serper.dev"

// Client calls the serper.dev API.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a serper client. The API key must be non-empty; the
// caller validates configuration before serving.
func NewClient(apiKey string, timeout time.Duration) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// SetBaseURL overrides the API endpoint (tests).
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

type request struct {
	Q   string `json:"q"`
	GL  string `json:"gl"`
	HL  string `json:"hl"`
	Num int    `json:"num"`
}

type shoppingResponse struct {
	ShoppingResults []struct {
		Title string `json:"title"`
		Link  string `json:"link"`
		Price string `json:"price"`
	} `json:"shopping_results"`
}

type webResponse struct {
	Organic []struct {
		Title string `json:"title"`
		Link  string `json:"link"`
	} `json:"organic"`
}

// Shopping queries shopping mode and returns candidate tuples with the
// provider's price text attached.
func (c *Client) Shopping(ctx context.Context, q string, num int) ([]models.CandidateLink, error) {
	var resp shoppingResponse
	if err := c.post(ctx, "/shopping", q, num, &resp); err != nil {
		return nil, err
	}
	out := make([]models.CandidateLink, 0, len(resp.ShoppingResults))
	for _, r := range resp.ShoppingResults {
		if r.Link == "" {
			continue
		}
		out = append(out, models.CandidateLink{Title: r.Title, URL: r.Link, PriceHint: r.Price})
	}
	return out, nil
}

// Web queries general web mode. A site-restriction suffix (`site:domain`)
// may be appended to q by the caller.
func (c *Client) Web(ctx context.Context, q string, num int) ([]models.CandidateLink, error) {
	var resp webResponse
	if err := c.post(ctx, "/search", q, num, &resp); err != nil {
		return nil, err
	}
	out := make([]models.CandidateLink, 0, len(resp.Organic))
	for _, r := range resp.Organic {
		if r.Link == "" {
			continue
		}
		out = append(out, models.CandidateLink{Title: r.Title, URL: r.Link})
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path, q string, num int, out any) error {
	body, err := json.Marshal(request{Q: q, GL: "tr", HL: "tr", Num: num})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("serper %s: %w", path, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("serper %s: status %d", path, res.StatusCode)
	}
	return json.NewDecoder(res.Body).Decode(out)
}
