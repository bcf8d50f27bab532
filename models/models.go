package models

import (
	"time"
)

// Category is one of the supported accessory categories. Canonical values
// follow the Turkish storefront vocabulary used across the retailer sites.
type Category string

const (
	CategoryMouse    Category = "mouse"
	CategoryKeyboard Category = "klavye"
	CategoryHeadset  Category = "kulaklik"
)

// ParseCategory accepts both the API enum (mouse/keyboard/headset) and the
// canonical Turkish names.
func ParseCategory(s string) (Category, bool) {
	switch s {
	case "mouse", "fare":
		return CategoryMouse, true
	case "keyboard", "klavye":
		return CategoryKeyboard, true
	case "headset", "kulaklik", "kulaklık":
		return CategoryHeadset, true
	}
	return "", false
}

// Connection is the canonical connection type of a product.
type Connection string

const (
	ConnectionWireless Connection = "kablosuz"
	ConnectionWired    Connection = "kablolu"
)

// Want holds the structured constraints extracted from a free-text query.
// Unset fields mean the query did not express that constraint; filters skip
// them. Immutable after extraction.
type Want struct {
	DPI        *int       `json:"dpi,omitempty"`
	WeightG    *int       `json:"weight_g,omitempty"`
	WeightMinG *int       `json:"weightMin_g,omitempty"`
	WeightMaxG *int       `json:"weightMax_g,omitempty"`
	Connection Connection `json:"connection,omitempty"`
	BudgetMin  *float64   `json:"budgetMin,omitempty"`
	BudgetMax  *float64   `json:"budgetMax,omitempty"`
}

// CandidateLink is an unverified (title, url, price text) tuple coming from
// the search provider or from listing-page link harvesting. URL is the
// natural key inside one harvesting pass.
type CandidateLink struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	PriceHint string `json:"priceHint,omitempty"`
}

// Source is one retailer page a product was seen on. Price is the verified
// integer TRY price extracted from that page, nil if none verified.
type Source struct {
	URL   string `json:"url"`
	Price *int   `json:"price,omitempty"`
}

// Price carries the running min/max bounds over a product's verified source
// prices. Bounds are only ever extended, never recomputed.
type Price struct {
	Min      *int   `json:"min"`
	Max      *int   `json:"max"`
	Currency string `json:"currency"`
}

// Specs maps schema attribute keys to extracted values. Values enter only
// through schema post-processors or the sanitizer, so readers can rely on
// the typed accessors.
type Specs map[string]any

// Int returns the value for key if it is an integer spec.
func (s Specs) Int(key string) (int, bool) {
	switch v := s[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	}
	return 0, false
}

// Str returns the value for key if it is a string spec.
func (s Specs) Str(key string) (string, bool) {
	v, ok := s[key].(string)
	return v, ok
}

// Bool returns the value for key if it is a boolean spec.
func (s Specs) Bool(key string) (bool, bool) {
	v, ok := s[key].(bool)
	return v, ok
}

// Product is a deduplicated, price-verified product record.
type Product struct {
	Name    string   `json:"name"`
	Sources []Source `json:"sources"`
	Price   *Price   `json:"price"`
	Specs   Specs    `json:"specs"`
}

// NewProduct creates a product with a single source and empty price bounds.
func NewProduct(name, url string) *Product {
	return &Product{
		Name:    name,
		Sources: []Source{{URL: url}},
		Price:   &Price{Currency: "TRY"},
		Specs:   Specs{},
	}
}

// PriceMin returns the verified minimum price, if any.
func (p *Product) PriceMin() (int, bool) {
	if p.Price == nil || p.Price.Min == nil {
		return 0, false
	}
	return *p.Price.Min, true
}

// ExtendPrice widens the running min/max bounds with a verified price.
func (p *Product) ExtendPrice(n int) {
	if p.Price == nil {
		p.Price = &Price{Currency: "TRY"}
	}
	if p.Price.Min == nil || n < *p.Price.Min {
		v := n
		p.Price.Min = &v
	}
	if p.Price.Max == nil || n > *p.Price.Max {
		v := n
		p.Price.Max = &v
	}
}

// Connection returns the canonical connection spec, if set.
func (p *Product) Connection() (Connection, bool) {
	s, ok := p.Specs.Str("connection")
	if !ok {
		return "", false
	}
	return Connection(s), true
}

// Entity groups the same brand+model across retailers.
type Entity struct {
	Key      string     `json:"key"`
	Brand    string     `json:"brand,omitempty"`
	Model    string     `json:"model,omitempty"`
	Specs    Specs      `json:"specs"`
	Products []*Product `json:"products"`
}

// Reference is the top-scoring product summarized for band output.
type Reference struct {
	Name  string `json:"name"`
	Price *Price `json:"price"`
	Specs Specs  `json:"specs"`
}

// ScoredBands partitions scored, priced products into comparison buckets.
type ScoredBands struct {
	Top10                    []*Product `json:"top10"`
	SamePriceBetter          []*Product `json:"same_price_better,omitempty"`
	CheaperSimilar           []*Product `json:"cheaper_similar,omitempty"`
	SlightlyHigherMuchBetter []*Product `json:"slightly_higher_much_better,omitempty"`
	Reference                *Reference `json:"reference,omitempty"`
}

// SearchResponse is the payload of the core search entrypoint. Message is
// set only for the explicit empty-state outcomes; FallbackBands only when
// the hard filter matched nothing.
type SearchResponse struct {
	Query         string       `json:"query"`
	Category      Category     `json:"category"`
	CheckedAt     time.Time    `json:"checkedAt"`
	Products      []*Product   `json:"products"`
	Bands         *ScoredBands `json:"bands"`
	Message       string       `json:"message,omitempty"`
	FallbackBands *ScoredBands `json:"fallbackBands,omitempty"`
	Debug         any          `json:"debug,omitempty"`
}
