// Package rank scores products against query constraints, applies the
// hard filter, and partitions results into comparison bands.
package rank

import (
	"math"
	"sort"

	"muadil/models"
)

// weightTolerance is the slack on weight bounds, in grams. Retailer specs
// round weights, so a 61g mouse still satisfies "under 60g".
const weightTolerance = 2

// connectionBonus is added when the product connection matches the query.
const connectionBonus = 1.2

// budgetBonus is added when the price sits inside the requested range.
const budgetBonus = 1.0

// Score accumulates independent, capped contributions. Unknown product
// fields contribute nothing.
func Score(p *models.Product, want models.Want) float64 {
	s := 0.0

	if want.DPI != nil {
		if dpi, ok := p.Specs.Int("dpi"); ok && *want.DPI > 0 {
			s += math.Min(1.2, float64(dpi)/float64(*want.DPI)) * 2
		}
	}

	if want.WeightG != nil {
		if w, ok := p.Specs.Int("weight_g"); ok && w > 0 {
			// lighter than the target scores higher
			s += float64(*want.WeightG) / float64(w)
		}
	}

	if want.Connection != "" {
		if conn, ok := p.Connection(); ok && conn == want.Connection {
			s += connectionBonus
		}
	}

	if want.BudgetMin != nil && want.BudgetMax != nil {
		if n, ok := p.PriceMin(); ok {
			price := float64(n)
			if price >= *want.BudgetMin && price <= *want.BudgetMax {
				s += budgetBonus
			} else {
				// out of budget: capped penalty by distance from the range
				// midpoint, so fallback bands still order sensibly
				mid := (*want.BudgetMin + *want.BudgetMax) / 2
				if mid > 0 {
					s -= math.Min(1.0, math.Abs(price-mid)/mid)
				}
			}
		}
	}

	return s
}

// FilterByQuery applies the query constraints as a hard filter. A product
// with an unknown connection or weight fails the corresponding constraint;
// the exact weight target (no min/max marker) never filters.
func FilterByQuery(products []*models.Product, want models.Want) []*models.Product {
	out := make([]*models.Product, 0, len(products))
	for _, p := range products {
		if keep(p, want) {
			out = append(out, p)
		}
	}
	return out
}

func keep(p *models.Product, want models.Want) bool {
	if want.BudgetMin != nil && want.BudgetMax != nil {
		n, ok := p.PriceMin()
		if !ok {
			return false
		}
		price := float64(n)
		if price < *want.BudgetMin || price > *want.BudgetMax {
			return false
		}
	}

	if want.Connection != "" {
		conn, ok := p.Connection()
		if !ok || conn != want.Connection {
			return false
		}
	}

	if want.WeightMaxG != nil {
		w, ok := p.Specs.Int("weight_g")
		if !ok || w > *want.WeightMaxG+weightTolerance {
			return false
		}
	}
	if want.WeightMinG != nil {
		w, ok := p.Specs.Int("weight_g")
		if !ok || w < *want.WeightMinG-weightTolerance {
			return false
		}
	}

	return true
}

// BuildBands partitions priced products into the top-10 and the three
// price-relative-to-median buckets. Band thresholds: same ±10%, cheaper
// ≤ −15%, higher ≥ +15%; a price at exactly +15% of the median lands in
// the higher band.
func BuildBands(products []*models.Product, want models.Want) *models.ScoredBands {
	withPrice := make([]*models.Product, 0, len(products))
	for _, p := range products {
		if _, ok := p.PriceMin(); ok {
			withPrice = append(withPrice, p)
		}
	}

	bands := &models.ScoredBands{Top10: topN(withPrice, want, 10)}

	if len(withPrice) >= 2 {
		prices := make([]int, 0, len(withPrice))
		for _, p := range withPrice {
			n, _ := p.PriceMin()
			prices = append(prices, n)
		}
		sort.Ints(prices)
		median := float64(prices[len(prices)/2])

		diff := func(p *models.Product) float64 {
			n, _ := p.PriceMin()
			return (float64(n) - median) / median
		}
		bands.SamePriceBetter = topN(filter(withPrice, func(p *models.Product) bool {
			return math.Abs(diff(p)) <= 0.10
		}), want, 6)
		bands.CheaperSimilar = topN(filter(withPrice, func(p *models.Product) bool {
			return diff(p) <= -0.15
		}), want, 6)
		bands.SlightlyHigherMuchBetter = topN(filter(withPrice, func(p *models.Product) bool {
			return diff(p) >= 0.15
		}), want, 6)
	}

	if len(bands.Top10) > 0 {
		best := bands.Top10[0]
		bands.Reference = &models.Reference{Name: best.Name, Price: best.Price, Specs: best.Specs}
	}
	return bands
}

func filter(products []*models.Product, pred func(*models.Product) bool) []*models.Product {
	var out []*models.Product
	for _, p := range products {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}

func topN(products []*models.Product, want models.Want, n int) []*models.Product {
	sorted := make([]*models.Product, len(products))
	copy(sorted, products)
	sort.SliceStable(sorted, func(i, j int) bool {
		return Score(sorted[i], want) > Score(sorted[j], want)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
