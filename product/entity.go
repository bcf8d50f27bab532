package product

import (
	"regexp"
	"strings"
	"unicode"

	"muadil/models"
)

// brandVocabulary is the static list of known accessory brands, checked in
// order. New brands are additive entries.
var brandVocabulary = []string{
	"logitech", "razer", "steelseries", "glorious", "zowie", "asus", "msi",
	"corsair", "finalmouse", "delux", "gamepower", "rampage", "hp", "lenovo",
}

// noise words stripped from model strings: category nouns and connection
// adjectives that vary per retailer listing
var modelNoiseRe = regexp.MustCompile(`(?i)\b(mouse|fare|klavye|kulaklık|kulaklik|headset|keyboard|oyuncu|gaming|kablosuz|kablolu|wireless|wired|lightspeed)\b`)

var modelSepRe = regexp.MustCompile(`[-–:|]`)

// Slug turns a string into a url-safe slug: letters/digits kept, runs of
// anything else collapsed to a single dash.
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(r)
			dash = false
		} else if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// ExtractBrandModel finds the first known brand token in a product name
// and treats the noise-stripped remainder as the model.
func ExtractBrandModel(name string) (brand, model string) {
	n := strings.Join(strings.Fields(name), " ")
	lower := strings.ToLower(n)
	for _, b := range brandVocabulary {
		idx := strings.Index(lower, b)
		if idx < 0 {
			continue
		}
		brand = strings.ToUpper(b[:1]) + b[1:]
		rest := n[idx+len(b):]
		rest = modelSepRe.ReplaceAllString(rest, " ")
		rest = modelNoiseRe.ReplaceAllString(rest, " ")
		model = strings.Join(strings.Fields(rest), " ")
		return brand, model
	}
	return "", ""
}

func normalizeModel(model string) string {
	s := strings.ToLower(strings.Join(strings.Fields(model), " "))
	s = modelNoiseRe.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// ResolveKey derives the entity key for a product: slug(brand) + ":" +
// normalized model, or a key from the full normalized name when no brand
// is recognized.
func ResolveKey(p *models.Product) (key, brand, model string) {
	brand, model = ExtractBrandModel(p.Name)
	if brand == "" {
		return Slug(p.Name), "", ""
	}
	return Slug(brand) + ":" + normalizeModel(model), brand, model
}

// GroupEntities folds products sharing a brand+model key into entities.
// Spec fields fill gaps only: the first non-null value wins and is never
// overwritten.
func GroupEntities(products []*models.Product) []*models.Entity {
	byKey := map[string]*models.Entity{}
	var order []string

	for _, p := range products {
		key, brand, model := ResolveKey(p)
		e, ok := byKey[key]
		if !ok {
			e = &models.Entity{Key: key, Brand: brand, Model: model, Specs: models.Specs{}}
			byKey[key] = e
			order = append(order, key)
		}
		e.Products = append(e.Products, p)
		for k, v := range p.Specs {
			if v == nil {
				continue
			}
			if _, exists := e.Specs[k]; !exists {
				e.Specs[k] = v
			}
		}
	}

	out := make([]*models.Entity, 0, len(order))
	for _, key := range order {
		out = append(out, byKey[key])
	}
	return out
}
