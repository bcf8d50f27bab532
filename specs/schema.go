// Package specs fills category attribute schemas from product titles and
// page text, with an optional LLM oracle for the leftovers.
package specs

import (
	"regexp"
	"strconv"
	"strings"

	"muadil/models"
)

// Def is one schema attribute: extraction patterns tried in order, with an
// optional post-processing normalizer. First match wins.
type Def struct {
	Key      string
	Patterns []*regexp.Regexp
	Post     func(raw string) any
}

func postInt(raw string) any {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
	n, err := strconv.Atoi(digits)
	if err != nil {
		return nil
	}
	return n
}

// postDPI handles both plain values and the "8K"/"26K" marketing style.
func postDPI(raw string) any {
	s := strings.ToLower(strings.TrimSpace(raw))
	if k := strings.TrimSuffix(s, "k"); k != s {
		if n, err := strconv.Atoi(strings.TrimSpace(k)); err == nil {
			return n * 1000
		}
	}
	return postInt(raw)
}

func postConnection(raw string) any {
	if wirelessRe.MatchString(raw) {
		return string(models.ConnectionWireless)
	}
	if wiredRe.MatchString(raw) {
		return string(models.ConnectionWired)
	}
	return strings.ToLower(strings.TrimSpace(raw))
}

var (
	wirelessRe = regexp.MustCompile(`(?i)kablosuz|wireless|bluetooth|lightspeed|2\.4g`)
	wiredRe    = regexp.MustCompile(`(?i)kablolu|wired`)
)

// schemas lists the attribute schema per category. Declarative: a new
// attribute or category is a table entry.
var schemas = map[models.Category][]Def{
	models.CategoryMouse: {
		{
			Key: "dpi",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(\d{4,6})\s*dpi`),
				regexp.MustCompile(`(?i)(8k|16k|26k|30k)\s*dpi`),
			},
			Post: postDPI,
		},
		{
			Key: "weight_g",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(\d{2,3})\s*g(?:ram)?\b`),
				regexp.MustCompile(`(?i)ağırlık[:\s]*(\d{2,3})`),
			},
			Post: postInt,
		},
		{
			Key: "connection",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)kablosuz|wireless`),
				regexp.MustCompile(`(?i)kablolu|wired`),
			},
			Post: postConnection,
		},
	},
	models.CategoryKeyboard: {
		{
			Key:      "switch",
			Patterns: []*regexp.Regexp{regexp.MustCompile(`(?i)(linear|tactile|clicky|silent)`)},
			Post:     func(raw string) any { return strings.ToLower(raw) },
		},
		{
			Key:      "layout",
			Patterns: []*regexp.Regexp{regexp.MustCompile(`(?i)(full|tkl|75%|60%)`)},
			Post:     func(raw string) any { return strings.ToLower(raw) },
		},
		{
			Key:      "connection",
			Patterns: []*regexp.Regexp{regexp.MustCompile(`(?i)kablosuz|wireless|kablolu|wired`)},
			Post:     postConnection,
		},
	},
	models.CategoryHeadset: {
		{
			Key:      "anc",
			Patterns: []*regexp.Regexp{regexp.MustCompile(`(?i)aktif\s*gürültü\s*engelleme|anc`)},
			Post:     func(string) any { return true },
		},
		{
			Key:      "driver_mm",
			Patterns: []*regexp.Regexp{regexp.MustCompile(`(?i)(\d{2})\s*mm`)},
			Post:     postInt,
		},
		{
			Key:      "connection",
			Patterns: []*regexp.Regexp{regexp.MustCompile(`(?i)bluetooth|kablosuz|kablolu|3\.5mm|usb`)},
			Post:     postConnection,
		},
	},
}

// SchemaFor returns the attribute schema for a category.
func SchemaFor(c models.Category) []Def {
	return schemas[c]
}

// AllowedKeys returns the schema key allow-list for a category; oracle
// answers outside it are discarded.
func AllowedKeys(c models.Category) map[string]bool {
	out := map[string]bool{}
	for _, d := range schemas[c] {
		out[d.Key] = true
	}
	return out
}
