package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultCategory is assigned when neither the marketplace classification nor
// the keyword rules produce a category
const DefaultCategory = "web-app"

var titleCaser = cases.Title(language.English)

// categoryRule maps title/description keywords to a category slug. Rules are
// evaluated in order; the first match wins.
type categoryRule struct {
	slug     string
	keywords []string
}

var categoryRules = []categoryRule{
	{"business", []string{"business", "corporate", "company", "enterprise", "office"}},
	{"landing-page", []string{"landing", "lp"}},
	{"dashboard", []string{"admin", "dashboard"}},
	{"ecommerce", []string{"shop", "ecommerce", "store"}},
	{"community", []string{"community", "social", "forum"}},
	{"developer", []string{"developer", "api"}},
	{"design", []string{"design", "ui kit"}},
}

// NormalizeClassification turns a marketplace classification path like
// "php-scripts/ecommerce" into a category slug ("ecommerce")
func NormalizeClassification(classification string) string {
	classification = strings.TrimSpace(strings.ToLower(classification))
	if classification == "" {
		return ""
	}

	// Use the most specific path segment
	if idx := strings.LastIndex(classification, "/"); idx >= 0 {
		classification = classification[idx+1:]
	}

	return strings.ReplaceAll(classification, " ", "-")
}

// DeriveCategory infers a category slug from the item title and description
// when the marketplace provides no classification
func DeriveCategory(title, description string) string {
	text := strings.ToLower(title) + " " + strings.ToLower(description)

	for _, rule := range categoryRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(text, keyword) {
				return rule.slug
			}
		}
	}

	return DefaultCategory
}

// DisplayName renders a category slug as a human-readable name
func DisplayName(slug string) string {
	return titleCaser.String(strings.ReplaceAll(slug, "-", " "))
}

// Categories returns the known category slugs in display order
func Categories() []string {
	slugs := make([]string, 0, len(categoryRules)+1)
	slugs = append(slugs, DefaultCategory)
	for _, rule := range categoryRules {
		slugs = append(slugs, rule.slug)
	}
	return slugs
}
