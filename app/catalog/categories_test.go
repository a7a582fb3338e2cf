package catalog

import (
	"testing"
)

func TestNormalizeClassification(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"php-scripts/ecommerce", "ecommerce"},
		{"site-templates/admin templates", "admin-templates"},
		{"WordPress", "wordpress"},
		{"", ""},
		{"  ", ""},
	}

	for _, tt := range tests {
		if got := NormalizeClassification(tt.input); got != tt.expected {
			t.Errorf("NormalizeClassification(%q): expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestDeriveCategory(t *testing.T) {
	tests := []struct {
		title       string
		description string
		expected    string
	}{
		{"Corporate Business Theme", "", "business"},
		{"Modern Landing Page", "", "landing-page"},
		{"Admin Dashboard Kit", "", "dashboard"},
		{"Fashion Shop Template", "", "ecommerce"},
		{"Forum Platform", "community software", "community"},
		{"REST Toolkit", "api client for developers", "developer"},
		{"Some Plugin", "generic description", DefaultCategory},
	}

	for _, tt := range tests {
		if got := DeriveCategory(tt.title, tt.description); got != tt.expected {
			t.Errorf("DeriveCategory(%q, %q): expected %q, got %q", tt.title, tt.description, tt.expected, got)
		}
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("landing-page"); got != "Landing Page" {
		t.Errorf("Expected 'Landing Page', got %q", got)
	}
	if got := DisplayName("web-app"); got != "Web App" {
		t.Errorf("Expected 'Web App', got %q", got)
	}
}

func TestCategories(t *testing.T) {
	slugs := Categories()
	if len(slugs) == 0 {
		t.Fatal("Expected at least one category")
	}
	if slugs[0] != DefaultCategory {
		t.Errorf("Expected default category first, got %q", slugs[0])
	}
}
