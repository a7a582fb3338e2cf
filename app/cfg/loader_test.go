package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	// Test default version
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	version := GetVersion()
	if version != "dev" && version != "unknown" {
		// This is fine, version could be set at build time
		t.Logf("Version: %s", version)
	}
}

func TestConfigFields(t *testing.T) {
	cfg := &Cfg{
		Port:              "8080",
		AllowedOrigin:     "https://store.example.com",
		UserAgent:         "Test Agent",
		WorkerCount:       5,
		SchedulerInterval: 30,
		APIAccessKey:      "test-key",
		Version:           "test-version",
		ProfilesDir:       "./profiles",
		DBHost:            "localhost",
		DBPort:            "5432",
		DBUser:            "test_user",
		DBPassword:        "test_password",
		DBName:            "test_db",
		DBSSLMode:         "disable",
		MarketplaceURL:    "https://api.example-market.com",
		SecretsURL:        "https://project.functions.example.com",
		SecretsToken:      "service-token",
		Timezone:          "UTC",
		Debug:             true,
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.AllowedOrigin != "https://store.example.com" {
		t.Errorf("Expected allowed origin 'https://store.example.com', got '%s'", cfg.AllowedOrigin)
	}
	if cfg.UserAgent != "Test Agent" {
		t.Errorf("Expected user agent 'Test Agent', got '%s'", cfg.UserAgent)
	}
	if cfg.WorkerCount != 5 {
		t.Errorf("Expected worker count 5, got %d", cfg.WorkerCount)
	}
	if cfg.SchedulerInterval != 30 {
		t.Errorf("Expected scheduler interval 30, got %d", cfg.SchedulerInterval)
	}
	if cfg.APIAccessKey != "test-key" {
		t.Errorf("Expected API key 'test-key', got '%s'", cfg.APIAccessKey)
	}
	if cfg.ProfilesDir != "./profiles" {
		t.Errorf("Expected profiles dir './profiles', got '%s'", cfg.ProfilesDir)
	}
	if cfg.MarketplaceURL != "https://api.example-market.com" {
		t.Errorf("Expected marketplace URL 'https://api.example-market.com', got '%s'", cfg.MarketplaceURL)
	}
	if cfg.DBSSLMode != "disable" {
		t.Errorf("Expected DB SSL mode 'disable', got '%s'", cfg.DBSSLMode)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
}
