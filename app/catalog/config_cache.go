package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// ConfigCache loads and caches catalog sync profiles from a directory of
// YAML files, one profile per file
type ConfigCache struct {
	profilesDir string
	cache       map[string]*Config
	mu          sync.RWMutex
}

func NewConfigCache(profilesDir string) *ConfigCache {
	return &ConfigCache{
		profilesDir: profilesDir,
		cache:       make(map[string]*Config),
	}
}

func (cc *ConfigCache) Run() error {
	if _, err := os.Stat(cc.profilesDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(cc.profilesDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		fileName := filepath.Base(file)
		profileName := fileName[:len(fileName)-4] // Remove .yml extension

		config, err := cc.LoadConfig(profileName)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Profile loaded", "profile", profileName, "query", config.Query, "enabled", config.Settings.Enabled)
	}

	return nil
}

func (cc *ConfigCache) LoadConfig(profileName string) (*Config, error) {
	configFile := cc.getConfigFilePath(profileName)
	profile, err := cc.parseConfig(configFile)
	if err != nil {
		return nil, err
	}

	profile.Name = profileName

	if err := cc.validateConfig(profile); err != nil {
		return nil, fmt.Errorf("invalid profile %s: %w", configFile, err)
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[profile.Name] = profile

	return profile, nil
}

func (cc *ConfigCache) GetConfig(profileName string) (*Config, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	profile, ok := cc.cache[profileName]
	if !ok {
		return nil, fmt.Errorf("profile with name '%s' not found", profileName)
	}
	return profile, nil
}

func (cc *ConfigCache) GetConfigs() map[string]*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	configsCopy := make(map[string]*Config, len(cc.cache))
	for k, v := range cc.cache {
		configsCopy[k] = v
	}
	return configsCopy
}

func (cc *ConfigCache) GetEnabledConfigs() map[string]*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	enabledConfigs := make(map[string]*Config)
	for k, v := range cc.cache {
		if v.Settings.Enabled {
			enabledConfigs[k] = v
		}
	}
	return enabledConfigs
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

func (cc *ConfigCache) parseConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var profile Config
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if profile.Site == "" {
		profile.Site = "codecanyon.net"
	}
	if profile.Settings.RefreshInterval == 0 {
		profile.Settings.RefreshInterval = 3600
	}
	if profile.Settings.PageSize == 0 {
		profile.Settings.PageSize = 30
	}
	if profile.Settings.MaxPages == 0 {
		profile.Settings.MaxPages = 3
	}
	if profile.Settings.RequestDelayMs == 0 {
		profile.Settings.RequestDelayMs = 1000
	}
	if profile.Settings.Concurrency == 0 {
		profile.Settings.Concurrency = 5
	}

	return &profile, nil
}

func (cc *ConfigCache) validateConfig(profile *Config) error {
	if profile == nil {
		return fmt.Errorf("profile is nil")
	}

	requiredFields := map[string]string{
		"profile name": profile.Name,
		"search query": profile.Query,
	}

	for fieldName, fieldValue := range requiredFields {
		if fieldValue == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
	}

	nonNegativeFields := map[string]int{
		"refresh interval": profile.Settings.RefreshInterval,
		"page size":        profile.Settings.PageSize,
		"max pages":        profile.Settings.MaxPages,
		"request delay":    profile.Settings.RequestDelayMs,
		"concurrency":      profile.Settings.Concurrency,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	return nil
}

func (cc *ConfigCache) getConfigFilePath(profileName string) string {
	return filepath.Join(cc.profilesDir, profileName+".yml")
}
