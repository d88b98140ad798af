package gap

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

type ConfigCache struct {
	targetsDir string
	cache      map[string]*Config
	mu         sync.RWMutex
}

func NewConfigCache(targetsDir string) *ConfigCache {
	return &ConfigCache{
		targetsDir: targetsDir,
		cache:      make(map[string]*Config),
	}
}

func (cc *ConfigCache) Run() error {
	if _, err := os.Stat(cc.targetsDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(cc.targetsDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		// Derive target name from filename (remove .yml extension)
		targetName := strings.TrimSuffix(filepath.Base(file), ".yml")

		config, err := cc.LoadConfig(targetName)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Configuration loaded", "target", targetName, "domain", config.Domain,
			"enabled", config.Settings.Enabled, "refresh_interval", config.Settings.RefreshInterval)
	}

	return nil
}

func (cc *ConfigCache) LoadConfig(targetName string) (*Config, error) {
	configFile := cc.getConfigFilePath(targetName)
	config, err := cc.parseConfig(configFile)
	if err != nil {
		return nil, err
	}

	config.Name = targetName

	if err := cc.validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[config.Name] = config

	return config, nil
}

func (cc *ConfigCache) GetConfig(targetName string) (*Config, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	config, ok := cc.cache[targetName]
	if !ok {
		return nil, fmt.Errorf("target config with name '%s' not found", targetName)
	}
	return config, nil
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

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if config.Source == "" {
		config.Source = "us"
	}
	if config.Language == "" {
		config.Language = "en"
	}
	if config.Settings.RefreshInterval == 0 {
		config.Settings.RefreshInterval = 86400
	}
	if config.Settings.MaxCompetitors == 0 {
		config.Settings.MaxCompetitors = 3
	}
	if config.Settings.MaxKeywords == 0 {
		config.Settings.MaxKeywords = 1000
	}
	if config.Settings.SerpTopN == 0 {
		config.Settings.SerpTopN = 20
	}
	if config.Settings.Timeout == 0 {
		config.Settings.Timeout = 60
	}
	applyFilterDefaults(&config.Filters)

	return &config, nil
}

// applyFilterDefaults fills unset filter bounds with the long-tail AEO
// defaults; the Filterer itself never applies defaults.
func applyFilterDefaults(criteria *FilterCriteria) {
	if criteria.MinVolume == 0 {
		criteria.MinVolume = 100
	}
	if criteria.MaxVolume == 0 {
		criteria.MaxVolume = 5000
	}
	if criteria.MaxDifficulty == 0 {
		criteria.MaxDifficulty = 35
	}
	if criteria.MaxCompetition == 0 {
		criteria.MaxCompetition = 0.3
	}
	if criteria.MinWords == 0 {
		criteria.MinWords = 3
	}
	if criteria.DifficultySource == "" {
		criteria.DifficultySource = DifficultySourceAPI
	}
}

func (cc *ConfigCache) validateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("config is nil")
	}

	if config.Name == "" {
		return fmt.Errorf("target name is required")
	}
	if config.Domain == "" {
		return fmt.Errorf("target domain is required")
	}

	if config.Filters.MinVolume > config.Filters.MaxVolume {
		return fmt.Errorf("min_volume (%d) must not exceed max_volume (%d)",
			config.Filters.MinVolume, config.Filters.MaxVolume)
	}
	if config.Filters.MaxDifficulty < 0 || config.Filters.MaxDifficulty > 100 {
		return fmt.Errorf("max_difficulty must be within 0-100, got %d", config.Filters.MaxDifficulty)
	}
	if config.Filters.MaxCompetition < 0 || config.Filters.MaxCompetition > 1 {
		return fmt.Errorf("max_competition must be within 0.0-1.0, got %g", config.Filters.MaxCompetition)
	}
	if config.Filters.MinWords < 0 {
		return fmt.Errorf("min_words must be non-negative, got %d", config.Filters.MinWords)
	}

	switch config.Filters.DifficultySource {
	case DifficultySourceAPI, DifficultySourceLevel:
	default:
		return fmt.Errorf("difficulty_source must be %q or %q, got %q",
			DifficultySourceAPI, DifficultySourceLevel, config.Filters.DifficultySource)
	}

	for i, competitor := range config.Competitors {
		if competitor == "" {
			return fmt.Errorf("competitor at index %d is empty", i)
		}
	}

	return nil
}

func (cc *ConfigCache) getConfigFilePath(targetName string) string {
	return filepath.Join(cc.targetsDir, targetName+".yml")
}
