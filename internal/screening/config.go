package screening

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config carries the tunables the duplicate pipeline variants used to
// hard-code: search radius, similarity threshold, neighbor cap, and the
// reputation-check feature flag.
type Config struct {
	RadiusMeters        float64 `yaml:"radius_meters"`
	SimilarityThreshold int     `yaml:"similarity_threshold"`
	MaxNeighbors        int     `yaml:"max_neighbors"`
	NewsCheck           bool    `yaml:"news_check"`
	Model               string  `yaml:"model"`
}

func DefaultConfig() Config {
	return Config{
		RadiusMeters:        DefaultRadiusMeters,
		SimilarityThreshold: DefaultSimilarityThreshold,
		MaxNeighbors:        DefaultMaxNeighbors,
		NewsCheck:           false,
	}
}

// LoadConfig reads a YAML config file, fills zero values with defaults, and
// applies CONFLICT_SCREEN_* environment overrides. A missing path returns
// defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.RadiusMeters <= 0 {
		c.RadiusMeters = DefaultRadiusMeters
	}
	if c.SimilarityThreshold <= 0 {
		c.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if c.MaxNeighbors <= 0 {
		c.MaxNeighbors = DefaultMaxNeighbors
	}
}

func (c *Config) applyEnv() {
	if v := envFloat("CONFLICT_SCREEN_RADIUS_M"); v > 0 {
		c.RadiusMeters = v
	}
	if v := envInt("CONFLICT_SCREEN_THRESHOLD"); v > 0 {
		c.SimilarityThreshold = v
	}
	if v := envInt("CONFLICT_SCREEN_MAX_NEIGHBORS"); v > 0 {
		c.MaxNeighbors = v
	}
	if v := strings.TrimSpace(os.Getenv("CONFLICT_SCREEN_NEWS_CHECK")); v != "" {
		c.NewsCheck = envEnabled("CONFLICT_SCREEN_NEWS_CHECK")
	}
	if v := strings.TrimSpace(os.Getenv("CONFLICT_SCREEN_MODEL")); v != "" {
		c.Model = v
	}
}

func envInt(key string) int {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return 0
	}
	return n
}

func envFloat(key string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64)
	if err != nil {
		return 0
	}
	return f
}

func envEnabled(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
