// Package config loads the scheduler configuration from YAML or JSON files
// with environment variable overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Engine    EngineConfig    `json:"engine"`
	Genetic   GeneticConfig   `json:"genetic"`
	Annealing AnnealingConfig `json:"annealing"`
	Logging   LoggingConfig   `json:"logging"`
}

// Load reads the file at path and applies DISPATCH_ environment overrides,
// e.g. DISPATCH_ENGINE__TRAVEL_SPEED_KMH=50.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("DISPATCH_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "dispatch_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Engine.SetDefaults()
	cfg.Genetic.SetDefaults()
	cfg.Annealing.SetDefaults()
	cfg.Logging.SetDefaults()
	if err := cfg.Engine.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Genetic.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Annealing.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
