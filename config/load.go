package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CF4J_"

// Load resolves defaults, the YAML file at path and CF4J_ environment
// variables, then validates the result. An empty path skips the file layer.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKeys(k.Keys())), nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKeys maps CF4J_RECOMMENDER_RELEVANCE_THRESHOLD style names to the known
// key paths. Unknown variables map to "" and are skipped.
func envKeys(paths []string) func(string) string {
	known := make(map[string]string, len(paths))
	for _, p := range paths {
		known[strings.ToUpper(strings.ReplaceAll(p, ".", "_"))] = p
	}
	return func(name string) string {
		return known[strings.TrimPrefix(name, EnvPrefix)]
	}
}
