// Package config loads the service configuration from a json or yaml file
// with optional MAITRE_ environment overrides.
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

	"github.com/brewline/maitre/core/dispatch"
	"github.com/brewline/maitre/core/match"
	"github.com/brewline/maitre/core/metrics"
	"github.com/brewline/maitre/infra/notify"
)

type Config struct {
	Notify   notify.Config   `json:"notify"`
	Dispatch dispatch.Config `json:"dispatch"`
	Match    match.Config    `json:"match"`
	Metrics  metrics.Config  `json:"metrics"`
}

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
	if err := k.Load(env.Provider("MAITRE_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "maitre_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Notify.SetDefaults()
	cfg.Dispatch.SetDefaults()
	cfg.Match.SetDefaults()
	cfg.Metrics.SetDefaults()
	if err := cfg.Notify.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Dispatch.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Match.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
