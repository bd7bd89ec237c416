package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/pvcompare/core/factory"
	"github.com/kilianp07/pvcompare/core/metrics"
	"github.com/kilianp07/pvcompare/infra/mqtt"
)

type Config struct {
	Site       SiteConfig           `json:"site"`
	PV         PVConfig             `json:"pv"`
	Reference  ReferenceConfig      `json:"reference"`
	Store      factory.ModuleConfig `json:"store"`
	Production ProductionConfig     `json:"production"`
	Metrics    metrics.Config       `json:"metrics"`
	MQTT       mqtt.Config          `json:"mqtt"`
	Scenario   ScenarioConfig       `json:"scenario"`
	Logging    LoggingConfig        `json:"logging"`
}

// Load reads a YAML or JSON file, applies K_ environment overrides
// (K_PV__NORMALIZATION=none sets pv.normalization) and validates the result.
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
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every section.
func (c *Config) SetDefaults() {
	c.Site.SetDefaults()
	c.PV.SetDefaults()
	c.Reference.SetDefaults()
	if c.Store.Type == "" {
		c.Store.Type = "memory"
	}
	c.Production.SetDefaults()
	c.Scenario.SetDefaults()
	c.Logging.SetDefaults()
	if c.MQTT.Enabled {
		c.MQTT.SetDefaults()
	}
}

// Validate returns every section error joined.
func (c Config) Validate() error {
	return errors.Join(
		c.Site.Validate(),
		c.PV.Validate(),
		c.Reference.Validate(),
		c.Production.Validate(),
		c.MQTT.Validate(),
		c.Scenario.Validate(),
		c.Logging.Validate(),
	)
}
