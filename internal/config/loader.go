package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if ELECTION_CONFIG is set
//  3. env (prefix ELECTION_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("ELECTION_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: ELECTION_ADDR, ELECTION_TIE_BREAK, ...
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("ELECTION_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "election_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.ClassifierPolicy {
	case "turnout-diff", "margin":
	default:
		return fmt.Errorf("%w: classifier_policy must be turnout-diff or margin", ErrInvalidConfig)
	}
	switch c.TieBreak {
	case "input-order", "name":
	default:
		return fmt.Errorf("%w: tie_break must be input-order or name", ErrInvalidConfig)
	}
	switch c.InitialSelection {
	case "deferred", "eager":
	default:
		return fmt.Errorf("%w: initial_selection must be deferred or eager", ErrInvalidConfig)
	}
	if c.ReferenceYear != "" && len(c.Years) > 0 {
		if _, ok := c.Years[c.ReferenceYear]; !ok {
			return fmt.Errorf("%w: reference_year %q has no source mapping", ErrInvalidConfig, c.ReferenceYear)
		}
	}
	for year, src := range c.Years {
		if src.VotesPath == "" || src.GeoPath == "" {
			return fmt.Errorf("%w: year %q needs votes_path and geo_path", ErrInvalidConfig, year)
		}
	}
	return nil
}
