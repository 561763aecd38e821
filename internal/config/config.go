// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults.
// - Load(ctx) layers defaults, an optional YAML file, and env vars.
// - External errors are wrapped via this package's sentinel errors.
package config

import (
	"github.com/tienyuan-huang/election/internal/domain/model"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Years maps a year label to its votes and boundary file paths.
	// Geo paths may repeat across years; boundaries load once.
	Years map[string]model.YearSource `koanf:"years"`

	// ReferenceYear names the year whose winners enrich search labels.
	// Its load is auxiliary: failure is logged and ignored.
	ReferenceYear string `koanf:"reference_year"`

	// GeoJoinKey is the boundary feature property joined to geo_key.
	GeoJoinKey string `koanf:"geo_join_key"`

	// DistrictAllowList restricts aggregation to the named districts.
	// Empty means every district in the source is in scope.
	DistrictAllowList []string `koanf:"district_allow_list"`

	// ClassifierPolicy picks the color policy: turnout-diff or margin.
	ClassifierPolicy string `koanf:"classifier_policy"`

	// PartyColors maps party names to fill colors for the turnout policy.
	PartyColors map[string]string `koanf:"party_colors"`

	// TieBreak resolves equal vote totals: input-order or name.
	TieBreak string `koanf:"tie_break"`

	// InitialSelection is deferred (render nothing until the user picks)
	// or eager (render every district on load).
	InitialSelection string `koanf:"initial_selection"`

	// PrefetchYears warms the dataset cache for every configured year in
	// the background after startup.
	PrefetchYears bool `koanf:"prefetch_years"`

	// PrefetchWorkers bounds concurrent background loads.
	PrefetchWorkers int `koanf:"prefetch_workers"`

	// NotifyBufferSize bounds each annotation-event subscriber channel.
	NotifyBufferSize int `koanf:"notify_buffer_size"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":9080",
		Years:            map[string]model.YearSource{},
		GeoJoinKey:       "VILLCODE",
		ClassifierPolicy: "turnout-diff",
		PartyColors: map[string]string{
			"中國國民黨":  "#1976d2",
			"民主進步黨": "#388e3c",
		},
		TieBreak:         "input-order",
		InitialSelection: "deferred",
		PrefetchWorkers:  2,
		NotifyBufferSize: 16,
	}
}
