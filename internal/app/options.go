package service

import (
	"github.com/tienyuan-huang/election/internal/adapters/source"
	"github.com/tienyuan-huang/election/internal/domain/aggregate"
	"github.com/tienyuan-huang/election/internal/domain/model"
	"github.com/tienyuan-huang/election/internal/domain/selection"
	"github.com/tienyuan-huang/election/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithYears sets the year to source-file mapping.
func WithYears(years map[string]model.YearSource) Option {
	return func(s *Service) {
		if years != nil {
			s.years = years
		}
	}
}

// WithReferenceYear names the year whose winners enrich search labels.
func WithReferenceYear(year string) Option {
	return func(s *Service) {
		s.referenceYear = year
	}
}

// WithGeoJoinKey sets the boundary property joined to geo keys.
func WithGeoJoinKey(key string) Option {
	return func(s *Service) {
		if key != "" {
			s.geoJoinKey = key
		}
	}
}

// WithDistrictAllowList restricts aggregation to the named districts.
func WithDistrictAllowList(names []string) Option {
	return func(s *Service) {
		s.allowList = names
	}
}

// WithTieBreak sets the aggregation tie-break policy.
func WithTieBreak(tb string) Option {
	return func(s *Service) {
		s.tieBreak = aggregate.TieBreak(tb)
	}
}

// WithClassifierPolicy selects the color policy and its party colors.
func WithClassifierPolicy(policy string, partyColors map[string]string) Option {
	return func(s *Service) {
		if policy != "" {
			s.classifierPolicy = policy
		}
		s.partyColors = partyColors
	}
}

// WithInitialSelection sets the selection policy applied on each load.
func WithInitialSelection(policy string) Option {
	return func(s *Service) {
		if policy == string(selection.PolicyEager) {
			s.initialPolicy = selection.PolicyEager
		}
	}
}

// WithFetcher overrides the source fetcher, mainly for tests.
func WithFetcher(f source.Fetcher) Option {
	return func(s *Service) {
		if f != nil {
			s.fetcher = f
		}
	}
}

// WithNotifyBufferSize bounds each subscriber channel.
func WithNotifyBufferSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.notifyBuffer = n
		}
	}
}

// WithPrefetch enables background cache warming for all configured years.
func WithPrefetch(enabled bool, workers int) Option {
	return func(s *Service) {
		s.prefetch = enabled
		if workers > 0 {
			s.prefetchWorkers = workers
		}
	}
}
