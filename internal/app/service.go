// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tienyuan-huang/election/internal/adapters/export"
	"github.com/tienyuan-huang/election/internal/adapters/notify"
	"github.com/tienyuan-huang/election/internal/adapters/repository"
	"github.com/tienyuan-huang/election/internal/adapters/source"
	"github.com/tienyuan-huang/election/internal/domain/aggregate"
	"github.com/tienyuan-huang/election/internal/domain/classify"
	"github.com/tienyuan-huang/election/internal/domain/model"
	"github.com/tienyuan-huang/election/internal/domain/search"
	"github.com/tienyuan-huang/election/internal/domain/selection"
	"github.com/tienyuan-huang/election/pkg/logger"
	"github.com/tienyuan-huang/election/pkg/metrics"
)

// FocusZoom is the fixed zoom level annotation focus actions recenter at.
const FocusZoom = 14

// Service owns the application state: cached datasets, the active year
// and selection, and the session's annotations. All rendering state is
// explicit here; handlers never reach into package globals.
type Service struct {
	mu sync.RWMutex

	// Core components
	datasets    *repository.DatasetStore
	annotations *repository.AnnotationStore
	broadcaster *notify.Broadcaster
	aggregator  *aggregate.Aggregator
	classifier  classify.Classifier
	fetcher     source.Fetcher

	// Configuration
	years            map[string]model.YearSource
	referenceYear    string
	geoJoinKey       string
	allowList        []string
	tieBreak         aggregate.TieBreak
	initialPolicy    selection.InitialPolicy
	classifierPolicy string
	partyColors      map[string]string
	notifyBuffer     int
	prefetch         bool
	prefetchWorkers  int

	// State
	started      bool
	currentYear  string
	sel          selection.State
	refWinners   map[string]string
	refOnce      sync.Once
	welcomeShown bool
	stopCh       chan struct{}

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		years:            map[string]model.YearSource{},
		geoJoinKey:       "VILLCODE",
		tieBreak:         aggregate.TieBreakInputOrder,
		initialPolicy:    selection.PolicyDeferred,
		classifierPolicy: "turnout-diff",
		notifyBuffer:     16,
		prefetchWorkers:  2,
		stopCh:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.fetcher == nil {
		s.fetcher = source.NewFetcher()
	}

	s.datasets = repository.NewDatasetStore()
	s.broadcaster = notify.New(notify.WithBufferSize(s.notifyBuffer))
	s.annotations = repository.NewAnnotationStore(repository.WithNotifier(s.broadcaster))
	s.aggregator = aggregate.New(
		aggregate.WithDistrictAllowList(s.allowList),
		aggregate.WithTieBreak(s.tieBreak),
	)
	s.classifier = classify.ForPolicy(s.classifierPolicy, s.partyColors)
	s.sel = selection.Initial(s.initialPolicy, nil)

	s.started = true
	s.logger.Info(ctx, "election service started",
		logger.Int("years", len(s.years)),
		logger.String("classifier", s.classifierPolicy),
		logger.String("tieBreak", string(s.tieBreak)),
	)

	if s.prefetch {
		go s.prefetchAll(ctx)
	}
	return nil
}

// Stop shuts the service down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	_ = s.broadcaster.Close()
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	s.started = false
	s.logger.Info(context.Background(), "election service stopped")
}

// Years lists the configured year labels.
func (s *Service) Years(ctx context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.years))
	for y := range s.years {
		out = append(out, y)
	}
	return out
}

// CurrentYear returns the active year label, empty before the first load.
func (s *Service) CurrentYear(ctx context.Context) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentYear
}

// LoadYear makes the given year active, building its dataset if this is
// the first time it is requested. Votes and boundaries are fetched
// concurrently and awaited jointly; the boundary payload is fetched only
// until the first success, then reused for every later year.
func (s *Service) LoadYear(ctx context.Context, year string) error {
	s.mu.RLock()
	src, ok := s.years[year]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", repository.ErrUnknownYear, year)
	}

	ds, err := s.datasets.Get(ctx, year)
	if errors.Is(err, repository.ErrUnknownYear) {
		ds, err = s.buildDataset(ctx, year, src)
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.currentYear = year
	// A year switch rebuilds the rendering state from scratch.
	s.sel = selection.Initial(s.initialPolicy, ds.Index.Names())
	s.mu.Unlock()
	return nil
}

// buildDataset runs the full load pipeline for one year.
func (s *Service) buildDataset(ctx context.Context, year string, src model.YearSource) (*repository.Dataset, error) {
	traceID := uuid.NewString()
	start := time.Now()
	log := s.logger.Named("load")
	log.Info(ctx, "loading year",
		logger.String("year", year),
		logger.String("trace", traceID),
	)

	var (
		wg       sync.WaitGroup
		rows     []model.RawVoteRow
		votesErr error
		geoErr   error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		rows, votesErr = s.fetchVotes(ctx, src.VotesPath)
	}()

	// Neither input depends on the other, so both transfers overlap.
	if !s.datasets.HasBoundaries(ctx) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			geoErr = s.fetchBoundaries(ctx, src.GeoPath)
		}()
	}
	wg.Wait()

	if votesErr != nil {
		metrics.RecordLoad(loadResult(votesErr))
		return nil, votesErr
	}
	if geoErr != nil {
		metrics.RecordLoad(loadResult(geoErr))
		return nil, geoErr
	}

	res := s.aggregator.Aggregate(rows)
	metrics.RecordRowsParsed(len(rows))
	metrics.RecordRowsDropped(res.Dropped)
	metrics.UpdateEntityCounts(len(res.Villages), len(res.Districts))

	idx := search.Build(res.Districts, s.referenceWinners(ctx))
	ds := &repository.Dataset{Year: year, Result: res, Index: idx}
	s.datasets.Put(ctx, ds)

	metrics.RecordLoad("success")
	metrics.RecordLoadDuration(time.Since(start).Seconds())
	log.Info(ctx, "year loaded",
		logger.String("year", year),
		logger.String("trace", traceID),
		logger.Int("rows", len(rows)),
		logger.Int("villages", len(res.Villages)),
		logger.Int("districts", len(res.Districts)),
		logger.Int("dropped", res.Dropped),
	)
	return ds, nil
}

func (s *Service) fetchVotes(ctx context.Context, path string) ([]model.RawVoteRow, error) {
	rc, err := s.fetcher.Fetch(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return source.DecodeVotes(rc)
}

func (s *Service) fetchBoundaries(ctx context.Context, path string) error {
	rc, err := s.fetcher.Fetch(ctx, path)
	if err != nil {
		return err
	}
	defer rc.Close()
	bs, err := source.DecodeBoundaries(rc, s.geoJoinKey)
	if err != nil {
		return err
	}
	s.datasets.SetBoundaries(ctx, bs)
	return nil
}

// referenceWinners resolves the auxiliary winners lookup once per process.
// Failure only degrades search labels, so it is logged and swallowed.
func (s *Service) referenceWinners(ctx context.Context) map[string]string {
	s.refOnce.Do(func() {
		if s.referenceYear == "" {
			return
		}
		src, ok := s.years[s.referenceYear]
		if !ok {
			return
		}
		rc, err := s.fetcher.Fetch(ctx, src.VotesPath)
		if err != nil {
			s.logger.Warn(ctx, "reference winners load failed", logger.Error(err))
			return
		}
		defer rc.Close()
		rows, err := source.DecodeVotes(rc)
		if err != nil {
			s.logger.Warn(ctx, "reference winners decode failed", logger.Error(err))
			return
		}
		res := s.aggregator.Aggregate(rows)
		s.refWinners = search.ReduceWinners(res.Districts)
		s.logger.Info(ctx, "reference winners loaded",
			logger.String("year", s.referenceYear),
			logger.Int("districts", len(s.refWinners)),
		)
	})
	return s.refWinners
}

// loadResult maps a load failure to its metrics label.
func loadResult(err error) string {
	switch {
	case errors.Is(err, source.ErrSchema):
		return "schema_error"
	case errors.Is(err, source.ErrFetch):
		return "fetch_error"
	case errors.Is(err, source.ErrParse):
		return "parse_error"
	default:
		return "error"
	}
}

// prefetchAll warms the dataset cache for every configured year using a
// small worker pool.
func (s *Service) prefetchAll(ctx context.Context) {
	years := s.Years(ctx)
	jobs := make(chan string, len(years))
	for _, y := range years {
		jobs <- y
	}
	close(jobs)

	var wg sync.WaitGroup
	for i := 0; i < s.prefetchWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for year := range jobs {
				select {
				case <-s.stopCh:
					return
				case <-ctx.Done():
					return
				default:
				}
				s.mu.RLock()
				src := s.years[year]
				s.mu.RUnlock()
				if _, err := s.datasets.Get(ctx, year); err == nil {
					continue
				}
				if _, err := s.buildDataset(ctx, year, src); err != nil {
					s.logger.Warn(ctx, "prefetch failed",
						logger.String("year", year),
						logger.Error(err),
					)
				}
			}
		}()
	}
	wg.Wait()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":       s.started,
		"currentYear":   s.currentYear,
		"selectionMode": string(s.sel.Mode),
		"welcomeShown":  s.welcomeShown,
	}
	if s.started {
		stats["loadedYears"] = s.datasets.Years(ctx)
		stats["annotations"] = s.annotations.Count(ctx)
		stats["subscribers"] = s.broadcaster.SubscriberCount()
	}
	return stats
}

// WelcomeSeen reports whether the welcome dialog was already shown this
// session, marking it shown as a side effect of the first call.
func (s *Service) WelcomeSeen(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := s.welcomeShown
	s.welcomeShown = true
	return seen
}

// ExportAnnotationsCSV writes the session's annotations as CSV.
func (s *Service) ExportAnnotationsCSV(ctx context.Context, w io.Writer) error {
	return export.CSV(w, s.annotations.List(ctx))
}

// ExportAnnotationsKML writes the session's annotations as KML.
func (s *Service) ExportAnnotationsKML(ctx context.Context, w io.Writer) error {
	return export.KML(w, s.annotations.List(ctx))
}

// Subscribe registers an annotation-change listener for the SSE stream.
func (s *Service) Subscribe(ctx context.Context) (<-chan repository.Change, func()) {
	return s.broadcaster.Subscribe(ctx)
}
