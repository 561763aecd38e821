// Package repository holds the in-memory stores: aggregated datasets per
// year, the shared boundary cache, and user annotations. Nothing here is
// durable; the whole state belongs to one service session.
package repository

import (
	"context"
	"sync"

	"github.com/tienyuan-huang/election/internal/domain/aggregate"
	"github.com/tienyuan-huang/election/internal/domain/model"
	"github.com/tienyuan-huang/election/internal/domain/search"
	"github.com/tienyuan-huang/election/pkg/metrics"
)

// Dataset is one year's fully derived state: the aggregation result plus
// its search index. Replaced wholesale on reload, never mutated.
type Dataset struct {
	Year   string
	Result *aggregate.Result
	Index  *search.Index
}

// DatasetStore caches Datasets by year and the boundary payload shared
// across years.
type DatasetStore struct {
	mu         sync.RWMutex
	years      map[string]*Dataset
	boundaries map[string]model.Boundary // geo key -> centroid, load-once
}

// NewDatasetStore creates an empty store.
func NewDatasetStore() *DatasetStore {
	return &DatasetStore{
		years: make(map[string]*Dataset),
	}
}

// Put replaces the dataset for a year.
func (s *DatasetStore) Put(ctx context.Context, ds *Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.years[ds.Year] = ds
	metrics.UpdateLoadedYears(len(s.years))
}

// Get returns the dataset for a year, or ErrUnknownYear.
func (s *DatasetStore) Get(ctx context.Context, year string) (*Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.years[year]
	if !ok {
		return nil, ErrUnknownYear
	}
	return ds, nil
}

// Years lists loaded year labels.
func (s *DatasetStore) Years(ctx context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.years))
	for y := range s.years {
		out = append(out, y)
	}
	return out
}

// SetBoundaries installs the boundary payload on first successful load.
// Later calls are ignored: there is one boundary dataset shared by every
// year, so the first load wins and later fetches are skipped entirely.
func (s *DatasetStore) SetBoundaries(ctx context.Context, bs []model.Boundary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.boundaries != nil {
		return
	}
	s.boundaries = make(map[string]model.Boundary, len(bs))
	for _, b := range bs {
		s.boundaries[b.GeoKey] = b
	}
	metrics.UpdateBoundaryCount(len(s.boundaries))
}

// HasBoundaries reports whether the boundary cache is warm.
func (s *DatasetStore) HasBoundaries(ctx context.Context) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.boundaries != nil
}

// Boundary returns the cached centroid for a geo key.
func (s *DatasetStore) Boundary(ctx context.Context, geoKey string) (model.Boundary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.boundaries[geoKey]
	if !ok {
		return model.Boundary{}, ErrNotFound
	}
	return b, nil
}
