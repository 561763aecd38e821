package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/tienyuan-huang/election/internal/adapters/repository"
	"github.com/tienyuan-huang/election/internal/domain/classify"
	"github.com/tienyuan-huang/election/internal/domain/model"
	"github.com/tienyuan-huang/election/internal/domain/selection"
)

// VillageView is a village joined with its classifier outcome, ready for
// a map layer to paint.
type VillageView struct {
	model.Village
	Outcome classify.Outcome `json:"outcome"`
}

// SelectorOptions is the district dropdown payload: a placeholder, an
// "all matching" entry carrying the match count, and the matching
// district names in locale order.
type SelectorOptions struct {
	Placeholder string   `json:"placeholder"`
	AllLabel    string   `json:"all_label"`
	AllCount    int      `json:"all_count"`
	Districts   []string `json:"districts"`
}

// AnnotationView decorates an annotation with the focus zoom level so a
// list entry can recenter the map without another round trip.
type AnnotationView struct {
	model.Annotation
	FocusZoom int `json:"focus_zoom"`
}

// Selection returns the current selection state.
func (s *Service) Selection(ctx context.Context) selection.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sel
}

// Dispatch applies one selection event against the active dataset and
// returns the next state. Query events recompute the match list through
// the search index before reduction.
func (s *Service) Dispatch(ctx context.Context, e selection.Event) (selection.State, error) {
	ds, err := s.activeDataset(ctx)
	if err != nil {
		return selection.State{}, err
	}

	switch e.Kind {
	case selection.SetQuery:
		if strings.TrimSpace(e.Query) == "" {
			e = selection.Event{Kind: selection.ClearQuery, Matches: ds.Index.Names()}
		} else {
			e.Matches = ds.Index.Match(e.Query)
		}
	case selection.ClearQuery:
		e.Matches = ds.Index.Names()
	}

	s.mu.Lock()
	s.sel = selection.Reduce(s.sel, e)
	next := s.sel
	s.mu.Unlock()
	return next, nil
}

// Options builds the selector payload for the current state.
func (s *Service) Options(ctx context.Context) (SelectorOptions, error) {
	if _, err := s.activeDataset(ctx); err != nil {
		return SelectorOptions{}, err
	}
	s.mu.RLock()
	filtered := append([]string(nil), s.sel.Filtered...)
	s.mu.RUnlock()
	return SelectorOptions{
		Placeholder: "選擇選區",
		AllLabel:    fmt.Sprintf("全部顯示 (%d)", len(filtered)),
		AllCount:    len(filtered),
		Districts:   filtered,
	}, nil
}

// Villages projects the villages visible under the current selection,
// each carrying its classifier outcome. NoSelection yields an empty
// list: nothing renders until the user picks something.
func (s *Service) Villages(ctx context.Context) ([]VillageView, error) {
	ds, err := s.activeDataset(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	sel := s.sel
	s.mu.RUnlock()

	out := []VillageView{}
	for _, key := range ds.Result.VillageOrder {
		v := ds.Result.Villages[key]
		if !sel.Visible(v.DistrictName) {
			continue
		}
		out = append(out, VillageView{
			Village: *v,
			Outcome: s.classifier.Classify(v),
		})
	}
	return out, nil
}

// Village returns one village with its outcome, regardless of selection.
func (s *Service) Village(ctx context.Context, geoKey string) (VillageView, error) {
	ds, err := s.activeDataset(ctx)
	if err != nil {
		return VillageView{}, err
	}
	v, ok := ds.Result.Villages[geoKey]
	if !ok {
		return VillageView{}, repository.ErrNotFound
	}
	return VillageView{Village: *v, Outcome: s.classifier.Classify(v)}, nil
}

// SaveAnnotation upserts a note for a village. Missing coordinates are
// filled from the cached boundary centroid so the focus action always
// has somewhere to go.
func (s *Service) SaveAnnotation(ctx context.Context, a model.Annotation) {
	if a.Lat == 0 && a.Lng == 0 {
		if b, err := s.datasets.Boundary(ctx, a.GeoKey); err == nil {
			a.Lat = b.Lat
			a.Lng = b.Lng
		}
	}
	if a.Name == "" {
		if ds, err := s.activeDataset(ctx); err == nil {
			if v, ok := ds.Result.Villages[a.GeoKey]; ok {
				a.Name = v.Name
			}
		}
	}
	s.annotations.Save(ctx, a)
}

// DeleteAnnotation removes a note. Missing keys are silent no-ops.
func (s *Service) DeleteAnnotation(ctx context.Context, geoKey string) {
	s.annotations.Delete(ctx, geoKey)
}

// ListAnnotations returns the session's notes in insertion order.
func (s *Service) ListAnnotations(ctx context.Context) []AnnotationView {
	list := s.annotations.List(ctx)
	out := make([]AnnotationView, len(list))
	for i, a := range list {
		out[i] = AnnotationView{Annotation: a, FocusZoom: FocusZoom}
	}
	return out
}

func (s *Service) activeDataset(ctx context.Context) (*repository.Dataset, error) {
	s.mu.RLock()
	year := s.currentYear
	s.mu.RUnlock()
	if year == "" {
		return nil, repository.ErrUnknownYear
	}
	return s.datasets.Get(ctx, year)
}
