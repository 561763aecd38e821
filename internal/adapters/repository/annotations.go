package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/tienyuan-huang/election/internal/domain/model"
	"github.com/tienyuan-huang/election/pkg/metrics"
)

// ChangeKind names annotation mutations for change listeners.
type ChangeKind string

const (
	// ChangeSaved covers both create and update.
	ChangeSaved ChangeKind = "saved"
	// ChangeDeleted covers explicit deletes and empty-note saves.
	ChangeDeleted ChangeKind = "deleted"
)

// Change describes one annotation mutation.
type Change struct {
	Kind       ChangeKind       `json:"kind"`
	GeoKey     string           `json:"geo_key"`
	Annotation model.Annotation `json:"annotation,omitempty"`
}

// Notifier receives changes after they are applied. Wired to the event
// broadcaster so map clients can refresh markers and the side list.
type Notifier interface {
	Notify(ctx context.Context, c Change)
}

// AnnotationStore keeps the session's annotations in insertion order.
// Mutations come from user interaction events only; the lock exists
// because HTTP handlers may race, not because writes are expected to.
type AnnotationStore struct {
	mu       sync.RWMutex
	byKey    map[string]*model.Annotation
	order    []string
	notifier Notifier
}

// AnnotationOption applies a configuration option to the AnnotationStore.
type AnnotationOption func(*AnnotationStore)

// WithNotifier attaches a change listener.
func WithNotifier(n Notifier) AnnotationOption {
	return func(s *AnnotationStore) {
		if n != nil {
			s.notifier = n
		}
	}
}

// NewAnnotationStore creates an empty store.
func NewAnnotationStore(opts ...AnnotationOption) *AnnotationStore {
	s := &AnnotationStore{
		byKey: make(map[string]*model.Annotation),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save upserts the annotation for its geo key. A note that trims to
// empty delegates to Delete: an empty annotation must never exist.
func (s *AnnotationStore) Save(ctx context.Context, a model.Annotation) {
	if strings.TrimSpace(a.Note) == "" {
		s.Delete(ctx, a.GeoKey)
		return
	}

	s.mu.Lock()
	if existing, ok := s.byKey[a.GeoKey]; ok {
		*existing = a
	} else {
		s.byKey[a.GeoKey] = &a
		s.order = append(s.order, a.GeoKey)
	}
	count := len(s.byKey)
	s.mu.Unlock()

	metrics.UpdateAnnotationCount(count)
	metrics.RecordAnnotationOp("save")
	if s.notifier != nil {
		s.notifier.Notify(ctx, Change{Kind: ChangeSaved, GeoKey: a.GeoKey, Annotation: a})
	}
}

// Delete removes the annotation if present. A missing key is a guarded
// no-op: no notification fires when nothing existed.
func (s *AnnotationStore) Delete(ctx context.Context, geoKey string) {
	s.mu.Lock()
	_, ok := s.byKey[geoKey]
	if ok {
		delete(s.byKey, geoKey)
		for i, k := range s.order {
			if k == geoKey {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	count := len(s.byKey)
	s.mu.Unlock()

	if !ok {
		return
	}
	metrics.UpdateAnnotationCount(count)
	metrics.RecordAnnotationOp("delete")
	if s.notifier != nil {
		s.notifier.Notify(ctx, Change{Kind: ChangeDeleted, GeoKey: geoKey})
	}
}

// Get returns the annotation for a geo key, or ErrNotFound.
func (s *AnnotationStore) Get(ctx context.Context, geoKey string) (model.Annotation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byKey[geoKey]
	if !ok {
		return model.Annotation{}, ErrNotFound
	}
	return *a, nil
}

// List returns annotations in insertion order.
func (s *AnnotationStore) List(ctx context.Context) []model.Annotation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Annotation, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, *s.byKey[k])
	}
	return out
}

// Count returns the number of stored annotations.
func (s *AnnotationStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byKey)
}
