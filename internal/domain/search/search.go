// Package search builds the per-district search index and answers
// substring queries against it.
package search

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/tienyuan-huang/election/internal/domain/model"
)

// Index holds one lowercase haystack per district plus the auxiliary
// "name + reference winner" haystack used when a winners lookup loaded.
type Index struct {
	entries  map[string]entry
	names    []string // all district names, collation-sorted
	collator *collate.Collator
}

type entry struct {
	haystack string // district + townships + candidates
	winner   string // district + reference-year winner, may be empty
}

// Build assembles the index from aggregated districts. refWinners maps a
// district name to the reference year's winning candidate and may be nil
// when the auxiliary load failed or is disabled.
func Build(districts map[string]*model.District, refWinners map[string]string) *Index {
	idx := &Index{
		entries:  make(map[string]entry, len(districts)),
		collator: collate.New(language.TraditionalChinese),
	}
	for name, d := range districts {
		var b strings.Builder
		b.WriteString(name)
		for _, township := range d.Townships {
			b.WriteByte(' ')
			b.WriteString(township)
		}
		for _, candidate := range d.CandidateOrder {
			b.WriteByte(' ')
			b.WriteString(candidate)
		}
		e := entry{haystack: strings.ToLower(b.String())}
		if w, ok := refWinners[name]; ok && w != "" {
			e.winner = strings.ToLower(name + " " + w)
		}
		idx.entries[name] = e
		idx.names = append(idx.names, name)
	}
	idx.collator.SortStrings(idx.names)
	return idx
}

// Names returns all indexed district names in locale order.
func (idx *Index) Names() []string {
	return idx.names
}

// Match returns the districts whose index contains the trimmed,
// case-folded query as a substring, in locale order. An empty query
// matches everything.
func (idx *Index) Match(query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return append([]string(nil), idx.names...)
	}
	var out []string
	for _, name := range idx.names {
		e := idx.entries[name]
		if strings.Contains(e.haystack, q) || (e.winner != "" && strings.Contains(e.winner, q)) {
			out = append(out, name)
		}
	}
	return out
}

// Contains reports whether name is an indexed district.
func (idx *Index) Contains(name string) bool {
	_, ok := idx.entries[name]
	return ok
}

// ReduceWinners collapses a reference year's aggregation into the
// district -> winner lookup used for index enrichment.
func ReduceWinners(districts map[string]*model.District) map[string]string {
	out := make(map[string]string, len(districts))
	names := make([]string, 0, len(districts))
	for name := range districts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if w := districts[name].Winner; w != "" {
			out[name] = w
		}
	}
	return out
}
