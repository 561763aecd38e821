// Package aggregate folds raw vote rows into village and district entities
// and computes the derived winner, runner-up and turnout fields.
package aggregate

import (
	"sort"
	"strings"

	"github.com/tienyuan-huang/election/internal/domain/model"
)

// Result holds the rebuilt entity model for one election year. It is
// replaced wholesale on every load; nothing mutates it afterwards.
type Result struct {
	Villages  map[string]*model.Village
	Districts map[string]*model.District

	// VillageOrder preserves first-seen order of geo keys so renders are
	// stable across identical inputs.
	VillageOrder []string

	// Dropped counts rows discarded for a missing geo key or district name.
	Dropped int
}

// Aggregator builds Results from row sequences.
type Aggregator struct {
	allow    map[string]struct{}
	tieBreak TieBreak
}

// New constructs an Aggregator with default configuration.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		tieBreak: TieBreakInputOrder,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate runs the two-phase fold over rows.
//
// Phase one accumulates district tallies, recording a candidate's party on
// first sight. Phase two builds villages, copying unit metadata from the
// first row seen for each geo key. Both phases share one loop since
// neither depends on the other's output. Winners and per-village ordering
// are resolved afterwards.
func (a *Aggregator) Aggregate(rows []model.RawVoteRow) *Result {
	res := &Result{
		Villages:  make(map[string]*model.Village),
		Districts: make(map[string]*model.District),
	}

	for i := range rows {
		row := &rows[i]
		if row.GeoKey == "" || row.DistrictName == "" {
			res.Dropped++
			continue
		}
		if a.allow != nil {
			if _, ok := a.allow[row.DistrictName]; !ok {
				continue
			}
		}

		d, ok := res.Districts[row.DistrictName]
		if !ok {
			d = &model.District{
				Name:    row.DistrictName,
				Tallies: make(map[string]model.DistrictTally),
			}
			res.Districts[row.DistrictName] = d
		}
		t, seen := d.Tallies[row.Candidate]
		if !seen {
			// Party is assumed invariant per candidate within a district.
			t.Party = row.Party
			d.CandidateOrder = append(d.CandidateOrder, row.Candidate)
		}
		t.Votes += row.Votes
		d.Tallies[row.Candidate] = t

		v, ok := res.Villages[row.GeoKey]
		if !ok {
			// First occurrence wins for unit metadata.
			v = &model.Village{
				GeoKey:       row.GeoKey,
				Name:         displayName(row),
				DistrictName: row.DistrictName,
				Electorate:   row.Electorate,
				TotalVotes:   row.TotalVotes,
			}
			res.Villages[row.GeoKey] = v
			res.VillageOrder = append(res.VillageOrder, row.GeoKey)
			if row.Township != "" && !contains(d.Townships, row.Township) {
				d.Townships = append(d.Townships, row.Township)
			}
		}
		v.Candidates = append(v.Candidates, model.Candidate{
			Name:  row.Candidate,
			Party: row.Party,
			Votes: row.Votes,
		})
	}

	for _, d := range res.Districts {
		a.resolveWinner(d)
	}
	for _, v := range res.Villages {
		a.sortCandidates(v.Candidates)
		if len(v.Candidates) > 0 {
			v.Leader = &v.Candidates[0]
		}
		if len(v.Candidates) > 1 {
			v.RunnerUp = &v.Candidates[1]
		}
		if d, ok := res.Districts[v.DistrictName]; ok {
			v.DistrictWinner = d.Winner
			v.DistrictWinnerParty = d.WinnerParty
		}
	}

	return res
}

// sortCandidates orders by votes descending. The sort is stable so that
// equal-vote candidates keep input order; under TieBreakName equal votes
// fall back to name order instead.
func (a *Aggregator) sortCandidates(cs []model.Candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].Votes != cs[j].Votes {
			return cs[i].Votes > cs[j].Votes
		}
		if a.tieBreak == TieBreakName {
			return cs[i].Name < cs[j].Name
		}
		return false
	})
}

// resolveWinner picks the candidate with the highest aggregated total.
// Map iteration order is random, so the walk order is made explicit:
// first-seen order for TieBreakInputOrder, name order for TieBreakName.
// A strict > comparison then yields the policy's tie winner.
func (a *Aggregator) resolveWinner(d *model.District) {
	names := d.CandidateOrder
	if a.tieBreak == TieBreakName {
		names = append([]string(nil), d.CandidateOrder...)
		sort.Strings(names)
	}

	var winner string
	best := -1
	for _, name := range names {
		t := d.Tallies[name]
		if t.Votes > best {
			best = t.Votes
			winner = name
		}
	}
	if winner != "" {
		d.Winner = winner
		d.WinnerParty = d.Tallies[winner].Party
	}
}

func displayName(row *model.RawVoteRow) string {
	var b strings.Builder
	b.WriteString(row.County)
	b.WriteString(row.Township)
	b.WriteString(row.Village)
	return b.String()
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
