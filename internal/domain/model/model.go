// Package model contains domain models passed between layers.
package model

// RawVoteRow is one candidate's tally within one geographic unit for one
// election year. Rows are immutable once decoded from the source file.
type RawVoteRow struct {
	GeoKey       string // unique id of the smallest reporting unit
	DistrictName string // electoral district the unit belongs to
	Candidate    string
	Party        string
	Votes        int
	Electorate   int // eligible voters in the unit
	TotalVotes   int // ballots actually cast
	County       string
	Township     string
	Village      string
}

// Candidate is a per-village tally derived from a single row.
type Candidate struct {
	Name  string `json:"name"`
	Party string `json:"party"`
	Votes int    `json:"votes"`
}

// Village is the smallest derived entity, keyed by its geo key.
// Candidates are kept sorted by votes descending; Leader and RunnerUp
// alias the first two entries and are nil when fewer exist.
type Village struct {
	GeoKey       string      `json:"geo_key"`
	Name         string      `json:"name"` // county + township + village
	DistrictName string      `json:"district_name"`
	Electorate   int         `json:"electorate"`
	TotalVotes   int         `json:"total_votes"`
	Candidates   []Candidate `json:"candidates"`
	Leader       *Candidate  `json:"leader,omitempty"`
	RunnerUp     *Candidate  `json:"runner_up,omitempty"`

	// District winner, copied here for display convenience.
	DistrictWinner      string `json:"district_winner"`
	DistrictWinnerParty string `json:"district_winner_party"`
}

// DistrictTally is a candidate's aggregated total across a district.
type DistrictTally struct {
	Party string `json:"party"`
	Votes int    `json:"votes"`
}

// District aggregates all villages sharing one electoral district name.
type District struct {
	Name        string                   `json:"name"`
	Tallies     map[string]DistrictTally `json:"tallies"` // candidate name -> total
	Winner      string                   `json:"winner"`
	WinnerParty string                   `json:"winner_party"`

	// Townships holds the deduplicated township names seen in this
	// district's villages, in first-seen order. Feeds the search index.
	Townships []string `json:"townships"`

	// CandidateOrder records each candidate name the first time it is
	// seen during aggregation. Input-order tie-breaking depends on it.
	CandidateOrder []string `json:"-"`
}

// Annotation is a user note pinned to a village.
// An annotation with an empty note must not exist; saving an empty note
// is equivalent to deletion.
type Annotation struct {
	GeoKey string  `json:"geo_key"`
	Name   string  `json:"name"`
	Note   string  `json:"note"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
}

// YearSource maps a year label to its data files. Geo paths may be shared
// across years; the boundary payload is cached after first load.
type YearSource struct {
	VotesPath string `json:"votes_path" koanf:"votes_path"`
	GeoPath   string `json:"geo_path" koanf:"geo_path"`
}

// Boundary is one polygon feature from the geographic dataset, reduced to
// the fields the service needs: the join key and a centroid for annotation
// focus coordinates.
type Boundary struct {
	GeoKey string  `json:"geo_key"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
}
