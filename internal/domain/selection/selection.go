// Package selection models the district filter as an explicit state
// machine. Reduce is a pure (state, event) -> state function; rendering is
// a projection of the resulting state and never a side effect of a
// transition. In particular no transition ever implies an unfiltered
// full-map render.
package selection

// Mode enumerates the selection states.
type Mode string

const (
	// NoSelection renders nothing. It is the initial state under the
	// deferred policy so large datasets do not paint on load.
	NoSelection Mode = "none"
	// SingleDistrict renders exactly one district.
	SingleDistrict Mode = "single"
	// AllMatching renders every district in the current filtered list.
	AllMatching Mode = "all"
)

// State is the full selection state. Filtered always holds the districts
// matching the current query, regardless of mode.
type State struct {
	Mode     Mode     `json:"mode"`
	District string   `json:"district,omitempty"`
	Query    string   `json:"query"`
	Filtered []string `json:"filtered"`
}

// EventKind names the inputs the machine accepts.
type EventKind string

const (
	// ChooseDistrict selects one district by name.
	ChooseDistrict EventKind = "choose_district"
	// ChooseAll selects every district in the current filtered list.
	ChooseAll EventKind = "choose_all"
	// SetQuery replaces the search query and its match list.
	SetQuery EventKind = "set_query"
	// ClearQuery resets the query and restores the full district list.
	ClearQuery EventKind = "clear_query"
)

// Event carries one input. Matches is the recomputed filter list for
// SetQuery, or the full known list for ClearQuery.
type Event struct {
	Kind     EventKind
	District string
	Query    string
	Matches  []string
}

// InitialPolicy controls the state a fresh dataset starts in.
type InitialPolicy string

const (
	// PolicyDeferred starts at NoSelection; the user must pick something.
	PolicyDeferred InitialPolicy = "deferred"
	// PolicyEager starts at AllMatching over the full district list.
	PolicyEager InitialPolicy = "eager"
)

// Initial builds the starting state for a freshly loaded dataset.
func Initial(policy InitialPolicy, allDistricts []string) State {
	s := State{
		Mode:     NoSelection,
		Filtered: append([]string(nil), allDistricts...),
	}
	if policy == PolicyEager {
		s.Mode = AllMatching
	}
	return s
}

// Reduce applies one event and returns the next state. Unknown events and
// out-of-list district choices leave the state unchanged.
func Reduce(s State, e Event) State {
	switch e.Kind {
	case ChooseDistrict:
		if !containsName(s.Filtered, e.District) {
			return s
		}
		s.Mode = SingleDistrict
		s.District = e.District
		return s

	case ChooseAll:
		s.Mode = AllMatching
		s.District = ""
		return s

	case SetQuery:
		// A query change repopulates the selector; the user must make a
		// fresh choice, so selection drops back to none.
		s.Query = e.Query
		s.Filtered = append([]string(nil), e.Matches...)
		s.Mode = NoSelection
		s.District = ""
		return s

	case ClearQuery:
		s.Query = ""
		s.Filtered = append([]string(nil), e.Matches...)
		s.Mode = NoSelection
		s.District = ""
		return s
	}
	return s
}

// Visible reports whether a feature belonging to district should render
// under the current state.
func (s State) Visible(district string) bool {
	switch s.Mode {
	case SingleDistrict:
		return district == s.District
	case AllMatching:
		return containsName(s.Filtered, district)
	default:
		return false
	}
}

func containsName(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
