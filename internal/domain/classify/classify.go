// Package classify maps a village's derived metrics to a render category.
// Classifiers are pure: the same village always yields the same category.
package classify

import (
	"math"

	"github.com/tienyuan-huang/election/internal/domain/model"
)

// Category is the color bucket a village renders as.
type Category string

const (
	// Contested marks a near-tie between the top two candidates.
	Contested Category = "contested"
	// Competitive marks a close but not razor-thin race (margin policy only).
	Competitive Category = "competitive"
	// Stable marks a clear lead (margin policy only).
	Stable Category = "stable"
	// Leading marks a clear lead colored by the leader's party
	// (turnout-differential policy only).
	Leading Category = "leading"
	// NoData marks villages that cannot be classified.
	NoData Category = "no-data"
)

// Outcome pairs a category with the color a map layer should paint.
type Outcome struct {
	Category Category `json:"category"`
	Color    string   `json:"color"`
}

// Classifier turns a village into a render outcome.
type Classifier interface {
	Classify(v *model.Village) Outcome
}

// Thresholds shared by both policies.
const (
	contestedThreshold   = 0.05
	competitiveThreshold = 0.15
)

// Default colors. Party colors are configurable on the turnout policy.
const (
	colorContested   = "#d32f2f" // red
	colorCompetitive = "#7b1fa2" // violet
	colorStable      = "#1976d2" // blue
	colorNeutral     = "#9e9e9e" // gray
)

// MarginClassifier implements the simple margin policy:
// margin = |winner-opponent| / (winner+opponent).
type MarginClassifier struct{}

// NewMarginClassifier creates the margin-policy classifier.
func NewMarginClassifier() *MarginClassifier {
	return &MarginClassifier{}
}

// Classify buckets by normalized margin between the top two candidates.
func (c *MarginClassifier) Classify(v *model.Village) Outcome {
	if v == nil || v.Leader == nil || v.RunnerUp == nil {
		return Outcome{Category: NoData, Color: colorNeutral}
	}
	total := float64(v.Leader.Votes + v.RunnerUp.Votes)
	if total == 0 {
		return Outcome{Category: NoData, Color: colorNeutral}
	}
	margin := math.Abs(float64(v.Leader.Votes-v.RunnerUp.Votes)) / total
	switch {
	case margin < contestedThreshold:
		return Outcome{Category: Contested, Color: colorContested}
	case margin < competitiveThreshold:
		return Outcome{Category: Competitive, Color: colorCompetitive}
	default:
		return Outcome{Category: Stable, Color: colorStable}
	}
}

// TurnoutDiffClassifier implements the turnout-differential policy: the
// top-two gap is measured against the electorate rather than ballots cast,
// and clear leads are colored by the leader's party.
type TurnoutDiffClassifier struct {
	partyColors map[string]string
}

// NewTurnoutDiffClassifier creates the turnout-policy classifier.
func NewTurnoutDiffClassifier(opts ...TurnoutOption) *TurnoutDiffClassifier {
	c := &TurnoutDiffClassifier{
		partyColors: make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify compares the leader's and runner-up's turnout rates. A gap
// under the contested threshold is red regardless of party; otherwise the
// leader's party picks the color, unknown parties falling back to gray.
func (c *TurnoutDiffClassifier) Classify(v *model.Village) Outcome {
	if v == nil || v.Leader == nil || v.RunnerUp == nil || v.Electorate <= 0 {
		return Outcome{Category: NoData, Color: colorNeutral}
	}
	electorate := float64(v.Electorate)
	leaderRate := float64(v.Leader.Votes) / electorate
	runnerUpRate := float64(v.RunnerUp.Votes) / electorate
	if math.Abs(leaderRate-runnerUpRate) < contestedThreshold {
		return Outcome{Category: Contested, Color: colorContested}
	}
	if color, ok := c.partyColors[v.Leader.Party]; ok {
		return Outcome{Category: Leading, Color: color}
	}
	return Outcome{Category: Leading, Color: colorNeutral}
}

// ForPolicy returns the classifier named by policy, defaulting to the
// turnout-differential policy for unknown values.
func ForPolicy(policy string, partyColors map[string]string) Classifier {
	if policy == "margin" {
		return NewMarginClassifier()
	}
	return NewTurnoutDiffClassifier(WithPartyColors(partyColors))
}
