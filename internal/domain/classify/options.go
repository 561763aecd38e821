package classify

// TurnoutOption applies a configuration option to the TurnoutDiffClassifier.
type TurnoutOption func(*TurnoutDiffClassifier)

// WithPartyColors sets the party-to-color mapping used for clear leads.
// The map is copied to keep the classifier free of shared state.
func WithPartyColors(colors map[string]string) TurnoutOption {
	return func(c *TurnoutDiffClassifier) {
		for party, color := range colors {
			if party != "" && color != "" {
				c.partyColors[party] = color
			}
		}
	}
}
