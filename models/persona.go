package models

// RiskRange is an inclusive integer range of risk percentages
type RiskRange struct {
	Min int
	Max int
}

// Contains reports whether risk falls inside the range
func (r RiskRange) Contains(risk int) bool {
	return risk >= r.Min && risk <= r.Max
}

// Persona is a behavioral profile derived from a risk percentage
type Persona struct {
	ID             string
	Name           string
	MaxBetFraction float64 // share of the current balance the persona may stake
	RiskRange      RiskRange
	Traits         []string
}

const (
	PersonaConservative = "conservative"
	PersonaBalanced     = "balanced"
	PersonaAggressive   = "aggressive"
)

// DefaultPersonas returns the persona catalog, ordered from most to least conservative.
// The ranges partition [0,100].
func DefaultPersonas() []Persona {
	return []Persona{
		{
			ID:             PersonaConservative,
			Name:           "Conservative",
			MaxBetFraction: 0.10,
			RiskRange:      RiskRange{Min: 0, Max: 30},
			Traits:         []string{"Small stakes", "Favours likely outcomes", "Protects the bankroll"},
		},
		{
			ID:             PersonaBalanced,
			Name:           "Balanced",
			MaxBetFraction: 0.50,
			RiskRange:      RiskRange{Min: 31, Max: 70},
			Traits:         []string{"Moderate stakes", "Mixes safe and long-shot events", "Accepts some swings"},
		},
		{
			ID:             PersonaAggressive,
			Name:           "Aggressive",
			MaxBetFraction: 1.00,
			RiskRange:      RiskRange{Min: 71, Max: 100},
			Traits:         []string{"Large stakes", "Chases big multipliers", "High volatility"},
		},
	}
}
