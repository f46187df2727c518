package models

// RiskLevel is an informational label on a betting event
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

// BettingEvent is an entry in the static event catalog
type BettingEvent struct {
	ID             string
	Name           string
	Multiplier     float64 // payout factor applied to the stake on a win
	WinProbability float64
	MinBet         float64
	MaxBet         float64 // 0 means unbounded
	RiskLevel      RiskLevel
	Description    string
}

// HasMaxBet reports whether the event caps the stake
func (e BettingEvent) HasMaxBet() bool {
	return e.MaxBet > 0
}

// NetWin returns the balance gain for a winning stake
func (e BettingEvent) NetWin(amount float64) float64 {
	return amount * (e.Multiplier - 1)
}

// DefaultEvents returns the event catalog seeded at startup
func DefaultEvents() []BettingEvent {
	return []BettingEvent{
		{
			ID:             "coin-flip",
			Name:           "Coin Flip",
			Multiplier:     2.0,
			WinProbability: 0.5,
			MinBet:         10,
			RiskLevel:      RiskLevelLow,
			Description:    "Call heads or tails. Even odds, double your stake.",
		},
		{
			ID:             "dice-roll",
			Name:           "Dice Roll",
			Multiplier:     6.0,
			WinProbability: 1.0 / 6.0,
			MinBet:         10,
			MaxBet:         1000,
			RiskLevel:      RiskLevelMedium,
			Description:    "Pick a face of a six-sided die.",
		},
		{
			ID:             "horse-race",
			Name:           "Horse Race",
			Multiplier:     4.0,
			WinProbability: 0.22,
			MinBet:         50,
			MaxBet:         2000,
			RiskLevel:      RiskLevelMedium,
			Description:    "Back a runner in a field of five.",
		},
		{
			ID:             "slot-machine",
			Name:           "Slot Machine",
			Multiplier:     10.0,
			WinProbability: 0.08,
			MinBet:         25,
			MaxBet:         500,
			RiskLevel:      RiskLevelHigh,
			Description:    "Line up three symbols for a tenfold payout.",
		},
		{
			ID:             "roulette",
			Name:           "Roulette (Single Number)",
			Multiplier:     36.0,
			WinProbability: 1.0 / 37.0,
			MinBet:         100,
			MaxBet:         1000,
			RiskLevel:      RiskLevelHigh,
			Description:    "A straight-up bet on one number of a European wheel.",
		},
	}
}

// EventCatalog is an immutable lookup table of betting events keyed by ID
type EventCatalog struct {
	events []BettingEvent
	byID   map[string]BettingEvent
}

// NewEventCatalog builds a catalog from the given events, preserving order
func NewEventCatalog(events []BettingEvent) *EventCatalog {
	c := &EventCatalog{
		events: make([]BettingEvent, len(events)),
		byID:   make(map[string]BettingEvent, len(events)),
	}
	copy(c.events, events)
	for _, e := range events {
		c.byID[e.ID] = e
	}
	return c
}

// Get looks up an event by ID
func (c *EventCatalog) Get(id string) (BettingEvent, bool) {
	e, ok := c.byID[id]
	return e, ok
}

// All returns a copy of the catalog in definition order
func (c *EventCatalog) All() []BettingEvent {
	out := make([]BettingEvent, len(c.events))
	copy(out, c.events)
	return out
}

// IDs returns the event IDs in definition order
func (c *EventCatalog) IDs() []string {
	ids := make([]string, len(c.events))
	for i, e := range c.events {
		ids[i] = e.ID
	}
	return ids
}
