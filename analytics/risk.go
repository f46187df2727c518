package analytics

import (
	"math"

	"betsim/models"
)

const (
	weightBetSize          = 50.0
	weightEventProbability = 30.0
	weightLossImpact       = 20.0
)

// ScoreRisk rates a candidate wager on a 0-100 scale.
//
// The score is a weighted blend of the stake as a share of the bankroll, the
// rarity of a win and the potential loss. The loss impact term currently uses
// the same stake share as the bet size term, so large relative stakes are
// counted twice. Non-finite inputs score 0.
func ScoreRisk(winProbability, balance, betAmount float64) int {
	if balance <= 0 || !isFinite(balance) || !isFinite(betAmount) || !isFinite(winProbability) {
		return 0
	}
	if betAmount < 0 {
		betAmount = 0
	}

	betSizeFactor := math.Min(betAmount/balance, 1)
	eventProbabilityFactor := 1 - winProbability
	lossImpactFactor := math.Min(betAmount/balance, 1)

	raw := betSizeFactor*weightBetSize +
		eventProbabilityFactor*weightEventProbability +
		lossImpactFactor*weightLossImpact

	return clampInt(int(math.Round(raw)), 0, 100)
}

// ClassifyPersona returns the persona whose risk range contains risk,
// falling back to the most conservative persona.
func ClassifyPersona(personas []models.Persona, risk int) models.Persona {
	for _, p := range personas {
		if p.RiskRange.Contains(risk) {
			return p
		}
	}
	return mostConservative(personas)
}

// MaxBet is the largest stake the persona allows against balance
func MaxBet(balance float64, persona models.Persona) float64 {
	if balance <= 0 {
		return 0
	}
	return math.Floor(balance * persona.MaxBetFraction)
}

func mostConservative(personas []models.Persona) models.Persona {
	if len(personas) == 0 {
		return models.Persona{}
	}
	best := personas[0]
	for _, p := range personas[1:] {
		if p.MaxBetFraction < best.MaxBetFraction {
			best = p
		}
	}
	return best
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
