package analytics

import (
	"fmt"
	"time"

	"betsim/models"

	"gonum.org/v1/gonum/stat"
)

// MinPatternHistory is the number of bets needed before patterns are evaluated
const MinPatternHistory = 5

const (
	lossChasingIncrease  = 1.3
	martingaleLowerBound = 2 * 0.7
	martingaleUpperBound = 2 * 1.3
	overconfidenceRise   = 1.3
	largeStakeShare      = 0.2
	rapidBetGap          = 2 * time.Minute
	highRiskBetThreshold = 60.0
)

// severityBands maps a ratio onto a severity, checked from high to low
type severityBands struct {
	high, medium, low float64
}

func (b severityBands) grade(ratio float64) (models.Severity, bool) {
	switch {
	case ratio > b.high:
		return models.SeverityHigh, true
	case ratio > b.medium:
		return models.SeverityMedium, true
	case ratio > b.low:
		return models.SeverityLow, true
	default:
		return "", false
	}
}

var (
	lossChasingBands    = severityBands{high: 0.4, medium: 0.3, low: 0.2}
	rapidBettingBands   = severityBands{high: 0.6, medium: 0.45, low: 0.3}
	martingaleBands     = severityBands{high: 0.3, medium: 0.2, low: 0.15}
	largeStakeBands     = severityBands{high: 0.3, medium: 0.2, low: 0.15}
	overconfidenceBands = severityBands{high: 0.5, medium: 0.4, low: 0.3}
)

type patternRule func(history []*models.BetRecord) (models.Warning, bool)

var patternRules = []patternRule{
	detectLossChasing,
	detectHighRiskBetting,
	detectRapidBetting,
	detectMartingale,
	detectLargeStakes,
	detectPostWinOverconfidence,
	detectLossStreak,
}

// DetectPatterns scans a chronological history for problematic betting
// signatures. Histories shorter than MinPatternHistory yield no warnings.
func DetectPatterns(history []*models.BetRecord) []models.Warning {
	warnings := []models.Warning{}
	if len(history) < MinPatternHistory {
		return warnings
	}
	for _, rule := range patternRules {
		if w, ok := rule(history); ok {
			warnings = append(warnings, w)
		}
	}
	return warnings
}

// ratio returns qualifying/eligible, or 0 when nothing is eligible
func ratio(qualifying, eligible int) float64 {
	if eligible == 0 {
		return 0
	}
	return float64(qualifying) / float64(eligible)
}

func detectLossChasing(history []*models.BetRecord) (models.Warning, bool) {
	var eligible, qualifying int
	for i := 1; i < len(history); i++ {
		prev, cur := history[i-1], history[i]
		if prev.IsWin() {
			continue
		}
		eligible++
		if cur.BetAmount >= prev.BetAmount*lossChasingIncrease {
			qualifying++
		}
	}

	r := ratio(qualifying, eligible)
	severity, ok := lossChasingBands.grade(r)
	if !ok {
		return models.Warning{}, false
	}
	return models.Warning{
		ID:       "loss-chasing",
		Title:    "Chasing losses",
		Severity: severity,
		Description: fmt.Sprintf("You raised your stake by 30%% or more after %d of %d losses (%.0f%%).",
			qualifying, eligible, r*100),
		Recommendation: "Keep your stake flat after a loss. Set a loss limit for the session and stop when you reach it.",
	}, true
}

func detectHighRiskBetting(history []*models.BetRecord) (models.Warning, bool) {
	risks := make([]float64, len(history))
	var risky int
	for i, bet := range history {
		risks[i] = float64(bet.RiskPercentage)
		if risks[i] > highRiskBetThreshold {
			risky++
		}
	}
	mean := stat.Mean(risks, nil)
	riskyShare := ratio(risky, len(history))

	if mean <= 50 && riskyShare <= 0.4 {
		return models.Warning{}, false
	}

	severity := models.SeverityLow
	switch {
	case mean > 70:
		severity = models.SeverityHigh
	case mean > 60:
		severity = models.SeverityMedium
	}

	return models.Warning{
		ID:       "high-risk-betting",
		Title:    "Consistently high-risk bets",
		Severity: severity,
		Description: fmt.Sprintf("Your average risk score is %.0f and %.0f%% of your bets scored above %.0f.",
			mean, riskyShare*100, highRiskBetThreshold),
		Recommendation: "Lower your stake relative to your balance or choose events with better odds.",
	}, true
}

func detectRapidBetting(history []*models.BetRecord) (models.Warning, bool) {
	eligible := len(history) - 1
	var qualifying int
	for i := 1; i < len(history); i++ {
		if history[i].Timestamp.Sub(history[i-1].Timestamp) < rapidBetGap {
			qualifying++
		}
	}

	r := ratio(qualifying, eligible)
	severity, ok := rapidBettingBands.grade(r)
	if !ok {
		return models.Warning{}, false
	}
	return models.Warning{
		ID:       "rapid-betting",
		Title:    "Rapid-fire betting",
		Severity: severity,
		Description: fmt.Sprintf("%d of %d consecutive bets were placed less than %s after the previous one.",
			qualifying, eligible, rapidBetGap),
		Recommendation: "Take a short break between bets to decide each wager deliberately.",
	}, true
}

func detectMartingale(history []*models.BetRecord) (models.Warning, bool) {
	var eligible, qualifying int
	for i := 1; i < len(history); i++ {
		prev, cur := history[i-1], history[i]
		if prev.IsWin() {
			continue
		}
		eligible++
		if prev.BetAmount <= 0 {
			continue
		}
		growth := cur.BetAmount / prev.BetAmount
		if growth >= martingaleLowerBound && growth <= martingaleUpperBound {
			qualifying++
		}
	}

	r := ratio(qualifying, eligible)
	severity, ok := martingaleBands.grade(r)
	if !ok {
		return models.Warning{}, false
	}
	return models.Warning{
		ID:       "martingale",
		Title:    "Martingale progression",
		Severity: severity,
		Description: fmt.Sprintf("You roughly doubled your stake after %d of %d losses.",
			qualifying, eligible),
		Recommendation: "Doubling after a loss grows exposure exponentially. A short losing run can wipe out the balance.",
	}, true
}

func detectLargeStakes(history []*models.BetRecord) (models.Warning, bool) {
	var qualifying int
	for _, bet := range history {
		if bet.BetAmount > bet.BalanceAfter*largeStakeShare {
			qualifying++
		}
	}

	r := ratio(qualifying, len(history))
	severity, ok := largeStakeBands.grade(r)
	if !ok {
		return models.Warning{}, false
	}
	return models.Warning{
		ID:       "large-stakes",
		Title:    "Oversized stakes",
		Severity: severity,
		Description: fmt.Sprintf("%d of %d bets staked more than %.0f%% of the resulting balance.",
			qualifying, len(history), largeStakeShare*100),
		Recommendation: "Keep individual stakes to a small, fixed share of your balance.",
	}, true
}

func detectPostWinOverconfidence(history []*models.BetRecord) (models.Warning, bool) {
	var eligible, qualifying int
	for i := 1; i < len(history); i++ {
		prev, cur := history[i-1], history[i]
		if !prev.IsWin() {
			continue
		}
		eligible++
		if float64(cur.RiskPercentage) >= float64(prev.RiskPercentage)*overconfidenceRise && cur.RiskPercentage > prev.RiskPercentage {
			qualifying++
		}
	}

	r := ratio(qualifying, eligible)
	severity, ok := overconfidenceBands.grade(r)
	if !ok {
		return models.Warning{}, false
	}
	return models.Warning{
		ID:       "post-win-overconfidence",
		Title:    "Overconfidence after wins",
		Severity: severity,
		Description: fmt.Sprintf("Your risk score rose by 30%% or more after %d of %d wins.",
			qualifying, eligible),
		Recommendation: "A win does not change the odds of the next bet. Keep your stake consistent after winning.",
	}, true
}

func detectLossStreak(history []*models.BetRecord) (models.Warning, bool) {
	_, longest, _ := Streaks(history)

	var severity models.Severity
	switch {
	case longest >= 6:
		severity = models.SeverityHigh
	case longest >= 5:
		severity = models.SeverityMedium
	case longest >= 4:
		severity = models.SeverityLow
	default:
		return models.Warning{}, false
	}

	return models.Warning{
		ID:             "loss-streak",
		Title:          "Extended losing streak",
		Severity:       severity,
		Description:    fmt.Sprintf("You lost %d bets in a row.", longest),
		Recommendation: "Losing streaks are normal variance. Pause before your next bet rather than trying to win it back.",
	}, true
}
