package analytics

import (
	"math"

	"betsim/models"

	"gonum.org/v1/gonum/stat"
)

// MetricsAggregator derives summary statistics from a bet history.
// The catalog is needed to measure how bets spread across all events.
type MetricsAggregator struct {
	eventIDs []string
}

// NewMetricsAggregator creates an aggregator over the given event catalog
func NewMetricsAggregator(catalog *models.EventCatalog) *MetricsAggregator {
	return &MetricsAggregator{eventIDs: catalog.IDs()}
}

// Summarize computes every metric for history, which must be in chronological order
func (a *MetricsAggregator) Summarize(history []*models.BetRecord) models.MetricsSummary {
	var summary models.MetricsSummary
	summary.TotalBets = len(history)
	if len(history) == 0 {
		return summary
	}

	stakes := make([]float64, len(history))
	risks := make([]float64, len(history))
	for i, bet := range history {
		stakes[i] = bet.BetAmount
		risks[i] = float64(bet.RiskPercentage)
		summary.TotalStaked += bet.BetAmount

		if bet.IsWin() {
			summary.Wins++
			summary.TotalWon += bet.SettlementAmount
			summary.BiggestWin = math.Max(summary.BiggestWin, bet.SettlementAmount)
		} else {
			summary.Losses++
			summary.TotalLost += bet.SettlementAmount
			summary.BiggestLoss = math.Max(summary.BiggestLoss, bet.SettlementAmount)
		}
	}

	summary.WinRate = float64(summary.Wins) / float64(summary.TotalBets)
	if summary.Losses > 0 {
		summary.WinLossRatio = float64(summary.Wins) / float64(summary.Losses)
	} else {
		summary.WinLossRatio = float64(summary.Wins)
	}
	summary.NetProfit = summary.TotalWon - summary.TotalLost
	if summary.TotalStaked > 0 {
		summary.ROI = summary.NetProfit / summary.TotalStaked
	}
	summary.AverageBet = stat.Mean(stakes, nil)
	summary.AverageRisk = stat.Mean(risks, nil)

	summary.StakeFractions = StakeFractions(history)
	for _, f := range summary.StakeFractions {
		summary.MaxStakeFraction = math.Max(summary.MaxStakeFraction, f)
	}

	summary.MaxDrawdown = MaxDrawdown(history)
	summary.LongestWinStreak, summary.LongestLossStreak, summary.CurrentStreak = Streaks(history)
	summary.RecoveryRate = RecoveryRate(history)
	summary.DiversificationIndex = a.DiversificationIndex(history)

	return summary
}

// StakeFractions returns each stake as a share of the balance held before the bet
func StakeFractions(history []*models.BetRecord) []float64 {
	fractions := make([]float64, len(history))
	for i, bet := range history {
		before := bet.BalanceBefore()
		if before > 0 {
			fractions[i] = bet.BetAmount / before
		}
	}
	return fractions
}

// MaxDrawdown is the largest peak-to-trough decline of the post-bet balance, in percent
func MaxDrawdown(history []*models.BetRecord) float64 {
	if len(history) == 0 {
		return 0
	}
	peak := history[0].BalanceAfter
	var worst float64
	for _, bet := range history {
		if bet.BalanceAfter > peak {
			peak = bet.BalanceAfter
			continue
		}
		if peak > 0 {
			worst = math.Max(worst, (peak-bet.BalanceAfter)/peak*100)
		}
	}
	return worst
}

// Streaks returns the longest win run, the longest loss run and the current
// streak, which is positive for consecutive wins and negative for losses.
func Streaks(history []*models.BetRecord) (longestWin, longestLoss, current int) {
	for _, bet := range history {
		if bet.IsWin() {
			if current > 0 {
				current++
			} else {
				current = 1
			}
			longestWin = max(longestWin, current)
		} else {
			if current < 0 {
				current--
			} else {
				current = -1
			}
			longestLoss = max(longestLoss, -current)
		}
	}
	return longestWin, longestLoss, current
}

// RecoveryRate is the share of losses that were immediately followed by a win.
// A loss on the final bet has no successor and is not counted.
func RecoveryRate(history []*models.BetRecord) float64 {
	var losses, recovered int
	for i := 0; i < len(history)-1; i++ {
		if history[i].IsWin() {
			continue
		}
		losses++
		if history[i+1].IsWin() {
			recovered++
		}
	}
	if losses == 0 {
		return 0
	}
	return float64(recovered) / float64(losses)
}

// DiversificationIndex is 1 minus the Gini coefficient of per-event bet-count
// shares across the whole catalog. Spreading bets evenly scores 1.
func (a *MetricsAggregator) DiversificationIndex(history []*models.BetRecord) float64 {
	if len(history) == 0 || len(a.eventIDs) == 0 {
		return 0
	}

	counts := make(map[string]int, len(a.eventIDs))
	for _, bet := range history {
		counts[bet.EventID]++
	}

	shares := make([]float64, 0, len(a.eventIDs))
	for _, id := range a.eventIDs {
		shares = append(shares, float64(counts[id])/float64(len(history)))
	}
	return 1 - gini(shares)
}

// gini computes the Gini coefficient of non-negative values
func gini(values []float64) float64 {
	n := float64(len(values))
	mean := stat.Mean(values, nil)
	if n == 0 || mean == 0 {
		return 0
	}
	var sum float64
	for _, x := range values {
		for _, y := range values {
			sum += math.Abs(x - y)
		}
	}
	return sum / (2 * n * n * mean)
}
