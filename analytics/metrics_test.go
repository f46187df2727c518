package analytics

import (
	"testing"

	"betsim/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleHistory() []*models.BetRecord {
	return newHistory(1000).
		add("coin-flip", 100, true, 100, 22).
		add("coin-flip", 100, false, 0, 22).
		add("dice-roll", 50, false, 0, 30).
		add("dice-roll", 50, true, 250, 30).
		add("coin-flip", 200, false, 0, 29).
		build()
}

func TestMetricsAggregator_Summarize(t *testing.T) {
	aggregator := NewMetricsAggregator(models.NewEventCatalog(models.DefaultEvents()))

	summary := aggregator.Summarize(sampleHistory())

	assert.Equal(t, 5, summary.TotalBets)
	assert.Equal(t, 2, summary.Wins)
	assert.Equal(t, 3, summary.Losses)
	assert.InDelta(t, 0.4, summary.WinRate, 1e-9)
	assert.InDelta(t, 2.0/3.0, summary.WinLossRatio, 1e-9)

	assert.InDelta(t, 500, summary.TotalStaked, 1e-9)
	assert.InDelta(t, 350, summary.TotalWon, 1e-9)
	assert.InDelta(t, 350, summary.TotalLost, 1e-9)
	assert.InDelta(t, 0, summary.NetProfit, 1e-9)
	assert.InDelta(t, 0, summary.ROI, 1e-9)
	assert.InDelta(t, 100, summary.AverageBet, 1e-9)
	assert.InDelta(t, 26.6, summary.AverageRisk, 1e-9)
	assert.InDelta(t, 250, summary.BiggestWin, 1e-9)
	assert.InDelta(t, 200, summary.BiggestLoss, 1e-9)

	require.Len(t, summary.StakeFractions, 5)
	assert.InDelta(t, 0.1, summary.StakeFractions[0], 1e-9)
	assert.InDelta(t, 100.0/1100.0, summary.StakeFractions[1], 1e-9)
	assert.InDelta(t, 200.0/1200.0, summary.StakeFractions[4], 1e-9)
	assert.InDelta(t, 200.0/1200.0, summary.MaxStakeFraction, 1e-9)

	assert.InDelta(t, 200.0/1200.0*100, summary.MaxDrawdown, 1e-9)

	assert.Equal(t, 1, summary.LongestWinStreak)
	assert.Equal(t, 2, summary.LongestLossStreak)
	assert.Equal(t, -1, summary.CurrentStreak)

	assert.InDelta(t, 0.5, summary.RecoveryRate, 1e-9)
	assert.InDelta(t, 0.36, summary.DiversificationIndex, 1e-9)
}

func TestMetricsAggregator_EmptyHistory(t *testing.T) {
	aggregator := NewMetricsAggregator(models.NewEventCatalog(models.DefaultEvents()))

	summary := aggregator.Summarize(nil)

	assert.Equal(t, models.MetricsSummary{}, summary)
}

func TestDiversificationIndex(t *testing.T) {
	catalog := models.NewEventCatalog(models.DefaultEvents())
	aggregator := NewMetricsAggregator(catalog)

	t.Run("single event", func(t *testing.T) {
		history := newHistory(1000).win(10, 20).win(10, 20).loss(10, 20).build()
		assert.InDelta(t, 0.2, aggregator.DiversificationIndex(history), 1e-9)
	})

	t.Run("evenly spread", func(t *testing.T) {
		b := newHistory(1000)
		for _, id := range catalog.IDs() {
			b.add(id, 100, false, 0, 30)
		}
		assert.InDelta(t, 1.0, aggregator.DiversificationIndex(b.build()), 1e-9)
	})
}

func TestStreaks_WinningRun(t *testing.T) {
	history := newHistory(1000).loss(10, 20).win(10, 20).win(10, 20).win(10, 20).build()

	longestWin, longestLoss, current := Streaks(history)
	assert.Equal(t, 3, longestWin)
	assert.Equal(t, 1, longestLoss)
	assert.Equal(t, 3, current)
}

func TestMaxDrawdown_ToZero(t *testing.T) {
	history := newHistory(100).win(50, 20).loss(150, 20).build()

	assert.InDelta(t, 100, MaxDrawdown(history), 1e-9)
}

func TestRecoveryRate_NoLosses(t *testing.T) {
	history := newHistory(1000).win(10, 20).win(10, 20).build()

	assert.Equal(t, 0.0, RecoveryRate(history))
}
