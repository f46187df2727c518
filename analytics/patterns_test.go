package analytics

import (
	"testing"
	"time"

	"betsim/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectPatterns_RequiresMinimumHistory(t *testing.T) {
	history := newHistory(1000).
		loss(10, 80).loss(20, 80).loss(40, 80).loss(80, 80).
		build()

	warnings := DetectPatterns(history)
	assert.NotNil(t, warnings)
	assert.Empty(t, warnings)

	assert.Empty(t, DetectPatterns(nil))
}

func TestDetectPatterns_CalmHistory(t *testing.T) {
	history := newHistory(1000).
		win(10, 20).loss(10, 20).win(10, 20).loss(10, 20).win(10, 20).loss(10, 20).
		build()

	assert.Empty(t, DetectPatterns(history))
}

func TestDetectPatterns_Martingale(t *testing.T) {
	history := newHistory(1000).
		loss(10, 30).loss(20, 30).loss(40, 30).loss(80, 30).win(160, 30).
		build()

	warnings := DetectPatterns(history)
	require.Len(t, warnings, 3)

	martingale, ok := findWarning(warnings, "martingale")
	require.True(t, ok)
	assert.Equal(t, models.SeverityHigh, martingale.Severity)

	chasing, ok := findWarning(warnings, "loss-chasing")
	require.True(t, ok)
	assert.Equal(t, models.SeverityHigh, chasing.Severity)

	streak, ok := findWarning(warnings, "loss-streak")
	require.True(t, ok)
	assert.Equal(t, models.SeverityLow, streak.Severity)
	assert.Contains(t, streak.Description, "4 bets in a row")
}

func TestDetectPatterns_LossChasingSeverity(t *testing.T) {
	// 2 of 5 post-loss transitions raise the stake: ratio 0.4 is not above 0.4
	history := newHistory(5000).
		loss(100, 20).loss(200, 20).loss(200, 20).loss(200, 20).loss(200, 20).loss(400, 20).
		build()

	warnings := DetectPatterns(history)
	chasing, ok := findWarning(warnings, "loss-chasing")
	require.True(t, ok)
	assert.Equal(t, models.SeverityMedium, chasing.Severity)
	assert.Contains(t, chasing.Description, "2 of 5 losses")

	streak, ok := findWarning(warnings, "loss-streak")
	require.True(t, ok)
	assert.Equal(t, models.SeverityHigh, streak.Severity)
}

func TestDetectPatterns_LossStreakMedium(t *testing.T) {
	history := newHistory(1000).
		win(10, 20).loss(10, 20).loss(10, 20).loss(10, 20).loss(10, 20).loss(10, 20).
		build()

	streak, ok := findWarning(DetectPatterns(history), "loss-streak")
	require.True(t, ok)
	assert.Equal(t, models.SeverityMedium, streak.Severity)
}

func TestDetectPatterns_RapidBetting(t *testing.T) {
	history := newHistory(1000).every(30*time.Second).
		win(10, 20).loss(10, 20).win(10, 20).loss(10, 20).win(10, 20).loss(10, 20).
		build()

	warnings := DetectPatterns(history)
	require.Len(t, warnings, 1)
	assert.Equal(t, "rapid-betting", warnings[0].ID)
	assert.Equal(t, models.SeverityHigh, warnings[0].Severity)
	assert.Contains(t, warnings[0].Description, "5 of 5 consecutive bets")
}

func TestDetectPatterns_HighRiskBetting(t *testing.T) {
	tests := []struct {
		name     string
		risks    []int
		expected models.Severity
	}{
		{"mean above 70", []int{75, 75, 75, 75, 75}, models.SeverityHigh},
		{"mean above 60", []int{65, 65, 65, 65, 65}, models.SeverityMedium},
		{"mean above 50", []int{55, 55, 55, 55, 55}, models.SeverityLow},
		{"many risky bets with low mean", []int{80, 80, 80, 10, 10, 10}, models.SeverityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newHistory(1000)
			for i, risk := range tt.risks {
				if i%2 == 0 {
					b.win(10, risk)
				} else {
					b.loss(10, risk)
				}
			}

			w, ok := findWarning(DetectPatterns(b.build()), "high-risk-betting")
			require.True(t, ok)
			assert.Equal(t, tt.expected, w.Severity)
		})
	}

	t.Run("below both thresholds", func(t *testing.T) {
		history := newHistory(1000).
			win(10, 40).loss(10, 40).win(10, 70).loss(10, 40).win(10, 40).
			build()
		_, ok := findWarning(DetectPatterns(history), "high-risk-betting")
		assert.False(t, ok)
	})
}

func TestDetectPatterns_LargeStakes(t *testing.T) {
	history := newHistory(1000).
		win(300, 20).loss(300, 20).win(300, 20).loss(300, 20).win(300, 20).
		build()

	w, ok := findWarning(DetectPatterns(history), "large-stakes")
	require.True(t, ok)
	assert.Equal(t, models.SeverityHigh, w.Severity)
}

func TestDetectPatterns_PostWinOverconfidence(t *testing.T) {
	history := newHistory(1000).
		win(10, 20).win(10, 30).win(10, 40).win(10, 55).loss(10, 80).loss(10, 80).
		build()

	w, ok := findWarning(DetectPatterns(history), "post-win-overconfidence")
	require.True(t, ok)
	assert.Equal(t, models.SeverityHigh, w.Severity)
	assert.Contains(t, w.Description, "4 of 4 wins")
}

func TestDetectPatterns_DoesNotMutateHistory(t *testing.T) {
	history := newHistory(1000).
		loss(10, 30).loss(20, 30).loss(40, 30).loss(80, 30).win(160, 30).
		build()
	before := make([]models.BetRecord, len(history))
	for i, r := range history {
		before[i] = *r
	}

	DetectPatterns(history)

	for i, r := range history {
		assert.Equal(t, before[i], *r)
	}
}

func TestDetectMartingale_GrowthBandEdges(t *testing.T) {
	tests := []struct {
		name     string
		next     float64
		detected bool
	}{
		{"just below band", 139, false},
		{"lower edge", 140, true},
		{"exact double", 200, true},
		{"upper edge", 260, true},
		{"just above band", 261, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history := newHistory(5000).loss(100, 20).loss(tt.next, 20).build()

			_, ok := detectMartingale(history)
			assert.Equal(t, tt.detected, ok)
		})
	}
}

func TestDetectLossChasing_IncreaseEdge(t *testing.T) {
	tests := []struct {
		name     string
		next     float64
		detected bool
	}{
		{"flat stake", 100, false},
		{"just below 30 percent", 129, false},
		{"exactly 30 percent", 130, true},
		{"doubled", 200, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history := newHistory(5000).loss(100, 20).loss(tt.next, 20).build()

			_, ok := detectLossChasing(history)
			assert.Equal(t, tt.detected, ok)
		})
	}
}

func TestDetectLossChasing_IgnoresRaisesAfterWins(t *testing.T) {
	history := newHistory(5000).win(100, 20).loss(200, 20).build()

	_, ok := detectLossChasing(history)
	assert.False(t, ok)
}
