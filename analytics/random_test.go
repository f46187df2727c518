package analytics

import (
	"math"
	"sync"
	"testing"

	"betsim/models"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/stat/distuv"
)

// Settlement draws win iff Float64() < p, so the observed win rate of each
// catalog event must track its declared probability.
func TestRandomSource_WinRateMatchesProbability(t *testing.T) {
	const trials = 100000
	critical := distuv.ChiSquared{K: 1}.Quantile(0.99999)

	for _, event := range models.DefaultEvents() {
		t.Run(event.ID, func(t *testing.T) {
			src := NewRandomSource(42)
			wins := 0
			for i := 0; i < trials; i++ {
				if src.Float64() < event.WinProbability {
					wins++
				}
			}

			p := event.WinProbability
			actual := float64(wins) / trials
			assert.InDelta(t, p, actual, 0.02)

			expectedWins := trials * p
			expectedLosses := trials * (1 - p)
			chiSquared := math.Pow(float64(wins)-expectedWins, 2)/expectedWins +
				math.Pow(float64(trials-wins)-expectedLosses, 2)/expectedLosses
			assert.Less(t, chiSquared, critical)
		})
	}
}

func TestRandomSource_ConcurrentUse(t *testing.T) {
	src := NewRandomSource(7)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				v := src.Float64()
				assert.True(t, v >= 0 && v < 1)
			}
		}()
	}
	wg.Wait()
}

func TestUniform(t *testing.T) {
	assert.Equal(t, 0.8, uniform(fixedSource(0), 0.8, 1.2))
	assert.InDelta(t, 1.0, uniform(fixedSource(0.5), 0.8, 1.2), 1e-12)
}
