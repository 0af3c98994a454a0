package viral

import (
	"testing"
	"time"

	"github.com/openclaw/dramawatch/internal/domain"
	"github.com/stretchr/testify/assert"
)

var testConfig = Config{
	ReachThreshold:     70000,
	SpikeRatio:         0.5,
	ReachPerEngagement: 30,
	ReachBase:          1000,
}

func sampleAt(t time.Time, reach int) *domain.MetricsSample {
	return &domain.MetricsSample{CapturedAt: t, EstimatedReach: reach}
}

func TestEstimateReach(t *testing.T) {
	tests := []struct {
		name   string
		counts domain.EngagementCounts
		want   int
	}{
		{"no engagement", domain.EngagementCounts{}, 1000},
		{"likes only", domain.EngagementCounts{Likes: 100}, 4000},
		{"likes and retweets", domain.EngagementCounts{Likes: 100, Retweets: 50}, 5500},
		{"replies do not count", domain.EngagementCounts{Replies: 500}, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, testConfig.EstimateReach(tt.counts))
		})
	}
}

func TestVelocity(t *testing.T) {
	now := time.Now()

	t.Run("no samples", func(t *testing.T) {
		assert.Zero(t, Velocity(nil))
	})

	t.Run("single sample", func(t *testing.T) {
		assert.Zero(t, Velocity([]*domain.MetricsSample{sampleAt(now, 10000)}))
	})

	t.Run("ten minutes apart", func(t *testing.T) {
		samples := []*domain.MetricsSample{
			sampleAt(now, 20000),
			sampleAt(now.Add(-10*time.Minute), 10000),
		}
		assert.InDelta(t, 1000.0, Velocity(samples), 0.001)
	})

	t.Run("identical timestamps", func(t *testing.T) {
		samples := []*domain.MetricsSample{
			sampleAt(now, 20000),
			sampleAt(now, 10000),
		}
		assert.Zero(t, Velocity(samples))
	})

	t.Run("clock moved backwards", func(t *testing.T) {
		samples := []*domain.MetricsSample{
			sampleAt(now, 20000),
			sampleAt(now.Add(5*time.Minute), 10000),
		}
		assert.Zero(t, Velocity(samples))
	})

	t.Run("shrinking reach yields negative rate", func(t *testing.T) {
		samples := []*domain.MetricsSample{
			sampleAt(now, 5000),
			sampleAt(now.Add(-5*time.Minute), 10000),
		}
		assert.InDelta(t, -1000.0, Velocity(samples), 0.001)
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name          string
		latestReach   int
		previousReach int
		velocity      float64
		wantViral     bool
		wantVelocity  float64
	}{
		{"below everything", 20000, 10000, 1000, false, 0},
		{"absolute threshold", 80000, 0, 0, true, 0},
		{"threshold exact boundary", 70000, 0, 0, true, 0},
		{"just under threshold", 69999, 0, 0, false, 0},
		{"velocity spike", 30000, 10000, 6000, true, 6000},
		{"spike boundary not exceeded", 30000, 10000, 5000, false, 0},
		{"both rules keep velocity", 90000, 10000, 9000, true, 9000},
		{"threshold only zeroes velocity", 90000, 100000, 2000, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := testConfig.Classify(tt.latestReach, tt.previousReach, tt.velocity)
			assert.Equal(t, tt.wantViral, verdict.Viral)
			assert.Equal(t, tt.wantVelocity, verdict.Velocity)
		})
	}
}

// Matches the worked example: two samples ten minutes apart growing from
// 10k to 20k reach is 1000/min, which neither rule fires on.
func TestClassifySlowGrowthNotViral(t *testing.T) {
	now := time.Now()
	samples := []*domain.MetricsSample{
		sampleAt(now, 20000),
		sampleAt(now.Add(-10*time.Minute), 10000),
	}

	velocity := Velocity(samples)
	assert.InDelta(t, 1000.0, velocity, 0.001)

	verdict := testConfig.Classify(20000, 10000, velocity)
	assert.False(t, verdict.Viral)
}
