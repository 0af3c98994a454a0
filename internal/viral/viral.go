// Package viral holds the pure detection rules: reach estimation, velocity
// between consecutive samples, and the viral classification itself. Nothing
// here touches storage.
package viral

import (
	"github.com/openclaw/dramawatch/internal/domain"
	"github.com/openclaw/dramawatch/pkg/config"
)

type Config struct {
	// ReachThreshold classifies a post viral on absolute estimated reach.
	ReachThreshold int
	// SpikeRatio classifies on growth rate: velocity above previous reach
	// multiplied by this ratio.
	SpikeRatio float64
	// ReachPerEngagement and ReachBase parameterize the reach heuristic
	// (likes + retweets) * ReachPerEngagement + ReachBase. The constants are
	// an approximation standing in for real impression counts.
	ReachPerEngagement int
	ReachBase          int
}

func NewConfig(cfg *config.Config) Config {
	return Config{
		ReachThreshold:     cfg.Viral.ReachThreshold,
		SpikeRatio:         cfg.Viral.SpikeRatio,
		ReachPerEngagement: cfg.Viral.ReachPerEngagement,
		ReachBase:          cfg.Viral.ReachBase,
	}
}

// EstimateReach derives an estimated reach figure from engagement counts.
// Callers with a precise impressions count should use that instead.
func (c Config) EstimateReach(counts domain.EngagementCounts) int {
	return (counts.Likes+counts.Retweets)*c.ReachPerEngagement + c.ReachBase
}

// Velocity is the estimated reach gained per minute between the two most
// recent samples of a post, ordered most recent first. Fewer than two samples
// or a non-positive time delta yields 0, never a negative or undefined rate.
func Velocity(samples []*domain.MetricsSample) float64 {
	if len(samples) < 2 {
		return 0
	}

	latest, previous := samples[0], samples[1]
	minutes := latest.CapturedAt.Sub(previous.CapturedAt).Minutes()
	if minutes <= 0 {
		return 0
	}

	return float64(latest.EstimatedReach-previous.EstimatedReach) / minutes
}

// Verdict is the classifier's result. Velocity carries the triggering rate
// when the spike rule fired, and 0 when only the absolute threshold did.
type Verdict struct {
	Viral    bool
	Velocity float64
}

// Classify evaluates the absolute-threshold and velocity-spike rules and ORs
// them.
func (c Config) Classify(latestReach, previousReach int, velocity float64) Verdict {
	spike := velocity > float64(previousReach)*c.SpikeRatio
	threshold := latestReach >= c.ReachThreshold

	switch {
	case spike:
		return Verdict{Viral: true, Velocity: velocity}
	case threshold:
		return Verdict{Viral: true, Velocity: 0}
	default:
		return Verdict{}
	}
}
