package analytics

import (
	"SwingRank/internal/domain/models"
	domsvc "SwingRank/internal/domain/service"
	"SwingRank/pkg/util"
)

var patternBonus = map[models.Pattern]float64{
	models.PatternTightBase:            0.05,
	models.PatternBreakoutSetup:        0.05,
	models.PatternNear52WHigh:          0.03,
	models.PatternPullbackContinuation: 0.02,
	models.PatternMomentum:             0,
}

// DefaultBlender mixes probability with rule signals linearly and clamps to [0,1].
type DefaultBlender struct{}

func NewDefaultBlender() DefaultBlender { return DefaultBlender{} }

func (DefaultBlender) Confidence(in domsvc.BlendInput) float64 {
	c := 0.6*in.MLProbability + 0.3*in.RuleScoreNorm + patternBonus[in.Pattern]
	c += 0.05 * float64(in.VolumeSupport)
	if in.Rejection {
		c -= 0.10
	}
	c += in.FinancialScore
	return util.Round(util.Clamp(c, 0, 1), 3)
}

var _ domsvc.ConfidenceBlender = DefaultBlender{}
