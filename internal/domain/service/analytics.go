package service

import (
	"context"
	"errors"

	"SwingRank/internal/domain/models"
)

var (
	// ErrFeatureContract marks a feature vector or model output that breaks the
	// model's training contract. It aborts the whole run.
	ErrFeatureContract = errors.New("feature contract violation")
	// ErrModelUnavailable is returned when the model cannot be loaded at start.
	ErrModelUnavailable = errors.New("probability model unavailable")
)

// ProbabilityModel maps a feature vector to a win probability in [0,1].
// It is loaded once per process and treated as a pure function.
type ProbabilityModel interface {
	Predict(ctx context.Context, features models.FeatureVector) (float64, error)
}

// BlendInput carries everything the confidence blender may look at.
type BlendInput struct {
	MLProbability  float64
	RuleScoreNorm  float64
	Pattern        models.Pattern
	VolumeSupport  int
	Rejection      bool
	FinancialScore float64
}

// ConfidenceBlender folds probability and rule signals into one value in [0,1].
type ConfidenceBlender interface {
	Confidence(in BlendInput) float64
}

// LiquidityFilter decides whether a series trades enough to be considered.
type LiquidityFilter interface {
	Passes(s *models.Series) bool
}

// Notifier delivers a finished run to people.
type Notifier interface {
	Notify(ctx context.Context, run *models.RankingRun) error
}
