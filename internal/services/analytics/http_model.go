package analytics

import (
	"context"
	"fmt"

	"SwingRank/internal/domain/models"
	domsvc "SwingRank/internal/domain/service"
)

// HTTPProbabilityModel asks a model service for the win probability.
type HTTPProbabilityModel struct {
	base     *HTTPServiceBase
	attempts int
}

func NewHTTPProbabilityModel(base *HTTPServiceBase) *HTTPProbabilityModel {
	return &HTTPProbabilityModel{base: base, attempts: 3}
}

type predictReq struct {
	Features []float64 `json:"features"`
}

type predictResp struct {
	Probability *float64 `json:"probability"`
}

func (m *HTTPProbabilityModel) Predict(ctx context.Context, features models.FeatureVector) (float64, error) {
	var pr predictResp
	if err := m.base.PostJSONWithRetry(ctx, "/model/predict", predictReq{Features: features.Slice()}, &pr, m.attempts); err != nil {
		return 0, fmt.Errorf("post predict: %w", err)
	}
	if pr.Probability == nil {
		return 0, fmt.Errorf("%w: response has no probability", domsvc.ErrFeatureContract)
	}
	p := *pr.Probability
	if !(p >= 0 && p <= 1) {
		return 0, fmt.Errorf("%w: probability %v outside [0,1]", domsvc.ErrFeatureContract, p)
	}
	return p, nil
}

// Check performs one prediction on a zero vector so a dead service fails the
// process at start instead of every symbol at run time.
func (m *HTTPProbabilityModel) Check(ctx context.Context) error {
	if _, err := m.Predict(ctx, models.FeatureVector{}); err != nil {
		return fmt.Errorf("%w: %w", domsvc.ErrModelUnavailable, err)
	}
	return nil
}

var _ domsvc.ProbabilityModel = (*HTTPProbabilityModel)(nil)
