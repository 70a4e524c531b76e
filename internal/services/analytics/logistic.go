package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"SwingRank/internal/domain/models"
	domsvc "SwingRank/internal/domain/service"
)

// LogisticModel is sigmoid(w.x + b) over the fixed feature vector.
type LogisticModel struct {
	Weights models.FeatureVector
	Bias    float64
}

type logisticFile struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

// LoadLogisticModel reads {"weights":[...8], "bias": b}. Any failure is
// ErrModelUnavailable; a wrong weight count is also ErrFeatureContract.
func LoadLogisticModel(path string) (*LogisticModel, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domsvc.ErrModelUnavailable, path, err)
	}
	var f logisticFile
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", domsvc.ErrModelUnavailable, path, err)
	}
	if len(f.Weights) != models.FeatureVectorLen {
		return nil, fmt.Errorf("%w: %w: model has %d weights, want %d",
			domsvc.ErrModelUnavailable, domsvc.ErrFeatureContract, len(f.Weights), models.FeatureVectorLen)
	}
	m := &LogisticModel{Bias: f.Bias}
	copy(m.Weights[:], f.Weights)
	return m, nil
}

func (m *LogisticModel) Predict(_ context.Context, x models.FeatureVector) (float64, error) {
	z := m.Bias
	for i := range x {
		if math.IsNaN(x[i]) || math.IsInf(x[i], 0) {
			return 0, fmt.Errorf("%w: feature %d is %v", domsvc.ErrFeatureContract, i, x[i])
		}
		z += m.Weights[i] * x[i]
	}
	return 1 / (1 + math.Exp(-z)), nil
}

var _ domsvc.ProbabilityModel = (*LogisticModel)(nil)
