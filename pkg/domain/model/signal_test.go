package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/prism-brain/prism/pkg/domain/model"
)

func TestSignalNormalize(t *testing.T) {
	tests := []struct {
		name     string
		signal   model.Signal
		expected float64
	}{
		{
			name:     "empty multiplier uses severity default",
			signal:   model.Signal{Severity: model.SeverityHigh},
			expected: 1.15,
		},
		{
			name:     "critical default",
			signal:   model.Signal{Severity: model.SeverityCritical},
			expected: 1.25,
		},
		{
			name:     "explicit multiplier kept",
			signal:   model.Signal{Severity: model.SeverityLow, Multiplier: 1.4},
			expected: 1.4,
		},
		{
			name:     "multiplier above bound clamped",
			signal:   model.Signal{Severity: model.SeverityHigh, Multiplier: 4.5},
			expected: 3.0,
		},
		{
			name:     "multiplier below bound clamped",
			signal:   model.Signal{Severity: model.SeverityLow, Multiplier: 0.1},
			expected: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.signal.Normalize()
			gt.Equal(t, tt.signal.Multiplier, tt.expected)
		})
	}
}

func TestRiskChange(t *testing.T) {
	r := &model.Risk{ProbabilityBaseline: 40, ProbabilityLive: 50}
	gt.Equal(t, r.ChangeFromBaseline(), 10.0)
	gt.Equal(t, r.ChangePercent(), 25.0)

	zero := &model.Risk{ProbabilityBaseline: 0, ProbabilityLive: 5}
	gt.Equal(t, zero.ChangePercent(), 0.0)
}

func TestClampProbability(t *testing.T) {
	gt.Equal(t, model.ClampProbability(-3), 0.0)
	gt.Equal(t, model.ClampProbability(120), 100.0)
	gt.Equal(t, model.ClampProbability(55.5), 55.5)
}
