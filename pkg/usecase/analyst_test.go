package usecase_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/mock"
	"github.com/m-mizutani/gt"

	"github.com/prism-brain/prism/pkg/domain/model"
	"github.com/prism-brain/prism/pkg/domain/types"
	"github.com/prism-brain/prism/pkg/usecase"
)

func mockLLM(t *testing.T, response any, capture *[]gollem.Input) *mock.LLMClientMock {
	t.Helper()
	responseJSON, err := json.Marshal(response)
	gt.NoError(t, err)

	return &mock.LLMClientMock{
		NewSessionFunc: func(ctx context.Context, opts ...gollem.SessionOption) (gollem.Session, error) {
			return &mock.SessionMock{
				GenerateContentFunc: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
					if capture != nil {
						*capture = input
					}
					return &gollem.Response{Texts: []string{string(responseJSON)}}, nil
				},
			}, nil
		},
	}
}

func TestAnalystTriage(t *testing.T) {
	ctx := context.Background()

	var captured []gollem.Input
	llm := mockLLM(t, model.SignalTriage{
		Relevant:  true,
		RiskIDs:   []types.RiskID{"S1.1"},
		Severity:  model.SeverityMedium,
		Rationale: "Tariff escalation directly matches the trade war scenario",
	}, &captured)

	analyst, err := usecase.NewAnalyst(llm)
	gt.NoError(t, err)

	triage, err := analyst.Triage(ctx, &model.Signal{
		Source:      "Google News",
		SignalType:  model.SignalTypeMention,
		Description: "US threatens 60% tariffs on Chinese imports",
		Timestamp:   time.Now(),
	})
	gt.NoError(t, err)
	gt.V(t, triage).NotNil()
	gt.Equal(t, triage.Relevant, true)
	gt.Equal(t, triage.RiskIDs, []types.RiskID{"S1.1"})
	gt.Equal(t, triage.Severity, model.SeverityMedium)
	gt.V(t, len(captured)).NotEqual(0)
}

func TestAnalystTriageIrrelevant(t *testing.T) {
	ctx := context.Background()

	llm := mockLLM(t, model.SignalTriage{
		Relevant: false,
		RiskIDs:  []types.RiskID{"P1.1"}, // must be discarded for irrelevant signals
	}, nil)

	analyst, err := usecase.NewAnalyst(llm)
	gt.NoError(t, err)

	triage, err := analyst.Triage(ctx, &model.Signal{
		Source:      "Google News",
		Description: "Local sports team wins championship",
		Timestamp:   time.Now(),
	})
	gt.NoError(t, err)
	gt.Equal(t, triage.Relevant, false)
	gt.Equal(t, len(triage.RiskIDs), 0)
}

func TestAnalystTriageCapsRiskIDs(t *testing.T) {
	ctx := context.Background()

	llm := mockLLM(t, model.SignalTriage{
		Relevant: true,
		RiskIDs:  []types.RiskID{"P1.1", "P1.2", "P2.1", "P3.1", "S1.1"},
		Severity: model.SeverityHigh,
	}, nil)

	analyst, err := usecase.NewAnalyst(llm)
	gt.NoError(t, err)

	triage, err := analyst.Triage(ctx, &model.Signal{
		Source:      "GDELT",
		Description: "Broad energy crisis coverage",
		Timestamp:   time.Now(),
	})
	gt.NoError(t, err)
	gt.Equal(t, len(triage.RiskIDs), 3)
}

func TestAnalystTriageInvalidResponse(t *testing.T) {
	ctx := context.Background()

	llm := &mock.LLMClientMock{
		NewSessionFunc: func(ctx context.Context, opts ...gollem.SessionOption) (gollem.Session, error) {
			return &mock.SessionMock{
				GenerateContentFunc: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
					return &gollem.Response{Texts: []string{"not json"}}, nil
				},
			}, nil
		},
	}

	analyst, err := usecase.NewAnalyst(llm)
	gt.NoError(t, err)

	_, err = analyst.Triage(ctx, &model.Signal{Source: "GDELT", Timestamp: time.Now()})
	gt.Error(t, err)
}

func TestAnalystTriageSessionError(t *testing.T) {
	ctx := context.Background()

	llm := &mock.LLMClientMock{
		NewSessionFunc: func(ctx context.Context, opts ...gollem.SessionOption) (gollem.Session, error) {
			return nil, goerr.New("session unavailable")
		},
	}

	analyst, err := usecase.NewAnalyst(llm)
	gt.NoError(t, err)

	_, err = analyst.Triage(ctx, &model.Signal{Source: "CISA", Timestamp: time.Now()})
	gt.Error(t, err)
}
