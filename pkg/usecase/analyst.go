package usecase

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"text/template"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/prism-brain/prism/pkg/domain/interfaces"
	"github.com/prism-brain/prism/pkg/domain/model"
)

//go:embed prompts/signal_triage_system.md
var triageSystemPrompt string

//go:embed prompts/signal_triage_user.md
var triageUserTemplate string

const maxTriageRisks = 3

type signalAnalyst struct {
	llmClient    gollem.LLMClient
	userTemplate *template.Template
}

// NewAnalyst creates a SignalAnalyst that maps unclassified signals onto
// catalog risks using an LLM
func NewAnalyst(llmClient gollem.LLMClient) (interfaces.SignalAnalyst, error) {
	tmpl, err := template.New("user").Parse(triageUserTemplate)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse triage prompt template")
	}

	return &signalAnalyst{
		llmClient:    llmClient,
		userTemplate: tmpl,
	}, nil
}

// Triage classifies a signal against the risk catalog
func (uc *signalAnalyst) Triage(ctx context.Context, signal *model.Signal) (*model.SignalTriage, error) {
	logger := ctxlog.From(ctx)

	var buf bytes.Buffer
	if err := uc.userTemplate.Execute(&buf, map[string]string{
		"Source":      signal.Source,
		"Type":        string(signal.SignalType),
		"Timestamp":   signal.Timestamp.Format("2006-01-02 15:04 MST"),
		"Description": signal.Description,
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to execute triage prompt template")
	}

	session, err := uc.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionSystemPrompt(triageSystemPrompt),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(buf.String()))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate triage response")
	}
	if len(resp.Texts) == 0 {
		return nil, goerr.New("no response from LLM")
	}

	var triage model.SignalTriage
	if err := json.Unmarshal([]byte(resp.Texts[0]), &triage); err != nil {
		return nil, goerr.Wrap(err, "failed to parse triage response",
			goerr.V("response", resp.Texts[0]))
	}

	if len(triage.RiskIDs) > maxTriageRisks {
		triage.RiskIDs = triage.RiskIDs[:maxTriageRisks]
	}
	if !triage.Relevant {
		triage.RiskIDs = nil
	}

	logger.Debug("Signal triage completed",
		"source", signal.Source,
		"relevant", triage.Relevant,
		"risk_ids", triage.RiskIDs,
		"severity", triage.Severity,
	)

	return &triage, nil
}
