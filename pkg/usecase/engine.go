package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/prism-brain/prism/pkg/domain/interfaces"
	"github.com/prism-brain/prism/pkg/domain/model"
	"github.com/prism-brain/prism/pkg/domain/types"
)

// DefaultNotifyThreshold is the probability swing (in points) that triggers
// a notification when no threshold is configured.
const DefaultNotifyThreshold = 5.0

type probabilityEngine struct {
	repo            interfaces.Repository
	collectors      []interfaces.Collector
	analyst         interfaces.SignalAnalyst
	notifier        interfaces.Notifier
	archiver        interfaces.Archiver
	notifyThreshold float64
}

// EngineOption configures the probability engine
type EngineOption func(*probabilityEngine)

// WithAnalyst sets the signal triage analyst for unmapped signals
func WithAnalyst(a interfaces.SignalAnalyst) EngineOption {
	return func(e *probabilityEngine) { e.analyst = a }
}

// WithNotifier sets the notification channel for notable swings
func WithNotifier(n interfaces.Notifier) EngineOption {
	return func(e *probabilityEngine) { e.notifier = n }
}

// WithArchiver sets the archive destination for collected signal batches
func WithArchiver(a interfaces.Archiver) EngineOption {
	return func(e *probabilityEngine) { e.archiver = a }
}

// WithNotifyThreshold overrides the probability swing threshold (points)
func WithNotifyThreshold(points float64) EngineOption {
	return func(e *probabilityEngine) { e.notifyThreshold = points }
}

// NewEngine creates the probability update engine
func NewEngine(repo interfaces.Repository, collectors []interfaces.Collector, opts ...EngineOption) interfaces.ProbabilityEngine {
	engine := &probabilityEngine{
		repo:            repo,
		collectors:      collectors,
		notifyThreshold: DefaultNotifyThreshold,
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// UpdateAll collects signals from every source and applies them to the
// affected risks. Each risk's live probability is recomputed from its
// baseline with the multiplicative model, clamped to 0-100, and every
// change is written as an audit record. A failing collector is logged and
// skipped; the run proceeds with the remaining sources.
func (e *probabilityEngine) UpdateAll(ctx context.Context) (*model.UpdateRunResult, error) {
	logger := ctxlog.From(ctx)
	started := time.Now()
	defer func() {
		metricUpdateRunDuration.Observe(time.Since(started).Seconds())
	}()

	signals, sourcesChecked := e.collect(ctx)

	if len(signals) > 0 {
		if err := e.repo.AppendSignals(ctx, signals); err != nil {
			return nil, goerr.Wrap(err, "failed to store collected signals")
		}
		if e.archiver != nil {
			key := fmt.Sprintf("signals/%s.json", started.UTC().Format("2006-01-02T15-04-05Z"))
			if err := e.archiver.Archive(ctx, key, signals); err != nil {
				logger.Warn("Failed to archive signal batch", "error", err, "key", key)
			}
		}
	}

	byRisk := e.groupByRisk(ctx, signals)

	var reports []model.RiskUpdateReport
	for riskID, riskSignals := range byRisk {
		report, err := e.applyToRisk(ctx, riskID, riskSignals, sourcesChecked)
		if err != nil {
			if types.IsNotFound(err) {
				logger.Warn("Signal references unknown risk", "risk_id", riskID)
				continue
			}
			return nil, goerr.Wrap(err, "failed to apply signals to risk", goerr.V("risk_id", riskID))
		}
		reports = append(reports, *report)
	}

	logger.Info("Probability update run completed",
		"signals_collected", len(signals),
		"risks_updated", len(reports),
		"duration_ms", time.Since(started).Milliseconds(),
	)

	return &model.UpdateRunResult{
		Timestamp:        started,
		SignalsCollected: len(signals),
		RisksUpdated:     len(reports),
		SourcesChecked:   sourcesChecked,
		Updates:          reports,
	}, nil
}

func (e *probabilityEngine) collect(ctx context.Context) ([]model.Signal, []string) {
	logger := ctxlog.From(ctx)

	var signals []model.Signal
	sources := make([]string, 0, len(e.collectors))
	for _, collector := range e.collectors {
		sources = append(sources, collector.Name())

		collected, err := collector.Collect(ctx)
		if err != nil {
			metricCollectorFailures.WithLabelValues(collector.Name()).Inc()
			logger.Warn("Collector failed, skipping source",
				"source", collector.Name(),
				"error", err,
			)
			continue
		}

		for i := range collected {
			collected[i].Normalize()
		}
		metricSignalsCollected.WithLabelValues(collector.Name()).Add(float64(len(collected)))
		signals = append(signals, collected...)
	}
	return signals, sources
}

// groupByRisk indexes signals by affected risk. Signals without a risk
// mapping are handed to the analyst when one is configured.
func (e *probabilityEngine) groupByRisk(ctx context.Context, signals []model.Signal) map[types.RiskID][]model.Signal {
	logger := ctxlog.From(ctx)

	byRisk := make(map[types.RiskID][]model.Signal)
	for _, signal := range signals {
		riskIDs := signal.RiskIDs
		if len(riskIDs) == 0 && e.analyst != nil {
			triage, err := e.analyst.Triage(ctx, &signal)
			if err != nil {
				logger.Warn("Signal triage failed", "error", err, "source", signal.Source)
				continue
			}
			if !triage.Relevant {
				continue
			}
			riskIDs = triage.RiskIDs
			if triage.Severity != "" {
				signal.Severity = triage.Severity
				signal.Multiplier = 0
				signal.Normalize()
			}
		}

		for _, riskID := range riskIDs {
			byRisk[riskID] = append(byRisk[riskID], signal)
		}
	}
	return byRisk
}

func (e *probabilityEngine) applyToRisk(ctx context.Context, riskID types.RiskID, signals []model.Signal, sourcesChecked []string) (*model.RiskUpdateReport, error) {
	logger := ctxlog.From(ctx)

	risk, err := e.repo.GetRisk(ctx, riskID)
	if err != nil {
		return nil, err
	}

	before := risk.ProbabilityLive

	after := risk.ProbabilityBaseline
	for _, signal := range signals {
		after *= signal.Multiplier
	}
	after = model.ClampProbability(after)

	update := &model.ProbabilityUpdate{
		ID:                 types.UpdateID(uuid.NewString()),
		RiskID:             riskID,
		Timestamp:          time.Now(),
		ProbabilityBefore:  before,
		ProbabilityAfter:   after,
		UpdateReason:       updateReason(signals),
		Signals:            signals,
		DataSourcesChecked: sourcesChecked,
	}

	risk.ProbabilityLive = after
	risk.LastUpdated = update.Timestamp
	risk.UpdateCount++

	if err := e.repo.SaveRisk(ctx, risk); err != nil {
		return nil, goerr.Wrap(err, "failed to save risk")
	}
	if err := e.repo.AppendUpdate(ctx, update); err != nil {
		return nil, goerr.Wrap(err, "failed to store audit record")
	}
	metricUpdatesApplied.Inc()

	if e.shouldNotify(update, signals) && e.notifier != nil {
		if err := e.notifier.NotifyUpdate(ctx, risk, update); err != nil {
			logger.Warn("Failed to send update notification", "error", err, "risk_id", riskID)
		}
	}

	logger.Debug("Applied probability update",
		"risk_id", riskID,
		"before", before,
		"after", after,
		"signals", len(signals),
	)

	return &model.RiskUpdateReport{
		RiskID:            riskID,
		RiskName:          risk.Name,
		ProbabilityBefore: before,
		ProbabilityAfter:  after,
		Change:            after - before,
		SignalsCount:      len(signals),
	}, nil
}

func (e *probabilityEngine) shouldNotify(update *model.ProbabilityUpdate, signals []model.Signal) bool {
	if math.Abs(update.Change()) >= e.notifyThreshold {
		return true
	}
	for _, signal := range signals {
		if signal.Severity == model.SeverityCritical {
			return true
		}
	}
	return false
}

func updateReason(signals []model.Signal) string {
	descriptions := make([]string, 0, len(signals))
	for _, s := range signals {
		descriptions = append(descriptions, fmt.Sprintf("%s: %s", s.Source, s.Description))
	}
	return fmt.Sprintf("Updated based on %d signal(s): %s",
		len(signals), strings.Join(descriptions, "; "))
}
