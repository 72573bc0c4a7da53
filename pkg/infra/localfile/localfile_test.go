package localfile_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/prism-brain/prism/pkg/domain/model"
	"github.com/prism-brain/prism/pkg/domain/types"
	"github.com/prism-brain/prism/pkg/infra/localfile"
)

func TestPersistenceAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	repo, err := localfile.New(dir)
	gt.NoError(t, err)

	risk := &model.Risk{
		ID:                  "D1.1",
		Name:                "Ransomware targeting ICS/SCADA systems",
		Domain:              model.DomainDigital,
		ProbabilityBaseline: 55,
		ProbabilityLive:     63.25,
		ConfidenceLevel:     "High",
		LastUpdated:         time.Now().UTC(),
		UpdateCount:         1,
	}
	gt.NoError(t, repo.SaveRisk(ctx, risk))
	gt.NoError(t, repo.AppendUpdate(ctx, &model.ProbabilityUpdate{
		ID:                "u-1",
		RiskID:            "D1.1",
		Timestamp:         time.Now().UTC(),
		ProbabilityBefore: 55,
		ProbabilityAfter:  63.25,
		UpdateReason:      "Updated based on 1 signal(s): CISA: alert",
	}))
	gt.NoError(t, repo.AppendSignals(ctx, []model.Signal{
		{Source: "CISA", Severity: model.SeverityHigh, Multiplier: 1.15,
			Timestamp: time.Now().UTC(), RiskIDs: []types.RiskID{"D1.1"}},
	}))
	gt.NoError(t, repo.Close())

	// Data files exist with the expected names
	for _, name := range []string{"risks_live.json", "probability_updates.json", "signals_history.json"} {
		_, err := os.Stat(filepath.Join(dir, name))
		gt.NoError(t, err)
	}

	reopened, err := localfile.New(dir)
	gt.NoError(t, err)

	got, err := reopened.GetRisk(ctx, "D1.1")
	gt.NoError(t, err)
	gt.Equal(t, got.ProbabilityLive, 63.25)
	gt.Equal(t, got.UpdateCount, 1)

	update, err := reopened.GetUpdate(ctx, "u-1")
	gt.NoError(t, err)
	gt.Equal(t, update.ProbabilityAfter, 63.25)

	n, err := reopened.CountSignals(ctx)
	gt.NoError(t, err)
	gt.Equal(t, n, 1)
}

func TestNotFound(t *testing.T) {
	ctx := context.Background()
	repo, err := localfile.New(t.TempDir())
	gt.NoError(t, err)

	_, err = repo.GetRisk(ctx, "P9.9")
	gt.Error(t, err)
	gt.True(t, types.IsNotFound(err))

	_, err = repo.GetUpdate(ctx, "nope")
	gt.Error(t, err)
	gt.True(t, types.IsNotFound(err))
}

func TestSignalHistoryCap(t *testing.T) {
	ctx := context.Background()
	repo, err := localfile.New(t.TempDir())
	gt.NoError(t, err)

	now := time.Now().UTC()
	batch := make([]model.Signal, 1100)
	for i := range batch {
		batch[i] = model.Signal{
			Source:      "GDELT",
			Description: fmt.Sprintf("signal %d", i),
			Timestamp:   now,
		}
	}
	gt.NoError(t, repo.AppendSignals(ctx, batch))

	n, err := repo.CountSignals(ctx)
	gt.NoError(t, err)
	gt.Equal(t, n, 1000)

	// Oldest entries were dropped, newest kept
	recent, err := repo.RecentSignals(ctx, now.Add(-time.Minute))
	gt.NoError(t, err)
	gt.Equal(t, recent[len(recent)-1].Description, "signal 1099")
	gt.Equal(t, recent[0].Description, "signal 100")
}

func TestListUpdatesOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	repo, err := localfile.New(t.TempDir())
	gt.NoError(t, err)

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		gt.NoError(t, repo.AppendUpdate(ctx, &model.ProbabilityUpdate{
			ID:        types.UpdateID(fmt.Sprintf("u-%d", i)),
			RiskID:    "S1.1",
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}))
	}

	history, err := repo.ListUpdates(ctx, "S1.1", 3)
	gt.NoError(t, err)
	gt.Equal(t, len(history), 3)
	gt.Equal(t, history[0].ID, types.UpdateID("u-4"))
	gt.Equal(t, history[2].ID, types.UpdateID("u-2"))
}
