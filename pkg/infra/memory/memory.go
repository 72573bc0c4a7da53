package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/prism-brain/prism/pkg/domain/interfaces"
	"github.com/prism-brain/prism/pkg/domain/model"
	"github.com/prism-brain/prism/pkg/domain/types"
)

// Repository is an in-memory store used for tests and local development
type Repository struct {
	mu      sync.RWMutex
	risks   map[types.RiskID]*model.Risk
	updates []*model.ProbabilityUpdate
	signals []model.Signal
}

// New creates an empty in-memory repository
func New() *Repository {
	return &Repository{
		risks: make(map[types.RiskID]*model.Risk),
	}
}

// GetRisk returns a single risk by ID
func (r *Repository) GetRisk(ctx context.Context, id types.RiskID) (*model.Risk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	risk, ok := r.risks[id]
	if !ok {
		return nil, goerr.New("risk not found",
			goerr.V("risk_id", id), goerr.T(types.TagNotFound))
	}
	clone := *risk
	return &clone, nil
}

// ListRisks returns all risks sorted by ID
func (r *Repository) ListRisks(ctx context.Context) ([]*model.Risk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Risk, 0, len(r.risks))
	for _, risk := range r.risks {
		clone := *risk
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SaveRisk inserts or replaces a risk
func (r *Repository) SaveRisk(ctx context.Context, risk *model.Risk) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *risk
	r.risks[risk.ID] = &clone
	return nil
}

// CountRisks returns the catalog size
func (r *Repository) CountRisks(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.risks), nil
}

// AppendUpdate stores an audit record
func (r *Repository) AppendUpdate(ctx context.Context, update *model.ProbabilityUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *update
	r.updates = append(r.updates, &clone)
	return nil
}

// GetUpdate returns a single audit record by ID
func (r *Repository) GetUpdate(ctx context.Context, id types.UpdateID) (*model.ProbabilityUpdate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.updates {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, goerr.New("update not found",
		goerr.V("update_id", id), goerr.T(types.TagNotFound))
}

// ListUpdates returns audit records for a risk, newest first
func (r *Repository) ListUpdates(ctx context.Context, riskID types.RiskID, limit int) ([]*model.ProbabilityUpdate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*model.ProbabilityUpdate
	for _, u := range r.updates {
		if u.RiskID == riskID {
			clone := *u
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CountUpdates returns the total number of audit records
func (r *Repository) CountUpdates(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.updates), nil
}

// AppendSignals stores collected signals
func (r *Repository) AppendSignals(ctx context.Context, signals []model.Signal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signals = append(r.signals, signals...)
	return nil
}

// RecentSignals returns signals observed at or after the cutoff
func (r *Repository) RecentSignals(ctx context.Context, cutoff time.Time) ([]model.Signal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.Signal
	for _, s := range r.signals {
		if !s.Timestamp.Before(cutoff) {
			out = append(out, s)
		}
	}
	return out, nil
}

// CountSignals returns the number of retained signals
func (r *Repository) CountSignals(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.signals), nil
}

// Close is a no-op for the in-memory store
func (r *Repository) Close() error { return nil }

var _ interfaces.Repository = (*Repository)(nil)
