package localfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/prism-brain/prism/pkg/domain/interfaces"
	"github.com/prism-brain/prism/pkg/domain/model"
	"github.com/prism-brain/prism/pkg/domain/types"
)

const (
	risksFile   = "risks_live.json"
	updatesFile = "probability_updates.json"
	signalsFile = "signals_history.json"

	// Signal history is capped to keep the file from growing unbounded.
	maxSignals = 1000
)

// Repository persists risks, audit records and signals as JSON files under
// a data directory. State is held in memory and flushed on every write.
type Repository struct {
	mu      sync.RWMutex
	dataDir string
	risks   map[types.RiskID]*model.Risk
	updates []*model.ProbabilityUpdate
	signals []model.Signal
}

type risksDocument struct {
	Risks     []*model.Risk `json:"risks"`
	LastSaved time.Time     `json:"last_saved"`
}

type updatesDocument struct {
	Updates      []*model.ProbabilityUpdate `json:"updates"`
	TotalUpdates int                        `json:"total_updates"`
	LastSaved    time.Time                  `json:"last_saved"`
}

type signalsDocument struct {
	Signals      []model.Signal `json:"signals"`
	TotalSignals int            `json:"total_signals"`
	LastSaved    time.Time      `json:"last_saved"`
}

// New opens (or initializes) a file-backed repository under dataDir
func New(dataDir string) (*Repository, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, goerr.Wrap(err, "failed to create data directory", goerr.V("dir", dataDir))
	}

	repo := &Repository{
		dataDir: dataDir,
		risks:   make(map[types.RiskID]*model.Risk),
	}
	if err := repo.load(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *Repository) load() error {
	var risksDoc risksDocument
	if err := readJSON(filepath.Join(r.dataDir, risksFile), &risksDoc); err != nil {
		return err
	}
	for _, risk := range risksDoc.Risks {
		r.risks[risk.ID] = risk
	}

	var updatesDoc updatesDocument
	if err := readJSON(filepath.Join(r.dataDir, updatesFile), &updatesDoc); err != nil {
		return err
	}
	r.updates = updatesDoc.Updates

	var signalsDoc signalsDocument
	if err := readJSON(filepath.Join(r.dataDir, signalsFile), &signalsDoc); err != nil {
		return err
	}
	r.signals = signalsDoc.Signals

	return nil
}

// readJSON loads a JSON file into v. A missing file is not an error; the
// document keeps its zero value.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return goerr.Wrap(err, "failed to read data file", goerr.V("path", path))
	}
	if err := json.Unmarshal(data, v); err != nil {
		return goerr.Wrap(err, "failed to parse data file", goerr.V("path", path))
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to marshal data file", goerr.V("path", path))
	}
	// Write to a temp file first so a crash mid-write cannot corrupt state.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return goerr.Wrap(err, "failed to write data file", goerr.V("path", tmp))
	}
	if err := os.Rename(tmp, path); err != nil {
		return goerr.Wrap(err, "failed to replace data file", goerr.V("path", path))
	}
	return nil
}

func (r *Repository) saveRisks() error {
	risks := make([]*model.Risk, 0, len(r.risks))
	for _, risk := range r.risks {
		risks = append(risks, risk)
	}
	sort.Slice(risks, func(i, j int) bool { return risks[i].ID < risks[j].ID })

	return writeJSON(filepath.Join(r.dataDir, risksFile), &risksDocument{
		Risks:     risks,
		LastSaved: time.Now(),
	})
}

func (r *Repository) saveUpdates() error {
	return writeJSON(filepath.Join(r.dataDir, updatesFile), &updatesDocument{
		Updates:      r.updates,
		TotalUpdates: len(r.updates),
		LastSaved:    time.Now(),
	})
}

func (r *Repository) saveSignals() error {
	if len(r.signals) > maxSignals {
		r.signals = r.signals[len(r.signals)-maxSignals:]
	}
	return writeJSON(filepath.Join(r.dataDir, signalsFile), &signalsDocument{
		Signals:      r.signals,
		TotalSignals: len(r.signals),
		LastSaved:    time.Now(),
	})
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

// SaveRisk inserts or replaces a risk and flushes the risks file
func (r *Repository) SaveRisk(ctx context.Context, risk *model.Risk) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *risk
	r.risks[risk.ID] = &clone
	return r.saveRisks()
}

// CountRisks returns the catalog size
func (r *Repository) CountRisks(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.risks), nil
}

// AppendUpdate stores an audit record and flushes the updates file
func (r *Repository) AppendUpdate(ctx context.Context, update *model.ProbabilityUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *update
	r.updates = append(r.updates, &clone)
	return r.saveUpdates()
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

// AppendSignals stores collected signals and flushes the signals file
func (r *Repository) AppendSignals(ctx context.Context, signals []model.Signal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.signals = append(r.signals, signals...)
	return r.saveSignals()
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

// Close is a no-op; state is flushed on every write
func (r *Repository) Close() error { return nil }

var _ interfaces.Repository = (*Repository)(nil)
