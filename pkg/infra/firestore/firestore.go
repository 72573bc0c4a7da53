package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/prism-brain/prism/pkg/domain/interfaces"
	"github.com/prism-brain/prism/pkg/domain/model"
	"github.com/prism-brain/prism/pkg/domain/types"
)

const (
	risksCollection   = "prism_risks"
	updatesCollection = "prism_updates"
	signalsCollection = "prism_signals"
)

// Repository stores risks, audit records and signals in Firestore.
// The updates collection needs a composite index on (risk_id, timestamp desc).
type Repository struct {
	client *firestore.Client
}

// New creates a Firestore-backed repository
func New(ctx context.Context, projectID string, opts ...option.ClientOption) (*Repository, error) {
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Firestore client",
			goerr.V("project_id", projectID))
	}
	return &Repository{client: client}, nil
}

type riskDoc struct {
	ID                  string    `firestore:"id"`
	Name                string    `firestore:"name"`
	Domain              string    `firestore:"domain"`
	Description         string    `firestore:"description"`
	ProbabilityBaseline float64   `firestore:"probability_baseline"`
	ProbabilityLive     float64   `firestore:"probability_live"`
	ConfidenceLevel     string    `firestore:"confidence_level"`
	LastUpdated         time.Time `firestore:"last_updated"`
	Sources             []string  `firestore:"sources"`
	UpdateCount         int       `firestore:"update_count"`
}

func toRiskDoc(r *model.Risk) *riskDoc {
	return &riskDoc{
		ID:                  r.ID.String(),
		Name:                r.Name,
		Domain:              string(r.Domain),
		Description:         r.Description,
		ProbabilityBaseline: r.ProbabilityBaseline,
		ProbabilityLive:     r.ProbabilityLive,
		ConfidenceLevel:     r.ConfidenceLevel,
		LastUpdated:         r.LastUpdated,
		Sources:             r.Sources,
		UpdateCount:         r.UpdateCount,
	}
}

func (d *riskDoc) toModel() *model.Risk {
	return &model.Risk{
		ID:                  types.RiskID(d.ID),
		Name:                d.Name,
		Domain:              model.Domain(d.Domain),
		Description:         d.Description,
		ProbabilityBaseline: d.ProbabilityBaseline,
		ProbabilityLive:     d.ProbabilityLive,
		ConfidenceLevel:     d.ConfidenceLevel,
		LastUpdated:         d.LastUpdated,
		Sources:             d.Sources,
		UpdateCount:         d.UpdateCount,
	}
}

type signalDoc struct {
	Source      string    `firestore:"source"`
	SignalType  string    `firestore:"signal_type"`
	Severity    string    `firestore:"severity"`
	Multiplier  float64   `firestore:"multiplier"`
	Description string    `firestore:"description"`
	URL         string    `firestore:"url,omitempty"`
	Timestamp   time.Time `firestore:"timestamp"`
	RiskIDs     []string  `firestore:"risk_ids"`
}

func toSignalDoc(s *model.Signal) *signalDoc {
	riskIDs := make([]string, 0, len(s.RiskIDs))
	for _, id := range s.RiskIDs {
		riskIDs = append(riskIDs, id.String())
	}
	return &signalDoc{
		Source:      s.Source,
		SignalType:  string(s.SignalType),
		Severity:    string(s.Severity),
		Multiplier:  s.Multiplier,
		Description: s.Description,
		URL:         s.URL,
		Timestamp:   s.Timestamp,
		RiskIDs:     riskIDs,
	}
}

func (d *signalDoc) toModel() model.Signal {
	riskIDs := make([]types.RiskID, 0, len(d.RiskIDs))
	for _, id := range d.RiskIDs {
		riskIDs = append(riskIDs, types.RiskID(id))
	}
	return model.Signal{
		Source:      d.Source,
		SignalType:  model.SignalType(d.SignalType),
		Severity:    model.SignalSeverity(d.Severity),
		Multiplier:  d.Multiplier,
		Description: d.Description,
		URL:         d.URL,
		Timestamp:   d.Timestamp,
		RiskIDs:     riskIDs,
	}
}

type updateDoc struct {
	ID                 string      `firestore:"id"`
	RiskID             string      `firestore:"risk_id"`
	Timestamp          time.Time   `firestore:"timestamp"`
	ProbabilityBefore  float64     `firestore:"probability_before"`
	ProbabilityAfter   float64     `firestore:"probability_after"`
	UpdateReason       string      `firestore:"update_reason"`
	Signals            []signalDoc `firestore:"signals"`
	DataSourcesChecked []string    `firestore:"data_sources_checked"`
	ConfidenceImpact   string      `firestore:"confidence_impact,omitempty"`
}

func toUpdateDoc(u *model.ProbabilityUpdate) *updateDoc {
	signals := make([]signalDoc, 0, len(u.Signals))
	for i := range u.Signals {
		signals = append(signals, *toSignalDoc(&u.Signals[i]))
	}
	return &updateDoc{
		ID:                 u.ID.String(),
		RiskID:             u.RiskID.String(),
		Timestamp:          u.Timestamp,
		ProbabilityBefore:  u.ProbabilityBefore,
		ProbabilityAfter:   u.ProbabilityAfter,
		UpdateReason:       u.UpdateReason,
		Signals:            signals,
		DataSourcesChecked: u.DataSourcesChecked,
		ConfidenceImpact:   u.ConfidenceImpact,
	}
}

func (d *updateDoc) toModel() *model.ProbabilityUpdate {
	signals := make([]model.Signal, 0, len(d.Signals))
	for i := range d.Signals {
		signals = append(signals, d.Signals[i].toModel())
	}
	return &model.ProbabilityUpdate{
		ID:                 types.UpdateID(d.ID),
		RiskID:             types.RiskID(d.RiskID),
		Timestamp:          d.Timestamp,
		ProbabilityBefore:  d.ProbabilityBefore,
		ProbabilityAfter:   d.ProbabilityAfter,
		UpdateReason:       d.UpdateReason,
		Signals:            signals,
		DataSourcesChecked: d.DataSourcesChecked,
		ConfidenceImpact:   d.ConfidenceImpact,
	}
}

// GetRisk returns a single risk by ID
func (r *Repository) GetRisk(ctx context.Context, id types.RiskID) (*model.Risk, error) {
	snap, err := r.client.Collection(risksCollection).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(err, "risk not found",
				goerr.V("risk_id", id), goerr.T(types.TagNotFound))
		}
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V("risk_id", id))
	}

	var doc riskDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode risk document")
	}
	return doc.toModel(), nil
}

// ListRisks returns all risks sorted by ID
func (r *Repository) ListRisks(ctx context.Context) ([]*model.Risk, error) {
	iter := r.client.Collection(risksCollection).OrderBy("id", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var out []*model.Risk
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate risks")
		}
		var doc riskDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode risk document")
		}
		out = append(out, doc.toModel())
	}
	return out, nil
}

// SaveRisk inserts or replaces a risk
func (r *Repository) SaveRisk(ctx context.Context, risk *model.Risk) error {
	_, err := r.client.Collection(risksCollection).Doc(risk.ID.String()).Set(ctx, toRiskDoc(risk))
	if err != nil {
		return goerr.Wrap(err, "failed to save risk", goerr.V("risk_id", risk.ID))
	}
	return nil
}

// CountRisks returns the catalog size
func (r *Repository) CountRisks(ctx context.Context) (int, error) {
	return r.count(ctx, r.client.Collection(risksCollection).Query)
}

// AppendUpdate stores an audit record keyed by its UUID
func (r *Repository) AppendUpdate(ctx context.Context, update *model.ProbabilityUpdate) error {
	_, err := r.client.Collection(updatesCollection).Doc(update.ID.String()).Set(ctx, toUpdateDoc(update))
	if err != nil {
		return goerr.Wrap(err, "failed to store audit record", goerr.V("update_id", update.ID))
	}
	return nil
}

// GetUpdate returns a single audit record by ID
func (r *Repository) GetUpdate(ctx context.Context, id types.UpdateID) (*model.ProbabilityUpdate, error) {
	snap, err := r.client.Collection(updatesCollection).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(err, "update not found",
				goerr.V("update_id", id), goerr.T(types.TagNotFound))
		}
		return nil, goerr.Wrap(err, "failed to get audit record", goerr.V("update_id", id))
	}

	var doc updateDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode audit record")
	}
	return doc.toModel(), nil
}

// ListUpdates returns audit records for a risk, newest first
func (r *Repository) ListUpdates(ctx context.Context, riskID types.RiskID, limit int) ([]*model.ProbabilityUpdate, error) {
	q := r.client.Collection(updatesCollection).
		Where("risk_id", "==", riskID.String()).
		OrderBy("timestamp", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*model.ProbabilityUpdate
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate audit records", goerr.V("risk_id", riskID))
		}
		var doc updateDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode audit record")
		}
		out = append(out, doc.toModel())
	}
	return out, nil
}

// CountUpdates returns the total number of audit records
func (r *Repository) CountUpdates(ctx context.Context) (int, error) {
	return r.count(ctx, r.client.Collection(updatesCollection).Query)
}

// AppendSignals stores collected signals
func (r *Repository) AppendSignals(ctx context.Context, signals []model.Signal) error {
	bw := r.client.BulkWriter(ctx)
	col := r.client.Collection(signalsCollection)
	for i := range signals {
		if _, err := bw.Create(col.NewDoc(), toSignalDoc(&signals[i])); err != nil {
			return goerr.Wrap(err, "failed to enqueue signal write")
		}
	}
	bw.End()
	return nil
}

// RecentSignals returns signals observed at or after the cutoff
func (r *Repository) RecentSignals(ctx context.Context, cutoff time.Time) ([]model.Signal, error) {
	iter := r.client.Collection(signalsCollection).
		Where("timestamp", ">=", cutoff).
		OrderBy("timestamp", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var out []model.Signal
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate signals")
		}
		var doc signalDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode signal document")
		}
		out = append(out, doc.toModel())
	}
	return out, nil
}

// CountSignals returns the number of stored signals
func (r *Repository) CountSignals(ctx context.Context) (int, error) {
	return r.count(ctx, r.client.Collection(signalsCollection).Query)
}

func (r *Repository) count(ctx context.Context, q firestore.Query) (int, error) {
	iter := q.Select().Documents(ctx)
	defer iter.Stop()

	n := 0
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, goerr.Wrap(err, "failed to count documents")
		}
		n++
	}
	return n, nil
}

// Close releases the Firestore client
func (r *Repository) Close() error {
	return r.client.Close()
}

var _ interfaces.Repository = (*Repository)(nil)
