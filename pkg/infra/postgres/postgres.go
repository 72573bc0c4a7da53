package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"
	"github.com/m-mizutani/goerr/v2"

	"github.com/prism-brain/prism/pkg/domain/interfaces"
	"github.com/prism-brain/prism/pkg/domain/model"
	"github.com/prism-brain/prism/pkg/domain/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS prism_risks (
	id                   TEXT PRIMARY KEY,
	name                 TEXT NOT NULL,
	domain               TEXT NOT NULL,
	description          TEXT NOT NULL DEFAULT '',
	probability_baseline DOUBLE PRECISION NOT NULL,
	probability_live     DOUBLE PRECISION NOT NULL,
	confidence_level     TEXT NOT NULL DEFAULT 'Medium',
	last_updated         TIMESTAMPTZ NOT NULL,
	sources              TEXT[] NOT NULL DEFAULT '{}',
	update_count         INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS prism_updates (
	id                   TEXT PRIMARY KEY,
	risk_id              TEXT NOT NULL,
	ts                   TIMESTAMPTZ NOT NULL,
	probability_before   DOUBLE PRECISION NOT NULL,
	probability_after    DOUBLE PRECISION NOT NULL,
	update_reason        TEXT NOT NULL DEFAULT '',
	signals              JSONB NOT NULL DEFAULT '[]',
	data_sources_checked TEXT[] NOT NULL DEFAULT '{}',
	confidence_impact    TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_prism_updates_risk_ts ON prism_updates (risk_id, ts DESC);

CREATE TABLE IF NOT EXISTS prism_signals (
	id          BIGSERIAL PRIMARY KEY,
	source      TEXT NOT NULL,
	signal_type TEXT NOT NULL,
	severity    TEXT NOT NULL,
	multiplier  DOUBLE PRECISION NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	url         TEXT NOT NULL DEFAULT '',
	ts          TIMESTAMPTZ NOT NULL,
	risk_ids    TEXT[] NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_prism_signals_ts ON prism_signals (ts);
`

// Repository stores risks, audit records and signals in PostgreSQL
type Repository struct {
	db *sql.DB
}

// New opens a connection and bootstraps the schema
func New(ctx context.Context, dsn string) (*Repository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open postgres connection")
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		return nil, goerr.Wrap(err, "failed to ping postgres")
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, goerr.Wrap(err, "failed to bootstrap schema")
	}

	return &Repository{db: db}, nil
}

// NewWithDB wraps an existing connection. Schema bootstrap is skipped.
func NewWithDB(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// GetRisk returns a single risk by ID
func (r *Repository) GetRisk(ctx context.Context, id types.RiskID) (*model.Risk, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, domain, description, probability_baseline, probability_live,
		       confidence_level, last_updated, sources, update_count
		FROM prism_risks WHERE id = $1`, id.String())

	risk, err := scanRisk(row)
	if err == sql.ErrNoRows {
		return nil, goerr.New("risk not found",
			goerr.V("risk_id", id), goerr.T(types.TagNotFound))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V("risk_id", id))
	}
	return risk, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRisk(row rowScanner) (*model.Risk, error) {
	var risk model.Risk
	var id, domain string
	var sources pq.StringArray
	if err := row.Scan(&id, &risk.Name, &domain, &risk.Description,
		&risk.ProbabilityBaseline, &risk.ProbabilityLive,
		&risk.ConfidenceLevel, &risk.LastUpdated, &sources, &risk.UpdateCount); err != nil {
		return nil, err
	}
	risk.ID = types.RiskID(id)
	risk.Domain = model.Domain(domain)
	risk.Sources = sources
	return &risk, nil
}

// ListRisks returns all risks sorted by ID
func (r *Repository) ListRisks(ctx context.Context) ([]*model.Risk, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, domain, description, probability_baseline, probability_live,
		       confidence_level, last_updated, sources, update_count
		FROM prism_risks ORDER BY id`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query risks")
	}
	defer rows.Close()

	var out []*model.Risk
	for rows.Next() {
		risk, err := scanRisk(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan risk row")
		}
		out = append(out, risk)
	}
	return out, rows.Err()
}

// SaveRisk inserts or replaces a risk
func (r *Repository) SaveRisk(ctx context.Context, risk *model.Risk) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO prism_risks
			(id, name, domain, description, probability_baseline, probability_live,
			 confidence_level, last_updated, sources, update_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			domain = EXCLUDED.domain,
			description = EXCLUDED.description,
			probability_baseline = EXCLUDED.probability_baseline,
			probability_live = EXCLUDED.probability_live,
			confidence_level = EXCLUDED.confidence_level,
			last_updated = EXCLUDED.last_updated,
			sources = EXCLUDED.sources,
			update_count = EXCLUDED.update_count`,
		risk.ID.String(), risk.Name, string(risk.Domain), risk.Description,
		risk.ProbabilityBaseline, risk.ProbabilityLive, risk.ConfidenceLevel,
		risk.LastUpdated, pq.StringArray(risk.Sources), risk.UpdateCount)
	if err != nil {
		return goerr.Wrap(err, "failed to save risk", goerr.V("risk_id", risk.ID))
	}
	return nil
}

// CountRisks returns the catalog size
func (r *Repository) CountRisks(ctx context.Context) (int, error) {
	return r.countRows(ctx, `SELECT COUNT(*) FROM prism_risks`)
}

// AppendUpdate stores an audit record
func (r *Repository) AppendUpdate(ctx context.Context, update *model.ProbabilityUpdate) error {
	signals, err := json.Marshal(update.Signals)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal update signals")
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO prism_updates
			(id, risk_id, ts, probability_before, probability_after,
			 update_reason, signals, data_sources_checked, confidence_impact)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		update.ID.String(), update.RiskID.String(), update.Timestamp,
		update.ProbabilityBefore, update.ProbabilityAfter, update.UpdateReason,
		signals, pq.StringArray(update.DataSourcesChecked), update.ConfidenceImpact)
	if err != nil {
		return goerr.Wrap(err, "failed to store audit record", goerr.V("update_id", update.ID))
	}
	return nil
}

func scanUpdate(row rowScanner) (*model.ProbabilityUpdate, error) {
	var update model.ProbabilityUpdate
	var id, riskID string
	var signals []byte
	var sources pq.StringArray
	if err := row.Scan(&id, &riskID, &update.Timestamp,
		&update.ProbabilityBefore, &update.ProbabilityAfter,
		&update.UpdateReason, &signals, &sources, &update.ConfidenceImpact); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(signals, &update.Signals); err != nil {
		return nil, err
	}
	update.ID = types.UpdateID(id)
	update.RiskID = types.RiskID(riskID)
	update.DataSourcesChecked = sources
	return &update, nil
}

// GetUpdate returns a single audit record by ID
func (r *Repository) GetUpdate(ctx context.Context, id types.UpdateID) (*model.ProbabilityUpdate, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, risk_id, ts, probability_before, probability_after,
		       update_reason, signals, data_sources_checked, confidence_impact
		FROM prism_updates WHERE id = $1`, id.String())

	update, err := scanUpdate(row)
	if err == sql.ErrNoRows {
		return nil, goerr.New("update not found",
			goerr.V("update_id", id), goerr.T(types.TagNotFound))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get audit record", goerr.V("update_id", id))
	}
	return update, nil
}

// ListUpdates returns audit records for a risk, newest first
func (r *Repository) ListUpdates(ctx context.Context, riskID types.RiskID, limit int) ([]*model.ProbabilityUpdate, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, risk_id, ts, probability_before, probability_after,
		       update_reason, signals, data_sources_checked, confidence_impact
		FROM prism_updates WHERE risk_id = $1 ORDER BY ts DESC LIMIT $2`,
		riskID.String(), limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query audit records", goerr.V("risk_id", riskID))
	}
	defer rows.Close()

	var out []*model.ProbabilityUpdate
	for rows.Next() {
		update, err := scanUpdate(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan audit record")
		}
		out = append(out, update)
	}
	return out, rows.Err()
}

// CountUpdates returns the total number of audit records
func (r *Repository) CountUpdates(ctx context.Context) (int, error) {
	return r.countRows(ctx, `SELECT COUNT(*) FROM prism_updates`)
}

// AppendSignals stores collected signals in one transaction
func (r *Repository) AppendSignals(ctx context.Context, signals []model.Signal) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	for i := range signals {
		s := &signals[i]
		riskIDs := make([]string, 0, len(s.RiskIDs))
		for _, id := range s.RiskIDs {
			riskIDs = append(riskIDs, id.String())
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO prism_signals
				(source, signal_type, severity, multiplier, description, url, ts, risk_ids)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			s.Source, string(s.SignalType), string(s.Severity), s.Multiplier,
			s.Description, s.URL, s.Timestamp, pq.StringArray(riskIDs)); err != nil {
			return goerr.Wrap(err, "failed to insert signal", goerr.V("source", s.Source))
		}
	}
	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit signals")
	}
	return nil
}

// RecentSignals returns signals observed at or after the cutoff
func (r *Repository) RecentSignals(ctx context.Context, cutoff time.Time) ([]model.Signal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT source, signal_type, severity, multiplier, description, url, ts, risk_ids
		FROM prism_signals WHERE ts >= $1 ORDER BY ts`, cutoff)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query signals")
	}
	defer rows.Close()

	var out []model.Signal
	for rows.Next() {
		var s model.Signal
		var signalType, severity string
		var riskIDs pq.StringArray
		if err := rows.Scan(&s.Source, &signalType, &severity, &s.Multiplier,
			&s.Description, &s.URL, &s.Timestamp, &riskIDs); err != nil {
			return nil, goerr.Wrap(err, "failed to scan signal row")
		}
		s.SignalType = model.SignalType(signalType)
		s.Severity = model.SignalSeverity(severity)
		for _, id := range riskIDs {
			s.RiskIDs = append(s.RiskIDs, types.RiskID(id))
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CountSignals returns the number of stored signals
func (r *Repository) CountSignals(ctx context.Context) (int, error) {
	return r.countRows(ctx, `SELECT COUNT(*) FROM prism_signals`)
}

func (r *Repository) countRows(ctx context.Context, query string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, goerr.Wrap(err, "failed to count rows")
	}
	return n, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

var _ interfaces.Repository = (*Repository)(nil)
