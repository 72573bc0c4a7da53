package interfaces

import (
	"context"
	"time"

	"github.com/prism-brain/prism/pkg/domain/model"
	"github.com/prism-brain/prism/pkg/domain/types"
)

// Repository defines persistence operations for risks, audit records and
// signal history. Implementations must return an error tagged with
// types.TagNotFound when a requested risk or update does not exist.
type Repository interface {
	// GetRisk returns a single risk by ID
	GetRisk(ctx context.Context, id types.RiskID) (*model.Risk, error)

	// ListRisks returns all risks in the catalog
	ListRisks(ctx context.Context) ([]*model.Risk, error)

	// SaveRisk inserts or replaces a risk
	SaveRisk(ctx context.Context, risk *model.Risk) error

	// CountRisks returns the number of risks loaded
	CountRisks(ctx context.Context) (int, error)

	// AppendUpdate stores a probability update audit record
	AppendUpdate(ctx context.Context, update *model.ProbabilityUpdate) error

	// GetUpdate returns a single audit record by ID
	GetUpdate(ctx context.Context, id types.UpdateID) (*model.ProbabilityUpdate, error)

	// ListUpdates returns audit records for a risk, newest first, capped at limit
	ListUpdates(ctx context.Context, riskID types.RiskID, limit int) ([]*model.ProbabilityUpdate, error)

	// CountUpdates returns the total number of audit records
	CountUpdates(ctx context.Context) (int, error)

	// AppendSignals stores collected signals
	AppendSignals(ctx context.Context, signals []model.Signal) error

	// RecentSignals returns signals observed at or after the cutoff
	RecentSignals(ctx context.Context, cutoff time.Time) ([]model.Signal, error)

	// CountSignals returns the number of retained signals
	CountSignals(ctx context.Context) (int, error)

	// Close releases the underlying resources
	Close() error
}
