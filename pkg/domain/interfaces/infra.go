package interfaces

import (
	"context"

	"github.com/prism-brain/prism/pkg/domain/model"
)

// Collector pulls signals from one external data source
type Collector interface {
	// Name is the source label recorded on signals and audit records
	Name() string

	// Collect fetches current signals. A quiet source returns an empty
	// slice and no error.
	Collect(ctx context.Context) ([]model.Signal, error)
}

// Notifier delivers notable probability changes to an external channel
type Notifier interface {
	// NotifyUpdate reports a single applied probability update
	NotifyUpdate(ctx context.Context, risk *model.Risk, update *model.ProbabilityUpdate) error
}

// Archiver stores signal batches that aged out of primary storage
type Archiver interface {
	// Archive writes a batch of signals under the given key
	Archive(ctx context.Context, key string, signals []model.Signal) error
}
