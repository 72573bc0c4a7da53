package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/prism-brain/prism/pkg/domain/interfaces"
	"github.com/prism-brain/prism/pkg/infra/firestore"
	"github.com/prism-brain/prism/pkg/infra/localfile"
	"github.com/prism-brain/prism/pkg/infra/memory"
	"github.com/prism-brain/prism/pkg/infra/postgres"
)

// Store holds persistence backend configuration
type Store struct {
	Type               string
	DataDir            string
	FirestoreProjectID string
	PostgresDSN        string
}

// Flags returns CLI flags for store configuration
func (c *Store) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "store",
			Usage:       "Storage backend (memory, local, firestore, postgres)",
			Value:       "local",
			Destination: &c.Type,
			Sources:     cli.EnvVars("PRISM_STORE"),
		},
		&cli.StringFlag{
			Name:        "data-dir",
			Usage:       "Data directory for the local store",
			Value:       "./data",
			Destination: &c.DataDir,
			Sources:     cli.EnvVars("PRISM_DATA_DIR"),
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Google Cloud project ID for the firestore store",
			Destination: &c.FirestoreProjectID,
			Sources:     cli.EnvVars("PRISM_FIRESTORE_PROJECT_ID"),
		},
		&cli.StringFlag{
			Name:        "postgres-dsn",
			Usage:       "PostgreSQL connection string for the postgres store",
			Destination: &c.PostgresDSN,
			Sources:     cli.EnvVars("PRISM_POSTGRES_DSN"),
		},
	}
}

// Configure creates the configured repository
func (c *Store) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch c.Type {
	case "memory":
		return memory.New(), nil

	case "local":
		return localfile.New(c.DataDir)

	case "firestore":
		if c.FirestoreProjectID == "" {
			return nil, goerr.New("firestore-project-id is required for the firestore store")
		}
		return firestore.New(ctx, c.FirestoreProjectID)

	case "postgres":
		if c.PostgresDSN == "" {
			return nil, goerr.New("postgres-dsn is required for the postgres store")
		}
		return postgres.New(ctx, c.PostgresDSN)

	default:
		return nil, goerr.New("unknown store type", goerr.V("store", c.Type))
	}
}
