package repository

import (
	"context"
	"fmt"

	"github.com/smarttransit/saferoute-backend/internal/config"
	"github.com/smarttransit/saferoute-backend/internal/database"
	"github.com/smarttransit/saferoute-backend/internal/models"
)

// Source is implemented by every upstream the graph can be loaded from
type Source interface {
	Name() string
	FetchNetwork(ctx context.Context) (*models.NetworkData, error)
}

// OpenSource builds the source selected by cfg.Source.Kind. The returned close
// function releases any connection the source holds.
func OpenSource(cfg *config.Config) (Source, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Source.Kind {
	case config.SourceCSV:
		return NewCSVSource(cfg.Source.DataDir), noop, nil

	case config.SourceGTFS:
		return NewGTFSSource(cfg.Source.GTFSPath, cfg.Source.RiskFile), noop, nil

	case config.SourcePostgres, "":
		db, err := database.NewConnection(cfg.Database)
		if err != nil {
			return nil, nil, &models.UpstreamError{Source: "postgres", Err: err}
		}
		repo, err := database.NewNetworkRepository(db, cfg.Source)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return repo, db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown network source %q", cfg.Source.Kind)
	}
}
