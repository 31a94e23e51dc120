package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/phdi/tcr/internal/config"
	"github.com/phdi/tcr/internal/domain/reference"
	"github.com/phdi/tcr/internal/platform/db"
)

// referenceStores holds the two reference repositories and the handles
// backing them.
type referenceStores struct {
	Concepts reference.ConceptRepository
	Names    reference.ConditionNameRepository
	closers  []func()
}

func (s *referenceStores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// openStores opens the eRSD and RCKMS stores read-only for serving.
func openStores(ctx context.Context, cfg *config.Config) (*referenceStores, error) {
	dialect, err := db.ParseDialect(cfg.ReferenceDriver)
	if err != nil {
		return nil, err
	}
	stores := &referenceStores{}

	switch dialect {
	case db.DialectPostgres:
		ersd, err := db.NewPool(ctx, cfg.ERSDDatabase, cfg.DBMaxConns, cfg.DBMinConns, true)
		if err != nil {
			return nil, fmt.Errorf("eRSD store: %w", err)
		}
		stores.closers = append(stores.closers, ersd.Close)
		rckms, err := db.NewPool(ctx, cfg.RCKMSDatabase, cfg.DBMaxConns, cfg.DBMinConns, true)
		if err != nil {
			stores.Close()
			return nil, fmt.Errorf("RCKMS store: %w", err)
		}
		stores.closers = append(stores.closers, rckms.Close)
		stores.Concepts = reference.NewConceptRepoPG(ersd)
		stores.Names = reference.NewConditionRepoPG(rckms)
	default:
		ersd, err := db.OpenSQL(ctx, dialect, cfg.ERSDDatabase, true)
		if err != nil {
			return nil, fmt.Errorf("eRSD store: %w", err)
		}
		stores.closers = append(stores.closers, func() { ersd.Close() })
		rckms, err := db.OpenSQL(ctx, dialect, cfg.RCKMSDatabase, true)
		if err != nil {
			stores.Close()
			return nil, fmt.Errorf("RCKMS store: %w", err)
		}
		stores.closers = append(stores.closers, func() { rckms.Close() })
		stores.Concepts = reference.NewConceptRepoSQL(ersd)
		stores.Names = reference.NewConditionRepoSQL(rckms)
	}
	return stores, nil
}

// openConditionWriter opens the RCKMS store for writing.
func openConditionWriter(ctx context.Context, cfg *config.Config) (reference.ConditionWriter, func(), error) {
	dialect, err := db.ParseDialect(cfg.ReferenceDriver)
	if err != nil {
		return nil, nil, err
	}
	if dialect == db.DialectPostgres {
		var pool *pgxpool.Pool
		pool, err = db.NewPool(ctx, cfg.RCKMSDatabase, cfg.DBMaxConns, cfg.DBMinConns, false)
		if err != nil {
			return nil, nil, err
		}
		return reference.NewConditionRepoPG(pool), pool.Close, nil
	}
	conn, err := db.OpenSQL(ctx, dialect, cfg.RCKMSDatabase, false)
	if err != nil {
		return nil, nil, err
	}
	return reference.NewConditionRepoSQL(conn), func() { conn.Close() }, nil
}

// openMigrator opens the named store read-write over database/sql and pairs
// it with that store's embedded migrations.
func openMigrator(ctx context.Context, store string) (*db.Migrator, func(), error) {
	fsys, err := db.Migrations(store)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	dialect, err := db.ParseDialect(cfg.ReferenceDriver)
	if err != nil {
		return nil, nil, err
	}

	location := cfg.ERSDDatabase
	if store == db.StoreRCKMS {
		location = cfg.RCKMSDatabase
	}
	var conn *sql.DB
	conn, err = db.OpenSQL(ctx, dialect, location, false)
	if err != nil {
		return nil, nil, err
	}
	return db.NewMigrator(conn, fsys, dialect), func() { conn.Close() }, nil
}
