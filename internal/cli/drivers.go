// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package cli

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/canonical/go-dqlite/client"
	"github.com/canonical/go-dqlite/driver"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/marcboeker/go-duckdb"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Drivers lists the database/sql drivers the run command can open.
var Drivers = []string{"sqlite3", "sqlite", "dqlite", "postgres", "pgx", "duckdb"}

var dqliteOnce sync.Once

// openDB opens the database of cfg. For dqlite the DSN is the address of
// a cluster node and the database is named by cfg.Database.
func openDB(ctx context.Context, cfg SourceConfig) (*sql.DB, error) {
	name := cfg.Driver
	dsn := cfg.DSN
	if name == "dqlite" {
		if err := registerDqlite(ctx, cfg.DSN); err != nil {
			return nil, err
		}
		dsn = cfg.Database
	}
	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s database: %w", name, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot reach %s database: %w", name, err)
	}
	return db, nil
}

func registerDqlite(ctx context.Context, address string) error {
	var err error
	dqliteOnce.Do(func() {
		store := client.NewInmemNodeStore()
		if err = store.Set(ctx, []client.NodeInfo{{Address: address}}); err != nil {
			return
		}
		var drv *driver.Driver
		if drv, err = driver.New(store); err != nil {
			return
		}
		sql.Register("dqlite", drv)
	})
	if err != nil {
		return fmt.Errorf("cannot register dqlite driver: %w", err)
	}
	return nil
}

// seedable reports whether the sample table can be created with driver.
func seedable(driver string) bool {
	return driver == "sqlite3" || driver == "sqlite" || driver == "dqlite"
}
