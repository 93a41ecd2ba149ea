// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlsource

import (
	"database/sql/driver"
	"reflect"
	"strings"

	"github.com/canonical/dynq"
)

var driverPackages = []struct {
	prefix   string
	provider dynq.Provider
}{
	{"github.com/mattn/go-sqlite3", dynq.SQLite},
	{"modernc.org/sqlite", dynq.SQLite},
	{"github.com/canonical/go-dqlite", dynq.Dqlite},
	{"github.com/lib/pq", dynq.PostgreSQL},
	{"github.com/jackc/pgx", dynq.PostgreSQL},
	{"github.com/marcboeker/go-duckdb", dynq.DuckDB},
}

// Detect identifies the database behind a driver from the package that
// declares it. Drivers from unrecognised packages yield
// [dynq.UnknownProvider].
func Detect(drv driver.Driver) dynq.Provider {
	if drv == nil {
		return dynq.UnknownProvider
	}
	t := reflect.TypeOf(drv)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	pkg := t.PkgPath()
	for _, d := range driverPackages {
		if pkg == d.prefix || strings.HasPrefix(pkg, d.prefix+"/") {
			return d.provider
		}
	}
	return dynq.UnknownProvider
}
