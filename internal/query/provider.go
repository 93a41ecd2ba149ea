// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package query

import (
	"fmt"
	"strings"
)

// Provider identifies the kind of source a query is compiled for.
type Provider int

const (
	Unknown Provider = iota
	InMemory
	SQLite
	Dqlite
	PostgreSQL
	DuckDB
	MongoDB
)

var providerNames = [...]string{
	Unknown:    "unknown",
	InMemory:   "memory",
	SQLite:     "sqlite",
	Dqlite:     "dqlite",
	PostgreSQL: "postgres",
	DuckDB:     "duckdb",
	MongoDB:    "mongodb",
}

func (p Provider) String() string {
	if p < 0 || int(p) >= len(providerNames) {
		return fmt.Sprintf("Provider(%d)", int(p))
	}
	return providerNames[p]
}

// ParseProvider parses a provider name as printed by String.
func ParseProvider(s string) (Provider, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "postgresql", "pg":
		return PostgreSQL, nil
	case "sqlite3":
		return SQLite, nil
	case "mongo":
		return MongoDB, nil
	case "inmemory":
		return InMemory, nil
	}
	for i, name := range providerNames {
		if name == s {
			return Provider(i), nil
		}
	}
	return Unknown, fmt.Errorf("unknown provider %q", s)
}
