// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/canonical/dynq/internal/query"
)

// Dialect holds the differences between the supported SQL databases.
type Dialect struct {
	Name string

	// placeholder returns the n-th (1-based) parameter placeholder.
	placeholder func(n int) string

	// eq and ne are the null-safe equality operators.
	eq, ne string

	// text is the type non-string values are cast to for string operators.
	text string

	// glob selects GLOB over LIKE for case-sensitive pattern matching.
	glob bool

	// regex renders a regular expression match, or is nil if the database
	// has no built-in support.
	regex func(x, pattern string) string
}

func question(int) string { return "?" }

func dollar(n int) string { return "$" + strconv.Itoa(n) }

// SQLite is used for SQLite and Dqlite.
var SQLite = &Dialect{
	Name:        "sqlite",
	placeholder: question,
	eq:          "IS",
	ne:          "IS NOT",
	text:        "TEXT",
	glob:        true,
}

var PostgreSQL = &Dialect{
	Name:        "postgres",
	placeholder: dollar,
	eq:          "IS NOT DISTINCT FROM",
	ne:          "IS DISTINCT FROM",
	text:        "TEXT",
	regex: func(x, pattern string) string {
		return x + " ~ " + pattern
	},
}

var DuckDB = &Dialect{
	Name:        "duckdb",
	placeholder: question,
	eq:          "IS NOT DISTINCT FROM",
	ne:          "IS DISTINCT FROM",
	text:        "VARCHAR",
	regex: func(x, pattern string) string {
		return "regexp_matches(" + x + ", " + pattern + ")"
	},
}

// For returns the dialect of a SQL provider.
func For(p query.Provider) (*Dialect, error) {
	switch p {
	case query.SQLite, query.Dqlite:
		return SQLite, nil
	case query.PostgreSQL:
		return PostgreSQL, nil
	case query.DuckDB:
		return DuckDB, nil
	}
	return nil, fmt.Errorf("provider %s is not a SQL database", p)
}

// Quote quotes an identifier.
func Quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
