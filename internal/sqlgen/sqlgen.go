// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package sqlgen renders plans as SQL statements with bound parameters.
//
// Nested structs are stored flattened: the column of a property path is
// the db names of its hops joined with "_". Strings compare with the
// database's own rules. Date properties are stored as ISO dates on SQLite,
// clock properties as "15:04:05" text and durations as integer
// nanoseconds.
package sqlgen

import (
	"github.com/canonical/dynq/internal/expr"
	"github.com/canonical/dynq/internal/plan"
)

// Query is a rendered statement and its arguments.
type Query struct {
	SQL  string
	Args []any
}

// Where renders a predicate.
func (d *Dialect) Where(n expr.Node) (Query, error) {
	b := &sqlBuilder{dialect: d}
	if err := b.writeNode(n); err != nil {
		return Query{}, err
	}
	return Query{SQL: b.getSQL(), Args: b.args}, nil
}

// OrderBy renders sort keys without the ORDER BY keyword. Nulls sort
// first in ascending order and last in descending order.
func (d *Dialect) OrderBy(keys []plan.OrderKey) string {
	cols := make([]string, len(keys))
	b := &sqlBuilder{dialect: d}
	b.writeCommaSeparatedList(cols, func(i int, _ string) string {
		if keys[i].Descending {
			return Quote(keys[i].Member.Path.Column()) + " DESC NULLS LAST"
		}
		return Quote(keys[i].Member.Path.Column()) + " ASC NULLS FIRST"
	})
	return b.getSQL()
}

// Select renders a query for the given columns of table. A negative limit
// reads all rows from offset.
func (d *Dialect) Select(table string, columns []string, p *plan.Plan, offset, limit int) (Query, error) {
	b := &sqlBuilder{dialect: d}
	b.write("SELECT ")
	b.writeCommaSeparatedList(columns, func(_ int, c string) string { return Quote(c) })
	b.write(" FROM " + Quote(table))
	if err := b.writeWhere(p); err != nil {
		return Query{}, err
	}
	if p != nil && len(p.Order) > 0 {
		b.write(" ORDER BY " + d.OrderBy(p.Order))
	}
	switch {
	case limit >= 0:
		b.write(" LIMIT ")
		b.writeArg(limit)
		b.write(" OFFSET ")
		b.writeArg(offset)
	case offset > 0:
		if d == SQLite {
			b.write(" LIMIT -1")
		}
		b.write(" OFFSET ")
		b.writeArg(offset)
	}
	return Query{SQL: b.getSQL(), Args: b.args}, nil
}

// Count renders a query counting the rows of table matching p.
func (d *Dialect) Count(table string, p *plan.Plan) (Query, error) {
	b := &sqlBuilder{dialect: d}
	b.write("SELECT COUNT(*) FROM " + Quote(table))
	if err := b.writeWhere(p); err != nil {
		return Query{}, err
	}
	return Query{SQL: b.getSQL(), Args: b.args}, nil
}

func (b *sqlBuilder) writeWhere(p *plan.Plan) error {
	if p == nil || p.Filter == nil {
		return nil
	}
	b.write(" WHERE ")
	return b.writeNode(p.Filter)
}
