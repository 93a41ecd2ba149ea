// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package translate

import (
	"github.com/canonical/dynq/internal/expr"
	"github.com/canonical/dynq/internal/locale"
	"github.com/canonical/dynq/internal/qerr"
	"github.com/canonical/dynq/internal/query"
	"github.com/canonical/dynq/internal/schema"
)

// materialized serves sources evaluated in process. String comparisons
// honour the requested comparer and values are formatted with the filter
// locale and exact format.
type materialized struct{}

func (*materialized) Capabilities() Capabilities {
	return Capabilities{Operators: allOperators(), Comparer: true, Localized: true, Collation: true}
}

func (*materialized) Realize(op query.Operator, member expr.Node, constant *expr.Const, cmp query.StringComparison, loc locale.Locale) (expr.Node, error) {
	return realize(op, member, constant, comparisonMode(cmp), loc, false)
}

func (*materialized) Stringify(member *expr.Member, loc locale.Locale, layout string) (expr.Node, error) {
	return stringify(member, false, func(x expr.Node) *expr.Format {
		return &expr.Format{X: x, Of: member.Path.Kind, Type: member.Path.Type(), Locale: loc, Layout: layout}
	})
}

func (*materialized) translator() {}

// native serves SQL databases. Strings compare with the database's own
// rules and values are cast to text by the database.
type native struct {
	regex bool
}

func (n *native) Capabilities() Capabilities {
	ops := allOperators()
	if !n.regex {
		delete(ops, query.Regex)
	}
	return Capabilities{Operators: ops}
}

func (*native) Realize(op query.Operator, member expr.Node, constant *expr.Const, _ query.StringComparison, loc locale.Locale) (expr.Node, error) {
	return realize(op, member, constant, expr.Native, loc, true)
}

func (*native) Stringify(member *expr.Member, _ locale.Locale, _ string) (expr.Node, error) {
	return stringify(member, false, func(x expr.Node) *expr.Format {
		return &expr.Format{X: x, Of: member.Path.Kind, Type: member.Path.Type(), Native: true}
	})
}

func (*native) translator() {}

// document serves MongoDB. Nullable values are coalesced to the minimum
// of their type before conversion, as the server has no notion of a
// default value. The server cannot turn a code point, a duration or a
// time of day into text: characters are matched by code point and the
// other two are not forced at all.
type document struct{}

func (*document) Capabilities() Capabilities {
	return Capabilities{
		Operators: allOperators(),
		Unforced:  map[schema.Kind]bool{schema.Duration: true, schema.Clock: true},
	}
}

func (*document) Realize(op query.Operator, member expr.Node, constant *expr.Const, _ query.StringComparison, loc locale.Locale) (expr.Node, error) {
	if f, ok := member.(*expr.Format); ok && f.Of == schema.Char {
		return realizeChar(op, f.X, f.Type, constant)
	}
	return realize(op, member, constant, expr.Native, loc, true)
}

func (d *document) Stringify(member *expr.Member, _ locale.Locale, _ string) (expr.Node, error) {
	if d.Capabilities().Unforced[member.Path.Kind] {
		return nil, qerr.UnsupportedString(member.Path.TypeName())
	}
	return stringify(member, true, func(x expr.Node) *expr.Format {
		return &expr.Format{X: x, Of: member.Path.Kind, Type: member.Path.Type(), Native: true}
	})
}

func (*document) translator() {}
