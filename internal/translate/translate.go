// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package translate turns filter operators into expression nodes for a
// given provider. There are three variants: materialized sources that
// evaluate in process, SQL databases and MongoDB.
package translate

import (
	"fmt"

	"github.com/canonical/dynq/internal/coerce"
	"github.com/canonical/dynq/internal/expr"
	"github.com/canonical/dynq/internal/locale"
	"github.com/canonical/dynq/internal/qerr"
	"github.com/canonical/dynq/internal/query"
	"github.com/canonical/dynq/internal/schema"
)

// Capabilities describes what a provider can express.
type Capabilities struct {
	// Operators is the set of supported operators.
	Operators map[query.Operator]bool

	// Comparer is true if string operators honour the requested
	// StringComparison. Otherwise the source compares natively.
	Comparer bool

	// Localized is true if forcing a value to a string honours the locale
	// and the exact format.
	Localized bool

	// Collation is true if string sort keys honour a linguistic collation.
	Collation bool

	// Unforced lists the kinds that cannot be forced to a string, so
	// string operators on them are rejected.
	Unforced map[schema.Kind]bool
}

// Supports reports whether op is available.
func (c Capabilities) Supports(op query.Operator) bool {
	return c.Operators[op]
}

// Translator realizes operators for one provider.
type Translator interface {
	Capabilities() Capabilities

	// Realize returns the predicate applying op to member and constant.
	// The constant is a string for string operators.
	Realize(op query.Operator, member expr.Node, constant *expr.Const, cmp query.StringComparison, loc locale.Locale) (expr.Node, error)

	// Stringify forces a non-string member to a string. The layout is
	// only honoured by localized translators.
	Stringify(member *expr.Member, loc locale.Locale, layout string) (expr.Node, error)

	translator()
}

// For returns the translator of provider p. Unknown providers get the
// materialized translator.
func For(p query.Provider) Translator {
	switch p {
	case query.SQLite, query.Dqlite:
		return &native{regex: false}
	case query.PostgreSQL, query.DuckDB:
		return &native{regex: true}
	case query.MongoDB:
		return &document{}
	}
	return &materialized{}
}

func allOperators() map[query.Operator]bool {
	ops := make(map[query.Operator]bool)
	for _, op := range query.Operators() {
		ops[op] = true
	}
	return ops
}

// realize builds the predicate for op. mode is used for string matching;
// plain selects Compare over Match for string equality.
func realize(op query.Operator, member expr.Node, constant *expr.Const, mode expr.Mode, loc locale.Locale, plain bool) (expr.Node, error) {
	match := func(m expr.MatchOp) expr.Node {
		return &expr.Match{Op: m, X: member, Pattern: constant, Mode: mode, Tag: loc.Tag}
	}
	textual := member.Kind() == schema.String && constant.Value != nil && !plain
	switch op {
	case query.Equals:
		if textual {
			return match(expr.Equal), nil
		}
		return &expr.Compare{Op: expr.Eq, Left: member, Right: constant}, nil
	case query.DoesNotEqual:
		if textual {
			return &expr.Not{X: match(expr.Equal)}, nil
		}
		return &expr.Compare{Op: expr.Ne, Left: member, Right: constant}, nil
	case query.GreaterThan:
		return &expr.Compare{Op: expr.Gt, Left: member, Right: constant}, nil
	case query.GreaterThanOrEqual:
		return &expr.Compare{Op: expr.Ge, Left: member, Right: constant}, nil
	case query.LessThan:
		return &expr.Compare{Op: expr.Lt, Left: member, Right: constant}, nil
	case query.LessThanOrEqual:
		return &expr.Compare{Op: expr.Le, Left: member, Right: constant}, nil
	case query.StartsWith:
		return match(expr.Prefix), nil
	case query.EndsWith:
		return match(expr.Suffix), nil
	case query.Contains:
		return match(expr.Substring), nil
	case query.DoesNotContain:
		return &expr.Not{X: match(expr.Substring)}, nil
	case query.IsEmpty:
		return &expr.Blank{X: member}, nil
	case query.IsNotEmpty:
		return &expr.Not{X: &expr.Blank{X: member}}, nil
	case query.Regex:
		pattern, ok := constant.Value.(string)
		if !ok {
			return nil, fmt.Errorf("regular expression must be a string")
		}
		return expr.NewRegex(member, pattern)
	}
	return nil, fmt.Errorf("unknown operator %s", op)
}

// stringify implements the parts of forcing a member to a string that all
// translators share. Booleans map to "True"/"False" after coalescing null
// to false and enumerations map through a chain of conditionals over their
// declared members. Other kinds are coalesced to a sentinel when nullable
// and passed to format.
func stringify(member *expr.Member, minimum bool, format func(x expr.Node) *expr.Format) (expr.Node, error) {
	path := member.Path
	t := path.Type()
	switch path.Kind {
	case schema.String:
		return member, nil
	case schema.Bool:
		var x expr.Node = member
		if member.Nullable() {
			x = &expr.Coalesce{X: member, Fallback: &expr.Const{Value: false, Of: schema.Bool, Type: t}}
		}
		return &expr.Cond{
			If:   &expr.Compare{Op: expr.Eq, Left: x, Right: &expr.Const{Value: true, Of: schema.Bool, Type: t}},
			Then: expr.String("True"),
			Else: expr.String("False"),
		}, nil
	case schema.Enum:
		members, _ := schema.EnumMembers(t)
		var out expr.Node = expr.String("")
		for i := len(members) - 1; i >= 0; i-- {
			m := members[i]
			out = &expr.Cond{
				If:   &expr.Compare{Op: expr.Eq, Left: member, Right: &expr.Const{Value: m.Value, Of: schema.Enum, Type: t}},
				Then: expr.String(m.Name),
				Else: out,
			}
		}
		return out, nil
	case schema.Struct, schema.Invalid:
		return nil, qerr.UnsupportedString(path.TypeName())
	}
	var x expr.Node = member
	if member.Nullable() {
		x = &expr.Coalesce{X: member, Fallback: &expr.Const{
			Value: coerce.Sentinel(path.Kind, t, minimum),
			Of:    path.Kind,
			Type:  t,
		}}
	}
	return format(x), nil
}

func comparisonMode(c query.StringComparison) expr.Mode {
	switch c {
	case query.OrdinalIgnoreCase:
		return expr.OrdinalIgnoreCase
	case query.Linguistic:
		return expr.Linguistic
	case query.LinguisticIgnoreCase:
		return expr.LinguisticIgnoreCase
	}
	return expr.Ordinal
}
