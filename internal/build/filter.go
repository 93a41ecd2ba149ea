// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package build

import (
	"errors"

	"github.com/canonical/dynq/internal/coerce"
	"github.com/canonical/dynq/internal/expr"
	"github.com/canonical/dynq/internal/locale"
	"github.com/canonical/dynq/internal/pattern"
	"github.com/canonical/dynq/internal/qerr"
	"github.com/canonical/dynq/internal/query"
	"github.com/canonical/dynq/internal/schema"
)

// applyFilters builds one predicate per filter and combines them with the
// request's combination pattern into a single predicate.
func (p *pass) applyFilters() error {
	if len(p.req.Filters) == 0 {
		return nil
	}
	nodes := make([]expr.Node, len(p.req.Filters))
	for i, f := range p.req.Filters {
		n, err := p.filter(f, p.filterPaths[i])
		if err != nil {
			return err
		}
		nodes[i] = n
	}
	combined, err := pattern.Combine[expr.Node](p.req.Expression, nodes, combiner{})
	if err != nil {
		return err
	}
	p.plan.Filter = combined
	return nil
}

type combiner struct{}

func (combiner) And(l, r expr.Node) expr.Node { return &expr.And{Left: l, Right: r} }
func (combiner) Or(l, r expr.Node) expr.Node  { return &expr.Or{Left: l, Right: r} }
func (combiner) Not(n expr.Node) expr.Node    { return &expr.Not{X: n} }

// needsValue reports whether op cannot be applied to an absent value.
func needsValue(op query.Operator) bool {
	switch op {
	case query.Equals, query.DoesNotEqual, query.IsEmpty, query.IsNotEmpty:
		return false
	}
	return true
}

// checkOperator rejects operators that make no sense for a kind.
func checkOperator(op query.Operator, path *schema.Path) error {
	kind := path.Kind
	switch {
	case op.IsOrdering() && (kind == schema.String || kind == schema.Char || kind == schema.Bool || !kind.Ordered()):
		return qerr.Operator(op.String(), path.TypeName())
	case (op == query.IsEmpty || op == query.IsNotEmpty) && kind != schema.String && kind != schema.Char:
		return qerr.Operator(op.String(), path.TypeName())
	}
	return nil
}

// filter builds the predicate of a single filter.
func (p *pass) filter(f query.Filter, canonical string) (expr.Node, error) {
	path, err := p.resolve(canonical)
	if err != nil {
		return nil, qerr.Missing(f.Property)
	}
	if err := checkOperator(f.Operator, path); err != nil {
		return nil, err
	}
	if !p.translator.Capabilities().Supports(f.Operator) {
		return nil, qerr.Operator(f.Operator.String(), path.TypeName())
	}
	if f.Value == nil && needsValue(f.Operator) {
		return nil, qerr.Parse("", f.Property)
	}

	tag := f.Locale
	if tag == "" {
		tag = p.req.Locale
	}
	loc, err := locale.Parse(tag)
	if err != nil {
		return nil, &qerr.Error{Kind: qerr.ValueParseError, Value: tag, Property: f.Property, Err: err}
	}

	nullEquality := f.Value == nil && f.Operator == query.Equals
	inverse := f.Value != nil && (f.Operator == query.DoesNotEqual || f.Operator == query.DoesNotContain)

	member := &expr.Member{Path: path}
	var node expr.Node
	switch {
	case f.Value == nil && f.Operator == query.Equals:
		node = &expr.IsNull{X: member}
	case f.Value == nil && f.Operator == query.DoesNotEqual:
		node = &expr.Not{X: &expr.IsNull{X: member}}
	case f.Operator.IsString():
		node, err = p.stringFilter(f, member, loc)
	default:
		node, err = p.valueFilter(f, member, loc)
	}
	if err != nil {
		return nil, err
	}

	guards := path.Guards()
	if len(guards) == 0 {
		return node, nil
	}
	if !nullEquality && !inverse {
		checks := make([]expr.Node, len(guards))
		for i, hop := range guards {
			checks[i] = &expr.Not{X: &expr.NilHop{Path: path, Hop: hop}}
		}
		return &expr.And{Left: expr.AndAll(checks...), Right: node}, nil
	}
	checks := make([]expr.Node, len(guards))
	for i, hop := range guards {
		checks[i] = &expr.NilHop{Path: path, Hop: hop}
	}
	return &expr.Or{Left: expr.OrAll(checks...), Right: node}, nil
}

// stringFilter compares the string form of the member with the raw value.
func (p *pass) stringFilter(f query.Filter, member *expr.Member, loc locale.Locale) (expr.Node, error) {
	path := member.Path
	var subject expr.Node = member
	if path.Kind != schema.String {
		forced, err := p.translator.Stringify(member, loc, f.Format)
		if err != nil {
			return nil, err
		}
		subject = forced
	}
	constant := &expr.Const{Of: schema.String, Type: path.Type()}
	if f.Value != nil {
		constant.Value = *f.Value
	}
	return p.realize(f, subject, constant, path, loc)
}

// valueFilter compares the member with the value parsed for its kind.
func (p *pass) valueFilter(f query.Filter, member *expr.Member, loc locale.Locale) (expr.Node, error) {
	path := member.Path
	parser := coerce.Parser{Locale: loc, Layout: f.Format, Override: p.opts.OverrideLocation}
	v, ok := parser.Parse(*f.Value, path.Kind, path.Type())
	if !ok {
		return nil, qerr.Parse(*f.Value, f.Property)
	}
	constant := &expr.Const{Value: v, Of: path.Kind, Type: path.Type()}
	return p.realize(f, member, constant, path, loc)
}

func (p *pass) realize(f query.Filter, subject expr.Node, constant *expr.Const, path *schema.Path, loc locale.Locale) (expr.Node, error) {
	node, err := p.translator.Realize(f.Operator, subject, constant, p.opts.StringComparison, loc)
	if err != nil {
		var qe *qerr.Error
		if errors.As(err, &qe) {
			return nil, err
		}
		return nil, qerr.Filter(f.Property, path.TypeName(), f.Operator.String(), expr.PrintConst(constant), err)
	}
	return node, nil
}
