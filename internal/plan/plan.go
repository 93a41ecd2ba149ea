// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package plan holds the provider-neutral result of building a query.
package plan

import (
	"golang.org/x/text/language"

	"github.com/canonical/dynq/internal/expr"
	"github.com/canonical/dynq/internal/query"
)

// OrderKey is one sort key.
type OrderKey struct {
	Member     *expr.Member
	Descending bool

	// Mode and Tag select string collation on sources that honour it.
	Mode expr.Mode
	Tag  language.Tag
}

// Plan is a compiled filter and ordering for one provider.
type Plan struct {
	Provider query.Provider

	// Filter is nil when the query has no filters.
	Filter expr.Node

	// Order is empty when the query has no sorts.
	Order []OrderKey
}

// Then composes p with a plan applied after it. Filters are conjoined;
// a non-empty ordering in next replaces the ordering of p.
func (p *Plan) Then(next *Plan) *Plan {
	if p == nil {
		return next
	}
	if next == nil {
		return p
	}
	out := &Plan{Provider: next.Provider, Filter: p.Filter, Order: p.Order}
	switch {
	case out.Filter == nil:
		out.Filter = next.Filter
	case next.Filter != nil:
		out.Filter = &expr.And{Left: p.Filter, Right: next.Filter}
	}
	if len(next.Order) > 0 {
		out.Order = next.Order
	}
	return out
}

// Empty reports whether the plan neither filters nor orders.
func (p *Plan) Empty() bool {
	return p == nil || (p.Filter == nil && len(p.Order) == 0)
}
