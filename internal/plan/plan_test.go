// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package plan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/canonical/dynq/internal/expr"
	"github.com/canonical/dynq/internal/plan"
	"github.com/canonical/dynq/internal/query"
)

func TestThen(t *testing.T) {
	a := expr.String("a")
	b := expr.String("b")
	byA := []plan.OrderKey{{Descending: true}}
	byB := []plan.OrderKey{{}, {}}

	var none *plan.Plan
	first := &plan.Plan{Provider: query.SQLite, Filter: a, Order: byA}
	assert.Same(t, first, none.Then(first))
	assert.Same(t, first, first.Then(nil))

	both := first.Then(&plan.Plan{Provider: query.SQLite, Filter: b, Order: byB})
	assert.Equal(t, &expr.And{Left: a, Right: b}, both.Filter)
	assert.Len(t, both.Order, 2)

	kept := first.Then(&plan.Plan{Provider: query.SQLite})
	assert.Same(t, a, kept.Filter)
	assert.Len(t, kept.Order, 1)

	unfiltered := &plan.Plan{Provider: query.SQLite}
	assert.Same(t, b, unfiltered.Then(&plan.Plan{Filter: b}).Filter)
}

func TestEmpty(t *testing.T) {
	var none *plan.Plan
	assert.True(t, none.Empty())
	assert.True(t, (&plan.Plan{}).Empty())
	assert.False(t, (&plan.Plan{Filter: expr.String("a")}).Empty())
	assert.False(t, (&plan.Plan{Order: []plan.OrderKey{{}}}).Empty())
}
