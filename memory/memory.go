// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package memory provides a [dynq.Source] over an in-memory slice.
// Plans are evaluated in process, so string comparisons honour the
// requested comparer and locale.
package memory

import (
	"context"
	"reflect"
	"sort"

	"github.com/canonical/dynq"
	"github.com/canonical/dynq/internal/expr"
	"github.com/canonical/dynq/internal/plan"
)

// Slice is a deferred query over a slice. The slice is not copied; it must
// not be modified while results are read.
type Slice[T any] struct {
	items []T
	plan  *plan.Plan
}

var _ dynq.Source[struct{}] = (*Slice[struct{}])(nil)

// New returns a source over items.
func New[T any](items []T) *Slice[T] {
	return &Slice[T]{items: items}
}

func (s *Slice[T]) Provider() dynq.Provider {
	return dynq.InMemory
}

func (s *Slice[T]) Apply(p *dynq.Plan) (dynq.Source[T], error) {
	return &Slice[T]{items: s.items, plan: s.plan.Then(p)}, nil
}

// Plan returns the plan applied to s, or nil.
func (s *Slice[T]) Plan() *dynq.Plan {
	return s.plan
}

func (s *Slice[T]) All(ctx context.Context) ([]T, error) {
	return s.run(ctx)
}

func (s *Slice[T]) Count(ctx context.Context) (int, error) {
	if s.plan == nil || s.plan.Filter == nil {
		return len(s.items), nil
	}
	out, err := s.filter(ctx)
	return len(out), err
}

func (s *Slice[T]) Slice(ctx context.Context, offset, limit int) ([]T, error) {
	out, err := s.run(ctx)
	if err != nil {
		return nil, err
	}
	offset = max(offset, 0)
	if offset >= len(out) {
		return []T{}, nil
	}
	out = out[offset:]
	if limit >= 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *Slice[T]) run(ctx context.Context) ([]T, error) {
	out, err := s.filter(ctx)
	if err != nil {
		return nil, err
	}
	if s.plan != nil && len(s.plan.Order) > 0 {
		if err := order(out, s.plan.Order); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Slice[T]) filter(ctx context.Context) ([]T, error) {
	out := make([]T, 0, len(s.items))
	if s.plan == nil || s.plan.Filter == nil {
		return append(out, s.items...), nil
	}
	for i := range s.items {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		ok, err := expr.Test(s.plan.Filter, reflect.ValueOf(&s.items[i]).Elem())
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, s.items[i])
		}
	}
	return out, nil
}

// order sorts items stably by keys. Sort values are evaluated once per
// item.
func order[T any](items []T, keys []plan.OrderKey) error {
	values := make([][]any, len(items))
	for i := range items {
		rec := reflect.ValueOf(&items[i]).Elem()
		values[i] = make([]any, len(keys))
		for k, key := range keys {
			v, err := expr.Eval(key.Member, rec)
			if err != nil {
				return err
			}
			values[i][k] = v
		}
	}
	cmps := make([]comparer, len(keys))
	for k, key := range keys {
		cmps[k] = newComparer(key)
	}

	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	var sortErr error
	sort.SliceStable(idx, func(a, b int) bool {
		for k := range keys {
			c, err := cmps[k](values[idx[a]][k], values[idx[b]][k])
			if err != nil && sortErr == nil {
				sortErr = err
			}
			if c != 0 {
				return c < 0
			}
		}
		return false
	})
	if sortErr != nil {
		return sortErr
	}

	sorted := make([]T, len(items))
	for i, j := range idx {
		sorted[i] = items[j]
	}
	copy(items, sorted)
	return nil
}
