// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package dynq

import (
	"context"
	"reflect"

	"github.com/canonical/dynq/internal/build"
	"github.com/canonical/dynq/internal/plan"
	"github.com/canonical/dynq/internal/query"
)

// FilterDefinition is one filter condition of a [QueryRequest].
type FilterDefinition = query.Filter

// SortDefinition is one sort key of a [QueryRequest].
type SortDefinition = query.Sort

// QueryRequest describes the filters, their combination and the sorts of a
// dynamic query.
type QueryRequest = query.Request

// Options configures how a [QueryRequest] is compiled.
type Options = query.Options

// LookupFlags controls how property names are matched.
type LookupFlags = query.Lookup

// Operator is a filter operator.
type Operator = query.Operator

const (
	Equals             = query.Equals
	DoesNotEqual       = query.DoesNotEqual
	GreaterThan        = query.GreaterThan
	GreaterThanOrEqual = query.GreaterThanOrEqual
	LessThan           = query.LessThan
	LessThanOrEqual    = query.LessThanOrEqual
	Contains           = query.Contains
	DoesNotContain     = query.DoesNotContain
	StartsWith         = query.StartsWith
	EndsWith           = query.EndsWith
	IsEmpty            = query.IsEmpty
	IsNotEmpty         = query.IsNotEmpty
	Regex              = query.Regex
)

// StringComparison selects how string operators compare text on sources
// that honour it.
type StringComparison = query.StringComparison

const (
	Ordinal              = query.Ordinal
	OrdinalIgnoreCase    = query.OrdinalIgnoreCase
	Linguistic           = query.Linguistic
	LinguisticIgnoreCase = query.LinguisticIgnoreCase
)

// Provider identifies the kind of a [Source].
type Provider = query.Provider

const (
	UnknownProvider = query.Unknown
	InMemory        = query.InMemory
	SQLite          = query.SQLite
	Dqlite          = query.Dqlite
	PostgreSQL      = query.PostgreSQL
	DuckDB          = query.DuckDB
	MongoDB         = query.MongoDB
)

// Plan is a compiled query for one provider.
type Plan = plan.Plan

// Value returns a pointer to v, for use as [FilterDefinition].Value.
func Value(v string) *string {
	return &v
}

// Source is a deferred collection of T that a compiled [Plan] can be
// applied to. Applying a plan does no work; the query runs when the
// results are read.
//
// Sources are provided by the memory, sqlsource and mongosource packages.
type Source[T any] interface {
	// Provider identifies the source so that a matching translator is
	// chosen.
	Provider() Provider

	// Apply returns a new source with p applied after any plan already
	// applied to this one.
	Apply(p *Plan) (Source[T], error)

	// All returns every item.
	All(ctx context.Context) ([]T, error)

	// Count returns the number of items.
	Count(ctx context.Context) (int, error)

	// Slice returns at most limit items after skipping offset items.
	Slice(ctx context.Context, offset, limit int) ([]T, error)
}

// Compile compiles req over the struct type T for provider without
// applying it to a source.
func Compile[T any](req QueryRequest, opts Options, provider Provider) (*Plan, error) {
	return build.Compile(reflect.TypeOf((*T)(nil)).Elem(), req, opts, provider)
}

// Apply compiles req for the provider of src and applies the resulting
// filter and ordering to it. The request is not modified. A request without
// filters and sorts returns src unchanged.
func Apply[T any](src Source[T], req QueryRequest, opts Options) (Source[T], error) {
	if len(req.Filters) == 0 && len(req.Sorts) == 0 {
		return src, nil
	}
	p, err := Compile[T](req, opts, src.Provider())
	if err != nil {
		return nil, err
	}
	return src.Apply(p)
}

// ParseProvider parses a provider name such as "sqlite" or "mongodb".
func ParseProvider(s string) (Provider, error) {
	return query.ParseProvider(s)
}
