// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package mongosource provides a [dynq.Source] over a MongoDB collection.
// Filters run server side as a single $expr aggregation expression.
package mongosource

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/canonical/dynq"
	"github.com/canonical/dynq/internal/bsongen"
	"github.com/canonical/dynq/internal/plan"
)

// Collection is a deferred query over a collection. Documents are decoded
// into T with the bson tags of its fields.
type Collection[T any] struct {
	coll   *mongo.Collection
	logger *slog.Logger
	plan   *plan.Plan
}

var _ dynq.Source[struct{}] = (*Collection[struct{}])(nil)

// New returns a source over coll. If logger is nil, nothing is logged.
func New[T any](coll *mongo.Collection, logger *slog.Logger) *Collection[T] {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(discard{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	}
	return &Collection[T]{coll: coll, logger: logger}
}

func (c *Collection[T]) Provider() dynq.Provider {
	return dynq.MongoDB
}

func (c *Collection[T]) Apply(p *dynq.Plan) (dynq.Source[T], error) {
	next := *c
	next.plan = c.plan.Then(p)
	return &next, nil
}

// Query renders the filter document and sort of the applied plan.
func (c *Collection[T]) Query() (bson.M, bson.D, error) {
	filter, err := bsongen.Filter(c.plan)
	if err != nil {
		return nil, nil, &dynq.Error{
			Kind: dynq.FilterExpressionGenerationError, Property: c.coll.Name(), Type: "mongodb", Err: err,
		}
	}
	return filter, bsongen.Sort(c.plan), nil
}

func (c *Collection[T]) All(ctx context.Context) ([]T, error) {
	return c.Slice(ctx, 0, -1)
}

func (c *Collection[T]) Count(ctx context.Context) (int, error) {
	filter, _, err := c.Query()
	if err != nil {
		return 0, err
	}
	c.logger.DebugContext(ctx, "counting documents", "collection", c.coll.Name(), "filter", filter)
	n, err := c.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, errors.Wrapf(err, "cannot count documents of collection %q", c.coll.Name())
	}
	return int(n), nil
}

func (c *Collection[T]) Slice(ctx context.Context, offset, limit int) ([]T, error) {
	filter, sort, err := c.Query()
	if err != nil {
		return nil, err
	}
	findOptions := options.Find()
	if sort != nil {
		findOptions.SetSort(sort)
	}
	if offset > 0 {
		findOptions.SetSkip(int64(offset))
	}
	if limit >= 0 {
		if limit == 0 {
			return []T{}, nil
		}
		findOptions.SetLimit(int64(limit))
	}
	c.logger.DebugContext(ctx, "finding documents", "collection", c.coll.Name(), "filter", filter, "sort", sort)

	cursor, err := c.coll.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot query collection %q", c.coll.Name())
	}
	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, errors.Wrapf(err, "cannot decode documents of collection %q", c.coll.Name())
	}
	return out, nil
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
