// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package bsongen renders plans as MongoDB aggregation expressions.
//
// Filters become a single $expr document so that the null semantics of
// the in-process evaluator can be reproduced. Nested structs are embedded
// documents addressed by dotted bson keys. Durations are stored as
// integer nanoseconds, decimals as Decimal128.
package bsongen

import (
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/cockroachdb/apd/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/canonical/dynq/internal/expr"
	"github.com/canonical/dynq/internal/plan"
	"github.com/canonical/dynq/internal/schema"
)

const millisPerDay = 24 * 60 * 60 * 1000

// Filter renders the filter of p as a query document. A plan without a
// filter matches every document.
func Filter(p *plan.Plan) (bson.M, error) {
	if p == nil || p.Filter == nil {
		return bson.M{}, nil
	}
	e, err := Expr(p.Filter)
	if err != nil {
		return nil, err
	}
	return bson.M{"$expr": e}, nil
}

// Sort renders the ordering of p, or nil if it has none.
func Sort(p *plan.Plan) bson.D {
	if p == nil || len(p.Order) == 0 {
		return nil
	}
	d := make(bson.D, len(p.Order))
	for i, key := range p.Order {
		dir := 1
		if key.Descending {
			dir = -1
		}
		d[i] = bson.E{Key: key.Member.Path.Key(), Value: dir}
	}
	return d
}

// Expr renders a node as an aggregation expression.
func Expr(n expr.Node) (any, error) {
	switch n := n.(type) {
	case *expr.Member:
		return member(n.Path), nil
	case *expr.NilHop:
		return isNull(field(n.Path.Prefix(n.Hop + 1))), nil
	case *expr.Const:
		return constant(n)
	case *expr.Compare:
		return compare(n)
	case *expr.IsNull:
		x, err := Expr(n.X)
		if err != nil {
			return nil, err
		}
		return isNull(x), nil
	case *expr.And:
		return binary("$and", n.Left, n.Right)
	case *expr.Or:
		return binary("$or", n.Left, n.Right)
	case *expr.Not:
		x, err := Expr(n.X)
		if err != nil {
			return nil, err
		}
		return bson.M{"$not": bson.A{x}}, nil
	case *expr.Match:
		return match(n)
	case *expr.Blank:
		x, err := Expr(n.X)
		if err != nil {
			return nil, err
		}
		trimmed := bson.M{"$trim": bson.M{"input": bson.M{"$ifNull": bson.A{x, ""}}}}
		return bson.M{"$eq": bson.A{trimmed, ""}}, nil
	case *expr.Regex:
		x, err := Expr(n.X)
		if err != nil {
			return nil, err
		}
		return bson.M{"$regexMatch": bson.M{"input": x, "regex": n.Pattern}}, nil
	case *expr.Format:
		if !n.Native {
			return nil, fmt.Errorf("locale-aware formatting is not supported by mongodb")
		}
		x, err := Expr(n.X)
		if err != nil {
			return nil, err
		}
		return bson.M{"$toString": x}, nil
	case *expr.Coalesce:
		return binary("$ifNull", n.X, n.Fallback)
	case *expr.Cond:
		c, err := Expr(n.If)
		if err != nil {
			return nil, err
		}
		t, err := Expr(n.Then)
		if err != nil {
			return nil, err
		}
		e, err := Expr(n.Else)
		if err != nil {
			return nil, err
		}
		return bson.M{"$cond": bson.A{c, t, e}}, nil
	}
	return nil, fmt.Errorf("internal error: unknown node %T", n)
}

func field(p *schema.Path) string {
	return "$" + p.Key()
}

// member renders a leaf, projecting dates to their day and clock times to
// milliseconds since midnight.
func member(p *schema.Path) any {
	f := field(p)
	switch p.Kind {
	case schema.Date:
		return bson.M{"$dateTrunc": bson.M{"date": f, "unit": "day"}}
	case schema.Clock:
		return bson.M{"$mod": bson.A{bson.M{"$toLong": f}, millisPerDay}}
	}
	return f
}

func isNull(x any) bson.M {
	return bson.M{"$eq": bson.A{bson.M{"$ifNull": bson.A{x, nil}}, nil}}
}

func binary(op string, left, right expr.Node) (any, error) {
	l, err := Expr(left)
	if err != nil {
		return nil, err
	}
	r, err := Expr(right)
	if err != nil {
		return nil, err
	}
	return bson.M{op: bson.A{l, r}}, nil
}

var compareOps = [...]string{expr.Eq: "$eq", expr.Ne: "$ne", expr.Gt: "$gt", expr.Ge: "$gte", expr.Lt: "$lt", expr.Le: "$lte"}

// compare renders a comparison. Ordering comparisons in aggregation rank
// null below every value, so nullable operands are checked first.
func compare(n *expr.Compare) (any, error) {
	l, err := Expr(n.Left)
	if err != nil {
		return nil, err
	}
	r, err := Expr(n.Right)
	if err != nil {
		return nil, err
	}
	if n.Left.Nullable() {
		l = bson.M{"$ifNull": bson.A{l, nil}}
	}
	if n.Right.Nullable() {
		r = bson.M{"$ifNull": bson.A{r, nil}}
	}
	cmp := bson.M{compareOps[n.Op]: bson.A{l, r}}
	if n.Op == expr.Eq || n.Op == expr.Ne {
		return cmp, nil
	}
	var checks bson.A
	if n.Left.Nullable() {
		checks = append(checks, bson.M{"$ne": bson.A{l, nil}})
	}
	if n.Right.Nullable() {
		checks = append(checks, bson.M{"$ne": bson.A{r, nil}})
	}
	if len(checks) == 0 {
		return cmp, nil
	}
	return bson.M{"$and": append(checks, cmp)}, nil
}

func match(n *expr.Match) (any, error) {
	if n.Mode != expr.Native && n.Mode != expr.Ordinal {
		return nil, fmt.Errorf("%s string comparison is not supported by mongodb", n.Mode)
	}
	x, err := Expr(n.X)
	if err != nil {
		return nil, err
	}
	if n.Op == expr.Equal {
		p, err := Expr(n.Pattern)
		if err != nil {
			return nil, err
		}
		return bson.M{"$eq": bson.A{x, p}}, nil
	}
	c, ok := n.Pattern.(*expr.Const)
	if !ok {
		return nil, fmt.Errorf("internal error: match pattern must be a constant")
	}
	s, ok := c.Value.(string)
	if !ok {
		return nil, fmt.Errorf("internal error: match pattern must be a string")
	}
	re := regexp.QuoteMeta(s)
	switch n.Op {
	case expr.Prefix:
		re = "^" + re
	case expr.Suffix:
		re += "$"
	}
	return bson.M{"$regexMatch": bson.M{"input": x, "regex": re}}, nil
}

func constant(c *expr.Const) (any, error) {
	switch v := c.Value.(type) {
	case nil:
		return nil, nil
	case string:
		return bson.M{"$literal": v}, nil
	case rune:
		return int32(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return float64(v), nil
		}
		return int64(v), nil
	case *apd.Decimal:
		d, err := primitive.ParseDecimal128(v.String())
		if err != nil {
			return nil, err
		}
		return d, nil
	case time.Duration:
		if c.Of == schema.Clock {
			return int64(v / time.Millisecond), nil
		}
		return int64(v), nil
	case time.Time:
		return primitive.NewDateTimeFromTime(v), nil
	}
	return c.Value, nil
}
