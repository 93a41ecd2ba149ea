// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package memory

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"

	"github.com/canonical/dynq/internal/coerce"
	"github.com/canonical/dynq/internal/expr"
	"github.com/canonical/dynq/internal/plan"
)

// comparer orders two normalized sort values. Nil sorts first.
type comparer func(a, b any) (int, error)

func newComparer(key plan.OrderKey) comparer {
	var base comparer = coerce.Compare
	switch key.Mode {
	case expr.OrdinalIgnoreCase:
		fold := cases.Fold()
		base = func(a, b any) (int, error) {
			x, y, ok := bothStrings(a, b)
			if !ok {
				return coerce.Compare(a, b)
			}
			return strings.Compare(fold.String(x), fold.String(y)), nil
		}
	case expr.Linguistic, expr.LinguisticIgnoreCase:
		var opts []collate.Option
		if key.Mode == expr.LinguisticIgnoreCase {
			opts = append(opts, collate.IgnoreCase)
		}
		c := collate.New(key.Tag, opts...)
		base = func(a, b any) (int, error) {
			x, y, ok := bothStrings(a, b)
			if !ok {
				return coerce.Compare(a, b)
			}
			return c.CompareString(x, y), nil
		}
	}
	return func(a, b any) (int, error) {
		var c int
		var err error
		switch {
		case a == nil && b == nil:
		case a == nil:
			c = -1
		case b == nil:
			c = 1
		default:
			c, err = base(a, b)
		}
		if key.Descending {
			c = -c
		}
		return c, err
	}
}

func bothStrings(a, b any) (string, string, bool) {
	x, ok := a.(string)
	if !ok {
		return "", "", false
	}
	y, ok := b.(string)
	return x, y, ok
}
