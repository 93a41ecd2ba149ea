// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package build

import (
	"fmt"

	"github.com/canonical/dynq/internal/expr"
	"github.com/canonical/dynq/internal/locale"
	"github.com/canonical/dynq/internal/plan"
	"github.com/canonical/dynq/internal/qerr"
	"github.com/canonical/dynq/internal/query"
	"github.com/canonical/dynq/internal/schema"
)

// applySorts builds the sort keys in request order. The first key is the
// primary order; each later key only breaks ties.
func (p *pass) applySorts() error {
	if len(p.req.Sorts) == 0 {
		return nil
	}
	collation := p.translator.Capabilities().Collation
	keys := make([]plan.OrderKey, 0, len(p.req.Sorts))
	for i, s := range p.req.Sorts {
		path, err := p.resolve(p.sortPaths[i])
		if err != nil {
			return qerr.Missing(s.Property)
		}
		if !path.Kind.Ordered() {
			return qerr.Sort(s.Property, path.TypeName(), fmt.Errorf("type %s has no order", path.Kind))
		}
		key := plan.OrderKey{Member: &expr.Member{Path: path}, Descending: s.Descending}
		if collation && path.Kind == schema.String {
			tag := s.Locale
			if tag == "" {
				tag = p.req.Locale
			}
			loc, err := locale.Parse(tag)
			if err != nil {
				return qerr.Sort(s.Property, path.TypeName(), err)
			}
			key.Mode = sortMode(p.opts.StringComparison)
			key.Tag = loc.Tag
		}
		keys = append(keys, key)
	}
	p.plan.Order = keys
	return nil
}

func sortMode(c query.StringComparison) expr.Mode {
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
