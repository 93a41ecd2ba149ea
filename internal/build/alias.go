// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package build

import (
	"maps"
	"slices"

	"github.com/canonical/dynq/internal/qerr"
)

// applyAliases rewrites every filter and sort property through the
// property mapping. Unless mapped properties are exposed, naming a mapping
// target directly is rejected as if the property did not exist. An alias
// spelled exactly like the property wins over ones equal only by case,
// which are otherwise tried in sorted order.
func (p *pass) applyAliases() error {
	hidden := make(map[string]bool)
	if !p.opts.ExposeMappedProperties {
		for _, target := range p.opts.PropertyMapping {
			hidden[p.canonical(target)] = true
		}
	}

	aliases := slices.Sorted(maps.Keys(p.opts.PropertyMapping))
	mapProperty := func(property string) (string, error) {
		if target, ok := p.opts.PropertyMapping[property]; ok {
			return p.canonical(target), nil
		}
		for _, alias := range aliases {
			if p.equal(alias, property) {
				return p.canonical(p.opts.PropertyMapping[alias]), nil
			}
		}
		canonical := p.canonical(property)
		if hidden[canonical] {
			return "", qerr.Missing(property)
		}
		return canonical, nil
	}

	p.filterPaths = make([]string, len(p.req.Filters))
	for i, f := range p.req.Filters {
		path, err := mapProperty(f.Property)
		if err != nil {
			return err
		}
		p.filterPaths[i] = path
	}
	p.sortPaths = make([]string, len(p.req.Sorts))
	for i, s := range p.req.Sorts {
		path, err := mapProperty(s.Property)
		if err != nil {
			return err
		}
		p.sortPaths[i] = path
	}
	return nil
}

// checkScreening enforces the included and excluded property lists on
// canonical paths. A non-empty include list takes precedence.
func (p *pass) checkScreening() error {
	include := len(p.opts.IncludedProperties) > 0
	if !include && len(p.opts.ExcludedProperties) == 0 {
		return nil
	}
	list := p.opts.ExcludedProperties
	if include {
		list = p.opts.IncludedProperties
	}
	listed := make(map[string]bool, len(list))
	for _, property := range list {
		listed[p.canonical(property)] = true
	}

	check := func(property, canonical string) error {
		if listed[canonical] != include {
			return qerr.Missing(property)
		}
		return nil
	}
	for i, f := range p.req.Filters {
		if err := check(f.Property, p.filterPaths[i]); err != nil {
			return err
		}
	}
	for i, s := range p.req.Sorts {
		if err := check(s.Property, p.sortPaths[i]); err != nil {
			return err
		}
	}
	return nil
}
