// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package build compiles a query request into a plan for one provider.
package build

import (
	"reflect"
	"strings"

	"github.com/canonical/dynq/internal/plan"
	"github.com/canonical/dynq/internal/query"
	"github.com/canonical/dynq/internal/schema"
	"github.com/canonical/dynq/internal/translate"
)

// stage is a state of a compile pass. Passes move through the stages in
// order; a request without filters and sorts goes from start to done.
type stage int

const (
	start stage = iota
	aliasesApplied
	screeningChecked
	providerResolved
	filtersApplied
	sortsApplied
	done
)

var stageNames = [...]string{
	start:            "start",
	aliasesApplied:   "aliases applied",
	screeningChecked: "screening checked",
	providerResolved: "provider resolved",
	filtersApplied:   "filters applied",
	sortsApplied:     "sorts applied",
	done:             "done",
}

func (s stage) String() string {
	return stageNames[s]
}

// pass holds the state of one compilation. The request is a private copy;
// canonical property paths are kept alongside it.
type pass struct {
	root     reflect.Type
	req      query.Request
	opts     query.Options
	provider query.Provider

	stage stage

	// filterPaths and sortPaths hold the canonical property path of each
	// filter and sort once aliases are applied.
	filterPaths []string
	sortPaths   []string

	translator translate.Translator
	plan       *plan.Plan
}

// Compile builds the plan of req over the struct type root for provider.
// It performs no I/O and does not modify req.
func Compile(root reflect.Type, req query.Request, opts query.Options, provider query.Provider) (*plan.Plan, error) {
	for root.Kind() == reflect.Pointer {
		root = root.Elem()
	}
	if _, err := schema.TypeInfo(root); err != nil {
		return nil, err
	}
	p := &pass{
		root:     root,
		req:      req.Clone(),
		opts:     opts,
		provider: provider,
		plan:     &plan.Plan{Provider: provider},
	}
	for p.stage != done {
		if err := p.step(); err != nil {
			return nil, err
		}
	}
	return p.plan, nil
}

// step performs the work of the current stage and advances to the next.
func (p *pass) step() error {
	var err error
	next := p.stage + 1
	switch p.stage {
	case start:
		if len(p.req.Filters) == 0 && len(p.req.Sorts) == 0 {
			next = done
			break
		}
		err = p.applyAliases()
	case aliasesApplied:
		err = p.checkScreening()
	case screeningChecked:
		p.translator = translate.For(p.provider)
	case providerResolved:
		err = p.applyFilters()
	case filtersApplied:
		err = p.applySorts()
	}
	if err != nil {
		return err
	}
	p.stage = next
	return nil
}

func (p *pass) resolve(property string) (*schema.Path, error) {
	return schema.Resolve(p.root, property, p.opts.Lookup.MatchCase, p.opts.Lookup.MatchTags)
}

// canonical returns the canonical form of a property path, or the path
// itself if it does not resolve.
func (p *pass) canonical(property string) string {
	path, err := p.resolve(property)
	if err != nil {
		return property
	}
	return path.String()
}

func (p *pass) equal(a, b string) bool {
	if p.opts.Lookup.MatchCase {
		return a == b
	}
	return strings.EqualFold(a, b)
}
