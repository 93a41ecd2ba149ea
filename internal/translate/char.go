// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package translate

import (
	"fmt"
	"reflect"
	"unicode"

	"github.com/canonical/dynq/internal/expr"
	"github.com/canonical/dynq/internal/query"
	"github.com/canonical/dynq/internal/schema"
)

// spaces holds every code point that is blank on its own.
var spaces = func() []rune {
	var rs []rune
	for r := rune(0); r <= 0x3000; r++ {
		if unicode.IsSpace(r) {
			rs = append(rs, r)
		}
	}
	return rs
}()

var boolType = reflect.TypeOf(false)

func boolean(b bool) *expr.Const {
	return &expr.Const{Value: b, Of: schema.Bool, Type: boolType}
}

// realizeChar applies a string operator to a character as a comparison
// of code points. The text of a character is exactly one rune, so a
// pattern matches it only if it is empty or that same rune.
func realizeChar(op query.Operator, x expr.Node, t reflect.Type, constant *expr.Const) (expr.Node, error) {
	is := func(r rune) expr.Node {
		return &expr.Compare{Op: expr.Eq, Left: x, Right: &expr.Const{Value: r, Of: schema.Char, Type: t}}
	}
	switch op {
	case query.IsEmpty, query.IsNotEmpty:
		checks := make([]expr.Node, len(spaces))
		for i, r := range spaces {
			checks[i] = is(r)
		}
		blank := expr.OrAll(checks...)
		if op == query.IsNotEmpty {
			return &expr.Not{X: blank}, nil
		}
		return blank, nil
	case query.StartsWith, query.EndsWith, query.Contains, query.DoesNotContain:
	default:
		return nil, fmt.Errorf("operator %s cannot be applied to a character", op)
	}

	s, _ := constant.Value.(string)
	var match expr.Node
	switch rs := []rune(s); len(rs) {
	case 0:
		match = boolean(true)
	case 1:
		match = is(rs[0])
	default:
		match = boolean(false)
	}
	if op == query.DoesNotContain {
		return &expr.Not{X: match}, nil
	}
	return match, nil
}
