// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package expr

import (
	"fmt"
	"reflect"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/search"

	"github.com/canonical/dynq/internal/coerce"
	"github.com/canonical/dynq/internal/schema"
)

// Test evaluates the predicate n against rec, a value of the root struct
// type. A null result is false.
func Test(n Node, rec reflect.Value) (bool, error) {
	v, err := Eval(n, rec)
	if err != nil {
		return false, err
	}
	b, _ := v.(bool)
	return b, nil
}

// Eval evaluates n against rec and returns a normalized value, or nil for
// null.
func Eval(n Node, rec reflect.Value) (any, error) {
	switch n := n.(type) {
	case *Member:
		v, ok := Walk(rec, n.Path.Hops)
		if !ok {
			return nil, nil
		}
		return coerce.Normalize(v, n.Path.Kind)
	case *NilHop:
		_, ok := Walk(rec, n.Path.Hops[:n.Hop+1])
		return !ok, nil
	case *Const:
		return n.Value, nil
	case *Compare:
		l, err := Eval(n.Left, rec)
		if err != nil {
			return nil, err
		}
		r, err := Eval(n.Right, rec)
		if err != nil {
			return nil, err
		}
		return compare(n.Op, l, r)
	case *IsNull:
		v, err := Eval(n.X, rec)
		return v == nil, err
	case *And:
		l, err := Test(n.Left, rec)
		if err != nil || !l {
			return false, err
		}
		return Test(n.Right, rec)
	case *Or:
		l, err := Test(n.Left, rec)
		if err != nil || l {
			return l, err
		}
		return Test(n.Right, rec)
	case *Not:
		b, err := Test(n.X, rec)
		return !b, err
	case *Match:
		s, ok, err := evalString(n.X, rec)
		if err != nil || !ok {
			return false, err
		}
		pat, ok, err := evalString(n.Pattern, rec)
		if err != nil || !ok {
			return false, err
		}
		return matchString(n.Op, n.Mode, n.Tag, s, pat), nil
	case *Blank:
		s, ok, err := evalString(n.X, rec)
		if err != nil {
			return nil, err
		}
		return !ok || strings.TrimSpace(s) == "", nil
	case *Regex:
		s, ok, err := evalString(n.X, rec)
		if err != nil || !ok {
			return false, err
		}
		return n.re.MatchString(s), nil
	case *Format:
		v, err := Eval(n.X, rec)
		if err != nil || v == nil {
			return nil, err
		}
		f := coerce.Formatter{Locale: n.Locale, Layout: n.Layout}
		return f.Format(v, n.Of, n.Type), nil
	case *Coalesce:
		v, err := Eval(n.X, rec)
		if err != nil || v != nil {
			return v, err
		}
		return Eval(n.Fallback, rec)
	case *Cond:
		b, err := Test(n.If, rec)
		if err != nil {
			return nil, err
		}
		if b {
			return Eval(n.Then, rec)
		}
		return Eval(n.Else, rec)
	}
	return nil, fmt.Errorf("internal error: unknown node %T", n)
}

// Walk follows hops from rec, dereferencing pointers on the way. It
// reports false if a pointer on the path, including the leaf, is nil.
func Walk(rec reflect.Value, hops []schema.Field) (reflect.Value, bool) {
	v := rec
	for _, h := range hops {
		if v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}, false
			}
			v = v.Elem()
		}
		v = v.Field(h.Index)
	}
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	return v, true
}

func evalString(n Node, rec reflect.Value) (string, bool, error) {
	v, err := Eval(n, rec)
	if err != nil || v == nil {
		return "", false, err
	}
	switch s := v.(type) {
	case string:
		return s, true, nil
	case rune:
		return string(s), true, nil
	}
	return "", false, fmt.Errorf("cannot match non-string value %T", v)
}

func compare(op CompareOp, l, r any) (bool, error) {
	if l == nil || r == nil {
		switch op {
		case Eq:
			return l == nil && r == nil, nil
		case Ne:
			return !(l == nil && r == nil), nil
		}
		return false, nil
	}
	c, err := coerce.Compare(l, r)
	if err != nil {
		return false, err
	}
	switch op {
	case Eq:
		return c == 0, nil
	case Ne:
		return c != 0, nil
	case Gt:
		return c > 0, nil
	case Ge:
		return c >= 0, nil
	case Lt:
		return c < 0, nil
	case Le:
		return c <= 0, nil
	}
	return false, fmt.Errorf("internal error: unknown comparison %d", op)
}

func matchString(op MatchOp, mode Mode, tag language.Tag, s, pat string) bool {
	switch mode {
	case Linguistic, LinguisticIgnoreCase:
		var opts []search.Option
		if mode == LinguisticIgnoreCase {
			opts = append(opts, search.IgnoreCase)
		}
		return matchLinguistic(op, search.New(tag, opts...), s, pat)
	case OrdinalIgnoreCase:
		s, pat = cases.Fold().String(s), cases.Fold().String(pat)
	}
	switch op {
	case Equal:
		return s == pat
	case Prefix:
		return strings.HasPrefix(s, pat)
	case Suffix:
		return strings.HasSuffix(s, pat)
	}
	return strings.Contains(s, pat)
}

func matchLinguistic(op MatchOp, m *search.Matcher, s, pat string) bool {
	if op == Equal {
		return m.EqualString(s, pat)
	}
	if pat == "" {
		return true
	}
	switch op {
	case Prefix:
		for i := range s {
			if i > 0 && m.EqualString(s[:i], pat) {
				return true
			}
		}
		return m.EqualString(s, pat)
	case Suffix:
		for i := range s {
			if m.EqualString(s[i:], pat) {
				return true
			}
		}
		return false
	}
	start, _ := m.IndexString(s, pat)
	return start >= 0
}
