// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package expr

import (
	"fmt"
	"reflect"
	"regexp"

	"golang.org/x/text/language"

	"github.com/canonical/dynq/internal/locale"
	"github.com/canonical/dynq/internal/schema"
)

// Node is a node of a query expression tree. The set of nodes is closed;
// every renderer switches over all of them.
type Node interface {
	// Kind is the kind of value the node yields. Predicates yield Bool.
	Kind() schema.Kind

	// Nullable reports whether the node can yield null.
	Nullable() bool

	node()
}

// Member reads the leaf of a property path. It yields null if the leaf or
// any hop before it is nil.
type Member struct {
	Path *schema.Path
}

// NilHop tests whether the hop at position Hop of Path is nil.
type NilHop struct {
	Path *schema.Path
	Hop  int
}

// Const is a normalized constant. A nil Value is the null constant.
type Const struct {
	Value any
	Of    schema.Kind
	// Type is the non-pointer property type the constant was parsed for.
	Type reflect.Type
}

// CompareOp is a binary comparison.
type CompareOp int

const (
	Eq CompareOp = iota
	Ne
	Gt
	Ge
	Lt
	Le
)

var compareSymbols = [...]string{Eq: "==", Ne: "!=", Gt: ">", Ge: ">=", Lt: "<", Le: "<="}

func (op CompareOp) String() string {
	return compareSymbols[op]
}

// Compare compares two operands with lifted null semantics: equality holds
// when both are null, inequality when exactly one is, and every ordering
// comparison involving null is false.
type Compare struct {
	Op          CompareOp
	Left, Right Node
}

// IsNull tests its operand for null.
type IsNull struct {
	X Node
}

type And struct {
	Left, Right Node
}

type Or struct {
	Left, Right Node
}

type Not struct {
	X Node
}

// MatchOp is a string matching operation.
type MatchOp int

const (
	Equal MatchOp = iota
	Prefix
	Suffix
	Substring
)

var matchNames = [...]string{Equal: "Equals", Prefix: "StartsWith", Suffix: "EndsWith", Substring: "Contains"}

func (op MatchOp) String() string {
	return matchNames[op]
}

// Mode selects how Match compares text.
type Mode int

const (
	// Native leaves comparison to the source.
	Native Mode = iota
	Ordinal
	OrdinalIgnoreCase
	Linguistic
	LinguisticIgnoreCase
)

var modeNames = [...]string{
	Native:               "native",
	Ordinal:              "ordinal",
	OrdinalIgnoreCase:    "ordinal-ignore-case",
	Linguistic:           "linguistic",
	LinguisticIgnoreCase: "linguistic-ignore-case",
}

func (m Mode) String() string {
	return modeNames[m]
}

// Match matches the string X against Pattern. A null X never matches.
type Match struct {
	Op         MatchOp
	X, Pattern Node
	Mode       Mode
	// Tag is the collation language for the linguistic modes.
	Tag language.Tag
}

// Blank tests whether a string is null, empty or only white space.
type Blank struct {
	X Node
}

// Regex tests whether a string matches a regular expression. A null X
// never matches.
type Regex struct {
	X       Node
	Pattern string
	re      *regexp.Regexp
}

// NewRegex compiles pattern and returns a Regex node.
func NewRegex(x Node, pattern string) (*Regex, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regular expression: %w", err)
	}
	return &Regex{X: x, Pattern: pattern, re: re}, nil
}

// Format renders a non-string operand as a string.
type Format struct {
	X Node
	// Of and Type describe the operand.
	Of   schema.Kind
	Type reflect.Type
	// Native leaves the rendering to the source. Otherwise Locale and
	// Layout drive it.
	Native bool
	Locale locale.Locale
	Layout string
}

// Coalesce yields X, or Fallback if X is null.
type Coalesce struct {
	X, Fallback Node
}

// Cond yields Then if the predicate If holds, otherwise Else.
type Cond struct {
	If, Then, Else Node
}

func (n *Member) Kind() schema.Kind   { return n.Path.Kind }
func (n *NilHop) Kind() schema.Kind   { return schema.Bool }
func (n *Const) Kind() schema.Kind    { return n.Of }
func (n *Compare) Kind() schema.Kind  { return schema.Bool }
func (n *IsNull) Kind() schema.Kind   { return schema.Bool }
func (n *And) Kind() schema.Kind      { return schema.Bool }
func (n *Or) Kind() schema.Kind       { return schema.Bool }
func (n *Not) Kind() schema.Kind      { return schema.Bool }
func (n *Match) Kind() schema.Kind    { return schema.Bool }
func (n *Blank) Kind() schema.Kind    { return schema.Bool }
func (n *Regex) Kind() schema.Kind    { return schema.Bool }
func (n *Format) Kind() schema.Kind   { return schema.String }
func (n *Coalesce) Kind() schema.Kind { return n.X.Kind() }
func (n *Cond) Kind() schema.Kind     { return n.Then.Kind() }

func (n *Member) Nullable() bool   { return n.Path.Nullable() || n.Path.AncestorNullable() }
func (n *NilHop) Nullable() bool   { return false }
func (n *Const) Nullable() bool    { return n.Value == nil }
func (n *Compare) Nullable() bool  { return false }
func (n *IsNull) Nullable() bool   { return false }
func (n *And) Nullable() bool      { return false }
func (n *Or) Nullable() bool       { return false }
func (n *Not) Nullable() bool      { return false }
func (n *Match) Nullable() bool    { return false }
func (n *Blank) Nullable() bool    { return false }
func (n *Regex) Nullable() bool    { return false }
func (n *Format) Nullable() bool   { return n.X.Nullable() }
func (n *Coalesce) Nullable() bool { return n.Fallback.Nullable() }
func (n *Cond) Nullable() bool     { return n.Then.Nullable() || n.Else.Nullable() }

func (*Member) node()   {}
func (*NilHop) node()   {}
func (*Const) node()    {}
func (*Compare) node()  {}
func (*IsNull) node()   {}
func (*And) node()      {}
func (*Or) node()       {}
func (*Not) node()      {}
func (*Match) node()    {}
func (*Blank) node()    {}
func (*Regex) node()    {}
func (*Format) node()   {}
func (*Coalesce) node() {}
func (*Cond) node()     {}

// AndAll joins nodes with And, left to right. It returns nil for no nodes.
func AndAll(nodes ...Node) Node {
	var out Node
	for _, n := range nodes {
		if out == nil {
			out = n
		} else {
			out = &And{Left: out, Right: n}
		}
	}
	return out
}

// OrAll joins nodes with Or, left to right. It returns nil for no nodes.
func OrAll(nodes ...Node) Node {
	var out Node
	for _, n := range nodes {
		if out == nil {
			out = n
		} else {
			out = &Or{Left: out, Right: n}
		}
	}
	return out
}

// String constant helper.
func String(s string) *Const {
	return &Const{Value: s, Of: schema.String, Type: reflect.TypeOf("")}
}
