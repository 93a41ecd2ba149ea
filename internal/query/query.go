// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package query holds the request and option types shared by the build
// pipeline, the translators and the sources.
package query

import (
	"fmt"
	"strings"
	"time"
)

// Operator is a filter operator.
type Operator int

const (
	Equals Operator = iota
	DoesNotEqual
	GreaterThan
	GreaterThanOrEqual
	LessThan
	LessThanOrEqual
	Contains
	DoesNotContain
	StartsWith
	EndsWith
	IsEmpty
	IsNotEmpty
	Regex
)

var operatorNames = [...]string{
	Equals:             "Equals",
	DoesNotEqual:       "DoesNotEqual",
	GreaterThan:        "GreaterThan",
	GreaterThanOrEqual: "GreaterThanOrEqual",
	LessThan:           "LessThan",
	LessThanOrEqual:    "LessThanOrEqual",
	Contains:           "Contains",
	DoesNotContain:     "DoesNotContain",
	StartsWith:         "StartsWith",
	EndsWith:           "EndsWith",
	IsEmpty:            "IsEmpty",
	IsNotEmpty:         "IsNotEmpty",
	Regex:              "Regex",
}

// Operators lists every operator in declaration order.
func Operators() []Operator {
	ops := make([]Operator, len(operatorNames))
	for i := range ops {
		ops[i] = Operator(i)
	}
	return ops
}

func (o Operator) String() string {
	if o < 0 || int(o) >= len(operatorNames) {
		return fmt.Sprintf("Operator(%d)", int(o))
	}
	return operatorNames[o]
}

// IsString reports whether the operator compares the string form of a
// value.
func (o Operator) IsString() bool {
	switch o {
	case Contains, DoesNotContain, StartsWith, EndsWith, IsEmpty, IsNotEmpty, Regex:
		return true
	}
	return false
}

// IsOrdering reports whether the operator needs an ordered type.
func (o Operator) IsOrdering() bool {
	switch o {
	case GreaterThan, GreaterThanOrEqual, LessThan, LessThanOrEqual:
		return true
	}
	return false
}

// ParseOperator parses an operator name case-insensitively. Short forms
// such as "eq", "ne", "gt" and "~" are accepted too.
func ParseOperator(s string) (Operator, error) {
	s = strings.TrimSpace(s)
	for i, name := range operatorNames {
		if strings.EqualFold(name, s) {
			return Operator(i), nil
		}
	}
	if op, ok := operatorShortNames[strings.ToLower(s)]; ok {
		return op, nil
	}
	return 0, fmt.Errorf("unknown operator %q", s)
}

var operatorShortNames = map[string]Operator{
	"eq":  Equals,
	"==":  Equals,
	"ne":  DoesNotEqual,
	"!=":  DoesNotEqual,
	"gt":  GreaterThan,
	">":   GreaterThan,
	"gte": GreaterThanOrEqual,
	">=":  GreaterThanOrEqual,
	"lt":  LessThan,
	"<":   LessThan,
	"lte": LessThanOrEqual,
	"<=":  LessThanOrEqual,
	"~":   Regex,
}

func (o Operator) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Operator) UnmarshalText(b []byte) error {
	op, err := ParseOperator(string(b))
	if err != nil {
		return err
	}
	*o = op
	return nil
}

// StringComparison selects how string operators compare text on sources
// that honour a comparer.
type StringComparison int

const (
	// Ordinal compares code points.
	Ordinal StringComparison = iota
	// OrdinalIgnoreCase compares case-folded code points.
	OrdinalIgnoreCase
	// Linguistic compares with the collation rules of the filter locale.
	Linguistic
	// LinguisticIgnoreCase compares with the collation rules of the filter
	// locale, ignoring case.
	LinguisticIgnoreCase
)

var comparisonNames = [...]string{
	Ordinal:              "Ordinal",
	OrdinalIgnoreCase:    "OrdinalIgnoreCase",
	Linguistic:           "Linguistic",
	LinguisticIgnoreCase: "LinguisticIgnoreCase",
}

func (c StringComparison) String() string {
	if c < 0 || int(c) >= len(comparisonNames) {
		return fmt.Sprintf("StringComparison(%d)", int(c))
	}
	return comparisonNames[c]
}

// IgnoreCase reports whether the comparison folds case.
func (c StringComparison) IgnoreCase() bool {
	return c == OrdinalIgnoreCase || c == LinguisticIgnoreCase
}

func ParseStringComparison(s string) (StringComparison, error) {
	for i, name := range comparisonNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return StringComparison(i), nil
		}
	}
	return 0, fmt.Errorf("unknown string comparison %q", s)
}

func (c StringComparison) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *StringComparison) UnmarshalText(b []byte) error {
	v, err := ParseStringComparison(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Lookup controls how property path segments are matched against struct
// fields.
type Lookup struct {
	// MatchCase requires segments to match field names exactly.
	MatchCase bool
	// MatchTags also matches segments against json and db tag names.
	MatchTags bool
}

// Filter is one filter condition.
type Filter struct {
	// Property is a dotted property path, e.g. "Address.City".
	Property string   `json:"property" yaml:"property"`
	Operator Operator `json:"operator" yaml:"operator"`
	// Value is the textual value. Nil means absent.
	Value *string `json:"value,omitempty" yaml:"value,omitempty"`
	// Locale is a BCP 47 tag used to parse Value and to format the property
	// for string operators. Empty means the request locale.
	Locale string `json:"locale,omitempty" yaml:"locale,omitempty"`
	// Format is an exact parse and format layout: a time layout for
	// temporal properties, a fmt verb for numeric ones.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// Sort is one sort key.
type Sort struct {
	Property   string `json:"property" yaml:"property"`
	Descending bool   `json:"descending,omitempty" yaml:"descending,omitempty"`
	// Locale selects the collation for linguistic string sorting.
	Locale string `json:"locale,omitempty" yaml:"locale,omitempty"`
}

// Request is a dynamic query request.
type Request struct {
	Filters []Filter `json:"filters,omitempty" yaml:"filters,omitempty"`
	// Expression combines filters by index, e.g. "(0 && 1) || !2".
	// Empty means all filters are combined with &&.
	Expression string `json:"expression,omitempty" yaml:"expression,omitempty"`
	Sorts      []Sort `json:"sorts,omitempty" yaml:"sorts,omitempty"`
	// Locale is the default locale for filters and sorts that name none.
	Locale string `json:"locale,omitempty" yaml:"locale,omitempty"`
}

// Clone returns a copy of r that shares no slices with r.
func (r Request) Clone() Request {
	c := r
	c.Filters = append([]Filter(nil), r.Filters...)
	c.Sorts = append([]Sort(nil), r.Sorts...)
	return c
}

// Options configures a build.
type Options struct {
	// PropertyMapping maps request-facing aliases to property paths.
	PropertyMapping map[string]string
	// ExposeMappedProperties keeps mapped property paths addressable by
	// their own names. When false only the aliases can reach them.
	ExposeMappedProperties bool
	// IncludedProperties, when non-empty, is the complete set of
	// addressable properties. It takes precedence over ExcludedProperties.
	IncludedProperties []string
	ExcludedProperties []string
	// OverrideLocation re-stamps the wall clock of parsed date-time values
	// in the given location.
	OverrideLocation *time.Location
	Lookup           Lookup
	StringComparison StringComparison
}
