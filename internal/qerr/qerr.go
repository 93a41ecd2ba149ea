// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package qerr

import (
	"fmt"
)

// Kind classifies a query build failure.
type Kind int

const (
	MissingProperty Kind = iota
	ValueParseError
	MalformedFilterExpression
	IncorrectFilterExpressionIndex
	UnsupportedStringComparisonType
	FilterExpressionGenerationError
	InvalidOperator
	SortExpressionGenerationError
)

var kindNames = [...]string{
	MissingProperty:                 "MissingProperty",
	ValueParseError:                 "ValueParseError",
	MalformedFilterExpression:       "MalformedFilterExpression",
	IncorrectFilterExpressionIndex:  "IncorrectFilterExpressionIndex",
	UnsupportedStringComparisonType: "UnsupportedStringComparisonType",
	FilterExpressionGenerationError: "FilterExpressionGenerationError",
	InvalidOperator:                 "InvalidOperator",
	SortExpressionGenerationError:   "SortExpressionGenerationError",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Error is returned for every failure while building a query. Only the
// fields relevant to Kind are set.
type Error struct {
	Kind Kind

	// Property is the property path as written in the request.
	Property string
	// Type is the name of the resolved property type.
	Type string
	// Operator is the name of the filter operator.
	Operator string
	// Value is the raw filter value, the rendered constant or the filter
	// expression, depending on Kind.
	Value string
	// Index is the out of range filter index.
	Index int

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	return e.Kind.String() + " - " + e.message()
}

func (e *Error) message() string {
	switch e.Kind {
	case MissingProperty:
		return fmt.Sprintf("property %q could not be found; check the spelling, the property "+
			"mapping and the included or excluded properties in the build options", e.Property)
	case ValueParseError:
		return fmt.Sprintf("value %q for filter on property %q could not be parsed; check the "+
			"formatting or supply an exact parse format", e.Value, e.Property)
	case MalformedFilterExpression:
		return fmt.Sprintf("filter expression %q is invalid; check for unclosed brackets or "+
			"incorrectly typed operators (e.g. & instead of &&)", e.Value)
	case IncorrectFilterExpressionIndex:
		return fmt.Sprintf("filter with index %d does not exist; filters are indexed from 0", e.Index)
	case UnsupportedStringComparisonType:
		return fmt.Sprintf("property type %s is not supported for string comparisons", e.Type)
	case FilterExpressionGenerationError:
		return fmt.Sprintf("cannot generate filter expression for property %q with type %q, "+
			"operator %q and constant %s: %v", e.Property, e.Type, e.Operator, e.Value, e.Err)
	case InvalidOperator:
		return fmt.Sprintf("operator %q is not supported for type %q", e.Operator, e.Type)
	case SortExpressionGenerationError:
		return fmt.Sprintf("cannot generate sort expression for property %q with type %q: %v",
			e.Property, e.Type, e.Err)
	}
	return "unknown error"
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind. This allows
// errors.Is(err, &Error{Kind: MissingProperty}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func Missing(property string) *Error {
	return &Error{Kind: MissingProperty, Property: property}
}

func Parse(value, property string) *Error {
	return &Error{Kind: ValueParseError, Value: value, Property: property}
}

func Malformed(pattern string) *Error {
	return &Error{Kind: MalformedFilterExpression, Value: pattern}
}

func Index(i int) *Error {
	return &Error{Kind: IncorrectFilterExpressionIndex, Index: i}
}

func UnsupportedString(typeName string) *Error {
	return &Error{Kind: UnsupportedStringComparisonType, Type: typeName}
}

func Operator(operator, typeName string) *Error {
	return &Error{Kind: InvalidOperator, Operator: operator, Type: typeName}
}

func Filter(property, typeName, operator, constant string, err error) *Error {
	return &Error{
		Kind:     FilterExpressionGenerationError,
		Property: property,
		Type:     typeName,
		Operator: operator,
		Value:    constant,
		Err:      err,
	}
}

func Sort(property, typeName string, err error) *Error {
	return &Error{Kind: SortExpressionGenerationError, Property: property, Type: typeName, Err: err}
}
