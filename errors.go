// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package dynq

import (
	"github.com/canonical/dynq/internal/qerr"
)

// Error is the error returned when a query cannot be built. Use
// [errors.As] to inspect it, or [errors.Is] with one of the Err values to
// test its kind.
type Error = qerr.Error

// ErrorKind classifies an [Error].
type ErrorKind = qerr.Kind

const (
	MissingProperty                 = qerr.MissingProperty
	ValueParseError                 = qerr.ValueParseError
	MalformedFilterExpression       = qerr.MalformedFilterExpression
	IncorrectFilterExpressionIndex  = qerr.IncorrectFilterExpressionIndex
	UnsupportedStringComparisonType = qerr.UnsupportedStringComparisonType
	FilterExpressionGenerationError = qerr.FilterExpressionGenerationError
	InvalidOperator                 = qerr.InvalidOperator
	SortExpressionGenerationError   = qerr.SortExpressionGenerationError
)

var (
	ErrMissingProperty                 = &Error{Kind: MissingProperty}
	ErrValueParse                      = &Error{Kind: ValueParseError}
	ErrMalformedFilterExpression       = &Error{Kind: MalformedFilterExpression}
	ErrIncorrectFilterExpressionIndex  = &Error{Kind: IncorrectFilterExpressionIndex}
	ErrUnsupportedStringComparisonType = &Error{Kind: UnsupportedStringComparisonType}
	ErrFilterExpressionGeneration      = &Error{Kind: FilterExpressionGenerationError}
	ErrInvalidOperator                 = &Error{Kind: InvalidOperator}
	ErrSortExpressionGeneration        = &Error{Kind: SortExpressionGenerationError}
)
