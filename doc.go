/*
Package dynq compiles dynamic query requests into queries over typed data sources.

A request is a list of filters, an optional expression combining them and a list of sorts.
Each filter names a property of a Go struct, an operator and an optional value given as text.
The request is checked against the struct type, the values are parsed into the property types and the result is a plan that is applied to a source: a slice in memory, a table of a SQL database or a MongoDB collection.
Nothing is read until the results of the source are requested.

# Basics

Given the struct:

	type Person struct {
		Name    string     `db:"name" json:"name"`
		Age     int        `db:"age" json:"age"`
		Address *Address   `db:"address" json:"address"`
	}

	type Address struct {
		City string `db:"city" json:"city"`
	}

The people over 30 that live in a city containing "ford" are found with:

	req := dynq.QueryRequest{
		Filters: []dynq.FilterDefinition{
			{Property: "Age", Operator: dynq.GreaterThan, Value: dynq.Value("30")},
			{Property: "Address.City", Operator: dynq.Contains, Value: dynq.Value("ford")},
		},
		Sorts: []dynq.SortDefinition{{Property: "Name"}},
	}
	src, err := dynq.Apply[Person](memory.New(people), req, dynq.Options{})
	if err != nil {
		return err
	}
	found, err := src.All(ctx)

Property paths are dotted field names and are matched case-insensitively unless [LookupFlags] says otherwise.
A filter on a nested property only matches items where every pointer on the way to it is set, so "Address.City" never matches a person without an address.
Filters that only hold when the value is absent, such as DoesNotEqual, also match items where the path is broken.

# Combining filters

Filters are joined with AND unless the request has an expression.
An expression refers to filters by their index and joins them with "&&", "||", "!" and parentheses:

	(0 && 1) || !2

Any other character in an expression is ignored.
A malformed expression fails with [MalformedFilterExpression] and an index without a filter with [IncorrectFilterExpressionIndex].

# Values

Values are parsed with the locale of the filter, falling back to the locale of the request and then the invariant locale.
Numbers accept the locale's decimal and group separators, dates accept ISO 8601 and the locale's short date layout, and the Format of a filter gives an exact layout.
String operators such as Contains also apply to properties that are not strings: the property is rendered as text first.

# Errors

Every failure is an [Error] with one of eight kinds.
Errors can be tested with errors.Is against the Err sentinels:

	if errors.Is(err, dynq.ErrMissingProperty) {
		...
	}

# Sources

The memory, sqlsource and mongosource packages provide sources.
Each source reports a [Provider], which selects the operators available and how values and strings are compared.
In memory, string comparison follows [Options].StringComparison, including linguistic comparison for a locale; databases compare strings natively.
*/
package dynq
