// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package translate_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canonical/dynq/internal/expr"
	"github.com/canonical/dynq/internal/locale"
	"github.com/canonical/dynq/internal/qerr"
	"github.com/canonical/dynq/internal/query"
	"github.com/canonical/dynq/internal/schema"
	"github.com/canonical/dynq/internal/translate"
)

type grade int

func init() {
	if err := schema.RegisterEnum(reflect.TypeOf(grade(0)), []schema.Member{
		{Name: "Low", Value: 0}, {Name: "High", Value: 1},
	}); err != nil {
		panic(err)
	}
}

type inner struct {
	Note string
}

type record struct {
	Name   string
	Score  *int8
	Active *bool
	Grade  grade
	Inner  inner
}

func member(t *testing.T, property string) *expr.Member {
	p, err := schema.Resolve(reflect.TypeOf(record{}), property, false, false)
	require.NoError(t, err)
	return &expr.Member{Path: p}
}

func TestCapabilities(t *testing.T) {
	tests := []struct {
		provider  query.Provider
		regex     bool
		comparer  bool
		collation bool
	}{
		{query.InMemory, true, true, true},
		{query.Unknown, true, true, true},
		{query.SQLite, false, false, false},
		{query.Dqlite, false, false, false},
		{query.PostgreSQL, true, false, false},
		{query.DuckDB, true, false, false},
		{query.MongoDB, true, false, false},
	}
	for _, tt := range tests {
		caps := translate.For(tt.provider).Capabilities()
		assert.Equal(t, tt.regex, caps.Supports(query.Regex), tt.provider.String())
		assert.Equal(t, tt.comparer, caps.Comparer, tt.provider.String())
		assert.Equal(t, tt.comparer, caps.Localized, tt.provider.String())
		assert.Equal(t, tt.collation, caps.Collation, tt.provider.String())
		assert.True(t, caps.Supports(query.Contains), tt.provider.String())
	}
	assert.True(t, translate.For(query.MongoDB).Capabilities().Unforced[schema.Duration])
	assert.Empty(t, translate.For(query.InMemory).Capabilities().Unforced)
}

func TestRealizeMaterialized(t *testing.T) {
	tr := translate.For(query.InMemory)
	name := member(t, "Name")
	barb := expr.String("Barb")

	tests := []struct {
		op   query.Operator
		cmp  query.StringComparison
		want string
	}{
		{query.Equals, query.Ordinal, `Name.Equals("Barb", ordinal)`},
		{query.DoesNotEqual, query.OrdinalIgnoreCase, `!Name.Equals("Barb", ordinal-ignore-case)`},
		{query.StartsWith, query.Linguistic, `Name.StartsWith("Barb", linguistic)`},
		{query.EndsWith, query.Ordinal, `Name.EndsWith("Barb", ordinal)`},
		{query.Contains, query.LinguisticIgnoreCase, `Name.Contains("Barb", linguistic-ignore-case)`},
		{query.DoesNotContain, query.Ordinal, `!Name.Contains("Barb", ordinal)`},
		{query.GreaterThan, query.Ordinal, `(Name > "Barb")`},
		{query.IsEmpty, query.Ordinal, `IsBlank(Name)`},
		{query.IsNotEmpty, query.Ordinal, `!IsBlank(Name)`},
		{query.Regex, query.Ordinal, `Regex(Name, "Barb")`},
	}
	for _, tt := range tests {
		n, err := tr.Realize(tt.op, name, barb, tt.cmp, locale.Invariant)
		require.NoError(t, err, tt.op.String())
		assert.Equal(t, tt.want, expr.Print(n), tt.op.String())
	}
}

func TestRealizeNative(t *testing.T) {
	for _, p := range []query.Provider{query.SQLite, query.MongoDB} {
		tr := translate.For(p)
		name := member(t, "Name")

		n, err := tr.Realize(query.Equals, name, expr.String("Barb"), query.OrdinalIgnoreCase, locale.Invariant)
		require.NoError(t, err)
		assert.Equal(t, `(Name == "Barb")`, expr.Print(n))

		n, err = tr.Realize(query.Contains, name, expr.String("ar"), query.OrdinalIgnoreCase, locale.Invariant)
		require.NoError(t, err)
		assert.Equal(t, `Name.Contains("ar")`, expr.Print(n))
	}
}

func TestRealizeNullConstant(t *testing.T) {
	tr := translate.For(query.InMemory)
	n, err := tr.Realize(query.Equals, member(t, "Name"), &expr.Const{Of: schema.String}, query.Ordinal, locale.Invariant)
	require.NoError(t, err)
	assert.Equal(t, `(Name == nil)`, expr.Print(n))
}

func TestRealizeBadRegex(t *testing.T) {
	_, err := translate.For(query.InMemory).Realize(query.Regex, member(t, "Name"), expr.String("("), query.Ordinal, locale.Invariant)
	assert.ErrorContains(t, err, "invalid regular expression")
}

func TestStringify(t *testing.T) {
	de, err := locale.Parse("de-DE")
	require.NoError(t, err)
	mem := translate.For(query.InMemory)
	doc := translate.For(query.MongoDB)
	sql := translate.For(query.PostgreSQL)

	n, err := mem.Stringify(member(t, "Name"), de, "")
	require.NoError(t, err)
	assert.Equal(t, `Name`, expr.Print(n))

	n, err = mem.Stringify(member(t, "Active"), de, "")
	require.NoError(t, err)
	assert.Equal(t, `(((Active ?? False) == True) ? "True" : "False")`, expr.Print(n))

	n, err = sql.Stringify(member(t, "Grade"), de, "")
	require.NoError(t, err)
	assert.Equal(t, `((Grade == Low) ? "Low" : ((Grade == High) ? "High" : ""))`, expr.Print(n))

	n, err = mem.Stringify(member(t, "Score"), de, "%03d")
	require.NoError(t, err)
	assert.Equal(t, `(Score ?? 0).ToString(de-DE, "%03d")`, expr.Print(n))

	n, err = sql.Stringify(member(t, "Score"), de, "%03d")
	require.NoError(t, err)
	assert.Equal(t, `(Score ?? 0).ToString()`, expr.Print(n))

	n, err = doc.Stringify(member(t, "Score"), de, "")
	require.NoError(t, err)
	assert.Equal(t, `(Score ?? -128).ToString()`, expr.Print(n))

	_, err = mem.Stringify(member(t, "Inner"), de, "")
	var qe *qerr.Error
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, qerr.UnsupportedStringComparisonType, qe.Kind)
	assert.Equal(t, "translate_test.inner", qe.Type)
}
