// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package query_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/canonical/dynq/internal/query"
)

func TestParseOperator(t *testing.T) {
	for _, op := range query.Operators() {
		got, err := query.ParseOperator(op.String())
		require.NoError(t, err)
		assert.Equal(t, op, got)
	}
	tests := map[string]query.Operator{
		"startswith": query.StartsWith,
		" ne ":       query.DoesNotEqual,
		">=":         query.GreaterThanOrEqual,
		"LTE":        query.LessThanOrEqual,
		"~":          query.Regex,
	}
	for s, want := range tests {
		got, err := query.ParseOperator(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}
	_, err := query.ParseOperator("like")
	assert.ErrorContains(t, err, `unknown operator "like"`)
}

func TestOperatorClasses(t *testing.T) {
	assert.Len(t, query.Operators(), 13)
	assert.True(t, query.Contains.IsString())
	assert.False(t, query.Equals.IsString())
	assert.True(t, query.LessThan.IsOrdering())
	assert.False(t, query.Regex.IsOrdering())
}

func TestStringComparison(t *testing.T) {
	c, err := query.ParseStringComparison("linguisticignorecase")
	require.NoError(t, err)
	assert.Equal(t, query.LinguisticIgnoreCase, c)
	assert.True(t, c.IgnoreCase())
	assert.False(t, query.Linguistic.IgnoreCase())
	_, err = query.ParseStringComparison("natural")
	assert.Error(t, err)
}

func TestParseProvider(t *testing.T) {
	tests := map[string]query.Provider{
		"memory":     query.InMemory,
		"SQLite3":    query.SQLite,
		"dqlite":     query.Dqlite,
		"pg":         query.PostgreSQL,
		"postgresql": query.PostgreSQL,
		"duckdb":     query.DuckDB,
		"mongo":      query.MongoDB,
	}
	for s, want := range tests {
		got, err := query.ParseProvider(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}
	_, err := query.ParseProvider("oracle")
	assert.Error(t, err)
}

const requestYAML = `
filters:
  - property: Name
    operator: StartsWith
    value: B
  - property: Age
    operator: gt
    value: 30
  - property: Contract
    operator: eq
expression: 0 && (1 || !2)
sorts:
  - property: Age
    descending: true
locale: en-GB
`

func TestDecodeRequestYAML(t *testing.T) {
	var req query.Request
	require.NoError(t, yaml.Unmarshal([]byte(requestYAML), &req))

	require.Len(t, req.Filters, 3)
	assert.Equal(t, query.StartsWith, req.Filters[0].Operator)
	assert.Equal(t, "B", *req.Filters[0].Value)
	assert.Equal(t, query.GreaterThan, req.Filters[1].Operator)
	assert.Equal(t, "30", *req.Filters[1].Value)
	assert.Nil(t, req.Filters[2].Value)
	assert.Equal(t, "0 && (1 || !2)", req.Expression)
	assert.Equal(t, []query.Sort{{Property: "Age", Descending: true}}, req.Sorts)
	assert.Equal(t, "en-GB", req.Locale)
}

func TestRequestJSON(t *testing.T) {
	v := "x"
	req := query.Request{Filters: []query.Filter{{Property: "Name", Operator: query.DoesNotContain, Value: &v}}}
	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"filters":[{"property":"Name","operator":"DoesNotContain","value":"x"}]}`, string(data))
}

func TestClone(t *testing.T) {
	req := query.Request{
		Filters: []query.Filter{{Property: "Name"}},
		Sorts:   []query.Sort{{Property: "Age"}},
	}
	c := req.Clone()
	c.Filters[0].Property = "Other"
	c.Sorts[0].Descending = true
	assert.Equal(t, "Name", req.Filters[0].Property)
	assert.False(t, req.Sorts[0].Descending)
}
