// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlsource_test

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"
	. "gopkg.in/check.v1"

	"github.com/canonical/dynq"
	"github.com/canonical/dynq/example"
	"github.com/canonical/dynq/sqlsource"
)

type TableSuite struct {
	db     *sql.DB
	source *sqlsource.Table[example.Goblin]
}

var _ = Suite(&TableSuite{})

func (s *TableSuite) SetUpTest(c *C) {
	db, err := sql.Open("sqlite3", ":memory:")
	c.Assert(err, IsNil)
	// Every connection to ":memory:" opens a separate database.
	db.SetMaxOpenConns(1)
	ctx := context.Background()
	c.Assert(example.CreateTable(ctx, db), IsNil)
	c.Assert(example.Seed(ctx, db, example.Goblins()), IsNil)

	src, err := sqlsource.New[example.Goblin](db, example.Table)
	c.Assert(err, IsNil)
	s.db, s.source = db, src
}

func (s *TableSuite) TearDownTest(c *C) {
	c.Assert(s.db.Close(), IsNil)
}

func ids(goblins []example.Goblin) []int {
	out := make([]int, len(goblins))
	for i, g := range goblins {
		out[i] = g.ID
	}
	return out
}

func (s *TableSuite) query(c *C, req dynq.QueryRequest) []int {
	src, err := dynq.Apply[example.Goblin](s.source, req, dynq.Options{})
	c.Assert(err, IsNil)
	goblins, err := src.All(context.Background())
	c.Assert(err, IsNil)
	return ids(goblins)
}

func filter(property string, op dynq.Operator, value string) dynq.FilterDefinition {
	return dynq.FilterDefinition{Property: property, Operator: op, Value: dynq.Value(value)}
}

func (s *TableSuite) TestProviderIsDetected(c *C) {
	c.Check(s.source.Provider(), Equals, dynq.SQLite)
	c.Check(s.source.Columns(), HasLen, 22)
}

func (s *TableSuite) TestFilters(c *C) {
	tests := []struct {
		summary string
		req     dynq.QueryRequest
		ids     []int
	}{{
		summary: "ordering on an integer",
		req: dynq.QueryRequest{
			Filters: []dynq.FilterDefinition{filter("Age", dynq.GreaterThan, "30")},
			Sorts:   []dynq.SortDefinition{{Property: "Name"}},
		},
		ids: []int{1, 4, 2, 6},
	}, {
		summary: "nested nullable value",
		req: dynq.QueryRequest{
			Filters: []dynq.FilterDefinition{filter("Contract.Details.DaysOfEffect", dynq.GreaterThanOrEqual, "30")},
		},
		ids: []int{1, 5},
	}, {
		summary: "inequality keeps missing contracts",
		req: dynq.QueryRequest{
			Filters: []dynq.FilterDefinition{filter("Contract.SigningDate", dynq.DoesNotEqual, "2021-06-01")},
		},
		ids: []int{2, 3, 4, 5, 6},
	}, {
		summary: "strings compare case sensitively",
		req: dynq.QueryRequest{
			Filters: []dynq.FilterDefinition{filter("Name", dynq.Contains, "wart")},
		},
		ids: []int{3},
	}, {
		summary: "nullable boolean",
		req: dynq.QueryRequest{
			Filters: []dynq.FilterDefinition{filter("HobbitAncestry", dynq.Equals, "true")},
		},
		ids: []int{2, 5},
	}, {
		summary: "null equality",
		req: dynq.QueryRequest{
			Filters: []dynq.FilterDefinition{{Property: "HobbitAncestry", Operator: dynq.Equals}},
		},
		ids: []int{1, 4},
	}, {
		summary: "enumeration by name",
		req: dynq.QueryRequest{
			Filters: []dynq.FilterDefinition{filter("Taste", dynq.Equals, "Sour")},
		},
		ids: []int{1, 6},
	}, {
		summary: "boolean forced to a string",
		req: dynq.QueryRequest{
			Filters: []dynq.FilterDefinition{filter("IsActive", dynq.Contains, "ru")},
		},
		ids: []int{1, 3, 4, 6},
	}, {
		summary: "character",
		req: dynq.QueryRequest{
			Filters: []dynq.FilterDefinition{filter("FavouriteLetter", dynq.Equals, "m")},
		},
		ids: []int{4},
	}, {
		summary: "combination pattern",
		req: dynq.QueryRequest{
			Filters: []dynq.FilterDefinition{
				filter("Age", dynq.LessThan, "30"),
				filter("Name", dynq.StartsWith, "Snag"),
				filter("IsActive", dynq.Equals, "true"),
			},
			Expression: "(0 || 1) && !2",
			Sorts:      []dynq.SortDefinition{{Property: "ID", Descending: true}},
		},
		ids: []int{5, 2},
	}, {
		summary: "nulls sort first",
		req: dynq.QueryRequest{
			Sorts: []dynq.SortDefinition{{Property: "HobbitAncestry"}, {Property: "ID"}},
		},
		ids: []int{1, 4, 3, 6, 2, 5},
	}}
	for i, t := range tests {
		c.Logf("test %d: %s", i, t.summary)
		c.Check(s.query(c, t.req), DeepEquals, t.ids)
	}
}

func (s *TableSuite) TestSliceAndCount(c *C) {
	req := dynq.QueryRequest{Sorts: []dynq.SortDefinition{{Property: "ID", Descending: true}}}
	src, err := dynq.Apply[example.Goblin](s.source, req, dynq.Options{})
	c.Assert(err, IsNil)

	goblins, err := src.Slice(context.Background(), 1, 2)
	c.Assert(err, IsNil)
	c.Check(ids(goblins), DeepEquals, []int{5, 4})

	goblins, err = src.Slice(context.Background(), 4, -1)
	c.Assert(err, IsNil)
	c.Check(ids(goblins), DeepEquals, []int{2, 1})

	n, err := src.Count(context.Background())
	c.Assert(err, IsNil)
	c.Check(n, Equals, 6)
}

func (s *TableSuite) TestPaginate(c *C) {
	req := dynq.PagedRequest{
		QueryRequest: dynq.QueryRequest{
			Filters: []dynq.FilterDefinition{filter("IsActive", dynq.Equals, "true")},
			Sorts:   []dynq.SortDefinition{{Property: "ID"}},
		},
		Page:     2,
		PageSize: 3,
	}
	page, err := dynq.Paginate[example.Goblin](context.Background(), s.source, req, dynq.Options{})
	c.Assert(err, IsNil)
	c.Check(ids(page.Data), DeepEquals, []int{6})
	c.Check(page.TotalItems, Equals, 4)
	c.Check(page.TotalPages, Equals, 2)
	c.Check(page.HasPreviousPage, Equals, true)
	c.Check(page.HasNextPage, Equals, false)
}

func (s *TableSuite) TestDecode(c *C) {
	req := dynq.QueryRequest{Sorts: []dynq.SortDefinition{{Property: "ID"}}}
	src, err := dynq.Apply[example.Goblin](s.source, req, dynq.Options{})
	c.Assert(err, IsNil)
	got, err := src.All(context.Background())
	c.Assert(err, IsNil)
	want := example.Goblins()
	c.Assert(got, HasLen, len(want))

	g, w := got[0], want[0]
	c.Check(g.Name, Equals, w.Name)
	c.Check(g.FavouriteLetter, Equals, w.FavouriteLetter)
	c.Check(g.Age, Equals, w.Age)
	c.Check(g.Mana, Equals, w.Mana)
	c.Check(g.Strength, Equals, w.Strength)
	c.Check(g.Salary.Cmp(&w.Salary), Equals, 0)
	c.Check(g.IsActive, Equals, true)
	c.Check(g.Taste, Equals, example.Sour)
	c.Check(g.DateOfBirth.Equal(w.DateOfBirth), Equals, true)
	c.Check(g.DateOfConception.Equal(w.DateOfConception), Equals, true)
	c.Check(g.HobbitAncestry, IsNil)
	c.Assert(g.Contract, NotNil)
	c.Check(g.Contract.SigningDate, Equals, w.Contract.SigningDate)
	c.Check(g.Contract.Details.SigningTime, Equals, w.Contract.Details.SigningTime)
	c.Assert(g.Contract.Details.Duration, NotNil)
	c.Check(*g.Contract.Details.Duration, Equals, 720*time.Hour)
	c.Assert(g.Contract.Details.DaysOfEffect, NotNil)
	c.Check(*g.Contract.Details.DaysOfEffect, Equals, 30)

	// A contract with some NULL columns keeps its nil pointers.
	c.Assert(got[2].Contract, NotNil)
	c.Check(got[2].Contract.Details.Duration, IsNil)
	c.Check(*got[2].HobbitAncestry, Equals, false)

	// A row whose contract columns are all NULL has no contract.
	c.Check(got[3].Contract, IsNil)
}

func (s *TableSuite) TestRegexIsRejected(c *C) {
	req := dynq.QueryRequest{Filters: []dynq.FilterDefinition{filter("Name", dynq.Regex, "^B")}}
	_, err := dynq.Apply[example.Goblin](s.source, req, dynq.Options{})
	c.Assert(err, NotNil)
	c.Check(errors.Is(err, dynq.ErrInvalidOperator), Equals, true)
}

func (s *TableSuite) TestUnsupportedComparison(c *C) {
	req := dynq.QueryRequest{Filters: []dynq.FilterDefinition{filter("Name", dynq.Contains, "wart")}}
	opts := dynq.Options{StringComparison: dynq.OrdinalIgnoreCase}
	plan, err := dynq.Compile[example.Goblin](req, opts, dynq.InMemory)
	c.Assert(err, IsNil)
	// A plan compiled for another provider may not render.
	src, err := s.source.Apply(plan)
	c.Assert(err, IsNil)
	_, err = src.All(context.Background())
	c.Check(errors.Is(err, dynq.ErrFilterExpressionGeneration), Equals, true)
}

func (s *TableSuite) TestNewErrors(c *C) {
	_, err := sqlsource.New[example.Goblin](nil, "goblins")
	c.Check(err, ErrorMatches, `cannot create source for table "goblins": nil database`)

	_, err = sqlsource.New[example.Goblin](s.db, "goblins", sqlsource.WithProvider(dynq.MongoDB))
	c.Check(err, ErrorMatches, `cannot create source for table "goblins": provider mongodb is not a SQL database`)
}
