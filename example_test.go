// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package dynq_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/canonical/dynq"
	"github.com/canonical/dynq/example"
	"github.com/canonical/dynq/memory"
)

func Example() {
	src := memory.New(example.Goblins())

	req := dynq.QueryRequest{
		Filters: []dynq.FilterDefinition{{
			Property: "Age",
			Operator: dynq.GreaterThanOrEqual,
			Value:    dynq.Value("35"),
		}},
		Sorts: []dynq.SortDefinition{{Property: "Name", Descending: true}},
	}
	older, err := dynq.Apply[example.Goblin](src, req, dynq.Options{})
	if err != nil {
		fmt.Println(err)
		return
	}
	goblins, err := older.All(context.Background())
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, g := range goblins {
		fmt.Println(g.Name, g.Age)
	}

	req.Filters = append(req.Filters, dynq.FilterDefinition{Property: "IsActive", Operator: dynq.Equals, Value: dynq.Value("true")})
	req.Expression = "0 & 1"
	_, err = dynq.Apply[example.Goblin](src, req, dynq.Options{})
	fmt.Println(errors.Is(err, dynq.ErrMalformedFilterExpression))
	fmt.Println(err)

	// Output:
	// Wartnose 35
	// Snaggletooth 52
	// Mudgrub 41
	// Grizzle 35
	// true
	// MalformedFilterExpression - filter expression "0 & 1" is invalid; check for unclosed brackets or incorrectly typed operators (e.g. & instead of &&)
}
