// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package cli

import (
	"fmt"
	"io"
	"reflect"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/canonical/dynq"
	"github.com/canonical/dynq/example"
	"github.com/canonical/dynq/internal/bsongen"
	"github.com/canonical/dynq/internal/expr"
	"github.com/canonical/dynq/internal/schema"
	"github.com/canonical/dynq/internal/sqlgen"
)

// ExplainOptions holds flags for the explain command.
type ExplainOptions struct {
	*RootOptions
	Provider string
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExplainOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "explain <request>",
		Short: "Print the query a request compiles to",
		Long: `Compile a YAML or JSON request over the sample goblin schema and
print the resulting query for one provider without running it.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readRequest(args[0], cmd.InOrStdin())
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid request", err)
			}
			return runExplain(opts, req, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.Provider, "provider", "p", "sqlite", "provider to compile for")

	return cmd
}

func runExplain(opts *ExplainOptions, req dynq.PagedRequest, w io.Writer) error {
	provider, err := dynq.ParseProvider(opts.Provider)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid provider", err)
	}
	compileOpts, err := opts.Config.Compile.options()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	req = withLocale(req, opts.Config.Compile.Locale)

	p, err := dynq.Compile[example.Goblin](req.QueryRequest, compileOpts, provider)
	if err != nil {
		return WrapExitError(ExitFailure, "cannot compile request", err)
	}
	opts.Logger.Debug("compiled request", "provider", provider, "filters", len(req.Filters), "sorts", len(req.Sorts))

	switch provider {
	case dynq.InMemory:
		return explainMemory(w, p)
	case dynq.MongoDB:
		return explainMongo(w, p)
	}
	return explainSQL(w, p, opts.Config.Source.Table, req)
}

func explainMemory(w io.Writer, p *dynq.Plan) error {
	if p.Filter != nil {
		fmt.Fprintf(w, "where: %s\n", expr.Print(p.Filter))
	}
	for _, k := range p.Order {
		dir := "asc"
		if k.Descending {
			dir = "desc"
		}
		fmt.Fprintf(w, "order: %s %s\n", k.Member.Path, dir)
	}
	return nil
}

func explainSQL(w io.Writer, p *dynq.Plan, table string, req dynq.PagedRequest) error {
	dialect, err := sqlgen.For(p.Provider)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid provider", err)
	}
	leaves, err := schema.Leaves(reflect.TypeOf(example.Goblin{}))
	if err != nil {
		return err
	}
	columns := make([]string, len(leaves))
	for i, l := range leaves {
		columns[i] = l.Column()
	}
	size := req.PageSize
	if size == 0 {
		size = dynq.DefaultPageSize
	}
	page := req.Page
	if page == 0 {
		page = 1
	}
	q, err := dialect.Select(table, columns, p, (page-1)*size, size)
	if err != nil {
		return WrapExitError(ExitFailure, "cannot render query", err)
	}
	fmt.Fprintln(w, q.SQL)
	for i, a := range q.Args {
		fmt.Fprintf(w, "  %d: %#v\n", i+1, a)
	}
	return nil
}

func explainMongo(w io.Writer, p *dynq.Plan) error {
	filter, err := bsongen.Filter(p)
	if err != nil {
		return WrapExitError(ExitFailure, "cannot render filter", err)
	}
	data, err := bson.MarshalExtJSON(filter, false, false)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "filter: %s\n", data)
	if sort := bsongen.Sort(p); len(sort) > 0 {
		data, err := bson.MarshalExtJSON(sort, false, false)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "sort: %s\n", data)
	}
	return nil
}
