// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package sqlsource provides a [dynq.Source] over a table of a SQL
// database reached through database/sql.
//
// The columns of the table are the flattened leaf properties of T: the
// column of a property path is the db tag (or snake cased name) of each
// hop joined with "_". Plans are rendered to SQL when results are read.
package sqlsource

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/pkg/errors"

	"github.com/canonical/dynq"
	"github.com/canonical/dynq/internal/plan"
	"github.com/canonical/dynq/internal/schema"
	"github.com/canonical/dynq/internal/sqlgen"
)

// stmtCache stores the prepared statements of rendered queries.
var stmtCache = newStatementCache()

// Table is a deferred query over a database table.
type Table[T any] struct {
	handle   *handle
	table    string
	provider dynq.Provider
	dialect  *sqlgen.Dialect
	columns  []*schema.Path
	logger   *slog.Logger
	plan     *plan.Plan
}

var _ dynq.Source[struct{}] = (*Table[struct{}])(nil)

type config struct {
	provider dynq.Provider
	logger   *slog.Logger
}

// Option configures a Table.
type Option func(*config)

// WithLogger sets the logger that rendered queries are logged to at debug
// level.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithProvider overrides the provider detected from the driver of the
// database.
func WithProvider(p dynq.Provider) Option {
	return func(c *config) {
		c.provider = p
	}
}

// New returns a source over table in db. The provider is detected from
// the driver of db.
func New[T any](db *sql.DB, table string, opts ...Option) (*Table[T], error) {
	if db == nil {
		return nil, fmt.Errorf("cannot create source for table %q: nil database", table)
	}
	cfg := config{provider: Detect(db.Driver())}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(discardHandler{})
	}
	dialect, err := sqlgen.For(cfg.provider)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot create source for table %q", table)
	}
	columns, err := schema.Leaves(reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return nil, errors.Wrapf(err, "cannot create source for table %q", table)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("cannot create source for table %q: type has no queryable fields", table)
	}
	return &Table[T]{
		handle:   stmtCache.newHandle(db),
		table:    table,
		provider: cfg.provider,
		dialect:  dialect,
		columns:  columns,
		logger:   cfg.logger,
	}, nil
}

func (t *Table[T]) Provider() dynq.Provider {
	return t.provider
}

func (t *Table[T]) Apply(p *dynq.Plan) (dynq.Source[T], error) {
	next := *t
	next.plan = t.plan.Then(p)
	return &next, nil
}

// Columns returns the column names read from the table.
func (t *Table[T]) Columns() []string {
	cols := make([]string, len(t.columns))
	for i, c := range t.columns {
		cols[i] = c.Column()
	}
	return cols
}

// SelectQuery renders the query that Slice runs. A negative limit reads
// all rows.
func (t *Table[T]) SelectQuery(offset, limit int) (sqlgen.Query, error) {
	q, err := t.dialect.Select(t.table, t.Columns(), t.plan, offset, limit)
	if err != nil {
		return sqlgen.Query{}, &dynq.Error{
			Kind: dynq.FilterExpressionGenerationError, Property: t.table, Type: t.dialect.Name, Err: err,
		}
	}
	return q, nil
}

func (t *Table[T]) All(ctx context.Context) ([]T, error) {
	return t.Slice(ctx, 0, -1)
}

func (t *Table[T]) Count(ctx context.Context) (int, error) {
	q, err := t.dialect.Count(t.table, t.plan)
	if err != nil {
		return 0, &dynq.Error{Kind: dynq.FilterExpressionGenerationError, Property: t.table, Type: t.dialect.Name, Err: err}
	}
	t.logger.DebugContext(ctx, "counting rows", "table", t.table, "sql", q.SQL, "args", len(q.Args))

	stmt, cached, err := stmtCache.prepareStmt(ctx, t.handle, t.handle.db, q.SQL)
	if err != nil {
		return 0, errors.Wrapf(err, "cannot prepare count of table %q", t.table)
	}
	if !cached {
		defer stmt.Close()
	}
	var n int
	if err := stmt.QueryRowContext(ctx, q.Args...).Scan(&n); err != nil {
		return 0, errors.Wrapf(err, "cannot count rows of table %q", t.table)
	}
	return n, nil
}

func (t *Table[T]) Slice(ctx context.Context, offset, limit int) ([]T, error) {
	q, err := t.SelectQuery(offset, limit)
	if err != nil {
		return nil, err
	}
	t.logger.DebugContext(ctx, "selecting rows", "table", t.table, "sql", q.SQL, "args", len(q.Args))

	stmt, cached, err := stmtCache.prepareStmt(ctx, t.handle, t.handle.db, q.SQL)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot prepare query of table %q", t.table)
	}
	if !cached {
		defer stmt.Close()
	}
	rows, err := stmt.QueryContext(ctx, q.Args...)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot query table %q", t.table)
	}
	defer rows.Close()

	out := []T{}
	values := make([]any, len(t.columns))
	ptrs := make([]any, len(t.columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Wrapf(err, "cannot scan row of table %q", t.table)
		}
		var item T
		if err := decode(reflect.ValueOf(&item).Elem(), t.columns, values); err != nil {
			return nil, errors.Wrapf(err, "cannot decode row of table %q", t.table)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "cannot query table %q", t.table)
	}
	return out, nil
}

// discardHandler drops all records.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h discardHandler) WithGroup(string) slog.Handler           { return h }
