// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/canonical/dynq"
	"github.com/canonical/dynq/example"
	"github.com/canonical/dynq/memory"
	"github.com/canonical/dynq/mongosource"
	"github.com/canonical/dynq/sqlsource"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Driver string
	DSN    string
	Table  string
	Seed   bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <request>",
		Short: "Run a request against a goblin source",
		Long: `Run a YAML or JSON request against the goblins held in memory, in a
database/sql database or in a MongoDB collection, and print the requested
page as JSON.

The driver "memory" queries the built-in sample data. Other drivers read
the table named by --table; --seed creates and fills it first on SQLite.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readRequest(args[0], cmd.InOrStdin())
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid request", err)
			}
			return runRun(cmd.Context(), opts, req, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Driver, "driver", "", "driver name (memory, mongodb, or one of the SQL drivers)")
	cmd.Flags().StringVar(&opts.DSN, "dsn", "", "data source name, or MongoDB URI")
	cmd.Flags().StringVar(&opts.Table, "table", "", "table or collection name")
	cmd.Flags().BoolVar(&opts.Seed, "seed", false, "create and fill the sample table first")

	return cmd
}

// source returns the source configuration with flags applied over it.
func (opts *RunOptions) source() SourceConfig {
	cfg := opts.Config.Source
	if opts.Driver != "" {
		cfg.Driver = opts.Driver
	}
	if opts.DSN != "" {
		cfg.DSN = opts.DSN
	}
	if opts.Table != "" {
		cfg.Table = opts.Table
	}
	if opts.Seed {
		cfg.Seed = true
	}
	return cfg
}

func runRun(ctx context.Context, opts *RunOptions, req dynq.PagedRequest, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	compileOpts, err := opts.Config.Compile.options()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	req = withLocale(req, opts.Config.Compile.Locale)

	cfg := opts.source()
	src, closer, err := openSource(ctx, cfg, opts.Logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot open source", err)
	}
	defer closer()

	resp, err := dynq.Paginate(ctx, src, req, compileOpts)
	if err != nil {
		return WrapExitError(ExitFailure, "cannot run request", err)
	}
	opts.Logger.Info("ran request", "driver", cfg.Driver, "items", len(resp.Data), "total", resp.TotalItems)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func openSource(ctx context.Context, cfg SourceConfig, logger *slog.Logger) (dynq.Source[example.Goblin], func(), error) {
	switch cfg.Driver {
	case "memory":
		return memory.New(example.Goblins()), func() {}, nil
	case "mongodb":
		if cfg.Seed {
			return nil, nil, fmt.Errorf("seeding is not supported for mongodb")
		}
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.DSN))
		if err != nil {
			return nil, nil, err
		}
		coll := client.Database(cfg.Database).Collection(cfg.Table)
		return mongosource.New[example.Goblin](coll, logger), func() { client.Disconnect(context.Background()) }, nil
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Seed {
		if !seedable(cfg.Driver) {
			db.Close()
			return nil, nil, fmt.Errorf("seeding is not supported for %s", cfg.Driver)
		}
		if err := example.CreateTable(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		if err := example.Seed(ctx, db, example.Goblins()); err != nil {
			db.Close()
			return nil, nil, err
		}
	}
	src, err := sqlsource.New[example.Goblin](db, cfg.Table, sqlsource.WithLogger(logger))
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return src, func() { db.Close() }, nil
}
