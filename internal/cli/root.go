// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package cli implements the dynq command, which compiles and runs dynamic
// queries over a sample schema.
package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Exit codes of the dynq command.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // the request could not be compiled or run
	ExitCommandError = 2 // bad flags, configuration or request file
)

// ExitError is an error with the exit code the command should end with.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps err with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// ExitCode returns the exit code for err.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// RootOptions holds global flags and the state shared by all commands.
type RootOptions struct {
	ConfigFile string
	LogLevel   string

	Config *Config
	Logger *slog.Logger
}

// NewRootCommand creates the root command of dynq.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "dynq",
		Short: "Compile and run dynamic queries",
		Long: `dynq compiles filter, combination and sort requests over a typed
schema into queries for in-memory slices, SQL databases and MongoDB.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(viper.New(), opts.ConfigFile)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid configuration", err)
			}
			if opts.LogLevel != "" {
				cfg.Log.Level = opts.LogLevel
			}
			opts.Config = cfg
			opts.Logger = newLogger(cmd.ErrOrStderr(), cfg.Log)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "configuration file (yaml, json or toml)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (DEBUG, INFO, WARN, ERROR)")

	cmd.AddCommand(NewExplainCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))

	return cmd
}
