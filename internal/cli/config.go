// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package cli

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables read into the
// configuration, e.g. DYNQ_SOURCE_DSN sets source.dsn.
const EnvPrefix = "DYNQ"

// Config is the configuration of the dynq command.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Source  SourceConfig  `mapstructure:"source"`
	Compile CompileConfig `mapstructure:"compile"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SourceConfig selects the data source queried by the run command.
type SourceConfig struct {
	// Driver is a database/sql driver name, or "mongodb".
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	// Table is the table, or collection, holding the goblins.
	Table    string `mapstructure:"table"`
	Database string `mapstructure:"database"`
	Seed     bool   `mapstructure:"seed"`
}

// CompileConfig holds the compile options that are not part of a request.
type CompileConfig struct {
	Locale           string            `mapstructure:"locale"`
	StringComparison string            `mapstructure:"string_comparison"`
	MatchCase        bool              `mapstructure:"match_case"`
	MatchTags        bool              `mapstructure:"match_tags"`
	PropertyMapping  map[string]string `mapstructure:"property_mapping"`
	ExposeMapped     bool              `mapstructure:"expose_mapped"`
	Include          []string          `mapstructure:"include"`
	Exclude          []string          `mapstructure:"exclude"`
}

// defaults registers every key, since AutomaticEnv only reaches keys that
// viper already knows about.
func defaults(v *viper.Viper) {
	v.SetDefault("log.level", "INFO")
	v.SetDefault("log.format", "text")
	v.SetDefault("source.driver", "sqlite3")
	v.SetDefault("source.dsn", "file::memory:?cache=shared")
	v.SetDefault("source.table", "goblins")
	v.SetDefault("source.database", "dynq")
	v.SetDefault("source.seed", false)
	v.SetDefault("compile.locale", "")
	v.SetDefault("compile.string_comparison", "Ordinal")
	v.SetDefault("compile.match_case", false)
	v.SetDefault("compile.match_tags", true)
	v.SetDefault("compile.property_mapping", map[string]string{})
	v.SetDefault("compile.expose_mapped", false)
	v.SetDefault("compile.include", []string{})
	v.SetDefault("compile.exclude", []string{})
}

var stringMapType = reflect.TypeOf(map[string]string{})

// stringToMapHookFunc decodes "key=value,key=value" into a string map,
// the form a property mapping takes in an environment variable.
func stringToMapHookFunc() mapstructure.DecodeHookFuncType {
	return func(f, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String || t != stringMapType {
			return data, nil
		}
		m := make(map[string]string)
		for _, pair := range strings.Split(reflect.ValueOf(data).String(), ",") {
			if strings.TrimSpace(pair) == "" {
				continue
			}
			key, value, ok := strings.Cut(pair, "=")
			if !ok {
				return nil, fmt.Errorf("invalid mapping %q, want key=value", pair)
			}
			m[strings.TrimSpace(key)] = strings.TrimSpace(value)
		}
		return m, nil
	}
}

// LoadConfig reads the configuration from path, when given, and from
// environment variables with EnvPrefix. Environment variables win.
func LoadConfig(v *viper.Viper, path string) (*Config, error) {
	defaults(v)
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("cannot read config %q: %w", path, err)
			}
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		stringToMapHookFunc(),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("cannot decode config: %w", err)
	}
	return &cfg, nil
}
