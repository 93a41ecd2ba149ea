// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/canonical/dynq"
)

// readRequest decodes a paged request from a YAML or JSON document. The
// path "-" reads from stdin.
func readRequest(path string, stdin io.Reader) (dynq.PagedRequest, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return dynq.PagedRequest{}, fmt.Errorf("cannot read request: %w", err)
	}
	return decodeRequest(data)
}

func decodeRequest(data []byte) (dynq.PagedRequest, error) {
	var req dynq.PagedRequest
	if len(bytes.TrimSpace(data)) == 0 {
		return req, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("cannot decode request: %w", err)
	}
	return req, nil
}

// options builds the compile options of cfg.
func (cfg CompileConfig) options() (dynq.Options, error) {
	opts := dynq.Options{
		PropertyMapping:        cfg.PropertyMapping,
		ExposeMappedProperties: cfg.ExposeMapped,
		IncludedProperties:     cfg.Include,
		ExcludedProperties:     cfg.Exclude,
		Lookup:                 dynq.LookupFlags{MatchCase: cfg.MatchCase, MatchTags: cfg.MatchTags},
	}
	if cfg.StringComparison != "" {
		if err := opts.StringComparison.UnmarshalText([]byte(cfg.StringComparison)); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

// withLocale fills in the request locale from the configuration when the
// request names none.
func withLocale(req dynq.PagedRequest, loc string) dynq.PagedRequest {
	if strings.TrimSpace(req.Locale) == "" {
		req.Locale = loc
	}
	return req
}
