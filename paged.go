// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package dynq

import (
	"context"
	"fmt"
)

// DefaultPageSize is the page size used when a [PagedRequest] names none.
const DefaultPageSize = 25

// PagedRequest is a [QueryRequest] for one page of results.
type PagedRequest struct {
	QueryRequest `yaml:",inline"`

	// Page is 1-based. Zero means the first page.
	Page int `json:"page,omitempty" yaml:"page,omitempty"`

	// PageSize is the number of items per page. Zero means
	// DefaultPageSize.
	PageSize int `json:"pageSize,omitempty" yaml:"pageSize,omitempty"`
}

// PagedResponse is one page of results.
type PagedResponse[T any] struct {
	Data            []T  `json:"data"`
	Page            int  `json:"page"`
	PageSize        int  `json:"pageSize"`
	TotalItems      int  `json:"totalItems"`
	TotalPages      int  `json:"totalPages"`
	HasPreviousPage bool `json:"hasPreviousPage"`
	HasNextPage     bool `json:"hasNextPage"`
}

// Paginate applies req to src and reads the requested page along with
// the total number of matching items.
func Paginate[T any](ctx context.Context, src Source[T], req PagedRequest, opts Options) (*PagedResponse[T], error) {
	page, size := req.Page, req.PageSize
	if page == 0 {
		page = 1
	}
	if size == 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		return nil, fmt.Errorf("invalid page %d: pages start at 1", page)
	}
	if size < 1 {
		return nil, fmt.Errorf("invalid page size %d", size)
	}

	applied, err := Apply(src, req.QueryRequest, opts)
	if err != nil {
		return nil, err
	}
	total, err := applied.Count(ctx)
	if err != nil {
		return nil, err
	}
	data, err := applied.Slice(ctx, (page-1)*size, size)
	if err != nil {
		return nil, err
	}

	pages := (total + size - 1) / size
	return &PagedResponse[T]{
		Data:            data,
		Page:            page,
		PageSize:        size,
		TotalItems:      total,
		TotalPages:      pages,
		HasPreviousPage: page > 1,
		HasNextPage:     page < pages,
	}, nil
}
