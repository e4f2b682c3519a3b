package api

import "context"

// Page is one page of a paginated list response. The API reports the total
// page count on every page.
type Page[T any] struct {
	Content    []T `json:"content"`
	TotalPages int `json:"totalPages"`
}

// PageFunc fetches a single page by zero-based page number.
type PageFunc[T any] func(ctx context.Context, pageNumber int) (Page[T], error)

// FetchAllPages drains a paginated endpoint into one slice, preserving page
// order and within-page item order. It starts at page 0 and stops after
// consuming the page where pageNumber >= totalPages-1, so a server reporting
// totalPages <= 1 results in exactly one fetch and no loop.
//
// Any fetch error abandons the aggregation; partial results are discarded.
// The error keeps its type, so callers can distinguish an expired token
// (ErrTokenExpired) from transient failures.
func FetchAllPages[T any](ctx context.Context, fetch PageFunc[T]) ([]T, error) {
	var all []T
	for pageNumber := 0; ; pageNumber++ {
		page, err := fetch(ctx, pageNumber)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Content...)
		if pageNumber >= page.TotalPages-1 {
			break
		}
	}
	return all, nil
}
