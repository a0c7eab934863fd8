package application

import (
	"context"

	"golang.org/x/sync/errgroup"
)

const maxPerPage = 100

// Page is the read model returned by list use cases. Page numbers are 1-based.
type Page[T any] struct {
	Items   []T `json:"items"`
	Total   int `json:"total"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

func NewPage[T any](items []T, total, page, perPage int) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Items: items, Total: total, Page: page, PerPage: perPage}
}

// LastPage is ceil(total / max(perPage, 1)).
func (p *Page[T]) LastPage() int {
	per := p.PerPage
	if per < 1 {
		per = 1
	}
	return (p.Total + per - 1) / per
}

// ListInput is shared by the list use cases.
type ListInput struct {
	Page    int
	PerPage int
}

func (in ListInput) normalize(defaultPerPage int) (int, int) {
	page, perPage := in.Page, in.PerPage
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

// loadPage fetches one page and the total count concurrently.
func loadPage[T any](
	ctx context.Context,
	page, perPage int,
	items func(context.Context) ([]T, error),
	count func(context.Context) (int, error),
) (*Page[T], error) {
	var (
		list  []T
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		list, err = items(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return NewPage(list, total, page, perPage), nil
}
