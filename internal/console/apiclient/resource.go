package apiclient

import (
	"context"
	"fmt"
	"net/http"
)

// Resource is a typed adapter over one /v1/<entity> collection. T is the
// row shape; the console uses map[string]any, a typed caller can use a
// struct.
type Resource[T any] struct {
	c    *Client
	path string
}

func NewResource[T any](c *Client, slug string) *Resource[T] {
	return &Resource[T]{c: c, path: "/v1/" + slug}
}

// WithToken rebinds the resource to an authenticated client copy.
func (r *Resource[T]) WithToken(token string) *Resource[T] {
	return &Resource[T]{c: r.c.WithToken(token), path: r.path}
}

func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	var items []T
	if err := r.c.doAuthed(ctx, http.MethodGet, r.path, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Resource[T]) Get(ctx context.Context, id int64) (T, error) {
	var item T
	err := r.c.doAuthed(ctx, http.MethodGet, fmt.Sprintf("%s/%d", r.path, id), nil, &item)
	return item, err
}

func (r *Resource[T]) Create(ctx context.Context, body any) (T, error) {
	var item T
	err := r.c.doAuthed(ctx, http.MethodPost, r.path, body, &item)
	return item, err
}

func (r *Resource[T]) Update(ctx context.Context, id int64, body any) (T, error) {
	var item T
	if id <= 0 {
		return item, fmt.Errorf("%w: record id is required", ErrValidation)
	}
	err := r.c.doAuthed(ctx, http.MethodPut, fmt.Sprintf("%s/%d", r.path, id), body, &item)
	return item, err
}

func (r *Resource[T]) Delete(ctx context.Context, id int64) error {
	return r.c.doAuthed(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", r.path, id), nil, nil)
}
