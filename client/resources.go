package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/mediajournal/mediajournal/internal/model"
)

// Resource is a typed handle on one record collection.
type Resource[T any] struct {
	c    *Client
	kind Kind
}

// NewResource returns a handle on kind's collection.
func NewResource[T any](c *Client, kind Kind) *Resource[T] {
	return &Resource[T]{c: c, kind: kind}
}

func (c *Client) Blogs() *Resource[Blog]             { return NewResource[Blog](c, model.KindBlog) }
func (c *Client) Songs() *Resource[Song]             { return NewResource[Song](c, model.KindSong) }
func (c *Client) MusicVideos() *Resource[MusicVideo] { return NewResource[MusicVideo](c, model.KindMusicVideo) }
func (c *Client) Movies() *Resource[Movie]           { return NewResource[Movie](c, model.KindMovie) }
func (c *Client) Recipes() *Resource[Recipe]         { return NewResource[Recipe](c, model.KindRecipe) }

// Kind names the collection.
func (r *Resource[T]) Kind() Kind { return r.kind }

func (r *Resource[T]) path(id string) string {
	p := "/api/" + r.kind.Collection
	if id != "" {
		p += "/" + url.PathEscape(id)
	}
	return p
}

// List returns the caller's records, newest first.
func (r *Resource[T]) List(ctx context.Context) ([]Record[T], error) {
	out := []Record[T]{}
	if err := r.c.do(ctx, http.MethodGet, r.path(""), nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Resource[T]) Get(ctx context.Context, id string) (*Record[T], error) {
	var out Record[T]
	if err := r.c.do(ctx, http.MethodGet, r.path(id), nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Resource[T]) Create(ctx context.Context, content T) (*Record[T], error) {
	var out Record[T]
	if err := r.c.do(ctx, http.MethodPost, r.path(""), content, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces every content field of the record. Optional fields left
// empty in content are sent as null, which clears them on the server.
func (r *Resource[T]) Update(ctx context.Context, id string, content T) (*Record[T], error) {
	fields, err := explicitFields(content)
	if err != nil {
		return nil, err
	}
	var out Record[T]
	if err := r.c.do(ctx, http.MethodPut, r.path(id), fields, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// Patch sends only the given fields; the rest keep their stored values.
func (r *Resource[T]) Patch(ctx context.Context, id string, fields map[string]any) (*Record[T], error) {
	var out Record[T]
	if err := r.c.do(ctx, http.MethodPut, r.path(id), fields, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	return r.c.do(ctx, http.MethodDelete, r.path(id), nil, nil, true)
}

// explicitFields encodes content as a field map that names every JSON field
// of T, using null for the ones omitempty dropped.
func explicitFields(content any) (map[string]json.RawMessage, error) {
	body, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	t := reflect.TypeOf(content)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return fields, nil
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Anonymous {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		if _, ok := fields[name]; !ok {
			fields[name] = json.RawMessage("null")
		}
	}
	return fields, nil
}
