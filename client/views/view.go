// Package views holds the per-resource screen state used by journalctl: the
// loaded list, one form mirroring a record's editable fields, and the last
// error message.
package views

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mediajournal/mediajournal/client"
)

// Backend is the slice of client.Resource a view needs.
type Backend[T any] interface {
	Kind() client.Kind
	List(ctx context.Context) ([]client.Record[T], error)
	Create(ctx context.Context, content T) (*client.Record[T], error)
	Update(ctx context.Context, id string, content T) (*client.Record[T], error)
	Delete(ctx context.Context, id string) error
}

// Layout selects how records are presented.
type Layout int

const (
	Table Layout = iota
	Cards
)

// Field is one form input. Name is the JSON field name.
type Field[T any] struct {
	Name  string
	Label string
	Value func(T) string
}

// View is the state behind one resource screen.
type View[T any] struct {
	backend Backend[T]

	Layout  Layout
	Fields  []Field[T]
	Records []client.Record[T]

	Form      T
	EditingID string
	// Err is a single line describing the last failed operation.
	Err string
}

// New returns a view over b. Call Load before reading Records.
func New[T any](b Backend[T], layout Layout, fields []Field[T]) *View[T] {
	return &View[T]{backend: b, Layout: layout, Fields: fields}
}

// Kind is the resource this view manages.
func (v *View[T]) Kind() client.Kind { return v.backend.Kind() }

func (v *View[T]) fail(err error) error {
	v.Err = client.Message(err)
	return err
}

// Load replaces Records with the caller's current list.
func (v *View[T]) Load(ctx context.Context) error {
	recs, err := v.backend.List(ctx)
	if err != nil {
		return v.fail(err)
	}
	v.Records = recs
	v.Err = ""
	return nil
}

// Edit copies rec into the form; the next Submit updates it.
func (v *View[T]) Edit(rec client.Record[T]) {
	v.Form = rec.Content
	v.EditingID = rec.ID
	v.Err = ""
}

// EditByID is Edit for a record already in Records.
func (v *View[T]) EditByID(id string) error {
	for _, r := range v.Records {
		if r.ID == id {
			v.Edit(r)
			return nil
		}
	}
	return v.fail(fmt.Errorf("%s %s is not in the list", strings.ToLower(v.Kind().Name), id))
}

// Reset clears the form and leaves edit mode.
func (v *View[T]) Reset() {
	var zero T
	v.Form = zero
	v.EditingID = ""
}

// Submit creates or updates from the form, then reloads. On failure the form
// is left as the user typed it.
func (v *View[T]) Submit(ctx context.Context) (*client.Record[T], error) {
	var (
		rec *client.Record[T]
		err error
	)
	if v.EditingID != "" {
		rec, err = v.backend.Update(ctx, v.EditingID, v.Form)
	} else {
		rec, err = v.backend.Create(ctx, v.Form)
	}
	if err != nil {
		return nil, v.fail(err)
	}
	v.Reset()
	if err := v.Load(ctx); err != nil {
		return rec, err
	}
	return rec, nil
}

// Delete removes id, then reloads.
func (v *View[T]) Delete(ctx context.Context, id string) error {
	if err := v.backend.Delete(ctx, id); err != nil {
		return v.fail(err)
	}
	if v.EditingID == id {
		v.Reset()
	}
	return v.Load(ctx)
}

// Set assigns one form field from text input. Numbers, dates and ingredient
// lists are parsed the way the server parses them; an empty value clears the
// field. The form is unchanged when value does not parse.
func (v *View[T]) Set(name, value string) error {
	if !v.hasField(name) {
		return v.fail(fmt.Errorf("%s has no field %q", strings.ToLower(v.Kind().Name), name))
	}
	current, err := json.Marshal(v.Form)
	if err != nil {
		return v.fail(err)
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(current, &fields); err != nil {
		return v.fail(err)
	}
	if value == "" {
		delete(fields, name)
	} else {
		raw, _ := json.Marshal(value)
		fields[name] = raw
	}
	merged, err := json.Marshal(fields)
	if err != nil {
		return v.fail(err)
	}
	var next T
	if err := json.Unmarshal(merged, &next); err != nil {
		return v.fail(fmt.Errorf("%s: %w", name, err))
	}
	v.Form = next
	v.Err = ""
	return nil
}

func (v *View[T]) hasField(name string) bool {
	for _, f := range v.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}
