package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"
)

// User is an account that owns records.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Kind names a resource type and the collection its records live in.
type Kind struct {
	Name       string // singular, human readable: "Song"
	Collection string // store collection and route segment: "songs"
}

var (
	KindBlog       = Kind{Name: "Blog", Collection: "blogs"}
	KindSong       = Kind{Name: "Song", Collection: "songs"}
	KindMusicVideo = Kind{Name: "Music video", Collection: "musicvideos"}
	KindMovie      = Kind{Name: "Movie", Collection: "movies"}
	KindRecipe     = Kind{Name: "Recipe", Collection: "recipes"}
)

// Kinds lists every resource type served by the API.
func Kinds() []Kind {
	return []Kind{KindBlog, KindSong, KindMusicVideo, KindMovie, KindRecipe}
}

// Content is implemented by the per-type field structs (Song, Movie, ...).
// Normalized returns a trimmed copy; Validate checks it against the schema.
type Content[T any] interface {
	Normalized() T
	Validate() error
}

// Fields is a flat JSON object as received from a client.
type Fields map[string]json.RawMessage

// Envelope keys are assigned by the server and never read from client input.
var envelopeKeys = []string{"id", "_id", "owner", "user", "author", "createdAt"}

// WithoutEnvelope returns a copy of f with server-assigned keys removed.
func (f Fields) WithoutEnvelope() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	for _, k := range envelopeKeys {
		delete(out, k)
	}
	return out
}

// Record is a stored content item plus its ownership envelope. On the wire
// the envelope and content fields share one flat JSON object.
type Record[T any] struct {
	ID        string
	Owner     string
	CreatedAt time.Time
	Content   T
}

type envelope struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r Record[T]) MarshalJSON() ([]byte, error) {
	body, err := json.Marshal(r.Content)
	if err != nil {
		return nil, err
	}
	fields := Fields{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("content must encode as an object: %w", err)
	}
	env, err := json.Marshal(envelope{ID: r.ID, Owner: r.Owner, CreatedAt: r.CreatedAt})
	if err != nil {
		return nil, err
	}
	var envFields Fields
	if err := json.Unmarshal(env, &envFields); err != nil {
		return nil, err
	}
	for k, v := range envFields {
		fields[k] = v
	}
	return json.Marshal(fields)
}

func (r *Record[T]) UnmarshalJSON(b []byte) error {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	var content T
	if err := json.Unmarshal(b, &content); err != nil {
		return err
	}
	r.ID, r.Owner, r.CreatedAt, r.Content = env.ID, env.Owner, env.CreatedAt, content
	return nil
}

// DecodeContent decodes client fields into a typed content struct. Envelope
// keys and unknown keys are ignored. Decoding failures are ValidationErrors.
func DecodeContent[T any](f Fields) (T, error) {
	var out T
	body, err := json.Marshal(f.WithoutEnvelope())
	if err != nil {
		return out, NewValidationError("", "body must be a JSON object")
	}
	if err := json.Unmarshal(body, &out); err != nil {
		var ute *json.UnmarshalTypeError
		if errors.As(err, &ute) && ute.Field != "" {
			return out, Invalidf(ute.Field, "must be a %s", jsonKind(ute.Type.Kind().String()))
		}
		var ve *ValidationError
		if errors.As(err, &ve) {
			if ve.Field == "" {
				return out, NewValidationError(failingKey[T](f.WithoutEnvelope()), ve.Message)
			}
			return out, ve
		}
		return out, NewValidationError("", err.Error())
	}
	return out, nil
}

// failingKey finds the first key, in sorted order, whose value alone does not
// decode into T.
func failingKey[T any](f Fields) string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		body, err := json.Marshal(Fields{k: f[k]})
		if err != nil {
			continue
		}
		var single T
		if json.Unmarshal(body, &single) != nil {
			return k
		}
	}
	return ""
}

// MergeContent overlays patch onto current and decodes the result. Keys absent
// from patch keep their current value.
func MergeContent[T any](current T, patch Fields) (T, error) {
	body, err := json.Marshal(current)
	if err != nil {
		var zero T
		return zero, err
	}
	merged := Fields{}
	if err := json.Unmarshal(body, &merged); err != nil {
		var zero T
		return zero, err
	}
	for k, v := range patch.WithoutEnvelope() {
		merged[k] = v
	}
	return DecodeContent[T](merged)
}

func jsonKind(goKind string) string {
	switch goKind {
	case "string":
		return "string"
	case "slice", "array":
		return "list"
	case "struct", "map":
		return "object"
	case "bool":
		return "boolean"
	default:
		return "number"
	}
}
