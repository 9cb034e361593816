// Package storetest holds the compliance suite every store driver runs.
package storetest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mediajournal/mediajournal/internal/model"
	"github.com/mediajournal/mediajournal/internal/store"
)

// Run exercises the store.Store contract. makeStore must return a clean,
// isolated store; Run closes it when done.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	t.Run("users", func(t *testing.T) { testUsers(ctx, t, s) })
	t.Run("documents", func(t *testing.T) { testDocuments(ctx, t, s) })
	t.Run("ordering", func(t *testing.T) { testOrdering(ctx, t, s) })
}

func testUsers(ctx context.Context, t *testing.T, s store.Store) {
	email := "u-" + uuid.New().String() + "@example.test"
	created := time.Now().UTC().Truncate(time.Microsecond)

	u, err := s.Users().Create(ctx, &model.User{Username: "alice", Email: email, PasswordHash: "hash", CreatedAt: created})
	if err != nil {
		t.Fatalf("Create user: %v", err)
	}
	if u.ID == "" {
		t.Fatalf("Create user: empty id")
	}

	got, err := s.Users().GetByID(ctx, u.ID)
	if err != nil || got.Email != email || got.PasswordHash != "hash" || !got.CreatedAt.Equal(created) {
		t.Fatalf("GetByID: got=%+v err=%v", got, err)
	}
	if got, err := s.Users().GetByEmail(ctx, email); err != nil || got.ID != u.ID {
		t.Fatalf("GetByEmail: got=%+v err=%v", got, err)
	}

	if _, err := s.Users().Create(ctx, &model.User{Username: "bob", Email: email, PasswordHash: "x", CreatedAt: created}); !errors.Is(err, model.ErrConflict) {
		t.Fatalf("duplicate email: want ErrConflict, got %v", err)
	}
	if _, err := s.Users().GetByID(ctx, uuid.New().String()); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetByID missing: want ErrNotFound, got %v", err)
	}
	if _, err := s.Users().GetByEmail(ctx, "nobody@example.test"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetByEmail missing: want ErrNotFound, got %v", err)
	}
}

func testDocuments(ctx context.Context, t *testing.T, s store.Store) {
	songs := s.Collection("songs")
	movies := s.Collection("movies")
	owner, other := uuid.New().String(), uuid.New().String()
	created := time.Now().UTC().Truncate(time.Microsecond)

	d, err := songs.Insert(ctx, &store.Document{Owner: owner, CreatedAt: created, Body: json.RawMessage(`{"title":"A"}`)})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if d.ID == "" || d.Owner != owner || !d.CreatedAt.Equal(created) {
		t.Fatalf("Insert: unexpected document %+v", d)
	}
	if _, err := movies.Insert(ctx, &store.Document{Owner: owner, CreatedAt: created, Body: json.RawMessage(`{"title":"M"}`)}); err != nil {
		t.Fatalf("Insert movie: %v", err)
	}
	if _, err := songs.Insert(ctx, &store.Document{Owner: other, CreatedAt: created, Body: json.RawMessage(`{"title":"B"}`)}); err != nil {
		t.Fatalf("Insert other: %v", err)
	}

	got, err := songs.Get(ctx, d.ID)
	if err != nil || got.Owner != owner || !got.CreatedAt.Equal(created) || !jsonEqual(got.Body, `{"title":"A"}`) {
		t.Fatalf("Get: got=%+v err=%v", got, err)
	}
	if _, err := movies.Get(ctx, d.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Get from wrong collection: want ErrNotFound, got %v", err)
	}

	lst, err := songs.ListByOwner(ctx, owner)
	if err != nil || len(lst) != 1 || lst[0].ID != d.ID {
		t.Fatalf("ListByOwner: n=%d err=%v", len(lst), err)
	}
	if lst, err := s.Collection("recipes").ListByOwner(ctx, owner); err != nil || lst == nil || len(lst) != 0 {
		t.Fatalf("ListByOwner empty: lst=%v err=%v", lst, err)
	}

	if err := songs.Replace(ctx, d.ID, json.RawMessage(`{"title":"A2"}`)); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	got, err = songs.Get(ctx, d.ID)
	if err != nil || got.Owner != owner || !got.CreatedAt.Equal(created) || !jsonEqual(got.Body, `{"title":"A2"}`) {
		t.Fatalf("Get after Replace: got=%+v err=%v", got, err)
	}

	if err := songs.Delete(ctx, d.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := songs.Get(ctx, d.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Get after Delete: want ErrNotFound, got %v", err)
	}
	if err := songs.Delete(ctx, d.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Delete twice: want ErrNotFound, got %v", err)
	}
	if err := songs.Replace(ctx, d.ID, json.RawMessage(`{}`)); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Replace missing: want ErrNotFound, got %v", err)
	}
}

func testOrdering(ctx context.Context, t *testing.T, s store.Store) {
	blogs := s.Collection("blogs")
	owner := uuid.New().String()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	insert := func(at time.Time, title string) string {
		d, err := blogs.Insert(ctx, &store.Document{Owner: owner, CreatedAt: at, Body: json.RawMessage(`{"title":"` + title + `"}`)})
		if err != nil {
			t.Fatalf("Insert %s: %v", title, err)
		}
		return d.ID
	}
	oldest := insert(base, "oldest")
	newest := insert(base.Add(2*time.Hour), "newest")
	tieFirst := insert(base.Add(time.Hour), "tie-first")
	tieSecond := insert(base.Add(time.Hour), "tie-second")

	lst, err := blogs.ListByOwner(ctx, owner)
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	want := []string{newest, tieSecond, tieFirst, oldest}
	if len(lst) != len(want) {
		t.Fatalf("ListByOwner: want %d documents, got %d", len(want), len(lst))
	}
	for i, id := range want {
		if lst[i].ID != id {
			t.Fatalf("ListByOwner[%d]: want %s, got %s", i, id, lst[i].ID)
		}
	}
}

func jsonEqual(got json.RawMessage, want string) bool {
	var a, b any
	if json.Unmarshal(got, &a) != nil || json.Unmarshal([]byte(want), &b) != nil {
		return false
	}
	ab, _ := json.Marshal(a)
	bb, _ := json.Marshal(b)
	return string(ab) == string(bb)
}
