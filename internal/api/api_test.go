package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mediajournal/mediajournal/internal/auth"
	"github.com/mediajournal/mediajournal/internal/model"
	"github.com/mediajournal/mediajournal/internal/store"
	"github.com/mediajournal/mediajournal/internal/store/sqlite"
)

const testSecret = "api-test-secret"

type stubHealth struct{ up bool }

func (s stubHealth) IsHealthy() bool             { return s.up }
func (s stubHealth) Components() map[string]bool { return map[string]bool{"store": s.up} }

// countingStore records every call that reaches the store.
type countingStore struct {
	store.Store
	calls atomic.Int64
}

func (c *countingStore) Users() store.Users {
	c.calls.Add(1)
	return c.Store.Users()
}

func (c *countingStore) Collection(name string) store.Collection {
	c.calls.Add(1)
	return c.Store.Collection(name)
}

type testAPI struct {
	t      *testing.T
	srv    *httptest.Server
	store  *countingStore
	tokens *auth.Issuer
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	auth.HashCost = bcrypt.MinCost
	s, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	cs := &countingStore{Store: s}
	tokens := auth.NewIssuer(testSecret, time.Hour, 24*time.Hour)
	srv := httptest.NewServer(NewRouter(Deps{
		Store:  cs,
		Tokens: tokens,
		Health: stubHealth{up: true},
		Log:    zerolog.Nop(),
	}))
	t.Cleanup(srv.Close)
	return &testAPI{t: t, srv: srv, store: cs, tokens: tokens}
}

// do sends a request and decodes the JSON response into out (if non-nil).
func (a *testAPI) do(method, path, token string, body any, out any) *http.Response {
	a.t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(a.t, err)
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, a.srv.URL+path, rd)
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(auth.TokenHeader, token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(a.t, err)
	defer func() { _ = resp.Body.Close() }()
	if out != nil {
		require.NoError(a.t, json.NewDecoder(resp.Body).Decode(out), "%s %s", method, path)
	}
	return resp
}

// signup registers and logs in a fresh user, returning its access token.
func (a *testAPI) signup(name string) string {
	a.t.Helper()
	email := name + "-" + uuid.NewString()[:8] + "@example.com"
	resp := a.do("POST", "/api/auth/register", "", map[string]string{"username": name, "email": email, "password": "password1"}, nil)
	require.Equal(a.t, http.StatusOK, resp.StatusCode)

	var pair auth.TokenPair
	resp = a.do("POST", "/api/auth/login", "", map[string]string{"email": email, "password": "password1"}, &pair)
	require.Equal(a.t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(a.t, pair.Token)
	return pair.Token
}

type errorBody struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
	Msg   string `json:"msg"`
}

func TestAuthFlow(t *testing.T) {
	a := newTestAPI(t)

	var reg map[string]string
	resp := a.do("POST", "/api/auth/register", "", map[string]string{"username": "alice", "email": "alice@example.com", "password": "password1"}, &reg)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "User registered", reg["msg"])

	var e errorBody
	resp = a.do("POST", "/api/auth/register", "", map[string]string{"username": "alice", "email": "ALICE@example.com", "password": "password1"}, &e)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = a.do("POST", "/api/auth/register", "", map[string]string{"username": "bob", "email": "bob@example.com", "password": "short"}, &e)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, e.Msg, "password")

	resp = a.do("POST", "/api/auth/login", "", map[string]string{"email": "alice@example.com", "password": "wrong-password"}, &e)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid credentials", e.Msg)

	var pair auth.TokenPair
	resp = a.do("POST", "/api/auth/login", "", map[string]string{"email": "alice@example.com", "password": "password1"}, &pair)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var me map[string]any
	resp = a.do("GET", "/api/auth/me", pair.Token, nil, &me)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice", me["username"])
	assert.Equal(t, reg["id"], me["id"])
	assert.NotContains(t, me, "passwordHash")
	assert.NotContains(t, me, "PasswordHash")

	var refreshed auth.TokenPair
	resp = a.do("POST", "/api/auth/refresh-token", "", map[string]string{"refreshToken": pair.RefreshToken}, &refreshed)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, refreshed.Token)

	resp = a.do("POST", "/api/auth/refresh-token", "", map[string]string{"refreshToken": pair.Token}, &e)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSongScenario(t *testing.T) {
	a := newTestAPI(t)
	u1, u2 := a.signup("u1"), a.signup("u2")

	var created map[string]any
	resp := a.do("POST", "/api/songs", u1, map[string]any{"title": "A", "artist": "B", "album": "C", "rating": 5, "owner": "someone-else"}, &created)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "A", created["title"])
	assert.NotEqual(t, "someone-else", created["owner"])
	assert.NotEmpty(t, created["id"])
	assert.NotEmpty(t, created["createdAt"])

	var list1 []map[string]any
	resp = a.do("GET", "/api/songs", u1, nil, &list1)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list1, 1)
	assert.Equal(t, created["id"], list1[0]["id"])
	assert.Equal(t, "C", list1[0]["album"])
	assert.EqualValues(t, 5, list1[0]["rating"])

	var list2 []map[string]any
	resp = a.do("GET", "/api/songs", u2, nil, &list2)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotNil(t, list2)
	assert.Empty(t, list2)
}

func TestMovieDeleteByOtherUser(t *testing.T) {
	a := newTestAPI(t)
	u1, u2 := a.signup("u1"), a.signup("u2")

	var m map[string]any
	resp := a.do("POST", "/api/movies", u1, map[string]any{"title": "Heat", "director": "Mann"}, &m)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	id := m["id"].(string)

	var e errorBody
	resp = a.do("DELETE", "/api/movies/"+id, u2, nil, &e)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "User not authorized", e.Msg)

	resp = a.do("GET", "/api/movies/"+id, u2, nil, &e)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp = a.do("PUT", "/api/movies/"+id, u2, map[string]any{"title": "Mine"}, &e)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var list []map[string]any
	resp = a.do("GET", "/api/movies", u1, nil, &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0]["id"])
	assert.Equal(t, "Heat", list[0]["title"])
}

func TestGetNonexistent(t *testing.T) {
	a := newTestAPI(t)
	u1, u2 := a.signup("u1"), a.signup("u2")

	for _, tok := range []string{u1, u2} {
		for _, id := range []string{uuid.NewString(), "not-an-id"} {
			var e errorBody
			resp := a.do("GET", "/api/movies/"+id, tok, nil, &e)
			assert.Equal(t, http.StatusNotFound, resp.StatusCode)
			assert.Equal(t, "Movie not found", e.Msg)
		}
	}
}

func TestExpiredTokenRejectedBeforeStore(t *testing.T) {
	a := newTestAPI(t)
	past := time.Now().Add(-3 * time.Hour)
	pair, err := auth.NewIssuer(testSecret, time.Hour, time.Hour).WithClock(func() time.Time { return past }).
		IssuePair(auth.Identity{UserID: uuid.NewString(), Username: "ghost"})
	require.NoError(t, err)

	before := a.store.calls.Load()
	id := uuid.NewString()
	for _, kind := range model.Kinds() {
		base := "/api/" + kind.Collection
		for _, c := range []struct{ method, path string }{
			{"POST", base}, {"GET", base}, {"GET", base + "/" + id}, {"PUT", base + "/" + id}, {"DELETE", base + "/" + id},
		} {
			var e errorBody
			resp := a.do(c.method, c.path, pair.Token, map[string]any{"title": "x"}, &e)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", c.method, c.path)
			assert.Equal(t, "Token has expired", e.Msg)
		}
	}
	resp := a.do("GET", "/api/auth/me", pair.Token, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, before, a.store.calls.Load(), "store must not be touched")
}

func TestMissingOrBadToken(t *testing.T) {
	a := newTestAPI(t)
	var e errorBody
	resp := a.do("GET", "/api/recipes", "", nil, &e)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "No token, authorization denied", e.Msg)

	resp = a.do("GET", "/api/recipes", "garbage", nil, &e)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Token is not valid", e.Msg)

	// refresh tokens are not access tokens
	pair, err := a.tokens.IssuePair(auth.Identity{UserID: uuid.NewString()})
	require.NoError(t, err)
	resp = a.do("GET", "/api/recipes", pair.RefreshToken, nil, &e)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestBearerHeaderAccepted(t *testing.T) {
	a := newTestAPI(t)
	tok := a.signup("u1")

	req, err := http.NewRequest("GET", a.srv.URL+"/api/blogs", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestValidationErrors(t *testing.T) {
	a := newTestAPI(t)
	tok := a.signup("u1")

	cases := []struct {
		path string
		body any
	}{
		{"/api/blogs", map[string]any{"title": "only title"}},
		{"/api/songs", map[string]any{"title": "A", "artist": "B", "rating": 6}},
		{"/api/songs", map[string]any{"title": "A", "artist": "B", "rating": 0}},
		{"/api/musicvideos", map[string]any{"title": "A", "artist": "B", "url": "javascript:alert(1)"}},
		{"/api/movies", map[string]any{"title": "A"}},
		{"/api/recipes", map[string]any{"title": "A", "ingredients": []string{}, "instructions": "x", "prepTime": 1, "cookTime": 1, "servings": 1}},
		{"/api/recipes", map[string]any{"title": "A", "ingredients": "egg", "instructions": "x", "prepTime": "soon", "cookTime": 1, "servings": 1}},
		{"/api/songs", `{"title":`},
		{"/api/songs", `[1,2]`},
	}
	for _, c := range cases {
		var e errorBody
		resp := a.do("POST", c.path, tok, c.body, &e)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "%s %v", c.path, c.body)
		assert.Equal(t, http.StatusBadRequest, e.Code)
		assert.NotEmpty(t, e.Msg)
	}
}

func TestValidationErrors_NameTheField(t *testing.T) {
	a := newTestAPI(t)
	tok := a.signup("u1")

	var e errorBody
	resp := a.do("POST", "/api/songs", tok, map[string]any{"title": "A", "artist": "B", "rating": "five"}, &e)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, `rating "five" is not a number`, e.Msg)

	resp = a.do("POST", "/api/recipes", tok, map[string]any{"title": "A", "ingredients": "egg", "instructions": "x", "prepTime": "soon", "cookTime": 1, "servings": 1}, &e)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, e.Msg, "prepTime")
}

func TestUpdateKeepsEnvelope(t *testing.T) {
	a := newTestAPI(t)
	tok := a.signup("u1")

	var rec map[string]any
	resp := a.do("POST", "/api/recipes", tok, map[string]any{
		"title": "Soup", "ingredients": "water\nsalt", "instructions": "boil", "prepTime": "5", "cookTime": 10, "servings": 2,
	}, &rec)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{"water", "salt"}, rec["ingredients"])
	id := rec["id"].(string)

	var upd map[string]any
	resp = a.do("PUT", "/api/recipes/"+id, tok, map[string]any{
		"servings": 4, "id": uuid.NewString(), "owner": uuid.NewString(), "createdAt": "2000-01-01T00:00:00Z",
	}, &upd)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, id, upd["id"])
	assert.Equal(t, rec["owner"], upd["owner"])
	assert.Equal(t, rec["createdAt"], upd["createdAt"])
	assert.EqualValues(t, 4, upd["servings"])
	assert.Equal(t, "Soup", upd["title"])

	var e errorBody
	resp = a.do("PUT", "/api/recipes/"+id, tok, map[string]any{"servings": 0}, &e)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var removed map[string]string
	resp = a.do("DELETE", "/api/recipes/"+id, tok, nil, &removed)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]string{"msg": "Recipe removed", "id": id}, removed)

	resp = a.do("GET", "/api/recipes/"+id, tok, nil, &e)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

type unavailableStore struct{ store.Store }

func (unavailableStore) Collection(string) store.Collection { return unavailableCollection{} }

type unavailableCollection struct{ store.Collection }

func (unavailableCollection) ListByOwner(context.Context, string) ([]*store.Document, error) {
	return nil, model.ErrUnavailable
}

func TestTransientStoreErrorIs503(t *testing.T) {
	tokens := auth.NewIssuer(testSecret, time.Hour, time.Hour)
	srv := httptest.NewServer(NewRouter(Deps{Store: unavailableStore{}, Tokens: tokens, Health: stubHealth{}, Log: zerolog.Nop()}))
	defer srv.Close()

	pair, err := tokens.IssuePair(auth.Identity{UserID: uuid.NewString()})
	require.NoError(t, err)
	req, _ := http.NewRequest("GET", srv.URL+"/api/blogs", nil)
	req.Header.Set(auth.TokenHeader, pair.Token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
}

func TestHealthAndCORS(t *testing.T) {
	a := newTestAPI(t)

	var h map[string]any
	resp := a.do("GET", "/api/health", "", nil, &h)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "UP", h["status"])

	req, _ := http.NewRequest("OPTIONS", a.srv.URL+"/api/songs", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	pre, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = pre.Body.Close()
	assert.Equal(t, http.StatusNoContent, pre.StatusCode)
	assert.Equal(t, "*", pre.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, pre.Header.Get("Access-Control-Allow-Headers"), auth.TokenHeader)

	down := httptest.NewServer(NewRouter(Deps{Store: a.store, Tokens: a.tokens, Health: stubHealth{up: false}, Log: zerolog.Nop()}))
	defer down.Close()
	r2, err := http.Get(down.URL + "/api/health")
	require.NoError(t, err)
	_ = r2.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, r2.StatusCode)
}
