package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/mediajournal/mediajournal/client"
	"github.com/mediajournal/mediajournal/internal/api"
	"github.com/mediajournal/mediajournal/internal/auth"
	"github.com/mediajournal/mediajournal/internal/config"
	"github.com/mediajournal/mediajournal/internal/store/sqlite"
)

type upHealth struct{}

func (upHealth) IsHealthy() bool             { return true }
func (upHealth) Components() map[string]bool { return map[string]bool{"store": true} }

type cliTestEnv struct {
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	auth.HashCost = bcrypt.MinCost

	base := t.TempDir()
	st, err := sqlite.New(context.Background(), filepath.Join(base, "journal.db"))
	if err != nil {
		t.Fatalf("sqlite.New: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	cfg := config.NewForTesting()
	srv := httptest.NewServer(api.NewRouter(api.Deps{
		Store:  st,
		Tokens: auth.NewIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		Health: upHealth{},
		Log:    zerolog.Nop(),
	}))
	t.Cleanup(srv.Close)

	configPath := filepath.Join(base, "journalctl.toml")
	contents := "api_url = \"" + srv.URL + "\"\n" +
		"output = \"table\"\n" +
		"session_file = \"" + filepath.Join(base, "session.json") + "\"\n"
	if err := os.WriteFile(configPath, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &cliTestEnv{configPath: configPath, baseDir: base}
}

func (e *cliTestEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCLI_EndToEnd(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := env.run(t, "password1\n", "register", "-u", "alice", "-e", "alice@example.com", "--password-stdin")
	if err != nil {
		t.Fatalf("register: %v\n%s", err, out)
	}
	if _, err := env.run(t, "password1\n", "login", "-e", "alice@example.com", "--password-stdin"); err != nil {
		t.Fatalf("login: %v", err)
	}

	out, err = env.run(t, "", "whoami")
	if err != nil || !strings.Contains(out, "alice") {
		t.Fatalf("whoami: %v\n%s", err, out)
	}

	out, err = env.run(t, "", "songs", "add", "--set", "title=A", "--set", "artist=B", "--set", "album=C", "--set", "rating=5")
	if err != nil {
		t.Fatalf("songs add: %v\n%s", err, out)
	}
	if !strings.Contains(out, "*****") {
		t.Fatalf("expected rating stars in table output:\n%s", out)
	}

	out, err = env.run(t, "", "songs", "list", "-o", "json")
	if err != nil {
		t.Fatalf("songs list: %v", err)
	}
	var songs []client.Record[client.Song]
	if err := json.Unmarshal([]byte(out), &songs); err != nil {
		t.Fatalf("decode list: %v\n%s", err, out)
	}
	if len(songs) != 1 || songs[0].Content.Album != "C" {
		t.Fatalf("unexpected songs: %+v", songs)
	}
	id := songs[0].ID

	out, err = env.run(t, "", "songs", "update", id, "--set", "album=D", "-o", "cards")
	if err != nil || !strings.Contains(out, "Album: D") {
		t.Fatalf("songs update: %v\n%s", err, out)
	}

	if out, err := env.run(t, "", "songs", "delete", id); err != nil || !strings.Contains(out, "Song removed") {
		t.Fatalf("songs delete: %v\n%s", err, out)
	}

	if _, err := env.run(t, "", "logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := env.run(t, "", "songs", "list"); err == nil {
		t.Fatalf("expected list to fail after logout")
	}
}

func TestCLI_ValidationMessageIsOneLine(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, err := env.run(t, "password1\n", "register", "-u", "bob", "-e", "bob@example.com", "--password-stdin"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := env.run(t, "password1\n", "login", "-e", "bob@example.com", "--password-stdin"); err != nil {
		t.Fatalf("login: %v", err)
	}

	_, err := env.run(t, "", "movies", "add", "--set", "title=Heat")
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if msg := err.Error(); strings.Contains(msg, "\n") || !strings.Contains(msg, "director") {
		t.Fatalf("unexpected error message %q", msg)
	}

	if _, err := env.run(t, "", "movies", "add", "--set", "rating=lots"); err == nil {
		t.Fatalf("expected parse error for rating")
	}
}

func TestLoadCLIConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journalctl.toml")
	if err := os.WriteFile(path, []byte("api_url = \"http://journal.local:5000/\"\noutput = \"CARDS\"\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := loadCLIConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://journal.local:5000" || cfg.Output != outputCards {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	if err := os.WriteFile(path, []byte("output = \"xml\"\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := loadCLIConfig(path); err == nil {
		t.Fatalf("expected error for unknown output")
	}

	if _, err := loadCLIConfig(filepath.Join(dir, "missing.toml")); err == nil {
		t.Fatalf("expected error for explicit missing config")
	}
}
