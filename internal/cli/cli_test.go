package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gauravnainwal518/note-app/pkg/client"
)

const testToken = "session-token"

type fakeServer struct {
	mu     sync.Mutex
	userID uuid.UUID
	notes  []client.Note
}

func newFakeServer(t *testing.T) *httptest.Server {
	t.Helper()
	f := &fakeServer{userID: uuid.New()}
	mux := http.NewServeMux()

	authorized := func(w http.ResponseWriter, r *http.Request) bool {
		if r.Header.Get("Authorization") == "Bearer "+testToken {
			return true
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid session credential","code":"INVALID_CREDENTIAL_FORMAT"}`))
		return false
	}
	login := func(w http.ResponseWriter, email string) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": "Login successful",
			"token":   testToken,
			"user":    map[string]any{"id": f.userID, "name": "Ann", "email": email},
		})
	}

	mux.HandleFunc("POST /api/auth/request-otp", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"OTP sent successfully"}`))
	})
	mux.HandleFunc("POST /api/auth/verify-otp", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["otp"] != "123456" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"Invalid OTP","code":"INVALID_CODE"}`))
			return
		}
		login(w, body["email"])
	})
	mux.HandleFunc("POST /api/auth/google-login", func(w http.ResponseWriter, r *http.Request) {
		login(w, "ann@gmail.com")
	})
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user": map[string]any{"id": f.userID, "name": "Ann", "email": "ann@example.com"},
		})
	})
	mux.HandleFunc("POST /api/notes", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		note := client.Note{ID: uuid.New(), OwnerID: f.userID, Title: body["title"], Content: body["content"], CreatedAt: time.Now()}
		f.mu.Lock()
		f.notes = append(f.notes, note)
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(note)
	})
	mux.HandleFunc("GET /api/notes", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(append([]client.Note{}, f.notes...))
	})
	mux.HandleFunc("DELETE /api/notes/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		for i, n := range f.notes {
			if n.ID.String() == r.PathValue("id") {
				f.notes = append(f.notes[:i], f.notes[i+1:]...)
				_, _ = w.Write([]byte(`{"message":"Note deleted successfully"}`))
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Note not found","code":"NOTE_NOT_FOUND"}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// isolate keeps the host's config and session out of the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("NOTECTL_TOKEN", "")
	t.Setenv("NOTECTL_API_URL", "")
	return dir
}

func run(args ...string) (string, error) {
	var out bytes.Buffer
	cmd := NewRootCommand(&out)
	cmd.SetArgs(args)
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	return out.String(), err
}

func TestLoginVerify_WithoutKeepPrintsToken(t *testing.T) {
	dir := isolate(t)
	srv := newFakeServer(t)
	sessionFile := filepath.Join(dir, "session.yaml")
	api := srv.URL + "/api"

	out, err := run("login", "verify", "--api-url", api, "--session-file", sessionFile,
		"--email", "ann@example.com", "--code", "123456")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as Ann <ann@example.com>")
	assert.Contains(t, out, "export NOTECTL_TOKEN="+testToken)
	assert.NoFileExists(t, sessionFile)

	_, err = run("whoami", "--api-url", api, "--session-file", sessionFile)
	assert.ErrorIs(t, err, client.ErrNoSession)

	out, err = run("whoami", "--api-url", api, "--token", testToken)
	require.NoError(t, err)
	assert.Contains(t, out, "Ann <ann@example.com>")
}

func TestLoginVerify_KeepAndManageNotes(t *testing.T) {
	dir := isolate(t)
	srv := newFakeServer(t)
	sessionFile := filepath.Join(dir, "notectl", "session.yaml")
	flags := []string{"--api-url", srv.URL + "/api", "--session-file", sessionFile}
	with := func(args ...string) []string { return append(args, flags...) }

	out, err := run(with("login", "verify", "--email", "ann@example.com", "--code", "123456", "--keep")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Session saved to "+sessionFile)
	assert.FileExists(t, sessionFile)

	out, err = run(with("notes", "list")...)
	require.NoError(t, err)
	assert.Equal(t, "No notes yet.\n", out)

	out, err = run(with("notes", "add", "--title", "Groceries", "--content", "milk")...)
	require.NoError(t, err)
	require.Contains(t, out, "Created note ")

	out, err = run(with("notes", "list")...)
	require.NoError(t, err)
	assert.Contains(t, out, "TITLE")
	assert.Contains(t, out, "Groceries")

	var id string
	for _, line := range bytes.Split([]byte(out), []byte("\n"))[1:] {
		if fields := bytes.Fields(line); len(fields) > 0 {
			id = string(fields[0])
		}
	}
	require.NotEmpty(t, id)

	out, err = run(with("notes", "rm", id)...)
	require.NoError(t, err)
	assert.Equal(t, "Note deleted.\n", out)

	_, err = run(with("notes", "rm", id)...)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "NOTE_NOT_FOUND", apiErr.Code)

	out, err = run(with("logout")...)
	require.NoError(t, err)
	assert.Equal(t, "Logged out.\n", out)
	assert.NoFileExists(t, sessionFile)
}

func TestLoginFailures(t *testing.T) {
	dir := isolate(t)
	srv := newFakeServer(t)
	api := srv.URL + "/api"

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "wrong code",
			args:    []string{"login", "verify", "--api-url", api, "--email", "ann@example.com", "--code", "000000"},
			wantErr: "INVALID_CODE",
		},
		{
			name:    "missing code flag",
			args:    []string{"login", "verify", "--api-url", api, "--email", "ann@example.com"},
			wantErr: `required flag(s) "code" not set`,
		},
		{
			name:    "stale token",
			args:    []string{"whoami", "--api-url", api, "--token", "stale"},
			wantErr: "401",
		},
		{
			name:    "invalid note id",
			args:    []string{"notes", "rm", "not-a-uuid", "--api-url", api, "--token", testToken},
			wantErr: `invalid note id "not-a-uuid"`,
		},
		{
			name:    "no session",
			args:    []string{"notes", "list", "--api-url", api, "--session-file", filepath.Join(dir, "none.yaml")},
			wantErr: "not logged in",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGoogleLoginAndRequest(t *testing.T) {
	isolate(t)
	srv := newFakeServer(t)
	api := srv.URL + "/api"

	out, err := run("login", "request", "--api-url", api, "--email", "ann@example.com", "--name", "Ann")
	require.NoError(t, err)
	assert.Contains(t, out, "Code sent to ann@example.com")

	out, err = run("login", "google", "--api-url", api, "--id-token", "google-id-token")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as Ann <ann@gmail.com>")
}

func TestConfigFileAndEnv(t *testing.T) {
	dir := isolate(t)
	srv := newFakeServer(t)

	cfgPath := filepath.Join(dir, "notectl.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("api-url: "+srv.URL+"/api\n"), 0o600))
	t.Setenv("NOTECTL_TOKEN", testToken)

	out, err := run("whoami", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Ann <ann@example.com>")
}
