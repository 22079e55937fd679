package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"status-viewer/account"
	"status-viewer/api"
	"status-viewer/preset"
	"status-viewer/session"
	"status-viewer/storage"
)

type testEnv struct {
	srv      *httptest.Server
	sessions *session.Manager
	presets  *preset.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithStore(t, storage.NewMemoryStore())
}

// newTestEnvWithStore builds the server on top of kv, which may already hold
// saved filters or accounts.
func newTestEnvWithStore(t *testing.T, kv storage.Store) *testEnv {
	t.Helper()
	ctx := context.Background()
	pm, err := preset.NewManager(ctx, kv)
	if err != nil {
		t.Fatalf("preset.NewManager: %v", err)
	}
	accounts, err := account.NewStore(ctx, kv, nil, false)
	if err != nil {
		t.Fatalf("account.NewStore: %v", err)
	}
	sessions := session.NewManager(nil)
	staticFS := fstest.MapFS{
		"index.html": {Data: []byte("<html></html>")},
		"js/app.js":  {Data: []byte("// app")},
	}
	srv := httptest.NewServer(api.RegisterRoutes(api.Deps{
		Sessions:       sessions,
		Presets:        pm,
		Accounts:       accounts,
		Static:         staticFS,
		SignupRedirect: 10 * time.Millisecond,
		SigninRedirect: 10 * time.Millisecond,
	}))
	t.Cleanup(func() {
		srv.Close()
		sessions.Shutdown()
	})
	return &testEnv{srv: srv, sessions: sessions, presets: pm}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("expected %d, got %d", want, resp.StatusCode)
	}
}

func (e *testEnv) createSession(t *testing.T) string {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/sessions", nil)
	expectStatus(t, resp, http.StatusCreated)
	var info session.Info
	decode(t, resp, &info)
	return info.ID
}

// signedInSession creates a session, registers an account and signs in.
func (e *testEnv) signedInSession(t *testing.T) string {
	t.Helper()
	id := e.createSession(t)
	resp := e.do(t, http.MethodPost, "/api/sessions/"+id+"/signup", account.SignUpRequest{
		Username: "ada", Email: id + "@example.com", Password: "secret1", ConfirmPassword: "secret1",
	})
	expectStatus(t, resp, http.StatusCreated)
	resp.Body.Close()
	resp = e.do(t, http.MethodPost, "/api/sessions/"+id+"/signin", map[string]string{
		"email": id + "@example.com", "password": "secret1",
	})
	expectStatus(t, resp, http.StatusOK)
	resp.Body.Close()
	return id
}

func waitForScreen(t *testing.T, e *testEnv, id string, want session.Screen) {
	t.Helper()
	s, ok := e.sessions.Get(id)
	if !ok {
		t.Fatalf("session %s missing", id)
	}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.Screen() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("screen never became %q, still %q", want, s.Screen())
}
