// Test helpers for running commands against a mock Greenhouse.
//
// setupTestEnvWithHandler starts one httptest server that stands in for all
// three APIs, each under its own prefix:
//
//	/boards/<token>/embed/...   Job Board API (board token "vaulttec")
//	/applications/              Application API
//	/harvest/v1/...             Harvest API
//
// Routes are registered with newRouteHandler().On(method, path, handler) and
// matched on the exact method and path; query strings are ignored.
package cmd

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/99designs/keyring"

	"github.com/greenhouse/greenhouse-cli/internal/config"
)

const (
	testBoard          = "vaulttec"
	testApplicationKey = "app-key-1234"
	testHarvestKey     = "harvest-key-5678"
	boardPrefix        = "/boards/" + testBoard + "/embed/"
)

// captureStdout runs fn and returns what it wrote to stdout.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// captureStderr runs fn and returns what it wrote to stderr.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	fn()

	_ = w.Close()
	os.Stderr = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

type testEnv struct {
	server *httptest.Server
}

// setupTestEnvWithHandler points every API root at a test server and sets
// credentials through the environment, so no keyring profile is read.
func setupTestEnvWithHandler(t *testing.T, handler http.Handler) *testEnv {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	t.Setenv(config.EnvProfile, "")
	t.Setenv(config.EnvBoardToken, testBoard)
	t.Setenv(config.EnvApplicationAPIKey, testApplicationKey)
	t.Setenv(config.EnvHarvestAPIKey, testHarvestKey)
	t.Setenv(config.EnvHarvestVersion, "")
	t.Setenv(config.EnvOnBehalfOf, "")
	t.Setenv(config.EnvJobBoardURL, server.URL+"/boards/")
	t.Setenv(config.EnvApplicationURL, server.URL+"/applications/")
	t.Setenv(config.EnvHarvestURL, server.URL+"/harvest/")
	t.Setenv("GREENHOUSE_CONFIG_DIR", t.TempDir())
	t.Setenv("GREENHOUSE_NO_CACHE", "1")
	t.Setenv(envRedisURL, "")
	t.Setenv("GREENHOUSE_OUTPUT", "text")

	return &testEnv{server: server}
}

// clearCredentialEnv removes every credential variable so commands fall back
// to keyring profiles.
func clearCredentialEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		config.EnvProfile, config.EnvBoardToken, config.EnvApplicationAPIKey,
		config.EnvHarvestAPIKey, config.EnvHarvestVersion, config.EnvOnBehalfOf,
		config.EnvJobBoardURL, config.EnvApplicationURL, config.EnvHarvestURL,
	} {
		t.Setenv(key, "")
	}
	t.Setenv("GREENHOUSE_CONFIG_DIR", t.TempDir())
	t.Setenv("GREENHOUSE_NO_CACHE", "1")
}

// useSharedKeyring makes every keyring open in this test return the same
// in-memory ring, so profiles persist between commands.
func useSharedKeyring(t *testing.T) {
	t.Helper()
	ring := keyring.NewArrayKeyring(nil)
	t.Cleanup(config.SetOpenKeyring(func(keyring.Config) (keyring.Keyring, error) {
		return ring, nil
	}))
}

func jsonResponse(statusCode int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(body))
	}
}

// routeHandler routes requests on "METHOD PATH" and records what it served.
type routeHandler struct {
	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []*http.Request
}

func newRouteHandler() *routeHandler {
	return &routeHandler{routes: make(map[string]http.HandlerFunc)}
}

func (rh *routeHandler) On(method, path string, handler http.HandlerFunc) *routeHandler {
	rh.routes[method+" "+path] = handler
	return rh
}

func (rh *routeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rh.mu.Lock()
	rh.requests = append(rh.requests, r.Clone(r.Context()))
	rh.mu.Unlock()

	if handler, ok := rh.routes[r.Method+" "+r.URL.Path]; ok {
		handler(w, r)
		return
	}
	http.NotFound(w, r)
}

// count returns how many requests hit method and path.
func (rh *routeHandler) count(method, path string) int {
	rh.mu.Lock()
	defer rh.mu.Unlock()
	n := 0
	for _, r := range rh.requests {
		if r.Method == method && r.URL.Path == path {
			n++
		}
	}
	return n
}

func TestTestInfrastructure(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/ping", jsonResponse(200, `{"ok": true}`))
	env := setupTestEnvWithHandler(t, handler)

	resp, err := http.Get(env.server.URL + "/ping")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	resp, err = http.Get(env.server.URL + "/missing")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != 404 {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	if handler.count("GET", "/ping") != 1 {
		t.Errorf("expected one recorded /ping request")
	}
}
