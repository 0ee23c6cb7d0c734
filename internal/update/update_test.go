package update

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func withReleaseServer(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	server := httptest.NewServer(handler)
	original := ReleasesURL
	ReleasesURL = server.URL
	t.Cleanup(func() {
		server.Close()
		ReleasesURL = original
	})
}

func release(tag string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/vnd.github+json" {
			w.WriteHeader(http.StatusNotAcceptable)
			return
		}
		_, _ = w.Write([]byte(`{"tag_name":"` + tag + `","html_url":"https://github.com/greenhouse/greenhouse-cli/releases/tag/` + tag + `"}`))
	}
}

func TestNormalizeVersion(t *testing.T) {
	tests := map[string]string{
		"1.0.0":  "v1.0.0",
		"v1.0.0": "v1.0.0",
		"":       "v",
	}
	for input, want := range tests {
		if got := normalizeVersion(input); got != want {
			t.Errorf("normalizeVersion(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestCheckForUpdate_SkipsDevBuilds(t *testing.T) {
	for _, v := range []string{"", "dev"} {
		if CheckForUpdate(context.Background(), v) != nil {
			t.Errorf("CheckForUpdate(%q) should be nil", v)
		}
	}
}

func TestCheckForUpdate(t *testing.T) {
	tests := []struct {
		name      string
		tag       string
		current   string
		available bool
	}{
		{"newer", "v1.2.0", "1.1.9", true},
		{"same", "v1.2.0", "v1.2.0", false},
		{"older", "v1.0.0", "1.2.0", false},
		{"invalid current", "v1.0.0", "nightly-42", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withReleaseServer(t, release(tt.tag))
			result := CheckForUpdate(context.Background(), tt.current)
			if result == nil {
				t.Fatal("CheckForUpdate() = nil")
			}
			if result.UpdateAvailable != tt.available {
				t.Errorf("UpdateAvailable = %v, want %v", result.UpdateAvailable, tt.available)
			}
			if result.LatestVersion != tt.tag[1:] {
				t.Errorf("LatestVersion = %q", result.LatestVersion)
			}
		})
	}
}

func TestCheckForUpdate_Failures(t *testing.T) {
	handlers := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
		"bad json":     func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("{")) },
		"no tag":       func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("{}")) },
	}
	for name, handler := range handlers {
		t.Run(name, func(t *testing.T) {
			withReleaseServer(t, handler)
			if result := CheckForUpdate(context.Background(), "1.0.0"); result != nil {
				t.Errorf("CheckForUpdate() = %+v, want nil", result)
			}
		})
	}
}
