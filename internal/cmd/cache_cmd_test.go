package cmd

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/greenhouse/greenhouse-cli/internal/cache"
)

func setCacheHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", home)
	t.Setenv("HOME", home)
	t.Setenv("GREENHOUSE_NO_CACHE", "")
	dir, err := cache.DefaultDir()
	if err != nil {
		t.Fatalf("DefaultDir: %v", err)
	}
	return dir
}

func TestCacheClear_RemovesFilesAndRedisKeys(t *testing.T) {
	clearCredentialEnv(t)
	dir := setCacheHome(t)

	fc := cache.NewFileCache(dir, cache.Namespace("board"), time.Minute)
	if err := fc.Put(context.Background(), "required-fields-1", []string{"email"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	mr := miniredis.RunT(t)
	t.Setenv(envRedisURL, "redis://"+mr.Addr())
	rc, err := cache.OpenRedis(context.Background(), "redis://"+mr.Addr(), cache.Namespace("board"), time.Minute)
	if err != nil {
		t.Fatalf("OpenRedis: %v", err)
	}
	defer func() { _ = rc.Close() }()
	if err := rc.Put(context.Background(), "required-fields-1", []string{"email"}); err != nil {
		t.Fatalf("redis Put: %v", err)
	}

	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"cache", "clear", "-o", "json"}); err != nil {
			t.Fatalf("cache clear failed: %v", err)
		}
	})

	var result map[string]any
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, output)
	}
	if result["files_removed"] != float64(1) || result["redis_keys_removed"] != float64(1) {
		t.Fatalf("result = %v", result)
	}
	if len(mr.Keys()) != 0 {
		t.Fatalf("redis keys left: %v", mr.Keys())
	}
}

func TestCachePath_ListsEntries(t *testing.T) {
	clearCredentialEnv(t)
	dir := setCacheHome(t)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "jobs_0123456789ab.json"), []byte(`{}`), 0o600); err != nil {
		t.Fatal(err)
	}

	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"cache", "path"}); err != nil {
			t.Fatalf("cache path failed: %v", err)
		}
	})
	if !strings.HasPrefix(output, dir+"\n") || !strings.Contains(output, "jobs_0123456789ab.json") {
		t.Fatalf("output = %q", output)
	}
}

func TestRedisCacheOpenedOnlyForRequiredFields(t *testing.T) {
	handler := newRouteHandler().
		On("GET", boardPrefix+"jobs", jsonResponse(200, testJobsJSON)).
		On("GET", boardPrefix+"job", jsonResponse(200, testQuestionsJSON))
	setupTestEnvWithHandler(t, handler)
	setCacheHome(t)
	mr := miniredis.RunT(t)
	t.Setenv(envRedisURL, "redis://"+mr.Addr())

	_ = captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"board", "jobs"}); err != nil {
			t.Fatalf("board jobs failed: %v", err)
		}
	})
	if n := mr.TotalConnectionCount(); n != 0 {
		t.Fatalf("board jobs opened %d redis connections", n)
	}

	_ = captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"requirements", "127817"}); err != nil {
			t.Fatalf("requirements failed: %v", err)
		}
	})
	if mr.TotalConnectionCount() == 0 {
		t.Fatal("requirements did not use the redis cache")
	}
	if len(mr.Keys()) == 0 {
		t.Fatal("required fields were not cached in redis")
	}
}
