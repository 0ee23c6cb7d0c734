package cmd

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestHarvestCall_GetWithID(t *testing.T) {
	var gotAuth string
	handler := newRouteHandler().
		On("GET", "/harvest/v1/applications/12345/scorecards", func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			jsonResponse(200, `[{"id": 1, "overall_recommendation": "yes"}]`)(w, r)
		})
	setupTestEnvWithHandler(t, handler)

	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"harvest", "call", "getScorecardsForApplication", "--id", "12345"})
		if err != nil {
			t.Fatalf("harvest call failed: %v", err)
		}
	})

	var body []map[string]any
	if err := json.Unmarshal([]byte(output), &body); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, output)
	}
	if len(body) != 1 || body[0]["overall_recommendation"] != "yes" {
		t.Fatalf("unexpected body: %v", body)
	}
	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte(testHarvestKey+":"))
	if gotAuth != wantAuth {
		t.Errorf("Authorization = %q, want %q", gotAuth, wantAuth)
	}
}

func TestHarvestCall_QueryParamsInOrder(t *testing.T) {
	var gotQuery string
	handler := newRouteHandler().
		On("GET", "/harvest/v1/candidates", func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.RawQuery
			jsonResponse(200, `[]`)(w, r)
		})
	setupTestEnvWithHandler(t, handler)

	_ = captureStdout(t, func() {
		err := Execute(context.Background(), []string{"harvest", "call", "getCandidates",
			"-p", "per_page=50", "-p", "page=2", "--updated-after", "2026-01-31T00:00:00Z"})
		if err != nil {
			t.Fatalf("harvest call failed: %v", err)
		}
	})

	if !strings.HasPrefix(gotQuery, "per_page=50&page=2&updated_after=2026-01-31T00%3A00%3A00Z") {
		t.Fatalf("query = %q", gotQuery)
	}
}

func TestHarvestCall_PostSendsBodyAndOnBehalfOf(t *testing.T) {
	var (
		gotBody        map[string]any
		gotOnBehalfOf  string
		gotContentType string
	)
	handler := newRouteHandler().
		On("POST", "/harvest/v1/candidates/42/activity_feed/notes", func(w http.ResponseWriter, r *http.Request) {
			gotOnBehalfOf = r.Header.Get("On-Behalf-Of")
			gotContentType = r.Header.Get("Content-Type")
			data, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(data, &gotBody)
			jsonResponse(201, `{"id": 77}`)(w, r)
		})
	setupTestEnvWithHandler(t, handler)
	t.Setenv("GREENHOUSE_ON_BEHALF_OF", "4080")

	_ = captureStdout(t, func() {
		err := Execute(context.Background(), []string{"harvest", "call", "postNoteForCandidate", "--id", "42",
			"-d", `{"user_id": 4080, "body": "Strong referral", "visibility": "public"}`})
		if err != nil {
			t.Fatalf("harvest call failed: %v", err)
		}
	})

	if gotOnBehalfOf != "4080" {
		t.Errorf("On-Behalf-Of = %q, want 4080", gotOnBehalfOf)
	}
	if !strings.HasPrefix(gotContentType, "application/json") {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if gotBody["body"] != "Strong referral" {
		t.Errorf("body = %v", gotBody)
	}
}

func TestHarvestCall_IncludeLinks(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/harvest/v1/jobs", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Link", `<https://harvest.greenhouse.io/v1/jobs?page=2>; rel="next", <https://harvest.greenhouse.io/v1/jobs?page=9>; rel="last"`)
			w.Header().Set("X-RateLimit-Limit", "50")
			w.Header().Set("X-RateLimit-Remaining", "49")
			jsonResponse(200, `[{"id": 1}]`)(w, r)
		})
	setupTestEnvWithHandler(t, handler)

	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"harvest", "call", "getJobs", "--include-links"})
		if err != nil {
			t.Fatalf("harvest call failed: %v", err)
		}
	})

	var payload struct {
		Status int              `json:"status"`
		Data   []map[string]any `json:"data"`
		Links  struct {
			Next string `json:"next"`
			Last string `json:"last"`
		} `json:"links"`
		RateLimit map[string]any `json:"rate_limit"`
	}
	if err := json.Unmarshal([]byte(output), &payload); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, output)
	}
	if payload.Links.Next != "https://harvest.greenhouse.io/v1/jobs?page=2" {
		t.Errorf("next = %q", payload.Links.Next)
	}
	if payload.Links.Last != "https://harvest.greenhouse.io/v1/jobs?page=9" {
		t.Errorf("last = %q", payload.Links.Last)
	}
	if payload.RateLimit["remaining"] != float64(49) {
		t.Errorf("rate_limit = %v", payload.RateLimit)
	}
	if len(payload.Data) != 1 {
		t.Errorf("data = %v", payload.Data)
	}
}

func TestHarvestCall_AllFollowsNextLinks(t *testing.T) {
	var serverURL string
	handler := newRouteHandler().
		On("GET", "/harvest/v1/jobs", func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("page") == "2" {
				jsonResponse(200, `[{"id": 3}]`)(w, r)
				return
			}
			w.Header().Set("Link", "<"+serverURL+"/harvest/v1/jobs?page=2>; rel=\"next\"")
			jsonResponse(200, `[{"id": 1}, {"id": 2}]`)(w, r)
		})
	env := setupTestEnvWithHandler(t, handler)
	serverURL = env.server.URL

	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"harvest", "call", "getJobs", "--all", "--query", "[.[].id]", "--compact"})
		if err != nil {
			t.Fatalf("harvest call --all failed: %v", err)
		}
	})
	if strings.TrimSpace(output) != "[1,2,3]" {
		t.Fatalf("unexpected output: %q", output)
	}
}

func TestHarvestCall_InvalidOperation(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler())

	var err error
	stderr := captureStderr(t, func() {
		err = Execute(context.Background(), []string{"harvest", "call", "getScorecardsForApplication"})
	})
	if err == nil {
		t.Fatal("expected error for missing id")
	}
	if got := ExitCode(err); got != exitUsage {
		t.Fatalf("exit code = %d, want %d", got, exitUsage)
	}
	if !strings.Contains(stderr, "must include an id parameter") {
		t.Fatalf("stderr = %s", stderr)
	}
}

func TestHarvestCall_DryRunDoesNotSend(t *testing.T) {
	handler := newRouteHandler()
	setupTestEnvWithHandler(t, handler)

	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"harvest", "call", "patchApplication", "--id", "9",
			"-d", `{"source_id": 16}`, "--dry-run", "-o", "json"})
		if err != nil {
			t.Fatalf("dry run failed: %v", err)
		}
	})

	var preview struct {
		Method   string   `json:"method"`
		URL      string   `json:"url"`
		Body     string   `json:"body"`
		Warnings []string `json:"warnings"`
	}
	if err := json.Unmarshal([]byte(output), &preview); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, output)
	}
	if preview.Method != "PATCH" || !strings.HasSuffix(preview.URL, "/harvest/v1/applications/9") {
		t.Errorf("preview = %+v", preview)
	}
	if preview.Body != `{"source_id": 16}` {
		t.Errorf("body = %q", preview.Body)
	}
	if len(preview.Warnings) != 1 || !strings.Contains(preview.Warnings[0], "On-Behalf-Of") {
		t.Errorf("warnings = %v", preview.Warnings)
	}
	if len(handler.requests) != 0 {
		t.Errorf("dry run sent %d requests", len(handler.requests))
	}
}

func TestHarvestCall_MissingKey(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler())
	t.Setenv("GREENHOUSE_HARVEST_API_KEY", "")

	var err error
	_ = captureStderr(t, func() {
		err = Execute(context.Background(), []string{"harvest", "call", "getJobs"})
	})
	if err == nil {
		t.Fatal("expected error without a Harvest key")
	}
	if got := ExitCode(err); got != exitAuth {
		t.Fatalf("exit code = %d, want %d", got, exitAuth)
	}
}

func TestHarvestResolve_Offline(t *testing.T) {
	clearCredentialEnv(t)

	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"harvest", "resolve", "getOffersForApplication",
			"--id", "12", "--second-id", "7", "-o", "json"})
		if err != nil {
			t.Fatalf("harvest resolve failed: %v", err)
		}
	})

	var req struct {
		Method string `json:"method"`
		URL    string `json:"url"`
	}
	if err := json.Unmarshal([]byte(output), &req); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, output)
	}
	if req.Method != "get" || req.URL != "applications/12/offers/7" {
		t.Fatalf("resolved = %+v", req)
	}
}

func TestHarvestRoutes_ListsSpecialCases(t *testing.T) {
	clearCredentialEnv(t)

	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"harvest", "routes"}); err != nil {
			t.Fatalf("harvest routes failed: %v", err)
		}
	})
	for _, want := range []string{"getActivityFeedForCandidate", "candidates/{id}/activity_feed", "custom_fields/ without id"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestBuildParams(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("reserved keys first", func(t *testing.T) {
		params, err := buildParams(nil, harvestCallOptions{
			id:       "12",
			secondID: "7",
			headers:  []string{"X-Trace=abc"},
			params:   []string{"status=active"},
		}, now)
		if err != nil {
			t.Fatalf("buildParams: %v", err)
		}
		var keys []string
		for _, p := range params {
			keys = append(keys, p.Key)
		}
		if got := strings.Join(keys, ","); got != "id,second_id,headers,status" {
			t.Fatalf("keys = %s", got)
		}
	})

	t.Run("second id needs id", func(t *testing.T) {
		if _, err := buildParams(nil, harvestCallOptions{secondID: "7"}, now); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("reserved param rejected", func(t *testing.T) {
		if _, err := buildParams(nil, harvestCallOptions{params: []string{"id=3"}}, now); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("invalid body", func(t *testing.T) {
		if _, err := buildParams(nil, harvestCallOptions{data: "{nope"}, now); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("non-numeric on-behalf-of", func(t *testing.T) {
		if _, err := buildParams(nil, harvestCallOptions{onBehalfOf: "bob"}, now); err == nil {
			t.Fatal("expected error")
		}
	})
}
