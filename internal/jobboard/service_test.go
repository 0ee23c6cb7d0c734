package jobboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenhouse/greenhouse-cli/internal/api"
	"github.com/greenhouse/greenhouse-cli/internal/resolve"
)

const jobsFixture = `{
  "jobs": [
    {"id": 127817, "title": "Vault Designer", "location": {"name": "NYC"}, "absolute_url": "https://boards.greenhouse.io/vaulttec/jobs/127817", "updated_at": "2026-01-22T15:30:00-05:00"},
    {"id": 127818, "title": "Senior Backend Engineer", "location": {"name": "Remote"}},
    {"id": 127819, "title": "Overseer", "location": {"name": "Vault 101"}}
  ],
  "meta": {"total": 3}
}`

func newBoardServer(t *testing.T, routes map[string]string) (*httptest.Server, *[]string) {
	t.Helper()
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uri := r.URL.RequestURI()
		seen = append(seen, uri)
		body, ok := routes[uri]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"status":404,"error":"Job not found"}`))
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &seen
}

func TestBoardURL(t *testing.T) {
	assert.Equal(t, "https://boards-api.greenhouse.io/v1/boards/vaulttec/embed/", BoardURL("", "vaulttec"))
	assert.Equal(t, "http://localhost:9000/v1/boards/vaulttec/embed/", BoardURL("http://localhost:9000/v1/boards", "vaulttec"))
}

func TestJobPaths(t *testing.T) {
	assert.Equal(t, "jobs", JobsPath(false))
	assert.Equal(t, "jobs?content=true", JobsPath(true))
	assert.Equal(t, "job?id=12345", JobPath("12345", JobOptions{}))
	assert.Equal(t, "job?id=12345&questions=true", JobPath("12345", JobOptions{Questions: true}))
	assert.Equal(t, "job?id=12345&questions=true&pay_transparency=true", JobPath("12345", JobOptions{Questions: true, PayTransparency: true}))
}

func TestRawEndpoints(t *testing.T) {
	prefix := "/v1/boards/vaulttec/embed/"
	server, seen := newBoardServer(t, map[string]string{
		prefix + "board":                                              `{"name":"Vault-Tec","content":"&lt;p&gt;Hi&lt;/p&gt;"}`,
		prefix + "offices":                                            `{"offices":[]}`,
		prefix + "office?id=4":                                        `{"id":4}`,
		prefix + "departments":                                        `{"departments":[]}`,
		prefix + "department?id=9":                                    `{"id":9}`,
		prefix + "jobs?content=true":                                  jobsFixture,
		prefix + "job?id=127817&questions=true":                       `{"id":127817}`,
		prefix + "job?id=127817&questions=true&pay_transparency=true": `{"id":127817,"pay_input_ranges":[]}`,
	})
	svc := NewService("vaulttec", WithBaseURL(server.URL+"/v1/boards/"))
	ctx := context.Background()

	calls := []func() ([]byte, error){
		func() ([]byte, error) { return svc.GetBoard(ctx) },
		func() ([]byte, error) { return svc.GetOffices(ctx) },
		func() ([]byte, error) { return svc.GetOffice(ctx, "4") },
		func() ([]byte, error) { return svc.GetDepartments(ctx) },
		func() ([]byte, error) { return svc.GetDepartment(ctx, "9") },
		func() ([]byte, error) { return svc.GetJobs(ctx, true) },
		func() ([]byte, error) { return svc.GetJob(ctx, "127817", JobOptions{Questions: true}) },
		func() ([]byte, error) {
			return svc.GetJob(ctx, "127817", JobOptions{Questions: true, PayTransparency: true})
		},
	}
	for i, call := range calls {
		body, err := call()
		require.NoError(t, err, "call %d", i)
		assert.NotEmpty(t, body)
	}
	assert.Len(t, *seen, len(calls))
}

func TestListJobsAndFetchJob(t *testing.T) {
	prefix := "/v1/boards/vaulttec/embed/"
	server, _ := newBoardServer(t, map[string]string{
		prefix + "jobs": jobsFixture,
		prefix + "job?id=127817&questions=true": `{
			"id": 127817, "title": "Vault Designer",
			"questions": [
				{"required": true, "label": "First Name", "fields": [{"name": "first_name", "type": "input_text"}]},
				{"required": false, "label": "Website", "fields": [{"name": "website", "type": "input_text"}]}
			]
		}`,
	})
	svc := NewService("vaulttec", WithBaseURL(server.URL+"/v1/boards"))

	jobs, err := svc.ListJobs(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, "Vault Designer", jobs[0].Title)
	assert.Equal(t, "NYC", jobs[0].Location.Name)

	job, err := svc.FetchJob(context.Background(), "127817", JobOptions{Questions: true})
	require.NoError(t, err)
	require.Len(t, job.Questions, 2)
	assert.True(t, job.Questions[0].Required)
	assert.Equal(t, "first_name", job.Questions[0].Fields[0].Name)
}

func TestFetchJob_NotFound(t *testing.T) {
	server, _ := newBoardServer(t, map[string]string{})
	svc := NewService("vaulttec", WithBaseURL(server.URL))

	_, err := svc.FetchJob(context.Background(), "1", JobOptions{})
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))
}

func TestFindJob(t *testing.T) {
	server, _ := newBoardServer(t, map[string]string{"/vaulttec/embed/jobs": jobsFixture})
	svc := NewService("vaulttec", WithBaseURL(server.URL))

	job, err := svc.FindJob(context.Background(), "backend")
	require.NoError(t, err)
	assert.Equal(t, int64(127818), job.ID)

	job, err = svc.FindJob(context.Background(), "overseer")
	require.NoError(t, err)
	assert.Equal(t, int64(127819), job.ID)

	_, err = svc.FindJob(context.Background(), "qqq")
	var noMatch *resolve.NoMatchError
	assert.True(t, errors.As(err, &noMatch))

	matches, err := svc.SearchJobs(context.Background(), "vault", 5)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, int64(127817), matches[0].ID)
}

type fakeRequester struct {
	paths []string
	body  []byte
}

func (f *fakeRequester) Send(_ context.Context, _ string, path string, _ api.SendOptions) (*api.Response, error) {
	f.paths = append(f.paths, path)
	return &api.Response{StatusCode: http.StatusOK, Body: f.body}, nil
}

func (f *fakeRequester) PostMultipart(context.Context, string, []api.PostParam, map[string]string) (*api.Response, error) {
	return nil, errors.New("not supported")
}

func (f *fakeRequester) LastLinks() api.Links { return api.Links{} }

func TestWithRequester(t *testing.T) {
	fake := &fakeRequester{body: []byte(`{"departments":[{"id":1,"name":"Engineering","jobs":[{"id":5,"title":"SRE"}]}]}`)}
	svc := NewService("vaulttec", WithRequester(fake))

	departments, err := svc.ListDepartments(context.Background())
	require.NoError(t, err)
	require.Len(t, departments, 1)
	assert.Equal(t, "Engineering", departments[0].Name)
	assert.Equal(t, "SRE", departments[0].Jobs[0].Title)
	assert.Equal(t, []string{"departments"}, fake.paths)
	assert.Equal(t, "vaulttec", svc.Token())
}
