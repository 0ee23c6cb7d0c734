package greenhouse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenhouse/greenhouse-cli/internal/api"
	"github.com/greenhouse/greenhouse-cli/internal/application"
	"github.com/greenhouse/greenhouse-cli/internal/cache"
	"github.com/greenhouse/greenhouse-cli/internal/harvest"
)

func TestMissingCredentials(t *testing.T) {
	c := New(Options{})

	_, err := c.JobBoard()
	assert.ErrorIs(t, err, ErrMissingBoardToken)
	_, err = c.Embed()
	assert.ErrorIs(t, err, ErrMissingBoardToken)
	_, err = c.Applications()
	assert.ErrorIs(t, err, ErrMissingBoardToken)
	_, err = c.Harvest("")
	assert.ErrorIs(t, err, ErrMissingHarvestAPIKey)
}

func TestEmbed(t *testing.T) {
	e, err := New(Options{BoardToken: "vaulttec"}).Embed()
	require.NoError(t, err)
	assert.Contains(t, e.ScriptTag(), "for=vaulttec")
}

func TestServicesShareURLs(t *testing.T) {
	var seen []string
	var harvestAuth, onBehalfOf string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.RequestURI())
		switch r.URL.Path {
		case "/boards/vaulttec/embed/job":
			_, _ = w.Write([]byte(`{"id":5,"questions":[{"required":true,"label":"Email","fields":[{"name":"email"}]}]}`))
		case "/harvest/v2/candidates/7/tags/3":
			harvestAuth = r.Header.Get("Authorization")
			onBehalfOf = r.Header.Get("On-Behalf-Of")
			_, _ = w.Write([]byte(`{}`))
		default:
			_, _ = w.Write([]byte(`{"jobs":[]}`))
		}
	}))
	defer server.Close()

	c := New(Options{
		BoardToken:        "vaulttec",
		ApplicationAPIKey: "app_key",
		HarvestAPIKey:     "harvest_key",
		HarvestVersion:    "v1",
		OnBehalfOf:        "4080",
		URLs: URLs{
			JobBoard:    server.URL + "/boards/",
			Application: server.URL + "/applications/",
			Harvest:     server.URL + "/harvest",
		},
	})
	ctx := context.Background()

	board, err := c.JobBoard()
	require.NoError(t, err)
	_, err = board.ListJobs(ctx, false)
	require.NoError(t, err)

	apps, err := c.Applications(application.SkipValidation())
	require.NoError(t, err)
	fields, err := apps.RequiredFields(ctx, "5")
	require.NoError(t, err)
	assert.Equal(t, []string{"Email"}, fields.Labels())
	_, err = apps.Submit(ctx, api.Fields{{Name: "id", Value: "5"}})
	require.NoError(t, err)

	h, err := c.Harvest("v2")
	require.NoError(t, err)
	_, err = h.Call(ctx, "putTagsForCandidate", harvest.Params{{Key: "id", Value: 7}, {Key: "second_id", Value: 3}})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"GET /boards/vaulttec/embed/jobs",
		"GET /boards/vaulttec/embed/job?id=5&questions=true",
		"POST /applications/",
		"PUT /harvest/v2/candidates/7/tags/3",
	}, seen)
	assert.Equal(t, "Basic aGFydmVzdF9rZXk6", harvestAuth)
	assert.Equal(t, "4080", onBehalfOf)
}

func TestHarvestDefaultVersion(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	h, err := New(Options{HarvestAPIKey: "k", URLs: URLs{Harvest: server.URL}}).Harvest("")
	require.NoError(t, err)
	_, err = h.Call(context.Background(), "getJobs", nil)
	require.NoError(t, err)
	assert.Equal(t, "/"+harvest.DefaultVersion+"/jobs", path)
}

type closingCache struct {
	closed bool
}

func (c *closingCache) Get(context.Context, string, any) bool { return false }
func (c *closingCache) Put(context.Context, string, any) error { return nil }
func (c *closingCache) Clear(context.Context) error { return nil }
func (c *closingCache) Close() error {
	c.closed = true
	return nil
}

func TestOpenCacheOnlyForApplications(t *testing.T) {
	opened := 0
	cc := &closingCache{}
	c := New(Options{
		BoardToken:    "vaulttec",
		HarvestAPIKey: "key",
		OpenCache: func() cache.Cache {
			opened++
			return cc
		},
	})

	_, err := c.JobBoard()
	require.NoError(t, err)
	_, err = c.Harvest("")
	require.NoError(t, err)
	_, err = c.Embed()
	require.NoError(t, err)
	assert.Equal(t, 0, opened, "only Applications needs the cache")

	_, err = c.Applications()
	require.NoError(t, err)
	_, err = c.Applications()
	require.NoError(t, err)
	assert.Equal(t, 1, opened)

	require.NoError(t, c.Close())
	assert.True(t, cc.closed)
}

func TestCloseLeavesCallerCacheOpen(t *testing.T) {
	cc := &closingCache{}
	c := New(Options{BoardToken: "vaulttec", Cache: cc})
	_, err := c.Applications()
	require.NoError(t, err)

	require.NoError(t, c.Close())
	assert.False(t, cc.closed)
}
