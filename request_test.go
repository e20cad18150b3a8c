package youte_test

import (
	"testing"

	"github.com/fwojciec/youte"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindEndpoint(t *testing.T) {
	t.Parallel()

	for _, e := range youte.Endpoints() {
		found, err := youte.FindEndpoint(e.Name)
		require.NoError(t, err)
		assert.Same(t, e, found)
		if e.Mode == youte.ModePlain {
			assert.Empty(t, e.IDParam, e.Name)
		} else {
			assert.NotEmpty(t, e.IDParam, e.Name)
		}
	}

	assert.Equal(t, 100, youte.EndpointSearch.Cost)
	assert.Equal(t, "batched-ids", youte.EndpointVideos.Mode.String())

	_, err := youte.FindEndpoint("playlists")
	assert.Equal(t, youte.ENOTFOUND, youte.ErrorCode(err))
}

func TestRequestSpec_Query(t *testing.T) {
	t.Parallel()

	t.Run("defaults the base URL and merges parameters", func(t *testing.T) {
		t.Parallel()

		spec := youte.NewRequestSpec("", youte.EndpointChart, map[string]string{"regionCode": "US", "part": "snippet", "hl": ""})
		assert.Equal(t, youte.DefaultBaseURL+"/videos", spec.URL)
		assert.Equal(t, 1, spec.Cost)

		q := spec.Query(youte.PageCursor{})
		assert.Equal(t, "mostPopular", q.Get("chart"))
		assert.Equal(t, "snippet", q.Get("part"))
		assert.Equal(t, "US", q.Get("regionCode"))
		_, hasHL := q["hl"]
		assert.False(t, hasHL)
		_, hasToken := q["pageToken"]
		assert.False(t, hasToken)
	})

	t.Run("adds owner key and token without touching the template", func(t *testing.T) {
		t.Parallel()

		spec := youte.NewRequestSpec("http://api.test/v3/", youte.EndpointVideoThreads, nil)
		assert.Equal(t, "http://api.test/v3/commentThreads", spec.URL)

		q := spec.Query(youte.PageCursor{Token: "next", OwnerKey: "vid1"})
		assert.Equal(t, "vid1", q.Get("videoId"))
		assert.Equal(t, "next", q.Get("pageToken"))

		q.Set("part", "changed")
		assert.Equal(t, "snippet,replies", spec.Params.Get("part"))
		_, hasOwner := spec.Params["videoId"]
		assert.False(t, hasOwner)
	})

	t.Run("ignores the owner key on plain endpoints", func(t *testing.T) {
		t.Parallel()

		spec := youte.NewRequestSpec("", youte.EndpointSearch, map[string]string{"q": "go"})
		q := spec.Query(youte.PageCursor{OwnerKey: "ignored"})
		assert.Equal(t, "go", q.Get("q"))
		assert.Len(t, q, 2)
	})
}

func TestProfile_Validate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, youte.EINVALID, youte.ErrorCode((&youte.Profile{Key: "k"}).Validate()))
	assert.Equal(t, youte.EINVALID, youte.ErrorCode((&youte.Profile{Name: "n"}).Validate()))
	assert.NoError(t, (&youte.Profile{Name: "n", Key: "k"}).Validate())
}
