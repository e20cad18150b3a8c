package youte_test

import (
	"testing"

	"github.com/fwojciec/youte"
	"github.com/stretchr/testify/assert"
)

func TestRunParams_Validate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		params youte.RunParams
		code   string
	}{
		{"plain run", youte.RunParams{Endpoint: "search", Params: map[string]string{"q": "go"}}, ""},
		{"batched run", youte.RunParams{Endpoint: "videos", IDs: []string{"a", "b"}}, ""},
		{"per-item run", youte.RunParams{Endpoint: "replies", IDs: []string{"t1"}, MaxPages: 3}, ""},
		{"unknown endpoint", youte.RunParams{Endpoint: "playlists"}, youte.EINVALID},
		{"negative max pages", youte.RunParams{Endpoint: "search", MaxPages: -1}, youte.EINVALID},
		{"plain run with ids", youte.RunParams{Endpoint: "chart", IDs: []string{"a"}}, youte.EINVALID},
		{"id run without ids", youte.RunParams{Endpoint: "channels"}, youte.EINVALID},
		{"blank id", youte.RunParams{Endpoint: "videos", IDs: []string{" "}}, youte.EINVALID},
		{"id with comma", youte.RunParams{Endpoint: "videos", IDs: []string{"a,b"}}, youte.EINVALID},
		{"api key parameter", youte.RunParams{Endpoint: "search", Params: map[string]string{"key": "x"}}, youte.EINVALID},
		{"page token parameter", youte.RunParams{Endpoint: "search", Params: map[string]string{"pageToken": "x"}}, youte.EINVALID},
		{"id parameter", youte.RunParams{Endpoint: "video-threads", IDs: []string{"v"}, Params: map[string]string{"videoId": "v"}}, youte.EINVALID},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.code, youte.ErrorCode(tc.params.Validate()))
		})
	}
}

func TestRunParams_Normalize(t *testing.T) {
	t.Parallel()

	p := youte.RunParams{
		Endpoint: "videos",
		IDs:      []string{"b", " a ", "b", "c", "a"},
		Params:   map[string]string{"hl": "", "part": "snippet"},
	}
	p.Normalize()

	assert.Equal(t, []string{"b", "a", "c"}, p.IDs)
	assert.Equal(t, map[string]string{"part": "snippet"}, p.Params)

	empty := youte.RunParams{Endpoint: "search", Params: map[string]string{"q": ""}}
	empty.Normalize()
	assert.Nil(t, empty.Params)
}

func TestRunParams_Equal(t *testing.T) {
	t.Parallel()

	a := youte.RunParams{Endpoint: "search", Params: map[string]string{"q": "go", "order": "date"}, MaxPages: 2}
	b := youte.RunParams{Endpoint: "search", Params: map[string]string{"order": "date", "q": "go"}, MaxPages: 2}

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Canonical(), b.Canonical())

	b.MaxPages = 3
	assert.False(t, a.Equal(b))

	c := youte.RunParams{Endpoint: "videos", IDs: []string{"a", "b"}}
	d := youte.RunParams{Endpoint: "videos", IDs: []string{"b", "a"}}
	assert.False(t, c.Equal(d))
}
