package sanity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBuildsEndpoint(t *testing.T) {
	c, err := New(Options{ProjectID: "afxi85wm", Dataset: "production", APIVersion: "2022-05-01", UseCDN: true})
	require.NoError(t, err)
	assert.Equal(t, "https://afxi85wm.apicdn.sanity.io/v2022-05-01/data/query/production", c.endpoint)

	c, err = New(Options{ProjectID: "afxi85wm", Dataset: "production", APIVersion: "v2022-05-01", UseCDN: true, Token: "t"})
	require.NoError(t, err)
	assert.Equal(t, "https://afxi85wm.api.sanity.io/v2022-05-01/data/query/production", c.endpoint)

	_, err = New(Options{Dataset: "production"})
	assert.Error(t, err)
}

func TestQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2022-05-01/data/query/production", r.URL.Path)
		assert.Equal(t, `*[_type == "article" && slug.current == $slug]`, r.URL.Query().Get("query"))
		assert.Equal(t, `"hello"`, r.URL.Query().Get("$slug"))
		_, _ = w.Write([]byte(`{"ms":3,"result":[{"title":"Hello"}]}`))
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL, Dataset: "production", APIVersion: "2022-05-01"})
	require.NoError(t, err)

	var out []struct {
		Title string `json:"title"`
	}
	err = c.Query(context.Background(), `*[_type == "article" && slug.current == $slug]`, map[string]any{"slug": "hello"}, &out)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Hello", out[0].Title)
}

func TestQueryError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"description":"expected '}' following object body","type":"queryParseError"}}`))
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL, Dataset: "production"})
	require.NoError(t, err)

	var out any
	err = c.Query(context.Background(), `*[`, nil, &out)
	var qErr *QueryError
	require.ErrorAs(t, err, &qErr)
	assert.Equal(t, http.StatusBadRequest, qErr.StatusCode)
	assert.Contains(t, qErr.Description, "expected")
}

func TestRenderBlocks(t *testing.T) {
	raw := `[
	  {"_type":"block","style":"h2","children":[{"_type":"span","text":"Title"}]},
	  {"_type":"block","style":"normal","markDefs":[{"_key":"l1","_type":"link","href":"https://1900.live"}],
	   "children":[{"_type":"span","text":"Go ","marks":[]},{"_type":"span","text":"bold","marks":["strong","l1"]},{"_type":"span","text":" <tag>"}]},
	  {"_type":"block","listItem":"bullet","children":[{"_type":"span","text":"one"}]},
	  {"_type":"block","listItem":"bullet","children":[{"_type":"span","text":"two"}]},
	  {"_type":"image","asset":{"_ref":"image-abc"}},
	  {"_type":"block","listItem":"number","children":[{"_type":"span","text":"first"}]}
	]`
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))

	blocks, err := DecodeBlocks(v)
	require.NoError(t, err)

	got := RenderBlocks(blocks)
	assert.Equal(t,
		`<h2>Title</h2>`+
			`<p>Go <strong><a href="https://1900.live">bold</a></strong> &lt;tag&gt;</p>`+
			`<ul><li>one</li><li>two</li></ul>`+
			`<ol><li>first</li></ol>`,
		got)
}

func TestDecodeBlocksNil(t *testing.T) {
	blocks, err := DecodeBlocks(nil)
	require.NoError(t, err)
	assert.Empty(t, RenderBlocks(blocks))
}
