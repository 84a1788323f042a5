package seo

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSitemapBuilder(t *testing.T) {
	b := NewSitemapBuilder("https://1900.live/")
	b.Add("/", time.Time{}, "daily", "1.0")
	b.Add("/hello/", time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC), "weekly", "0.8")
	b.Add("/hello/", time.Time{}, "weekly", "0.8")
	assert.Equal(t, 2, b.Len())

	out, err := b.Build()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), xml.Header))

	var parsed Sitemap
	require.NoError(t, xml.Unmarshal(out, &parsed))
	require.Len(t, parsed.URLs, 2)
	assert.Equal(t, XMLNamespace, parsed.XMLNS)
	assert.Equal(t, "https://1900.live/", parsed.URLs[0].Loc)
	assert.Empty(t, parsed.URLs[0].LastMod)
	assert.Equal(t, "https://1900.live/hello/", parsed.URLs[1].Loc)
	assert.Equal(t, "2023-05-01T00:00:00Z", parsed.URLs[1].LastMod)
}
