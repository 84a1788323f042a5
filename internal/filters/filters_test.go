package filters

import (
	"bytes"
	"html/template"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebron1900/bymattlee-11ty-starter/internal/model"
)

func TestHTMLDate(t *testing.T) {
	got, err := HTMLDate("2023-05-01T00:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, "2023-05-01", got)

	got, err = HTMLDate(time.Date(2023, 5, 1, 23, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2023-05-01", got)

	got, err = HTMLDate("2023-05-01T08:00:00+08:00")
	require.NoError(t, err)
	assert.Equal(t, "2023-05-01", got)

	_, err = HTMLDate("yesterday")
	assert.Error(t, err)

	_, err = HTMLDate(42)
	assert.Error(t, err)
}

func TestReadableAndRSSDate(t *testing.T) {
	got, err := ReadableDate("2023-05-01T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, "01 May 2023", got)

	got, err = RSSDate("2023-05-01T10:00:00.000Z")
	require.NoError(t, err)
	assert.Equal(t, "2023-05-01T10:00:00Z", got)
}

func TestRSSLastUpdatedDate(t *testing.T) {
	_, err := RSSLastUpdatedDate(nil)
	require.ErrorIs(t, err, ErrEmptyCollection)
	assert.Contains(t, err.Error(), "collection is empty")

	posts := []*model.Post{
		{PublishedAt: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
		{PublishedAt: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)},
		{PublishedAt: time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	got, err := RSSLastUpdatedDate(posts)
	require.NoError(t, err)
	assert.Equal(t, "2023-06-01T00:00:00Z", got)
}

func TestRSSLastUpdatedDateFailsTemplate(t *testing.T) {
	tmpl := template.Must(template.New("feed").Funcs(FuncMap(Options{})).Parse(`{{rssLastUpdatedDate .}}`))
	err := tmpl.Execute(&bytes.Buffer{}, []*model.Post{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collection is empty in rssLastUpdatedDate filter")
}

func TestReadingTime(t *testing.T) {
	words := func(n int) string {
		return strings.TrimSpace(strings.Repeat("word ", n))
	}

	assert.Equal(t, 0, ReadingTime(""))
	assert.Equal(t, 1, ReadingTime(words(1)))
	assert.Equal(t, 1, ReadingTime(words(200)))
	assert.Equal(t, 2, ReadingTime(words(201)))
	assert.Equal(t, 2, ReadingTime(words(400)))
}

func TestReadingTimeIgnoresMarkup(t *testing.T) {
	html := "<p>" + strings.Repeat("word ", 199) + "</p><p>last</p>"
	assert.Equal(t, 1, ReadingTime(html))

	// Adjacent block elements must not merge words.
	assert.Equal(t, "a b", strings.Join(strings.Fields(StripHTML("<p>a</p><p>b</p>")), " "))
}

func TestAbsoluteURL(t *testing.T) {
	assert.Equal(t, "http://localhost:3000/about/", AbsoluteURL("http://localhost:3000", "/about/"))
	assert.Equal(t, "http://localhost:3000/about/", AbsoluteURL("http://localhost:3000/", "/about/"))
	assert.Equal(t, "/about/", AbsoluteURL("", "/about/"))
}

func TestCacheBust(t *testing.T) {
	assert.Equal(t, "/assets/css/main.css?v=abc", CacheBust("abc", "/assets/css/main.css"))
	assert.Equal(t, "/x.js?a=1&v=abc", CacheBust("abc", "/x.js?a=1"))
	assert.Equal(t, "/x.js", CacheBust("", "/x.js"))
}

func TestArticleURLs(t *testing.T) {
	assert.Equal(t, "/hello-world/", ArticleURL("hello-world"))
	assert.Equal(t, "/tag/go/", ArticleCategoryURL("go"))
}

func TestImageSrcset(t *testing.T) {
	cdn := "https://cdn.1900.live"
	img := cdn + "/content/images/cat.jpg"

	assert.Equal(t, img+"!400w", ImageURL(cdn, img, 400))
	assert.Equal(t, img, ImageURL(cdn, img, 0))
	assert.Equal(t, "https://elsewhere/cat.jpg", ImageURL(cdn, "https://elsewhere/cat.jpg", 400))

	srcset := ImageSrcset(cdn, img)
	parts := strings.Split(srcset, ", ")
	require.Len(t, parts, len(ImageWidths))
	assert.Equal(t, img+"!200w 200w", parts[0])
	assert.Equal(t, img+"!1800w 1800w", parts[len(parts)-1])

	assert.Equal(t, "/local.png", ImageSrcset(cdn, "/local.png"))
	assert.Equal(t, img, ImageSrcset("", img))
}

func TestIsSamePageOrSection(t *testing.T) {
	assert.True(t, IsSamePageOrSection("/", "/"))
	assert.True(t, IsSamePageOrSection("/tag/go/", "/tag/go/"))
	assert.True(t, IsSamePageOrSection("/tag/go/page/2/", "/tag/go/"))
	assert.False(t, IsSamePageOrSection("/about/", "/"))
	assert.False(t, IsSamePageOrSection("/about/", "/tag/"))
	assert.False(t, IsSamePageOrSection("/blogging/", "/blog"))
	assert.False(t, IsSamePageOrSection("/blogging/", "/blog/"))
	assert.True(t, IsSamePageOrSection("/blog/first/", "/blog"))
}

func TestSVG(t *testing.T) {
	got := string(SVG("/assets/svgs/sprite.svg", "logo"))
	assert.Contains(t, got, `xlink:href="/assets/svgs/sprite.svg#logo"`)
	assert.Contains(t, got, `svg--logo`)

	assert.NotContains(t, string(SVG("/s.svg", `"><script>`)), "<script>")
}

func TestHighlight(t *testing.T) {
	in := `<p>Intro</p><pre><code class="language-go">func main() { fmt.Println("hi &amp; bye") }</code></pre><code>inline</code>`

	out, err := Highlight(in)
	require.NoError(t, err)
	got := string(out)

	assert.Contains(t, got, "<p>Intro</p>")
	assert.Contains(t, got, `<code class="language-go chroma">`)
	assert.Contains(t, got, `<span class="kd">func</span>`)
	assert.Contains(t, got, "&amp; bye")
	assert.Contains(t, got, "<code>inline</code>")
}

func TestHighlightWithoutCode(t *testing.T) {
	out, err := Highlight(`<p>No code here</p>`)
	require.NoError(t, err)
	assert.Equal(t, template.HTML(`<p>No code here</p>`), out)
}

func TestFuncMapInTemplate(t *testing.T) {
	fm := FuncMap(Options{
		HomeURL: "https://1900.live",
		BuildID: "b1",
		Now:     func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) },
	})
	tmpl := template.Must(template.New("t").Funcs(fm).Parse(
		`{{absoluteUrl "/a/"}}|{{cacheBust "/m.css"}}|{{currentYear}}|{{htmlDateString .}}|{{blocksToHtml nil}}`))

	var buf bytes.Buffer
	require.NoError(t, tmpl.Execute(&buf, "2023-05-01T00:00:00Z"))
	assert.Equal(t, "https://1900.live/a/|/m.css?v=b1|2026|2023-05-01|", buf.String())
}
