package assets

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupSource(t *testing.T) (string, string) {
	t.Helper()
	root := t.TempDir()
	src := filepath.Join(root, "src")
	dest := filepath.Join(root, "dist")

	writeFile(t, filepath.Join(src, "assets", "css", "main.css"), "body {\n  color: #ff0000;\n}\n")
	writeFile(t, filepath.Join(src, "assets", "css", "main.scss"), "$x: 1;")
	writeFile(t, filepath.Join(src, "assets", "js", "main.js"), "var answer = 40 + 2;\n")
	writeFile(t, filepath.Join(src, "assets", "images", "cat.png"), "png")
	writeFile(t, filepath.Join(src, "assets", "svgs", "logo.svg"), "<svg/>")
	writeFile(t, filepath.Join(src, "assets", "fonts", "inter.woff2"), "font")
	writeFile(t, filepath.Join(src, "assets", "vendors", "lib", "icons.ttf"), "vendor")
	return src, dest
}

func TestRunCopiesPerTask(t *testing.T) {
	src, dest := setupSource(t)
	cfg := DefaultConfig(src, dest)

	n, err := New(cfg, false, quiet()).Run()
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	assert.FileExists(t, filepath.Join(dest, "assets", "css", "main.css"))
	assert.NoFileExists(t, filepath.Join(dest, "assets", "css", "main.scss"))
	assert.FileExists(t, filepath.Join(dest, "assets", "js", "main.js"))
	assert.FileExists(t, filepath.Join(dest, "assets", "images", "cat.png"))
	assert.FileExists(t, filepath.Join(dest, "assets", "svgs", "logo.svg"))
	assert.FileExists(t, filepath.Join(dest, "assets", "fonts", "inter.woff2"))
	assert.NoFileExists(t, filepath.Join(dest, "assets", "vendors", "lib", "icons.ttf"))

	css, err := os.ReadFile(filepath.Join(dest, "assets", "css", "main.css"))
	require.NoError(t, err)
	assert.Contains(t, string(css), "{{ 1900.live }}")
	assert.Contains(t, string(css), "color: #ff0000;")
}

func TestRunMinifies(t *testing.T) {
	src, dest := setupSource(t)
	cfg := DefaultConfig(src, dest)
	cfg.FileHeader = nil

	_, err := New(cfg, true, quiet()).Run()
	require.NoError(t, err)

	css, err := os.ReadFile(filepath.Join(dest, "assets", "css", "main.css"))
	require.NoError(t, err)
	assert.Equal(t, "body{color:red}", string(css))

	js, err := os.ReadFile(filepath.Join(dest, "assets", "js", "main.js"))
	require.NoError(t, err)
	assert.NotContains(t, string(js), "\n")
}

func TestRunMissingSources(t *testing.T) {
	root := t.TempDir()
	n, err := New(DefaultConfig(filepath.Join(root, "nope"), filepath.Join(root, "dist")), false, quiet()).Run()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestClean(t *testing.T) {
	root := t.TempDir()
	dest := filepath.Join(root, "dist")
	writeFile(t, filepath.Join(dest, "old.html"), "x")

	require.NoError(t, New(DefaultConfig(root, dest), false, quiet()).Clean())
	assert.NoDirExists(t, dest)
}

func TestCopyDir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "static", "robots.txt"), "User-agent: *")
	writeFile(t, filepath.Join(root, "static", "well-known", "a.json"), "{}")

	n, err := CopyDir(filepath.Join(root, "static"), filepath.Join(root, "out"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.FileExists(t, filepath.Join(root, "out", "well-known", "a.json"))
}
