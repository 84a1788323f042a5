// Package assets copies the compiled asset tree into the output directory.
// SCSS, Tailwind and JS bundling stay with the external toolchain; this
// step places their output, adds the file header and minifies.
package assets

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/js"
)

// Task copies files with one of Exts from Src to Dest. Exclude lists
// paths relative to Src that are skipped with everything below them.
type Task struct {
	Src     string
	Dest    string
	Exts    []string
	Exclude []string
}

// Config is the declarative pipeline layout.
type Config struct {
	FileHeader []string
	Styles     Task
	Scripts    Task
	Images     Task
	SVGs       Task
	Copy       Task
	Clean      string
}

// DefaultConfig lays out assets under src/assets and dest/assets.
func DefaultConfig(src, dest string) Config {
	srcAssets := filepath.Join(src, "assets")
	destAssets := filepath.Join(dest, "assets")

	return Config{
		FileHeader: []string{
			"/*",
			"**",
			"**              {{ 1900.live }}",
			"**",
			"*/",
			"",
		},
		Styles: Task{
			Src:  filepath.Join(srcAssets, "css"),
			Dest: filepath.Join(destAssets, "css"),
			Exts: []string{".css"},
		},
		Scripts: Task{
			Src:  filepath.Join(srcAssets, "js"),
			Dest: filepath.Join(destAssets, "js"),
			Exts: []string{".js"},
		},
		Images: Task{
			Src:  filepath.Join(srcAssets, "images"),
			Dest: filepath.Join(destAssets, "images"),
			Exts: []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".avif", ".svg", ".ico"},
		},
		SVGs: Task{
			Src:  filepath.Join(srcAssets, "svgs"),
			Dest: filepath.Join(destAssets, "svgs"),
			Exts: []string{".svg"},
		},
		Copy: Task{
			Src:     srcAssets,
			Dest:    destAssets,
			Exts:    []string{".eot", ".svg", ".ttf", ".woff", ".woff2", ".swf", ".mp4", ".mp3"},
			Exclude: []string{"svgs", "vendors", "images"},
		},
		Clean: dest,
	}
}

// Pipeline runs the configured tasks.
type Pipeline struct {
	cfg    Config
	minify bool
	m      *minify.M
	log    *slog.Logger
}

// New returns a pipeline. CSS and JS are minified when minifyOutput is set.
func New(cfg Config, minifyOutput bool, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("application/javascript", js.Minify)

	return &Pipeline{cfg: cfg, minify: minifyOutput, m: m, log: log}
}

// Clean removes the output directory.
func (p *Pipeline) Clean() error {
	if p.cfg.Clean == "" {
		return nil
	}
	if err := os.RemoveAll(p.cfg.Clean); err != nil {
		return fmt.Errorf("cleaning %s: %w", p.cfg.Clean, err)
	}
	return nil
}

// Run executes every task and returns the number of files written.
// Missing source directories are skipped.
func (p *Pipeline) Run() (int, error) {
	tasks := []struct {
		name string
		task Task
		mime string
	}{
		{"styles", p.cfg.Styles, "text/css"},
		{"scripts", p.cfg.Scripts, "application/javascript"},
		{"images", p.cfg.Images, ""},
		{"svgs", p.cfg.SVGs, ""},
		{"copy", p.cfg.Copy, ""},
	}

	total := 0
	for _, t := range tasks {
		n, err := p.runTask(t.task, t.mime)
		if err != nil {
			return total, fmt.Errorf("assets %s: %w", t.name, err)
		}
		if n > 0 {
			p.log.Debug("assets copied", "task", t.name, "files", n, "dest", t.task.Dest)
		}
		total += n
	}
	return total, nil
}

func (p *Pipeline) runTask(t Task, mime string) (int, error) {
	if t.Src == "" {
		return 0, nil
	}
	if _, err := os.Stat(t.Src); os.IsNotExist(err) {
		return 0, nil
	}

	count := 0
	err := filepath.WalkDir(t.Src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(t.Src, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %s: %w", path, err)
		}
		if d.IsDir() {
			if rel != "." && excluded(t.Exclude, rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !slices.Contains(t.Exts, strings.ToLower(filepath.Ext(path))) {
			return nil
		}

		dst := filepath.Join(t.Dest, rel)
		if mime != "" {
			err = p.processFile(path, dst, mime)
		} else {
			err = copyFile(path, dst)
		}
		if err != nil {
			return err
		}
		count++
		return nil
	})
	return count, err
}

func excluded(patterns []string, rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, p := range patterns {
		if rel == p || strings.HasPrefix(rel, p+"/") {
			return true
		}
	}
	return false
}

// processFile writes the header and the (optionally minified) source.
func (p *Pipeline) processFile(src, dst, mime string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}

	if p.minify {
		data, err = p.m.Bytes(mime, data)
		if err != nil {
			return fmt.Errorf("failed to minify %s: %w", src, err)
		}
	}
	if len(p.cfg.FileHeader) > 0 {
		header := strings.Join(p.cfg.FileHeader, "\n")
		data = append([]byte(header), data...)
	}

	if err := os.MkdirAll(filepath.Dir(dst), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create destination directory for %s: %w", dst, err)
	}
	return os.WriteFile(dst, data, 0o644)
}

// copyFile copies a single file, creating parent directories.
func copyFile(srcFile, dstFile string) error {
	srcF, err := os.Open(srcFile)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", srcFile, err)
	}
	defer srcF.Close()

	if err := os.MkdirAll(filepath.Dir(dstFile), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create destination directory for %s: %w", dstFile, err)
	}

	dstF, err := os.Create(dstFile)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", dstFile, err)
	}
	defer dstF.Close()

	if _, err := io.Copy(dstF, srcF); err != nil {
		return fmt.Errorf("failed to copy data from %s to %s: %w", srcFile, dstFile, err)
	}
	return nil
}

// CopyDir copies every file below src into dst. It backs passthrough
// directories such as static/.
func CopyDir(src, dst string) (int, error) {
	count := 0
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %s: %w", path, err)
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			if err := os.MkdirAll(target, os.ModePerm); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", target, err)
			}
			return nil
		}
		if err := copyFile(path, target); err != nil {
			return err
		}
		count++
		return nil
	})
	return count, err
}
