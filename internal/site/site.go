// Package site renders the static site: CMS collections and local Markdown
// through html/template layouts into the output directory.
package site

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rebron1900/bymattlee-11ty-starter/internal/assets"
	"github.com/rebron1900/bymattlee-11ty-starter/internal/collection"
	"github.com/rebron1900/bymattlee-11ty-starter/internal/config"
	"github.com/rebron1900/bymattlee-11ty-starter/internal/filters"
	"github.com/rebron1900/bymattlee-11ty-starter/internal/model"
	"github.com/rebron1900/bymattlee-11ty-starter/internal/transform"
)

const (
	conventionalContentDir = "content"
	conventionalLayoutsDir = "layouts"
	conventionalStaticDir  = "static"
	conventionalDataDir    = "_data"
)

// Loader supplies the CMS collections for one build.
type Loader interface {
	Load(ctx context.Context) (*collection.Collections, error)
}

// Options wires a Builder.
type Options struct {
	Config     config.Config
	SiteConfig map[string]interface{}
	Loader     Loader
	Sanity     Querier
	Logger     *slog.Logger
	Now        func() time.Time
}

// Builder runs builds. It keeps no state between runs.
type Builder struct {
	cfg        config.Config
	siteConfig map[string]interface{}
	loader     Loader
	sanity     Querier
	log        *slog.Logger
	now        func() time.Time
}

// Result summarises a finished build.
type Result struct {
	BuildID  string
	Pages    int
	Assets   int
	Duration time.Duration
}

// New returns a builder.
func New(opts Options) *Builder {
	b := &Builder{
		cfg:        opts.Config,
		siteConfig: opts.SiteConfig,
		loader:     opts.Loader,
		sanity:     opts.Sanity,
		log:        opts.Logger,
		now:        opts.Now,
	}
	if b.log == nil {
		b.log = slog.Default()
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.siteConfig == nil {
		b.siteConfig = map[string]interface{}{}
	}
	return b
}

func (b *Builder) inputPath(elem ...string) string {
	return filepath.Join(append([]string{b.cfg.InputDir}, elem...)...)
}

// Build cleans the output directory and renders the whole site.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := b.now()
	buildID := strings.SplitN(uuid.NewString(), "-", 2)[0]
	outputDir := b.cfg.OutputDir
	if outputDir == "" {
		return nil, fmt.Errorf("output directory is not configured")
	}

	b.log.Info("build started", "buildID", buildID, "input", b.cfg.InputDir, "output", outputDir, "env", b.cfg.Env)

	layoutsDir := b.inputPath(conventionalLayoutsDir)
	if _, err := os.Stat(layoutsDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("layouts directory '%s' not found; create it and add your .html layout files", layoutsDir)
	}

	pipeline := assets.New(b.assetConfig(), !b.cfg.IsDevelopment(), b.log)
	if err := pipeline.Clean(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create output directory '%s': %w", outputDir, err)
	}

	assetCount, err := pipeline.Run()
	if err != nil {
		return nil, err
	}
	staticDir := b.inputPath(conventionalStaticDir)
	if _, err := os.Stat(staticDir); err == nil {
		n, err := assets.CopyDir(staticDir, outputDir)
		if err != nil {
			return nil, fmt.Errorf("failed to copy static assets: %w", err)
		}
		assetCount += n
	}

	funcs := filters.FuncMap(filters.Options{
		HomeURL: b.cfg.HomeURL(),
		CDNURL:  b.cfg.CDNURL,
		BuildID: buildID,
		Now:     b.now,
	})
	layouts, err := loadLayouts(layoutsDir, funcs)
	if err != nil {
		return nil, err
	}

	data, err := loadGlobalData(b.inputPath(conventionalDataDir))
	if err != nil {
		return nil, err
	}
	if err := b.loadSanityData(ctx, data); err != nil {
		return nil, err
	}

	site := &model.SiteData{
		Config:        b.siteConfig,
		Data:          data,
		BuildID:       buildID,
		BuildTime:     start,
		ContentByType: map[string][]*model.ContentItem{},
	}

	if b.loader != nil {
		c, err := b.loader.Load(ctx)
		if err != nil {
			return nil, err
		}
		site.Docs, site.Posts, site.Authors, site.Tags = c.Docs, c.Posts, c.Authors, c.Tags
	}

	items, err := b.loadContent(b.inputPath(conventionalContentDir))
	if err != nil {
		return nil, err
	}
	site.ContentItems = items
	for _, item := range items {
		site.ContentByType[item.Type] = append(site.ContentByType[item.Type], item)
	}
	b.log.Info("content collected",
		"docs", len(site.Docs), "posts", len(site.Posts), "authors", len(site.Authors),
		"tags", len(site.Tags), "local", len(items))

	r := &renderer{
		outputDir:  outputDir,
		layouts:    layouts,
		transforms: transform.Default(b.cfg.IsDevelopment(), b.cfg.HeaderCredit),
		site:       site,
		cfg:        b.cfg,
		log:        b.log,
	}
	if err := r.renderAll(); err != nil {
		return nil, err
	}

	res := &Result{
		BuildID:  buildID,
		Pages:    r.pages,
		Assets:   assetCount,
		Duration: b.now().Sub(start),
	}
	b.log.Info("build completed", "buildID", buildID, "pages", res.Pages, "assets", res.Assets, "duration", res.Duration)
	return res, nil
}

func (b *Builder) assetConfig() assets.Config {
	src := b.cfg.Assets.Src
	if src == "" {
		src = filepath.Dir(filepath.Clean(b.cfg.InputDir))
	}
	dest := b.cfg.Assets.Dest
	if dest == "" {
		dest = b.cfg.OutputDir
	}
	cfg := assets.DefaultConfig(src, dest)
	cfg.Clean = b.cfg.OutputDir
	return cfg
}
