package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rebron1900/bymattlee-11ty-starter/internal/cache"
	"github.com/rebron1900/bymattlee-11ty-starter/internal/collection"
	"github.com/rebron1900/bymattlee-11ty-starter/internal/config"
	"github.com/rebron1900/bymattlee-11ty-starter/internal/ghost"
	"github.com/rebron1900/bymattlee-11ty-starter/internal/logger"
	"github.com/rebron1900/bymattlee-11ty-starter/internal/sanity"
	"github.com/rebron1900/bymattlee-11ty-starter/internal/site"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Builds the static site from Ghost, local content, layouts and assets",
	Long: `The build command fetches docs, posts, authors and tags from the Ghost
Content API, reads Markdown from '<inputDir>/content/', renders everything
through the layouts in '<inputDir>/layouts/', processes assets and copies
'<inputDir>/static/' into the configured output directory (default './dist/').`,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, closeFn, err := newSiteBuilder(appConfig)
		if err != nil {
			return err
		}
		defer closeFn()

		_, err = b.Build(cmd.Context())
		return err
	},
}

// newSiteBuilder wires the CMS clients into a site builder. The returned
// func releases the response cache.
func newSiteBuilder(cfg config.Config) (*site.Builder, func(), error) {
	log := logger.Log

	var store cache.Cache
	if cfg.Cache.TTL > 0 {
		c, err := cache.New(cache.Options{
			RedisURL:   cfg.Cache.RedisURL,
			Prefix:     cfg.Cache.Prefix,
			DefaultTTL: cfg.Cache.TTL,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("creating response cache: %w", err)
		}
		store = c
	}
	closeFn := func() {
		if store != nil {
			if err := store.Close(); err != nil {
				log.Warn("closing response cache", "error", err)
			}
		}
	}

	client, err := ghost.New(ghost.Options{
		URL:       cfg.Ghost.URL,
		Key:       cfg.Ghost.Key,
		Version:   cfg.Ghost.Version,
		Timeout:   cfg.Ghost.Timeout,
		RateLimit: cfg.Ghost.RateLimit,
		Cache:     store,
		CacheTTL:  cfg.Cache.TTL,
		Logger:    log,
	})
	if err != nil {
		closeFn()
		return nil, nil, err
	}

	var querier site.Querier
	if len(cfg.Sanity.Queries) > 0 {
		sc, err := sanity.New(sanity.Options{
			ProjectID:  cfg.Sanity.ProjectID,
			Dataset:    cfg.Sanity.Dataset,
			APIVersion: cfg.Sanity.APIVersion,
			UseCDN:     cfg.Sanity.UseCDN,
			Token:      cfg.Sanity.Token,
		})
		if err != nil {
			closeFn()
			return nil, nil, err
		}
		querier = sc
	}

	siteConfig, err := site.LoadSiteConfig(configFileUsed)
	if err != nil {
		closeFn()
		return nil, nil, err
	}

	b := site.New(site.Options{
		Config:     cfg,
		SiteConfig: siteConfig,
		Loader:     collection.NewBuilder(client, cfg.Domain(), log),
		Sanity:     querier,
		Logger:     log,
	})
	return b, closeFn, nil
}

// runBuild performs one build and logs its failure instead of returning
// it, for callers that must keep running.
func runBuild(ctx context.Context, b *site.Builder) {
	if _, err := b.Build(ctx); err != nil {
		logger.Log.Error("build failed", "error", err)
	}
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
