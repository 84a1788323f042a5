package config

import (
	"strings"
	"time"
)

// Config is the build configuration decoded by viper from config.yaml and
// GHOSTPRESS_* environment variables.
type Config struct {
	SiteTitle string `mapstructure:"siteTitle"`
	OutputDir string `mapstructure:"outputDir"`
	InputDir  string `mapstructure:"inputDir"`
	BaseURL   string `mapstructure:"baseURL"`
	Env       string `mapstructure:"env"`

	// StripDomain is removed from every CMS URL. Defaults to Ghost.URL.
	StripDomain  string `mapstructure:"stripDomain"`
	DevURL       string `mapstructure:"devURL"`
	CDNURL       string `mapstructure:"cdnURL"`
	HeaderCredit string `mapstructure:"headerCredit"`

	Ghost   GhostConfig       `mapstructure:"ghost"`
	Sanity  SanityConfig      `mapstructure:"sanity"`
	EnvURLs map[string]string `mapstructure:"envUrls"`
	Cache   CacheConfig       `mapstructure:"cache"`
	Serve   ServeConfig       `mapstructure:"serve"`
	Assets  AssetsConfig      `mapstructure:"assets"`

	SentryDSN string `mapstructure:"sentryDSN"`
}

// GhostConfig holds the Content API credentials.
type GhostConfig struct {
	URL       string        `mapstructure:"url"`
	Key       string        `mapstructure:"key"`
	Version   string        `mapstructure:"version"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rateLimit"`
}

// SanityConfig holds the secondary data store settings. Queries maps a
// global data key to a GROQ query run at build time.
type SanityConfig struct {
	ProjectID  string            `mapstructure:"projectId"`
	Dataset    string            `mapstructure:"dataset"`
	APIVersion string            `mapstructure:"apiVersion"`
	UseCDN     bool              `mapstructure:"useCdn"`
	Token      string            `mapstructure:"token"`
	Queries    map[string]string `mapstructure:"queries"`
}

// CacheConfig enables caching of CMS responses between builds. A zero TTL
// disables it.
type CacheConfig struct {
	RedisURL string        `mapstructure:"redisURL"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// ServeConfig configures the development server.
type ServeConfig struct {
	Port     int    `mapstructure:"port"`
	Schedule string `mapstructure:"schedule"`
}

// AssetsConfig points the asset pipeline at its source and destination.
type AssetsConfig struct {
	Src  string `mapstructure:"src"`
	Dest string `mapstructure:"dest"`
}

// IsDevelopment reports whether the build runs in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// HomeURL returns the URL used by absoluteUrl: devURL if set, otherwise
// the envUrls entry for the current environment, otherwise baseURL.
func (c Config) HomeURL() string {
	if c.DevURL != "" {
		return c.DevURL
	}
	if u, ok := c.EnvURLs[c.Env]; ok && u != "" {
		return u
	}
	return c.BaseURL
}

// Domain returns the prefix stripped from CMS URLs, without a trailing
// slash so stripped URLs keep their leading one.
func (c Config) Domain() string {
	d := c.StripDomain
	if d == "" {
		d = c.Ghost.URL
	}
	return strings.TrimSuffix(d, "/")
}
