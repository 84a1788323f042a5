package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rebron1900/bymattlee-11ty-starter/internal/config"
	"github.com/rebron1900/bymattlee-11ty-starter/internal/logger"
)

var (
	cfgFile        string
	envName        string
	appConfig      config.Config
	configFileUsed string
)

var rootCmd = &cobra.Command{
	Use:   "ghostpress",
	Short: "ghostpress - static site generator for Ghost",
	Long: `ghostpress pulls posts, pages, authors and tags from a Ghost Content API,
renders them through html/template layouts together with local Markdown
content, and writes a static website with its processed assets.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
}

const sentryFlushTimeout = 2 * time.Second

// Execute runs the root command. Errors are logged, so they also reach
// Sentry, and queued events are flushed before exiting.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		logger.Log.Error("command failed", "error", err)
	}
	logger.Flush(sentryFlushTimeout)
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envName, "env", "", "build environment: development, staging or production")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("siteTitle", "1900")
	v.SetDefault("outputDir", "dist")
	v.SetDefault("inputDir", "src/site")
	v.SetDefault("baseURL", "http://11ty.1900.live")
	v.SetDefault("env", "production")
	v.SetDefault("stripDomain", "")
	v.SetDefault("devURL", "")
	v.SetDefault("cdnURL", "")
	v.SetDefault("headerCredit", "")
	v.SetDefault("sentryDSN", "")

	v.SetDefault("envUrls", map[string]string{
		"development": "http://localhost:3000",
		"staging":     "http://11ty.1900.live",
		"production":  "http://11ty.1900.live",
	})

	v.SetDefault("ghost.url", "https://1900.live")
	v.SetDefault("ghost.key", "78e1deb26260dcc3a2fbf7cf82")
	v.SetDefault("ghost.version", "v5.0")
	v.SetDefault("ghost.timeout", "30s")
	v.SetDefault("ghost.rateLimit", 0)

	v.SetDefault("sanity.projectId", "afxi85wm")
	v.SetDefault("sanity.dataset", "production")
	v.SetDefault("sanity.apiVersion", "2022-05-01")
	v.SetDefault("sanity.useCdn", true)
	v.SetDefault("sanity.token", "")

	v.SetDefault("cache.redisURL", "")
	v.SetDefault("cache.prefix", "ghostpress:")
	v.SetDefault("cache.ttl", "0s")

	v.SetDefault("serve.port", 3000)
	v.SetDefault("serve.schedule", "")

	v.SetDefault("assets.src", "")
	v.SetDefault("assets.dest", "")
}

func initializeConfig(cmd *cobra.Command) error {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("GHOSTPRESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Variable names used by existing deployments of the site.
	_ = v.BindEnv("ghost.url", "GHOSTPRESS_GHOST_URL", "GHOST_API_URL")
	_ = v.BindEnv("ghost.key", "GHOSTPRESS_GHOST_KEY", "GHOST_CONTENT_API_KEY")
	_ = v.BindEnv("env", "GHOSTPRESS_ENV", "ELEVENTY_ENV", "NODE_ENV")

	if f := cmd.Flags().Lookup("env"); f != nil {
		if err := v.BindPFlag("env", f); err != nil {
			return fmt.Errorf("binding --env flag: %w", err)
		}
	}

	configFileUsed = ""
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		if cfgFile != "" {
			return fmt.Errorf("config file %s not found: %w", cfgFile, err)
		}
	} else {
		configFileUsed = v.ConfigFileUsed()
	}

	if err := v.Unmarshal(&appConfig); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	logger.Init(appConfig.IsDevelopment(), appConfig.SentryDSN)
	if configFileUsed != "" {
		logger.Log.Info("using config file", "path", configFileUsed)
	} else {
		logger.Log.Info("no config file found, using defaults and environment variables")
	}
	return nil
}
