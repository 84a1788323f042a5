package site

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v2"
)

// Querier runs a GROQ query against the secondary data store.
type Querier interface {
	Query(ctx context.Context, groq string, params map[string]any, out any) error
}

// LoadSiteConfig reads a YAML file into a generic map exposed to templates
// as .Site.Config. A missing file yields an empty map.
func LoadSiteConfig(filename string) (map[string]interface{}, error) {
	out := map[string]interface{}{}
	if filename == "" {
		return out, nil
	}
	yamlFile, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", filename, err)
	}
	if err := yaml.Unmarshal(yamlFile, &out); err != nil {
		return nil, fmt.Errorf("error unmarshalling config file %s: %w", filename, err)
	}
	return out, nil
}

// loadGlobalData reads every _data/*.yaml (or .yml) file into a map keyed
// by file name without extension.
func loadGlobalData(dir string) (map[string]interface{}, error) {
	data := map[string]interface{}{}
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading data directory %s: %w", dir, err)
	}

	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading data file %s: %w", path, err)
		}
		var v interface{}
		if err := yaml.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("parsing data file %s: %w", path, err)
		}
		data[strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))] = v
	}
	return data, nil
}

// loadSanityData runs each configured query and stores its result under
// the query's key.
func (b *Builder) loadSanityData(ctx context.Context, data map[string]interface{}) error {
	if b.sanity == nil || len(b.cfg.Sanity.Queries) == 0 {
		return nil
	}

	keys := make([]string, 0, len(b.cfg.Sanity.Queries))
	for k := range b.cfg.Sanity.Queries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		var result any
		if err := b.sanity.Query(ctx, b.cfg.Sanity.Queries[key], nil, &result); err != nil {
			b.log.Error("sanity query failed", "key", key, "error", err)
			return fmt.Errorf("loading sanity data %s: %w", key, err)
		}
		data[key] = result
	}
	return nil
}
