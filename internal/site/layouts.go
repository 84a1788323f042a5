package site

import (
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template/parse"
)

const (
	baseLayout    = "base.html"
	partialsDir   = "partials"
	defaultSingle = "single.html"
)

// layoutAliases lets content front matter name a layout without extension.
var layoutAliases = map[string]string{
	"base":    "base.html",
	"default": "default.html",
	"page":    "page.html",
}

// layoutSet holds one template set per page layout, each a clone of
// base.html and the partials with the layout parsed on top. Cloning keeps
// {{define}} blocks of different layouts from overriding each other.
type layoutSet struct {
	html  map[string]*template.Template
	entry map[string]string
	// feeds are the root *.xml templates. They go through html/template
	// too, so text is escaped into valid XML; post bodies come out as
	// escaped markup, which is what RSS description expects.
	feeds map[string]*template.Template
}

func loadLayouts(dir string, funcs template.FuncMap) (*layoutSet, error) {
	var pages, partials, feeds []string
	basePath := ""

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := strings.ToLower(d.Name())
		switch {
		case strings.HasSuffix(name, ".xml") && filepath.Dir(path) == dir:
			feeds = append(feeds, path)
		case !strings.HasSuffix(name, ".html"):
		case d.Name() == baseLayout && filepath.Dir(path) == dir:
			basePath = path
		case strings.HasPrefix(filepath.Dir(path), filepath.Join(dir, partialsDir)):
			partials = append(partials, path)
		default:
			pages = append(pages, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find layout files in '%s': %w", dir, err)
	}
	if basePath == "" {
		return nil, fmt.Errorf("%s not found directly in layouts directory '%s'", baseLayout, dir)
	}

	base, err := template.New(baseLayout).Funcs(funcs).ParseFiles(append([]string{basePath}, partials...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s and partials: %w", baseLayout, err)
	}

	set := &layoutSet{
		html:  map[string]*template.Template{},
		entry: map[string]string{},
		feeds: map[string]*template.Template{},
	}

	for _, path := range pages {
		name := filepath.Base(path)
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone base layout for %s: %w", name, err)
		}
		t, err := clone.ParseFiles(path)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layout %s: %w", name, err)
		}
		set.html[name] = t
		set.entry[name] = entryFor(t, name)
	}

	// base.html is usable on its own as the last-resort layout.
	baseOnly, err := base.Clone()
	if err != nil {
		return nil, fmt.Errorf("failed to clone base layout: %w", err)
	}
	set.html[baseLayout] = baseOnly
	set.entry[baseLayout] = baseLayout

	for _, path := range feeds {
		name := filepath.Base(path)
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read feed template %s: %w", name, err)
		}
		t, err := template.New(name).Funcs(funcs).Parse(string(src))
		if err != nil {
			return nil, fmt.Errorf("failed to parse feed template %s: %w", name, err)
		}
		set.feeds[name] = t
	}

	return set, nil
}

// entryFor returns the template to execute for a layout: the layout itself
// when it renders a full document, or base.html when it only supplies
// {{define}} blocks.
func entryFor(t *template.Template, name string) string {
	own := t.Lookup(name)
	if own == nil || own.Tree == nil || own.Tree.Root == nil {
		return baseLayout
	}
	if parse.IsEmptyTree(own.Tree.Root) {
		return baseLayout
	}
	return name
}

// resolve maps an alias or bare name to a layout file name.
func resolve(name string) string {
	if alias, ok := layoutAliases[name]; ok {
		return alias
	}
	if name != "" && filepath.Ext(name) == "" {
		return name + ".html"
	}
	return name
}

// pick returns the first layout among candidates that exists, falling back
// to base.html.
func (s *layoutSet) pick(candidates ...string) string {
	for _, c := range candidates {
		c = resolve(c)
		if _, ok := s.html[c]; ok {
			return c
		}
	}
	return baseLayout
}

func (s *layoutSet) has(name string) bool {
	_, ok := s.html[name]
	return ok
}
