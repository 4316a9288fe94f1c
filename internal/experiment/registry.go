package experiment

import (
	"fmt"
	"strings"

	"github.com/san-kum/boilsim/internal/config"
)

// Registry builds experiments from named presets against one catalog.
type Registry struct {
	catalog *config.Catalog
	presets map[string]*config.Workshop
	engine  config.Engine
}

func NewRegistry(catalog *config.Catalog, engine config.Engine) *Registry {
	return &Registry{
		catalog: catalog,
		presets: config.Presets(),
		engine:  engine,
	}
}

// Get assembles the preset called name.
func (r *Registry) Get(name string) (*Experiment, error) {
	w, ok := r.presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset: %s", name)
	}
	return New(w, r.catalog, r.engine)
}

// Load assembles a workshop document from disk.
func (r *Registry) Load(path string) (*Experiment, error) {
	w, err := config.LoadWorkshop(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return New(w, r.catalog, r.engine)
}

func (r *Registry) ListPresets() []string {
	return config.ListPresets()
}

func (r *Registry) Catalog() *config.Catalog { return r.catalog }

// Build assembles an already parsed workshop.
func (r *Registry) Build(w *config.Workshop) (*Experiment, error) {
	return New(w, r.catalog, r.engine)
}

// Workshop returns the preset called name, or the workshop document at
// name when no preset matches and the name looks like a path.
func (r *Registry) Workshop(name string) (*config.Workshop, error) {
	if w, ok := r.presets[name]; ok {
		c := *w
		return &c, nil
	}
	if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
		return config.LoadWorkshop(name)
	}
	return nil, fmt.Errorf("unknown preset: %s (available: %s)", name, strings.Join(r.ListPresets(), ", "))
}
