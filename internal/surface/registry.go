// Package surface maps UI-specific column labels onto the canonical order
// field vocabulary, one mapping table per observation surface. Tables live
// in a yaml file and are validated at load time: a typo in a canonical
// field name fails startup instead of producing a silent nil at capture
// time.
package surface

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"tradecheck/internal/logger"
	"tradecheck/internal/order"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type fileConfig struct {
	Surfaces map[string]surfaceConfig `yaml:"surfaces"`
}

type surfaceConfig struct {
	Source      string            `yaml:"source"`
	Labels      map[string]string `yaml:"labels"`
	LossMarkers []string          `yaml:"loss_markers"`
}

// Mapping resolves one surface's UI labels to canonical fields.
type Mapping struct {
	Source      string
	labels      map[string]order.Field
	lossMarkers map[string]bool
}

// Registry holds all surface mappings and hot-reloads them when the file
// changes, so label fixes don't need a suite restart.
type Registry struct {
	path string

	mu       sync.RWMutex
	mappings map[string]Mapping
}

// NewRegistry loads the mapping file and starts watching it.
func NewRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("surface registry requires path")
	}
	r := &Registry{path: path}
	if err := r.reload(); err != nil {
		return nil, err
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read surface mapping failed: %w", err)
	}
	v.OnConfigChange(func(evt fsnotify.Event) {
		if err := r.reload(); err != nil {
			logger.Errorf("surface mapping reload failed: %v", err)
			return
		}
		logger.Infof("surface mapping reloaded (%s)", evt.Name)
	})
	v.WatchConfig()
	return r, nil
}

func (r *Registry) reload() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("read surface mapping failed: %w", err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse surface mapping failed: %w", err)
	}
	mappings, err := buildMappings(cfg)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.mappings = mappings
	r.mu.Unlock()
	return nil
}

func buildMappings(cfg fileConfig) (map[string]Mapping, error) {
	if len(cfg.Surfaces) == 0 {
		return nil, fmt.Errorf("surface mapping defines no surfaces")
	}
	out := make(map[string]Mapping, len(cfg.Surfaces))
	for name, sc := range cfg.Surfaces {
		source := strings.TrimSpace(sc.Source)
		if source == "" {
			source = name
		}
		if len(sc.Labels) == 0 {
			return nil, fmt.Errorf("surface %q maps no labels", name)
		}
		m := Mapping{
			Source:      source,
			labels:      make(map[string]order.Field, len(sc.Labels)),
			lossMarkers: make(map[string]bool, len(sc.LossMarkers)),
		}
		for label, canonical := range sc.Labels {
			field, ok := order.FieldByName(strings.TrimSpace(canonical))
			if !ok {
				return nil, fmt.Errorf("surface %q: label %q maps to unknown field %q", name, label, canonical)
			}
			m.labels[canonLabel(label)] = field
		}
		for _, marker := range sc.LossMarkers {
			m.lossMarkers[strings.ToLower(strings.TrimSpace(marker))] = true
		}
		out[name] = m
	}
	return out, nil
}

// Mapping returns the table for a surface key.
func (r *Registry) Mapping(name string) (Mapping, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.mappings[strings.TrimSpace(name)]
	return m, ok
}

// Surfaces lists the configured surface keys.
func (r *Registry) Surfaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.mappings))
	for name := range r.mappings {
		out = append(out, name)
	}
	return out
}

// Row converts one captured UI row into canonical raw fields. cellClasses
// carries per-label style metadata (CSS classes); a class matching a
// configured loss marker sets the Negative cue for that cell. An unmapped
// label is an error: new columns must be mapped deliberately.
func (m Mapping) Row(cells map[string]string, cellClasses map[string][]string) (order.Fields, error) {
	out := make(order.Fields, len(cells))
	for label, text := range cells {
		field, ok := m.labels[canonLabel(label)]
		if !ok {
			return nil, fmt.Errorf("surface %q: unmapped label %q", m.Source, label)
		}
		raw := order.RawField{Text: text}
		for _, class := range cellClasses[label] {
			if m.lossMarkers[strings.ToLower(strings.TrimSpace(class))] {
				raw.Negative = true
				break
			}
		}
		out[field] = raw
	}
	return out, nil
}

func canonLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}
