// Package item holds the placeable item catalog: static definitions
// loaded from YAML content files and live instances in the scene.
package item

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/erin-fowler/buildmode/internal/game/grid"
)

// Kind constants for Def.Kind.
const (
	KindFurniture = "furniture"
	KindStation   = "station"
	KindDecor     = "decor"
	KindMaterial  = "material"
)

// validKinds is the set of valid Def kinds.
var validKinds = map[string]bool{
	KindFurniture: true,
	KindStation:   true,
	KindDecor:     true,
	KindMaterial:  true,
}

// Def defines the static properties of a placeable item loaded from YAML.
type Def struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Kind        string  `yaml:"kind"`
	Width       int     `yaml:"width"`
	Depth       int     `yaml:"depth"`
	Height      float64 `yaml:"height"`
	Stackable   bool    `yaml:"stackable"`
	MaxStack    int     `yaml:"max_stack"`
	Value       int     `yaml:"value"`
	// OnPlaceScript names the Lua hook script for this item, without
	// extension; empty means no hooks.
	OnPlaceScript string `yaml:"on_place_script"`
}

// Footprint returns the item's grid footprint, clamped to at least 1x1.
func (d *Def) Footprint() grid.Footprint {
	fp, _ := grid.Footprint{Width: d.Width, Depth: d.Depth, Height: d.Height}.Clamped()
	return fp
}

// Validate checks that the Def satisfies its invariants. Footprint
// extents are deliberately not validated here; non-positive values are
// clamped at load with a warning rather than rejected.
//
// Precondition: d is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (d *Def) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if !validKinds[d.Kind] {
		errs = append(errs, fmt.Errorf("Kind must be one of furniture, station, decor, material; got %q", d.Kind))
	}
	if d.MaxStack < 1 {
		errs = append(errs, errors.New("MaxStack must be >= 1"))
	}
	if d.Height < 0 {
		errs = append(errs, errors.New("Height must be >= 0"))
	}
	if d.Value < 0 {
		errs = append(errs, errors.New("Value must be >= 0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("item validation failed: %v", errs)
	}
	return nil
}

// LoadDefs reads all *.yaml and *.yml files from dir, parses each as a
// Def, validates it, and returns the collected slice. Non-positive
// footprints are clamped to 1x1 with a warning.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid Defs or the first encountered error.
func LoadDefs(dir string, logger *zap.Logger) ([]*Def, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadDefs: cannot read directory %q: %w", dir, err)
	}

	var defs []*Def
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadDefs: cannot read file %q: %w", path, err)
		}
		var d Def
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("LoadDefs: cannot parse file %q: %w", path, err)
		}
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("LoadDefs: invalid item in %q: %w", path, err)
		}
		if _, clamped := (grid.Footprint{Width: d.Width, Depth: d.Depth}).Clamped(); clamped {
			logger.Warn("item footprint clamped to 1x1",
				zap.String("item", d.ID),
				zap.Int("width", d.Width),
				zap.Int("depth", d.Depth),
			)
		}
		defs = append(defs, &d)
	}
	return defs, nil
}
