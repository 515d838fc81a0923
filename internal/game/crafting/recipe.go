// Package crafting turns stacks of materials into new items. Recipes
// are YAML content files; crafting operates on inventory containers and
// is atomic per craft.
package crafting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Ingredient is one required input of a recipe.
type Ingredient struct {
	Item  string `yaml:"item"`
	Count int    `yaml:"count"`
}

// Output is the product of a recipe.
type Output struct {
	Item  string `yaml:"item"`
	Count int    `yaml:"count"`
}

// Recipe defines one craft loaded from YAML.
type Recipe struct {
	ID     string       `yaml:"id"`
	Name   string       `yaml:"name"`
	Inputs []Ingredient `yaml:"inputs"`
	Output Output       `yaml:"output"`
}

// Validate checks that the Recipe satisfies its invariants.
//
// Postcondition: returns nil iff the recipe is well-formed.
func (r *Recipe) Validate() error {
	var errs []error
	if r.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if len(r.Inputs) == 0 {
		errs = append(errs, errors.New("Inputs must not be empty"))
	}
	for i, in := range r.Inputs {
		if in.Item == "" {
			errs = append(errs, fmt.Errorf("Inputs[%d].Item must not be empty", i))
		}
		if in.Count < 1 {
			errs = append(errs, fmt.Errorf("Inputs[%d].Count must be >= 1", i))
		}
	}
	if r.Output.Item == "" {
		errs = append(errs, errors.New("Output.Item must not be empty"))
	}
	if r.Output.Count < 1 {
		errs = append(errs, errors.New("Output.Count must be >= 1"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("recipe validation failed: %v", errs)
	}
	return nil
}

// LoadRecipes reads all *.yaml and *.yml files from dir, parses each as
// a Recipe, validates it, and returns the collected slice.
//
// Precondition: dir is a readable directory path.
func LoadRecipes(dir string) ([]*Recipe, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadRecipes: cannot read directory %q: %w", dir, err)
	}

	var recipes []*Recipe
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadRecipes: cannot read file %q: %w", path, err)
		}
		var r Recipe
		if err := yaml.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("LoadRecipes: cannot parse file %q: %w", path, err)
		}
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("LoadRecipes: invalid recipe in %q: %w", path, err)
		}
		recipes = append(recipes, &r)
	}
	return recipes, nil
}

// Book holds all loaded recipes indexed by ID.
type Book struct {
	recipes map[string]*Recipe
}

// NewBook returns an empty Book.
func NewBook() *Book {
	return &Book{recipes: make(map[string]*Recipe)}
}

// Register adds r to the book.
//
// Postcondition: Recipe(r.ID) returns (r, true); returns error if r.ID
// is already registered.
func (b *Book) Register(r *Recipe) error {
	if _, exists := b.recipes[r.ID]; exists {
		return fmt.Errorf("crafting: Book.Register: recipe ID %q already registered", r.ID)
	}
	b.recipes[r.ID] = r
	return nil
}

// Recipe returns the recipe for the given id and whether it was found.
func (b *Book) Recipe(id string) (*Recipe, bool) {
	r, ok := b.recipes[id]
	return r, ok
}

// Len returns the number of registered recipes.
func (b *Book) Len() int { return len(b.recipes) }
