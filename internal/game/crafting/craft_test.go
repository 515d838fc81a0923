package crafting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erin-fowler/buildmode/internal/game/inventory"
	"github.com/erin-fowler/buildmode/internal/game/item"
)

func craftRegistry(t *testing.T) *item.Registry {
	t.Helper()
	reg := item.NewRegistry()
	require.NoError(t, reg.Register(&item.Def{
		ID: "plank", Name: "Plank", Kind: item.KindMaterial,
		Stackable: true, MaxStack: 20,
	}))
	require.NoError(t, reg.Register(&item.Def{
		ID: "nail", Name: "Nail", Kind: item.KindMaterial,
		Stackable: true, MaxStack: 50,
	}))
	require.NoError(t, reg.Register(&item.Def{
		ID: "crate_small", Name: "Small Crate", Kind: item.KindFurniture,
		MaxStack: 1, Width: 2, Depth: 2, Height: 1,
	}))
	return reg
}

func crateRecipe() *Recipe {
	return &Recipe{
		ID:   "crate_small",
		Name: "Small Crate",
		Inputs: []Ingredient{
			{Item: "plank", Count: 4},
			{Item: "nail", Count: 8},
		},
		Output: Output{Item: "crate_small", Count: 1},
	}
}

func TestRecipeValidate(t *testing.T) {
	assert.NoError(t, crateRecipe().Validate())

	bad := &Recipe{}
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ID must not be empty")
	assert.Contains(t, err.Error(), "Inputs must not be empty")
	assert.Contains(t, err.Error(), "Output.Item")

	bad = crateRecipe()
	bad.Inputs[0].Count = 0
	assert.Error(t, bad.Validate())
}

func TestCanCraft(t *testing.T) {
	reg := craftRegistry(t)
	c, err := inventory.NewContainer(6)
	require.NoError(t, err)
	require.NoError(t, c.Add("plank", 4, reg))
	require.NoError(t, c.Add("nail", 7, reg))

	assert.False(t, CanCraft(c, crateRecipe()), "one nail short")
	require.NoError(t, c.Add("nail", 1, reg))
	assert.True(t, CanCraft(c, crateRecipe()))
}

func TestCraftConsumesAndProduces(t *testing.T) {
	reg := craftRegistry(t)
	c, err := inventory.NewContainer(6)
	require.NoError(t, err)
	require.NoError(t, c.Add("plank", 10, reg))
	require.NoError(t, c.Add("nail", 8, reg))

	require.NoError(t, Craft(c, crateRecipe(), reg))

	assert.Equal(t, 6, c.Count("plank"))
	assert.Equal(t, 0, c.Count("nail"))
	assert.Equal(t, 1, c.Count("crate_small"))
}

func TestCraftFailsWithoutInputs(t *testing.T) {
	reg := craftRegistry(t)
	c, err := inventory.NewContainer(6)
	require.NoError(t, err)
	require.NoError(t, c.Add("plank", 1, reg))

	assert.Error(t, Craft(c, crateRecipe(), reg))
	assert.Equal(t, 1, c.Count("plank"), "failed craft consumes nothing")
}

func TestCraftRollsBackWhenOutputDoesNotFit(t *testing.T) {
	reg := craftRegistry(t)
	c, err := inventory.NewContainer(2)
	require.NoError(t, err)
	require.NoError(t, c.Add("plank", 12, reg))
	require.NoError(t, c.Add("nail", 8, reg))

	// Two non-stackable crates need two slots, but consuming the inputs
	// frees only the nail slot.
	batch := crateRecipe()
	batch.Output.Count = 2

	err = Craft(c, batch, reg)
	require.Error(t, err)
	assert.Equal(t, 12, c.Count("plank"), "inputs restored after rollback")
	assert.Equal(t, 8, c.Count("nail"))
	assert.Equal(t, 0, c.Count("crate_small"))
}

func TestLoadRecipes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "crate.yaml"), []byte(`
id: crate_small
name: Small Crate
inputs:
  - item: plank
    count: 4
  - item: nail
    count: 8
output:
  item: crate_small
  count: 1
`), 0644))

	recipes, err := LoadRecipes(dir)
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, "crate_small", recipes[0].ID)
	assert.Len(t, recipes[0].Inputs, 2)
}

func TestLoadRecipesRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(`
id: broken
inputs: []
output:
  item: ""
  count: 0
`), 0644))

	_, err := LoadRecipes(dir)
	assert.Error(t, err)
}

func TestBook(t *testing.T) {
	b := NewBook()
	require.NoError(t, b.Register(crateRecipe()))
	assert.Error(t, b.Register(crateRecipe()))

	r, ok := b.Recipe("crate_small")
	require.True(t, ok)
	assert.Equal(t, "Small Crate", r.Name)
	assert.Equal(t, 1, b.Len())
}
