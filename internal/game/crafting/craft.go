package crafting

import (
	"fmt"

	"github.com/erin-fowler/buildmode/internal/game/inventory"
	"github.com/erin-fowler/buildmode/internal/game/item"
)

// CanCraft reports whether the container holds every input of the recipe.
func CanCraft(c *inventory.Container, r *Recipe) bool {
	for _, in := range r.Inputs {
		if c.Count(in.Item) < in.Count {
			return false
		}
	}
	return true
}

// Craft consumes the recipe's inputs from the container and adds its
// output. The operation is atomic: if the output does not fit, the
// consumed inputs are returned and an error is reported.
//
// Precondition: r has passed Validate; all item IDs resolve in reg.
// Postcondition: on success the container reflects exactly one craft;
// on error its contents are unchanged.
func Craft(c *inventory.Container, r *Recipe, reg *item.Registry) error {
	if !CanCraft(c, r) {
		return fmt.Errorf("crafting: missing inputs for %q", r.ID)
	}
	if _, ok := reg.Def(r.Output.Item); !ok {
		return fmt.Errorf("crafting: recipe %q outputs unknown item %q", r.ID, r.Output.Item)
	}

	consumed := make([]Ingredient, 0, len(r.Inputs))
	for _, in := range r.Inputs {
		if err := c.Remove(in.Item, in.Count); err != nil {
			// Give back whatever was already taken.
			restore(c, consumed, reg)
			return fmt.Errorf("crafting: consuming %q: %w", in.Item, err)
		}
		consumed = append(consumed, in)
	}

	if err := c.Add(r.Output.Item, r.Output.Count, reg); err != nil {
		restore(c, consumed, reg)
		return fmt.Errorf("crafting: output of %q does not fit: %w", r.ID, err)
	}
	return nil
}

func restore(c *inventory.Container, consumed []Ingredient, reg *item.Registry) {
	for _, in := range consumed {
		// Re-adding consumed inputs cannot overflow: their slots were
		// just freed.
		_ = c.Add(in.Item, in.Count, reg)
	}
}
