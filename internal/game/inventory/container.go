// Package inventory provides generic stackable-item containers for the
// crafting side of the game. It knows nothing about placement; items
// move between containers and the scene at the session layer.
package inventory

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/erin-fowler/buildmode/internal/game/item"
)

// Stack is a quantity of one item definition occupying a container slot.
type Stack struct {
	InstanceID string
	DefID      string
	Quantity   int
}

// Observer is notified after every successful content mutation.
// Subscribe/Unsubscribe lifetimes are the caller's responsibility; a
// destroyed owner must unsubscribe itself.
type Observer interface {
	ContentsChanged(c *Container)
}

// Container holds item stacks up to a slot limit. Adds merge into
// existing stacks up to the definition's MaxStack before opening new
// slots, and every mutation is atomic: on error the container is
// unchanged.
//
// Container is not safe for concurrent use.
type Container struct {
	maxSlots  int
	stacks    []Stack
	observers []Observer
}

// NewContainer creates an empty container with the given slot limit.
//
// Precondition: maxSlots >= 1.
func NewContainer(maxSlots int) (*Container, error) {
	if maxSlots < 1 {
		return nil, fmt.Errorf("inventory: maxSlots must be >= 1, got %d", maxSlots)
	}
	return &Container{maxSlots: maxSlots}, nil
}

// Subscribe registers obs for content-change notifications.
//
// Precondition: obs must not be nil.
func (c *Container) Subscribe(obs Observer) {
	c.observers = append(c.observers, obs)
}

// Unsubscribe removes obs. Unknown observers are ignored.
func (c *Container) Unsubscribe(obs Observer) {
	for i, o := range c.observers {
		if o == obs {
			c.observers = append(c.observers[:i], c.observers[i+1:]...)
			return
		}
	}
}

func (c *Container) notify() {
	for _, o := range c.observers {
		o.ContentsChanged(c)
	}
}

// Add places quantity units of the given item into the container,
// merging into existing stacks first. It is atomic: if the slot limit
// would be exceeded, no state is modified.
//
// Precondition: quantity > 0; defID exists in reg.
// Postcondition: on success, Count(defID) grows by quantity; on error
// the container is unchanged.
func (c *Container) Add(defID string, quantity int, reg *item.Registry) error {
	def, ok := reg.Def(defID)
	if !ok {
		return fmt.Errorf("inventory: unknown item %q", defID)
	}
	if quantity <= 0 {
		return fmt.Errorf("inventory: quantity must be > 0, got %d", quantity)
	}

	maxStack := def.MaxStack
	if !def.Stackable {
		maxStack = 1
	}

	// Phase 1: how much merges into existing stacks, and how many new
	// slots the remainder needs.
	remaining := quantity
	type merge struct{ idx, amount int }
	var merges []merge
	for i := range c.stacks {
		if remaining <= 0 {
			break
		}
		s := &c.stacks[i]
		if s.DefID != defID || s.Quantity >= maxStack {
			continue
		}
		take := maxStack - s.Quantity
		if take > remaining {
			take = remaining
		}
		merges = append(merges, merge{idx: i, amount: take})
		remaining -= take
	}
	newSlots := (remaining + maxStack - 1) / maxStack
	if len(c.stacks)+newSlots > c.maxSlots {
		return fmt.Errorf("inventory: adding %d of %q needs %d new slots, only %d free",
			quantity, defID, newSlots, c.maxSlots-len(c.stacks))
	}

	// Phase 2: apply.
	for _, m := range merges {
		c.stacks[m.idx].Quantity += m.amount
	}
	for remaining > 0 {
		q := remaining
		if q > maxStack {
			q = maxStack
		}
		c.stacks = append(c.stacks, Stack{
			InstanceID: uuid.New().String(),
			DefID:      defID,
			Quantity:   q,
		})
		remaining -= q
	}
	c.notify()
	return nil
}

// Remove consumes quantity units of the given item across its stacks,
// draining the later stacks first. It is atomic: if the container holds
// fewer than quantity, nothing is removed.
//
// Precondition: quantity > 0.
// Postcondition: on success, Count(defID) shrinks by quantity.
func (c *Container) Remove(defID string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("inventory: quantity must be > 0, got %d", quantity)
	}
	if c.Count(defID) < quantity {
		return fmt.Errorf("inventory: need %d of %q, have %d", quantity, defID, c.Count(defID))
	}

	remaining := quantity
	for i := len(c.stacks) - 1; i >= 0 && remaining > 0; i-- {
		s := &c.stacks[i]
		if s.DefID != defID {
			continue
		}
		take := s.Quantity
		if take > remaining {
			take = remaining
		}
		s.Quantity -= take
		remaining -= take
	}

	// Compact away emptied slots.
	kept := c.stacks[:0]
	for _, s := range c.stacks {
		if s.Quantity > 0 {
			kept = append(kept, s)
		}
	}
	c.stacks = kept
	c.notify()
	return nil
}

// Count returns the total quantity of the given item across all stacks.
func (c *Container) Count(defID string) int {
	total := 0
	for _, s := range c.stacks {
		if s.DefID == defID {
			total += s.Quantity
		}
	}
	return total
}

// Contents returns a snapshot copy of all stacks in slot order.
//
// Postcondition: mutations of the returned slice do not affect the
// container.
func (c *Container) Contents() []Stack {
	out := make([]Stack, len(c.stacks))
	copy(out, c.stacks)
	return out
}

// SlotsUsed returns the number of occupied slots.
func (c *Container) SlotsUsed() int { return len(c.stacks) }

// MaxSlots returns the container's slot limit.
func (c *Container) MaxSlots() int { return c.maxSlots }

// Restore replaces the container's contents with the given stacks,
// typically loaded from storage. Slot and quantity invariants are
// checked before anything is replaced.
func (c *Container) Restore(stacks []Stack) error {
	if len(stacks) > c.maxSlots {
		return fmt.Errorf("inventory: restoring %d slots into a %d-slot container", len(stacks), c.maxSlots)
	}
	for _, s := range stacks {
		if s.DefID == "" || s.Quantity < 1 {
			return fmt.Errorf("inventory: invalid stored stack %+v", s)
		}
	}
	c.stacks = make([]Stack, len(stacks))
	copy(c.stacks, stacks)
	c.notify()
	return nil
}
