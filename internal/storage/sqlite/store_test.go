package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erin-fowler/buildmode/internal/game/inventory"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "save.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, s.Close())
	})
	return s
}

func TestOpenCreatesSchema(t *testing.T) {
	s := openTestStore(t)

	stacks, err := s.LoadInventory(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stacks)

	counts, err := s.CraftCounts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestOpenBadPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "nested", "save.db"))
	assert.Error(t, err)
}

func TestSaveAndLoadInventory(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	stacks := []inventory.Stack{
		{InstanceID: "a1", DefID: "plank", Quantity: 20},
		{InstanceID: "b2", DefID: "plank", Quantity: 5},
		{InstanceID: "c3", DefID: "crate_small", Quantity: 1},
	}
	require.NoError(t, s.SaveInventory(ctx, stacks))

	loaded, err := s.LoadInventory(ctx)
	require.NoError(t, err)
	assert.Equal(t, stacks, loaded, "slot order survives a round trip")
}

func TestSaveInventoryReplaces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveInventory(ctx, []inventory.Stack{
		{InstanceID: "a1", DefID: "plank", Quantity: 20},
		{InstanceID: "b2", DefID: "nail", Quantity: 50},
	}))
	require.NoError(t, s.SaveInventory(ctx, []inventory.Stack{
		{InstanceID: "c3", DefID: "crate_small", Quantity: 1},
	}))

	loaded, err := s.LoadInventory(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "crate_small", loaded[0].DefID)
}

func TestSaveEmptyInventoryClears(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveInventory(ctx, []inventory.Stack{
		{InstanceID: "a1", DefID: "plank", Quantity: 20},
	}))
	require.NoError(t, s.SaveInventory(ctx, nil))

	loaded, err := s.LoadInventory(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestCraftLog(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordCraft(ctx, "crate"))
	require.NoError(t, s.RecordCraft(ctx, "crate"))
	require.NoError(t, s.RecordCraft(ctx, "table"))

	counts, err := s.CraftCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"crate": 2, "table": 1}, counts)
}

func TestRecordCraftRejectsEmptyID(t *testing.T) {
	s := openTestStore(t)
	assert.Error(t, s.RecordCraft(context.Background(), ""))
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "save.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveInventory(ctx, []inventory.Stack{
		{InstanceID: "a1", DefID: "plank", Quantity: 7},
	}))
	require.NoError(t, s.RecordCraft(ctx, "crate"))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	loaded, err := s.LoadInventory(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, 7, loaded[0].Quantity)

	counts, err := s.CraftCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts["crate"])
}
