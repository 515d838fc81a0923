// Package scripting runs per-item Lua hooks in a sandboxed GopherLua
// environment. Hooks can veto a placement or react to a successful one;
// they can never crash the engine or run unbounded.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultOpBudget is the maximum number of Lua opcodes a single hook
// invocation may execute when no override is configured.
const DefaultOpBudget = 50_000

// opBudgetContext cancels itself after Done() has been observed budget
// times. GopherLua consults Done() once per opcode, which turns this
// into a deterministic per-invocation opcode budget.
type opBudgetContext struct {
	context.Context
	cancel context.CancelFunc
	left   *atomic.Int64
}

// Done decrements the remaining budget and fires the cancel function
// when it runs out; the VM then stops at the next opcode boundary.
func (c *opBudgetContext) Done() <-chan struct{} {
	if c.left.Add(-1) <= 0 {
		c.cancel()
	}
	return c.Context.Done()
}

// newOpBudgetContext returns a context that cancels after budget calls
// to Done().
//
// Precondition: budget > 0.
func newOpBudgetContext(budget int) (context.Context, context.CancelFunc) {
	base, cancel := context.WithCancel(context.Background())
	left := &atomic.Int64{}
	left.Store(int64(budget))
	return &opBudgetContext{Context: base, cancel: cancel, left: left}, cancel
}

// newSandboxedState creates a GopherLua state with only the safe parts
// of the standard library (base, table, string, math) and the unsafe
// base globals removed. The caller owns the state and must Close it.
func newSandboxedState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "collectgarbage", "require", "print"} {
		L.SetGlobal(name, lua.LNil)
	}

	return L
}
