package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/erin-fowler/buildmode/internal/game/grid"
	"github.com/erin-fowler/buildmode/internal/game/item"
)

// Hook function names a script may define.
const (
	canPlaceFn = "can_place"
	onPlaceFn  = "on_place"
)

// errNoHook marks a script that does not define the requested function.
var errNoHook = errors.New("scripting: hook not defined")

type hookScript struct {
	name  string
	state *lua.LState
}

// Manager loads item hook scripts and dispatches placement hooks to
// them. Each script runs in its own sandboxed state under a per-call
// opcode budget. Script failures are logged and swallowed: a broken
// can_place counts as allow, a broken on_place is ignored.
//
// Manager is driven from the simulation loop and is not safe for
// concurrent use.
type Manager struct {
	registry *item.Registry
	logger   *zap.Logger
	budget   int
	scripts  map[string]*hookScript
}

// NewManager creates a Manager resolving item definitions through reg.
//
// Precondition: reg is non-nil; budget <= 0 selects DefaultOpBudget.
func NewManager(reg *item.Registry, budget int, logger *zap.Logger) *Manager {
	if budget <= 0 {
		budget = DefaultOpBudget
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		registry: reg,
		logger:   logger,
		budget:   budget,
		scripts:  make(map[string]*hookScript),
	}
}

// LoadDir loads every *.lua file in dir, keyed by file name without
// extension. A script that fails to load is an error; hooks are content
// and must be valid at startup.
//
// Precondition: dir is a readable directory path.
func (m *Manager) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scripting: cannot read directory %q: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".lua")
		path := filepath.Join(dir, entry.Name())

		L := newSandboxedState()
		ctx, cancel := newOpBudgetContext(m.budget)
		L.SetContext(ctx)
		err := L.DoFile(path)
		cancel()
		if err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
		m.scripts[name] = &hookScript{name: name, state: L}
	}
	return nil
}

// Close releases all loaded script states.
func (m *Manager) Close() {
	for _, s := range m.scripts {
		s.state.Close()
	}
	m.scripts = make(map[string]*hookScript)
}

// Loaded returns the number of loaded scripts.
func (m *Manager) Loaded() int { return len(m.scripts) }

// scriptFor resolves the hook script attached to an item definition.
func (m *Manager) scriptFor(defID string) *hookScript {
	def, ok := m.registry.Def(defID)
	if !ok || def.OnPlaceScript == "" {
		return nil
	}
	return m.scripts[def.OnPlaceScript]
}

// call invokes a named global function in the script under a fresh
// opcode budget, returning its single result.
func (m *Manager) call(s *hookScript, fn string, nret int, args ...lua.LValue) (lua.LValue, error) {
	fnVal := s.state.GetGlobal(fn)
	if fnVal == lua.LNil {
		return lua.LNil, errNoHook
	}
	ctx, cancel := newOpBudgetContext(m.budget)
	defer cancel()
	s.state.SetContext(ctx)

	if err := s.state.CallByParam(lua.P{Fn: fnVal, NRet: nret, Protect: true}, args...); err != nil {
		return lua.LNil, err
	}
	if nret == 0 {
		return lua.LNil, nil
	}
	ret := s.state.Get(-1)
	s.state.Pop(1)
	return ret, nil
}

// CanPlace asks the item's script whether the candidate cell is
// acceptable. Items without a script or a can_place function are always
// allowed, and so are items whose script errors.
func (m *Manager) CanPlace(defID string, origin grid.Coord) bool {
	s := m.scriptFor(defID)
	if s == nil {
		return true
	}
	ret, err := m.call(s, canPlaceFn, 1,
		lua.LString(defID), lua.LNumber(origin.X), lua.LNumber(origin.Z))
	if errors.Is(err, errNoHook) {
		return true
	}
	if err != nil {
		m.logger.Warn("can_place hook failed, allowing placement",
			zap.String("script", s.name),
			zap.String("item", defID),
			zap.Error(err),
		)
		return true
	}
	return lua.LVAsBool(ret)
}

// OnPlace notifies the item's script of a successful anchor. Errors are
// logged and ignored.
func (m *Manager) OnPlace(defID string, origin grid.Coord) {
	s := m.scriptFor(defID)
	if s == nil {
		return
	}
	_, err := m.call(s, onPlaceFn, 0,
		lua.LString(defID), lua.LNumber(origin.X), lua.LNumber(origin.Z))
	if err != nil && !errors.Is(err, errNoHook) {
		m.logger.Warn("on_place hook failed",
			zap.String("script", s.name),
			zap.String("item", defID),
			zap.Error(err),
		)
	}
}
