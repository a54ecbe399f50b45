package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for world reaction logic.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory. A missing directory is not an error; the engine just has no
// hooks defined.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load scripts: %w", err)
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// TriggerContext is the data handed to a trigger hook.
type TriggerContext struct {
	TriggerID  uint64
	DetectorID uint64
	Tag        string
	X, Y       float64
}

// CallTriggerHook invokes the Lua global on_trigger_enter or
// on_trigger_exit, when defined, with a context table. Hook errors are
// logged and swallowed; gameplay scripting must never take down a tick.
func (e *Engine) CallTriggerHook(enter bool, ctx TriggerContext) {
	name := "on_trigger_exit"
	if enter {
		name = "on_trigger_enter"
	}
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		return
	}

	t := e.vm.NewTable()
	t.RawSetString("trigger_id", lua.LNumber(ctx.TriggerID))
	t.RawSetString("detector_id", lua.LNumber(ctx.DetectorID))
	t.RawSetString("tag", lua.LString(ctx.Tag))
	t.RawSetString("x", lua.LNumber(ctx.X))
	t.RawSetString("y", lua.LNumber(ctx.Y))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua trigger hook error",
			zap.String("hook", name),
			zap.Uint64("trigger_id", ctx.TriggerID),
			zap.Error(err))
	}
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
