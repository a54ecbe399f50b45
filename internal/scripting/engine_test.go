package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

func writeScript(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestEngineCallsHooks(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "hooks.lua", `
enters = 0
exits = 0
last_tag = ""

function on_trigger_enter(ctx)
    enters = enters + 1
    last_tag = ctx.tag
    last_x = ctx.x
end

function on_trigger_exit(ctx)
    exits = exits + 1
end
`)

	e, err := NewEngine(dir, zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	e.CallTriggerHook(true, TriggerContext{TriggerID: 9, DetectorID: 1, Tag: "lava", X: 12.5, Y: 3})
	e.CallTriggerHook(true, TriggerContext{Tag: "water"})
	e.CallTriggerHook(false, TriggerContext{Tag: "water"})

	assert.Equal(t, lua.LNumber(2), e.vm.GetGlobal("enters"))
	assert.Equal(t, lua.LNumber(1), e.vm.GetGlobal("exits"))
	assert.Equal(t, lua.LString("water"), e.vm.GetGlobal("last_tag"))
	assert.Equal(t, lua.LNumber(12.5), e.vm.GetGlobal("last_x"))
}

func TestEngineMissingHooksAreSilent(t *testing.T) {
	e, err := NewEngine(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	// No hooks defined; nothing to call, nothing to crash.
	e.CallTriggerHook(true, TriggerContext{Tag: "portal"})
	e.CallTriggerHook(false, TriggerContext{Tag: "portal"})
}

func TestEngineMissingDirIsNotAnError(t *testing.T) {
	e, err := NewEngine(filepath.Join(t.TempDir(), "absent"), zap.NewNop())
	require.NoError(t, err)
	e.Close()
}

func TestEngineBadScriptFailsLoad(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "broken.lua", "function oops(")
	_, err := NewEngine(dir, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.lua")
}

func TestEngineHookErrorIsSwallowed(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "angry.lua", `
function on_trigger_enter(ctx)
    error("scripted failure")
end
`)
	e, err := NewEngine(dir, zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	// Must not panic; the error is logged and the tick goes on.
	e.CallTriggerHook(true, TriggerContext{Tag: "lava"})
}

func TestEngineExposesAPIVersion(t *testing.T) {
	e, err := NewEngine(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	defer e.Close()
	assert.Equal(t, lua.LNumber(1), e.vm.GetGlobal("API_VERSION"))
}
