package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riftgate/server/internal/collision"
)

func writeLevel(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "level.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadLevel(t *testing.T) {
	path := writeLevel(t, `
statics:
  - id: 1
    x: 0
    y: -516
    half_w: 1024
    half_h: 16
    layer: environment
    note: north wall
triggers:
  - x: 100
    y: 100
    half_w: 48
    half_h: 48
    tag: lava
    type: physical
    layer: trigger
    mask: [player, enemy]
    cooldown: 1.5
spawns:
  - name: player-1
    kind: kinematic
    x: 0
    y: 0
    half_w: 14
    half_h: 14
    layer: player
    player: true
`)

	lvl, err := LoadLevel(path)
	require.NoError(t, err)
	require.Len(t, lvl.Statics, 1)
	require.Len(t, lvl.Triggers, 1)
	require.Len(t, lvl.Spawns, 1)

	assert.Equal(t, uint64(1), lvl.Statics[0].ID)
	assert.Equal(t, "environment", lvl.Statics[0].Layer)
	assert.Equal(t, 1.5, lvl.Triggers[0].Cooldown)
	assert.True(t, lvl.Spawns[0].Player)

	mask, err := ResolveMask(lvl.Triggers[0].Mask)
	require.NoError(t, err)
	assert.Equal(t, collision.LayerPlayer|collision.LayerEnemy, mask)
}

func TestLoadLevelUnknownLayerFails(t *testing.T) {
	path := writeLevel(t, `
statics:
  - id: 7
    x: 0
    y: 0
    half_w: 10
    half_h: 10
    layer: lavafloor
`)
	_, err := LoadLevel(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "static 7")
	assert.Contains(t, err.Error(), "lavafloor")
}

func TestLoadLevelUnknownTagFails(t *testing.T) {
	path := writeLevel(t, `
triggers:
  - x: 0
    y: 0
    half_w: 10
    half_h: 10
    tag: quicksand
`)
	_, err := LoadLevel(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quicksand")
}

func TestLoadLevelUnknownKindFails(t *testing.T) {
	path := writeLevel(t, `
spawns:
  - name: ghost
    kind: ethereal
`)
	_, err := LoadLevel(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `spawn "ghost"`)
}

func TestLoadLevelMalformedYAML(t *testing.T) {
	path := writeLevel(t, "statics: [::nope")
	_, err := LoadLevel(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse level")
}

func TestLoadLevelMissingFile(t *testing.T) {
	_, err := LoadLevel(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read level")
}

func TestResolveLayer(t *testing.T) {
	bit, err := ResolveLayer("")
	require.NoError(t, err)
	assert.Equal(t, collision.LayerDefault, bit)

	bit, err = ResolveLayer("Player")
	require.NoError(t, err)
	assert.Equal(t, collision.LayerPlayer, bit)

	_, err = ResolveLayer("bogus")
	assert.Error(t, err)
}

func TestResolveMask(t *testing.T) {
	mask, err := ResolveMask(nil)
	require.NoError(t, err)
	assert.Equal(t, collision.MaskAll, mask)

	mask, err = ResolveMask([]string{"all"})
	require.NoError(t, err)
	assert.Equal(t, collision.MaskAll, mask)

	mask, err = ResolveMask([]string{"player", "projectile"})
	require.NoError(t, err)
	assert.Equal(t, collision.LayerPlayer|collision.LayerProjectile, mask)

	_, err = ResolveMask([]string{"player", "bogus"})
	assert.Error(t, err)
}

func TestResolveTriggerType(t *testing.T) {
	tt, err := ResolveTriggerType("")
	require.NoError(t, err)
	assert.Equal(t, collision.TriggerEventOnly, tt)

	tt, err = ResolveTriggerType("physical")
	require.NoError(t, err)
	assert.Equal(t, collision.TriggerPhysical, tt)

	_, err = ResolveTriggerType("ghostly")
	assert.Error(t, err)
}

func TestResolveBodyKind(t *testing.T) {
	kind, err := ResolveBodyKind("")
	require.NoError(t, err)
	assert.Equal(t, collision.BodyDynamic, kind)

	kind, err = ResolveBodyKind("KINEMATIC")
	require.NoError(t, err)
	assert.Equal(t, collision.BodyKinematic, kind)

	_, err = ResolveBodyKind("soft")
	assert.Error(t, err)
}
