package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMapTemplates(t *testing.T) {
	path := writeFixture(t, "maps.yaml", `
maps:
  - id: 4
    name: Talon Hills
    width: 4096
    height: 2048
    max_players: 30
    max_drops: 50
    battle: true
    return: { map_id: 0, x: 10, y: 20 }
    spawns:
      - { template_id: 101, x: 300, y: 400 }
    warps:
      - { x: 32, y: 64, to_map_id: 5, to_x: 3000, to_y: 200 }
      - { x: 40, y: 64, to_map_id: 6, to_x: 100, to_y: 100 }
`)

	templates, err := LoadMapTemplates(path)
	require.NoError(t, err)
	require.Len(t, templates, 1)

	tmpl := templates[0]
	assert.Equal(t, int32(4), tmpl.ID)
	assert.Equal(t, "Talon Hills", tmpl.Name)
	assert.Equal(t, int32(30), tmpl.MaxPlayers)
	assert.True(t, tmpl.Battle)
	assert.Equal(t, int32(0), tmpl.ReturnMapID)
	assert.Equal(t, int32(20), tmpl.ReturnY)
	require.Len(t, tmpl.Spawns, 1)
	assert.Equal(t, SpawnPoint{TemplateID: 101, X: 300, Y: 400}, tmpl.Spawns[0])

	// declaration order preserved: it decides warp overlap resolution
	require.Len(t, tmpl.Warps, 2)
	assert.Equal(t, int32(5), tmpl.Warps[0].ToMapID)
	assert.Equal(t, int32(6), tmpl.Warps[1].ToMapID)
}

func TestLoadMapTemplates_Defaults(t *testing.T) {
	path := writeFixture(t, "maps.yaml", `
maps:
  - id: 1
    width: 100
    height: 100
`)
	templates, err := LoadMapTemplates(path)
	require.NoError(t, err)

	assert.Equal(t, int32(DefaultZoneCapacity), templates[0].MaxPlayers)
	assert.Equal(t, int32(DefaultDropCapacity), templates[0].MaxDrops)
}

func TestLoadMapTemplates_Errors(t *testing.T) {
	dup := writeFixture(t, "maps.yaml", `
maps:
  - { id: 1, width: 10, height: 10 }
  - { id: 1, width: 10, height: 10 }
`)
	_, err := LoadMapTemplates(dup)
	assert.ErrorContains(t, err, "duplicate map id")

	bad := writeFixture(t, "maps.yaml", `
maps:
  - { id: 1, width: 0, height: 10 }
`)
	_, err = LoadMapTemplates(bad)
	assert.ErrorContains(t, err, "invalid dimensions")

	_, err = LoadMapTemplates(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadMonsterTemplates(t *testing.T) {
	path := writeFixture(t, "monsters.yaml", `
monsters:
  - { id: 101, name: Harbor Rat, level: 2, max_hp: 40 }
  - { id: 102, name: Grey Wolf, level: 7, max_hp: 160, aggressive: true }
`)
	templates, err := LoadMonsterTemplates(path)
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, "Grey Wolf", templates[1].Name)
	assert.True(t, templates[1].Aggressive)
}

func TestMonsterRegistry(t *testing.T) {
	reg, err := NewMonsterRegistry([]*MonsterTemplate{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}})
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Count())

	got, ok := reg.Template(2)
	require.True(t, ok)
	assert.Equal(t, "b", got.Name)

	_, ok = reg.Template(3)
	assert.False(t, ok)

	_, err = NewMonsterRegistry([]*MonsterTemplate{{ID: 1}, {ID: 1}})
	assert.ErrorContains(t, err, "duplicate monster template id")
}

func TestWarp_Covers(t *testing.T) {
	w := Warp{X: 100, Y: 100}
	assert.True(t, w.Covers(100, 100))
	assert.True(t, w.Covers(100+WarpRange, 100-WarpRange))
	assert.False(t, w.Covers(100+WarpRange+1, 100))
}
