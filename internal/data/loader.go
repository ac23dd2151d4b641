package data

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults applied when a map row leaves capacity fields at zero.
const (
	DefaultZoneCapacity = 60
	DefaultDropCapacity = 200
)

type mapFile struct {
	Maps []mapRow `yaml:"maps"`
}

type mapRow struct {
	ID         int32  `yaml:"id"`
	Name       string `yaml:"name"`
	Width      int32  `yaml:"width"`
	Height     int32  `yaml:"height"`
	MaxPlayers int32  `yaml:"max_players"`
	MaxDrops   int32  `yaml:"max_drops"`
	Battle     bool   `yaml:"battle"`
	Return     struct {
		MapID int32 `yaml:"map_id"`
		X     int32 `yaml:"x"`
		Y     int32 `yaml:"y"`
	} `yaml:"return"`
	Spawns []struct {
		TemplateID int32 `yaml:"template_id"`
		X          int32 `yaml:"x"`
		Y          int32 `yaml:"y"`
	} `yaml:"spawns"`
	Warps []struct {
		X       int32 `yaml:"x"`
		Y       int32 `yaml:"y"`
		ToMapID int32 `yaml:"to_map_id"`
		ToX     int32 `yaml:"to_x"`
		ToY     int32 `yaml:"to_y"`
	} `yaml:"warps"`
}

// LoadMapTemplates reads map templates from a YAML file.
// Warp order in the file is preserved: it decides overlap resolution.
func LoadMapTemplates(path string) ([]*MapTemplate, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading map templates %s: %w", path, err)
	}

	var file mapFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing map templates %s: %w", path, err)
	}

	templates := make([]*MapTemplate, 0, len(file.Maps))
	seen := make(map[int32]bool, len(file.Maps))
	for _, row := range file.Maps {
		if seen[row.ID] {
			return nil, fmt.Errorf("duplicate map id %d in %s", row.ID, path)
		}
		seen[row.ID] = true

		if row.Width <= 0 || row.Height <= 0 {
			return nil, fmt.Errorf("map %d: invalid dimensions %dx%d", row.ID, row.Width, row.Height)
		}

		t := &MapTemplate{
			ID:          row.ID,
			Name:        row.Name,
			Width:       row.Width,
			Height:      row.Height,
			MaxPlayers:  row.MaxPlayers,
			MaxDrops:    row.MaxDrops,
			Battle:      row.Battle,
			ReturnMapID: row.Return.MapID,
			ReturnX:     row.Return.X,
			ReturnY:     row.Return.Y,
		}
		if t.MaxPlayers <= 0 {
			t.MaxPlayers = DefaultZoneCapacity
		}
		if t.MaxDrops <= 0 {
			t.MaxDrops = DefaultDropCapacity
		}
		for _, s := range row.Spawns {
			t.Spawns = append(t.Spawns, SpawnPoint{TemplateID: s.TemplateID, X: s.X, Y: s.Y})
		}
		for _, w := range row.Warps {
			t.Warps = append(t.Warps, Warp{X: w.X, Y: w.Y, ToMapID: w.ToMapID, ToX: w.ToX, ToY: w.ToY})
		}
		templates = append(templates, t)
	}

	slog.Info("map templates loaded", "path", path, "count", len(templates))
	return templates, nil
}

type monsterFile struct {
	Monsters []struct {
		ID         int32  `yaml:"id"`
		Name       string `yaml:"name"`
		Level      int32  `yaml:"level"`
		MaxHP      int32  `yaml:"max_hp"`
		Aggressive bool   `yaml:"aggressive"`
	} `yaml:"monsters"`
}

// LoadMonsterTemplates reads monster templates from a YAML file.
func LoadMonsterTemplates(path string) ([]*MonsterTemplate, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading monster templates %s: %w", path, err)
	}

	var file monsterFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing monster templates %s: %w", path, err)
	}

	templates := make([]*MonsterTemplate, 0, len(file.Monsters))
	for _, row := range file.Monsters {
		templates = append(templates, &MonsterTemplate{
			ID:         row.ID,
			Name:       row.Name,
			Level:      row.Level,
			MaxHP:      row.MaxHP,
			Aggressive: row.Aggressive,
		})
	}

	slog.Info("monster templates loaded", "path", path, "count", len(templates))
	return templates, nil
}
