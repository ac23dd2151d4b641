package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openmyr/myrgo/internal/data"
)

// MapRepository loads map templates (with their spawn and warp tables) from
// PostgreSQL. One pluggable implementation of the template data source; the
// world core only ever sees the resulting data.MapTemplate values.
type MapRepository struct {
	pool *pgxpool.Pool
}

// NewMapRepository creates a new map template repository.
func NewMapRepository(pool *pgxpool.Pool) *MapRepository {
	return &MapRepository{pool: pool}
}

// LoadAll loads every map template with its spawns and warps.
// Warps come back ordered by ordinal: declaration order is load-bearing for
// overlap resolution.
func (r *MapRepository) LoadAll(ctx context.Context) ([]*data.MapTemplate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT map_id, name, width, height, max_players, max_drops, battle,
		       return_map_id, return_x, return_y
		FROM maps
		ORDER BY map_id
	`)
	if err != nil {
		return nil, fmt.Errorf("loading maps: %w", err)
	}
	defer rows.Close()

	byID := make(map[int32]*data.MapTemplate)
	templates := make([]*data.MapTemplate, 0, 64)

	for rows.Next() {
		t := &data.MapTemplate{}
		if err := rows.Scan(&t.ID, &t.Name, &t.Width, &t.Height, &t.MaxPlayers, &t.MaxDrops,
			&t.Battle, &t.ReturnMapID, &t.ReturnX, &t.ReturnY); err != nil {
			return nil, fmt.Errorf("scanning map row: %w", err)
		}
		if t.MaxPlayers <= 0 {
			t.MaxPlayers = data.DefaultZoneCapacity
		}
		if t.MaxDrops <= 0 {
			t.MaxDrops = data.DefaultDropCapacity
		}
		byID[t.ID] = t
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating map rows: %w", err)
	}

	if err := r.loadSpawns(ctx, byID); err != nil {
		return nil, err
	}
	if err := r.loadWarps(ctx, byID); err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *MapRepository) loadSpawns(ctx context.Context, byID map[int32]*data.MapTemplate) error {
	rows, err := r.pool.Query(ctx, `
		SELECT map_id, template_id, x, y
		FROM spawn_points
		ORDER BY map_id, id
	`)
	if err != nil {
		return fmt.Errorf("loading spawn points: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var mapID int32
		var sp data.SpawnPoint
		if err := rows.Scan(&mapID, &sp.TemplateID, &sp.X, &sp.Y); err != nil {
			return fmt.Errorf("scanning spawn point row: %w", err)
		}
		if t, ok := byID[mapID]; ok {
			t.Spawns = append(t.Spawns, sp)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating spawn point rows: %w", err)
	}
	return nil
}

func (r *MapRepository) loadWarps(ctx context.Context, byID map[int32]*data.MapTemplate) error {
	rows, err := r.pool.Query(ctx, `
		SELECT map_id, x, y, to_map_id, to_x, to_y
		FROM warps
		ORDER BY map_id, ordinal
	`)
	if err != nil {
		return fmt.Errorf("loading warps: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var mapID int32
		var w data.Warp
		if err := rows.Scan(&mapID, &w.X, &w.Y, &w.ToMapID, &w.ToX, &w.ToY); err != nil {
			return fmt.Errorf("scanning warp row: %w", err)
		}
		if t, ok := byID[mapID]; ok {
			t.Warps = append(t.Warps, w)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating warp rows: %w", err)
	}
	return nil
}
