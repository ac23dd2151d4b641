package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openmyr/myrgo/internal/data"
)

// MonsterRepository loads monster templates from PostgreSQL.
type MonsterRepository struct {
	pool *pgxpool.Pool
}

// NewMonsterRepository creates a new monster template repository.
func NewMonsterRepository(pool *pgxpool.Pool) *MonsterRepository {
	return &MonsterRepository{pool: pool}
}

// LoadAll loads all monster templates.
func (r *MonsterRepository) LoadAll(ctx context.Context) ([]*data.MonsterTemplate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT template_id, name, level, max_hp, aggressive
		FROM monster_templates
		ORDER BY template_id
	`)
	if err != nil {
		return nil, fmt.Errorf("loading monster templates: %w", err)
	}
	defer rows.Close()

	templates := make([]*data.MonsterTemplate, 0, 256)
	for rows.Next() {
		t := &data.MonsterTemplate{}
		if err := rows.Scan(&t.ID, &t.Name, &t.Level, &t.MaxHP, &t.Aggressive); err != nil {
			return nil, fmt.Errorf("scanning monster template row: %w", err)
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating monster template rows: %w", err)
	}
	return templates, nil
}
