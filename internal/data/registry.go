package data

import "fmt"

// MonsterRegistry resolves spawn-table template ids to monster templates.
type MonsterRegistry struct {
	byID map[int32]*MonsterTemplate
}

// NewMonsterRegistry builds a registry from loaded templates.
// Duplicate ids are an error: two rows claiming one id means broken data.
func NewMonsterRegistry(templates []*MonsterTemplate) (*MonsterRegistry, error) {
	byID := make(map[int32]*MonsterTemplate, len(templates))
	for _, t := range templates {
		if _, dup := byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate monster template id %d", t.ID)
		}
		byID[t.ID] = t
	}
	return &MonsterRegistry{byID: byID}, nil
}

// Template returns the template for id.
func (r *MonsterRegistry) Template(id int32) (*MonsterTemplate, bool) {
	t, ok := r.byID[id]
	return t, ok
}

// Count returns the number of registered templates.
func (r *MonsterRegistry) Count() int {
	return len(r.byID)
}
