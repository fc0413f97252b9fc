package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/claude/gymapp/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed exercises.yaml
var localYAML []byte

// Local is the fixed, always-available catalog. It never returns errors
// from its Source methods and is safe for concurrent use.
type Local struct {
	exercises []models.Exercise
	byID      map[string]int
}

var _ Source = (*Local)(nil)

// NewLocal builds a catalog from the embedded exercise list.
func NewLocal() (*Local, error) {
	var list []models.Exercise
	if err := yaml.Unmarshal(localYAML, &list); err != nil {
		return nil, fmt.Errorf("parsing local catalog: %w", err)
	}
	return newLocal(list)
}

func newLocal(list []models.Exercise) (*Local, error) {
	l := &Local{exercises: list, byID: make(map[string]int, len(list))}
	for i, e := range list {
		if e.ID == "" {
			return nil, fmt.Errorf("local catalog entry %d has no id", i)
		}
		if _, dup := l.byID[e.ID]; dup {
			return nil, fmt.Errorf("duplicate local exercise id %q", e.ID)
		}
		l.byID[e.ID] = i
	}
	return l, nil
}

// All returns every local exercise in catalog order.
func (l *Local) All() []models.Exercise {
	return cloneAll(l.exercises)
}

// Lookup returns the local exercise for id.
func (l *Local) Lookup(id string) (models.Exercise, bool) {
	i, ok := l.byID[id]
	if !ok {
		return models.Exercise{}, false
	}
	return clone(l.exercises[i]), true
}

// Equipment returns the equipment tag required by id.
func (l *Local) Equipment(id string) (string, bool) {
	i, ok := l.byID[id]
	if !ok {
		return "", false
	}
	return l.exercises[i].Equipment, true
}

func (l *Local) Get(_ context.Context, id string) (*models.Exercise, error) {
	e, ok := l.Lookup(id)
	if !ok {
		return nil, nil
	}
	return &e, nil
}

// ByMuscleGroup matches primary or secondary groups. limit <= 0 means all.
func (l *Local) ByMuscleGroup(_ context.Context, group string, limit int) ([]models.Exercise, error) {
	group = strings.ToLower(group)
	var out []models.Exercise
	for _, e := range l.exercises {
		if e.WorksGroup(group) {
			out = append(out, clone(e))
		}
	}
	return truncate(out, limit), nil
}

// Search is a case-insensitive substring match over name, description and
// muscle groups.
func (l *Local) Search(_ context.Context, term string, limit int) ([]models.Exercise, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	var out []models.Exercise
	for _, e := range l.exercises {
		if matches(e, term) {
			out = append(out, clone(e))
		}
	}
	return truncate(out, limit), nil
}

// ByEquipment returns exercises whose equipment tag is in tags.
func (l *Local) ByEquipment(tags []string) []models.Exercise {
	want := make(map[string]bool, len(tags))
	for _, t := range tags {
		want[t] = true
	}
	var out []models.Exercise
	for _, e := range l.exercises {
		if want[e.Equipment] {
			out = append(out, clone(e))
		}
	}
	return out
}

// MuscleGroups returns the sorted set of primary and secondary groups.
func (l *Local) MuscleGroups() []string {
	seen := map[string]bool{}
	for _, e := range l.exercises {
		seen[e.MuscleGroup] = true
		for _, g := range e.SecondaryGroups {
			seen[g] = true
		}
	}
	out := make([]string, 0, len(seen))
	for g := range seen {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

func matches(e models.Exercise, term string) bool {
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(e.Name), term) ||
		strings.Contains(strings.ToLower(e.Description), term) ||
		strings.Contains(e.MuscleGroup, term) {
		return true
	}
	for _, g := range e.SecondaryGroups {
		if strings.Contains(g, term) {
			return true
		}
	}
	return false
}

func clone(e models.Exercise) models.Exercise {
	e.SecondaryGroups = append([]string(nil), e.SecondaryGroups...)
	e.Instructions = append([]string(nil), e.Instructions...)
	e.Images = append([]string(nil), e.Images...)
	return e
}

func cloneAll(list []models.Exercise) []models.Exercise {
	out := make([]models.Exercise, len(list))
	for i, e := range list {
		out[i] = clone(e)
	}
	return out
}

func truncate(list []models.Exercise, limit int) []models.Exercise {
	if limit > 0 && len(list) > limit {
		return list[:limit]
	}
	return list
}
