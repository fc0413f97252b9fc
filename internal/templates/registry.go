// Package templates holds the read-only routine template registry.
package templates

import (
	_ "embed"
	"fmt"
	"sort"

	"github.com/claude/gymapp/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed builtin.yaml
var builtinYAML []byte

// Goal and level tags used by the built-in templates.
const (
	GoalStrength    = "fuerza"
	GoalHypertrophy = "hipertrofia"
	GoalCutting     = "definicion"
	GoalGeneral     = "general"

	LevelBeginner     = "principiante"
	LevelIntermediate = "intermedio"
	LevelAdvanced     = "avanzado"
)

// Keys of the built-in templates referenced by the generator.
const (
	KeyStrength3    = "fuerza-3dias"
	KeyStrength4    = "fuerza-4dias"
	KeyHypertrophy3 = "hipertrofia-3dias"
	KeyHypertrophy4 = "hipertrofia-4dias"
	KeyHypertrophy5 = "hipertrofia-5dias"
	KeyBeginner3    = "principiante-3dias"
	KeyCutting4     = "definicion-4dias"
	KeyExpress3     = "express-3dias"
)

var goalAliases = map[string]string{
	"strength":    GoalStrength,
	"hypertrophy": GoalHypertrophy,
	"cutting":     GoalCutting,
	"definición":  GoalCutting,
}

var levelAliases = map[string]string{
	"beginner":     LevelBeginner,
	"intermediate": LevelIntermediate,
	"advanced":     LevelAdvanced,
}

// NormalizeGoal maps English aliases onto the registry's goal tags.
func NormalizeGoal(goal string) string {
	if g, ok := goalAliases[goal]; ok {
		return g
	}
	return goal
}

// NormalizeLevel maps English aliases onto the registry's level tags.
func NormalizeLevel(level string) string {
	if l, ok := levelAliases[level]; ok {
		return l
	}
	return level
}

// Registry is an immutable set of validated templates. It is safe for
// concurrent use.
type Registry struct {
	byKey map[string]models.Template
	keys  []string
}

// New validates every template and builds a registry. Map keys become
// template keys.
func New(defs map[string]models.Template) (*Registry, error) {
	r := &Registry{byKey: make(map[string]models.Template, len(defs))}
	for key, t := range defs {
		t.Key = key
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("template %s: %w", key, err)
		}
		t.Days = t.CloneDays()
		r.byKey[key] = t
		r.keys = append(r.keys, key)
	}
	sort.Strings(r.keys)
	return r, nil
}

// Builtin parses and validates the embedded template set.
func Builtin() (*Registry, error) {
	return Parse(builtinYAML)
}

// Parse builds a registry from a YAML document keyed by template key.
func Parse(data []byte) (*Registry, error) {
	var defs map[string]models.Template
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return New(defs)
}

// Get returns a deep copy of the template for key.
func (r *Registry) Get(key string) (models.Template, bool) {
	t, ok := r.byKey[key]
	if !ok {
		return models.Template{}, false
	}
	t.Days = t.CloneDays()
	return t, true
}

// Has reports whether key names a template.
func (r *Registry) Has(key string) bool {
	_, ok := r.byKey[key]
	return ok
}

// List returns lightweight summaries of all templates, sorted by key.
func (r *Registry) List() []models.TemplateSummary {
	out := make([]models.TemplateSummary, 0, len(r.keys))
	for _, k := range r.keys {
		out = append(out, summarize(r.byKey[k]))
	}
	return out
}

// Filter returns summaries matching goal, level and days. Empty strings and
// zero days match anything.
func (r *Registry) Filter(goal, level string, days int) []models.TemplateSummary {
	goal, level = NormalizeGoal(goal), NormalizeLevel(level)
	var out []models.TemplateSummary
	for _, k := range r.keys {
		t := r.byKey[k]
		if goal != "" && t.Goal != goal {
			continue
		}
		if level != "" && t.Level != level {
			continue
		}
		if days > 0 && t.DaysPerWeek != days {
			continue
		}
		out = append(out, summarize(t))
	}
	return out
}

func summarize(t models.Template) models.TemplateSummary {
	total := 0
	for _, d := range t.Days {
		total += len(d.Exercises)
	}
	return models.TemplateSummary{
		Key:            t.Key,
		Name:           t.Name,
		Goal:           t.Goal,
		Level:          t.Level,
		DaysPerWeek:    t.DaysPerWeek,
		Description:    t.Description,
		DayCount:       len(t.Days),
		TotalExercises: total,
	}
}
