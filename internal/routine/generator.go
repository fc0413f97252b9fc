// Package routine generates routines from templates and tracks progress on
// a user's single active routine.
package routine

import (
	"log/slog"
	"strings"
	"time"

	"github.com/claude/gymapp/internal/metrics"
	"github.com/claude/gymapp/internal/models"
	"github.com/claude/gymapp/internal/templates"
)

// minFilteredExercises is the smallest day equipment filtering may leave.
const minFilteredExercises = 2

// EquipmentLookup reports the equipment an exercise needs.
type EquipmentLookup interface {
	Equipment(exerciseID string) (string, bool)
}

// Request is a routine generation request.
type Request struct {
	Goal        string   `json:"goal"`
	Level       string   `json:"level"`
	DaysPerWeek int      `json:"days_per_week"`
	Equipment   []string `json:"equipment,omitempty"`
}

// Validate rejects requests missing required parameters.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Goal) == "" {
		return models.Invalid("goal", "is required")
	}
	if strings.TrimSpace(r.Level) == "" {
		return models.Invalid("level", "is required")
	}
	if r.DaysPerWeek < 1 || r.DaysPerWeek > 7 {
		return models.Invalid("days_per_week", "must be between 1 and 7, got %d", r.DaysPerWeek)
	}
	return nil
}

// Generator builds routine instances. It performs no I/O and is safe for
// concurrent use.
type Generator struct {
	registry  *templates.Registry
	equipment EquipmentLookup
	resolvers []Resolver
	log       *slog.Logger
	now       func() time.Time
}

// NewGenerator creates a generator using the default resolver chain.
func NewGenerator(registry *templates.Registry, equipment EquipmentLookup, log *slog.Logger) *Generator {
	return &Generator{
		registry:  registry,
		equipment: equipment,
		resolvers: DefaultResolvers(),
		log:       log,
		now:       time.Now,
	}
}

// Resolve returns the template key for the request parameters.
func (g *Generator) Resolve(goal, level string, days int) string {
	key := ""
	for _, r := range g.resolvers {
		if k, ok := r(goal, level, days); ok {
			key = k
			break
		}
	}
	if !g.registry.Has(key) {
		g.log.Warn("resolved template missing, using default",
			"key", key, "goal", goal, "level", level, "days", days)
		key = templates.KeyBeginner3
	}
	return key
}

// Generate builds a routine for req. It never fails: any combination of
// inputs resolves to some template.
func (g *Generator) Generate(req Request) *models.Routine {
	key := g.Resolve(req.Goal, req.Level, req.DaysPerWeek)
	tpl, _ := g.registry.Get(key)

	days := tpl.CloneDays()
	if len(req.Equipment) > 0 {
		days = g.filterEquipment(days, req.Equipment)
	}

	metrics.RoutinesGeneratedTotal.WithLabelValues(key).Inc()

	return &models.Routine{
		TemplateKey: key,
		Name:        tpl.Name,
		Description: tpl.Description,
		Goal:        req.Goal,
		Level:       req.Level,
		DaysPerWeek: tpl.DaysPerWeek,
		Equipment:   append([]string(nil), req.Equipment...),
		Days:        days,
		Progress:    models.NewProgress(days),
		CreatedAt:   g.now().UTC(),
	}
}

// filterEquipment keeps only prescriptions whose exercise needs available
// equipment. Exercises missing from the catalog are dropped. A day that would
// fall below minFilteredExercises is left untouched.
func (g *Generator) filterEquipment(days []models.DayDefinition, available []string) []models.DayDefinition {
	have := make(map[string]bool, len(available))
	for _, e := range available {
		have[e] = true
	}

	out := make([]models.DayDefinition, len(days))
	for i, d := range days {
		filtered := models.DayDefinition{Name: d.Name}
		for j, id := range d.Exercises {
			eq, ok := g.equipment.Equipment(id)
			if !ok || !have[eq] {
				continue
			}
			filtered.Exercises = append(filtered.Exercises, id)
			filtered.Sets = append(filtered.Sets, d.Sets[j])
			filtered.Reps = append(filtered.Reps, d.Reps[j])
		}
		if len(filtered.Exercises) < minFilteredExercises {
			out[i] = d
			continue
		}
		out[i] = filtered
	}
	return out
}
