package routine

import (
	"strconv"

	"github.com/claude/gymapp/internal/templates"
)

// Resolver maps a generation request to a template key. ok is false when the
// strategy has no opinion.
type Resolver func(goal, level string, days int) (key string, ok bool)

// directTemplates covers the common goal/days combinations.
var directTemplates = map[string]string{
	"fuerza-3": templates.KeyStrength3,
	"fuerza-4": templates.KeyStrength4,
	"fuerza-5": templates.KeyStrength4,

	"hipertrofia-3": templates.KeyHypertrophy3,
	"hipertrofia-4": templates.KeyHypertrophy4,
	"hipertrofia-5": templates.KeyHypertrophy5,

	"definicion-3": templates.KeyCutting4,
	"definicion-4": templates.KeyCutting4,
	"definicion-5": templates.KeyHypertrophy5,

	"general-3": templates.KeyBeginner3,
	"general-4": templates.KeyHypertrophy4,
	"general-5": templates.KeyHypertrophy5,
}

// ResolveDirect looks up the goal×days table.
func ResolveDirect(goal, _ string, days int) (string, bool) {
	key, ok := directTemplates[templates.NormalizeGoal(goal)+"-"+strconv.Itoa(days)]
	return key, ok
}

// ResolveByDays chooses by day count alone. It always matches.
func ResolveByDays(goal, level string, days int) (string, bool) {
	goal, level = templates.NormalizeGoal(goal), templates.NormalizeLevel(level)
	switch days {
	case 3:
		if level == templates.LevelBeginner {
			return templates.KeyBeginner3, true
		}
		if goal == templates.GoalStrength {
			return templates.KeyStrength3, true
		}
		return templates.KeyHypertrophy3, true
	case 4:
		if goal == templates.GoalStrength {
			return templates.KeyStrength4, true
		}
		return templates.KeyHypertrophy4, true
	case 5:
		return templates.KeyHypertrophy5, true
	default:
		return templates.KeyExpress3, true
	}
}

// ResolveDefault is the terminal strategy.
func ResolveDefault(string, string, int) (string, bool) {
	return templates.KeyBeginner3, true
}

// DefaultResolvers is the strategy order used by NewGenerator.
func DefaultResolvers() []Resolver {
	return []Resolver{ResolveDirect, ResolveByDays, ResolveDefault}
}
