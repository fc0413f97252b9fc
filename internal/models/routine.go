package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Routine is a user's live copy of a template with per-day progress.
// Goal and Level are what the user asked for, which can differ from the
// template's own tags when a fallback template was chosen.
type Routine struct {
	TemplateKey string          `json:"template_key"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Goal        string          `json:"goal"`
	Level       string          `json:"level"`
	DaysPerWeek int             `json:"days_per_week"`
	Equipment   []string        `json:"equipment,omitempty"`
	Days        []DayDefinition `json:"days"`
	Progress    []DayProgress   `json:"progress"`
	CreatedAt   time.Time       `json:"created_at"`
}

// DayProgress is the completion state of one routine day. DayName mirrors
// the day's name so the entry can still be matched after index drift.
type DayProgress struct {
	DayName         string     `json:"day_name"`
	Completed       bool       `json:"completed"`
	WorkoutIDs      []string   `json:"workout_ids"`
	LastCompletedAt *time.Time `json:"last_completed_at"`
}

// NewProgress returns one incomplete entry per day.
func NewProgress(days []DayDefinition) []DayProgress {
	p := make([]DayProgress, len(days))
	for i, d := range days {
		p[i] = DayProgress{DayName: d.Name, WorkoutIDs: []string{}}
	}
	return p
}

// ProgressAligned reports whether Progress has exactly one entry per day.
func (r *Routine) ProgressAligned() bool {
	return len(r.Progress) == len(r.Days)
}

// Validate checks a routine supplied by a caller before it is stored.
func (r *Routine) Validate() error {
	if r.Name == "" {
		return Invalid("routine name", "must not be empty")
	}
	if len(r.Days) == 0 {
		return Invalid("routine days", "must not be empty")
	}
	for _, d := range r.Days {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// RoutineStats is derived from Progress on every read.
type RoutineStats struct {
	DaysCompleted   int        `json:"days_completed"`
	TotalDays       int        `json:"total_days"`
	PercentComplete int        `json:"percent_complete"`
	LongestStreak   int        `json:"longest_streak"`
	LastWorkoutAt   *time.Time `json:"last_workout_at"`
}

// DayAddress selects a routine day either by position or by name.
type DayAddress struct {
	index  int
	name   string
	byName bool
}

// ByIndex addresses the day at position n (zero-based).
func ByIndex(n int) DayAddress { return DayAddress{index: n} }

// ByName addresses the day whose stored name equals name.
func ByName(name string) DayAddress { return DayAddress{name: name, byName: true} }

// Resolve returns the index of the addressed day in progress, or -1.
func (a DayAddress) Resolve(progress []DayProgress) int {
	if !a.byName {
		if a.index >= 0 && a.index < len(progress) {
			return a.index
		}
		return -1
	}
	for i, p := range progress {
		if p.DayName == a.name {
			return i
		}
	}
	return -1
}

func (a DayAddress) String() string {
	if a.byName {
		return "name:" + a.name
	}
	return "index:" + strconv.Itoa(a.index)
}

// MarshalJSON writes the index as a number or the name as a string.
func (a DayAddress) MarshalJSON() ([]byte, error) {
	if a.byName {
		return json.Marshal(a.name)
	}
	return json.Marshal(a.index)
}

// UnmarshalJSON accepts a day index or a day name.
func (a *DayAddress) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var name string
		if err := json.Unmarshal(b, &name); err != nil {
			return err
		}
		*a = ByName(name)
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("day must be an index or a name: %w", err)
	}
	*a = ByIndex(n)
	return nil
}
