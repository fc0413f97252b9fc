package models

// DayDefinition prescribes one training day. Exercises, Sets and Reps are
// parallel lists: index i of each describes the same exercise.
type DayDefinition struct {
	Name      string   `json:"name" yaml:"name"`
	Exercises []string `json:"exercises" yaml:"exercises"`
	Sets      []int    `json:"sets" yaml:"sets"`
	Reps      []int    `json:"reps" yaml:"reps"`
}

// Validate checks that the three prescription lists line up.
func (d DayDefinition) Validate() error {
	if d.Name == "" {
		return Invalid("day name", "must not be empty")
	}
	if len(d.Exercises) != len(d.Sets) || len(d.Exercises) != len(d.Reps) {
		return Invalid("day "+d.Name, "exercises/sets/reps lengths differ (%d/%d/%d)",
			len(d.Exercises), len(d.Sets), len(d.Reps))
	}
	return nil
}

// Truncate keeps the first n prescriptions of every list.
func (d DayDefinition) Truncate(n int) DayDefinition {
	if n > len(d.Exercises) {
		n = len(d.Exercises)
	}
	return DayDefinition{
		Name:      d.Name,
		Exercises: append([]string(nil), d.Exercises[:n]...),
		Sets:      append([]int(nil), d.Sets[:n]...),
		Reps:      append([]int(nil), d.Reps[:n]...),
	}
}

// Clone returns a copy that shares no backing arrays with d.
func (d DayDefinition) Clone() DayDefinition {
	return d.Truncate(len(d.Exercises))
}

// Template is a read-only routine blueprint.
type Template struct {
	Key         string          `json:"key" yaml:"-"`
	Name        string          `json:"name" yaml:"name"`
	Goal        string          `json:"goal" yaml:"goal"`
	Level       string          `json:"level" yaml:"level"`
	DaysPerWeek int             `json:"days_per_week" yaml:"days_per_week"`
	Description string          `json:"description" yaml:"description"`
	Days        []DayDefinition `json:"days" yaml:"days"`
}

// Validate checks the template and each of its days.
func (t Template) Validate() error {
	if t.Key == "" {
		return Invalid("template key", "must not be empty")
	}
	if len(t.Days) == 0 {
		return Invalid("template "+t.Key, "has no days")
	}
	for _, d := range t.Days {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// CloneDays deep-copies the day list.
func (t Template) CloneDays() []DayDefinition {
	days := make([]DayDefinition, len(t.Days))
	for i, d := range t.Days {
		days[i] = d.Clone()
	}
	return days
}

// TemplateSummary is the lightweight listing form of a Template.
type TemplateSummary struct {
	Key            string `json:"key"`
	Name           string `json:"name"`
	Goal           string `json:"goal"`
	Level          string `json:"level"`
	DaysPerWeek    int    `json:"days_per_week"`
	Description    string `json:"description"`
	DayCount       int    `json:"day_count"`
	TotalExercises int    `json:"total_exercises"`
}
