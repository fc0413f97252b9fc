package legacy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/claude/gymapp/internal/models"
)

// Export is the JSON document written by the browser-only version of the
// app. Workouts and routines are keyed by user name.
type Export struct {
	Usuarios       []User               `json:"usuarios"`
	Users          []User               `json:"users"`
	Entrenamientos map[string][]Workout `json:"entrenamientos"`
	RutinasActivas map[string]*Routine  `json:"rutinas_activas"`
}

// AllUsers merges both spellings of the user list.
func (e *Export) AllUsers() []User {
	return append(append([]User(nil), e.Usuarios...), e.Users...)
}

type User struct {
	Name   string `json:"nombre"`
	Avatar string `json:"avatar"`
	PIN    string `json:"pin"`
}

type Workout struct {
	ID        models.RecordID `json:"id"`
	Date      string          `json:"fecha"`
	Exercises []Exercise      `json:"ejercicios"`
}

type Exercise struct {
	Name string `json:"nombre"`
	Sets []Set  `json:"series"`
}

type Set struct {
	Reps   number `json:"repeticiones"`
	Weight number `json:"peso"`
}

type Routine struct {
	Name        string        `json:"nombre"`
	Description string        `json:"descripcion"`
	Goal        string        `json:"objetivo"`
	Level       string        `json:"nivel"`
	DaysPerWeek int           `json:"diasSemana"`
	Equipment   []string      `json:"equipamiento"`
	TemplateKey string        `json:"plantilla"`
	Days        []Day         `json:"dias"`
	Progress    []DayProgress `json:"progreso"`
	CreatedAt   string        `json:"fechaCreacion"`
}

type Day struct {
	Name      string   `json:"nombre"`
	Exercises []string `json:"ejercicios"`
	Sets      []int    `json:"series"`
	Reps      []int    `json:"reps"`
}

type DayProgress struct {
	DayName   string            `json:"nombreDia"`
	Completed bool              `json:"completado"`
	Workouts  []models.RecordID `json:"entrenamientos"`
	LastDate  string            `json:"ultimaFecha"`
}

// number accepts a JSON number or a numeric string; form inputs were
// sometimes stored unparsed.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
		if s == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("not a number: %q", s)
		}
		*n = number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = number(f)
	return nil
}

// parseDate accepts ISO timestamps and bare dates.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// ToRecord converts a legacy workout.
func (w Workout) ToRecord() (models.WorkoutRecord, error) {
	if w.ID == "" {
		return models.WorkoutRecord{}, models.Invalid("id", "is required")
	}
	date, err := parseDate(w.Date)
	if err != nil {
		return models.WorkoutRecord{}, models.Invalid("fecha", "%v", err)
	}
	rec := models.WorkoutRecord{ID: w.ID, Date: date, Exercises: make([]models.LoggedExercise, 0, len(w.Exercises))}
	for _, ex := range w.Exercises {
		logged := models.LoggedExercise{Name: strings.TrimSpace(ex.Name), Sets: make([]models.Set, 0, len(ex.Sets))}
		for _, s := range ex.Sets {
			logged.Sets = append(logged.Sets, models.Set{Reps: int(s.Reps), WeightKg: float64(s.Weight)})
		}
		rec.Exercises = append(rec.Exercises, logged)
	}
	return rec, nil
}

// ToRoutine converts and validates a legacy active routine. Progress that
// does not line up with the days is left for the tracker to rebuild.
func (r Routine) ToRoutine() (*models.Routine, error) {
	out := &models.Routine{
		TemplateKey: r.TemplateKey,
		Name:        r.Name,
		Description: r.Description,
		Goal:        r.Goal,
		Level:       r.Level,
		DaysPerWeek: r.DaysPerWeek,
		Equipment:   r.Equipment,
	}
	for _, d := range r.Days {
		out.Days = append(out.Days, models.DayDefinition{Name: d.Name, Exercises: d.Exercises, Sets: d.Sets, Reps: d.Reps})
	}
	if out.DaysPerWeek == 0 {
		out.DaysPerWeek = len(out.Days)
	}
	for _, p := range r.Progress {
		dp := models.DayProgress{DayName: p.DayName, Completed: p.Completed, WorkoutIDs: []string{}}
		for _, id := range p.Workouts {
			dp.WorkoutIDs = append(dp.WorkoutIDs, string(id))
		}
		if p.LastDate != "" {
			if t, err := parseDate(p.LastDate); err == nil {
				dp.LastCompletedAt = &t
			}
		}
		out.Progress = append(out.Progress, dp)
	}
	if r.CreatedAt != "" {
		if t, err := parseDate(r.CreatedAt); err == nil {
			out.CreatedAt = t
		}
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
