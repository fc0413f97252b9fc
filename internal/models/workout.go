package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// WorkoutRecord is one logged training session.
type WorkoutRecord struct {
	ID        RecordID         `json:"id"`
	Date      time.Time        `json:"date"`
	Exercises []LoggedExercise `json:"exercises"`
}

// LoggedExercise is an exercise performed in a session.
type LoggedExercise struct {
	Name       string `json:"name"`
	ExerciseID string `json:"exercise_id,omitempty"`
	Sets       []Set  `json:"sets"`
}

// Set is one performed set.
type Set struct {
	Reps     int      `json:"reps"`
	WeightKg float64  `json:"weight_kg"`
	RIR      *float64 `json:"rir,omitempty"`
}

// RecordID identifies a workout record within one user's log. Clients have
// historically sent both numeric and string identifiers, so both decode.
type RecordID string

// NewRecordID derives an identifier from t in Unix milliseconds.
func NewRecordID(t time.Time) RecordID {
	return RecordID(strconv.FormatInt(t.UnixMilli(), 10))
}

// UnmarshalJSON accepts a JSON string or number.
func (id *RecordID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = RecordID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("record id must be a string or number: %w", err)
	}
	*id = RecordID(n.String())
	return nil
}

// WorkoutPatch carries the fields of an update. Zero values leave the stored
// field unchanged.
type WorkoutPatch struct {
	Date      time.Time        `json:"date"`
	Exercises []LoggedExercise `json:"exercises"`
}

// Apply merges p onto rec, keeping rec's identifier.
func (p WorkoutPatch) Apply(rec WorkoutRecord) WorkoutRecord {
	if !p.Date.IsZero() {
		rec.Date = p.Date
	}
	if p.Exercises != nil {
		rec.Exercises = p.Exercises
	}
	return rec
}

// WorkoutSummary aggregates a user's log. ConsecutiveDays is a calendar
// streak ending at the newest workout, unrelated to routine day order.
type WorkoutSummary struct {
	TotalWorkouts          int            `json:"total_workouts"`
	ConsecutiveDays        int            `json:"consecutive_days"`
	AvgExercisesPerSession float64        `json:"avg_exercises_per_session"`
	LastWorkout            *WorkoutRecord `json:"last_workout"`
}
