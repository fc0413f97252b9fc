package alpha

import "github.com/claude/gymapp/internal/models"

// ToWorkout converts a session into a workout record keyed by its start
// time, so importing the same export twice overwrites instead of
// duplicating. Warm-up sets are dropped.
func ToWorkout(s Session) (rec models.WorkoutRecord, warmups int) {
	rec = models.WorkoutRecord{
		ID:        models.NewRecordID(s.Start),
		Date:      s.Start.UTC(),
		Exercises: make([]models.LoggedExercise, 0, len(s.Exercises)),
	}
	for _, ex := range s.Exercises {
		logged := models.LoggedExercise{Name: ex.Name, Sets: []models.Set{}}
		for _, set := range ex.Sets {
			if set.Warmup {
				warmups++
				continue
			}
			rir := set.RIR
			logged.Sets = append(logged.Sets, models.Set{Reps: set.Reps, WeightKg: set.WeightKg, RIR: &rir})
		}
		rec.Exercises = append(rec.Exercises, logged)
	}
	return rec, warmups
}
