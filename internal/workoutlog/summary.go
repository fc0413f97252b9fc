package workoutlog

import (
	"sort"
	"time"

	"github.com/claude/gymapp/internal/models"
)

// Summarize computes totals over recs in any order.
func Summarize(recs []models.WorkoutRecord) models.WorkoutSummary {
	s := models.WorkoutSummary{TotalWorkouts: len(recs)}
	if len(recs) == 0 {
		return s
	}

	sorted := make([]models.WorkoutRecord, len(recs))
	copy(sorted, recs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })

	exercises := 0
	for _, r := range sorted {
		exercises += len(r.Exercises)
	}
	s.AvgExercisesPerSession = float64(exercises) / float64(len(sorted))
	last := sorted[0]
	s.LastWorkout = &last
	s.ConsecutiveDays = ConsecutiveDays(sorted)
	return s
}

// ConsecutiveDays counts distinct UTC calendar days walking back from the
// newest record, stopping at the first gap of more than one day. Several
// workouts on the same day count once.
func ConsecutiveDays(recs []models.WorkoutRecord) int {
	if len(recs) == 0 {
		return 0
	}
	days := make([]time.Time, 0, len(recs))
	seen := make(map[time.Time]bool, len(recs))
	for _, r := range recs {
		d := truncateDay(r.Date)
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	streak := 1
	for i := 1; i < len(days); i++ {
		if days[i-1].Sub(days[i]) != 24*time.Hour {
			break
		}
		streak++
	}
	return streak
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
