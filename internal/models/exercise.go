package models

import "time"

// Difficulty is the experience tier an exercise is suited for.
type Difficulty string

const (
	Beginner     Difficulty = "principiante"
	Intermediate Difficulty = "intermedio"
	Advanced     Difficulty = "avanzado"
)

// Range is an inclusive min/max recommendation.
type Range struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// Exercise is a catalog entry. Local entries have an empty Source; remote
// entries carry the upstream name and the time they were fetched.
type Exercise struct {
	ID                string     `json:"id" yaml:"id"`
	Name              string     `json:"name" yaml:"name"`
	MuscleGroup       string     `json:"muscle_group" yaml:"muscle_group"`
	SecondaryGroups   []string   `json:"secondary_groups" yaml:"secondary_groups"`
	Difficulty        Difficulty `json:"difficulty" yaml:"difficulty"`
	Equipment         string     `json:"equipment" yaml:"equipment"`
	Description       string     `json:"description,omitempty" yaml:"description"`
	Instructions      []string   `json:"instructions,omitempty" yaml:"instructions"`
	VideoURL          string     `json:"video_url,omitempty" yaml:"video_url"`
	SecondaryVideoURL string     `json:"secondary_video_url,omitempty" yaml:"secondary_video_url"`
	GIFURL            string     `json:"gif_url,omitempty" yaml:"gif_url"`
	ThumbnailURL      string     `json:"thumbnail_url,omitempty" yaml:"thumbnail_url"`
	Images            []string   `json:"images,omitempty" yaml:"images"`
	RecommendedSets   Range      `json:"recommended_sets" yaml:"recommended_sets"`
	RecommendedReps   Range      `json:"recommended_reps" yaml:"recommended_reps"`

	Source    string     `json:"source,omitempty" yaml:"-"`
	FetchedAt *time.Time `json:"fetched_at,omitempty" yaml:"-"`
}

// Remote reports whether the exercise came from a remote catalog.
func (e Exercise) Remote() bool {
	return e.Source != ""
}

// WorksGroup reports whether group is the primary or a secondary muscle group.
func (e Exercise) WorksGroup(group string) bool {
	if e.MuscleGroup == group {
		return true
	}
	for _, g := range e.SecondaryGroups {
		if g == group {
			return true
		}
	}
	return false
}
