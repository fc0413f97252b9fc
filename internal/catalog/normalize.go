package catalog

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/claude/gymapp/internal/models"
)

// SourceExerciseDB tags exercises normalized from the remote service.
const SourceExerciseDB = "exercisedb"

// Defaults applied to remote records that omit a field.
const (
	defaultRemoteName       = "Sin nombre"
	defaultRemoteGroup      = "general"
	defaultRemoteEquipment  = "propio-peso"
	defaultRemoteDifficulty = models.Intermediate
)

var (
	defaultRemoteSets = models.Range{Min: 3, Max: 5}
	defaultRemoteReps = models.Range{Min: 8, Max: 12}
)

// muscleToRemote maps local muscle-group names to the upstream vocabulary.
var muscleToRemote = map[string]string{
	"pecho":          "chest",
	"espalda":        "back",
	"piernas":        "legs",
	"hombros":        "shoulders",
	"biceps":         "biceps",
	"triceps":        "triceps",
	"core":           "core",
	"abdominales":    "abs",
	"gluteos":        "glutes",
	"pantorrillas":   "calves",
	"cuadriceps":     "quadriceps",
	"isquiotibiales": "hamstrings",
}

var muscleFromRemote = func() map[string]string {
	m := make(map[string]string, len(muscleToRemote))
	for local, remote := range muscleToRemote {
		m[remote] = local
	}
	return m
}()

// RemoteMuscle translates a local muscle group for upstream queries.
// Unknown groups pass through unchanged.
func RemoteMuscle(group string) string {
	g := strings.ToLower(group)
	if r, ok := muscleToRemote[g]; ok {
		return r
	}
	return group
}

// LocalMuscle translates an upstream muscle name back to the local
// vocabulary. Unknown names pass through unchanged.
func LocalMuscle(name string) string {
	if l, ok := muscleFromRemote[strings.ToLower(name)]; ok {
		return l
	}
	return name
}

type rawRecord map[string]any

// first returns the first non-empty string among keys.
func (r rawRecord) first(keys ...string) string {
	for _, k := range keys {
		switch v := r[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// list returns the first non-empty string list among keys.
func (r rawRecord) list(keys ...string) []string {
	for _, k := range keys {
		list, ok := r[k].([]any)
		if !ok || len(list) == 0 {
			continue
		}
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// Normalize maps an upstream record onto the Exercise shape. Several
// synonymous field names are accepted for each concept. A record without an
// identifier yields ok=false.
func Normalize(r map[string]any, fetchedAt time.Time) (models.Exercise, bool) {
	rec := rawRecord(r)
	id := rec.first("id", "_id")
	if id == "" {
		return models.Exercise{}, false
	}

	group := rec.first("targetMuscle", "target")
	if group == "" {
		group = defaultRemoteGroup
	} else {
		group = LocalMuscle(group)
	}

	secondary := rec.list("secondaryMuscles", "secondary")
	for i, m := range secondary {
		secondary[i] = LocalMuscle(m)
	}
	if secondary == nil {
		secondary = []string{}
	}

	ex := models.Exercise{
		ID:                id,
		Name:              orDefault(rec.first("name", "title"), defaultRemoteName),
		MuscleGroup:       group,
		SecondaryGroups:   secondary,
		Difficulty:        models.Difficulty(orDefault(rec.first("difficulty", "level"), string(defaultRemoteDifficulty))),
		Equipment:         orDefault(rec.first("equipment", "gear"), defaultRemoteEquipment),
		Description:       rec.first("description", "desc"),
		Instructions:      rec.list("instructions", "steps"),
		VideoURL:          rec.first("videoUrl", "video_url", "video"),
		SecondaryVideoURL: rec.first("videoUrlSecondary", "video_url_secondary"),
		GIFURL:            rec.first("gifUrl", "gif_url", "gif"),
		ThumbnailURL:      rec.first("thumbnailUrl", "thumbnail_url", "thumbnail", "image"),
		Images:            rec.list("images", "imgs"),
		RecommendedSets:   defaultRemoteSets,
		RecommendedReps:   defaultRemoteReps,
		Source:            SourceExerciseDB,
	}
	ts := fetchedAt.UTC()
	ex.FetchedAt = &ts
	return ex, true
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// decodeList extracts records from {"exercises": [...]}, {"data": [...]} or
// a bare array.
func decodeList(body []byte) ([]map[string]any, error) {
	var bare []map[string]any
	if err := json.Unmarshal(body, &bare); err == nil {
		return bare, nil
	}
	var env struct {
		Exercises []map[string]any `json:"exercises"`
		Data      json.RawMessage  `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decoding exercise list: %w", err)
	}
	if env.Exercises != nil {
		return env.Exercises, nil
	}
	if len(env.Data) > 0 {
		var list []map[string]any
		if err := json.Unmarshal(env.Data, &list); err != nil {
			return nil, fmt.Errorf("decoding exercise list data: %w", err)
		}
		return list, nil
	}
	return nil, nil
}

// decodeOne extracts a record that is either bare or under "data".
func decodeOne(body []byte) (map[string]any, error) {
	var rec map[string]any
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("decoding exercise: %w", err)
	}
	if inner, ok := rec["data"].(map[string]any); ok {
		return inner, nil
	}
	return rec, nil
}

func normalizeAll(records []map[string]any, fetchedAt time.Time) []models.Exercise {
	out := make([]models.Exercise, 0, len(records))
	for _, r := range records {
		if ex, ok := Normalize(r, fetchedAt); ok {
			out = append(out, ex)
		}
	}
	return out
}
