package legacy

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/claude/gymapp/internal/models"
	"github.com/claude/gymapp/internal/session"
)

const sampleExport = `{
  "usuarios": [
    {"nombre": "Ana", "avatar": "🏋", "pin": "1234"},
    {"nombre": "Luis", "avatar": "", "pin": "12"}
  ],
  "users": [{"nombre": "ana"}],
  "entrenamientos": {
    "Ana": [
      {"id": 1714550400000, "fecha": "2024-05-01T08:00:00.000Z",
       "ejercicios": [{"nombre": "Sentadilla", "series": [{"repeticiones": 5, "peso": 100}, {"repeticiones": "5", "peso": "102,5"}]}]},
      {"id": "b", "fecha": "2024-05-03", "ejercicios": []},
      {"id": "c", "fecha": "ayer", "ejercicios": []}
    ],
    "Nadie": [{"id": "x", "fecha": "2024-05-01", "ejercicios": []}]
  },
  "rutinas_activas": {
    "ana": {
      "nombre": "Fuerza 3 días", "objetivo": "fuerza", "nivel": "intermedio",
      "dias": [{"nombre": "Día A", "ejercicios": ["sentadilla", "press-banca"], "series": [5, 5], "reps": [5, 5]}],
      "progreso": [{"nombreDia": "Día A", "completado": true, "entrenamientos": [1714550400000], "ultimaFecha": "2024-05-01T09:00:00Z"}]
    }
  }
}`

type fakeUsers struct {
	users []models.User
}

func (f *fakeUsers) FindUserByName(_ context.Context, name string) (*models.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Name, strings.TrimSpace(name)) {
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) Register(_ context.Context, name, avatar, pin string) (*models.User, error) {
	if pin != "" && len(pin) != 4 {
		return nil, session.ErrInvalidPIN
	}
	u := models.User{ID: "id-" + strconv.Itoa(len(f.users)+1), Name: name, Avatar: avatar, PIN: pin}
	f.users = append(f.users, u)
	return &u, nil
}

type fakeWorkouts struct {
	saved map[string][]models.WorkoutRecord
}

func (f *fakeWorkouts) Save(ctx context.Context, rec models.WorkoutRecord) (*models.WorkoutRecord, error) {
	uid, ok := session.UserIDFromContext(ctx)
	if !ok {
		return nil, models.ErrNoCurrentUser
	}
	if f.saved == nil {
		f.saved = map[string][]models.WorkoutRecord{}
	}
	f.saved[uid] = append(f.saved[uid], rec)
	return &rec, nil
}

type fakeRoutines struct {
	started map[string]*models.Routine
}

func (f *fakeRoutines) Start(ctx context.Context, r *models.Routine) (*models.Routine, error) {
	uid, _ := session.UserIDFromContext(ctx)
	if f.started == nil {
		f.started = map[string]*models.Routine{}
	}
	f.started[uid] = r
	return r, nil
}

func newTestImporter() (*Importer, *fakeUsers, *fakeWorkouts, *fakeRoutines) {
	users, workouts, routines := &fakeUsers{}, &fakeWorkouts{}, &fakeRoutines{}
	im := NewImporter(users, workouts, routines, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return im, users, workouts, routines
}

// TestImport covers user creation and reuse, workouts with numeric ids and
// string weights, per-item failures and the active routine.
func TestImport(t *testing.T) {
	im, users, workouts, routines := newTestImporter()

	res, err := im.Import(context.Background(), strings.NewReader(sampleExport), false)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.UsersCreated != 1 {
		t.Errorf("UsersCreated = %d, want 1 (Luis has a bad pin, ana duplicates Ana)", res.UsersCreated)
	}
	if len(users.users) != 1 || users.users[0].Name != "Ana" {
		t.Fatalf("users = %+v", users.users)
	}
	ana := users.users[0].ID

	if res.WorkoutsSaved != 2 || res.SessionsReceived != 4 {
		t.Errorf("workouts saved=%d received=%d, want 2 and 4", res.WorkoutsSaved, res.SessionsReceived)
	}
	// Luis, the undated workout and Nadie's workout.
	if res.Skipped != 3 || len(res.Errors) != 3 {
		t.Errorf("skipped=%d errors=%v", res.Skipped, res.Errors)
	}

	saved := workouts.saved[ana]
	if len(saved) != 2 {
		t.Fatalf("saved for Ana = %d", len(saved))
	}
	first := saved[0]
	if first.ID != "1714550400000" {
		t.Errorf("ID = %q", first.ID)
	}
	if want := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC); !first.Date.Equal(want) {
		t.Errorf("Date = %v", first.Date)
	}
	if s := first.Exercises[0].Sets[1]; s.Reps != 5 || s.WeightKg != 102.5 {
		t.Errorf("string set = %+v", s)
	}

	r := routines.started[ana]
	if r == nil || res.RoutinesImported != 1 {
		t.Fatalf("routine not imported: %+v", res)
	}
	p := r.Progress[0]
	if !p.Completed || len(p.WorkoutIDs) != 1 || p.WorkoutIDs[0] != "1714550400000" || p.LastCompletedAt == nil {
		t.Errorf("progress = %+v", p)
	}
	if r.DaysPerWeek != 1 {
		t.Errorf("DaysPerWeek = %d, want derived 1", r.DaysPerWeek)
	}
}

// TestImportReusesExistingUser verifies a second import does not duplicate
// users.
func TestImportReusesExistingUser(t *testing.T) {
	im, users, _, _ := newTestImporter()
	users.users = []models.User{{ID: "existing", Name: "ANA"}}

	res, err := im.Import(context.Background(), strings.NewReader(sampleExport), false)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.UsersReused != 1 || res.UsersCreated != 0 {
		t.Errorf("reused=%d created=%d", res.UsersReused, res.UsersCreated)
	}
}

func TestImportDryRun(t *testing.T) {
	im, users, workouts, routines := newTestImporter()
	res, err := im.Import(context.Background(), strings.NewReader(sampleExport), true)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(users.users) != 0 || len(workouts.saved) != 0 || len(routines.started) != 0 {
		t.Error("dry run wrote data")
	}
	if res.UsersCreated != 2 || res.WorkoutsSaved != 0 || res.RoutinesImported != 1 {
		t.Errorf("result = %+v", res)
	}
}

func TestImportMalformed(t *testing.T) {
	im, _, _, _ := newTestImporter()
	if _, err := im.Import(context.Background(), strings.NewReader("{"), false); err == nil {
		t.Fatal("expected decode error")
	}
}

// TestRoutineValidation verifies a routine with misaligned day lists is
// rejected before storage.
func TestRoutineValidation(t *testing.T) {
	r := Routine{Name: "x", Days: []Day{{Name: "A", Exercises: []string{"a", "b"}, Sets: []int{3}, Reps: []int{8, 8}}}}
	_, err := r.ToRoutine()
	var ve *models.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}
