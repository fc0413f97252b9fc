package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"testing"

	"github.com/claude/gymapp/internal/models"
)

type memStore struct {
	users   []models.User
	current string
}

func (m *memStore) ListUsers(context.Context) ([]models.User, error) {
	return append([]models.User(nil), m.users...), nil
}

func (m *memStore) GetUser(_ context.Context, id string) (*models.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindUserByName(_ context.Context, name string) (*models.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Name, name) {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *memStore) CreateUser(_ context.Context, u models.User) error {
	m.users = append(m.users, u)
	return nil
}

func (m *memStore) DeleteUser(_ context.Context, id string) (int64, error) {
	for i, u := range m.users {
		if u.ID == id {
			m.users = append(m.users[:i], m.users[i+1:]...)
			if m.current == id {
				m.current = ""
			}
			return 1, nil
		}
	}
	return 0, nil
}

func (m *memStore) CurrentSessionUser(context.Context) (string, error) { return m.current, nil }

func (m *memStore) SetSession(_ context.Context, id string) error {
	m.current = id
	return nil
}

func (m *memStore) ClearSession(context.Context) error {
	m.current = ""
	return nil
}

func newTestDirectory() (*Directory, *memStore) {
	store := &memStore{}
	d := NewDirectory(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	n := 0
	d.newID = func() string {
		n++
		return "user-" + strconv.Itoa(n)
	}
	return d, store
}

// TestCreateUserBecomesCurrent verifies a new profile is signed in and gets
// the default avatar.
func TestCreateUserBecomesCurrent(t *testing.T) {
	d, store := newTestDirectory()
	ctx := context.Background()

	u, err := d.CreateUser(ctx, "  Ana ", "", "")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.Name != "Ana" {
		t.Errorf("Name = %q, want trimmed", u.Name)
	}
	if u.Avatar != models.DefaultAvatar {
		t.Errorf("Avatar = %q, want default", u.Avatar)
	}
	if store.current != u.ID {
		t.Errorf("current = %q, want %q", store.current, u.ID)
	}
}

func TestCreateUserValidation(t *testing.T) {
	d, _ := newTestDirectory()
	ctx := context.Background()

	var ve *models.ValidationError
	if _, err := d.CreateUser(ctx, "   ", "", ""); !errors.As(err, &ve) {
		t.Errorf("blank name err = %v, want ValidationError", err)
	}
	for _, pin := range []string{"123", "12345", "12a4"} {
		if _, err := d.CreateUser(ctx, "Ana", "", pin); !errors.Is(err, ErrInvalidPIN) {
			t.Errorf("pin %q err = %v, want ErrInvalidPIN", pin, err)
		}
	}
	if _, err := d.CreateUser(ctx, "Ana", "", ""); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := d.CreateUser(ctx, "ANA", "", ""); !errors.Is(err, ErrNameTaken) {
		t.Errorf("duplicate err = %v, want ErrNameTaken", err)
	}
}

// TestLoginPIN covers the PIN check and the session switch on success.
func TestLoginPIN(t *testing.T) {
	d, store := newTestDirectory()
	ctx := context.Background()

	locked, err := d.CreateUser(ctx, "Ana", "", "1234")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	open, err := d.CreateUser(ctx, "Luis", "", "")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if _, err := d.Login(ctx, locked.ID, "0000"); !errors.Is(err, ErrWrongPIN) {
		t.Fatalf("wrong pin err = %v, want ErrWrongPIN", err)
	}
	if store.current != open.ID {
		t.Errorf("failed login changed session to %q", store.current)
	}
	if _, err := d.Login(ctx, locked.ID, "1234"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if store.current != locked.ID {
		t.Errorf("current = %q, want %q", store.current, locked.ID)
	}
	if _, err := d.Login(ctx, open.ID, "anything"); err != nil {
		t.Errorf("user without pin should always log in: %v", err)
	}
	if _, err := d.Login(ctx, "missing", ""); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("missing user err = %v, want ErrUserNotFound", err)
	}
}

func TestLogoutAndCurrent(t *testing.T) {
	d, _ := newTestDirectory()
	ctx := context.Background()

	u, err := d.CreateUser(ctx, "Ana", "", "")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	cur, err := d.Current(ctx)
	if err != nil || cur == nil || cur.ID != u.ID {
		t.Fatalf("Current = %v, %v; want %s", cur, err, u.ID)
	}
	if err := d.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	cur, err = d.Current(ctx)
	if err != nil || cur != nil {
		t.Errorf("Current after logout = %v, %v; want nil", cur, err)
	}
}

// TestContextUserWins verifies an explicitly pinned user overrides the
// stored session.
func TestContextUserWins(t *testing.T) {
	d, store := newTestDirectory()
	store.current = "stored"
	store.users = []models.User{{ID: "pinned", Name: "Pinned"}}

	id, err := d.CurrentUserID(WithUserID(context.Background(), "pinned"))
	if err != nil || id != "pinned" {
		t.Errorf("CurrentUserID = %q, %v; want pinned", id, err)
	}
	id, err = d.CurrentUserID(WithUserID(context.Background(), ""))
	if err != nil || id != "stored" {
		t.Errorf("empty pinned id = %q, %v; want stored", id, err)
	}
}

func TestDeleteUser(t *testing.T) {
	d, store := newTestDirectory()
	ctx := context.Background()

	u, err := d.CreateUser(ctx, "Ana", "", "")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := d.DeleteUser(ctx, u.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if store.current != "" {
		t.Errorf("session still points at deleted user")
	}
	if err := d.DeleteUser(ctx, u.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("second delete err = %v, want ErrUserNotFound", err)
	}
}

// TestRegisterKeepsSession verifies Register does not sign the new user in.
func TestRegisterKeepsSession(t *testing.T) {
	d, store := newTestDirectory()
	ctx := context.Background()
	first, err := d.CreateUser(ctx, "Ana", "", "")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := d.Register(ctx, "Luis", "", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if store.current != first.ID {
		t.Errorf("current = %q, want %q", store.current, first.ID)
	}
}

// TestPinnedUnknownUser verifies a pinned id without a profile is rejected
// instead of being treated as signed in.
func TestPinnedUnknownUser(t *testing.T) {
	d, store := newTestDirectory()
	store.current = "stored"

	id, err := d.CurrentUserID(WithUserID(context.Background(), "ghost"))
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("err = %v, want ErrUserNotFound", err)
	}
	if id != "" {
		t.Errorf("id = %q, want empty", id)
	}
}
