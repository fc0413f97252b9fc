// Package session manages local user profiles and the installation's
// single current session.
package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/claude/gymapp/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrNameTaken    = errors.New("user name already taken")
	ErrInvalidPIN   = errors.New("pin must be exactly 4 digits")
	ErrWrongPIN     = errors.New("wrong pin")
)

const maxNameLength = 64

// Store persists users and the current session. FindUserByName matches
// case-insensitively. GetUser and FindUserByName return (nil, nil) when no
// user matches. DeleteUser removes everything owned by the user.
type Store interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	FindUserByName(ctx context.Context, name string) (*models.User, error)
	CreateUser(ctx context.Context, u models.User) error
	DeleteUser(ctx context.Context, id string) (int64, error)

	CurrentSessionUser(ctx context.Context) (string, error)
	SetSession(ctx context.Context, userID string) error
	ClearSession(ctx context.Context) error
}

// Directory is the user and session collaborator every per-user component
// resolves the current user through.
type Directory struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
	newID func() string
}

// NewDirectory creates a Directory backed by store.
func NewDirectory(store Store, log *slog.Logger) *Directory {
	return &Directory{
		store: store,
		log:   log,
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
}

// ListUsers returns every profile.
func (d *Directory) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := d.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// GetUser returns the profile with id, or nil.
func (d *Directory) GetUser(ctx context.Context, id string) (*models.User, error) {
	u, err := d.store.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading user %s: %w", id, err)
	}
	return u, nil
}

// FindUserByName returns the profile named name, ignoring case, or nil.
func (d *Directory) FindUserByName(ctx context.Context, name string) (*models.User, error) {
	u, err := d.store.FindUserByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("finding user %q: %w", name, err)
	}
	return u, nil
}

// CreateUser adds a profile and makes it the current user.
func (d *Directory) CreateUser(ctx context.Context, name, avatar, pin string) (*models.User, error) {
	u, err := d.Register(ctx, name, avatar, pin)
	if err != nil {
		return nil, err
	}
	if err := d.store.SetSession(ctx, u.ID); err != nil {
		return nil, fmt.Errorf("starting session: %w", err)
	}
	return u, nil
}

// Register adds a profile without touching the current session.
func (d *Directory) Register(ctx context.Context, name, avatar, pin string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.Invalid("name", "is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return nil, models.Invalid("name", "longer than %d characters", maxNameLength)
	}
	if pin != "" && !validPIN(pin) {
		return nil, ErrInvalidPIN
	}
	if avatar == "" {
		avatar = models.DefaultAvatar
	}

	existing, err := d.store.FindUserByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("checking user name: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrNameTaken, name)
	}

	u := models.User{
		ID:        d.newID(),
		Name:      name,
		Avatar:    avatar,
		PIN:       pin,
		HasPIN:    pin != "",
		CreatedAt: d.now().UTC(),
	}
	if err := d.store.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	d.log.Info("user created", "user", u.ID, "has_pin", u.HasPIN)
	return &u, nil
}

// DeleteUser removes a profile and all of its data. It returns
// ErrUserNotFound when nothing was removed.
func (d *Directory) DeleteUser(ctx context.Context, id string) error {
	n, err := d.store.DeleteUser(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting user %s: %w", id, err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	d.log.Info("user deleted", "user", id)
	return nil
}

// VerifyPIN checks pin against the user's PIN without changing the session.
// Users without a PIN accept any input.
func (d *Directory) VerifyPIN(ctx context.Context, id, pin string) (*models.User, error) {
	u, err := d.store.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading user %s: %w", id, err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	if u.PIN != "" && subtle.ConstantTimeCompare([]byte(u.PIN), []byte(pin)) != 1 {
		return nil, ErrWrongPIN
	}
	return u, nil
}

// Login verifies the PIN and makes the user current, replacing any
// previous session.
func (d *Directory) Login(ctx context.Context, id, pin string) (*models.User, error) {
	u, err := d.VerifyPIN(ctx, id, pin)
	if err != nil {
		return nil, err
	}
	if err := d.store.SetSession(ctx, u.ID); err != nil {
		return nil, fmt.Errorf("starting session: %w", err)
	}
	return u, nil
}

// Logout clears the current session.
func (d *Directory) Logout(ctx context.Context) error {
	if err := d.store.ClearSession(ctx); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// Current returns the signed-in user, or nil when nobody is.
func (d *Directory) Current(ctx context.Context) (*models.User, error) {
	id, err := d.CurrentUserID(ctx)
	if err != nil || id == "" {
		return nil, err
	}
	return d.GetUser(ctx, id)
}

// CurrentUserID resolves the current user. A user pinned on the context
// wins over the stored session and must name an existing profile, otherwise
// ErrUserNotFound is returned. An empty id means nobody is signed in.
func (d *Directory) CurrentUserID(ctx context.Context) (string, error) {
	if id, ok := UserIDFromContext(ctx); ok {
		u, err := d.store.GetUser(ctx, id)
		if err != nil {
			return "", fmt.Errorf("loading pinned user %s: %w", id, err)
		}
		if u == nil {
			return "", fmt.Errorf("%w: %s", ErrUserNotFound, id)
		}
		return id, nil
	}
	id, err := d.store.CurrentSessionUser(ctx)
	if err != nil {
		return "", fmt.Errorf("loading session: %w", err)
	}
	return id, nil
}

func validPIN(pin string) bool {
	if len(pin) != 4 {
		return false
	}
	for i := 0; i < len(pin); i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return false
		}
	}
	return true
}
