// Package session implements the identity and session store: the
// single authenticated user held for the lifetime of the application,
// persisted across restarts, and the only place that user is created,
// replaced or mutated.
package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"rocketlearn/internal/models"
	"rocketlearn/internal/security"
)

// Directory is the external user-directory collaborator consulted by
// login and switch. Absence is a nil value, not an error.
type Directory interface {
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id string) (*models.User, error)
}

// StateRepository persists the session namespace with replace-on-write
// semantics: the store computes the complete new state, then persists
// it in one call.
type StateRepository interface {
	Save(state models.SessionState) error
	Load() (*models.SessionState, error)
	Clear() error
}

// Store holds at most one authenticated user. It is constructed
// explicitly and passed to whatever needs it; there is no package
// singleton.
//
// The mutex protects the slot against concurrent handlers; ordering
// between overlapping login/switch calls is still last-write-wins with
// no detection of superseded requests. The driving UI issues session
// operations serially, so this is a documented limitation rather than
// something the store defends against.
type Store struct {
	directory Directory
	repo      StateRepository

	mu            sync.Mutex
	user          *models.User
	authenticated bool
	pending       bool
}

// RegisterInput is the profile a new account is created from. The
// secret is hashed and carried on the user document; it is not
// verified by the stubbed login path.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Role     models.Role
	ParentID string
	Age      int
}

// NewStore creates a session store, restoring any persisted session.
func NewStore(directory Directory, repo StateRepository) (*Store, error) {
	s := &Store{
		directory: directory,
		repo:      repo,
	}

	state, err := repo.Load()
	if err != nil {
		return nil, err
	}
	if state != nil {
		s.user = state.User
		s.authenticated = state.Authenticated && state.User != nil
	}
	return s, nil
}

// Login looks up a user by email against the directory. Credential
// verification is stubbed: any non-empty secret is accepted, only the
// identifier has to exist. Returns nil (not an error) when no record
// matches; the session is left unchanged in that case and on any
// directory failure.
func (s *Store) Login(ctx context.Context, email, secret string) (*models.User, error) {
	if secret == "" {
		return nil, nil
	}

	s.setPending(true)
	defer s.setPending(false)

	user, err := s.directory.UserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	s.replace(user)
	return user.Clone(), nil
}

// Register creates a new user from the profile and makes it the active
// session. Always succeeds: ids are freshly generated and no
// uniqueness check runs against the directory.
func (s *Store) Register(input RegisterInput) (*models.User, error) {
	user := &models.User{
		ID:           "user_" + uuid.NewString(),
		Email:        input.Email,
		Name:         input.Name,
		Role:         input.Role,
		Subscription: models.TierFree,
		CreatedAt:    time.Now(),
	}

	if input.Role == models.RoleChild {
		user.ParentID = input.ParentID
		user.Age = input.Age
		user.Preferences = models.DefaultPreferences()
		p := models.NewProgress()
		user.Progress = &p
	}

	if input.Password != "" {
		hash, err := security.HashPassword(input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	s.replace(user)
	return user.Clone(), nil
}

// SwitchUser replaces the active session with the directory user
// matching id. When the id is unknown nothing changes and the prior
// session stays in place. Used for a parent previewing or acting as a
// managed child.
func (s *Store) SwitchUser(ctx context.Context, id string) error {
	s.setPending(true)
	defer s.setPending(false)

	user, err := s.directory.UserByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	s.replace(user)
	return nil
}

// Logout clears the session unconditionally. Not reversible; the
// user's data is assumed to live on in the directory, only the
// store's copy is discarded.
func (s *Store) Logout() {
	s.mu.Lock()
	s.user = nil
	s.authenticated = false
	s.mu.Unlock()

	if err := s.repo.Clear(); err != nil {
		log.Printf("Warning: failed to clear session state: %v", err)
	}
}

// UserUpdate is a typed partial for Update. Nil fields are left
// untouched; non-nil fields replace the corresponding field in full.
// In particular a supplied Progress replaces the entire progress
// object; untouched progress fields are NOT preserved. Callers
// updating progress after a completion should prefer ApplyProgress.
type UserUpdate struct {
	Email        *string
	Name         *string
	Subscription *models.Tier
	Age          *int
	Children     *[]string
	Preferences  *models.Preferences
	Progress     *models.UserProgress
}

// Update shallow-merges the partial into the current user. No-op when
// there is no active session.
func (s *Store) Update(update UserUpdate) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return
	}

	if update.Email != nil {
		s.user.Email = *update.Email
	}
	if update.Name != nil {
		s.user.Name = *update.Name
	}
	if update.Subscription != nil {
		s.user.Subscription = *update.Subscription
	}
	if update.Age != nil {
		s.user.Age = *update.Age
	}
	if update.Children != nil {
		s.user.Children = *update.Children
	}
	if update.Preferences != nil {
		s.user.Preferences = update.Preferences
	}
	if update.Progress != nil {
		s.user.Progress = update.Progress
	}

	state := s.snapshot()
	s.mu.Unlock()

	s.persist(state)
}

// ApplyProgress replaces the current user's entire progress record.
// This is the path completion handlers use: the caller computes the
// full new ledger first, so nothing can be lost to a partial merge.
// No-op when there is no active session.
func (s *Store) ApplyProgress(p models.UserProgress) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return
	}
	cp := p.Clone()
	s.user.Progress = &cp

	state := s.snapshot()
	s.mu.Unlock()

	s.persist(state)
}

// CurrentUser returns a copy of the active user, or nil.
func (s *Store) CurrentUser() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user.Clone()
}

// Authenticated reports whether a session is active.
func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// Pending reports whether a session operation is in flight.
func (s *Store) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// replace installs a new active user and persists the session.
func (s *Store) replace(user *models.User) {
	s.mu.Lock()
	s.user = user
	s.authenticated = true
	state := s.snapshot()
	s.mu.Unlock()

	s.persist(state)
}

// snapshot builds the full state to persist. Callers hold the lock.
func (s *Store) snapshot() models.SessionState {
	return models.SessionState{
		User:          s.user.Clone(),
		Authenticated: s.authenticated,
	}
}

// persist writes the complete state in one call. Failures keep the
// in-memory session authoritative; the persisted copy catches up on
// the next mutation.
func (s *Store) persist(state models.SessionState) {
	if err := s.repo.Save(state); err != nil {
		log.Printf("Warning: failed to persist session state: %v", err)
	}
}

func (s *Store) setPending(v bool) {
	s.mu.Lock()
	s.pending = v
	s.mu.Unlock()
}
