package session

import (
	"context"
	"errors"
	"testing"

	"rocketlearn/internal/models"
)

// fakeDirectory serves a fixed set of users, optionally failing.
type fakeDirectory struct {
	users    []models.User
	fetchErr error
}

func (d *fakeDirectory) UserByEmail(_ context.Context, email string) (*models.User, error) {
	if d.fetchErr != nil {
		return nil, d.fetchErr
	}
	if email == "" {
		return nil, nil
	}
	for i := range d.users {
		if d.users[i].Email == email {
			return d.users[i].Clone(), nil
		}
	}
	return nil, nil
}

func (d *fakeDirectory) UserByID(_ context.Context, id string) (*models.User, error) {
	if d.fetchErr != nil {
		return nil, d.fetchErr
	}
	for i := range d.users {
		if d.users[i].ID == id {
			return d.users[i].Clone(), nil
		}
	}
	return nil, nil
}

// fakeRepo records every persisted state.
type fakeRepo struct {
	state  *models.SessionState
	saves  int
	clears int
}

func (r *fakeRepo) Save(state models.SessionState) error {
	s := state
	r.state = &s
	r.saves++
	return nil
}

func (r *fakeRepo) Load() (*models.SessionState, error) {
	return r.state, nil
}

func (r *fakeRepo) Clear() error {
	r.state = nil
	r.clears++
	return nil
}

func testDirectory() *fakeDirectory {
	progress := models.UserProgress{
		TotalXP: 1200, Level: 2, GamesCompleted: 5, StoriesRead: 3,
		StreakDays: 2, Achievements: []string{"first_game"},
	}
	return &fakeDirectory{users: []models.User{
		{ID: "user_1", Email: "parent@example.com", Name: "Pat", Role: models.RoleParent,
			Subscription: models.TierStandard, Children: []string{"user_2"}},
		{ID: "user_2", Name: "Casey", Role: models.RoleChild, ParentID: "user_1",
			Age: 7, Progress: &progress},
	}}
}

func newTestStore(t *testing.T) (*Store, *fakeRepo) {
	t.Helper()
	repo := &fakeRepo{}
	store, err := NewStore(testDirectory(), repo)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return store, repo
}

func TestLoginSuccess(t *testing.T) {
	store, repo := newTestStore(t)

	user, err := store.Login(context.Background(), "parent@example.com", "anything")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if user == nil || user.ID != "user_1" {
		t.Fatalf("Login() = %+v, want user_1", user)
	}
	if !store.Authenticated() {
		t.Error("store should be authenticated after login")
	}
	if repo.state == nil || !repo.state.Authenticated || repo.state.User.ID != "user_1" {
		t.Errorf("persisted state = %+v, want authenticated user_1", repo.state)
	}
}

func TestLoginNotFoundLeavesSessionUnchanged(t *testing.T) {
	store, repo := newTestStore(t)

	if _, err := store.Login(context.Background(), "parent@example.com", "pw"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	savesBefore := repo.saves

	user, err := store.Login(context.Background(), "unknown@x.com", "pw")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if user != nil {
		t.Errorf("Login() = %+v, want nil for unknown identifier", user)
	}
	if current := store.CurrentUser(); current == nil || current.ID != "user_1" {
		t.Errorf("current user = %+v, want prior session user_1", current)
	}
	if !store.Authenticated() {
		t.Error("prior session must stay authenticated")
	}
	if repo.saves != savesBefore {
		t.Error("not-found login must not persist anything")
	}
}

func TestLoginEmptySecretRejected(t *testing.T) {
	store, _ := newTestStore(t)

	user, err := store.Login(context.Background(), "parent@example.com", "")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if user != nil || store.Authenticated() {
		t.Error("empty secret must not authenticate")
	}
}

func TestLoginIdempotent(t *testing.T) {
	store, _ := newTestStore(t)

	first, err := store.Login(context.Background(), "parent@example.com", "pw")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	second, err := store.Login(context.Background(), "parent@example.com", "pw")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if first.ID != second.ID || first.Name != second.Name || first.Subscription != second.Subscription {
		t.Errorf("repeated login diverged: %+v vs %+v", first, second)
	}
	if len(first.Children) != len(second.Children) {
		t.Error("repeated login accumulated side effects")
	}
}

func TestLoginFetchFailureLeavesSessionUnchanged(t *testing.T) {
	directory := testDirectory()
	repo := &fakeRepo{}
	store, err := NewStore(directory, repo)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if _, err := store.Login(context.Background(), "parent@example.com", "pw"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	directory.fetchErr = errors.New("connection refused")
	if _, err := store.Login(context.Background(), "parent@example.com", "pw"); err == nil {
		t.Fatal("expected error when directory fetch fails")
	}

	if current := store.CurrentUser(); current == nil || current.ID != "user_1" {
		t.Errorf("session changed after fetch failure: %+v", current)
	}
	if store.Pending() {
		t.Error("pending must be reset after a failed operation")
	}
}

func TestRegisterParent(t *testing.T) {
	store, repo := newTestStore(t)

	user, err := store.Register(RegisterInput{
		Email:    "new@example.com",
		Password: "rocket123",
		Name:     "Nova",
		Role:     models.RoleParent,
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if user.ID == "" {
		t.Error("registered user must get a generated id")
	}
	if user.Subscription != models.TierFree {
		t.Errorf("subscription = %s, want free", user.Subscription)
	}
	if user.Progress != nil || user.Preferences != nil {
		t.Error("parent accounts carry no progress or preferences")
	}
	if user.PasswordHash == "" {
		t.Error("registration should keep a password hash")
	}
	if !store.Authenticated() {
		t.Error("registration becomes the active session")
	}
	if repo.state == nil || repo.state.User == nil || repo.state.User.ID != user.ID {
		t.Error("registration must persist the new session")
	}
}

func TestRegisterChildInitializesProgress(t *testing.T) {
	store, _ := newTestStore(t)

	user, err := store.Register(RegisterInput{
		Password: "1234abc",
		Name:     "Cosmo",
		Role:     models.RoleChild,
		ParentID: "user_1",
		Age:      6,
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if user.ParentID != "user_1" || user.Age != 6 {
		t.Errorf("child attributes not carried: %+v", user)
	}
	p := user.Progress
	if p == nil {
		t.Fatal("child registration must zero-initialize progress")
	}
	if p.TotalXP != 0 || p.Level != 1 || p.GamesCompleted != 0 || p.StoriesRead != 0 || len(p.Achievements) != 0 {
		t.Errorf("progress not zero-initialized: %+v", p)
	}
	prefs := user.Preferences
	if prefs == nil || prefs.Language != "english" || prefs.Difficulty != "beginner" || len(prefs.FavoriteSubjects) != 0 {
		t.Errorf("preferences not defaulted: %+v", prefs)
	}
}

func TestSwitchUser(t *testing.T) {
	store, _ := newTestStore(t)
	if _, err := store.Login(context.Background(), "parent@example.com", "pw"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if err := store.SwitchUser(context.Background(), "user_2"); err != nil {
		t.Fatalf("SwitchUser() error = %v", err)
	}
	if current := store.CurrentUser(); current == nil || current.ID != "user_2" {
		t.Errorf("current user = %+v, want user_2", current)
	}

	// Unknown id is a no-op
	if err := store.SwitchUser(context.Background(), "user_404"); err != nil {
		t.Fatalf("SwitchUser() error = %v", err)
	}
	if current := store.CurrentUser(); current == nil || current.ID != "user_2" {
		t.Errorf("session changed on unknown switch target: %+v", current)
	}
	if store.Pending() {
		t.Error("pending must be reset after a no-op switch")
	}
}

func TestLogout(t *testing.T) {
	store, repo := newTestStore(t)
	if _, err := store.Login(context.Background(), "parent@example.com", "pw"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	store.Logout()

	if store.CurrentUser() != nil || store.Authenticated() {
		t.Error("logout must clear the session unconditionally")
	}
	if repo.clears != 1 {
		t.Errorf("clears = %d, want 1", repo.clears)
	}
	if repo.state != nil {
		t.Errorf("persisted state after logout = %+v, want none", repo.state)
	}

	// Logout with no session is still fine
	store.Logout()
	if repo.clears != 2 {
		t.Errorf("clears = %d, want 2", repo.clears)
	}
}

func TestUpdateShallowMerge(t *testing.T) {
	store, _ := newTestStore(t)
	if err := store.SwitchUser(context.Background(), "user_2"); err != nil {
		t.Fatalf("SwitchUser() error = %v", err)
	}

	name := "Casey Comet"
	store.Update(UserUpdate{Name: &name})

	current := store.CurrentUser()
	if current.Name != "Casey Comet" {
		t.Errorf("name = %s, want Casey Comet", current.Name)
	}
	// Untouched top-level fields are preserved
	if current.Age != 7 || current.ParentID != "user_1" {
		t.Errorf("unrelated fields changed: %+v", current)
	}
	if current.Progress == nil || current.Progress.TotalXP != 1200 {
		t.Errorf("progress changed by unrelated update: %+v", current.Progress)
	}
}

func TestUpdateProgressReplacesWholeObject(t *testing.T) {
	store, _ := newTestStore(t)
	if err := store.SwitchUser(context.Background(), "user_2"); err != nil {
		t.Fatalf("SwitchUser() error = %v", err)
	}

	// A partial progress object replaces the whole thing: the merge is
	// shallow, so fields the caller leaves zero are lost.
	store.Update(UserUpdate{Progress: &models.UserProgress{TotalXP: 5}})

	p := store.CurrentUser().Progress
	if p.TotalXP != 5 {
		t.Errorf("totalXP = %d, want 5", p.TotalXP)
	}
	if p.GamesCompleted != 0 || p.StoriesRead != 0 || p.Level != 0 {
		t.Errorf("nested merge must replace, not deep-merge: %+v", p)
	}
}

func TestUpdateWithoutSessionIsNoop(t *testing.T) {
	store, repo := newTestStore(t)

	name := "Nobody"
	store.Update(UserUpdate{Name: &name})

	if store.CurrentUser() != nil {
		t.Error("update without a session must not create one")
	}
	if repo.saves != 0 {
		t.Error("update without a session must not persist")
	}
}

func TestApplyProgress(t *testing.T) {
	store, repo := newTestStore(t)
	if err := store.SwitchUser(context.Background(), "user_2"); err != nil {
		t.Fatalf("SwitchUser() error = %v", err)
	}

	next := models.UserProgress{
		TotalXP: 1300, Level: 2, GamesCompleted: 6, StoriesRead: 3,
		StreakDays: 3, Achievements: []string{"first_game"},
	}
	store.ApplyProgress(next)

	p := store.CurrentUser().Progress
	if p.TotalXP != 1300 || p.GamesCompleted != 6 {
		t.Errorf("progress = %+v, want applied ledger", p)
	}
	if repo.state.User.Progress.TotalXP != 1300 {
		t.Error("applied progress must be persisted")
	}
}

func TestSessionRestoredAcrossRestart(t *testing.T) {
	repo := &fakeRepo{}
	first, err := NewStore(testDirectory(), repo)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if _, err := first.Login(context.Background(), "parent@example.com", "pw"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	// Same repo, new store: the session survives the restart.
	second, err := NewStore(testDirectory(), repo)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if !second.Authenticated() {
		t.Error("restored store must start authenticated")
	}
	if current := second.CurrentUser(); current == nil || current.ID != "user_1" {
		t.Errorf("restored user = %+v, want user_1", current)
	}
}
