package auth

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/keyxmakerx/postgate/internal/apperror"
)

// --- Fake Repository ---

// fakeUserRepo is a map-backed UserRepository. The optional fn fields
// override a method to inject failures.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*User

	createFn      func(ctx context.Context, user *User) error
	emailExistsFn func(ctx context.Context, email string) (bool, error)
	findByIDFn    func(ctx context.Context, id string) (*User, error)

	deleted []string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *User) error {
	if r.createFn != nil {
		return r.createFn(ctx, user)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return apperror.NewConflict("user with this email already exists")
		}
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*User, error) {
	if r.findByIDFn != nil {
		return r.findByIDFn(ctx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, apperror.NewNotFound("user not found")
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("user not found")
}

func (r *fakeUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	if r.emailExistsFn != nil {
		return r.emailExistsFn(ctx, email)
	}
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, id)
	if _, ok := r.users[id]; !ok {
		return apperror.NewNotFound("user not found")
	}
	delete(r.users, id)
	return nil
}

// seed stores a user with a bcrypt hash of password.
func (r *fakeUserRepo) seed(t *testing.T, id, email, password string) *User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing seed password: %v", err)
	}
	u := &User{ID: id, Email: email, PasswordHash: string(hash), CreatedAt: time.Now().UTC()}
	r.mu.Lock()
	r.users[id] = u
	r.mu.Unlock()
	return u
}

// --- Test Helpers ---

type testEnv struct {
	svc   *authService
	repo  *fakeUserRepo
	store *MemoryCredentialStore
	clock *fixedClock
}

// newTestEnv wires a real authService to a fake repo, an in-memory store,
// and a codec on a controllable clock.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	clock := &fixedClock{t: time.Now()}
	store := NewMemoryCredentialStore()
	store.now = clock.Now
	repo := newFakeUserRepo()

	svc, err := NewAuthService(repo, NewSessionManager(newTestCodec(clock), store, "", time.Hour), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("creating auth service: %v", err)
	}
	return &testEnv{svc: svc.(*authService), repo: repo, store: store, clock: clock}
}

// assertAppError checks that err is an *apperror.AppError with the expected code.
func assertAppError(t *testing.T, err error, expectedCode int) *apperror.AppError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %d, got nil", expectedCode)
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperror.AppError, got %T: %v", err, err)
	}
	if appErr.Code != expectedCode {
		t.Errorf("expected status %d, got %d (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
	return appErr
}

// assertUnauthenticated checks for the uniform 401 and its hidden cause.
func assertUnauthenticated(t *testing.T, err error, cause error) {
	t.Helper()
	appErr := assertAppError(t, err, http.StatusUnauthorized)
	if appErr.Message != msgUnauthenticated {
		t.Errorf("expected message %q, got %q", msgUnauthenticated, appErr.Message)
	}
	if cause != nil && !errors.Is(err, cause) {
		t.Errorf("expected cause %v, got %v", cause, appErr.Internal)
	}
}

// --- Register Tests ---

func TestRegister_ThenAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	age := 30
	token, user, err := env.svc.Register(ctx, RegisterInput{
		Email:    "  Alice@Example.com ",
		Password: "Secret123",
		Age:      &age,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" || user == nil || user.ID == "" {
		t.Fatal("expected token and user with generated ID")
	}
	if user.Email != "alice@example.com" {
		t.Errorf("expected normalized email, got %s", user.Email)
	}
	if user.PasswordHash == "Secret123" || user.PasswordHash == "" {
		t.Error("expected password to be stored hashed")
	}

	got, err := env.svc.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("authenticate after register: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("expected user %s, got %s", user.ID, got.ID)
	}
}

func TestRegister_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.svc.Register(context.Background(), RegisterInput{Email: "a@x.com"})
	assertAppError(t, err, http.StatusBadRequest)

	_, _, err = env.svc.Register(context.Background(), RegisterInput{Password: "Secret123"})
	assertAppError(t, err, http.StatusBadRequest)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.repo.seed(t, "u1", "a@x.com", "Secret123")

	_, _, err := env.svc.Register(context.Background(), RegisterInput{Email: "A@x.com", Password: "Secret123"})
	assertAppError(t, err, http.StatusConflict)
}

func TestRegister_RaceLosesOnUniqueKey(t *testing.T) {
	env := newTestEnv(t)
	env.repo.createFn = func(ctx context.Context, user *User) error {
		return apperror.NewConflict("user with this email already exists")
	}

	_, _, err := env.svc.Register(context.Background(), RegisterInput{Email: "a@x.com", Password: "Secret123"})
	assertAppError(t, err, http.StatusConflict)
}

func TestRegister_StoreDownRollsBack(t *testing.T) {
	repo := newFakeUserRepo()
	svc, err := NewAuthService(repo, NewSessionManager(NewTokenCodec(testSecret, time.Hour), failingStore{}, "", time.Hour), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	token, _, err := svc.Register(context.Background(), RegisterInput{Email: "a@x.com", Password: "Secret123"})
	assertAppError(t, err, http.StatusServiceUnavailable)
	if token != "" {
		t.Error("expected no token when the session was not recorded")
	}
	if len(repo.users) != 0 {
		t.Errorf("expected user to be rolled back, found %d", len(repo.users))
	}
	if len(repo.deleted) != 1 {
		t.Errorf("expected one rollback delete, got %d", len(repo.deleted))
	}
}

// --- Login Tests ---

func TestLogin_Success(t *testing.T) {
	env := newTestEnv(t)
	env.repo.seed(t, "u1", "a@x.com", "Aa1!aaaa")

	token, user, err := env.svc.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "Aa1!aaaa"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != "u1" {
		t.Errorf("expected u1, got %s", user.ID)
	}

	claims, err := env.svc.sessions.Codec().Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "u1" || claims.Email != "a@x.com" {
		t.Errorf("unexpected claims %+v", claims)
	}

	stored, found, _ := env.store.Lookup(context.Background(), "user-token-u1")
	if !found || stored != token {
		t.Error("expected liveness record user-token-u1 to hold the issued token")
	}
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	env.repo.seed(t, "u1", "a@x.com", "Aa1!aaaa")
	ctx := context.Background()

	_, _, errUnknown := env.svc.Login(ctx, LoginInput{Email: "nobody@x.com", Password: "Aa1!aaaa"})
	_, _, errWrong := env.svc.Login(ctx, LoginInput{Email: "a@x.com", Password: "wrong-password"})

	unknown := assertAppError(t, errUnknown, http.StatusUnauthorized)
	wrong := assertAppError(t, errWrong, http.StatusUnauthorized)
	if unknown.Message != wrong.Message || unknown.Type != wrong.Type {
		t.Errorf("login failures differ: %q vs %q", unknown.Message, wrong.Message)
	}
	if _, found, _ := env.store.Lookup(ctx, "user-token-u1"); found {
		t.Error("failed login must not create a session")
	}
}

func TestLogin_SecondLoginInvalidatesFirst(t *testing.T) {
	env := newTestEnv(t)
	env.repo.seed(t, "u1", "a@x.com", "Aa1!aaaa")
	ctx := context.Background()
	creds := LoginInput{Email: "a@x.com", Password: "Aa1!aaaa"}

	first, _, err := env.svc.Login(ctx, creds)
	if err != nil {
		t.Fatal(err)
	}
	// Same clock second as the first login.
	second, _, err := env.svc.Login(ctx, creds)
	if err != nil {
		t.Fatal(err)
	}

	if first == second {
		t.Fatal("logins in the same second must mint distinct tokens")
	}

	_, err = env.svc.Authenticate(ctx, first)
	assertUnauthenticated(t, err, ErrNoActiveSession)

	if _, err := env.svc.Authenticate(ctx, second); err != nil {
		t.Errorf("latest token must authenticate: %v", err)
	}
}

// --- Logout Tests ---

func TestLogout_RevokesButTokenStillVerifies(t *testing.T) {
	env := newTestEnv(t)
	env.repo.seed(t, "u1", "a@x.com", "Aa1!aaaa")
	ctx := context.Background()

	token, _, err := env.svc.Login(ctx, LoginInput{Email: "a@x.com", Password: "Aa1!aaaa"})
	if err != nil {
		t.Fatal(err)
	}

	if err := env.svc.Logout(ctx, token); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if _, err := env.svc.sessions.Codec().Verify(token); err != nil {
		t.Errorf("signature and expiry should still verify after logout: %v", err)
	}
	_, err = env.svc.Authenticate(ctx, token)
	assertUnauthenticated(t, err, ErrNoActiveSession)
}

func TestLogout_Malformed(t *testing.T) {
	env := newTestEnv(t)
	assertUnauthenticated(t, env.svc.Logout(context.Background(), ""), ErrMissingCredential)
	assertUnauthenticated(t, env.svc.Logout(context.Background(), "not-a-token"), ErrMalformedToken)
}

// --- Authenticate Tests ---

func TestAuthenticate_MissingAndMalformed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Authenticate(ctx, "")
	assertUnauthenticated(t, err, ErrMissingCredential)

	_, err = env.svc.Authenticate(ctx, "garbage")
	assertUnauthenticated(t, err, ErrMalformedToken)
}

func TestAuthenticate_ForgedTokenWithLiveRecord(t *testing.T) {
	env := newTestEnv(t)
	env.repo.seed(t, "u1", "a@x.com", "Aa1!aaaa")
	ctx := context.Background()

	forged, err := NewTokenCodec("attacker-secret-attacker-secret-000", time.Hour).Sign("u1", "a@x.com")
	if err != nil {
		t.Fatal(err)
	}
	// Even if the forged token somehow sits in the store, Verify aborts.
	if err := env.store.Put(ctx, "user-token-u1", forged, time.Hour); err != nil {
		t.Fatal(err)
	}

	_, err = env.svc.Authenticate(ctx, forged)
	assertUnauthenticated(t, err, ErrInvalidToken)
}

func TestAuthenticate_ExpiredTokenWithLiveRecord(t *testing.T) {
	env := newTestEnv(t)
	env.repo.seed(t, "u1", "a@x.com", "Aa1!aaaa")
	ctx := context.Background()

	token, _, err := env.svc.Login(ctx, LoginInput{Email: "a@x.com", Password: "Aa1!aaaa"})
	if err != nil {
		t.Fatal(err)
	}
	// Keep the record alive past the token's own expiry.
	if err := env.store.Put(ctx, "user-token-u1", token, 3*time.Hour); err != nil {
		t.Fatal(err)
	}
	env.clock.Advance(2 * time.Hour)

	_, err = env.svc.Authenticate(ctx, token)
	assertUnauthenticated(t, err, ErrInvalidToken)
}

func TestAuthenticate_DeletedIdentity(t *testing.T) {
	env := newTestEnv(t)
	env.repo.seed(t, "u1", "a@x.com", "Aa1!aaaa")
	ctx := context.Background()

	token, _, err := env.svc.Login(ctx, LoginInput{Email: "a@x.com", Password: "Aa1!aaaa"})
	if err != nil {
		t.Fatal(err)
	}
	if err := env.repo.Delete(ctx, "u1"); err != nil {
		t.Fatal(err)
	}

	_, err = env.svc.Authenticate(ctx, token)
	assertUnauthenticated(t, err, ErrIdentityMismatch)
}

func TestAuthenticate_StoreDownIsUnavailable(t *testing.T) {
	repo := newFakeUserRepo()
	repo.seed(t, "u1", "a@x.com", "Aa1!aaaa")
	codec := NewTokenCodec(testSecret, time.Hour)
	svc, err := NewAuthService(repo, NewSessionManager(codec, failingStore{}, "", time.Hour), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	token, err := codec.Sign("u1", "a@x.com")
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.Authenticate(context.Background(), token)
	appErr := assertAppError(t, err, http.StatusServiceUnavailable)
	if !errors.Is(appErr, ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable cause, got %v", appErr.Internal)
	}
}

// --- ValidateIdentity Tests ---

func TestValidateIdentity(t *testing.T) {
	env := newTestEnv(t)
	env.repo.seed(t, "u1", "a@x.com", "Aa1!aaaa")
	ctx := context.Background()

	user, err := env.svc.ValidateIdentity(ctx, "u1", "A@X.com")
	if err != nil {
		t.Fatalf("expected match: %v", err)
	}
	if user.ID != "u1" {
		t.Errorf("expected u1, got %s", user.ID)
	}

	_, err = env.svc.ValidateIdentity(ctx, "u1", "b@x.com")
	assertUnauthenticated(t, err, ErrIdentityMismatch)

	_, err = env.svc.ValidateIdentity(ctx, "u2", "a@x.com")
	assertUnauthenticated(t, err, ErrIdentityMismatch)

	_, err = env.svc.ValidateIdentity(ctx, "", "")
	assertUnauthenticated(t, err, ErrIdentityMismatch)
}

func TestValidateIdentity_RepoFailureIsInternal(t *testing.T) {
	env := newTestEnv(t)
	env.repo.findByIDFn = func(ctx context.Context, id string) (*User, error) {
		return nil, errors.New("connection reset")
	}

	_, err := env.svc.ValidateIdentity(context.Background(), "u1", "a@x.com")
	assertAppError(t, err, http.StatusInternalServerError)
}
