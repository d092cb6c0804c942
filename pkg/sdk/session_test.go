package sdk

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapBackend is an in-memory SessionBackend for tests.
type mapBackend struct {
	mu         sync.Mutex
	entries    map[string]string
	failGet    error
	failSet    map[string]error
	failDelete map[string]error
}

func newMapBackend(seed map[string]string) *mapBackend {
	entries := make(map[string]string, len(seed))
	for k, v := range seed {
		entries[k] = v
	}
	return &mapBackend{entries: entries}
}

func (b *mapBackend) Get(_ context.Context, key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failGet != nil {
		return "", false, b.failGet
	}
	v, ok := b.entries[key]
	return v, ok, nil
}

func (b *mapBackend) Set(_ context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.failSet[key]; err != nil {
		return err
	}
	b.entries[key] = value
	return nil
}

func (b *mapBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.failDelete[key]; err != nil {
		return err
	}
	delete(b.entries, key)
	return nil
}

func (b *mapBackend) has(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.entries[key]
	return ok
}

func (b *mapBackend) value(key string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.entries[key]
}

func assertCoupled(t *testing.T, s *SessionStore) {
	t.Helper()
	assert.Equal(t, s.Token() != "", s.CurrentUser() != nil, "token and user must be set together")
	snap := s.Snapshot()
	assert.Equal(t, snap.Token != "", snap.User != nil, "snapshot token and user must be set together")
}

func TestSessionStoreLoginLogout(t *testing.T) {
	ctx := context.Background()
	backend := newMapBackend(nil)
	store := NewSessionStore(backend)
	store.Initialize(ctx)

	assert.False(t, store.IsAuthenticated())
	assertCoupled(t, store)

	store.Login(ctx, User{ID: "1", Name: "A", Email: "a@x.com", Role: "Student"}, "abc")
	assertCoupled(t, store)
	require.True(t, store.IsAuthenticated())
	assert.Equal(t, "abc", store.Token())
	assert.Equal(t, RoleStudent, store.CurrentUser().Role)

	assert.Equal(t, "abc", backend.value(TokenKey))
	var persisted User
	require.NoError(t, json.Unmarshal([]byte(backend.value(UserKey)), &persisted))
	assert.Equal(t, "1", persisted.ID)
	assert.Equal(t, RoleStudent, persisted.Role)

	store.Logout(ctx)
	assertCoupled(t, store)
	assert.False(t, store.IsAuthenticated())
	assert.Nil(t, store.CurrentUser())
	assert.False(t, backend.has(TokenKey))
	assert.False(t, backend.has(UserKey))
}

func TestSessionStoreLogoutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(newMapBackend(nil))

	var changes int
	unsubscribe := store.OnChange(func(Session) { changes++ })
	defer unsubscribe()

	store.Logout(ctx)
	store.Logout(ctx)
	assert.Equal(t, 0, changes)
	assert.False(t, store.IsAuthenticated())

	store.Login(ctx, User{ID: "1", Role: RoleTeacher}, "tok")
	store.Logout(ctx)
	store.Logout(ctx)
	assert.Equal(t, 2, changes, "one login and one logout transition")
	assertCoupled(t, store)
}

func TestSessionStoreLoginNormalizesToken(t *testing.T) {
	ctx := context.Background()
	backend := newMapBackend(nil)
	store := NewSessionStore(backend)

	store.Login(ctx, User{ID: "1", Role: RoleStudent}, "")
	assert.False(t, store.IsAuthenticated(), "empty token must not authenticate")
	assert.False(t, backend.has(UserKey))

	store.Login(ctx, User{ID: "1", Role: RoleStudent}, "Bearer xyz")
	assert.Equal(t, "xyz", store.Token())
	assert.Equal(t, "xyz", backend.value(TokenKey))
}

func TestSessionStoreInitialize(t *testing.T) {
	validUser := `{"id":"7","name":"Dee","email":"d@x.com","role":"DIRECTOR"}`

	tests := []struct {
		name       string
		seed       map[string]string
		wantAuth   bool
		wantToken  string
		wantPurged bool
	}{
		{name: "empty", seed: nil},
		{name: "valid pair", seed: map[string]string{TokenKey: "t1", UserKey: validUser}, wantAuth: true, wantToken: "t1"},
		{name: "prefixed token", seed: map[string]string{TokenKey: "Bearer t2", UserKey: validUser}, wantAuth: true, wantToken: "t2"},
		{name: "token without user", seed: map[string]string{TokenKey: "t1"}, wantPurged: true},
		{name: "user without token", seed: map[string]string{UserKey: validUser}, wantPurged: true},
		{name: "corrupt user", seed: map[string]string{TokenKey: "t1", UserKey: "{not json"}, wantPurged: true},
		{name: "blank token", seed: map[string]string{TokenKey: "  ", UserKey: validUser}, wantPurged: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newMapBackend(tt.seed)
			store := NewSessionStore(backend)
			store.Initialize(context.Background())

			assertCoupled(t, store)
			assert.Equal(t, tt.wantAuth, store.IsAuthenticated())
			assert.Equal(t, tt.wantToken, store.Token())
			if tt.wantAuth {
				assert.Equal(t, RoleDirector, store.CurrentUser().Role)
			}
			if tt.wantPurged {
				assert.False(t, backend.has(TokenKey))
				assert.False(t, backend.has(UserKey))
			}
		})
	}
}

func TestSessionStoreInitializeBackendFailure(t *testing.T) {
	backend := newMapBackend(map[string]string{TokenKey: "t1", UserKey: `{"id":"1","role":"student"}`})
	backend.failGet = errors.New("disk on fire")

	store := NewSessionStore(backend)
	store.Initialize(context.Background())

	assert.False(t, store.IsAuthenticated())
	assertCoupled(t, store)
}

func TestSessionStoreReloginInterruptedBeforeToken(t *testing.T) {
	ctx := context.Background()
	backend := newMapBackend(nil)
	store := NewSessionStore(backend)
	store.Login(ctx, User{ID: "d1", Role: RoleDirector}, "director-token")

	backend.failSet = map[string]error{TokenKey: errors.New("disk full")}
	store.Login(ctx, User{ID: "s1", Role: RoleStudent}, "student-token")
	assert.Equal(t, "student-token", store.Token(), "memory holds the new session")

	restarted := NewSessionStore(backend)
	restarted.Initialize(ctx)
	assert.False(t, restarted.IsAuthenticated(), "a new user must never pair with the previous token")
	assertCoupled(t, restarted)
	assert.False(t, backend.has(TokenKey))
	assert.False(t, backend.has(UserKey))
}

func TestSessionStoreReloginKeepsPreviousPairWhenTokenCannotBeCleared(t *testing.T) {
	ctx := context.Background()
	backend := newMapBackend(nil)
	NewSessionStore(backend).Login(ctx, User{ID: "d1", Role: RoleDirector}, "director-token")

	backend.failDelete = map[string]error{TokenKey: errors.New("read-only")}
	NewSessionStore(backend).Login(ctx, User{ID: "s1", Role: RoleStudent}, "student-token")

	restarted := NewSessionStore(backend)
	restarted.Initialize(ctx)
	require.True(t, restarted.IsAuthenticated())
	assert.Equal(t, "director-token", restarted.Token())
	assert.Equal(t, "d1", restarted.CurrentUser().ID)
}

func TestSessionStoreConcurrentLoginsStayCoupled(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(newMapBackend(nil))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			store.Login(ctx, User{ID: "u", Role: Roles[i%len(Roles)]}, "tok")
		}(i)
		go func() {
			defer wg.Done()
			store.Logout(ctx)
			snap := store.Snapshot()
			if (snap.Token != "") != (snap.User != nil) {
				t.Errorf("decoupled snapshot: %+v", snap)
			}
		}()
	}
	wg.Wait()
	assertCoupled(t, store)
}

func TestUserUnmarshalAcceptsBackendShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want User
	}{
		{"numeric id", `{"id":1,"role":"student","name":"A"}`, User{ID: "1", Name: "A", Role: RoleStudent}},
		{"mongo id", `{"_id":"65ab","role":"Teacher","email":"t@x.com"}`, User{ID: "65ab", Email: "t@x.com", Role: RoleTeacher}},
		{"username fallback", `{"id":"3","username":"dept","role":"department"}`, User{ID: "3", Name: "dept", Role: RoleDepartment}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var u User
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &u))
			assert.Equal(t, tt.want, u)
		})
	}
}

func TestStripBearer(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abc", "abc"},
		{"  abc  ", "abc"},
		{"Bearer abc", "abc"},
		{"bearer   abc", "abc"},
		{"BEARER\tabc", "abc"},
		{"Bearer", ""},
		{"  Bearer  ", ""},
		{"", ""},
		{"Bearerabc", "Bearerabc"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripBearer(tt.in), "%q", tt.in)
	}
}
