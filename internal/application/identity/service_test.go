package identity

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/ip-inspection/internal/domain/profile"
)

// memProfiles emulates a store with unique open_id and email columns.
type memProfiles struct {
	mu       sync.Mutex
	byID     map[profile.ID]*profile.Profile
	inserts  int
	findErr  error
	insertFn func(p *profile.Profile)
}

func newMemProfiles() *memProfiles {
	return &memProfiles{byID: map[profile.ID]*profile.Profile{}}
}

func (m *memProfiles) FindByOpenID(_ context.Context, openID string) (*profile.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, p := range m.byID {
		if p.OpenID != "" && p.OpenID == openID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memProfiles) FindByEmail(_ context.Context, email string) (*profile.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, p := range m.byID {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memProfiles) InsertIfAbsent(_ context.Context, p *profile.Profile) error {
	if m.insertFn != nil {
		m.insertFn(p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == p.Email {
			return nil
		}
	}
	cp := *p
	m.byID[p.ID] = &cp
	m.inserts++
	return nil
}

type fakeVerifier struct {
	subject string
	err     error
}

func (f fakeVerifier) Verify(context.Context, string) (string, error) { return f.subject, f.err }

type mapCache map[string]profile.ID

func (c mapCache) Get(_ context.Context, key string) (profile.ID, bool) {
	id, ok := c[key]
	return id, ok
}

func (c mapCache) Set(_ context.Context, key string, id profile.ID) { c[key] = id }

func TestResolve_VerifiedSubject(t *testing.T) {
	repo := newMemProfiles()
	repo.byID["p-1"] = &profile.Profile{ID: "p-1", OpenID: "ou_123", Email: "a@b.c"}
	svc := &Service{Profiles: repo, Verifier: fakeVerifier{subject: "ou_123"}}

	ident, err := svc.Resolve(context.Background(), "token")

	require.NoError(t, err)
	assert.Equal(t, profile.ID("p-1"), ident.UserID)
	assert.False(t, ident.Anonymous)
	assert.Equal(t, 0, repo.inserts)
}

func TestResolve_FallsBackToAnonymous(t *testing.T) {
	tests := map[string]struct {
		credential string
		verifier   profile.Verifier
	}{
		"no credential":     {"", fakeVerifier{subject: "ou_123"}},
		"rejected":          {"bad", fakeVerifier{err: profile.ErrInvalidCredential}},
		"unknown subject":   {"token", fakeVerifier{subject: "ou_unknown"}},
		"no verifier wired": {"token", nil},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			repo := newMemProfiles()
			svc := &Service{Profiles: repo, Verifier: tt.verifier}

			ident, err := svc.Resolve(context.Background(), tt.credential)

			require.NoError(t, err)
			assert.True(t, ident.Anonymous)
			assert.NotEmpty(t, ident.UserID)
			assert.Equal(t, 1, repo.inserts)
		})
	}
}

func TestResolve_AnonymousCreatedOnce(t *testing.T) {
	repo := newMemProfiles()
	svc := &Service{Profiles: repo}

	first, err := svc.Resolve(context.Background(), "")
	require.NoError(t, err)
	second, err := svc.Resolve(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, first.UserID, second.UserID)
	assert.Equal(t, 1, repo.inserts)
}

func TestResolve_LostInsertRaceUsesWinner(t *testing.T) {
	repo := newMemProfiles()
	// Another instance inserts the marker row between our lookup and our insert.
	repo.insertFn = func(p *profile.Profile) {
		repo.mu.Lock()
		defer repo.mu.Unlock()
		if len(repo.byID) == 0 {
			repo.byID["winner"] = &profile.Profile{ID: "winner", Email: p.Email}
		}
	}
	svc := &Service{Profiles: repo}

	ident, err := svc.Resolve(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, profile.ID("winner"), ident.UserID)
	assert.Len(t, repo.byID, 1)
}

func TestResolve_ConcurrentCallersShareOneProfile(t *testing.T) {
	repo := newMemProfiles()
	svc := &Service{Profiles: repo}

	var wg sync.WaitGroup
	ids := make([]profile.ID, 16)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ident, err := svc.Resolve(context.Background(), "")
			if err == nil {
				ids[i] = ident.UserID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	assert.Len(t, repo.byID, 1)
}

func TestResolve_StoreDown(t *testing.T) {
	repo := newMemProfiles()
	repo.findErr = errors.New("connection refused")
	svc := &Service{Profiles: repo, Verifier: fakeVerifier{subject: "ou_123"}}

	_, err := svc.Resolve(context.Background(), "token")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestResolve_UsesCache(t *testing.T) {
	repo := newMemProfiles()
	repo.findErr = errors.New("store should not be hit")
	cache := mapCache{"open_id:ou_123": "cached-id", "email:" + DefaultAnonymousEmail: "anon-id"}
	svc := &Service{Profiles: repo, Verifier: fakeVerifier{subject: "ou_123"}, Cache: cache}

	ident, err := svc.Resolve(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, profile.ID("cached-id"), ident.UserID)

	anon, err := svc.Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, profile.ID("anon-id"), anon.UserID)
}

func TestResolve_PopulatesCache(t *testing.T) {
	repo := newMemProfiles()
	repo.byID["p-1"] = &profile.Profile{ID: "p-1", OpenID: "ou_123", Email: "a@b.c"}
	cache := mapCache{}
	svc := &Service{Profiles: repo, Verifier: fakeVerifier{subject: "ou_123"}, Cache: cache, AnonymousEmail: "anon@test"}

	_, err := svc.Resolve(context.Background(), "token")
	require.NoError(t, err)
	_, err = svc.Resolve(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, profile.ID("p-1"), cache["open_id:ou_123"])
	assert.NotEmpty(t, cache["email:anon@test"])
}
