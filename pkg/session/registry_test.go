package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"marketing-assistant-be/internal/repository/memory"
	"marketing-assistant-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu        sync.Mutex
	sessions  map[string]string // session id -> external user id
	order     []string
	created   int
	createErr error
	delay     time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: make(map[string]string)}
}

func (f *fakeStore) CreateSession(_ context.Context, externalUserID string) (*store.Session, error) {
	time.Sleep(f.delay)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created++
	id := fmt.Sprintf("session-%d", f.created)
	f.sessions[id] = externalUserID
	f.order = append(f.order, id)
	return &store.Session{ID: id, ExternalUserID: externalUserID}, nil
}

func (f *fakeStore) SessionExists(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.sessions[id]
	return ok, nil
}

func (f *fakeStore) LatestSession(_ context.Context, externalUserID string) (*store.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.order) - 1; i >= 0; i-- {
		id := f.order[i]
		if user, ok := f.sessions[id]; ok && user == externalUserID {
			return &store.Session{ID: id, ExternalUserID: user}, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) delete(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
}

func TestResolveCreatesOnceAndReuses(t *testing.T) {
	st := newFakeStore()
	r := NewRegistry(st, memory.NewSessionCache(time.Hour), nil)

	first, err := r.Resolve(context.Background(), "user-1")
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, st.created)
}

func TestResolveRecreatesStaleSession(t *testing.T) {
	st := newFakeStore()
	cache := memory.NewSessionCache(time.Hour)
	r := NewRegistry(st, cache, nil)

	first, err := r.Resolve(context.Background(), "user-1")
	require.NoError(t, err)
	st.delete(first)

	second, err := r.Resolve(context.Background(), "user-1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	cached, ok := cache.Get("user-1")
	assert.True(t, ok)
	assert.Equal(t, second, cached)
}

func TestResolveCollapsesConcurrentFirstContact(t *testing.T) {
	st := newFakeStore()
	st.delay = 20 * time.Millisecond
	r := NewRegistry(st, memory.NewSessionCache(time.Hour), nil)

	var wg sync.WaitGroup
	ids := make([]string, 10)
	for i := range ids {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids[i], _ = r.Resolve(context.Background(), "user-1")
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, st.created)
	for _, id := range ids {
		assert.Equal(t, "session-1", id)
	}
}

func TestResolveStoreFailure(t *testing.T) {
	st := newFakeStore()
	st.createErr = errors.New("db down")
	r := NewRegistry(st, memory.NewSessionCache(time.Hour), nil)

	_, err := r.Resolve(context.Background(), "user-1")
	assert.Error(t, err)
}

func TestResolveKeepsSessionAcrossCacheExpiry(t *testing.T) {
	st := newFakeStore()
	r := NewRegistry(st, memory.NewSessionCache(50*time.Millisecond), nil)

	first, err := r.Resolve(context.Background(), "discord:42")
	require.NoError(t, err)

	time.Sleep(80 * time.Millisecond)

	second, err := r.Resolve(context.Background(), "discord:42")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, st.created)
}

func TestResolveReusesStoredSessionOnColdCache(t *testing.T) {
	st := newFakeStore()
	existing, err := st.CreateSession(context.Background(), "discord:42")
	require.NoError(t, err)

	cache := memory.NewSessionCache(time.Hour)
	r := NewRegistry(st, cache, nil)

	id, err := r.Resolve(context.Background(), "discord:42")
	require.NoError(t, err)

	assert.Equal(t, existing.ID, id)
	assert.Equal(t, 1, st.created)
	cached, ok := cache.Get("discord:42")
	assert.True(t, ok)
	assert.Equal(t, existing.ID, cached)
}
