// Package session resolves external user identities to conversation sessions.
package session

import (
	"context"
	"fmt"

	"marketing-assistant-be/internal/pkg/logger"
	"marketing-assistant-be/pkg/store"

	"golang.org/x/sync/singleflight"
)

// Store is the authoritative session store.
type Store interface {
	CreateSession(ctx context.Context, externalUserID string) (*store.Session, error)
	SessionExists(ctx context.Context, sessionID string) (bool, error)
	// LatestSession returns nil when the user has no session.
	LatestSession(ctx context.Context, externalUserID string) (*store.Session, error)
}

type Cache interface {
	Get(externalUserID string) (string, bool)
	Set(externalUserID, sessionID string)
	Delete(externalUserID string)
}

// Registry caches external user -> session id and revalidates every hit
// against the store. A cache miss falls back to the user's newest stored
// session, so cache expiry never starts a new conversation. Concurrent first contacts from one user are collapsed
// within this process; across processes two sessions may still be created.
type Registry struct {
	store  Store
	cache  Cache
	group  singleflight.Group
	logger logger.ILogger
}

func NewRegistry(s Store, c Cache, log logger.ILogger) *Registry {
	if log == nil {
		log = logger.Nop()
	}
	return &Registry{store: s, cache: c, logger: log}
}

// Resolve returns the session id for externalUserID, creating a session only
// when the store holds none for the user.
func (r *Registry) Resolve(ctx context.Context, externalUserID string) (string, error) {
	v, err, _ := r.group.Do(externalUserID, func() (interface{}, error) {
		return r.resolve(ctx, externalUserID)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (r *Registry) resolve(ctx context.Context, externalUserID string) (string, error) {
	if sessionID, ok := r.cache.Get(externalUserID); ok {
		exists, err := r.store.SessionExists(ctx, sessionID)
		if err != nil {
			return "", fmt.Errorf("failed to verify session: %w", err)
		}
		if exists {
			return sessionID, nil
		}

		r.logger.Warn("SESSION", "Cached session no longer exists, recreating", map[string]interface{}{
			"external_user_id": externalUserID,
			"session_id":       sessionID,
		})
		r.cache.Delete(externalUserID)
	}

	latest, err := r.store.LatestSession(ctx, externalUserID)
	if err != nil {
		return "", fmt.Errorf("failed to look up session: %w", err)
	}
	if latest != nil {
		r.cache.Set(externalUserID, latest.ID)
		return latest.ID, nil
	}

	sess, err := r.store.CreateSession(ctx, externalUserID)
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	r.cache.Set(externalUserID, sess.ID)
	r.logger.Info("SESSION", "Created session", map[string]interface{}{
		"external_user_id": externalUserID,
		"session_id":       sess.ID,
	})
	return sess.ID, nil
}

// Forget drops the cached mapping for externalUserID.
func (r *Registry) Forget(externalUserID string) {
	r.cache.Delete(externalUserID)
}
