package memory

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// SessionCache maps an external user id to its session id. Every hit
// pushes the entry's expiry back by the full TTL.
type SessionCache struct {
	cache *cache.Cache
}

func NewSessionCache(ttl time.Duration) *SessionCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	// Expired items are purged every 10 minutes
	c := cache.New(ttl, 10*time.Minute)
	return &SessionCache{
		cache: c,
	}
}

func (r *SessionCache) Set(externalUserID, sessionID string) {
	r.cache.Set(externalUserID, sessionID, cache.DefaultExpiration)
}

func (r *SessionCache) Get(externalUserID string) (string, bool) {
	if x, found := r.cache.Get(externalUserID); found {
		sessionID := x.(string)
		r.cache.Set(externalUserID, sessionID, cache.DefaultExpiration)
		return sessionID, true
	}
	return "", false
}

func (r *SessionCache) Delete(externalUserID string) {
	r.cache.Delete(externalUserID)
}

func (r *SessionCache) Len() int {
	return r.cache.ItemCount()
}
