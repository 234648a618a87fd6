package session

import (
	"time"

	"github.com/gjc-app/board-sync/models"
	"github.com/patrickmn/go-cache"
)

// Session is the explicit current-user context handed to every operation.
type Session struct {
	UserID  string             `json:"userId"`
	Profile models.UserProfile `json:"profile"`
}

// Cache remembers bootstrapped sessions so a request does not re-read the
// profile document. Entries expire after ttl.
type Cache struct {
	cache *cache.Cache
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{cache: cache.New(ttl, 2*ttl)}
}

func (c *Cache) Get(userID string) (Session, bool) {
	x, found := c.cache.Get(userID)
	if !found {
		return Session{}, false
	}
	return x.(Session), true
}

func (c *Cache) Put(s Session) {
	c.cache.Set(s.UserID, s, cache.DefaultExpiration)
}

