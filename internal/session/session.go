// Package session discovers the local client's credentials and the shard
// that serves the signed-in player.
package session

import (
	"sync"
	"time"

	"github.com/zachrip/valpal/internal/riot"
)

// Session is everything needed to talk to the remote services on behalf of
// the local player. It is immutable once resolved.
type Session struct {
	AccessToken       string
	EntitlementsToken string
	UserID            string
	Region            riot.Region
	Shard             riot.Shard
	ClientVersion     string
	// ExpiresAt is read from the access token; zero when the token carries no expiry.
	ExpiresAt time.Time
}

func (s *Session) Credentials() riot.Credentials {
	return riot.Credentials{
		AccessToken:       s.AccessToken,
		EntitlementsToken: s.EntitlementsToken,
		ClientVersion:     s.ClientVersion,
		UserID:            s.UserID,
		Region:            s.Region,
		Shard:             s.Shard,
	}
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Placement is a region/shard pair.
type Placement struct {
	Region riot.Region
	Shard  riot.Shard
}

// Candidates is the probe order used to find a player's placement.
var Candidates = []Placement{
	{Region: riot.RegionNorthAmerica, Shard: riot.ShardNorthAmerica},
	{Region: riot.RegionLatinAmerica, Shard: riot.ShardNorthAmerica},
	{Region: riot.RegionBrazil, Shard: riot.ShardNorthAmerica},
	{Region: riot.RegionNorthAmerica, Shard: riot.ShardPBE},
	{Region: riot.RegionEurope, Shard: riot.ShardEurope},
	{Region: riot.RegionAsiaPacific, Shard: riot.ShardAsiaPacific},
	{Region: riot.RegionKorea, Shard: riot.ShardKorea},
}

// RegionCache remembers each user's placement for the life of the process.
// Concurrent inserts for the same user race harmlessly: the value is the same.
type RegionCache struct {
	mu sync.RWMutex
	m  map[string]Placement
}

func NewRegionCache() *RegionCache {
	return &RegionCache{m: map[string]Placement{}}
}

func (c *RegionCache) Get(userID string) (Placement, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.m[userID]
	return p, ok
}

func (c *RegionCache) Put(userID string, p Placement) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[userID] = p
}
