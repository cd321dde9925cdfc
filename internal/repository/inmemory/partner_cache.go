package inmemory

import (
	"sync"
	"time"

	portaldomain "partner-portal/internal/domain/portal"
)

// PartnerCache is a process-local TTL cache. Partner ids are four digits,
// so the generation map stays bounded.
type PartnerCache struct {
	mu          sync.RWMutex
	items       map[string]partnerItem
	generations map[string]uint64
	now         func() time.Time
}

type partnerItem struct {
	value     portaldomain.Partner
	expiresAt time.Time
}

func NewPartnerCache() *PartnerCache {
	return &PartnerCache{
		items:       make(map[string]partnerItem),
		generations: make(map[string]uint64),
		now:         time.Now,
	}
}

func (c *PartnerCache) GetByID(id string) (*portaldomain.Partner, bool) {
	now := c.now()

	c.mu.RLock()
	item, ok := c.items[id]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if !item.expiresAt.After(now) {
		c.mu.Lock()
		item, ok = c.items[id]
		if ok && !item.expiresAt.After(now) {
			delete(c.items, id)
		}
		c.mu.Unlock()
		return nil, false
	}

	value := item.value
	return &value, true
}

func (c *PartnerCache) Generation(id string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generations[id]
}

// SetByID is a no-op when DeleteByID ran for id since generation was taken.
func (c *PartnerCache) SetByID(id string, partner *portaldomain.Partner, ttl time.Duration, generation uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generations[id] != generation {
		return
	}
	if partner == nil || ttl <= 0 {
		delete(c.items, id)
		return
	}
	c.items[id] = partnerItem{
		value:     *partner,
		expiresAt: c.now().Add(ttl),
	}
}

func (c *PartnerCache) DeleteByID(id string) {
	c.mu.Lock()
	delete(c.items, id)
	c.generations[id]++
	c.mu.Unlock()
}

func (c *PartnerCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
