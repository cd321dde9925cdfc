package portal

import "time"

// PartnerCache holds partners for public lookups. A read that started
// before DeleteByID must not repopulate the entry: callers take Generation
// before reading storage and pass it to SetByID, which drops the write if
// the id was invalidated in between.
type PartnerCache interface {
	GetByID(id string) (*Partner, bool)
	Generation(id string) uint64
	SetByID(id string, partner *Partner, ttl time.Duration, generation uint64)
	DeleteByID(id string)
}

type noopPartnerCache struct{}

func (noopPartnerCache) GetByID(string) (*Partner, bool) {
	return nil, false
}

func (noopPartnerCache) Generation(string) uint64 {
	return 0
}

func (noopPartnerCache) SetByID(string, *Partner, time.Duration, uint64) {}

func (noopPartnerCache) DeleteByID(string) {}
