package inmemory

import (
	"context"
	"sync"
	"testing"
	"time"

	portaldomain "partner-portal/internal/domain/portal"
	"partner-portal/internal/repository/repotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortalRepositoryContract(t *testing.T) {
	repotest.Run(t, func(t *testing.T) portaldomain.Repository {
		return NewPortalRepository()
	})
}

func TestPortalRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewPortalRepository()
	partner := repotest.Partner("1234")
	require.NoError(t, repo.CreatePartner(ctx, &partner))

	partner.Name = "mutated"
	got, err := repo.GetPartner(ctx, "1234")
	require.NoError(t, err)
	assert.Equal(t, "Acme 1234", got.Name)

	got.Name = "mutated again"
	again, err := repo.GetPartner(ctx, "1234")
	require.NoError(t, err)
	assert.Equal(t, "Acme 1234", again.Name)
}

func TestPortalRepositoryCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := NewPortalRepository()
	_, err := repo.ListPartners(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPortalRepositoryConcurrentDeleteAndCreate(t *testing.T) {
	ctx := context.Background()
	repo := NewPortalRepository()
	service := portaldomain.NewService(repo)

	for i := 0; i < 50; i++ {
		partner := repotest.Partner("1234")
		require.NoError(t, repo.CreatePartner(ctx, &partner))

		var wg sync.WaitGroup
		wg.Add(2)
		var deleteErr, createErr error
		go func() {
			defer wg.Done()
			deleteErr = service.DeletePartner(ctx, "1234")
		}()
		go func() {
			defer wg.Done()
			_, createErr = service.CreateRequest(ctx, portaldomain.RequestInput{
				PartnerID:        "1234",
				PreferredContact: portaldomain.ContactEmail,
				Urgency:          portaldomain.UrgencyLow,
				Description:      "race",
			})
		}()
		wg.Wait()

		requests, err := repo.ListRequests(ctx)
		require.NoError(t, err)
		_, partnerErr := repo.GetPartner(ctx, "1234")

		if deleteErr == nil {
			assert.ErrorIs(t, createErr, portaldomain.ErrPartnerReferenceInvalid)
			assert.Empty(t, requests)
			assert.ErrorIs(t, partnerErr, portaldomain.ErrPartnerNotFound)
		} else {
			assert.ErrorIs(t, deleteErr, portaldomain.ErrPartnerHasRequests)
			require.NoError(t, createErr)
			require.Len(t, requests, 1)
			assert.NoError(t, partnerErr)
			_, err := repo.DeleteRequest(ctx, requests[0].ID)
			require.NoError(t, err)
			require.NoError(t, service.DeletePartner(ctx, "1234"))
		}
	}
}

func TestPartnerCacheExpiry(t *testing.T) {
	cache := NewPartnerCache()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	partner := repotest.Partner("1234")
	cache.SetByID("1234", &partner, time.Minute, 0)

	got, ok := cache.GetByID("1234")
	require.True(t, ok)
	assert.Equal(t, partner, *got)

	now = now.Add(2 * time.Minute)
	_, ok = cache.GetByID("1234")
	assert.False(t, ok)
	assert.Zero(t, cache.Len())
}

func TestPartnerCacheZeroTTLDeletes(t *testing.T) {
	cache := NewPartnerCache()
	partner := repotest.Partner("1234")
	cache.SetByID("1234", &partner, time.Minute, 0)
	cache.SetByID("1234", &partner, 0, 0)

	_, ok := cache.GetByID("1234")
	assert.False(t, ok)
}

func TestPartnerCacheDropsWritesFromBeforeInvalidation(t *testing.T) {
	cache := NewPartnerCache()
	partner := repotest.Partner("1234")

	stale := cache.Generation("1234")
	cache.DeleteByID("1234")
	cache.SetByID("1234", &partner, time.Minute, stale)

	_, ok := cache.GetByID("1234")
	assert.False(t, ok)

	cache.SetByID("1234", &partner, time.Minute, cache.Generation("1234"))
	_, ok = cache.GetByID("1234")
	assert.True(t, ok)
}
