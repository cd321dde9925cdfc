// Package repotest holds the behaviour every portal.Repository backing must
// share. Each backing's tests call Run with a constructor for a fresh, empty
// repository.
package repotest

import (
	"context"
	"errors"
	"testing"
	"time"

	portaldomain "partner-portal/internal/domain/portal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errAbort = errors.New("abort")

func Run(t *testing.T, newRepo func(t *testing.T) portaldomain.Repository) {
	t.Run("partner round trip", func(t *testing.T) { testPartnerRoundTrip(t, newRepo(t)) })
	t.Run("duplicate partner", func(t *testing.T) { testDuplicatePartner(t, newRepo(t)) })
	t.Run("list partners ordered by id", func(t *testing.T) { testListPartners(t, newRepo(t)) })
	t.Run("update missing partner", func(t *testing.T) { testUpdateMissingPartner(t, newRepo(t)) })
	t.Run("delete partner", func(t *testing.T) { testDeletePartner(t, newRepo(t)) })
	t.Run("delete referenced partner", func(t *testing.T) { testDeleteReferencedPartner(t, newRepo(t)) })
	t.Run("request with unknown partner", func(t *testing.T) { testRequestUnknownPartner(t, newRepo(t)) })
	t.Run("list requests newest first", func(t *testing.T) { testListRequests(t, newRepo(t)) })
	t.Run("update and delete request", func(t *testing.T) { testUpdateDeleteRequest(t, newRepo(t)) })
	t.Run("transaction rollback", func(t *testing.T) { testTransactionRollback(t, newRepo(t)) })
	t.Run("request optional fields", func(t *testing.T) { testRequestOptionalFields(t, newRepo(t)) })
}

func Partner(id string) portaldomain.Partner {
	return portaldomain.Partner{ID: id, Name: "Acme " + id, Email: "p" + id + "@example.com", Phone: "555-" + id}
}

func Request(id, partnerID string, createdAt time.Time) portaldomain.Request {
	return portaldomain.Request{
		ID:               id,
		PartnerID:        partnerID,
		PreferredContact: portaldomain.ContactEmail,
		Urgency:          portaldomain.UrgencyHigh,
		Description:      "Need help.",
		CreatedAt:        createdAt.UTC().Truncate(time.Microsecond),
	}
}

func mustCreatePartner(t *testing.T, repo portaldomain.Repository, id string) portaldomain.Partner {
	t.Helper()
	partner := Partner(id)
	require.NoError(t, repo.CreatePartner(context.Background(), &partner))
	return partner
}

func testPartnerRoundTrip(t *testing.T, repo portaldomain.Repository) {
	ctx := context.Background()
	want := mustCreatePartner(t, repo, "1234")

	got, err := repo.GetPartner(ctx, "1234")
	require.NoError(t, err)
	assert.Equal(t, want, *got)

	_, err = repo.GetPartner(ctx, "9999")
	assert.ErrorIs(t, err, portaldomain.ErrPartnerNotFound)
}

func testDuplicatePartner(t *testing.T, repo portaldomain.Repository) {
	ctx := context.Background()
	original := mustCreatePartner(t, repo, "1234")

	dup := portaldomain.Partner{ID: "1234", Name: "Other", Email: "o@example.com", Phone: "1"}
	err := repo.CreatePartner(ctx, &dup)
	assert.ErrorIs(t, err, portaldomain.ErrPartnerExists)

	got, err := repo.GetPartner(ctx, "1234")
	require.NoError(t, err)
	assert.Equal(t, original, *got)
}

func testListPartners(t *testing.T, repo portaldomain.Repository) {
	for _, id := range []string{"3000", "0001", "2000"} {
		mustCreatePartner(t, repo, id)
	}

	partners, err := repo.ListPartners(context.Background())
	require.NoError(t, err)
	require.Len(t, partners, 3)
	assert.Equal(t, "0001", partners[0].ID)
	assert.Equal(t, "2000", partners[1].ID)
	assert.Equal(t, "3000", partners[2].ID)
}

func testUpdateMissingPartner(t *testing.T, repo portaldomain.Repository) {
	ctx := context.Background()
	missing := Partner("4321")
	assert.ErrorIs(t, repo.UpdatePartner(ctx, &missing), portaldomain.ErrPartnerNotFound)

	partners, err := repo.ListPartners(ctx)
	require.NoError(t, err)
	assert.Empty(t, partners)
}

func testDeletePartner(t *testing.T, repo portaldomain.Repository) {
	ctx := context.Background()
	mustCreatePartner(t, repo, "1234")

	deleted, err := repo.DeletePartner(ctx, "1234")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.DeletePartner(ctx, "1234")
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = repo.GetPartner(ctx, "1234")
	assert.ErrorIs(t, err, portaldomain.ErrPartnerNotFound)
}

func testDeleteReferencedPartner(t *testing.T, repo portaldomain.Repository) {
	ctx := context.Background()
	mustCreatePartner(t, repo, "1234")
	request := Request("req-1", "1234", time.Now())
	require.NoError(t, repo.CreateRequest(ctx, &request))

	count, err := repo.CountRequestsByPartner(ctx, "1234")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = repo.DeletePartner(ctx, "1234")
	assert.ErrorIs(t, err, portaldomain.ErrPartnerHasRequests)

	err = repo.Transaction(ctx, func(tx portaldomain.Repository) error {
		_, err := tx.DeletePartner(ctx, "1234")
		return err
	})
	assert.ErrorIs(t, err, portaldomain.ErrPartnerHasRequests)
	assert.NotErrorIs(t, err, portaldomain.ErrStorageUnavailable)

	_, err = repo.GetPartner(ctx, "1234")
	require.NoError(t, err)

	deleted, err := repo.DeleteRequest(ctx, "req-1")
	require.NoError(t, err)
	require.True(t, deleted)

	deleted, err = repo.DeletePartner(ctx, "1234")
	require.NoError(t, err)
	assert.True(t, deleted)
}

func testRequestUnknownPartner(t *testing.T, repo portaldomain.Repository) {
	ctx := context.Background()
	request := Request("req-1", "9999", time.Now())
	assert.ErrorIs(t, repo.CreateRequest(ctx, &request), portaldomain.ErrPartnerReferenceInvalid)

	requests, err := repo.ListRequests(ctx)
	require.NoError(t, err)
	assert.Empty(t, requests)
}

func testListRequests(t *testing.T, repo portaldomain.Repository) {
	ctx := context.Background()
	mustCreatePartner(t, repo, "1234")
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"req-a", "req-b", "req-c"} {
		request := Request(id, "1234", base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, repo.CreateRequest(ctx, &request))
	}

	requests, err := repo.ListRequests(ctx)
	require.NoError(t, err)
	require.Len(t, requests, 3)
	assert.Equal(t, "req-c", requests[0].ID)
	assert.Equal(t, "req-a", requests[2].ID)
	assert.Equal(t, "Acme 1234", requests[0].PartnerName)
	assert.True(t, requests[0].CreatedAt.Equal(base.Add(2*time.Minute)))
}

func testUpdateDeleteRequest(t *testing.T, repo portaldomain.Repository) {
	ctx := context.Background()
	mustCreatePartner(t, repo, "1234")
	mustCreatePartner(t, repo, "5678")
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	request := Request("req-1", "1234", created)
	require.NoError(t, repo.CreateRequest(ctx, &request))

	request.PartnerID = "5678"
	request.Urgency = portaldomain.UrgencyLow
	require.NoError(t, repo.UpdateRequest(ctx, &request))

	got, err := repo.GetRequest(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, "5678", got.PartnerID)
	assert.Equal(t, portaldomain.UrgencyLow, got.Urgency)
	assert.Equal(t, "Acme 5678", got.PartnerName)
	assert.True(t, got.CreatedAt.Equal(created))

	request.PartnerID = "0000"
	assert.ErrorIs(t, repo.UpdateRequest(ctx, &request), portaldomain.ErrPartnerReferenceInvalid)

	missing := Request("req-missing", "1234", created)
	assert.ErrorIs(t, repo.UpdateRequest(ctx, &missing), portaldomain.ErrRequestNotFound)

	deleted, err := repo.DeleteRequest(ctx, "req-1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.DeleteRequest(ctx, "req-1")
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = repo.GetRequest(ctx, "req-1")
	assert.ErrorIs(t, err, portaldomain.ErrRequestNotFound)
}

func testTransactionRollback(t *testing.T, repo portaldomain.Repository) {
	ctx := context.Background()

	err := repo.Transaction(ctx, func(tx portaldomain.Repository) error {
		partner := Partner("1234")
		if err := tx.CreatePartner(ctx, &partner); err != nil {
			return err
		}
		return errAbort
	})
	assert.ErrorIs(t, err, errAbort)

	_, err = repo.GetPartner(ctx, "1234")
	assert.ErrorIs(t, err, portaldomain.ErrPartnerNotFound)

	err = repo.Transaction(ctx, func(tx portaldomain.Repository) error {
		partner := Partner("1234")
		return tx.CreatePartner(ctx, &partner)
	})
	require.NoError(t, err)

	_, err = repo.GetPartner(ctx, "1234")
	assert.NoError(t, err)
}

func testRequestOptionalFields(t *testing.T, repo portaldomain.Repository) {
	ctx := context.Background()
	mustCreatePartner(t, repo, "1234")

	request := Request("req-1", "1234", time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	request.RequestType = portaldomain.RequestTypeBilling
	request.RecipientName = "Jo"
	request.RecipientAddress = "1 Main St"
	request.RecipientEmail = "jo@example.com"
	request.RecipientPhone = "555-0101"
	request.DescriptionOfNeed = "Winter coat"
	request.ReferringCaseManager = "Sam Rivera"
	request.CaseManagerEmail = "sam@agency.example"
	request.CaseManagerPhone = "555-0142"
	require.NoError(t, repo.CreateRequest(ctx, &request))

	got, err := repo.GetRequest(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, request.ID, got.ID)
	assert.True(t, got.CreatedAt.Equal(request.CreatedAt))
	got.CreatedAt = request.CreatedAt
	assert.Equal(t, request, got.Request)

	request.ReferringCaseManager = "Alex Kim"
	request.CaseManagerEmail = ""
	require.NoError(t, repo.UpdateRequest(ctx, &request))

	got, err = repo.GetRequest(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, "Alex Kim", got.ReferringCaseManager)
	assert.Empty(t, got.CaseManagerEmail)
}
