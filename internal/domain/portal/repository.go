package portal

import "context"

// Repository is implemented by every storage backing. Implementations must
// return the sentinel errors from errors.go, never backing-specific ones.
type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	GetPartner(ctx context.Context, id string) (*Partner, error)
	// GetPartnerForUpdate reads a partner and holds a write lock on it until
	// the surrounding transaction ends.
	GetPartnerForUpdate(ctx context.Context, id string) (*Partner, error)
	ListPartners(ctx context.Context) ([]Partner, error)
	CreatePartner(ctx context.Context, partner *Partner) error
	UpdatePartner(ctx context.Context, partner *Partner) error
	DeletePartner(ctx context.Context, id string) (bool, error)
	CountRequestsByPartner(ctx context.Context, partnerID string) (int64, error)
	ListRequests(ctx context.Context) ([]RequestWithPartner, error)
	GetRequest(ctx context.Context, id string) (*RequestWithPartner, error)
	CreateRequest(ctx context.Context, request *Request) error
	UpdateRequest(ctx context.Context, request *Request) error
	DeleteRequest(ctx context.Context, id string) (bool, error)
}
