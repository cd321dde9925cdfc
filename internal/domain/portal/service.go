package portal

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo       Repository
	cache      PartnerCache
	cacheTTL   time.Duration
	notifier   Notifier
	now        func() time.Time
	generateID func() string
}

type Option func(*Service)

// WithPartnerCache serves GetPartner through cache. A non-positive ttl
// disables caching. Invalidation is process-local, so only enable it when a
// single instance serves the backing.
func WithPartnerCache(cache PartnerCache, ttl time.Duration) Option {
	return func(s *Service) {
		if cache == nil || ttl <= 0 {
			return
		}
		s.cache = cache
		s.cacheTTL = ttl
	}
}

func WithNotifier(notifier Notifier) Option {
	return func(s *Service) {
		if notifier != nil {
			s.notifier = notifier
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(generate func() string) Option {
	return func(s *Service) {
		if generate != nil {
			s.generateID = generate
		}
	}
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		cache:      noopPartnerCache{},
		notifier:   noopNotifier{},
		now:        func() time.Time { return time.Now().UTC() },
		generateID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) GetPartner(ctx context.Context, id string) (*Partner, error) {
	if err := ValidatePartnerID(id); err != nil {
		return nil, err
	}
	if cached, ok := s.cache.GetByID(id); ok {
		return cached, nil
	}

	generation := s.cache.Generation(id)
	partner, err := s.repo.GetPartner(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.SetByID(id, partner, s.cacheTTL, generation)
	return partner, nil
}

func (s *Service) ListPartners(ctx context.Context) ([]Partner, error) {
	return s.repo.ListPartners(ctx)
}

func (s *Service) CreatePartner(ctx context.Context, input PartnerInput) (*Partner, error) {
	partner, err := ValidatePartner(input)
	if err != nil {
		return nil, err
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		_, err := tx.GetPartner(ctx, partner.ID)
		switch {
		case err == nil:
			return ErrPartnerExists
		case !errors.Is(err, ErrPartnerNotFound):
			return err
		}
		return tx.CreatePartner(ctx, &partner)
	})
	if err != nil {
		return nil, err
	}
	return &partner, nil
}

// UpdatePartner replaces every mutable field. input.ID may be empty; when set
// it must match id.
func (s *Service) UpdatePartner(ctx context.Context, id string, input PartnerInput) (*Partner, error) {
	if err := ValidatePartnerID(id); err != nil {
		return nil, err
	}
	input.ID = strings.TrimSpace(input.ID)
	if input.ID != "" && input.ID != id {
		return nil, &ValidationError{Fields: []FieldError{{Field: "id", Message: "cannot be changed"}}}
	}
	input.ID = id

	partner, err := ValidatePartner(input)
	if err != nil {
		return nil, err
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if _, err := tx.GetPartnerForUpdate(ctx, id); err != nil {
			return err
		}
		return tx.UpdatePartner(ctx, &partner)
	})
	if err != nil {
		return nil, err
	}

	s.cache.DeleteByID(id)
	return &partner, nil
}

// DeletePartner refuses while any request references the partner. The
// reference count and the delete share one transaction holding the partner
// lock, so CreateRequest cannot slip a request in between.
func (s *Service) DeletePartner(ctx context.Context, id string) error {
	if err := ValidatePartnerID(id); err != nil {
		return err
	}

	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if _, err := tx.GetPartnerForUpdate(ctx, id); err != nil {
			return err
		}

		count, err := tx.CountRequestsByPartner(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrPartnerHasRequests
		}

		deleted, err := tx.DeletePartner(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrPartnerNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cache.DeleteByID(id)
	return nil
}

func (s *Service) ListRequests(ctx context.Context) ([]RequestWithPartner, error) {
	return s.repo.ListRequests(ctx)
}

func (s *Service) GetRequest(ctx context.Context, id string) (*RequestWithPartner, error) {
	if id == "" {
		return nil, ErrRequestNotFound
	}
	return s.repo.GetRequest(ctx, id)
}

func (s *Service) CreateRequest(ctx context.Context, input RequestInput) (*RequestWithPartner, error) {
	request, err := ValidateRequest(input)
	if err != nil {
		return nil, err
	}
	request.ID = s.generateID()
	request.CreatedAt = s.now().Truncate(time.Microsecond)

	var partner *Partner
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		var err error
		partner, err = lockReferencedPartner(ctx, tx, request.PartnerID)
		if err != nil {
			return err
		}
		return tx.CreateRequest(ctx, &request)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyRequestCreated(ctx, RequestCreatedEvent{Request: request, Partner: *partner})
	return &RequestWithPartner{Request: request, PartnerName: partner.Name}, nil
}

// UpdateRequest replaces every mutable field. ID and CreatedAt are kept from
// the stored row.
func (s *Service) UpdateRequest(ctx context.Context, id string, input RequestInput) (*RequestWithPartner, error) {
	if id == "" {
		return nil, ErrRequestNotFound
	}
	request, err := ValidateRequest(input)
	if err != nil {
		return nil, err
	}

	var result *RequestWithPartner
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		existing, err := tx.GetRequest(ctx, id)
		if err != nil {
			return err
		}

		partnerName := existing.PartnerName
		if request.PartnerID != existing.PartnerID {
			partner, err := lockReferencedPartner(ctx, tx, request.PartnerID)
			if err != nil {
				return err
			}
			partnerName = partner.Name
		}

		request.ID = existing.ID
		request.CreatedAt = existing.CreatedAt
		if err := tx.UpdateRequest(ctx, &request); err != nil {
			return err
		}

		result = &RequestWithPartner{Request: request, PartnerName: partnerName}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) DeleteRequest(ctx context.Context, id string) error {
	if id == "" {
		return ErrRequestNotFound
	}
	deleted, err := s.repo.DeleteRequest(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrRequestNotFound
	}
	return nil
}

func lockReferencedPartner(ctx context.Context, tx Repository, partnerID string) (*Partner, error) {
	partner, err := tx.GetPartnerForUpdate(ctx, partnerID)
	if errors.Is(err, ErrPartnerNotFound) {
		return nil, ErrPartnerReferenceInvalid
	}
	return partner, err
}
