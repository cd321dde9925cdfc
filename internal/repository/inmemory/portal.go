package inmemory

import (
	"context"
	"sort"
	"sync"

	portaldomain "partner-portal/internal/domain/portal"
)

// PortalRepository keeps partners and requests in process memory. Writers are
// serialised behind one lock; Transaction runs against a copy of the state
// and swaps it in only when fn succeeds.
type PortalRepository struct {
	mu    sync.RWMutex
	state *portalState
}

type portalState struct {
	partners map[string]portaldomain.Partner
	requests map[string]portaldomain.Request
}

func NewPortalRepository() *PortalRepository {
	return &PortalRepository{
		state: &portalState{
			partners: make(map[string]portaldomain.Partner),
			requests: make(map[string]portaldomain.Request),
		},
	}
}

func (r *PortalRepository) Transaction(ctx context.Context, fn func(portaldomain.Repository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	draft := r.state.clone()
	if err := fn(&stateRepository{state: draft}); err != nil {
		return err
	}
	r.state = draft
	return nil
}

func (r *PortalRepository) read(ctx context.Context, fn func(*stateRepository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return fn(&stateRepository{state: r.state})
}

func (r *PortalRepository) write(ctx context.Context, fn func(*stateRepository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(&stateRepository{state: r.state})
}

func (r *PortalRepository) GetPartner(ctx context.Context, id string) (partner *portaldomain.Partner, err error) {
	err = r.read(ctx, func(s *stateRepository) error {
		partner, err = s.GetPartner(ctx, id)
		return err
	})
	return partner, err
}

func (r *PortalRepository) GetPartnerForUpdate(ctx context.Context, id string) (*portaldomain.Partner, error) {
	return r.GetPartner(ctx, id)
}

func (r *PortalRepository) ListPartners(ctx context.Context) (partners []portaldomain.Partner, err error) {
	err = r.read(ctx, func(s *stateRepository) error {
		partners, err = s.ListPartners(ctx)
		return err
	})
	return partners, err
}

func (r *PortalRepository) CreatePartner(ctx context.Context, partner *portaldomain.Partner) error {
	return r.write(ctx, func(s *stateRepository) error {
		return s.CreatePartner(ctx, partner)
	})
}

func (r *PortalRepository) UpdatePartner(ctx context.Context, partner *portaldomain.Partner) error {
	return r.write(ctx, func(s *stateRepository) error {
		return s.UpdatePartner(ctx, partner)
	})
}

func (r *PortalRepository) DeletePartner(ctx context.Context, id string) (deleted bool, err error) {
	err = r.write(ctx, func(s *stateRepository) error {
		deleted, err = s.DeletePartner(ctx, id)
		return err
	})
	return deleted, err
}

func (r *PortalRepository) CountRequestsByPartner(ctx context.Context, partnerID string) (count int64, err error) {
	err = r.read(ctx, func(s *stateRepository) error {
		count, err = s.CountRequestsByPartner(ctx, partnerID)
		return err
	})
	return count, err
}

func (r *PortalRepository) ListRequests(ctx context.Context) (requests []portaldomain.RequestWithPartner, err error) {
	err = r.read(ctx, func(s *stateRepository) error {
		requests, err = s.ListRequests(ctx)
		return err
	})
	return requests, err
}

func (r *PortalRepository) GetRequest(ctx context.Context, id string) (request *portaldomain.RequestWithPartner, err error) {
	err = r.read(ctx, func(s *stateRepository) error {
		request, err = s.GetRequest(ctx, id)
		return err
	})
	return request, err
}

func (r *PortalRepository) CreateRequest(ctx context.Context, request *portaldomain.Request) error {
	return r.write(ctx, func(s *stateRepository) error {
		return s.CreateRequest(ctx, request)
	})
}

func (r *PortalRepository) UpdateRequest(ctx context.Context, request *portaldomain.Request) error {
	return r.write(ctx, func(s *stateRepository) error {
		return s.UpdateRequest(ctx, request)
	})
}

func (r *PortalRepository) DeleteRequest(ctx context.Context, id string) (deleted bool, err error) {
	err = r.write(ctx, func(s *stateRepository) error {
		deleted, err = s.DeleteRequest(ctx, id)
		return err
	})
	return deleted, err
}

func (s *portalState) clone() *portalState {
	cloned := &portalState{
		partners: make(map[string]portaldomain.Partner, len(s.partners)),
		requests: make(map[string]portaldomain.Request, len(s.requests)),
	}
	for id, partner := range s.partners {
		cloned.partners[id] = partner
	}
	for id, request := range s.requests {
		cloned.requests[id] = request
	}
	return cloned
}

// stateRepository operates on a portalState without locking. The caller
// holds PortalRepository.mu.
type stateRepository struct {
	state *portalState
}

func (s *stateRepository) Transaction(ctx context.Context, fn func(portaldomain.Repository) error) error {
	return fn(s)
}

func (s *stateRepository) GetPartner(ctx context.Context, id string) (*portaldomain.Partner, error) {
	partner, ok := s.state.partners[id]
	if !ok {
		return nil, portaldomain.ErrPartnerNotFound
	}
	return &partner, nil
}

func (s *stateRepository) GetPartnerForUpdate(ctx context.Context, id string) (*portaldomain.Partner, error) {
	return s.GetPartner(ctx, id)
}

func (s *stateRepository) ListPartners(ctx context.Context) ([]portaldomain.Partner, error) {
	result := make([]portaldomain.Partner, 0, len(s.state.partners))
	for _, partner := range s.state.partners {
		result = append(result, partner)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (s *stateRepository) CreatePartner(ctx context.Context, partner *portaldomain.Partner) error {
	if _, ok := s.state.partners[partner.ID]; ok {
		return portaldomain.ErrPartnerExists
	}
	s.state.partners[partner.ID] = *partner
	return nil
}

func (s *stateRepository) UpdatePartner(ctx context.Context, partner *portaldomain.Partner) error {
	if _, ok := s.state.partners[partner.ID]; !ok {
		return portaldomain.ErrPartnerNotFound
	}
	s.state.partners[partner.ID] = *partner
	return nil
}

func (s *stateRepository) DeletePartner(ctx context.Context, id string) (bool, error) {
	if _, ok := s.state.partners[id]; !ok {
		return false, nil
	}
	for _, request := range s.state.requests {
		if request.PartnerID == id {
			return false, portaldomain.ErrPartnerHasRequests
		}
	}
	delete(s.state.partners, id)
	return true, nil
}

func (s *stateRepository) CountRequestsByPartner(ctx context.Context, partnerID string) (int64, error) {
	var count int64
	for _, request := range s.state.requests {
		if request.PartnerID == partnerID {
			count++
		}
	}
	return count, nil
}

func (s *stateRepository) ListRequests(ctx context.Context) ([]portaldomain.RequestWithPartner, error) {
	result := make([]portaldomain.RequestWithPartner, 0, len(s.state.requests))
	for _, request := range s.state.requests {
		result = append(result, s.withPartner(request))
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (s *stateRepository) GetRequest(ctx context.Context, id string) (*portaldomain.RequestWithPartner, error) {
	request, ok := s.state.requests[id]
	if !ok {
		return nil, portaldomain.ErrRequestNotFound
	}
	result := s.withPartner(request)
	return &result, nil
}

func (s *stateRepository) CreateRequest(ctx context.Context, request *portaldomain.Request) error {
	if _, ok := s.state.partners[request.PartnerID]; !ok {
		return portaldomain.ErrPartnerReferenceInvalid
	}
	stored := *request
	stored.Partner = nil
	s.state.requests[request.ID] = stored
	return nil
}

func (s *stateRepository) UpdateRequest(ctx context.Context, request *portaldomain.Request) error {
	if _, ok := s.state.requests[request.ID]; !ok {
		return portaldomain.ErrRequestNotFound
	}
	if _, ok := s.state.partners[request.PartnerID]; !ok {
		return portaldomain.ErrPartnerReferenceInvalid
	}
	stored := *request
	stored.Partner = nil
	s.state.requests[request.ID] = stored
	return nil
}

func (s *stateRepository) DeleteRequest(ctx context.Context, id string) (bool, error) {
	if _, ok := s.state.requests[id]; !ok {
		return false, nil
	}
	delete(s.state.requests, id)
	return true, nil
}

func (s *stateRepository) withPartner(request portaldomain.Request) portaldomain.RequestWithPartner {
	result := portaldomain.RequestWithPartner{Request: request}
	if partner, ok := s.state.partners[request.PartnerID]; ok {
		result.PartnerName = partner.Name
	}
	return result
}
