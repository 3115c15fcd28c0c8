// Package service orchestrates the CRM core: it validates commands against
// the pure domain rules, applies optimistic mutations to the entity store,
// and publishes domain events. All mutations return before any remote I/O;
// persistence rides the store's write-behind queue.
package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"salescrm_backend/internal/crm/domain"
	"salescrm_backend/internal/crm/transport"
	"salescrm_backend/internal/events"
	"salescrm_backend/internal/store"
	"salescrm_backend/platform/apperr"
	"salescrm_backend/platform/logger"
	"salescrm_backend/platform/phone"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// ReminderScheduler enqueues a due-date reminder for a lead's follow-up.
// The asynq-backed implementation lives in internal/reminders.
type ReminderScheduler interface {
	ScheduleFollowUp(ctx context.Context, clientID uuid.UUID, at time.Time) error
}

// Stores bundles the entity caches the service operates on. They are owned
// by the composition root and injected here.
type Stores struct {
	Clients    *store.Store[domain.Client]
	Reps       *store.Store[domain.Representative]
	Activities *store.Store[domain.Activity]
	Targets    *store.Store[domain.MonthlyTarget]
}

// Service is the CRM application service.
type Service struct {
	clients    *store.Store[domain.Client]
	reps       *store.Store[domain.Representative]
	activities *store.Store[domain.Activity]
	targets    *store.Store[domain.MonthlyTarget]

	brands    map[uuid.UUID]domain.Brand
	bus       events.Bus
	reminders ReminderScheduler
	log       *logger.Logger

	// now is injectable for date-boundary tests.
	now func() time.Time

	// assignMu serializes all assignment commands over the client
	// collection. Auto-assign's leveling guarantee only holds when no other
	// assignment interleaves with it.
	assignMu sync.Mutex

	// loadGroup collapses concurrent rep-load recomputations into one.
	loadGroup singleflight.Group
}

// New creates the service. reminders may be nil when no queue is configured;
// follow-ups still work, they just produce no reminder tasks.
func New(stores Stores, brands []domain.Brand, bus events.Bus, reminders ReminderScheduler, log *logger.Logger) *Service {
	brandIndex := make(map[uuid.UUID]domain.Brand, len(brands))
	for _, b := range brands {
		brandIndex[b.ID] = b
	}

	return &Service{
		clients:    stores.Clients,
		reps:       stores.Reps,
		activities: stores.Activities,
		targets:    stores.Targets,
		brands:     brandIndex,
		bus:        bus,
		reminders:  reminders,
		log:        log,
		now:        time.Now,
	}
}

// =============================================================================
// Client CRUD
// =============================================================================

// ClientPage is one visibility-filtered page of leads.
type ClientPage struct {
	Items []transport.ClientResponse
	Total int
	Seq   uint64
}

// ListClients returns a server-side filtered, paginated page. The sequence
// tag lets the caller discard responses that resolve out of request order.
func (s *Service) ListClients(actor domain.Actor, q transport.ListClientsQuery) (ClientPage, error) {
	seq := s.clients.NextListSeq()

	filter, err := s.buildClientFilter(actor, q)
	if err != nil {
		return ClientPage{}, err
	}

	items, total := s.clients.List(filter, q.Page, q.PageSize)
	return ClientPage{
		Items: transport.ToClientResponses(items, s.now()),
		Total: total,
		Seq:   seq,
	}, nil
}

func (s *Service) buildClientFilter(actor domain.Actor, q transport.ListClientsQuery) (func(domain.Client) bool, error) {
	var repID *uuid.UUID
	if q.RepID != "" {
		parsed, err := uuid.Parse(q.RepID)
		if err != nil {
			return nil, apperr.Validation("repId", "invalid rep id")
		}
		repID = &parsed
	}

	var bucket domain.Status
	if q.Status != "" {
		bucket = domain.Status(q.Status)
		if !domain.IsKnownStatus(bucket) {
			return nil, apperr.Validation("status", "unknown status")
		}
	}

	search := strings.ToLower(strings.TrimSpace(q.Search))

	return func(c domain.Client) bool {
		if !domain.CanView(actor, c) {
			return false
		}
		// Status filters match the display bucket, not stored status, so an
		// unassigned qualifying lead answers a "new" query.
		if bucket != "" && domain.PipelineBucket(c) != bucket {
			return false
		}
		if q.Province != "" && c.Province != q.Province {
			return false
		}
		if repID != nil && (c.AssignedTo == nil || *c.AssignedTo != *repID) {
			return false
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(c.Name), search) &&
			!strings.Contains(c.Phone, search) {
			return false
		}
		return true
	}, nil
}

// GetClient returns one lead the actor may see.
func (s *Service) GetClient(actor domain.Actor, id uuid.UUID) (transport.ClientResponse, error) {
	c, ok := s.clients.Get(id)
	if !ok || !domain.CanView(actor, c) {
		return transport.ClientResponse{}, apperr.NotFound("client not found")
	}
	return transport.ToClientResponse(c, s.now()), nil
}

// CreateClient validates, inserts into the cache, and enqueues persistence.
// A phone number matching an existing cached client is rejected with a
// duplicate error naming the conflict.
func (s *Service) CreateClient(ctx context.Context, actor domain.Actor, req transport.CreateClientRequest) (transport.ClientResponse, error) {
	if _, ok := s.brands[req.BrandID]; !ok {
		return transport.ClientResponse{}, apperr.Validation("brandId", "unknown brand")
	}
	if !domain.CanCreateIn(actor, req.Province, req.BrandID) {
		return transport.ClientResponse{}, apperr.Forbidden("province or brand outside your territory")
	}

	normalized := phone.NormalizeE164(req.Phone)
	if existing, found := s.findByPhone(normalized, uuid.Nil); found {
		return transport.ClientResponse{}, apperr.Duplicate(
			"a client with this phone number already exists", existing.Name)
	}

	nowTs := s.now()
	c := domain.Client{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(req.Name),
		Phone:     normalized,
		Email:     req.Email,
		Address:   req.Address,
		Instagram: req.Instagram,
		MapsLink:  req.MapsLink,
		Status:    domain.StatusNew,
		Province:  req.Province,
		BrandID:   req.BrandID,
		CreatedAt: nowTs,
		UpdatedAt: nowTs,
	}

	// Lead creation is one of the two flows that set contact recency.
	c.LastInteractionAt = &nowTs

	if req.AssignedTo.Set && req.AssignedTo.Value != nil {
		if !domain.CanAssign(actor) {
			return transport.ClientResponse{}, apperr.Forbidden("only admins may assign leads")
		}
		if _, ok := s.reps.Get(*req.AssignedTo.Value); !ok {
			return transport.ClientResponse{}, apperr.Validation("assignedTo", "unknown representative")
		}
		c.AssignedTo = req.AssignedTo.Value
	}

	s.clients.Create(c)

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent:  events.NewBaseEvent(),
		ClientID:   c.ID,
		Name:       c.Name,
		Province:   c.Province,
		BrandID:    c.BrandID,
		AssignedTo: c.AssignedTo,
	})

	return transport.ToClientResponse(c, nowTs), nil
}

// UpdateClient merges a field patch into the cache and enqueues persistence
// of only the supplied fields. An unknown id is a no-op success.
func (s *Service) UpdateClient(ctx context.Context, actor domain.Actor, id uuid.UUID, req transport.UpdateClientRequest) (transport.ClientResponse, error) {
	current, ok := s.clients.Get(id)
	if ok && !domain.CanMutate(actor, current) {
		return transport.ClientResponse{}, apperr.NotFound("client not found")
	}

	patch := map[string]any{}
	var normalizedPhone string

	if req.Name.Set {
		if req.Name.Value == nil || strings.TrimSpace(*req.Name.Value) == "" {
			return transport.ClientResponse{}, apperr.Validation("name", "name cannot be cleared")
		}
		patch["name"] = strings.TrimSpace(*req.Name.Value)
	}
	if req.Phone.Set {
		if req.Phone.Value == nil || strings.TrimSpace(*req.Phone.Value) == "" {
			return transport.ClientResponse{}, apperr.Validation("phone", "phone cannot be cleared")
		}
		normalizedPhone = phone.NormalizeE164(*req.Phone.Value)
		if existing, found := s.findByPhone(normalizedPhone, id); found {
			return transport.ClientResponse{}, apperr.Duplicate(
				"a client with this phone number already exists", existing.Name)
		}
		patch["phone"] = normalizedPhone
	}
	if req.Email.Set {
		patch["email"] = stringOrEmpty(req.Email.Value)
	}
	if req.Address.Set {
		patch["address"] = stringOrEmpty(req.Address.Value)
	}
	if req.Instagram.Set {
		patch["instagram"] = stringOrEmpty(req.Instagram.Value)
	}
	if req.MapsLink.Set {
		patch["maps_link"] = stringOrEmpty(req.MapsLink.Value)
	}
	if req.Province.Set {
		if req.Province.Value == nil || *req.Province.Value == "" {
			return transport.ClientResponse{}, apperr.Validation("province", "province cannot be cleared")
		}
		patch["province"] = *req.Province.Value
	}
	if req.BrandID.Set {
		if req.BrandID.Value == nil {
			return transport.ClientResponse{}, apperr.Validation("brandId", "brand cannot be cleared")
		}
		if _, ok := s.brands[*req.BrandID.Value]; !ok {
			return transport.ClientResponse{}, apperr.Validation("brandId", "unknown brand")
		}
		patch["brand_id"] = *req.BrandID.Value
	}

	updated, found := s.clients.Update(id, func(c domain.Client) domain.Client {
		if v, ok := patch["name"]; ok {
			c.Name = v.(string)
		}
		if normalizedPhone != "" {
			c.Phone = normalizedPhone
		}
		if req.Email.Set {
			c.Email = stringOrEmpty(req.Email.Value)
		}
		if req.Address.Set {
			c.Address = stringOrEmpty(req.Address.Value)
		}
		if req.Instagram.Set {
			c.Instagram = stringOrEmpty(req.Instagram.Value)
		}
		if req.MapsLink.Set {
			c.MapsLink = stringOrEmpty(req.MapsLink.Value)
		}
		if req.Province.Set {
			c.Province = *req.Province.Value
		}
		if req.BrandID.Set {
			c.BrandID = *req.BrandID.Value
		}
		c.UpdatedAt = s.now()
		return c
	}, patch)
	if !found {
		// Idempotent: updating an unknown id is treated as success.
		return transport.ClientResponse{}, nil
	}

	return transport.ToClientResponse(updated, s.now()), nil
}

// DeleteClient removes a lead from the cache and enqueues the remote delete.
// Unknown ids succeed.
func (s *Service) DeleteClient(_ context.Context, actor domain.Actor, id uuid.UUID) error {
	if !domain.CanAssign(actor) {
		return apperr.Forbidden("only admins may delete clients")
	}
	s.clients.Delete(id)
	return nil
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Service) findByPhone(normalized string, excludeID uuid.UUID) (domain.Client, bool) {
	return s.clients.Find(func(c domain.Client) bool {
		return c.ID != excludeID && c.Phone == normalized
	})
}

func (s *Service) actorView(actor domain.Actor) []domain.Client {
	return s.clients.Where(func(c domain.Client) bool {
		return domain.CanView(actor, c)
	})
}

func stringOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
