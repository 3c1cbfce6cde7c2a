package selections

import (
	"context"
	"strconv"

	"github.com/tradepost/tradepost/internal/listings"
	"github.com/tradepost/tradepost/internal/shared"
)

// ListingResolver expands listing ids into full views in one query.
type ListingResolver interface {
	ViewsByIDs(ctx context.Context, ids []int64) ([]listings.ListingView, error)
}

// Auditor records selection mutations.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service wraps selection business rules. Authorization decisions stay in
// the handlers.
type Service struct {
	repo     Repository
	resolver ListingResolver
	auditor  Auditor
}

// NewService constructs a new Service.
func NewService(repo Repository, resolver ListingResolver, auditor Auditor) *Service {
	return &Service{repo: repo, resolver: resolver, auditor: auditor}
}

// Get returns the selection by id with raw item ids.
func (s *Service) Get(ctx context.Context, id int64) (*Selection, error) {
	return s.repo.Get(ctx, id)
}

// List returns all selections as compact summaries.
func (s *Service) List(ctx context.Context) ([]Summary, error) {
	return s.repo.List(ctx)
}

// Detail returns the selection with items expanded into listing views and
// the owner's username resolved.
func (s *Service) Detail(ctx context.Context, id int64) (*DetailView, error) {
	sel, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	owner, err := s.repo.OwnerName(ctx, sel.OwnerID)
	if err != nil {
		return nil, err
	}

	items, err := s.resolver.ViewsByIDs(ctx, sel.Items)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []listings.ListingView{}
	}

	return &DetailView{
		ID:      sel.ID,
		Name:    sel.Name,
		OwnerID: sel.OwnerID,
		Owner:   owner,
		Items:   items,
	}, nil
}

// Create inserts a selection owned by ownerID.
func (s *Service) Create(ctx context.Context, req CreateSelectionRequest, ownerID int64) (*Selection, error) {
	id, err := s.repo.Create(ctx, Selection{
		Name:    req.Name,
		OwnerID: ownerID,
		Items:   req.Items,
	})
	if err != nil {
		return nil, err
	}
	s.audit(ctx, ownerID, "selection.create", id, map[string]any{"items": len(req.Items)})
	return s.repo.Get(ctx, id)
}

// Update applies a partial update to an existing selection.
func (s *Service) Update(ctx context.Context, id int64, req UpdateSelectionRequest, actorID int64) (*Selection, error) {
	if err := s.repo.Update(ctx, id, req.Name, req.Items); err != nil {
		return nil, err
	}
	s.audit(ctx, actorID, "selection.update", id, nil)
	return s.repo.Get(ctx, id)
}

// Delete removes the selection and its membership rows.
func (s *Service) Delete(ctx context.Context, id int64, actorID int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, actorID, "selection.delete", id, nil)
	return nil
}

func (s *Service) audit(ctx context.Context, actorID int64, action string, id int64, meta map[string]any) {
	if s.auditor == nil {
		return
	}
	_ = s.auditor.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "selection",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
	})
}
