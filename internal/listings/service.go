package listings

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tradepost/tradepost/internal/shared"
)

// Auditor records listing mutations.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service wraps listing business rules. Authorization decisions stay in
// the handlers; the service assumes the caller already holds permission.
type Service struct {
	repo    Repository
	cache   *Cache
	auditor Auditor
}

// NewService constructs a new Service.
func NewService(repo Repository, cache *Cache, auditor Auditor) *Service {
	return &Service{repo: repo, cache: cache, auditor: auditor}
}

// Get returns the listing view by id.
func (s *Service) Get(ctx context.Context, id int64) (*ListingView, error) {
	return s.repo.Get(ctx, id)
}

// Search composes the filter criteria over the current catalog snapshot.
// The snapshot is read once; composition never touches the store again.
func (s *Service) Search(ctx context.Context, criteria FilterCriteria) ([]ListingView, error) {
	snapshot, err := s.cache.Fetch(ctx, s.repo.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("listings: search: %w", err)
	}
	return Compose(snapshot, criteria), nil
}

// Create inserts a listing authored by authorID.
func (s *Service) Create(ctx context.Context, req CreateListingRequest, authorID int64) (*ListingView, error) {
	id, err := s.repo.Create(ctx, Listing{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		IsPublished: req.IsPublished,
		AuthorID:    authorID,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	s.audit(ctx, authorID, "listing.create", id, map[string]any{"name": req.Name})
	return s.repo.Get(ctx, id)
}

// Update applies a partial update to an existing listing.
func (s *Service) Update(ctx context.Context, id int64, req UpdateListingRequest, actorID int64) (*ListingView, error) {
	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.IsPublished != nil {
		updates["is_published"] = *req.IsPublished
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, err
		}
		s.cache.Invalidate(ctx)
		s.audit(ctx, actorID, "listing.update", id, nil)
	}
	return s.repo.Get(ctx, id)
}

// SetImage records the stored image reference for the listing.
func (s *Service) SetImage(ctx context.Context, id int64, image string, actorID int64) (*ListingView, error) {
	if err := s.repo.SetImage(ctx, id, image); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	s.audit(ctx, actorID, "listing.upload_image", id, map[string]any{"image": image})
	return s.repo.Get(ctx, id)
}

// Delete removes the listing.
func (s *Service) Delete(ctx context.Context, id int64, actorID int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	s.audit(ctx, actorID, "listing.delete", id, nil)
	return nil
}

// WarmCatalog refreshes the snapshot cache. Used by the background worker.
func (s *Service) WarmCatalog(ctx context.Context) (int, error) {
	snapshot, err := s.repo.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	s.cache.Invalidate(ctx)
	if _, err := s.cache.Fetch(ctx, func(context.Context) ([]ListingView, error) {
		return snapshot, nil
	}); err != nil {
		return 0, err
	}
	return len(snapshot), nil
}

func (s *Service) audit(ctx context.Context, actorID int64, action string, id int64, meta map[string]any) {
	if s.auditor == nil {
		return
	}
	_ = s.auditor.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "listing",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
	})
}
