package categories

import (
	"context"
	"errors"
	"strconv"

	"github.com/tradepost/tradepost/internal/shared"
)

// ErrSlugInvalid indicates the slug is unusable after normalization.
var ErrSlugInvalid = errors.New("category slug must keep at least five characters")

// Auditor records category mutations.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service wraps category business rules.
type Service struct {
	repo    Repository
	auditor Auditor
}

// NewService constructs a new Service.
func NewService(repo Repository, auditor Auditor) *Service {
	return &Service{repo: repo, auditor: auditor}
}

// Get returns the category by id.
func (s *Service) Get(ctx context.Context, id int64) (*Category, error) {
	return s.repo.Get(ctx, id)
}

// List returns all categories ordered by name.
func (s *Service) List(ctx context.Context) ([]Category, error) {
	return s.repo.List(ctx)
}

// Create inserts a category with a normalized slug.
func (s *Service) Create(ctx context.Context, req CreateCategoryRequest, actorID int64) (*Category, error) {
	c := Category{
		Name: req.Name,
		Slug: NormalizeSlug(req.Slug),
	}
	if len(c.Slug) < 5 {
		return nil, ErrSlugInvalid
	}

	id, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	c.ID = id
	s.audit(ctx, actorID, "category.create", id, map[string]any{"slug": c.Slug})
	return &c, nil
}

// Update applies a partial update to an existing category.
func (s *Service) Update(ctx context.Context, id int64, req UpdateCategoryRequest, actorID int64) (*Category, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Slug != nil {
		slug := NormalizeSlug(*req.Slug)
		if len(slug) < 5 {
			return nil, ErrSlugInvalid
		}
		existing.Slug = slug
	}

	if err := s.repo.Update(ctx, *existing); err != nil {
		return nil, err
	}
	s.audit(ctx, actorID, "category.update", id, nil)
	return existing, nil
}

// Delete removes the category.
func (s *Service) Delete(ctx context.Context, id int64, actorID int64) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, actorID, "category.delete", id, nil)
	return nil
}

func (s *Service) audit(ctx context.Context, actorID int64, action string, id int64, meta map[string]any) {
	if s.auditor == nil {
		return
	}
	_ = s.auditor.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "category",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
	})
}
