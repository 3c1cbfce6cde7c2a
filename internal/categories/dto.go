package categories

// CreateCategoryRequest is the payload for creating a category.
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,max=120"`
	Slug string `json:"slug" validate:"required,min=5,max=60"`
}

// UpdateCategoryRequest is the payload for a partial category update.
type UpdateCategoryRequest struct {
	Name *string `json:"name,omitempty" validate:"omitempty,max=120"`
	Slug *string `json:"slug,omitempty" validate:"omitempty,min=5,max=60"`
}
