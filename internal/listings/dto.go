package listings

// CreateListingRequest is the payload for posting a new listing. The
// author is taken from the request principal, never from the body.
type CreateListingRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Price       int64   `json:"price" validate:"gte=0"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	IsPublished bool    `json:"is_published"`
	CategoryID  int64   `json:"category_id" validate:"required,gt=0"`
}

// UpdateListingRequest is the payload for a partial listing update.
// Author and image are not updatable here; images go through the upload
// endpoint.
type UpdateListingRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Price       *int64  `json:"price,omitempty" validate:"omitempty,gte=0"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	IsPublished *bool   `json:"is_published,omitempty"`
	CategoryID  *int64  `json:"category_id,omitempty" validate:"omitempty,gt=0"`
}

// SearchResponse is the paginated search result envelope.
type SearchResponse struct {
	Count      int           `json:"count"`
	Page       int           `json:"page"`
	TotalPages int           `json:"total_pages"`
	Results    []ListingView `json:"results"`
}
