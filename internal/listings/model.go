package listings

import "time"

// Listing is a single classified ad owned by its author. The author never
// changes after creation.
type Listing struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Price       int64     `json:"price"`
	Description *string   `json:"description,omitempty"`
	IsPublished bool      `json:"is_published"`
	Image       *string   `json:"image,omitempty"`
	AuthorID    int64     `json:"author_id"`
	CategoryID  int64     `json:"category_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListingView is a listing with its author and category display identity
// already resolved, so consumers never need a second lookup. The author's
// location names ride along for filtering and are not serialized.
type ListingView struct {
	Listing

	Author          string   `json:"author"`
	Category        string   `json:"category,omitempty"`
	AuthorLocations []string `json:"-"`
}
