package selections

import "github.com/tradepost/tradepost/internal/listings"

// Selection is a named bundle of listing ids owned by exactly one user.
// The owner never changes after creation; items carry set semantics.
type Selection struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	OwnerID int64   `json:"owner_id"`
	Items   []int64 `json:"items"`
}

// Summary is the compact shape used for selection listings.
type Summary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// DetailView expands the items into full listing views and resolves the
// owner's display identity.
type DetailView struct {
	ID      int64                  `json:"id"`
	Name    string                 `json:"name"`
	OwnerID int64                  `json:"owner_id"`
	Owner   string                 `json:"owner"`
	Items   []listings.ListingView `json:"items"`
}
