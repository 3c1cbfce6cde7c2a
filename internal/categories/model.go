package categories

// Category classifies listings. Slugs are unique and at least five
// characters long.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}
