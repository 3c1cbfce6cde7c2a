package selections

// CreateSelectionRequest is the payload for creating a selection. The
// owner is taken from the request principal, never from the body.
type CreateSelectionRequest struct {
	Name  string  `json:"name" validate:"required,max=200"`
	Items []int64 `json:"items" validate:"dive,gt=0"`
}

// UpdateSelectionRequest is the payload for a partial selection update.
// A nil Items leaves membership alone; an empty slice clears it.
type UpdateSelectionRequest struct {
	Name  *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	Items *[]int64 `json:"items,omitempty" validate:"omitempty,dive,gt=0"`
}
