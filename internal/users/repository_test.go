package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttachLocationsCoversEveryUser(t *testing.T) {
	list := []User{{ID: 1, Username: "alice"}, {ID: 2, Username: "bob"}}
	byUser := map[int64][]Location{
		1: {{ID: 10, Name: "Berlin"}},
	}

	attachLocations(list, byUser)

	assert.Equal(t, []Location{{ID: 10, Name: "Berlin"}}, list[0].Locations)
	assert.NotNil(t, list[1].Locations)
	assert.Empty(t, list[1].Locations)
}

func TestAttachLocationsHandlesEmptyInput(t *testing.T) {
	var list []User
	attachLocations(list, nil)
	assert.Empty(t, list)
}
