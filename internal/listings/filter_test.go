package listings

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func view(id int64, name string, price int64, categoryID int64, locations ...string) ListingView {
	return ListingView{
		Listing: Listing{
			ID:         id,
			Name:       name,
			Price:      price,
			CategoryID: categoryID,
		},
		AuthorLocations: locations,
	}
}

func TestParseCriteriaHappyPath(t *testing.T) {
	q := url.Values{}
	q.Add("cat", "1")
	q.Add("cat", "3")
	q.Set("text", "Bike")
	q.Set("location", "berlin")
	q.Set("price_from", "100")
	q.Set("price_to", "500")

	c, err := ParseCriteria(q)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, c.Categories)
	assert.Equal(t, "Bike", c.Text)
	assert.Equal(t, "berlin", c.Location)
	assert.Equal(t, int64(100), c.PriceFrom)
	assert.Equal(t, int64(500), c.PriceTo)
}

func TestParseCriteriaRejectsMalformedInput(t *testing.T) {
	cases := map[string]url.Values{
		"non-integer category":   {"cat": {"bikes"}},
		"non-integer price_from": {"price_from": {"abc"}},
		"non-integer price_to":   {"price_to": {"12.5"}},
		"negative price_from":    {"price_from": {"-1"}},
		"negative price_to":      {"price_to": {"-100"}},
	}
	for name, q := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCriteria(q)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidCriteria)
		})
	}
}

func TestParseCriteriaIgnoresEmptyValues(t *testing.T) {
	q := url.Values{"cat": {""}, "price_from": {""}, "price_to": {""}}
	c, err := ParseCriteria(q)
	require.NoError(t, err)
	assert.Empty(t, c.Categories)
	assert.Zero(t, c.PriceFrom)
	assert.Zero(t, c.PriceTo)
}

func TestComposeOrdersByPriceDescendingStable(t *testing.T) {
	snapshot := []ListingView{
		view(1, "a", 50, 1),
		view(2, "b", 200, 1),
		view(3, "c", 200, 1),
		view(4, "d", 10, 1),
	}

	got := Compose(snapshot, FilterCriteria{})

	ids := make([]int64, 0, len(got))
	for _, v := range got {
		ids = append(ids, v.ID)
	}
	// Equal prices keep insertion order: 2 before 3.
	assert.Equal(t, []int64{2, 3, 1, 4}, ids)
}

func TestComposeCategoriesAreUnionedAcrossIDs(t *testing.T) {
	snapshot := []ListingView{
		view(1, "bike", 100, 1),
		view(2, "sofa", 100, 2),
		view(3, "lamp", 100, 3),
	}

	got := Compose(snapshot, FilterCriteria{Categories: []int64{1, 3}})
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)
}

func TestComposeDimensionsAreIntersected(t *testing.T) {
	snapshot := []ListingView{
		view(1, "City Bike", 150, 1, "Berlin"),
		view(2, "City Bike", 150, 2, "Berlin"),
		view(3, "Racing Bike", 800, 1, "Hamburg"),
		view(4, "Helmet", 150, 1, "Berlin"),
	}

	got := Compose(snapshot, FilterCriteria{
		Categories: []int64{1},
		Text:       "bike",
		Location:   "berlin",
	})
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)
}

func TestComposeTextMatchIsCaseInsensitiveSubstring(t *testing.T) {
	snapshot := []ListingView{
		view(1, "Mountain Bike", 100, 1),
		view(2, "BIKE rack", 100, 1),
		view(3, "Skateboard", 100, 1),
	}

	got := Compose(snapshot, FilterCriteria{Text: "bIkE"})
	require.Len(t, got, 2)
}

func TestComposeLocationMatchesAnyAuthorLocation(t *testing.T) {
	snapshot := []ListingView{
		view(1, "a", 100, 1, "Munich", "Berlin"),
		view(2, "b", 100, 1, "Hamburg"),
		view(3, "c", 100, 1),
	}

	got := Compose(snapshot, FilterCriteria{Location: "berl"})
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)
}

func TestComposePriceBoundsInclusive(t *testing.T) {
	snapshot := []ListingView{
		view(1, "a", 99, 1),
		view(2, "b", 100, 1),
		view(3, "c", 500, 1),
		view(4, "d", 501, 1),
	}

	got := Compose(snapshot, FilterCriteria{PriceFrom: 100, PriceTo: 500})
	require.Len(t, got, 2)
	assert.Equal(t, int64(3), got[0].ID)
	assert.Equal(t, int64(2), got[1].ID)
}

func TestComposeZeroPriceBoundMeansUnbounded(t *testing.T) {
	snapshot := []ListingView{
		view(1, "free", 0, 1),
		view(2, "cheap", 5, 1),
	}

	// price_from=0 cannot exclude anything, free listings included.
	got := Compose(snapshot, FilterCriteria{PriceFrom: 0, PriceTo: 0})
	assert.Len(t, got, 2)
}

func TestComposeIsPureAndRepeatable(t *testing.T) {
	snapshot := []ListingView{
		view(1, "a", 50, 1),
		view(2, "b", 200, 2),
		view(3, "c", 120, 1),
	}
	criteria := FilterCriteria{Categories: []int64{1}}

	first := Compose(snapshot, criteria)
	second := Compose(snapshot, criteria)
	assert.Equal(t, first, second)

	// Input order untouched.
	assert.Equal(t, int64(1), snapshot[0].ID)
	assert.Equal(t, int64(2), snapshot[1].ID)
	assert.Equal(t, int64(3), snapshot[2].ID)
}

func TestComposeEmptySnapshot(t *testing.T) {
	got := Compose(nil, FilterCriteria{Text: "anything"})
	assert.Empty(t, got)
}
