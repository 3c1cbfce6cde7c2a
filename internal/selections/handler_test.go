package selections

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradepost/tradepost/internal/access"
	"github.com/tradepost/tradepost/internal/listings"
	"github.com/tradepost/tradepost/internal/shared"
)

type fakeRepository struct {
	byID      map[int64]Selection
	owners    map[int64]string
	nextID    int64
	updateErr error
}

func newFakeRepository(selections ...Selection) *fakeRepository {
	repo := &fakeRepository{
		byID:   make(map[int64]Selection),
		owners: map[int64]string{5: "alice", 7: "bob"},
		nextID: 1,
	}
	for _, s := range selections {
		repo.byID[s.ID] = s
		if s.ID >= repo.nextID {
			repo.nextID = s.ID + 1
		}
	}
	return repo
}

func (r *fakeRepository) Get(_ context.Context, id int64) (*Selection, error) {
	s, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (r *fakeRepository) OwnerName(_ context.Context, ownerID int64) (string, error) {
	return r.owners[ownerID], nil
}

func (r *fakeRepository) List(_ context.Context) ([]Summary, error) {
	out := make([]Summary, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, Summary{ID: s.ID, Name: s.Name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeRepository) Create(_ context.Context, s Selection) (int64, error) {
	s.ID = r.nextID
	r.nextID++
	r.byID[s.ID] = s
	return s.ID, nil
}

func (r *fakeRepository) Update(_ context.Context, id int64, name *string, items *[]int64) error {
	s, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	if r.updateErr != nil {
		return r.updateErr
	}
	if name != nil {
		s.Name = *name
	}
	if items != nil {
		s.Items = *items
	}
	r.byID[id] = s
	return nil
}

func (r *fakeRepository) Delete(_ context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

type fakeResolver struct{}

func (fakeResolver) ViewsByIDs(_ context.Context, ids []int64) ([]listings.ListingView, error) {
	out := make([]listings.ListingView, 0, len(ids))
	for _, id := range ids {
		v := listings.ListingView{Author: "alice"}
		v.ID = id
		v.Name = "item"
		out = append(out, v)
	}
	return out, nil
}

func newTestRouter(repo Repository) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(logger, NewService(repo, fakeResolver{}, nil))
	r := chi.NewRouter()
	r.Route("/selections", h.MountRoutes)
	return r
}

func asPrincipal(req *http.Request, id int64, role access.Role) *http.Request {
	p := access.Principal{ID: id, Role: role}
	return req.WithContext(shared.ContextWithPrincipal(req.Context(), &p))
}

func TestShowExpandsItemsAndOwner(t *testing.T) {
	router := newTestRouter(newFakeRepository(Selection{
		ID: 1, Name: "Wishlist", OwnerID: 5, Items: []int64{3, 9},
	}))

	req := httptest.NewRequest(http.MethodGet, "/selections/1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var got DetailView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "alice", got.Owner)
	require.Len(t, got.Items, 2)
	assert.Equal(t, int64(3), got.Items[0].ID)
}

func TestShowEmptySelectionSerializesEmptyItems(t *testing.T) {
	router := newTestRouter(newFakeRepository(Selection{ID: 1, Name: "Empty", OwnerID: 5}))

	req := httptest.NewRequest(http.MethodGet, "/selections/1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"items":[]`)
}

func TestUpdateOwnerOnlyDeniesModerator(t *testing.T) {
	// Unlike listings, selections grant no role-based bypass.
	router := newTestRouter(newFakeRepository(Selection{ID: 1, Name: "Wishlist", OwnerID: 5}))

	req := httptest.NewRequest(http.MethodPatch, "/selections/1", strings.NewReader(`{"name":"x"}`))
	req = asPrincipal(req, 7, access.RoleModerator)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestUpdateMissingSelectionBeatsForbidden(t *testing.T) {
	router := newTestRouter(newFakeRepository())

	req := httptest.NewRequest(http.MethodPatch, "/selections/99", strings.NewReader(`{"name":"x"}`))
	req = asPrincipal(req, 7, access.RoleUser)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdateAllowedForOwner(t *testing.T) {
	router := newTestRouter(newFakeRepository(Selection{ID: 1, Name: "Wishlist", OwnerID: 5}))

	req := httptest.NewRequest(http.MethodPatch, "/selections/1", strings.NewReader(`{"items":[2,4]}`))
	req = asPrincipal(req, 5, access.RoleUser)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var got Selection
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, []int64{2, 4}, got.Items)
}

func TestUpdateRejectsUnknownItems(t *testing.T) {
	repo := newFakeRepository(Selection{ID: 1, Name: "Wishlist", OwnerID: 5})
	repo.updateErr = ErrInvalidReference
	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodPatch, "/selections/1", strings.NewReader(`{"items":[999]}`))
	req = asPrincipal(req, 5, access.RoleUser)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateAssignsCallerAsOwner(t *testing.T) {
	repo := newFakeRepository()
	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodPost, "/selections", strings.NewReader(`{"name":"Wishlist","items":[1]}`))
	req = asPrincipal(req, 5, access.RoleUser)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var got Selection
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, int64(5), got.OwnerID)
}

func TestCreateRequiresPrincipal(t *testing.T) {
	router := newTestRouter(newFakeRepository())

	req := httptest.NewRequest(http.MethodPost, "/selections", strings.NewReader(`{"name":"Wishlist"}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestDeleteAllowedForOwnerOnly(t *testing.T) {
	repo := newFakeRepository(Selection{ID: 1, Name: "Wishlist", OwnerID: 5})
	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodDelete, "/selections/1", nil)
	req = asPrincipal(req, 7, access.RoleAdmin)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	req = httptest.NewRequest(http.MethodDelete, "/selections/1", nil)
	req = asPrincipal(req, 5, access.RoleUser)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}
