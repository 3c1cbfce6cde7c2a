package listings

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradepost/tradepost/internal/access"
	"github.com/tradepost/tradepost/internal/shared"
)

func newTestHandler(repo Repository) *Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(logger, NewService(repo, nil, nil), nil, 2)
}

func newTestRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Route("/ads", h.MountRoutes)
	return r
}

func asPrincipal(req *http.Request, id int64, role access.Role) *http.Request {
	p := access.Principal{ID: id, Role: role}
	return req.WithContext(shared.ContextWithPrincipal(req.Context(), &p))
}

func ownedView(id int64, name string, price int64, authorID int64) ListingView {
	v := view(id, name, price, 1)
	v.AuthorID = authorID
	return v
}

func TestSearchEndpointPaginatesResults(t *testing.T) {
	router := newTestRouter(newTestHandler(newFakeRepository(
		view(1, "a", 50, 1),
		view(2, "b", 200, 1),
		view(3, "c", 120, 1),
	)))

	req := httptest.NewRequest(http.MethodGet, "/ads?page=2", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp SearchResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Count)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 2, resp.TotalPages)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, int64(1), resp.Results[0].ID)
}

func TestSearchEndpointIsPublic(t *testing.T) {
	router := newTestRouter(newTestHandler(newFakeRepository()))

	req := httptest.NewRequest(http.MethodGet, "/ads", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestSearchEndpointRejectsMalformedPrice(t *testing.T) {
	router := newTestRouter(newTestHandler(newFakeRepository()))

	req := httptest.NewRequest(http.MethodGet, "/ads?price_from=cheap", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestShowRequiresPrincipal(t *testing.T) {
	router := newTestRouter(newTestHandler(newFakeRepository(view(1, "a", 50, 1))))

	req := httptest.NewRequest(http.MethodGet, "/ads/1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestUpdateMissingListingBeatsForbidden(t *testing.T) {
	// The listing does not exist and the caller could not have edited it
	// anyway; not-found must win.
	router := newTestRouter(newTestHandler(newFakeRepository()))

	req := httptest.NewRequest(http.MethodPatch, "/ads/99", strings.NewReader(`{"name":"x"}`))
	req = asPrincipal(req, 5, access.RoleUser)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdateForbiddenForForeignListing(t *testing.T) {
	router := newTestRouter(newTestHandler(newFakeRepository(ownedView(1, "a", 50, 7))))

	req := httptest.NewRequest(http.MethodPatch, "/ads/1", strings.NewReader(`{"name":"x"}`))
	req = asPrincipal(req, 5, access.RoleUser)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestUpdateAllowedForModerator(t *testing.T) {
	router := newTestRouter(newTestHandler(newFakeRepository(ownedView(1, "a", 50, 7))))

	req := httptest.NewRequest(http.MethodPatch, "/ads/1", strings.NewReader(`{"name":"renamed"}`))
	req = asPrincipal(req, 5, access.RoleModerator)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var got ListingView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "renamed", got.Name)
}

func TestDeleteAllowedForAuthor(t *testing.T) {
	repo := newFakeRepository(ownedView(1, "a", 50, 5))
	router := newTestRouter(newTestHandler(repo))

	req := httptest.NewRequest(http.MethodDelete, "/ads/1", nil)
	req = asPrincipal(req, 5, access.RoleUser)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	_, err := repo.Get(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateValidatesPayload(t *testing.T) {
	router := newTestRouter(newTestHandler(newFakeRepository()))

	req := httptest.NewRequest(http.MethodPost, "/ads", strings.NewReader(`{"name":"","price":-5,"category_id":0}`))
	req = asPrincipal(req, 5, access.RoleUser)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateRejectsUnknownCategory(t *testing.T) {
	repo := newFakeRepository()
	repo.createErr = ErrInvalidReference
	router := newTestRouter(newTestHandler(repo))

	req := httptest.NewRequest(http.MethodPost, "/ads", strings.NewReader(`{"name":"City Bike","price":150,"category_id":999}`))
	req = asPrincipal(req, 5, access.RoleUser)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateAssignsCallerAsAuthor(t *testing.T) {
	repo := newFakeRepository()
	router := newTestRouter(newTestHandler(repo))

	req := httptest.NewRequest(http.MethodPost, "/ads", strings.NewReader(`{"name":"City Bike","price":150,"category_id":1}`))
	req = asPrincipal(req, 5, access.RoleUser)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var got ListingView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, int64(5), got.AuthorID)
}
