package listings

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tradepost/tradepost/internal/access"
	"github.com/tradepost/tradepost/internal/platform/httpx"
	"github.com/tradepost/tradepost/internal/shared"
)

const maxImageUpload = 10 << 20 // 10 MiB

// Handler wires HTTP endpoints for listings. Every write path resolves
// the listing first (404 wins), then runs the access check, then mutates.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	images    *ImageStore
	validator *validator.Validate
	perPage   int
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, images *ImageStore, perPage int) *Handler {
	if perPage <= 0 {
		perPage = 20
	}
	return &Handler{
		logger:    logger,
		service:   service,
		images:    images,
		validator: validator.New(),
		perPage:   perPage,
	}
}

// MountRoutes registers listing routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.search)
	r.Get("/{id}", h.show)
	r.Post("/", h.create)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/upload_image", h.uploadImage)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	criteria, err := ParseCriteria(r.URL.Query())
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}

	matched, err := h.service.Search(r.Context(), criteria)
	if err != nil {
		h.logger.Error("search listings", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page = parsed
		}
	}
	pagination := shared.NewPagination(page, h.perPage, len(matched))
	from, to := pagination.Slice()

	httpx.JSON(w, http.StatusOK, SearchResponse{
		Count:      pagination.Total,
		Page:       pagination.Page,
		TotalPages: pagination.TotalPages,
		Results:    matched[from:to],
	})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requirePrincipal(w, r); !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	v, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, v)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.requirePrincipal(w, r)
	if !ok {
		return
	}

	var req CreateListingRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, "malformed JSON body"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}

	v, err := h.service.Create(r.Context(), req, principal.ID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, v)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req UpdateListingRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, "malformed JSON body"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}

	if _, ok := h.authorizeEdit(w, r, *principal, id); !ok {
		return
	}

	v, err := h.service.Update(r.Context(), id, req, principal.ID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, v)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if _, ok := h.authorizeEdit(w, r, *principal, id); !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id, principal.ID); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) uploadImage(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	// Same authorization as any other listing mutation.
	existing, ok := h.authorizeEdit(w, r, *principal, id)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxImageUpload); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, "malformed multipart body"))
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, "image file missing"))
		return
	}
	defer file.Close()

	name, err := h.images.Save(file, header.Filename)
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}

	v, err := h.service.SetImage(r.Context(), id, name, principal.ID)
	if err != nil {
		_ = h.images.Remove(name)
		h.respondError(w, err)
		return
	}
	if existing.Image != nil && *existing.Image != name {
		_ = h.images.Remove(*existing.Image)
	}
	httpx.JSON(w, http.StatusOK, v)
}

// authorizeEdit resolves the listing and runs the edit decision, in that
// order: a missing listing is reported as not-found before any
// authorization work, a present one the principal cannot edit as
// forbidden.
func (h *Handler) authorizeEdit(w http.ResponseWriter, r *http.Request, principal access.Principal, id int64) (*ListingView, bool) {
	existing, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return nil, false
	}
	if !access.CanEditListing(principal, existing.AuthorID) {
		httpx.RespondError(w, fmt.Errorf("%w: only the author, a moderator or an admin can edit a listing", httpx.ErrForbidden))
		return nil, false
	}
	return existing, true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid listing id", httpx.ErrValidation))
		return 0, false
	}
	return id, true
}

func (h *Handler) requirePrincipal(w http.ResponseWriter, r *http.Request) (*access.Principal, bool) {
	p := shared.PrincipalFromContext(r.Context())
	if p == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return nil, false
	}
	return p, true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	case errors.Is(err, ErrInvalidCriteria):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
	case errors.Is(err, ErrInvalidReference):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
	default:
		h.logger.Error("listing request failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
