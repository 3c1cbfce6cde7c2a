package jobs

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/tradepost/tradepost/internal/access"
	"github.com/tradepost/tradepost/internal/shared"
)

type recordingEnqueuer struct {
	reasons []string
	err     error
}

func (e *recordingEnqueuer) EnqueueCatalogWarmup(_ context.Context, reason string) (*asynq.TaskInfo, error) {
	if e.err != nil {
		return nil, e.err
	}
	e.reasons = append(e.reasons, reason)
	return &asynq.TaskInfo{ID: "t-1", Type: TaskCatalogWarmup}, nil
}

func newWarmupRouter(enq WarmupEnqueuer) chi.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(nil, enq, logger)
	r := chi.NewRouter()
	r.Route("/jobs", h.MountRoutes)
	return r
}

func warmupRequest(p *access.Principal) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/jobs/warmup", nil)
	if p != nil {
		req = req.WithContext(shared.ContextWithPrincipal(req.Context(), p))
	}
	return req
}

func TestWarmupRequiresPrincipal(t *testing.T) {
	enq := &recordingEnqueuer{}
	router := newWarmupRouter(enq)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, warmupRequest(nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Empty(t, enq.reasons)
}

func TestWarmupRejectsRegularUsers(t *testing.T) {
	enq := &recordingEnqueuer{}
	router := newWarmupRouter(enq)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, warmupRequest(&access.Principal{ID: 4, Role: access.RoleUser}))

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Empty(t, enq.reasons)
}

func TestWarmupEnqueuesForStaff(t *testing.T) {
	enq := &recordingEnqueuer{}
	router := newWarmupRouter(enq)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, warmupRequest(&access.Principal{ID: 2, Role: access.RoleModerator}))

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, []string{"manual"}, enq.reasons)
	require.JSONEq(t, `{"task":"catalog:warmup","id":"t-1"}`, rec.Body.String())
}
