package tracking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

type fakeQueue struct {
	enqueued int
	err      error
}

func (f *fakeQueue) EnqueueTrackingWarmup(ctx context.Context) (*asynq.TaskInfo, error) {
	f.enqueued++
	if f.err != nil {
		return nil, f.err
	}
	return &asynq.TaskInfo{ID: "task-1", Queue: "default"}, nil
}

func newHandlerServer(t *testing.T, queue WarmupQueue) *httptest.Server {
	t.Helper()
	svc, _ := testService(t, newFakeAPI())
	handler := NewHandler(nil, svc, queue)

	r := chi.NewRouter()
	r.Route("/track", handler.MountRoutes)
	r.Route("/admin/tracking", handler.MountAdminRoutes)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestHandlerLookup(t *testing.T) {
	srv := newHandlerServer(t, nil)

	resp, err := http.Get(srv.URL + "/track/ORD-2026-007")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data Snapshot `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "ORD-2026-007", body.Data.Number)
	require.Equal(t, 65, body.Data.Percentage)
}

func TestHandlerWarmupEnqueues(t *testing.T) {
	queue := &fakeQueue{}
	srv := newHandlerServer(t, queue)

	resp, err := http.Post(srv.URL+"/admin/tracking/warmup", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.Equal(t, 1, queue.enqueued)

	var body struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "task-1", body.Data["taskId"])
}

func TestHandlerWarmupWithoutQueue(t *testing.T) {
	srv := newHandlerServer(t, nil)

	resp, err := http.Post(srv.URL+"/admin/tracking/warmup", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
