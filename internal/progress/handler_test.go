package progress

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/zumar-garment/zumar-orderdesk/internal/shared"
	"github.com/zumar-garment/zumar-orderdesk/internal/upstream"
)

func newTestServer(t *testing.T, api *fakeAPI) (*httptest.Server, *Manager) {
	t.Helper()
	manager := NewManager(api, SettlePolicy{}, nil)
	handler := NewHandler(nil, manager, shared.NewActionTrail(nil, 16))

	r := chi.NewRouter()
	r.Route("/progress", handler.MountRoutes)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	// Pin the clock so the deadline guards see a fixed now.
	manager.ForOrder(7).now = func() time.Time { return wibDate(2026, 8, 1) }
	return srv, manager
}

func getJSON(t *testing.T, url string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func postJSON(t *testing.T, url, payload string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestHandlerTree(t *testing.T) {
	srv, _ := newTestServer(t, newFakeAPI())

	status, body := getJSON(t, srv.URL+"/progress/7/tree")
	require.Equal(t, http.StatusOK, status)

	data := body["data"].(map[string]any)
	order := data["order"].(map[string]any)
	require.EqualValues(t, 7, order["id"])
	require.Equal(t, "Order Dibuat/Diproses", order["approvalStatusLabel"])
	require.Len(t, data["stages"], 2)

	status, _ = getJSON(t, srv.URL+"/progress/abc/tree")
	require.Equal(t, http.StatusBadRequest, status)
}

func TestHandlerAddItem(t *testing.T) {
	srv, _ := newTestServer(t, newFakeAPI())

	// Load the tree first; mutations validate against the cache.
	status, _ := getJSON(t, srv.URL+"/progress/7/tree")
	require.Equal(t, http.StatusOK, status)

	// Bare datetime-local input is interpreted in WIB.
	status, body := postJSON(t, srv.URL+"/progress/7/items",
		`{"mainId":1,"orderItemSizeId":101,"workerId":"w1","amount":40,"deadlineAt":"2026-09-01T12:00"}`)
	require.Equal(t, http.StatusOK, status)

	data := body["data"].(map[string]any)
	stages := data["stages"].([]any)
	items := stages[0].(map[string]any)["items"].([]any)
	require.Len(t, items, 1)
}

func TestHandlerAddItemErrors(t *testing.T) {
	api := newFakeAPI()
	srv, _ := newTestServer(t, api)

	status, _ := getJSON(t, srv.URL+"/progress/7/tree")
	require.Equal(t, http.StatusOK, status)

	// Missing fields fail request validation before the domain sees it.
	status, body := postJSON(t, srv.URL+"/progress/7/items", `{"mainId":1}`)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "Validation Failed", body["title"])

	status, _ = postJSON(t, srv.URL+"/progress/7/items", `{not json`)
	require.Equal(t, http.StatusBadRequest, status)

	status, body = postJSON(t, srv.URL+"/progress/7/items",
		`{"mainId":1,"orderItemSizeId":101,"workerId":"w1","amount":40,"deadlineAt":"besok"}`)
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, body["detail"], "deadline")
	require.Zero(t, api.createItemCalls)
}

func TestHandlerStateConflictMapsTo409(t *testing.T) {
	api := newFakeAPI()
	api.order.ApprovalStatus = 1
	srv, _ := newTestServer(t, api)

	status, _ := getJSON(t, srv.URL+"/progress/7/tree")
	require.Equal(t, http.StatusOK, status)

	status, body := postJSON(t, srv.URL+"/progress/7/items",
		`{"mainId":1,"orderItemSizeId":101,"workerId":"w1","amount":40,"deadlineAt":"2026-09-01T12:00"}`)
	require.Equal(t, http.StatusConflict, status)
	require.Contains(t, body["detail"], "Order Dibuat/Diproses")
}

func TestHandlerDeleteDetail(t *testing.T) {
	api := newFakeAPI()
	api.itemsByMain[1] = []upstream.ProgressItem{
		{ID: 10, MainID: 1, OrderItemSizeID: 101, WorkerID: "w1", Amount: 40},
	}
	api.detailsByItem[10] = []upstream.ProgressDetail{{ID: 20, ProgressID: 10, Amount: 15}}
	srv, _ := newTestServer(t, api)

	status, _ := getJSON(t, srv.URL+"/progress/7/tree")
	require.Equal(t, http.StatusOK, status)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/progress/7/details/20", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestManagerEvictForcesColdAggregator(t *testing.T) {
	manager := NewManager(newFakeAPI(), SettlePolicy{}, nil)

	first := manager.ForOrder(7)
	require.Same(t, first, manager.ForOrder(7))

	manager.Evict(7)
	require.NotSame(t, first, manager.ForOrder(7))
}

func TestHandlerEvictCache(t *testing.T) {
	srv, manager := newTestServer(t, newFakeAPI())

	status, _ := getJSON(t, srv.URL+"/progress/7/tree")
	require.Equal(t, http.StatusOK, status)
	warm := manager.ForOrder(7)
	require.NotNil(t, warm.Snapshot())

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/progress/7/cache", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// The next visit starts from a cold aggregator.
	require.NotSame(t, warm, manager.ForOrder(7))
	require.Nil(t, manager.ForOrder(7).Snapshot())
}
