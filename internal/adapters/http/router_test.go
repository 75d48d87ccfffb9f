package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/TheOgre365/equip-track/internal/adapters/db/sqlite"
	"github.com/TheOgre365/equip-track/internal/application"
	"github.com/TheOgre365/equip-track/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	t          *testing.T
	handler    http.Handler
	service    *application.InventoryService
	workspaces *application.Workspaces
	cookie     *http.Cookie
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "http.db"))
	require.NoError(t, err)
	require.NoError(t, sqlite.RunMigrations(ctx, db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	service := application.NewInventoryService(sqlite.NewInventoryRepository(db))
	workspaces := application.NewWorkspaces(service)
	return &testServer{
		t:          t,
		handler:    NewRouter(service, workspaces, slog.New(slog.DiscardHandler)),
		service:    service,
		workspaces: workspaces,
	}
}

func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var payload string
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		payload = string(raw)
	}
	req := httptest.NewRequest(method, path, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.Name == workspaceCookieName {
			s.cookie = c
		}
	}
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestAPIDeployAndCheckIn(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/employees", map[string]any{"full_name": "Jane Doe", "role": "Engineer"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/assets", map[string]any{
		"name": "MacBook Pro", "type": "Laptop", "status": "In Use", "assigned_to": "Jane Doe", "serial_number": "SN-1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	asset := decode[domain.Asset](t, rec)
	assert.Equal(t, "Jane Doe", asset.AssignedTo)
	require.NotNil(t, asset.AssignedEmployeeID)

	rec = s.do(http.MethodPost, "/api/assets/"+itoa(asset.ID)+"/checkin", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	returned := decode[domain.Asset](t, rec)
	assert.Equal(t, domain.StatusAvailable, returned.Status)
	assert.Empty(t, returned.AssignedTo)

	rec = s.do(http.MethodGet, "/api/assets/"+itoa(asset.ID)+"/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[struct {
		Items []domain.HistoryEvent `json:"items"`
	}](t, rec)
	require.Len(t, history.Items, 1)
	assert.Equal(t, domain.ActionReturned, history.Items[0].Action)
	assert.Equal(t, "Returned from Jane Doe", history.Items[0].Details)

	rec = s.do(http.MethodGet, "/api/summary", nil)
	summary := decode[domain.Summary](t, rec)
	assert.Equal(t, domain.Summary{Total: 1, Available: 1}, summary)
}

func TestAPIErrorStatuses(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/assets/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/api/assets/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/assets", map[string]any{"name": "X", "type": "Laptop", "status": "In Use", "assigned_to": "Nobody"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Nobody")

	rec = s.do(http.MethodDelete, "/api/employees/42", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPIKeyboardNeverAssigned(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodPost, "/api/employees", map[string]any{"full_name": "Jane Doe"})

	rec := s.do(http.MethodPost, "/api/assets", map[string]any{
		"name": "MX Keys", "type": "Keyboard", "status": "In Use", "assigned_to": "Jane Doe",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	asset := decode[domain.Asset](t, rec)
	assert.Empty(t, asset.AssignedTo)
	assert.Nil(t, asset.AssignedEmployeeID)
}

func TestGUINavigationAndFilter(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	_, err := s.service.SaveAsset(ctx, application.AssetForm{Name: "ThinkPad", Type: "Laptop", Status: "Available", SerialNumber: "TP-1"})
	require.NoError(t, err)
	_, err = s.service.SaveAsset(ctx, application.AssetForm{Name: "MacBook", Type: "Laptop", Status: "Available"})
	require.NoError(t, err)

	rec := s.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, s.cookie)
	assert.Contains(t, rec.Body.String(), `id="sidebar"`)
	assert.Equal(t, 1, s.workspaces.Len())

	rec = s.do(http.MethodPost, "/ui/nav/all-assets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ThinkPad")
	assert.Contains(t, rec.Body.String(), "MacBook")

	rec = s.do(http.MethodPost, "/ui/filter", map[string]any{"query": "tp-", "status": "All"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ThinkPad")
	assert.NotContains(t, rec.Body.String(), "MacBook")

	rec = s.do(http.MethodPost, "/ui/nav/bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="flash"`)

	assert.Equal(t, 1, s.workspaces.Len())
}

func TestGUIPageLoadAndNavigationRefetch(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// written by another client after this workspace loaded
	_, err := s.service.SaveAsset(context.Background(), application.AssetForm{Name: "Latitude 7440", Type: "Laptop", Status: "Available"})
	require.NoError(t, err)

	rec = s.do(http.MethodPost, "/ui/nav/all-assets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Latitude 7440")

	_, err = s.service.SaveAsset(context.Background(), application.AssetForm{Name: "Latitude 5550", Type: "Laptop", Status: "Available"})
	require.NoError(t, err)

	rec = s.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Latitude 5550")
	assert.Equal(t, 1, s.workspaces.Len())
}

func TestGUICookielessLoadsStayBounded(t *testing.T) {
	s := newTestServer(t)
	workspaces := application.NewWorkspaces(s.service, application.WithMaxWorkspaces(25))
	handler := NewRouter(s.service, workspaces, slog.New(slog.DiscardHandler))

	for i := 0; i < 500; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, 25, workspaces.Len())
}

func TestGUIGroupToggle(t *testing.T) {
	s := newTestServer(t)
	_, err := s.service.SaveAsset(context.Background(), application.AssetForm{Name: "Pad", Type: "Mouse Pad", Status: "Available"})
	require.NoError(t, err)

	s.do(http.MethodPost, "/ui/nav/accessories", nil)
	rec := s.do(http.MethodPost, "/ui/groups/Mouse%20Pad", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="group-mouse-pad"`)
	assert.Contains(t, rec.Body.String(), "Pad")
}

func TestGUIAssetForm(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodPost, "/api/employees", map[string]any{"full_name": "Jane Doe"})

	s.do(http.MethodPost, "/ui/nav/accessories", nil)
	rec := s.do(http.MethodPost, "/ui/assets/new", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="Keyboard" selected`)
	assert.Contains(t, rec.Body.String(), "(Locked)")

	rec = s.do(http.MethodPost, "/ui/assets/form", map[string]any{"assetType": "Laptop", "assetStatus": "In Use", "assetAssignedTo": "Jane Doe"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "(Locked)")
	assert.Contains(t, rec.Body.String(), `value="Jane Doe" selected`)

	rec = s.do(http.MethodPost, "/ui/assets/save", map[string]any{"assetName": "Dell XPS", "assetType": "Laptop", "assetStatus": "In Use", "assetAssignedTo": "Jane Doe"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Saved Dell XPS")
	assert.Contains(t, rec.Body.String(), `<div id="modal"></div>`)

	rec = s.do(http.MethodPost, "/ui/assets/save", map[string]any{"assetName": "Bad", "assetType": "Laptop", "assetStatus": "Broken"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(domain.Validationf("x")))
	assert.Equal(t, http.StatusNotFound, statusFor(domain.NewStoreError("select", "assets", domain.ErrNotFound, nil)))
	assert.Equal(t, http.StatusBadGateway, statusFor(domain.NewStoreError("select", "assets", domain.ErrTransport, errors.New("refused"))))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
