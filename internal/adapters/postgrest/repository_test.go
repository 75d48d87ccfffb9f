package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/TheOgre365/equip-track/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T, handler http.HandlerFunc) *Repository {
	t.Helper()
	return newTestRepoWithConfig(t, Config{APIKey: "anon-key"}, handler)
}

func newTestRepoWithConfig(t *testing.T, cfg Config, handler http.HandlerFunc) *Repository {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg.URL = srv.URL
	client, err := NewClient(cfg)
	require.NoError(t, err)
	return NewRepository(client)
}

// strictAssetsTable answers like a table whose columns are known: any other
// key in a write body is rejected with PGRST204.
func strictAssetsTable(t *testing.T, columns ...string) http.HandlerFunc {
	known := map[string]bool{}
	for _, c := range columns {
		known[c] = true
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) {
			return
		}
		for key := range body {
			if !known[key] {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"code":"PGRST204","message":"Could not find the '` + key + `' column of 'assets' in the schema cache"}`))
				return
			}
		}
		_, _ = w.Write([]byte(`[{"id":3,"name":"MacBook","type":"Laptop","status":"In Use","assigned_to":"Jane Doe","assigned_employee_id":9}]`))
	}
}

func TestListAssetsSendsOrderAndKey(t *testing.T) {
	repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/assets", r.URL.Path)
		assert.Equal(t, "id.asc", r.URL.Query().Get("order"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[
			{"id":1,"name":"MacBook","type":"Laptop","status":"In Use","assigned_to":"Jane Doe","serial_number":"C02","created_at":"2024-03-01T10:00:00.123456+00:00"},
			{"id":2,"name":"MX","type":"Mouse","status":"Available","assigned_to":null,"serial_number":null}
		]`))
	})

	assets, err := repo.ListAssets(context.Background())
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, "Jane Doe", assets[0].AssignedTo)
	assert.Equal(t, domain.StatusInUse, assets[0].Status)
	assert.False(t, assets[0].CreatedAt.IsZero())
	assert.Empty(t, assets[1].AssignedTo)
	assert.Empty(t, assets[1].SerialNumber)
}

func TestUpdateAssetWritesNullAssignment(t *testing.T) {
	repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "eq.7", r.URL.Query().Get("id"))
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		v, ok := body["assigned_to"]
		assert.True(t, ok, "assigned_to must be sent")
		assert.Nil(t, v)
		assert.NotContains(t, body, "id")

		_, _ = w.Write([]byte(`[{"id":7,"name":"MacBook","type":"Laptop","status":"Available","assigned_to":null}]`))
	})

	asset, err := repo.UpdateAsset(context.Background(), 7, domain.AssetChanges{Name: "MacBook", Type: "Laptop", Status: domain.StatusAvailable})
	require.NoError(t, err)
	assert.Equal(t, uint(7), asset.ID)
	assert.Empty(t, asset.AssignedTo)
}

func TestEmptyRepresentationIsNotFound(t *testing.T) {
	repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	err := repo.DeleteEmployee(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.GetAsset(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, domain.ErrValidation},
		{http.StatusConflict, domain.ErrValidation},
		{http.StatusUnauthorized, domain.ErrTransport},
		{http.StatusInternalServerError, domain.ErrTransport},
	}
	for _, tc := range cases {
		repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(`{"code":"23502","message":"null value in column \"name\""}`))
		})

		_, err := repo.CreateAsset(context.Background(), domain.AssetChanges{Type: "PC", Status: domain.StatusAvailable})
		require.Error(t, err)
		assert.ErrorIs(t, err, tc.want, "status %d", tc.status)
		assert.Contains(t, err.Error(), "null value in column")
	}
}

func TestUnreachableStoreIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client, err := NewClient(Config{URL: srv.URL})
	require.NoError(t, err)

	_, err = NewRepository(client).ListEmployees(context.Background())
	assert.ErrorIs(t, err, domain.ErrTransport)
}

func TestListHistoryFiltersByAssetNewestFirst(t *testing.T) {
	repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/asset_history", r.URL.Path)
		assert.Equal(t, "eq.3", r.URL.Query().Get("asset_id"))
		assert.Equal(t, "created_at.desc,id.desc", r.URL.Query().Get("order"))
		_, _ = w.Write([]byte(`[{"id":9,"asset_id":3,"action":"Returned","details":"Returned from Jane Doe"}]`))
	})

	events, err := repo.ListHistory(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.ActionReturned, events[0].Action)
}

func TestNewClientRequiresURL(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}

func TestAssetWritesOmitEmployeeFKByDefault(t *testing.T) {
	employeeID := uint(9)
	changes := domain.AssetChanges{Name: "MacBook", Type: "Laptop", Status: domain.StatusInUse, AssignedTo: "Jane Doe", AssignedEmployeeID: &employeeID}
	hosted := strictAssetsTable(t, "name", "type", "status", "assigned_to", "serial_number")

	repo := newTestRepo(t, hosted)
	asset, err := repo.CreateAsset(context.Background(), changes)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", asset.AssignedTo)
	_, err = repo.UpdateAsset(context.Background(), 3, changes)
	require.NoError(t, err)

	repo = newTestRepoWithConfig(t, Config{EmployeeFK: true}, hosted)
	_, err = repo.CreateAsset(context.Background(), changes)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.ErrorContains(t, err, "PGRST204")
}

func TestAssetWritesSendEmployeeFKWhenEnabled(t *testing.T) {
	var bodies []map[string]any
	withFK := strictAssetsTable(t, "name", "type", "status", "assigned_to", "serial_number", "assigned_employee_id")
	repo := newTestRepoWithConfig(t, Config{EmployeeFK: true}, func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		var body map[string]any
		assert.NoError(t, json.Unmarshal(raw, &body))
		bodies = append(bodies, body)
		r.Body = io.NopCloser(bytes.NewReader(raw))
		withFK(w, r)
	})

	employeeID := uint(9)
	asset, err := repo.CreateAsset(context.Background(), domain.AssetChanges{Name: "MacBook", Type: "Laptop", Status: domain.StatusInUse, AssignedTo: "Jane Doe", AssignedEmployeeID: &employeeID})
	require.NoError(t, err)
	require.NotNil(t, asset.AssignedEmployeeID)
	assert.Equal(t, uint(9), *asset.AssignedEmployeeID)

	_, err = repo.UpdateAsset(context.Background(), 3, domain.AssetChanges{Name: "MacBook", Type: "Laptop", Status: domain.StatusAvailable})
	require.NoError(t, err)

	require.Len(t, bodies, 2)
	assert.EqualValues(t, 9, bodies[0]["assigned_employee_id"])
	v, ok := bodies[1]["assigned_employee_id"]
	assert.True(t, ok, "unassigning sends an explicit null")
	assert.Nil(t, v)
}
