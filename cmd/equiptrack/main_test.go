package main

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	sqliteadapter "github.com/TheOgre365/equip-track/internal/adapters/db/sqlite"
	httpadapter "github.com/TheOgre365/equip-track/internal/adapters/http"
	rpcadapter "github.com/TheOgre365/equip-track/internal/adapters/rpcjson"
	"github.com/TheOgre365/equip-track/internal/application"
	"github.com/TheOgre365/equip-track/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleImport = `{
  "employees": [
    {"full_name": "Jane Doe", "role": "Engineer", "department": "R&D"}
  ],
  "assets": [
    {"name": "MacBook Pro", "type": "Laptop", "status": "In Use", "assigned_to": "Jane Doe", "serial_number": "SN-1"},
    {"name": "MX Keys", "type": "Keyboard", "status": "In Use", "assigned_to": "Jane Doe"}
  ]
}`

func newService(t *testing.T) *application.InventoryService {
	t.Helper()
	repo, err := sqliteadapter.Connect(context.Background(), filepath.Join(t.TempDir(), "cli.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return application.NewInventoryService(repo)
}

func httpConfig(t *testing.T, service *application.InventoryService) cliConfig {
	t.Helper()
	srv := httptest.NewServer(httpadapter.NewRouter(service, application.NewWorkspaces(service), slog.New(slog.DiscardHandler)))
	t.Cleanup(srv.Close)
	return cliConfig{Transport: transportHTTP, Server: srv.URL}
}

func udsConfig(t *testing.T, service *application.InventoryService) cliConfig {
	t.Helper()
	socket := filepath.Join(t.TempDir(), "cli.sock")
	srv, err := rpcadapter.Start(socket, service, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })
	return cliConfig{Transport: transportUDS, Socket: socket}
}

func TestParseImport(t *testing.T) {
	batch, err := parseImport(context.Background(), []byte(sampleImport))
	require.NoError(t, err)
	assert.Len(t, batch.Employees, 1)
	require.Len(t, batch.Assets, 2)
	assert.Equal(t, "SN-1", batch.Assets[0].SerialNumber)
}

func TestParseImportRejectsSchemaViolations(t *testing.T) {
	cases := map[string]string{
		"missing name":   `{"assets": [{"type": "Laptop", "status": "Available"}]}`,
		"unknown status": `{"assets": [{"name": "X", "type": "Laptop", "status": "Broken"}]}`,
		"unknown field":  `{"employees": [{"full_name": "A", "salary": 1}]}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseImport(context.Background(), []byte(doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid import file")
		})
	}
}

func TestImportOverBothTransports(t *testing.T) {
	for name, connect := range map[string]func(*testing.T, *application.InventoryService) cliConfig{
		"http": httpConfig,
		"uds":  udsConfig,
	} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			service := newService(t)
			cfg := connect(t, service)

			batch, err := parseImport(ctx, []byte(sampleImport))
			require.NoError(t, err)
			res, err := runImport(ctx, cfg, batch)
			require.NoError(t, err)
			assert.Equal(t, importResult{Employees: 1, Assets: 2}, res)

			// a second run skips the known employee
			res, err = runImport(ctx, cfg, importBatch{Employees: batch.Employees})
			require.NoError(t, err)
			assert.Equal(t, importResult{}, res)

			var assets []domain.Asset
			require.NoError(t, doAssetsList(ctx, cfg, &assets))
			require.Len(t, assets, 2)
			assert.Equal(t, "Jane Doe", assets[0].AssignedTo)
			assert.Empty(t, assets[1].AssignedTo, "accessories are never assigned")

			var returned domain.Asset
			require.NoError(t, doAssetsAction(ctx, cfg, "checkin", assets[0].ID, &returned))
			assert.Equal(t, domain.StatusAvailable, returned.Status)

			var events []domain.HistoryEvent
			require.NoError(t, doAssetsHistory(ctx, cfg, assets[0].ID, &events))
			require.Len(t, events, 1)
			assert.Equal(t, "Returned from Jane Doe", events[0].Details)

			var directory []domain.DirectoryEntry
			require.NoError(t, doEmployeesDirectory(ctx, cfg, &directory))
			require.Len(t, directory, 1)
			assert.Empty(t, directory[0].Assets)

			require.NoError(t, doAssetsDelete(ctx, cfg, assets[1].ID))
			err = doAssetsDelete(ctx, cfg, assets[1].ID)
			require.Error(t, err)
		})
	}
}

func TestSelectCategory(t *testing.T) {
	assets := []domain.Asset{
		{ID: 1, Type: "Laptop"},
		{ID: 2, Type: "Mouse"},
		{ID: 3, Type: "Phone"},
	}
	mainAssets, err := selectCategory(assets, categoryMain)
	require.NoError(t, err)
	assert.Len(t, mainAssets, 2)

	accessories, err := selectCategory(assets, categoryAccessories)
	require.NoError(t, err)
	assert.Len(t, accessories, 1)

	all, err := selectCategory(assets, categoryAll)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = selectCategory(assets, "printers")
	assert.Error(t, err)
}

func TestCLIConfigRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, cliConfig{Transport: transportUDS, Server: defaultServer, Socket: defaultSocket}, cfg)

	cfg.Transport = transportHTTP
	cfg.Server = "http://inventory.internal:8080"
	require.NoError(t, saveConfig(cfg))

	loaded, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestPrintAssetGroups(t *testing.T) {
	buf := captureStdout(t)

	printAssetGroups(domain.GroupByType([]domain.Asset{
		{ID: 2, Name: "Pixel", Type: "Phone", Status: domain.StatusAvailable},
		{ID: 1, Name: "ThinkPad", Type: "Laptop", Status: domain.StatusInUse, AssignedTo: "Jane Doe"},
	}, domain.NewGroupExpansion()))

	out := buf.String()
	assert.Contains(t, out, "Laptop (1)")
	assert.Contains(t, out, "Jane Doe")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("Laptop")), bytes.Index(buf.Bytes(), []byte("Phone")))
}

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

func TestAssetsSaveUpdateKeepsUnsetFields(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	ctx := context.Background()
	service := newService(t)
	require.NoError(t, saveConfig(udsConfig(t, service)))
	out := captureStdout(t)

	_, err := service.SaveEmployee(ctx, application.EmployeeForm{FullName: "Jane Doe"})
	require.NoError(t, err)
	phone, err := service.SaveAsset(ctx, application.AssetForm{Name: "Pixel 8", Type: "Phone", Status: "In Use", AssignedTo: "Jane Doe", SerialNumber: "PX-1"})
	require.NoError(t, err)

	id := strconv.FormatUint(uint64(phone.ID), 10)
	require.NoError(t, newApp().Run(ctx, []string{"equiptrack", "assets", "save", "--id", id, "--serial", "PX-2"}))
	assert.Contains(t, out.String(), "PX-2")

	stored, err := service.GetAsset(ctx, phone.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pixel 8", stored.Name)
	assert.Equal(t, "Phone", stored.Type)
	assert.Equal(t, domain.StatusInUse, stored.Status)
	assert.Equal(t, "Jane Doe", stored.AssignedTo)
	assert.Equal(t, "PX-2", stored.SerialNumber)

	require.NoError(t, newApp().Run(ctx, []string{"equiptrack", "assets", "save", "--id", id, "--status", "Maintenance"}))
	stored, err = service.GetAsset(ctx, phone.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusMaintenance, stored.Status)
	assert.Equal(t, "Phone", stored.Type)
	assert.Empty(t, stored.AssignedTo, "leaving In Use drops the assignee")
}

func TestAssetsSaveCreateDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	ctx := context.Background()
	service := newService(t)
	require.NoError(t, saveConfig(udsConfig(t, service)))
	captureStdout(t)

	err := newApp().Run(ctx, []string{"equiptrack", "assets", "save", "--serial", "X"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--name")

	require.NoError(t, newApp().Run(ctx, []string{"equiptrack", "assets", "save", "--name", "ThinkPad"}))
	assets, err := service.ListAssets(ctx)
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "Laptop", assets[0].Type)
	assert.Equal(t, domain.StatusAvailable, assets[0].Status)

	err = newApp().Run(ctx, []string{"equiptrack", "assets", "save", "--id", "999", "--name", "Ghost"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRemoteErrorsCarryDomainKinds(t *testing.T) {
	for name, connect := range map[string]func(*testing.T, *application.InventoryService) cliConfig{
		"http": httpConfig,
		"uds":  udsConfig,
	} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			cfg := connect(t, newService(t))

			var asset domain.Asset
			err := doAssetsGet(ctx, cfg, 999, &asset)
			assert.ErrorIs(t, err, domain.ErrNotFound)
			assert.NotErrorIs(t, err, domain.ErrValidation)

			err = doAssetsSave(ctx, cfg, application.AssetForm{Name: "X", Type: "Laptop", Status: "Broken"}, &asset)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Contains(t, err.Error(), "Broken")

			err = doEmployeesDelete(ctx, cfg, 42)
			assert.ErrorIs(t, err, domain.ErrNotFound)
		})
	}

	down := cliConfig{Transport: transportUDS, Socket: filepath.Join(t.TempDir(), "missing.sock")}
	var assets []domain.Asset
	assert.ErrorIs(t, doAssetsList(context.Background(), down, &assets), domain.ErrTransport)

	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	down = cliConfig{Transport: transportHTTP, Server: srv.URL}
	assert.ErrorIs(t, doAssetsList(context.Background(), down, &assets), domain.ErrTransport)
}

func TestCLIConfigRejectsUnknownTransport(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	assert.Error(t, saveConfig(cliConfig{Transport: "carrier-pigeon"}))
	assert.Error(t, newApp().Run(context.Background(), []string{"equiptrack", "config", "--transport", "smoke"}))

	path, err := configPath()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte(`{"transport":"ftp"}`), 0o600))
	_, err = loadConfig()
	assert.ErrorContains(t, err, "ftp")
}
