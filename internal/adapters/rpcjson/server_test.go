package rpcjson

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"testing"

	"github.com/TheOgre365/equip-track/internal/adapters/db/sqlite"
	"github.com/TheOgre365/equip-track/internal/application"
	"github.com/TheOgre365/equip-track/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// database/sql keeps its connection opener running for the life of the pool
		goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"),
	)
}

func startServer(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	ctx := context.Background()

	db, err := sqlite.Open(filepath.Join(dir, "rpc.db"))
	require.NoError(t, err)
	require.NoError(t, sqlite.RunMigrations(ctx, db))
	sqlDB, err := db.DB()
	require.NoError(t, err)

	service := application.NewInventoryService(sqlite.NewInventoryRepository(db))
	socket := filepath.Join(dir, "rpc.sock")
	srv, err := Start(socket, service, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = srv.Close()
		_ = sqlDB.Close()
	})
	return socket
}

type testConn struct {
	t    *testing.T
	conn net.Conn
	enc  *json.Encoder
	dec  *json.Decoder
	id   int
}

func dial(t *testing.T, socket string) *testConn {
	t.Helper()
	conn, err := net.Dial("unix", socket)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &testConn{t: t, conn: conn, enc: json.NewEncoder(conn), dec: json.NewDecoder(conn)}
}

type rawResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
	ID     int             `json:"id"`
}

func (c *testConn) call(method string, params any) rawResponse {
	c.t.Helper()
	c.id++
	require.NoError(c.t, c.enc.Encode(map[string]any{"jsonrpc": "2.0", "method": method, "params": params, "id": c.id}))
	var resp rawResponse
	require.NoError(c.t, c.dec.Decode(&resp))
	require.Equal(c.t, c.id, resp.ID)
	return resp
}

func TestDeployAndCheckInOverSocket(t *testing.T) {
	c := dial(t, startServer(t))

	resp := c.call("employees.save", application.EmployeeForm{FullName: "Jane Doe", Role: "Engineer"})
	require.Nil(t, resp.Error)

	resp = c.call("assets.save", application.AssetForm{Name: "MacBook", Type: "Laptop", Status: "In Use", AssignedTo: "Jane Doe"})
	require.Nil(t, resp.Error)
	var asset domain.Asset
	require.NoError(t, json.Unmarshal(resp.Result, &asset))
	assert.Equal(t, "Jane Doe", asset.AssignedTo)

	resp = c.call("assets.checkin", map[string]any{"id": asset.ID})
	require.Nil(t, resp.Error)
	require.NoError(t, json.Unmarshal(resp.Result, &asset))
	assert.Equal(t, domain.StatusAvailable, asset.Status)
	assert.Empty(t, asset.AssignedTo)

	resp = c.call("assets.history", map[string]any{"id": asset.ID})
	require.Nil(t, resp.Error)
	var events []domain.HistoryEvent
	require.NoError(t, json.Unmarshal(resp.Result, &events))
	require.Len(t, events, 1)
	assert.Equal(t, "Returned from Jane Doe", events[0].Details)

	resp = c.call("employees.directory", nil)
	require.Nil(t, resp.Error)
	var dir []domain.DirectoryEntry
	require.NoError(t, json.Unmarshal(resp.Result, &dir))
	require.Len(t, dir, 1)
	assert.Empty(t, dir[0].Assets)
}

func TestErrorCodes(t *testing.T) {
	c := dial(t, startServer(t))

	resp := c.call("assets.save", application.AssetForm{Name: "MacBook", Type: "Laptop", Status: "In Use", AssignedTo: "Nobody"})
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeValidation, resp.Error.Code)

	resp = c.call("assets.maintenance", map[string]any{"id": 404})
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeNotFound, resp.Error.Code)

	resp = c.call("assets.get", "not an object")
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32602, resp.Error.Code)

	resp = c.call("trace.run", nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32601, resp.Error.Code)
}

func TestErrorCodeMapping(t *testing.T) {
	assert.Equal(t, CodeTransport, ErrorCode(domain.NewStoreError("select", domain.TableAssets, domain.ErrTransport, nil)))
	assert.Equal(t, CodeNotFound, ErrorCode(domain.NewStoreError("select", domain.TableAssets, domain.ErrNotFound, nil)))
	assert.Equal(t, CodeValidation, ErrorCode(domain.Validationf("bad")))
	assert.Equal(t, CodeInternal, ErrorCode(assert.AnError))
}

func TestConnAcceptedDuringCloseIsDropped(t *testing.T) {
	srv, err := Start(filepath.Join(t.TempDir(), "late.sock"), nil, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	require.NoError(t, srv.Close())

	server, client := net.Pipe()
	defer client.Close()
	assert.False(t, srv.track(server), "no conn is registered once close has begun")

	_, err = client.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF, "late conn is closed, not leaked")

	srv.mu.Lock()
	assert.Empty(t, srv.conns)
	srv.mu.Unlock()
}
