package rpcjson

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/TheOgre365/equip-track/internal/application"
	"github.com/TheOgre365/equip-track/internal/domain"
)

// Application error codes carried in rpcError.Code.
const (
	CodeValidation = 40000
	CodeNotFound   = 40400
	CodeTransport  = 50200
	CodeInternal   = 50000
)

type Server struct {
	service  *application.InventoryService
	listener net.Listener
	path     string
	logger   *slog.Logger

	mu      sync.Mutex
	closing bool
	conns   map[net.Conn]struct{}
	wg      sync.WaitGroup
}

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      any             `json:"id"`
}

type response struct {
	JSONRPC string    `json:"jsonrpc"`
	Result  any       `json:"result,omitempty"`
	Error   *rpcError `json:"error,omitempty"`
	ID      any       `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type idParams struct {
	ID uint `json:"id"`
}

func Start(path string, service *application.InventoryService, logger *slog.Logger) (*Server, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("rpc socket path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	_ = os.Remove(path)
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	if err := os.Chmod(path, 0o600); err != nil {
		_ = ln.Close()
		_ = os.Remove(path)
		return nil, err
	}

	s := &Server{service: service, listener: ln, path: path, logger: logger, conns: make(map[net.Conn]struct{})}
	s.wg.Add(1)
	go s.serve()
	return s, nil
}

func (s *Server) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		if !s.track(conn) {
			return
		}
		go s.handleConn(conn)
	}
}

// track registers conn for Close. A conn accepted after Close started is
// closed here instead and track reports false.
func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		_ = conn.Close()
		return false
	}
	s.conns[conn] = struct{}{}
	s.wg.Add(1)
	return true
}

// Close stops accepting, drops open connections and waits for their handlers.
func (s *Server) Close() error {
	s.mu.Lock()
	s.closing = true
	for conn := range s.conns {
		_ = conn.Close()
	}
	s.mu.Unlock()
	err := s.listener.Close()
	s.wg.Wait()
	_ = os.Remove(s.path)
	return err
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		_ = conn.Close()
	}()
	dec := json.NewDecoder(conn)
	enc := json.NewEncoder(conn)

	for {
		var req request
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return
			}
			_ = enc.Encode(response{JSONRPC: "2.0", Error: &rpcError{Code: -32700, Message: "parse error"}, ID: nil})
			return
		}

		resp := s.dispatch(context.Background(), req)
		if resp.Error != nil {
			s.logger.Warn("rpc call failed", slog.String("method", req.Method), slog.Int("code", resp.Error.Code), slog.String("err", resp.Error.Message))
		}
		if err := enc.Encode(resp); err != nil {
			return
		}
	}
}

func (s *Server) dispatch(ctx context.Context, req request) response {
	if req.JSONRPC != "2.0" || strings.TrimSpace(req.Method) == "" {
		return response{JSONRPC: "2.0", Error: &rpcError{Code: -32600, Message: "invalid request"}, ID: req.ID}
	}

	switch req.Method {
	case "assets.list":
		out, err := s.service.ListAssets(ctx)
		return result(req.ID, out, err)
	case "assets.get":
		var p idParams
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.service.GetAsset(ctx, p.ID)
		return result(req.ID, out, err)
	case "assets.save":
		var p application.AssetForm
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.service.SaveAsset(ctx, p)
		return result(req.ID, out, err)
	case "assets.delete":
		var p idParams
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		err := s.service.DeleteAsset(ctx, p.ID)
		return result(req.ID, map[string]any{"deleted": p.ID}, err)
	case "assets.checkin":
		var p idParams
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.service.CheckIn(ctx, p.ID)
		return result(req.ID, out, err)
	case "assets.maintenance":
		var p idParams
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.service.MarkMaintenance(ctx, p.ID)
		return result(req.ID, out, err)
	case "assets.history":
		var p idParams
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.service.ListHistory(ctx, p.ID)
		return result(req.ID, out, err)
	case "employees.list":
		out, err := s.service.ListEmployees(ctx)
		return result(req.ID, out, err)
	case "employees.save":
		var p application.EmployeeForm
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.service.SaveEmployee(ctx, p)
		return result(req.ID, out, err)
	case "employees.delete":
		var p idParams
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		err := s.service.DeleteEmployee(ctx, p.ID)
		return result(req.ID, map[string]any{"deleted": p.ID}, err)
	case "employees.directory":
		out, err := s.service.EmployeeDirectory(ctx)
		return result(req.ID, out, err)
	default:
		return response{JSONRPC: "2.0", Error: &rpcError{Code: -32601, Message: "method not found"}, ID: req.ID}
	}
}

func decodeParams(raw json.RawMessage, out any) bool {
	if len(raw) == 0 || string(raw) == "null" {
		return true
	}
	return json.Unmarshal(raw, out) == nil
}

func result(id any, out any, err error) response {
	if err != nil {
		return appError(id, err)
	}
	return response{JSONRPC: "2.0", Result: out, ID: id}
}

func invalidParams(id any) response {
	return response{JSONRPC: "2.0", Error: &rpcError{Code: -32602, Message: "invalid params"}, ID: id}
}

func appError(id any, err error) response {
	return response{JSONRPC: "2.0", Error: &rpcError{Code: ErrorCode(err), Message: err.Error()}, ID: id}
}

// ErrorCode maps a service error to its application error code.
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return CodeValidation
	case errors.Is(err, domain.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, domain.ErrTransport):
		return CodeTransport
	}
	return CodeInternal
}
