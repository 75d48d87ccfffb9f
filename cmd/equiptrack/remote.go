package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	rpcadapter "github.com/TheOgre365/equip-track/internal/adapters/rpcjson"
	"github.com/TheOgre365/equip-track/internal/domain"
)

// endpoint names one server operation on both transports.
type endpoint struct {
	rpcMethod string
	verb      string
	path      string
	// body sends params as the HTTP request body; otherwise the path carries
	// everything the HTTP route needs.
	body bool
	// list results come wrapped in {"items": ...} over HTTP.
	list bool
}

// remote runs endpoints against a server. out may be nil.
type remote interface {
	invoke(ctx context.Context, ep endpoint, params any, out any) error
}

func connect(cfg cliConfig) remote {
	if cfg.Transport == transportHTTP {
		return &httpRemote{
			client: &http.Client{Timeout: 20 * time.Second},
			server: strings.TrimRight(cfg.Server, "/"),
		}
	}
	return &rpcRemote{socket: cfg.Socket, timeout: 30 * time.Second}
}

// remoteError is a failure reported by the server or on the way to it. It
// unwraps to the matching domain error kind, so errors.Is(err,
// domain.ErrNotFound) works the same for both transports.
type remoteError struct {
	kind  error
	cause error
	msg   string
}

func (e *remoteError) Error() string { return e.msg }

func (e *remoteError) Unwrap() []error {
	var out []error
	for _, err := range []error{e.kind, e.cause} {
		if err != nil {
			out = append(out, err)
		}
	}
	return out
}

func unreachable(target string, err error) error {
	return &remoteError{kind: domain.ErrTransport, cause: err, msg: fmt.Sprintf("reach %s: %v", target, err)}
}

func kindForStatus(status int) error {
	switch status {
	case http.StatusBadRequest:
		return domain.ErrValidation
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusBadGateway:
		return domain.ErrTransport
	}
	return nil
}

func kindForCode(code int) error {
	switch code {
	case rpcadapter.CodeValidation, -32602:
		return domain.ErrValidation
	case rpcadapter.CodeNotFound:
		return domain.ErrNotFound
	case rpcadapter.CodeTransport:
		return domain.ErrTransport
	}
	return nil
}

type httpRemote struct {
	client *http.Client
	server string
}

type itemsEnvelope struct {
	Items any `json:"items"`
}

func (h *httpRemote) invoke(ctx context.Context, ep endpoint, params any, out any) error {
	var body io.Reader
	if ep.body && params != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(params); err != nil {
			return err
		}
		body = buf
	}
	req, err := http.NewRequestWithContext(ctx, ep.verb, h.server+ep.path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return unreachable(h.server, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		payload, _ := io.ReadAll(resp.Body)
		msg := strings.TrimSpace(string(payload))
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(payload, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return &remoteError{kind: kindForStatus(resp.StatusCode), msg: fmt.Sprintf("%s %s: %d %s", ep.verb, ep.path, resp.StatusCode, msg)}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if ep.list {
		out = &itemsEnvelope{Items: out}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type rpcRemote struct {
	socket  string
	timeout time.Duration
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
	ID      int    `json:"id"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (r *rpcRemote) invoke(ctx context.Context, ep endpoint, params any, out any) error {
	dialer := net.Dialer{Timeout: 5 * time.Second}
	conn, err := dialer.DialContext(ctx, "unix", r.socket)
	if err != nil {
		return unreachable(r.socket, err)
	}
	defer func() { _ = conn.Close() }()

	deadline := time.Now().Add(r.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	if err := json.NewEncoder(conn).Encode(rpcRequest{JSONRPC: "2.0", Method: ep.rpcMethod, Params: params, ID: 1}); err != nil {
		return unreachable(r.socket, err)
	}
	var resp rpcResponse
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return unreachable(r.socket, err)
	}
	if resp.Error != nil {
		return &remoteError{kind: kindForCode(resp.Error.Code), msg: fmt.Sprintf("%s: %d %s", ep.rpcMethod, resp.Error.Code, resp.Error.Message)}
	}
	if out == nil || len(resp.Result) == 0 {
		return nil
	}
	return json.Unmarshal(resp.Result, out)
}
