package connection

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// rpcError mirrors the JSON-RPC error object.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// rpcHandler resolves a JSON-RPC method call to a result or an error.
type rpcHandler func(method string, params []json.RawMessage) (any, *rpcError)

// newRPCServer starts a JSON-RPC server for tests, recording every method
// name it serves.
func newRPCServer(t *testing.T, handler rpcHandler) (*httptest.Server, *callLog) {
	t.Helper()

	calls := &callLog{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage   `json:"id"`
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)

			return
		}
		calls.record(req.Method)

		result, rerr := handler(req.Method, req.Params)
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if rerr != nil {
			resp["error"] = rerr
		} else {
			resp["result"] = result
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)

	return srv, calls
}

// callLog records served JSON-RPC method names.
type callLog struct {
	mu      sync.Mutex
	methods []string
}

func (c *callLog) record(method string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.methods = append(c.methods, method)
}

func (c *callLog) count(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, m := range c.methods {
		if m == method {
			n++
		}
	}

	return n
}

// defaultNodeHandler serves the minimal node surface the connections touch at
// construction and reconciliation time.
func defaultNodeHandler(chainIDHex string) rpcHandler {
	return func(method string, _ []json.RawMessage) (any, *rpcError) {
		switch method {
		case "eth_blockNumber":
			return "0x10", nil
		case "eth_chainId":
			return chainIDHex, nil
		default:
			return nil, &rpcError{Code: -32601, Message: "method not found"}
		}
	}
}
