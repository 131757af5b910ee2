// Package server hosts the dispatcher on a single JSON-RPC POST endpoint.
package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/dslh/mcp-fieldgate/internal/dispatch"
	"github.com/dslh/mcp-fieldgate/internal/protocol"
)

// Server is the HTTP transport for the dispatcher. Protocol errors never
// fail the transport; they are delivered as JSON-RPC error envelopes with
// HTTP 200.
type Server struct {
	dispatcher *dispatch.Dispatcher
}

// New creates a server around a dispatcher.
func New(d *dispatch.Dispatcher) *Server {
	return &Server{dispatcher: d}
}

// Handler returns the HTTP handler serving the /rpc endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/rpc", s.handleRPC)
	return mux
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req protocol.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeResponse(w, protocol.NewError(nil, protocol.CodeParseError, "parse error", nil))
		return
	}

	resp := s.dispatcher.Handle(r.Context(), &req)

	// Notifications carry no id and receive no response body.
	if isNotification(req.ID) {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	writeResponse(w, resp)
}

func isNotification(id json.RawMessage) bool {
	return len(id) == 0 || string(id) == "null"
}

func writeResponse(w http.ResponseWriter, resp *protocol.Response) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}
