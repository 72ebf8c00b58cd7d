package idem_kvs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"
)

// keys and values are opaque bytes, so they go over the wire as []byte
// (base64 in JSON). request ids are ours and always hex.

type mutateReq struct {
	Key       []byte `json:"key"`
	Value     []byte `json:"value"`
	RequestID string `json:"request_id"`
}

type mutateResp struct {
	Result    []byte `json:"result"`
	Duplicate bool   `json:"duplicate"`
}

type getResp struct {
	Value []byte `json:"value"`
}

type errResp struct {
	Error string `json:"error"`
}

type healthResp struct {
	Status       string `json:"status"`
	Keys         int    `json:"keys"`
	DedupEntries int    `json:"dedupEntries"`
}

// request bodies carry base64 values, a third larger than the raw bytes
const maxBodyBytes = 4 << 20

var errBadRequest = errors.New("bad request")

type HTTPServer struct {
	node *Node
	srv  *http.Server
}

func NewHTTPServer(node *Node, addr string) *HTTPServer {
	h := &HTTPServer{node: node}

	// the mux answers 405 itself when the method does not match
	mux := http.NewServeMux()
	mux.HandleFunc("GET /get", h.handleGet)
	mux.HandleFunc("POST /put", h.handleMutate(CmdPut))
	mux.HandleFunc("POST /append", h.handleMutate(CmdAppend))
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /metrics", h.handleMetrics)

	h.srv = &http.Server{
		Addr:              addr,
		Handler:           withLogging(mux),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return h
}

// Handler exposes the routed handler, logging included.
func (h *HTTPServer) Handler() http.Handler {
	return h.srv.Handler
}

func (h *HTTPServer) Start() error {
	return h.srv.ListenAndServe()
}

// Shutdown stops accepting conns and waits for in-flight requests.
func (h *HTTPServer) Shutdown(ctx context.Context) error {
	return h.srv.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sr, r)
		log.Printf("method=%s path=%s status=%d dur=%s remote=%s",
			r.Method, r.URL.Path, sr.status, time.Since(start), r.RemoteAddr)
	})
}

// GET /get?key=K
func (h *HTTPServer) handleGet(w http.ResponseWriter, r *http.Request) {
	val, err := h.node.Get(r.URL.Query().Get("key"))
	if err != nil {
		writeError(w, err)
		return
	}
	// absent keys are just empty, not a 404
	writeJSON(w, http.StatusOK, getResp{Value: []byte(val)})
}

// POST /put and POST /append
// Body: {"key": <base64>, "value": <base64>, "request_id": "..."}
func (h *HTTPServer) handleMutate(op CommandType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req mutateReq
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, err)
			return
		}

		res, err := h.node.Exec(Command{
			Instruct:  op,
			RequestID: req.RequestID,
			Key:       string(req.Key),
			Value:     string(req.Value),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, mutateResp{Result: []byte(res.Value), Duplicate: res.Duplicate})
	}
}

func (h *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResp{
		Status:       "ok",
		Keys:         h.node.Keys(),
		DedupEntries: h.node.DedupEntries(),
	})
}

func (h *HTTPServer) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.node.Metrics())
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: unexpected extra JSON content", errBadRequest)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an error to its status: malformed requests are the
// caller's fault, anything else is ours.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, ErrEmptyKey),
		errors.Is(err, ErrMissingRequestID), errors.Is(err, ErrUnknownCommand):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, errResp{Error: err.Error()})
}
