package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
)

// Routes exposes the handler over HTTP for external schedulers:
// POST /invoke triggers one run, GET /healthz reports liveness.
func Routes(h *Handler) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/invoke", h.serveInvoke).Methods(http.MethodPost)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	return r
}

func (h *Handler) serveInvoke(w http.ResponseWriter, r *http.Request) {
	var ev Event

	// An empty body means "run with defaults"; anything present must be
	// valid JSON.
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, `{"error":"invalid request payload"}`)
		return
	}

	res := h.Handle(r.Context(), ev)
	writeJSON(w, res.StatusCode, res.Body)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
