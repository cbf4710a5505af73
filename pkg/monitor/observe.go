package monitor

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// ObserveOptions configures the HTTP observability surface built around a
// Monitor. It carries no session data of its own: every handler reads
// straight through to the underlying Monitor.
type ObserveOptions struct {
	// CORSEnabled turns on permissive localhost CORS, for a browser-based
	// dashboard polling /status or subscribing to /events cross-origin.
	CORSEnabled bool
}

// ObserveServer exposes one Monitor's session state over HTTP: /status for
// a point-in-time snapshot, /history for the committed transition log, and
// /events for a live Server-Sent-Events stream of call/cast/violation/commit
// occurrences. It never mutates the monitor — this is read-only observation.
type ObserveServer struct {
	monitor *Monitor
	router  chi.Router
}

// NewObserveServer builds the router for m. Routes are registered
// immediately; call Handler to mount the result.
func NewObserveServer(m *Monitor, opts ObserveOptions) *ObserveServer {
	s := &ObserveServer{monitor: m}
	s.setupRouter(opts)
	return s
}

func (s *ObserveServer) setupRouter(opts ObserveOptions) {
	r := chi.NewRouter()

	if opts.CORSEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/status", s.handleStatus)
	r.Get("/history", s.handleHistory)
	r.Get("/events", s.handleEvents)

	s.router = r
}

// Handler returns the HTTP handler, ready to pass to http.ListenAndServe or
// mount under a larger router.
func (s *ObserveServer) Handler() http.Handler {
	return s.router
}

// statusResponse is the /status payload.
type statusResponse struct {
	ID     string         `json:"id"`
	State  string         `json:"state"`
	Tracks map[string]any `json:"tracks"`
}

func (s *ObserveServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		ID:     s.monitor.ID(),
		State:  s.monitor.State(),
		Tracks: s.monitor.Tracks(),
	})
}

// historyResponse is the /history payload.
type historyResponse struct {
	ID      string  `json:"id"`
	Entries []Entry `json:"entries"`
}

func (s *ObserveServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, historyResponse{
		ID:      s.monitor.ID(),
		Entries: s.monitor.History(),
	})
}

// eventPayload is the JSON shape of one SSE event written to /events.
type eventPayload struct {
	Kind  string `json:"kind"`
	At    string `json:"at"`
	State string `json:"state"`
	Error string `json:"error,omitempty"`
}

// handleEvents streams session events (call/cast/violation/commit) as
// Server-Sent Events until the client disconnects. Each subscriber gets its
// own buffered feed through Monitor.Observe; events a slow consumer has no
// room for are dropped
// rather than allowed to block monitor processing.
func (s *ObserveServer) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := make(chan Event, 16)
	unsubscribe := s.monitor.Observe(func(e Event) {
		select {
		case ch <- e:
		default:
		}
	})
	defer unsubscribe()

	ctx := r.Context()
	ping := time.NewTicker(15 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case e := <-ch:
			payload := eventPayload{
				Kind:  string(e.Kind),
				At:    e.At.Format(time.RFC3339Nano),
				State: e.State,
			}
			if e.Violation != nil {
				payload.Error = e.Violation.Error()
			}
			data, err := json.Marshal(payload)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Kind, data)
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
