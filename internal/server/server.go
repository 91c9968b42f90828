// Package server is a reference HTTP server that performs pyramid level
// negotiation over a directory of pre-rendered payloads. It exists so the
// selection and header conventions have a running end-to-end surface; a
// production deployment would swap the Store for its own storage.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/zerolog"

	"github.com/matteuccimarco/slim-pyramid-protocol/internal/negotiate"
	"github.com/matteuccimarco/slim-pyramid-protocol/internal/schema"
	"github.com/matteuccimarco/slim-pyramid-protocol/internal/selector"
)

// Server negotiates and serves pyramid payloads.
type Server struct {
	store *Store
	reg   *schema.Registry
	log   zerolog.Logger
}

// New wires a server around a loaded store.
func New(store *Store, reg *schema.Registry, log zerolog.Logger) *Server {
	if reg == nil {
		reg = schema.Default()
	}
	return &Server{store: store, reg: reg, log: log}
}

// Handler returns the full middleware-wrapped handler: request logging
// plus transparent gzip.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /levels", s.handleLevels)
	mux.HandleFunc("GET /content/{hash}", s.handleContent)
	return gzhttp.GzipHandler(s.withLogging(mux))
}

// handleContent serves one level of a content item. The level is chosen
// by the selector from the request constraints: an explicit level via the
// Accept header or the level query param, plus max_level, token_budget
// and prefer params. Selection never fails for published content; a 404
// only means the hash itself is unknown.
func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	hash := r.PathValue("hash")
	available := s.store.Levels(hash)
	if len(available) == 0 {
		http.Error(w, "unknown content hash", http.StatusNotFound)
		return
	}

	req := requestFromHTTP(r)
	level, err := selector.Select(s.reg, available, req)
	if err != nil {
		// Unreachable for a non-empty available set; kept as a guard.
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	data, meta, ok := s.store.Get(hash, level)
	if !ok {
		http.Error(w, "selected level not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", negotiate.ContentType(level))
	w.Header().Set(negotiate.HeaderAvailableLevels, negotiate.FormatLevels(available))
	w.Header().Set(negotiate.HeaderTokenCount, strconv.Itoa(meta.TokenCount))
	w.Header().Set("Cache-Control", negotiate.CacheControl(meta, s.reg))
	_, _ = w.Write(data)
}

// handleLevels publishes the registry table so clients can discover
// budgets and field contracts.
func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	type levelInfo struct {
		Level    schema.Level  `json:"level"`
		Name     string        `json:"name"`
		Budget   schema.Budget `json:"budget"`
		TTL      int           `json:"ttlSeconds"`
		Required []string      `json:"required"`
		Optional []string      `json:"optional"`
	}
	out := make([]levelInfo, 0, len(schema.Levels()))
	for _, l := range schema.Levels() {
		fields := s.reg.FieldsFor(l)
		info := levelInfo{
			Level:  l,
			Name:   s.reg.Name(l),
			Budget: s.reg.BudgetFor(l),
			TTL:    s.reg.TTLFor(l),
		}
		for _, f := range fields.Required {
			info.Required = append(info.Required, f.Name)
		}
		for _, f := range fields.Optional {
			info.Optional = append(info.Optional, f.Name)
		}
		out = append(out, info)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(out)
}

// requestFromHTTP maps HTTP negotiation inputs onto selection criteria.
// A level query param wins over the Accept header when both are present.
func requestFromHTTP(r *http.Request) selector.Request {
	var req selector.Request
	q := r.URL.Query()

	if l, ok := negotiate.ParseLevel(r.Header.Get("Accept")); ok {
		lv := l
		req.Level = &lv
	}
	if v := q.Get("level"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && schema.Valid(schema.Level(n)) {
			lv := schema.Level(n)
			req.Level = &lv
		}
	}
	if v := q.Get("max_level"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			lv := schema.Level(n)
			req.MaxLevel = &lv
		}
	}
	if v := q.Get("token_budget"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			req.TokenBudget = &n
		}
	}
	req.Prefer = selector.Preference(q.Get("prefer"))
	return req
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		reqID := uuid.NewString()
		rec.Header().Set("X-Request-Id", reqID)
		next.ServeHTTP(rec, r)
		s.log.Info().
			Str("reqId", reqID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
