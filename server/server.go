// Package server exposes the gateway over HTTP: three POST endpoints that
// exchange JSON bodies, a health probe, request logging, gzip response
// compression, and a bounded request size.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/alexjoedt/jsonstore/api"
	"github.com/alexjoedt/jsonstore/config"
)

// Server serves the blob store API over HTTP.
type Server struct {
	cfg     *config.Config
	gateway *api.Gateway
	log     *logrus.Logger
	httpSrv *http.Server
}

// New builds a Server around the given store. The store is whatever
// implements api.Store - typically a *jsonstore.Store, optionally wrapped in
// a CachedStore.
func New(cfg *config.Config, store api.Store, log *logrus.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		gateway: api.NewGateway(store),
		log:     log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/put", s.handle(s.gateway.HandlePut))
	mux.HandleFunc("/api/get", s.handle(s.gateway.HandleGet))
	mux.HandleFunc("/api/list", s.handle(s.gateway.HandleList))
	mux.HandleFunc("/health", s.handleHealth)

	s.httpSrv = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           gzhttp.GzipHandler(s.withLogging(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.httpSrv.Addr).Info("http server listening")
		errCh <- s.httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "http server")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutting down http server")
	}

	return nil
}

// handle adapts a gateway operation to an http.HandlerFunc. The request body
// is capped before the gateway ever parses it; an oversized body is rejected
// here without reaching the store.
func (s *Server) handle(op func(ctx context.Context, body []byte) api.Result) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "Method not allowed"})
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxRequestBytes))
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				writeJSON(w, http.StatusRequestEntityTooLarge, map[string]any{"error": "Request body too large"})
				return
			}
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Failed to read request body"})
			return
		}

		res := op(r.Context(), body)
		if res.Detail != "" {
			s.log.WithFields(logrus.Fields{
				"path":   r.URL.Path,
				"detail": res.Detail,
			}).Error("internal error")
		}

		writeResult(w, res)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// writeResult serializes a gateway result as {"status": <message>} with any
// payload fields merged into the envelope.
func writeResult(w http.ResponseWriter, res api.Result) {
	envelope := map[string]any{"status": res.Message}
	for k, v := range res.Payload {
		envelope[k] = v
	}
	writeJSON(w, res.Status.HTTPCode(), envelope)
}

func writeJSON(w http.ResponseWriter, code int, body map[string]any) {
	data, err := json.Marshal(body)
	if err != nil {
		http.Error(w, `{"status":"JSON encoding error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(data)
}

// statusRecorder captures the status code written by a handler for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start),
		}).Info("request")
	})
}
