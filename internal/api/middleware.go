package api

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/nyashahama/strideshop-receipts/internal/idempotency"
)

const maxBodyBytes = 1 << 20 // 1 MB

// ─── LOGGER MIDDLEWARE ────────────────────────────────────────────────────────

// loggerMiddleware logs each request with method, path, status, and duration.
func (s *Server) loggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.logger.Info("http",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// ─── IDEMPOTENCY MIDDLEWARE ───────────────────────────────────────────────────

// idempotencyMiddleware replays the stored response for a repeated
// Idempotency-Key. Without a key, or without a store, requests pass through.
// Store errors fail open: the request runs as if no key was sent.
func (s *Server) idempotencyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
		if s.idem == nil || header == "" {
			next.ServeHTTP(w, r)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			respond(w, http.StatusBadRequest, envelope{Status: "ERROR", Message: "invalid request body: " + err.Error()})
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		sum := sha256.Sum256(body)
		fp := hex.EncodeToString(sum[:])
		key := s.idem.Key("receipts", header)
		log := s.logger.With("idempotency_key", header, logField(r))

		state, stored, err := s.idem.Begin(r.Context(), key, fp)
		if err != nil {
			log.Warn("idempotency: store unavailable, continuing without", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		switch state {
		case idempotency.InFlight:
			respond(w, http.StatusConflict, envelope{Status: "ERROR", Message: "a request with this Idempotency-Key is in progress"})
			return
		case idempotency.Mismatch:
			respond(w, http.StatusUnprocessableEntity, envelope{Status: "ERROR", Message: "Idempotency-Key was used with a different request body"})
			return
		case idempotency.Completed:
			log.Info("idempotency: replaying stored response", "status", stored.Status)
			if stored.ContentType != "" {
				w.Header().Set("Content-Type", stored.ContentType)
			}
			w.Header().Set("Idempotent-Replayed", "true")
			w.WriteHeader(stored.Status)
			_, _ = w.Write(stored.Body)
			return
		}

		// The client may already be gone; the record must still be written.
		storeCtx := func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.WithoutCancel(r.Context()), 2*time.Second)
		}
		release := func() {
			ctx, cancel := storeCtx()
			defer cancel()
			if err := s.idem.Release(ctx, key); err != nil {
				log.Warn("idempotency: release failed", "error", err)
			}
		}

		// A panic is turned into a 500 further out, by Recoverer. The key must
		// not stay claimed until it expires.
		defer func() {
			if p := recover(); p != nil {
				release()
				panic(p)
			}
		}()

		// Claimed: run the handler and keep a copy of what it writes.
		var buf bytes.Buffer
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ww.Tee(&buf)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		if status >= http.StatusInternalServerError {
			release()
			return
		}

		ctx, cancel := storeCtx()
		defer cancel()
		if err := s.idem.Complete(ctx, key, fp, idempotency.Response{
			Status:      status,
			ContentType: ww.Header().Get("Content-Type"),
			Body:        buf.Bytes(),
		}); err != nil {
			log.Warn("idempotency: store response failed", "error", err)
		}
	})
}

// ─── RESPONSE HELPERS ─────────────────────────────────────────────────────────

// respond writes a JSON body with the given status code.
func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// respondInternalErr logs an unexpected error and returns a 500 to the client
// without leaking internal details.
func (s *Server) respondInternalErr(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("internal error",
		"error", err,
		"path", r.URL.Path,
		"request_id", middleware.GetReqID(r.Context()),
	)
	respond(w, http.StatusInternalServerError, envelope{Status: "ERROR", Message: "internal server error"})
}

// ─── REQUEST PARSING HELPERS ─────────────────────────────────────────────────

// decode JSON-decodes r.Body into dst. Unknown fields are accepted: the
// gateway forwards its whole checkout payload.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

// logField returns a slog.Attr using the request ID for correlation.
func logField(r *http.Request) slog.Attr {
	return slog.String("request_id", middleware.GetReqID(r.Context()))
}
