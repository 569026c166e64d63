// Package intake: REST-over-gRPC bridge, adapted from the ledger service's
// REST handler for customers who don't want to speak gRPC directly.
//
// Endpoints:
//
//	POST /v1/submit              - submit a raw binary payload
//	POST /v1/submit_raw           - submit a base64-encoded JSON payload
//	GET  /v1/submission/{id}      - get submission info
//	GET  /v1/submission/{id}/preimage - get the raw payload bytes
//	GET  /health                  - liveness check
//	GET  /ready                   - readiness check
//	GET  /metrics                 - Prometheus metrics
package intake

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/availproject/turbo-gateway/internal/auth"
	pb "github.com/availproject/turbo-gateway/pkg/proto/submission/v1"
)

// RESTHandler exposes the submission service over plain HTTP/JSON.
type RESTHandler struct {
	svc  *Service
	auth *auth.Authenticator
	log  zerolog.Logger
}

func NewRESTHandler(svc *Service, authenticator *auth.Authenticator, logger zerolog.Logger) *RESTHandler {
	return &RESTHandler{svc: svc, auth: authenticator, log: logger.With().Str("component", "rest_handler").Logger()}
}

// RegisterRoutes registers every REST route on mux.
func (h *RESTHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/submit", h.withAuth(h.handleSubmit))
	mux.HandleFunc("/v1/submit_raw", h.withAuth(h.handleSubmitRaw))
	mux.HandleFunc("/v1/submission/", h.withAuth(h.handleSubmission))

	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/ready", h.handleReady)
	mux.Handle("/metrics", promhttp.Handler())
}

// withAuth resolves X-API-Key into a user id and injects it into the
// request context before delegating to next, using the same context key as
// internal/auth.Middleware, so the service layer reads the caller from the
// context whichever wrapper resolved it. The gRPC server in cmd/gateway
// installs no authentication interceptor, so calls arriving over gRPC carry
// no user id and the submit methods reject them as Unauthenticated.
func (h *RESTHandler) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawKey := strings.TrimSpace(r.Header.Get("X-API-Key"))
		userID, err := h.auth.Resolve(r.Context(), rawKey)
		if err != nil {
			h.writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		ctx := auth.ContextWithUserID(r.Context(), userID)
		next(w, r.WithContext(ctx))
	}
}

// handleSubmit handles POST /v1/submit: the request body is the raw payload
// bytes, and app_account_id is passed as a query parameter.
func (h *RESTHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	appAccountID := r.URL.Query().Get("app_account_id")
	if appAccountID == "" {
		h.writeError(w, http.StatusBadRequest, "app_account_id query parameter is required")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes+1))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "failed to read request body: "+err.Error())
		return
	}

	resp, err := h.svc.SubmitData(r.Context(), &pb.SubmitDataRequest{AppAccountId: appAccountID, Data: body})
	if err != nil {
		h.handleGRPCError(w, err)
		return
	}

	h.writeJSON(w, http.StatusAccepted, resp)
}

// handleSubmitRaw handles POST /v1/submit_raw, a JSON body carrying a
// base64-encoded payload, for callers who would rather not stream raw bytes.
func (h *RESTHandler) handleSubmitRaw(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req pb.SubmitRawDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	resp, err := h.svc.SubmitRawData(r.Context(), &req)
	if err != nil {
		h.handleGRPCError(w, err)
		return
	}

	h.writeJSON(w, http.StatusAccepted, resp)
}

// handleSubmission handles GET /v1/submission/{id} and
// GET /v1/submission/{id}/preimage.
func (h *RESTHandler) handleSubmission(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/submission/")
	ctx := r.Context()

	if strings.HasSuffix(rest, "/preimage") {
		submissionID := strings.TrimSuffix(rest, "/preimage")
		resp, err := h.svc.GetPreImage(ctx, &pb.GetPreImageRequest{SubmissionId: submissionID})
		if err != nil {
			h.handleGRPCError(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, resp)
		return
	}

	resp, err := h.svc.GetSubmissionInfo(ctx, &pb.GetSubmissionInfoRequest{SubmissionId: rest})
	if err != nil {
		h.handleGRPCError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *RESTHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (h *RESTHandler) handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

// handleGRPCError maps a gRPC status error surfaced from the service layer
// onto the matching HTTP status code.
func (h *RESTHandler) handleGRPCError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	message := err.Error()

	switch {
	case strings.Contains(message, "Unauthenticated") || strings.Contains(message, "unauthenticated"):
		statusCode = http.StatusUnauthorized
	case strings.Contains(message, "InvalidArgument") || strings.Contains(message, "invalid argument") || strings.Contains(message, "required"):
		statusCode = http.StatusBadRequest
	case strings.Contains(message, "PermissionDenied") || strings.Contains(message, "permission denied"):
		statusCode = http.StatusForbidden
	case strings.Contains(message, "NotFound") || strings.Contains(message, "not found"):
		statusCode = http.StatusNotFound
	}

	h.log.Error().Err(err).Int("status", statusCode).Msg("REST API error")
	h.writeError(w, statusCode, message)
}

func (h *RESTHandler) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

func (h *RESTHandler) writeError(w http.ResponseWriter, statusCode int, message string) {
	h.writeJSON(w, statusCode, map[string]interface{}{
		"error": map[string]interface{}{
			"code":    statusCode,
			"message": message,
		},
		"timestamp": time.Now().Unix(),
	})
}

// CORS is development-friendly cross-origin middleware, unchanged from the
// ledger service's REST bridge.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// LoggingMiddleware logs every HTTP request at info level with its status
// and duration.
func LoggingMiddleware(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", wrapped.statusCode).
				Dur("duration_ms", time.Since(start)).
				Str("remote_addr", r.RemoteAddr).
				Msg("HTTP request")
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
