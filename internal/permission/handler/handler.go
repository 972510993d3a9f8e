package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/avend/stockroom/internal/middleware"
	"github.com/avend/stockroom/internal/permission/domain"
	"github.com/avend/stockroom/internal/permission/usecase/command"
	"github.com/avend/stockroom/internal/permission/usecase/query"
)

// PermissionHandler handles HTTP requests for permission thresholds
type PermissionHandler struct {
	updateHandler *command.UpdateThresholdsHandler
	getHandler    *query.GetThresholdsHandler

	auth *middleware.SessionAuth

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewPermissionHandler creates a new permission handler
func NewPermissionHandler(
	updateHandler *command.UpdateThresholdsHandler,
	getHandler *query.GetThresholdsHandler,
	auth *middleware.SessionAuth,
) *PermissionHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "permission_service_requests_total",
			Help: "Total number of requests to permission service",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "permission_service_request_duration_seconds",
			Help:    "Duration of permission service requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)

	return &PermissionHandler{
		updateHandler:  updateHandler,
		getHandler:     getHandler,
		auth:           auth,
		requestCounter: requestCounter,
		requestLatency: requestLatency,
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware wraps handlers with Prometheus metrics
func (h *PermissionHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	}
}

// GetThresholds handles GET /permissions (admin only)
func (h *PermissionHandler) GetThresholds(w http.ResponseWriter, r *http.Request) {
	thresholds := h.getHandler.Handle(query.GetThresholdsQuery{})
	h.respondJSON(w, http.StatusOK, thresholds)
}

// UpdateThresholds handles PUT /permissions (admin only)
func (h *PermissionHandler) UpdateThresholds(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	var req struct {
		Thresholds map[string]int `json:"thresholds"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cmd := command.UpdateThresholdsCommand{
		ActorLevel: actor.AccountLevel,
		Thresholds: req.Thresholds,
	}

	if err := h.updateHandler.Handle(cmd); err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			h.respondError(w, http.StatusForbidden, err.Error())
			return
		}
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, h.getHandler.Handle(query.GetThresholdsQuery{}))
}

// respondJSON sends a JSON response
func (h *PermissionHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func (h *PermissionHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// RegisterRoutes registers all permission routes
func (h *PermissionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/permissions", h.metricsMiddleware("/permissions", h.auth.RequireAdmin(h.GetThresholds))).Methods("GET")
	router.HandleFunc("/permissions", h.metricsMiddleware("/permissions", h.auth.RequireAdmin(h.UpdateThresholds))).Methods("PUT")
}
