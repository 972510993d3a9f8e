package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/avend/stockroom/internal/delivery/domain"
	"github.com/avend/stockroom/internal/delivery/usecase/command"
	"github.com/avend/stockroom/internal/delivery/usecase/query"
	"github.com/avend/stockroom/internal/middleware"
	permdomain "github.com/avend/stockroom/internal/permission/domain"
	"github.com/avend/stockroom/kafka"
	"github.com/avend/stockroom/pkg/logger"
)

// CacheFunc wraps a read endpoint with response caching
type CacheFunc func(http.HandlerFunc) http.HandlerFunc

// DeliveryHandler handles HTTP requests for deliveries
type DeliveryHandler struct {
	createHandler  *command.CreateDeliveryHandler
	confirmHandler *command.ConfirmDeliveryHandler
	rejectHandler  *command.RejectDeliveryHandler

	getHandler  *query.GetDeliveryHandler
	listHandler *query.ListDeliveriesHandler

	repo      domain.DeliveryRepository
	auth      *middleware.SessionAuth
	cache     CacheFunc
	publisher *kafka.Publisher

	requestCounter    *prometheus.CounterVec
	requestLatency    *prometheus.HistogramVec
	pendingDeliveries prometheus.Gauge
}

// NewDeliveryHandler creates a new delivery handler
func NewDeliveryHandler(
	createHandler *command.CreateDeliveryHandler,
	confirmHandler *command.ConfirmDeliveryHandler,
	rejectHandler *command.RejectDeliveryHandler,
	repo domain.DeliveryRepository,
	auth *middleware.SessionAuth,
	cache CacheFunc,
	publisher *kafka.Publisher,
) *DeliveryHandler {
	if cache == nil {
		cache = func(next http.HandlerFunc) http.HandlerFunc { return next }
	}

	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delivery_service_requests_total",
			Help: "Total number of requests to delivery service",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "delivery_service_request_duration_seconds",
			Help:    "Duration of delivery service requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	pendingDeliveries := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "delivery_service_pending_deliveries",
			Help: "Number of deliveries waiting to be confirmed or rejected",
		},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)
	prometheus.MustRegister(pendingDeliveries)

	return &DeliveryHandler{
		createHandler:     createHandler,
		confirmHandler:    confirmHandler,
		rejectHandler:     rejectHandler,
		getHandler:        query.NewGetDeliveryHandler(repo),
		listHandler:       query.NewListDeliveriesHandler(repo),
		repo:              repo,
		auth:              auth,
		cache:             cache,
		publisher:         publisher,
		requestCounter:    requestCounter,
		requestLatency:    requestLatency,
		pendingDeliveries: pendingDeliveries,
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
func (h *DeliveryHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	}
}

func (h *DeliveryHandler) updatePendingDeliveriesMetric() {
	if count, err := h.repo.CountPending(); err == nil {
		h.pendingDeliveries.Set(float64(count))
	}
}

// CreateDelivery handles POST /deliveries
func (h *DeliveryHandler) CreateDelivery(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	var req struct {
		DateExpected time.Time `json:"date_expected"`
		SupplierID   uint      `json:"supplier_id"`
		Items        []struct {
			ProductID uint `json:"product_id"`
			Quantity  int  `json:"quantity"`
		} `json:"items"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	items := make([]command.LineItem, 0, len(req.Items))
	for _, line := range req.Items {
		items = append(items, command.LineItem{ProductID: line.ProductID, Quantity: line.Quantity})
	}

	cmd := command.CreateDeliveryCommand{
		ActorLevel:   actor.AccountLevel,
		DateExpected: req.DateExpected,
		SupplierID:   req.SupplierID,
		Items:        items,
	}

	delivery, err := h.createHandler.Handle(cmd)
	if err != nil {
		h.respondError(w, statusForError(err), err.Error())
		return
	}

	h.updatePendingDeliveriesMetric()
	h.respondJSON(w, http.StatusCreated, delivery)
}

// GetDelivery handles GET /deliveries/{id}
func (h *DeliveryHandler) GetDelivery(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid delivery ID")
		return
	}

	delivery, err := h.getHandler.Handle(query.GetDeliveryQuery{DeliveryID: uint(id)})
	if err != nil {
		h.respondError(w, statusForError(err), err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, delivery)
}

// ListDeliveries handles GET /deliveries
func (h *DeliveryHandler) ListDeliveries(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("skip"))

	deliveries, err := h.listHandler.Handle(query.ListDeliveriesQuery{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to list deliveries")
		h.respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.updatePendingDeliveriesMetric()
	h.respondJSON(w, http.StatusOK, deliveries)
}

// ConfirmDelivery handles POST /deliveries/{id}/confirm
func (h *DeliveryHandler) ConfirmDelivery(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid delivery ID")
		return
	}

	cmd := command.ConfirmDeliveryCommand{
		ActorLevel: actor.AccountLevel,
		DeliveryID: uint(id),
	}

	delivery, err := h.confirmHandler.Handle(cmd)
	if err != nil {
		h.respondError(w, statusForError(err), err.Error())
		return
	}

	h.publishStockMovements(r, delivery, actor.UserID)
	h.updatePendingDeliveriesMetric()
	h.respondJSON(w, http.StatusOK, delivery)
}

// RejectDelivery handles POST /deliveries/{id}/reject
func (h *DeliveryHandler) RejectDelivery(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid delivery ID")
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cmd := command.RejectDeliveryCommand{
		ActorLevel: actor.AccountLevel,
		DeliveryID: uint(id),
		Reason:     req.Reason,
	}

	delivery, err := h.rejectHandler.Handle(cmd)
	if err != nil {
		h.respondError(w, statusForError(err), err.Error())
		return
	}

	h.updatePendingDeliveriesMetric()
	h.respondJSON(w, http.StatusOK, delivery)
}

// publishStockMovements emits one event per confirmed line item. Publishing is
// best-effort; the confirmation has already been committed.
func (h *DeliveryHandler) publishStockMovements(r *http.Request, delivery *domain.Delivery, actorID string) {
	if h.publisher == nil {
		return
	}

	for _, line := range delivery.Items {
		event := kafka.StockMovementEvent{
			EventType:   kafka.EventTypeDeliveryConfirmed,
			ProductID:   line.ProductID,
			Quantity:    line.QuantityOrdered,
			ReferenceID: delivery.DeliveryID,
			ActorID:     actorID,
		}
		if err := h.publisher.PublishStockMovement(r.Context(), event); err != nil {
			logger.Logger.Warn().
				Err(err).
				Uint("delivery_id", delivery.DeliveryID).
				Uint("product_id", line.ProductID).
				Msg("Failed to publish delivery confirmation event")
		}
	}
}

// statusForError maps domain errors to HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotPending):
		return http.StatusConflict
	case errors.Is(err, permdomain.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

// respondJSON sends a JSON response
func (h *DeliveryHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func (h *DeliveryHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// RegisterRoutes registers all delivery routes
func (h *DeliveryHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/deliveries", h.metricsMiddleware("/deliveries", h.cache(h.ListDeliveries))).Methods("GET")
	router.HandleFunc("/deliveries/{id}", h.metricsMiddleware("/deliveries/{id}", h.GetDelivery)).Methods("GET")
	router.HandleFunc("/deliveries", h.metricsMiddleware("/deliveries", h.auth.RequireAuth(h.CreateDelivery))).Methods("POST")
	router.HandleFunc("/deliveries/{id}/confirm", h.metricsMiddleware("/deliveries/{id}/confirm", h.auth.RequireAuth(h.ConfirmDelivery))).Methods("POST")
	router.HandleFunc("/deliveries/{id}/reject", h.metricsMiddleware("/deliveries/{id}/reject", h.auth.RequireAuth(h.RejectDelivery))).Methods("POST")
}
