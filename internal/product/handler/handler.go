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
	permdomain "github.com/avend/stockroom/internal/permission/domain"
	"github.com/avend/stockroom/internal/product/domain"
	"github.com/avend/stockroom/internal/product/usecase/command"
	"github.com/avend/stockroom/internal/product/usecase/query"
	"github.com/avend/stockroom/pkg/logger"
)

// CacheFunc wraps a read endpoint with response caching
type CacheFunc func(http.HandlerFunc) http.HandlerFunc

// ProductHandler handles HTTP requests for inventory items
type ProductHandler struct {
	// Command handlers
	createHandler *command.CreateProductHandler
	updateHandler *command.UpdateProductHandler
	deleteHandler *command.DeleteProductHandler

	// Query handlers
	getHandler      *query.GetProductHandler
	listHandler     *query.ListProductsHandler
	lowStockHandler *query.ListLowStockHandler

	auth  *middleware.SessionAuth
	cache CacheFunc

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	lowStockItems  prometheus.Gauge
}

// NewProductHandler creates a new product handler
func NewProductHandler(
	createHandler *command.CreateProductHandler,
	updateHandler *command.UpdateProductHandler,
	deleteHandler *command.DeleteProductHandler,
	repo domain.ProductRepository,
	auth *middleware.SessionAuth,
	cache CacheFunc,
) *ProductHandler {
	if cache == nil {
		cache = func(next http.HandlerFunc) http.HandlerFunc { return next }
	}

	// Initialize Prometheus metrics
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "product_service_requests_total",
			Help: "Total number of requests to product service",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "product_service_request_duration_seconds",
			Help:    "Duration of product service requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	lowStockItems := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "product_service_low_stock_items",
			Help: "Number of inventory items below their restock limit",
		},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)
	prometheus.MustRegister(lowStockItems)

	return &ProductHandler{
		createHandler:   createHandler,
		updateHandler:   updateHandler,
		deleteHandler:   deleteHandler,
		getHandler:      query.NewGetProductHandler(repo),
		listHandler:     query.NewListProductsHandler(repo),
		lowStockHandler: query.NewListLowStockHandler(repo),
		auth:            auth,
		cache:           cache,
		requestCounter:  requestCounter,
		requestLatency:  requestLatency,
		lowStockItems:   lowStockItems,
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
func (h *ProductHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	}
}

// CreateProduct handles POST /products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	var req struct {
		Description  string `json:"description"`
		SupplierID   uint   `json:"supplier_id"`
		Stock        int    `json:"stock"`
		RestockLimit int    `json:"restock_limit"`
		Image        string `json:"image"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cmd := command.CreateProductCommand{
		ActorLevel:   actor.AccountLevel,
		Description:  req.Description,
		SupplierID:   req.SupplierID,
		Stock:        req.Stock,
		RestockLimit: req.RestockLimit,
		Image:        req.Image,
	}

	item, err := h.createHandler.Handle(cmd)
	if err != nil {
		h.respondError(w, statusForError(err), err.Error())
		return
	}

	h.respondJSON(w, http.StatusCreated, item)
}

// GetProduct handles GET /products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	item, err := h.getHandler.Handle(query.GetProductQuery{ProductID: uint(id)})
	if err != nil {
		h.respondError(w, statusForError(err), err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, item)
}

// ListProducts handles GET /products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("skip"))

	items, err := h.listHandler.Handle(query.ListProductsQuery{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to list products")
		h.respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.respondJSON(w, http.StatusOK, items)
}

// ListLowStock handles GET /products/low_stock
func (h *ProductHandler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("skip"))

	items, err := h.lowStockHandler.Handle(query.ListLowStockQuery{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to list low stock items")
		h.respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.lowStockItems.Set(float64(len(items)))
	h.respondJSON(w, http.StatusOK, items)
}

// UpdateProduct handles PUT /products/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req struct {
		Description  string `json:"description"`
		SupplierID   uint   `json:"supplier_id"`
		RestockLimit *int   `json:"restock_limit"`
		Image        string `json:"image"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cmd := command.UpdateProductCommand{
		ActorLevel:   actor.AccountLevel,
		ProductID:    uint(id),
		Description:  req.Description,
		SupplierID:   req.SupplierID,
		RestockLimit: req.RestockLimit,
		Image:        req.Image,
	}

	item, err := h.updateHandler.Handle(cmd)
	if err != nil {
		h.respondError(w, statusForError(err), err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, item)
}

// DeleteProduct handles DELETE /products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	cmd := command.DeleteProductCommand{
		ActorLevel: actor.AccountLevel,
		ProductID:  uint(id),
	}

	if err := h.deleteHandler.Handle(cmd); err != nil {
		h.respondError(w, statusForError(err), err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"message": "Product deleted"})
}

// statusForError maps domain errors to HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownSupplier):
		return http.StatusBadRequest
	case errors.Is(err, permdomain.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

// respondJSON sends a JSON response
func (h *ProductHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func (h *ProductHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/products", h.metricsMiddleware("/products", h.cache(h.ListProducts))).Methods("GET")
	router.HandleFunc("/products/low_stock", h.metricsMiddleware("/products/low_stock", h.cache(h.ListLowStock))).Methods("GET")
	router.HandleFunc("/products/{id}", h.metricsMiddleware("/products/{id}", h.GetProduct)).Methods("GET")
	router.HandleFunc("/products", h.metricsMiddleware("/products", h.auth.RequireAuth(h.CreateProduct))).Methods("POST")
	router.HandleFunc("/products/{id}", h.metricsMiddleware("/products/{id}", h.auth.RequireAuth(h.UpdateProduct))).Methods("PUT")
	router.HandleFunc("/products/{id}", h.metricsMiddleware("/products/{id}", h.auth.RequireAuth(h.DeleteProduct))).Methods("DELETE")
}
