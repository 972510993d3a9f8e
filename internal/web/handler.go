// Package web serves the HTML pages and form endpoints of the inventory
// application. All state changes go through the same command handlers as the
// JSON API; this package only translates forms and renders templates.
package web

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	deliverydomain "github.com/avend/stockroom/internal/delivery/domain"
	deliverycmd "github.com/avend/stockroom/internal/delivery/usecase/command"
	deliveryquery "github.com/avend/stockroom/internal/delivery/usecase/query"
	disposaldomain "github.com/avend/stockroom/internal/disposal/domain"
	disposalcmd "github.com/avend/stockroom/internal/disposal/usecase/command"
	disposalquery "github.com/avend/stockroom/internal/disposal/usecase/query"
	"github.com/avend/stockroom/internal/middleware"
	permcmd "github.com/avend/stockroom/internal/permission/usecase/command"
	permquery "github.com/avend/stockroom/internal/permission/usecase/query"
	productdomain "github.com/avend/stockroom/internal/product/domain"
	productcmd "github.com/avend/stockroom/internal/product/usecase/command"
	productquery "github.com/avend/stockroom/internal/product/usecase/query"
	supplierdomain "github.com/avend/stockroom/internal/supplier/domain"
	suppliercmd "github.com/avend/stockroom/internal/supplier/usecase/command"
	supplierquery "github.com/avend/stockroom/internal/supplier/usecase/query"
	transactiondomain "github.com/avend/stockroom/internal/transaction/domain"
	transactioncmd "github.com/avend/stockroom/internal/transaction/usecase/command"
	transactionquery "github.com/avend/stockroom/internal/transaction/usecase/query"
	userdomain "github.com/avend/stockroom/internal/user/domain"
	usercmd "github.com/avend/stockroom/internal/user/usecase/command"
	userquery "github.com/avend/stockroom/internal/user/usecase/query"
	"github.com/avend/stockroom/kafka"
	"github.com/avend/stockroom/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// lineSlots is the number of product/quantity rows rendered on workflow forms
const lineSlots = 5

// Handlers bundles the command and query handlers the pages are built on
type Handlers struct {
	Auth      *middleware.SessionAuth
	Publisher *kafka.Publisher

	Login    *usercmd.LoginUserHandler
	Logout   *usercmd.LogoutUserHandler
	Register *usercmd.RegisterUserHandler

	ListUsers    *userquery.ListUsersHandler
	UpdateLevels *usercmd.UpdateAccountLevelsHandler
	DeleteUser   *usercmd.DeleteUserHandler

	ListProducts  *productquery.ListProductsHandler
	ListLowStock  *productquery.ListLowStockHandler
	GetProduct    *productquery.GetProductHandler
	CreateProduct *productcmd.CreateProductHandler

	ListSuppliers  *supplierquery.ListSuppliersHandler
	GetSupplier    *supplierquery.GetSupplierHandler
	CreateSupplier *suppliercmd.CreateSupplierHandler

	ListDeliveries  *deliveryquery.ListDeliveriesHandler
	GetDelivery     *deliveryquery.GetDeliveryHandler
	CreateDelivery  *deliverycmd.CreateDeliveryHandler
	ConfirmDelivery *deliverycmd.ConfirmDeliveryHandler
	RejectDelivery  *deliverycmd.RejectDeliveryHandler
	CountPending    func() (int64, error)

	ListTransactions  *transactionquery.ListTransactionsHandler
	GetTransaction    *transactionquery.GetTransactionHandler
	RecordTransaction *transactioncmd.RecordTransactionHandler

	ListDisposals  *disposalquery.ListDisposalsHandler
	GetDisposal    *disposalquery.GetDisposalHandler
	RecordDisposal *disposalcmd.RecordDisposalHandler

	GetThresholds    *permquery.GetThresholdsHandler
	UpdateThresholds *permcmd.UpdateThresholdsHandler
}

// WebHandler renders pages and processes form submissions
type WebHandler struct {
	h Handlers

	pageCounter *prometheus.CounterVec
}

// NewWebHandler creates a new web handler
func NewWebHandler(h Handlers) *WebHandler {
	pageCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "web_page_requests_total",
			Help: "Total number of page and form requests",
		},
		[]string{"page"},
	)
	prometheus.MustRegister(pageCounter)

	return &WebHandler{h: h, pageCounter: pageCounter}
}

type basePage struct {
	User  *userdomain.User
	Error string
}

// lineItem is one parsed product/quantity form row
type lineItem struct {
	ProductID uint
	Quantity  int
}

func (h *WebHandler) render(w http.ResponseWriter, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		logger.Logger.Error().
			Err(err).
			Str("template", name).
			Msg("Failed to render template")
	}
}

// requireUser redirects anonymous visitors to the login page
func (h *WebHandler) requireUser(w http.ResponseWriter, r *http.Request) (*userdomain.User, bool) {
	user, err := h.h.Auth.Resolve(r)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return nil, false
	}
	return user, true
}

// requireAdmin sends non-admins back to the overview
func (h *WebHandler) requireAdmin(w http.ResponseWriter, r *http.Request) (*userdomain.User, bool) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return nil, false
	}
	if !user.IsAdmin() {
		http.Redirect(w, r, "/homepage", http.StatusSeeOther)
		return nil, false
	}
	return user, true
}

func redirectWithError(w http.ResponseWriter, r *http.Request, path string, err error) {
	http.Redirect(w, r, path+"?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
}

// pathID reads the numeric {id} route variable; unparseable ids come back as
// zero and fall through to a not-found lookup.
func pathID(r *http.Request) uint {
	id, _ := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	return uint(id)
}

// parseLineItems zips the parallel products/quantities form arrays. Rows with
// no product selected or a non-positive quantity are dropped.
func parseLineItems(r *http.Request) []lineItem {
	products := r.Form["products"]
	quantities := r.Form["quantities"]

	n := len(products)
	if len(quantities) < n {
		n = len(quantities)
	}

	items := make([]lineItem, 0, n)
	for i := 0; i < n; i++ {
		productID, err := strconv.ParseUint(products[i], 10, 32)
		if err != nil || productID == 0 {
			continue
		}
		quantity, err := strconv.Atoi(quantities[i])
		if err != nil || quantity <= 0 {
			continue
		}
		items = append(items, lineItem{ProductID: uint(productID), Quantity: quantity})
	}
	return items
}

// Index handles GET /. Logged-in users land on the overview.
func (h *WebHandler) Index(w http.ResponseWriter, r *http.Request) {
	if _, err := h.h.Auth.Resolve(r); err == nil {
		http.Redirect(w, r, "/homepage", http.StatusSeeOther)
		return
	}
	h.render(w, "login.html", basePage{Error: r.URL.Query().Get("error")})
}

// LoginForm handles POST /login
func (h *WebHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	response, err := h.h.Login.Handle(usercmd.LoginUserCommand{
		UserID:   r.PostFormValue("user_id"),
		Password: r.PostFormValue("password"),
	})
	if err != nil {
		http.Redirect(w, r, "/?error="+url.QueryEscape("Invalid credentials"), http.StatusSeeOther)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.h.Auth.CookieName(),
		Value:    response.Token,
		Path:     "/",
		Expires:  response.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/homepage", http.StatusSeeOther)
}

// LogoutForm handles /logout
func (h *WebHandler) LogoutForm(w http.ResponseWriter, r *http.Request) {
	token := ""
	if cookie, err := r.Cookie(h.h.Auth.CookieName()); err == nil {
		token = cookie.Value
	}
	if err := h.h.Logout.Handle(usercmd.LogoutUserCommand{Token: token}); err != nil {
		logger.Logger.Warn().Err(err).Msg("Logout failed")
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.h.Auth.CookieName(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// RegisterPage handles GET /register
func (h *WebHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, "register.html", basePage{Error: r.URL.Query().Get("error")})
}

// RegisterForm handles POST /register. New accounts start at level zero and
// land back on the login page.
func (h *WebHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}

	_, err := h.h.Register.Handle(usercmd.RegisterUserCommand{
		UserID:    r.PostFormValue("user_id"),
		FirstName: r.PostFormValue("first_name"),
		LastName:  r.PostFormValue("last_name"),
		Password:  r.PostFormValue("password"),
	})
	if err != nil {
		redirectWithError(w, r, "/register", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type homePage struct {
	basePage
	PendingDeliveries int64
	LowStock          []productdomain.InventoryItem
	Products          []productdomain.InventoryItem
	Deliveries        []deliverydomain.Delivery
	Disposals         []disposaldomain.DisposedInventory
}

// Home handles GET /homepage
func (h *WebHandler) Home(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	lowStock, err := h.h.ListLowStock.Handle(productquery.ListLowStockQuery{})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to load low stock items")
	}
	products, err := h.h.ListProducts.Handle(productquery.ListProductsQuery{})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to list products")
	}
	deliveries, err := h.h.ListDeliveries.Handle(deliveryquery.ListDeliveriesQuery{})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to list deliveries")
	}
	disposals, err := h.h.ListDisposals.Handle(disposalquery.ListDisposalsQuery{})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to list disposals")
	}

	var pending int64
	if h.h.CountPending != nil {
		if pending, err = h.h.CountPending(); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to count pending deliveries")
		}
	}

	h.render(w, "home.html", homePage{
		basePage:          basePage{User: user},
		PendingDeliveries: pending,
		LowStock:          lowStock,
		Products:          products,
		Deliveries:        deliveries,
		Disposals:         disposals,
	})
}

type productsPage struct {
	basePage
	Products  []productdomain.InventoryItem
	Suppliers []supplierdomain.Supplier
}

// ProductsPage handles GET /products
func (h *WebHandler) ProductsPage(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	products, err := h.h.ListProducts.Handle(productquery.ListProductsQuery{})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to list products")
	}
	suppliers, err := h.h.ListSuppliers.Handle(supplierquery.ListSuppliersQuery{})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to list suppliers")
	}

	h.render(w, "products.html", productsPage{
		basePage:  basePage{User: user, Error: r.URL.Query().Get("error")},
		Products:  products,
		Suppliers: suppliers,
	})
}

// ProductDetailPage handles GET /products/{id}. It reuses the list template
// with a single row, the way the entity pages work throughout.
func (h *WebHandler) ProductDetailPage(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	product, err := h.h.GetProduct.Handle(productquery.GetProductQuery{ProductID: pathID(r)})
	if err != nil {
		http.NotFound(w, r)
		return
	}

	h.render(w, "products.html", productsPage{
		basePage: basePage{User: user},
		Products: []productdomain.InventoryItem{*product},
	})
}

// AddProductForm handles POST /add_product
func (h *WebHandler) AddProductForm(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/products", http.StatusSeeOther)
		return
	}

	supplierID, _ := strconv.ParseUint(r.PostFormValue("supplier_id"), 10, 32)
	stock, _ := strconv.Atoi(r.PostFormValue("stock"))
	restockLimit, _ := strconv.Atoi(r.PostFormValue("restock_limit"))

	_, err := h.h.CreateProduct.Handle(productcmd.CreateProductCommand{
		ActorLevel:   user.AccountLevel,
		Description:  r.PostFormValue("description"),
		SupplierID:   uint(supplierID),
		Stock:        stock,
		RestockLimit: restockLimit,
		Image:        r.PostFormValue("image"),
	})
	if err != nil {
		redirectWithError(w, r, "/products", err)
		return
	}
	http.Redirect(w, r, "/products", http.StatusSeeOther)
}

type suppliersPage struct {
	basePage
	Suppliers []supplierdomain.Supplier
}

// SuppliersPage handles GET /suppliers
func (h *WebHandler) SuppliersPage(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	suppliers, err := h.h.ListSuppliers.Handle(supplierquery.ListSuppliersQuery{})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to list suppliers")
	}

	h.render(w, "suppliers.html", suppliersPage{
		basePage:  basePage{User: user, Error: r.URL.Query().Get("error")},
		Suppliers: suppliers,
	})
}

// SupplierDetailPage handles GET /suppliers/{id}
func (h *WebHandler) SupplierDetailPage(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	supplier, err := h.h.GetSupplier.Handle(supplierquery.GetSupplierQuery{SupplierID: pathID(r)})
	if err != nil {
		http.NotFound(w, r)
		return
	}

	h.render(w, "suppliers.html", suppliersPage{
		basePage:  basePage{User: user},
		Suppliers: []supplierdomain.Supplier{*supplier},
	})
}

// AddSupplierForm handles POST /add_supplier
func (h *WebHandler) AddSupplierForm(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/suppliers", http.StatusSeeOther)
		return
	}

	_, err := h.h.CreateSupplier.Handle(suppliercmd.CreateSupplierCommand{
		ActorLevel: user.AccountLevel,
		Name:       r.PostFormValue("name"),
		Address:    r.PostFormValue("address"),
	})
	if err != nil {
		redirectWithError(w, r, "/suppliers", err)
		return
	}
	http.Redirect(w, r, "/suppliers", http.StatusSeeOther)
}

type deliveriesPage struct {
	basePage
	Deliveries []deliverydomain.Delivery
	Suppliers  []supplierdomain.Supplier
	Products   []productdomain.InventoryItem
	LineSlots  []int
}

// DeliveriesPage handles GET /deliveries
func (h *WebHandler) DeliveriesPage(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	deliveries, err := h.h.ListDeliveries.Handle(deliveryquery.ListDeliveriesQuery{})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to list deliveries")
	}
	suppliers, _ := h.h.ListSuppliers.Handle(supplierquery.ListSuppliersQuery{})
	products, _ := h.h.ListProducts.Handle(productquery.ListProductsQuery{})

	h.render(w, "deliveries.html", deliveriesPage{
		basePage:   basePage{User: user, Error: r.URL.Query().Get("error")},
		Deliveries: deliveries,
		Suppliers:  suppliers,
		Products:   products,
		LineSlots:  make([]int, lineSlots),
	})
}

// DeliveryDetailPage handles GET /deliveries/{id}
func (h *WebHandler) DeliveryDetailPage(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	delivery, err := h.h.GetDelivery.Handle(deliveryquery.GetDeliveryQuery{DeliveryID: pathID(r)})
	if err != nil {
		http.NotFound(w, r)
		return
	}

	h.render(w, "deliveries.html", deliveriesPage{
		basePage:   basePage{User: user},
		Deliveries: []deliverydomain.Delivery{*delivery},
		LineSlots:  make([]int, lineSlots),
	})
}

// AddDeliveryForm handles POST /add_delivery
func (h *WebHandler) AddDeliveryForm(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/deliveries", http.StatusSeeOther)
		return
	}

	dateExpected, _ := time.Parse("2006-01-02", r.PostFormValue("date_expected"))
	supplierID, _ := strconv.ParseUint(r.PostFormValue("supplier_id"), 10, 32)

	items := make([]deliverycmd.LineItem, 0, lineSlots)
	for _, line := range parseLineItems(r) {
		items = append(items, deliverycmd.LineItem{ProductID: line.ProductID, Quantity: line.Quantity})
	}

	_, err := h.h.CreateDelivery.Handle(deliverycmd.CreateDeliveryCommand{
		ActorLevel:   user.AccountLevel,
		DateExpected: dateExpected,
		SupplierID:   uint(supplierID),
		Items:        items,
	})
	if err != nil {
		redirectWithError(w, r, "/deliveries", err)
		return
	}
	http.Redirect(w, r, "/deliveries", http.StatusSeeOther)
}

// ConfirmDeliveryForm handles /confirm_delivery. The delivery id comes from
// the form body on POST and from the query string on GET.
func (h *WebHandler) ConfirmDeliveryForm(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/deliveries", http.StatusSeeOther)
		return
	}

	deliveryID, _ := strconv.ParseUint(r.FormValue("delivery_id"), 10, 32)

	delivery, err := h.h.ConfirmDelivery.Handle(deliverycmd.ConfirmDeliveryCommand{
		ActorLevel: user.AccountLevel,
		DeliveryID: uint(deliveryID),
	})
	if err != nil {
		redirectWithError(w, r, "/deliveries", err)
		return
	}

	if h.h.Publisher != nil {
		for _, line := range delivery.Items {
			event := kafka.StockMovementEvent{
				EventType:   kafka.EventTypeDeliveryConfirmed,
				ProductID:   line.ProductID,
				Quantity:    line.QuantityOrdered,
				ReferenceID: delivery.DeliveryID,
				ActorID:     user.UserID,
			}
			if err := h.h.Publisher.PublishStockMovement(r.Context(), event); err != nil {
				logger.Logger.Warn().Err(err).Uint("delivery_id", delivery.DeliveryID).Msg("Failed to publish delivery confirmation event")
			}
		}
	}

	http.Redirect(w, r, "/deliveries", http.StatusSeeOther)
}

// RejectDeliveryForm handles POST /reject_delivery
func (h *WebHandler) RejectDeliveryForm(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/deliveries", http.StatusSeeOther)
		return
	}

	deliveryID, _ := strconv.ParseUint(r.PostFormValue("delivery_id"), 10, 32)

	_, err := h.h.RejectDelivery.Handle(deliverycmd.RejectDeliveryCommand{
		ActorLevel: user.AccountLevel,
		DeliveryID: uint(deliveryID),
		Reason:     r.PostFormValue("reason"),
	})
	if err != nil {
		redirectWithError(w, r, "/deliveries", err)
		return
	}
	http.Redirect(w, r, "/deliveries", http.StatusSeeOther)
}

type transactionsPage struct {
	basePage
	Transactions []transactiondomain.Transaction
	Products     []productdomain.InventoryItem
	LineSlots    []int
}

// TransactionsPage handles GET /transactions
func (h *WebHandler) TransactionsPage(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	transactions, err := h.h.ListTransactions.Handle(transactionquery.ListTransactionsQuery{})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to list transactions")
	}
	products, _ := h.h.ListProducts.Handle(productquery.ListProductsQuery{})

	h.render(w, "transactions.html", transactionsPage{
		basePage:     basePage{User: user, Error: r.URL.Query().Get("error")},
		Transactions: transactions,
		Products:     products,
		LineSlots:    make([]int, lineSlots),
	})
}

// TransactionDetailPage handles GET /transactions/{id}
func (h *WebHandler) TransactionDetailPage(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	transaction, err := h.h.GetTransaction.Handle(transactionquery.GetTransactionQuery{TransactionID: pathID(r)})
	if err != nil {
		http.NotFound(w, r)
		return
	}

	h.render(w, "transactions.html", transactionsPage{
		basePage:     basePage{User: user},
		Transactions: []transactiondomain.Transaction{*transaction},
		LineSlots:    make([]int, lineSlots),
	})
}

// AddTransactionForm handles POST /add_transaction
func (h *WebHandler) AddTransactionForm(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/transactions", http.StatusSeeOther)
		return
	}

	items := make([]transactioncmd.LineItem, 0, lineSlots)
	for _, line := range parseLineItems(r) {
		items = append(items, transactioncmd.LineItem{ProductID: line.ProductID, Quantity: line.Quantity})
	}

	transaction, err := h.h.RecordTransaction.Handle(transactioncmd.RecordTransactionCommand{
		ActorLevel: user.AccountLevel,
		Items:      items,
	})
	if err != nil {
		redirectWithError(w, r, "/transactions", err)
		return
	}

	if h.h.Publisher != nil {
		for _, report := range transaction.Reports {
			event := kafka.StockMovementEvent{
				EventType:   kafka.EventTypeProductSold,
				ProductID:   report.ProductID,
				Quantity:    report.QuantitySold,
				ReferenceID: transaction.TransactionID,
				ActorID:     user.UserID,
			}
			if err := h.h.Publisher.PublishStockMovement(r.Context(), event); err != nil {
				logger.Logger.Warn().Err(err).Uint("transaction_id", transaction.TransactionID).Msg("Failed to publish sale event")
			}
		}
	}

	http.Redirect(w, r, "/transactions", http.StatusSeeOther)
}

type disposalsPage struct {
	basePage
	Disposals []disposaldomain.DisposedInventory
	Products  []productdomain.InventoryItem
	LineSlots []int
}

// DisposalsPage handles GET /disposals
func (h *WebHandler) DisposalsPage(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	disposals, err := h.h.ListDisposals.Handle(disposalquery.ListDisposalsQuery{})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to list disposals")
	}
	products, _ := h.h.ListProducts.Handle(productquery.ListProductsQuery{})

	h.render(w, "disposals.html", disposalsPage{
		basePage:  basePage{User: user, Error: r.URL.Query().Get("error")},
		Disposals: disposals,
		Products:  products,
		LineSlots: make([]int, lineSlots),
	})
}

// DisposalDetailPage handles GET /disposals/{id}
func (h *WebHandler) DisposalDetailPage(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	disposal, err := h.h.GetDisposal.Handle(disposalquery.GetDisposalQuery{DisposalID: pathID(r)})
	if err != nil {
		http.NotFound(w, r)
		return
	}

	h.render(w, "disposals.html", disposalsPage{
		basePage:  basePage{User: user},
		Disposals: []disposaldomain.DisposedInventory{*disposal},
		LineSlots: make([]int, lineSlots),
	})
}

// AddDisposalForm handles POST /add_disposal
func (h *WebHandler) AddDisposalForm(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/disposals", http.StatusSeeOther)
		return
	}

	items := make([]disposalcmd.LineItem, 0, lineSlots)
	for _, line := range parseLineItems(r) {
		items = append(items, disposalcmd.LineItem{ProductID: line.ProductID, Quantity: line.Quantity})
	}

	disposal, err := h.h.RecordDisposal.Handle(disposalcmd.RecordDisposalCommand{
		ActorID:    user.UserID,
		ActorLevel: user.AccountLevel,
		Reason:     r.PostFormValue("reason"),
		Items:      items,
	})
	if err != nil {
		redirectWithError(w, r, "/disposals", err)
		return
	}

	if h.h.Publisher != nil {
		for _, report := range disposal.Reports {
			event := kafka.StockMovementEvent{
				EventType:   kafka.EventTypeProductDisposed,
				ProductID:   report.ProductID,
				Quantity:    report.QuantityDisposed,
				ReferenceID: disposal.DisposalID,
				ActorID:     user.UserID,
			}
			if err := h.h.Publisher.PublishStockMovement(r.Context(), event); err != nil {
				logger.Logger.Warn().Err(err).Uint("disposal_id", disposal.DisposalID).Msg("Failed to publish disposal event")
			}
		}
	}

	http.Redirect(w, r, "/disposals", http.StatusSeeOther)
}

type usersPage struct {
	basePage
	Users []userdomain.User
}

// UsersPage handles GET /users (admin only)
func (h *WebHandler) UsersPage(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}

	users, err := h.h.ListUsers.Handle(userquery.ListUsersQuery{})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to list users")
	}

	h.render(w, "users.html", usersPage{
		basePage: basePage{User: user, Error: r.URL.Query().Get("error")},
		Users:    users,
	})
}

// UserChangesForm handles POST /user_changes. Each form field is named after
// a user id and carries the new account level.
func (h *WebHandler) UserChangesForm(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}

	levels := make(map[string]int, len(r.PostForm))
	for userID, values := range r.PostForm {
		if len(values) == 0 {
			continue
		}
		level, err := strconv.Atoi(values[0])
		if err != nil {
			continue
		}
		levels[userID] = level
	}

	if err := h.h.UpdateLevels.Handle(usercmd.UpdateAccountLevelsCommand{
		ActorLevel: user.AccountLevel,
		Levels:     levels,
	}); err != nil {
		redirectWithError(w, r, "/users", err)
		return
	}
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

// DeleteUserForm handles /delete_user/{id}
func (h *WebHandler) DeleteUserForm(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)

	if err := h.h.DeleteUser.Handle(usercmd.DeleteUserCommand{
		ActorID:  user.UserID,
		TargetID: vars["id"],
	}); err != nil {
		redirectWithError(w, r, "/users", err)
		return
	}
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

type permissionsPage struct {
	basePage
	Thresholds map[string]int
}

// PermissionsPage handles GET /permissions (admin only)
func (h *WebHandler) PermissionsPage(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}

	h.render(w, "permissions.html", permissionsPage{
		basePage:   basePage{User: user, Error: r.URL.Query().Get("error")},
		Thresholds: h.h.GetThresholds.Handle(permquery.GetThresholdsQuery{}),
	})
}

// PermissionsForm handles POST /permissions. Fields are named after actions;
// unknown names are ignored by the command.
func (h *WebHandler) PermissionsForm(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/permissions", http.StatusSeeOther)
		return
	}

	thresholds := make(map[string]int, len(r.PostForm))
	for action, values := range r.PostForm {
		if len(values) == 0 {
			continue
		}
		level, err := strconv.Atoi(values[0])
		if err != nil {
			continue
		}
		thresholds[action] = level
	}

	if err := h.h.UpdateThresholds.Handle(permcmd.UpdateThresholdsCommand{
		ActorLevel: user.AccountLevel,
		Thresholds: thresholds,
	}); err != nil {
		redirectWithError(w, r, "/permissions", err)
		return
	}
	http.Redirect(w, r, "/permissions", http.StatusSeeOther)
}

// page wraps a handler with the per-page request counter
func (h *WebHandler) page(name string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.pageCounter.WithLabelValues(name).Inc()
		next.ServeHTTP(w, r)
	}
}

// RegisterRoutes registers all pages and form endpoints
func (h *WebHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/", h.page("index", h.Index)).Methods("GET")
	router.HandleFunc("/login", h.page("login", h.LoginForm)).Methods("POST")
	router.HandleFunc("/logout", h.page("logout", h.LogoutForm)).Methods("GET", "POST")
	router.HandleFunc("/register", h.page("register", h.RegisterPage)).Methods("GET")
	router.HandleFunc("/register", h.page("register", h.RegisterForm)).Methods("POST")

	router.HandleFunc("/homepage", h.page("homepage", h.Home)).Methods("GET")

	router.HandleFunc("/products", h.page("products", h.ProductsPage)).Methods("GET")
	router.HandleFunc("/products/{id}", h.page("product", h.ProductDetailPage)).Methods("GET")
	router.HandleFunc("/add_product", h.page("add_product", h.AddProductForm)).Methods("POST")

	router.HandleFunc("/suppliers", h.page("suppliers", h.SuppliersPage)).Methods("GET")
	router.HandleFunc("/suppliers/{id}", h.page("supplier", h.SupplierDetailPage)).Methods("GET")
	router.HandleFunc("/add_supplier", h.page("add_supplier", h.AddSupplierForm)).Methods("POST")

	router.HandleFunc("/deliveries", h.page("deliveries", h.DeliveriesPage)).Methods("GET")
	router.HandleFunc("/deliveries/{id}", h.page("delivery", h.DeliveryDetailPage)).Methods("GET")
	router.HandleFunc("/add_delivery", h.page("add_delivery", h.AddDeliveryForm)).Methods("POST")
	router.HandleFunc("/confirm_delivery", h.page("confirm_delivery", h.ConfirmDeliveryForm)).Methods("GET", "POST")
	router.HandleFunc("/reject_delivery", h.page("reject_delivery", h.RejectDeliveryForm)).Methods("POST")

	router.HandleFunc("/transactions", h.page("transactions", h.TransactionsPage)).Methods("GET")
	router.HandleFunc("/transactions/{id}", h.page("transaction", h.TransactionDetailPage)).Methods("GET")
	router.HandleFunc("/add_transaction", h.page("add_transaction", h.AddTransactionForm)).Methods("POST")

	router.HandleFunc("/disposals", h.page("disposals", h.DisposalsPage)).Methods("GET")
	router.HandleFunc("/disposals/{id}", h.page("disposal", h.DisposalDetailPage)).Methods("GET")
	router.HandleFunc("/add_disposal", h.page("add_disposal", h.AddDisposalForm)).Methods("POST")

	router.HandleFunc("/users", h.page("users", h.UsersPage)).Methods("GET")
	router.HandleFunc("/user_changes", h.page("user_changes", h.UserChangesForm)).Methods("POST")
	router.HandleFunc("/delete_user/{id}", h.page("delete_user", h.DeleteUserForm)).Methods("GET", "POST")

	router.HandleFunc("/permissions", h.page("permissions", h.PermissionsPage)).Methods("GET")
	router.HandleFunc("/permissions", h.page("permissions", h.PermissionsForm)).Methods("POST")
}
