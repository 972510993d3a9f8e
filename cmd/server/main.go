package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/avend/stockroom/internal/config"
	deliveryhandler "github.com/avend/stockroom/internal/delivery/handler"
	deliveryrepo "github.com/avend/stockroom/internal/delivery/repository"
	deliverycmd "github.com/avend/stockroom/internal/delivery/usecase/command"
	deliveryquery "github.com/avend/stockroom/internal/delivery/usecase/query"
	disposalhandler "github.com/avend/stockroom/internal/disposal/handler"
	disposalrepo "github.com/avend/stockroom/internal/disposal/repository"
	disposalcmd "github.com/avend/stockroom/internal/disposal/usecase/command"
	disposalquery "github.com/avend/stockroom/internal/disposal/usecase/query"
	"github.com/avend/stockroom/internal/middleware"
	"github.com/avend/stockroom/internal/permission"
	permhandler "github.com/avend/stockroom/internal/permission/handler"
	permrepo "github.com/avend/stockroom/internal/permission/repository"
	permcmd "github.com/avend/stockroom/internal/permission/usecase/command"
	permquery "github.com/avend/stockroom/internal/permission/usecase/query"
	producthandler "github.com/avend/stockroom/internal/product/handler"
	productrepo "github.com/avend/stockroom/internal/product/repository"
	productcmd "github.com/avend/stockroom/internal/product/usecase/command"
	productquery "github.com/avend/stockroom/internal/product/usecase/query"
	supplierhandler "github.com/avend/stockroom/internal/supplier/handler"
	supplierrepo "github.com/avend/stockroom/internal/supplier/repository"
	suppliercmd "github.com/avend/stockroom/internal/supplier/usecase/command"
	supplierquery "github.com/avend/stockroom/internal/supplier/usecase/query"
	transactionhandler "github.com/avend/stockroom/internal/transaction/handler"
	transactionrepo "github.com/avend/stockroom/internal/transaction/repository"
	transactioncmd "github.com/avend/stockroom/internal/transaction/usecase/command"
	transactionquery "github.com/avend/stockroom/internal/transaction/usecase/query"
	userdomain "github.com/avend/stockroom/internal/user/domain"
	userhandler "github.com/avend/stockroom/internal/user/handler"
	userrepo "github.com/avend/stockroom/internal/user/repository"
	usercmd "github.com/avend/stockroom/internal/user/usecase/command"
	userquery "github.com/avend/stockroom/internal/user/usecase/query"
	"github.com/avend/stockroom/internal/web"
	"github.com/avend/stockroom/kafka"
	"github.com/avend/stockroom/pkg/database"
	"github.com/avend/stockroom/pkg/logger"
	"github.com/avend/stockroom/pkg/tracing"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.ServiceName, cfg.IsDevelopment())
	logger.SetLevel(os.Getenv("LOG_LEVEL"))

	// Tracing
	tp, err := tracing.InitTracer(cfg.ServiceName)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize tracer")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(ctx, tp); err != nil {
			logger.Logger.Warn().Err(err).Msg("Tracer shutdown failed")
		}
	}()

	// Database connections: gorm for the aggregates, database/sql for sessions
	db, err := database.NewGormConnection(cfg.DB)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}
	defer sqlDB.Close()

	rawDB, err := database.NewPostgresConnection(cfg.DB)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to open session database connection")
	}
	defer rawDB.Close()

	// Repositories and migrations
	users := userrepo.NewGormUserRepository(db)
	products := productrepo.NewGormProductRepository(db)
	suppliers := supplierrepo.NewGormSupplierRepository(db)
	deliveries := deliveryrepo.NewGormDeliveryRepository(db)
	transactions := transactionrepo.NewGormTransactionRepository(db)
	disposals := disposalrepo.NewGormDisposalRepository(db)
	permissions := permrepo.NewGormPermissionRepository(db)
	sessions := userrepo.NewPostgresSessionRepository(rawDB)

	type migrator interface{ AutoMigrate() error }
	for _, m := range []migrator{users, suppliers, products, deliveries, transactions, disposals, permissions} {
		if err := m.AutoMigrate(); err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
		}
	}
	if err := sessions.Migrate(); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to migrate sessions table")
	}

	// Permission thresholds: persisted row, optionally seeded from a TOML file
	permSet, err := permissions.Load()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to load permission thresholds")
	}
	if cfg.PermissionSeedFile != "" {
		if err := permission.SeedFromFile(cfg.PermissionSeedFile, permSet); err != nil {
			logger.Logger.Fatal().Err(err).Str("file", cfg.PermissionSeedFile).Msg("Failed to seed permission thresholds")
		}
		if err := permissions.Save(permSet); err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to persist seeded thresholds")
		}
	}
	permConfig := permission.NewConfig(permSet)

	// Optional Redis response cache
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Logger.Warn().Err(err).Msg("Redis unreachable, response cache disabled")
			redisClient = nil
		}
	}
	cacheConfig := middleware.DefaultCacheConfig()
	if cfg.Redis.CacheTTL > 0 {
		cacheConfig.DefaultTTL = cfg.Redis.CacheTTL
	}
	cacheMw := middleware.CacheMiddleware(redisClient, cacheConfig)

	// Optional Kafka event bus
	var publisher *kafka.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err = kafka.NewPublisher(cfg.Kafka.Brokers)
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to create Kafka publisher")
		}
		defer publisher.Close()
	}

	// Command handlers shared by the API and the web pages
	createProduct := productcmd.NewCreateProductHandler(products, suppliers, permConfig)
	updateProduct := productcmd.NewUpdateProductHandler(products, suppliers, permConfig)
	deleteProduct := productcmd.NewDeleteProductHandler(products, permConfig)
	createSupplier := suppliercmd.NewCreateSupplierHandler(suppliers, permConfig)
	updateSupplier := suppliercmd.NewUpdateSupplierHandler(suppliers, permConfig)
	createDelivery := deliverycmd.NewCreateDeliveryHandler(deliveries, products, suppliers, permConfig)
	confirmDelivery := deliverycmd.NewConfirmDeliveryHandler(deliveries, permConfig)
	rejectDelivery := deliverycmd.NewRejectDeliveryHandler(deliveries, permConfig)
	recordTransaction := transactioncmd.NewRecordTransactionHandler(transactions, permConfig)
	recordDisposal := disposalcmd.NewRecordDisposalHandler(disposals, users, permConfig)
	updateThresholds := permcmd.NewUpdateThresholdsHandler(permissions, permConfig)
	getThresholds := permquery.NewGetThresholdsHandler(permConfig)

	auth := middleware.NewSessionAuth(sessions, users, cfg.Session.CookieName)

	// Kafka consumer: externally recorded sales become regular transactions
	if len(cfg.Kafka.Brokers) > 0 {
		consumer, err := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, []string{kafka.TopicSales})
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to create Kafka consumer")
		}
		defer consumer.Close()

		consumer.RegisterHandler(kafka.EventTypeSaleRecorded, func(ctx context.Context, event kafka.SaleRecordedEvent) error {
			items := make([]transactioncmd.LineItem, 0, len(event.Items))
			for _, line := range event.Items {
				items = append(items, transactioncmd.LineItem{ProductID: line.ProductID, Quantity: line.Quantity})
			}
			_, err := recordTransaction.Handle(transactioncmd.RecordTransactionCommand{
				// Ingested sales run with system privileges
				ActorLevel: userdomain.AdminLevel,
				Date:       event.Timestamp,
				Items:      items,
			})
			return err
		})

		if err := consumer.Start(context.Background()); err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to start Kafka consumer")
		}
	}

	// Router: web pages at the root, JSON API under /api
	router := mux.NewRouter()
	if redisClient != nil {
		router.Use(middleware.InvalidateOnWrite(redisClient))
	}

	api := router.PathPrefix("/api").Subrouter()
	userhandler.NewUserHandler(users, sessions, cfg.Session.TTL, auth).RegisterRoutes(api)
	producthandler.NewProductHandler(createProduct, updateProduct, deleteProduct, products, auth, producthandler.CacheFunc(cacheMw)).RegisterRoutes(api)
	supplierhandler.NewSupplierHandler(createSupplier, updateSupplier, suppliers, auth, supplierhandler.CacheFunc(cacheMw)).RegisterRoutes(api)
	deliveryhandler.NewDeliveryHandler(createDelivery, confirmDelivery, rejectDelivery, deliveries, auth, deliveryhandler.CacheFunc(cacheMw), publisher).RegisterRoutes(api)
	transactionhandler.NewTransactionHandler(recordTransaction, transactions, auth, transactionhandler.CacheFunc(cacheMw), publisher).RegisterRoutes(api)
	disposalhandler.NewDisposalHandler(recordDisposal, disposals, auth, disposalhandler.CacheFunc(cacheMw), publisher).RegisterRoutes(api)
	permhandler.NewPermissionHandler(updateThresholds, getThresholds, auth).RegisterRoutes(api)

	web.NewWebHandler(web.Handlers{
		Auth:              auth,
		Publisher:         publisher,
		Login:             usercmd.NewLoginUserHandler(users, sessions, cfg.Session.TTL),
		Logout:            usercmd.NewLogoutUserHandler(sessions),
		Register:          usercmd.NewRegisterUserHandler(users),
		ListUsers:         userquery.NewListUsersHandler(users),
		UpdateLevels:      usercmd.NewUpdateAccountLevelsHandler(users),
		DeleteUser:        usercmd.NewDeleteUserHandler(users, sessions),
		ListProducts:      productquery.NewListProductsHandler(products),
		ListLowStock:      productquery.NewListLowStockHandler(products),
		GetProduct:        productquery.NewGetProductHandler(products),
		CreateProduct:     createProduct,
		ListSuppliers:     supplierquery.NewListSuppliersHandler(suppliers),
		GetSupplier:       supplierquery.NewGetSupplierHandler(suppliers),
		CreateSupplier:    createSupplier,
		ListDeliveries:    deliveryquery.NewListDeliveriesHandler(deliveries),
		GetDelivery:       deliveryquery.NewGetDeliveryHandler(deliveries),
		CreateDelivery:    createDelivery,
		ConfirmDelivery:   confirmDelivery,
		RejectDelivery:    rejectDelivery,
		CountPending:      deliveries.CountPending,
		ListTransactions:  transactionquery.NewListTransactionsHandler(transactions),
		GetTransaction:    transactionquery.NewGetTransactionHandler(transactions),
		RecordTransaction: recordTransaction,
		ListDisposals:     disposalquery.NewListDisposalsHandler(disposals),
		GetDisposal:       disposalquery.NewGetDisposalHandler(disposals),
		RecordDisposal:    recordDisposal,
		GetThresholds:     getThresholds,
		UpdateThresholds:  updateThresholds,
	}).RegisterRoutes(router)

	// Operational endpoints
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := sqlDB.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy"}`))
			return
		}
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: otelhttp.NewHandler(c.Handler(router), "http.server"),
	}

	go func() {
		logger.Logger.Info().
			Str("port", cfg.Server.Port).
			Str("env", cfg.Server.Env).
			Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
