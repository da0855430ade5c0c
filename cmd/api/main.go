package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Hiuhuedd/migingo-backend/pkg/errors"
	"github.com/Hiuhuedd/migingo-backend/pkg/events"
	"github.com/Hiuhuedd/migingo-backend/pkg/kafka"
	"github.com/Hiuhuedd/migingo-backend/pkg/logging"
	"github.com/Hiuhuedd/migingo-backend/pkg/metrics"
	"github.com/Hiuhuedd/migingo-backend/pkg/middleware"
	"github.com/Hiuhuedd/migingo-backend/pkg/mongodb"

	"github.com/Hiuhuedd/migingo-backend/internal/application"
	"github.com/Hiuhuedd/migingo-backend/internal/domain"
	infraKafka "github.com/Hiuhuedd/migingo-backend/internal/infrastructure/kafka"
	mongoRepo "github.com/Hiuhuedd/migingo-backend/internal/infrastructure/mongodb"
	"github.com/Hiuhuedd/migingo-backend/internal/infrastructure/projections"
	"github.com/Hiuhuedd/migingo-backend/internal/infrastructure/stream"
)

const serviceName = "migingo-ledger"

func main() {
	// Setup enhanced logger
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting migingo ledger API")

	// Load configuration
	config := loadConfig()
	ctx := context.Background()

	// Initialize Prometheus metrics
	metricsConfig := metrics.DefaultConfig(serviceName)
	m := metrics.New(metricsConfig)
	logger.Info("Metrics initialized")

	// Initialize MongoDB with circuit breaker and instrumentation
	mongoClient, err := mongodb.NewProductionClient(ctx, config.MongoDB, m, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	defer mongoClient.Close(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	// Initialize Kafka producer and consumer with circuit breakers
	producer := kafka.NewProductionProducer(config.Kafka, m, logger)
	defer producer.Close()
	consumer := kafka.NewProductionConsumer(config.Kafka, m, logger)
	defer consumer.Close()
	logger.Info("Kafka initialized", "brokers", config.Kafka.Brokers)

	// Event publishing
	eventFactory := events.NewEventFactory(events.SourceLedger)
	publisher := infraKafka.NewEventPublisher(producer, eventFactory)

	// Repositories
	inventoryRepo := mongoRepo.NewInventoryRepository(mongoClient)
	vehicleRepo := mongoRepo.NewVehicleRepository(mongoClient)
	issuanceRepo := mongoRepo.NewIssuanceRepository(mongoClient)
	saleRepo := mongoRepo.NewSaleRepository(mongoClient)
	stockRepo := projections.NewVehicleStockRepository(mongoClient)
	txRunner := mongoRepo.NewTxRunner(mongoClient)

	// Vehicle stock read model, rebuilt from issuance and sales events
	projector := projections.NewProjector(issuanceRepo, stockRepo, logger)
	projector.Register(consumer)
	go func() {
		if err := consumer.Start(ctx); err != nil {
			logger.WithError(err).Error("Projection consumer stopped")
		}
	}()
	logger.Info("Projection consumer started")

	// Live inventory stream over SSE
	hub := stream.NewHub(m, logger)
	inventoryStream := stream.NewInventoryStream(hub, logger)

	// Application services
	inventoryService := application.NewInventoryService(inventoryRepo, publisher, inventoryStream, txRunner, logger)
	vehicleService := application.NewVehicleService(vehicleRepo, publisher, logger)
	issuanceService := application.NewIssuanceService(issuanceRepo, inventoryRepo, vehicleRepo, publisher, txRunner, logger)
	salesService := application.NewSalesService(saleRepo, issuanceRepo, inventoryRepo, vehicleRepo, publisher, txRunner, logger)

	// Setup Gin router with middleware
	router := gin.New()

	middlewareConfig := middleware.DefaultConfig(serviceName, logger.Logger)
	middleware.Setup(router, middlewareConfig)
	router.Use(middleware.MetricsMiddleware(m))

	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		return mongoClient.HealthCheck(ctx)
	}))
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	bm := middleware.NewBusinessMetrics(m)

	api := router.Group("/api/v1")
	{
		inventory := api.Group("/inventory")
		{
			inventory.GET("", listInventoryHandler(inventoryService, logger))
			inventory.POST("", createInventoryHandler(inventoryService, logger))
			inventory.GET("/stream", inventoryStreamHandler(hub, logger))
			inventory.GET("/:inventoryId", getInventoryHandler(inventoryService, logger))
			inventory.PUT("/:inventoryId", updateInventoryHandler(inventoryService, logger))
			inventory.DELETE("/:inventoryId", deleteInventoryHandler(inventoryService, logger))
			inventory.POST("/:inventoryId/restore", restoreInventoryHandler(inventoryService, logger))
			inventory.POST("/:inventoryId/break", breakCentralStockHandler(inventoryService, logger, bm))
		}

		vehicles := api.Group("/vehicles")
		{
			vehicles.GET("", listVehiclesHandler(vehicleService, logger))
			vehicles.POST("", registerVehicleHandler(vehicleService, logger))
			vehicles.GET("/:vehicleId", getVehicleHandler(vehicleService, logger))
			vehicles.PUT("/:vehicleId", updateVehicleHandler(vehicleService, logger))
			vehicles.GET("/:vehicleId/issuances", listIssuancesHandler(issuanceService, logger))
			vehicles.GET("/:vehicleId/collected-items", listCollectedItemsHandler(issuanceService, logger))
			vehicles.GET("/:vehicleId/stock-summary", vehicleStockSummaryHandler(stockRepo, logger))
			vehicles.POST("/:vehicleId/break-unit", breakUnitHandler(issuanceService, logger, bm))
		}

		issuances := api.Group("/issuances")
		{
			issuances.POST("", createIssuanceHandler(issuanceService, logger, bm))
			issuances.GET("/:issuanceId", getIssuanceHandler(issuanceService, logger))
			issuances.PATCH("/:issuanceId/items/:itemIndex/layers/:layerIndex/collect", collectLayerHandler(issuanceService, logger, bm))
		}

		sales := api.Group("/sales")
		{
			sales.GET("", listSalesHandler(salesService, logger))
			sales.POST("", recordSaleHandler(salesService, logger, bm))
			sales.GET("/stats", salesStatsHandler(salesService, logger))
		}
	}

	// Start server
	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Server error")
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server stopped")
}

// Config holds application configuration
type Config struct {
	ServerAddr string
	MongoDB    *mongodb.Config
	Kafka      *kafka.Config
}

func loadConfig() *Config {
	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		MongoDB: &mongodb.Config{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "migingo"),
			ConnectTimeout: 10 * time.Second,
			MaxPoolSize:    100,
			MinPoolSize:    10,
		},
		Kafka: &kafka.Config{
			Brokers:       []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			ConsumerGroup: serviceName,
			ClientID:      serviceName,
			BatchSize:     100,
			BatchTimeout:  10 * time.Millisecond,
			RequiredAcks:  -1,
			MinBytes:      1,
			MaxBytes:      10e6,
			MaxWait:       500 * time.Millisecond,
			CommitTimeout: 5 * time.Second,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func pagination(c *gin.Context) domain.Pagination {
	p := domain.DefaultPagination()
	if page, err := strconv.ParseInt(c.Query("page"), 10, 64); err == nil && page > 0 {
		p.Page = page
	}
	if size, err := strconv.ParseInt(c.Query("pageSize"), 10, 64); err == nil && size > 0 {
		p.PageSize = size
		if p.PageSize > 200 {
			p.PageSize = 200
		}
	}
	return p
}

func respondServiceError(responder *middleware.ErrorResponder, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		responder.RespondWithAppError(appErr)
	} else {
		responder.RespondInternalError(err)
	}
}

// HTTP Handlers

func createIssuanceHandler(service *application.IssuanceService, logger *logging.Logger, bm *middleware.BusinessMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			VehicleID string `json:"vehicleId" binding:"required"`
			Items     []struct {
				InventoryID string `json:"inventoryId" binding:"required"`
				Layers      []struct {
					LayerIndex int `json:"layerIndex"`
					Quantity   int `json:"quantity" binding:"required,min=1"`
				} `json:"layers" binding:"required,min=1"`
			} `json:"items" binding:"required,min=1"`
			Notes string `json:"notes"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		cmd := application.CreateIssuanceCommand{
			VehicleID: req.VehicleID,
			Notes:     req.Notes,
		}
		for _, item := range req.Items {
			itemReq := application.IssuanceItemRequest{InventoryID: item.InventoryID}
			for _, layer := range item.Layers {
				itemReq.Layers = append(itemReq.Layers, application.IssuanceLayerRequest{
					LayerIndex: layer.LayerIndex,
					Quantity:   layer.Quantity,
				})
			}
			cmd.Items = append(cmd.Items, itemReq)
		}

		issuance, err := service.CreateIssuance(c.Request.Context(), cmd)
		if err != nil {
			respondServiceError(responder, err)
			return
		}

		bm.RecordIssuanceCreated(issuance.VehicleID)
		c.JSON(http.StatusCreated, issuance)
	}
}

func getIssuanceHandler(service *application.IssuanceService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		issuance, err := service.GetIssuance(c.Request.Context(), c.Param("issuanceId"))
		if err != nil {
			respondServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, issuance)
	}
}

func collectLayerHandler(service *application.IssuanceService, logger *logging.Logger, bm *middleware.BusinessMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		itemIndex, err := strconv.Atoi(c.Param("itemIndex"))
		if err != nil {
			responder.RespondBadRequest("itemIndex must be an integer")
			return
		}
		layerIndex, err := strconv.Atoi(c.Param("layerIndex"))
		if err != nil {
			responder.RespondBadRequest("layerIndex must be an integer")
			return
		}

		cmd := application.CollectLayerCommand{
			IssuanceID: c.Param("issuanceId"),
			ItemIndex:  itemIndex,
			LayerIndex: layerIndex,
		}

		issuance, err := service.CollectLayer(c.Request.Context(), cmd)
		if err != nil {
			respondServiceError(responder, err)
			return
		}

		if itemIndex < len(issuance.Items) && layerIndex < len(issuance.Items[itemIndex].Layers) {
			bm.RecordLayerCollected(issuance.Items[itemIndex].Layers[layerIndex].Unit)
		}
		c.JSON(http.StatusOK, issuance)
	}
}

func listIssuancesHandler(service *application.IssuanceService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		issuances, err := service.ListIssuances(c.Request.Context(), c.Param("vehicleId"), pagination(c))
		if err != nil {
			respondServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"issuances": issuances, "total": len(issuances)})
	}
}

func listCollectedItemsHandler(service *application.IssuanceService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		items, err := service.ListCollectedItems(c.Request.Context(), c.Param("vehicleId"))
		if err != nil {
			respondServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
	}
}

func breakUnitHandler(service *application.IssuanceService, logger *logging.Logger, bm *middleware.BusinessMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			InventoryID string `json:"inventoryId" binding:"required"`
			SourceUnit  string `json:"sourceUnit" binding:"required,unit_name"`
			TargetUnit  string `json:"targetUnit" binding:"required,unit_name"`
			Quantity    int    `json:"quantity" binding:"required,min=1"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		cmd := application.BreakUnitCommand{
			VehicleID:   c.Param("vehicleId"),
			InventoryID: req.InventoryID,
			SourceUnit:  req.SourceUnit,
			TargetUnit:  req.TargetUnit,
			Quantity:    req.Quantity,
		}

		result, err := service.BreakUnit(c.Request.Context(), cmd)
		if err != nil {
			respondServiceError(responder, err)
			return
		}

		bm.RecordUnitBroken(req.SourceUnit, req.TargetUnit)
		c.JSON(http.StatusOK, result)
	}
}

func vehicleStockSummaryHandler(repo *projections.VehicleStockRepository, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		projection, err := repo.FindByVehicleID(c.Request.Context(), c.Param("vehicleId"))
		if err != nil {
			responder.RespondInternalError(err)
			return
		}
		if projection == nil {
			responder.RespondNotFound("vehicle stock summary")
			return
		}

		c.JSON(http.StatusOK, projection)
	}
}

func recordSaleHandler(service *application.SalesService, logger *logging.Logger, bm *middleware.BusinessMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			VehicleID string `json:"vehicleId" binding:"required"`
			Items     []struct {
				InventoryID string  `json:"inventoryId" binding:"required"`
				Unit        string  `json:"unit" binding:"required,unit_name"`
				Quantity    int     `json:"quantity" binding:"required,min=1"`
				Price       float64 `json:"price"`
			} `json:"items" binding:"required,min=1"`
			PaymentMethod string  `json:"paymentMethod" binding:"required"`
			TotalAmount   float64 `json:"totalAmount"`
			CustomerName  string  `json:"customerName"`
			Notes         string  `json:"notes"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		cmd := application.RecordSaleCommand{
			VehicleID:     req.VehicleID,
			PaymentMethod: req.PaymentMethod,
			TotalAmount:   req.TotalAmount,
			CustomerName:  req.CustomerName,
			Notes:         req.Notes,
		}
		for _, item := range req.Items {
			cmd.Items = append(cmd.Items, application.SaleLineRequest{
				InventoryID: item.InventoryID,
				Unit:        item.Unit,
				Quantity:    item.Quantity,
				Price:       item.Price,
			})
		}

		sale, err := service.RecordSale(c.Request.Context(), cmd)
		if err != nil {
			respondServiceError(responder, err)
			return
		}

		for _, line := range sale.Items {
			bm.RecordSale(string(sale.PaymentMethod), line.Unit, line.Quantity)
		}
		c.JSON(http.StatusCreated, sale)
	}
}

func listSalesHandler(service *application.SalesService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		sales, err := service.ListSales(c.Request.Context(), saleFilter(c))
		if err != nil {
			respondServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"sales": sales, "total": len(sales)})
	}
}

func salesStatsHandler(service *application.SalesService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		stats, err := service.GetSalesStats(c.Request.Context(), saleFilter(c))
		if err != nil {
			respondServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, stats)
	}
}

func saleFilter(c *gin.Context) domain.SaleFilter {
	var filter domain.SaleFilter
	if v := c.Query("vehicleId"); v != "" {
		filter.VehicleID = &v
	}
	if v := c.Query("date"); v != "" {
		filter.Date = &v
	}
	if v := c.Query("from"); v != "" {
		filter.FromDate = &v
	}
	if v := c.Query("to"); v != "" {
		filter.ToDate = &v
	}
	if v, err := strconv.ParseInt(c.Query("limit"), 10, 64); err == nil && v > 0 {
		filter.Limit = v
	}
	return filter
}

func createInventoryHandler(service *application.InventoryService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			ProductName        string  `json:"productName" binding:"required"`
			Supplier           string  `json:"supplier"`
			Category           string  `json:"category"`
			BuyingPricePerUnit float64 `json:"buyingPricePerUnit"`
			LowStockAlert      int     `json:"lowStockAlert"`
			Packaging          []struct {
				Unit         string  `json:"unit" binding:"required,unit_name"`
				Qty          int     `json:"qty"`
				Stock        int     `json:"stock"`
				SellingPrice float64 `json:"sellingPrice"`
			} `json:"packagingStructure" binding:"required,min=1"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		cmd := application.CreateInventoryItemCommand{
			ProductName:        req.ProductName,
			Supplier:           req.Supplier,
			Category:           req.Category,
			BuyingPricePerUnit: req.BuyingPricePerUnit,
			LowStockAlert:      req.LowStockAlert,
		}
		for _, layer := range req.Packaging {
			cmd.Packaging = append(cmd.Packaging, application.PackagingLayerRequest{
				Unit:         layer.Unit,
				Qty:          layer.Qty,
				Stock:        layer.Stock,
				SellingPrice: layer.SellingPrice,
			})
		}

		item, err := service.CreateInventoryItem(c.Request.Context(), cmd)
		if err != nil {
			respondServiceError(responder, err)
			return
		}

		c.JSON(http.StatusCreated, item)
	}
}

func updateInventoryHandler(service *application.InventoryService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			ProductName        string  `json:"productName" binding:"required"`
			Supplier           string  `json:"supplier"`
			Category           string  `json:"category"`
			BuyingPricePerUnit float64 `json:"buyingPricePerUnit"`
			LowStockAlert      int     `json:"lowStockAlert"`
			Packaging          []struct {
				Unit         string  `json:"unit" binding:"required,unit_name"`
				Qty          int     `json:"qty"`
				Stock        int     `json:"stock"`
				SellingPrice float64 `json:"sellingPrice"`
			} `json:"packagingStructure" binding:"required,min=1"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		cmd := application.UpdateInventoryItemCommand{
			InventoryID:        c.Param("inventoryId"),
			ProductName:        req.ProductName,
			Supplier:           req.Supplier,
			Category:           req.Category,
			BuyingPricePerUnit: req.BuyingPricePerUnit,
			LowStockAlert:      req.LowStockAlert,
		}
		for _, layer := range req.Packaging {
			cmd.Packaging = append(cmd.Packaging, application.PackagingLayerRequest{
				Unit:         layer.Unit,
				Qty:          layer.Qty,
				Stock:        layer.Stock,
				SellingPrice: layer.SellingPrice,
			})
		}

		item, err := service.UpdateInventoryItem(c.Request.Context(), cmd)
		if err != nil {
			respondServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, item)
	}
}

func getInventoryHandler(service *application.InventoryService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		item, err := service.GetInventoryItem(c.Request.Context(), c.Param("inventoryId"))
		if err != nil {
			respondServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, item)
	}
}

func listInventoryHandler(service *application.InventoryService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var filter domain.InventoryFilter
		if v := c.Query("search"); v != "" {
			filter.Search = &v
		}
		if v := c.Query("category"); v != "" {
			filter.Category = &v
		}
		filter.IncludeDeleted = c.Query("includeDeleted") == "true"

		items, err := service.ListInventory(c.Request.Context(), filter, pagination(c))
		if err != nil {
			respondServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
	}
}

func deleteInventoryHandler(service *application.InventoryService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		if err := service.DeleteInventoryItem(c.Request.Context(), c.Param("inventoryId")); err != nil {
			respondServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	}
}

func restoreInventoryHandler(service *application.InventoryService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		item, err := service.RestoreInventoryItem(c.Request.Context(), c.Param("inventoryId"))
		if err != nil {
			respondServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, item)
	}
}

func breakCentralStockHandler(service *application.InventoryService, logger *logging.Logger, bm *middleware.BusinessMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			SourceUnit string `json:"sourceUnit" binding:"required,unit_name"`
			TargetUnit string `json:"targetUnit" binding:"required,unit_name"`
			Quantity   int    `json:"quantity" binding:"required,min=1"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		cmd := application.BreakCentralStockCommand{
			InventoryID: c.Param("inventoryId"),
			SourceUnit:  req.SourceUnit,
			TargetUnit:  req.TargetUnit,
			Quantity:    req.Quantity,
		}

		result, err := service.BreakCentralStock(c.Request.Context(), cmd)
		if err != nil {
			respondServiceError(responder, err)
			return
		}

		bm.RecordUnitBroken(req.SourceUnit, req.TargetUnit)
		c.JSON(http.StatusOK, result)
	}
}

func inventoryStreamHandler(hub *stream.Hub, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ch, unsubscribe := hub.Subscribe(stream.TopicInventory)
		defer unsubscribe()

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")

		clientGone := c.Request.Context().Done()
		c.Stream(func(w io.Writer) bool {
			select {
			case <-clientGone:
				return false
			case msg, ok := <-ch:
				if !ok {
					return false
				}
				c.SSEvent("inventory", string(msg))
				return true
			}
		})
	}
}

func registerVehicleHandler(service *application.VehicleService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			VehicleName        string `json:"vehicleName" binding:"required"`
			RegistrationNumber string `json:"registrationNumber" binding:"required"`
			SalesTeamMember    string `json:"salesTeamMember"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		cmd := application.RegisterVehicleCommand{
			VehicleName:        req.VehicleName,
			RegistrationNumber: req.RegistrationNumber,
			SalesTeamMember:    req.SalesTeamMember,
		}

		vehicle, err := service.RegisterVehicle(c.Request.Context(), cmd)
		if err != nil {
			respondServiceError(responder, err)
			return
		}

		c.JSON(http.StatusCreated, vehicle)
	}
}

func updateVehicleHandler(service *application.VehicleService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			VehicleName     string `json:"vehicleName" binding:"required"`
			SalesTeamMember string `json:"salesTeamMember"`
			IsActive        *bool  `json:"isActive"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		isActive := true
		if req.IsActive != nil {
			isActive = *req.IsActive
		}

		cmd := application.UpdateVehicleCommand{
			VehicleID:       c.Param("vehicleId"),
			VehicleName:     req.VehicleName,
			SalesTeamMember: req.SalesTeamMember,
			IsActive:        isActive,
		}

		vehicle, err := service.UpdateVehicle(c.Request.Context(), cmd)
		if err != nil {
			respondServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, vehicle)
	}
}

func getVehicleHandler(service *application.VehicleService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		vehicle, err := service.GetVehicle(c.Request.Context(), c.Param("vehicleId"))
		if err != nil {
			respondServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, vehicle)
	}
}

func listVehiclesHandler(service *application.VehicleService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		vehicles, err := service.ListVehicles(c.Request.Context(), pagination(c))
		if err != nil {
			respondServiceError(responder, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"vehicles": vehicles, "total": len(vehicles)})
	}
}
