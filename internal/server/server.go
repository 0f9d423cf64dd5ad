package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	catalogdomain "github.com/storeops/salescore/internal/catalog/domain"
	"github.com/storeops/salescore/internal/config"
	customerdomain "github.com/storeops/salescore/internal/customer/domain"
	employeedomain "github.com/storeops/salescore/internal/employee/domain"
	"github.com/storeops/salescore/internal/providers/pdf"
	reportdomain "github.com/storeops/salescore/internal/report/domain"
	saledomain "github.com/storeops/salescore/internal/sale/domain"
	storedomain "github.com/storeops/salescore/internal/store/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, log *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(ErrorHandlingMiddleware())
	return r
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Log         *zap.Logger
	Registry    *prometheus.Registry
	SaleSvc     saledomain.Service
	CatalogSvc  catalogdomain.Service
	CustomerSvc customerdomain.Service
	StoreSvc    storedomain.Service
	EmployeeSvc employeedomain.Service
	ReportSvc   reportdomain.Service
	PDF         pdf.Provider
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	log         *zap.Logger
	registry    *prometheus.Registry
	saleSvc     saledomain.Service
	catalogSvc  catalogdomain.Service
	customerSvc customerdomain.Service
	storeSvc    storedomain.Service
	employeeSvc employeedomain.Service
	reportSvc   reportdomain.Service
	pdf         pdf.Provider
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		log:         p.Log.Named("server"),
		registry:    p.Registry,
		saleSvc:     p.SaleSvc,
		catalogSvc:  p.CatalogSvc,
		customerSvc: p.CustomerSvc,
		storeSvc:    p.StoreSvc,
		employeeSvc: p.EmployeeSvc,
		reportSvc:   p.ReportSvc,
		pdf:         p.PDF,
	}
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func registerRoutes(s *Server) {
	r := s.engine

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	v1 := r.Group("/v1")

	// -------- Sales --------
	v1.POST("/sales", s.CreateSale)
	v1.GET("/sales", s.ListSales)
	v1.GET("/sales/:id", s.GetSaleByID)
	v1.GET("/sales/by-number/:number", s.GetSaleByNumber)
	v1.PATCH("/sales/:id", s.UpdateSale)
	v1.POST("/sales/:id/pay", s.MarkSalePaid)
	v1.POST("/sales/:id/complete", s.CompleteSale)
	v1.POST("/sales/:id/cancel", s.CancelSale)
	v1.GET("/sales/:id/receipt", s.SaleReceipt)

	// -------- Products --------
	v1.GET("/products", s.ListProducts)
	v1.POST("/products", s.CreateProduct)
	v1.GET("/products/:id", s.GetProductByID)
	v1.POST("/products/:id/adjust-stock", s.AdjustProductStock)

	// -------- Customers --------
	v1.GET("/customers", s.ListCustomers)
	v1.POST("/customers", s.CreateCustomer)
	v1.GET("/customers/:id", s.GetCustomerByID)

	// -------- Stores --------
	v1.GET("/stores", s.ListStores)
	v1.POST("/stores", s.CreateStore)
	v1.GET("/stores/:id", s.GetStoreByID)

	// -------- Employees --------
	v1.GET("/employees", s.ListEmployees)
	v1.POST("/employees", s.CreateEmployee)
	v1.GET("/employees/:id", s.GetEmployeeByID)

	// -------- Reports --------
	reports := v1.Group("/reports")
	reports.GET("/daily", s.ReportDailyTotals)
	reports.GET("/monthly", s.ReportMonthlyTotals)
	reports.GET("/top-products", s.ReportTopProducts)
	reports.GET("/employees", s.ReportEmployeePerformance)
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
