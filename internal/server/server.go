package server

import (
	"context"
	"net/http"
	"time"

	catalogdomain "github.com/Cachi0001/bizcore/internal/catalog/domain"
	"github.com/Cachi0001/bizcore/internal/config"
	directorydomain "github.com/Cachi0001/bizcore/internal/directory/domain"
	"github.com/Cachi0001/bizcore/internal/ltv"
	"github.com/Cachi0001/bizcore/internal/observability"
	saledomain "github.com/Cachi0001/bizcore/internal/sale/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, metrics *observability.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(observability.GinMiddleware(metrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	return r
}

func registerGin(log *zap.Logger, metrics *observability.Metrics) *gin.Engine {
	return NewEngine(log, metrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
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

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	catalogSvc   catalogdomain.Service
	directorySvc directorydomain.Service
	saleSvc      saledomain.Service
	ltvSvc       *ltv.Service
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	CatalogSvc   catalogdomain.Service
	DirectorySvc directorydomain.Service
	SaleSvc      saledomain.Service
	LTVSvc       *ltv.Service
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		catalogSvc:   p.CatalogSvc,
		directorySvc: p.DirectorySvc,
		saleSvc:      p.SaleSvc,
		ltvSvc:       p.LTVSvc,
	}

	s.registerRoutes()

	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	v1 := s.engine.Group("/v1")

	// -------- Products --------
	v1.GET("/products", s.ListProducts)
	v1.GET("/products/summary", s.GetStockSummary)

	// -------- Customers --------
	v1.GET("/customers", s.ListCustomers)
	v1.GET("/customers/:id", s.GetCustomerByID)
	v1.PATCH("/customers/:id", s.UpdateCustomer)
	v1.DELETE("/customers/:id", s.DeleteCustomer)
	v1.GET("/customers/:id/metrics", s.GetCustomerMetrics)
	v1.GET("/customers/:id/history", s.GetCustomerHistory)

	// -------- Sale drafts --------
	v1.POST("/drafts", s.CreateDraft)
	v1.GET("/drafts/:id", s.GetDraft)
	v1.DELETE("/drafts/:id", s.CancelDraft)
	v1.POST("/drafts/:id/product", s.SelectDraftProduct)
	v1.POST("/drafts/:id/quantity", s.SetDraftQuantity)
	v1.POST("/drafts/:id/unit-price", s.SetDraftUnitPrice)
	v1.POST("/drafts/:id/customer", s.SelectDraftCustomer)
	v1.POST("/drafts/:id/payment-method", s.SetDraftPaymentMethod)
	v1.POST("/drafts/:id/date", s.SetDraftDate)
	v1.POST("/drafts/:id/submit", s.SubmitDraft)

	// -------- Sales --------
	v1.GET("/sales", s.ListSales)
	v1.GET("/metrics/customers", s.ListCustomerMetrics)
}
