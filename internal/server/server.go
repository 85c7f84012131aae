package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/kasirhq/kasira/internal/audit"
	auditdomain "github.com/kasirhq/kasira/internal/audit/domain"
	"github.com/kasirhq/kasira/internal/auth"
	"github.com/kasirhq/kasira/internal/config"
	"github.com/kasirhq/kasira/internal/observability"
	obsmiddleware "github.com/kasirhq/kasira/internal/observability/logger"
	obsmetrics "github.com/kasirhq/kasira/internal/observability/metrics"
	obstracing "github.com/kasirhq/kasira/internal/observability/tracing"
	"github.com/kasirhq/kasira/internal/providers/pdf"
	"github.com/kasirhq/kasira/internal/ratelimit"
	"github.com/kasirhq/kasira/internal/receipt"
	receiptdomain "github.com/kasirhq/kasira/internal/receipt/domain"
	"github.com/kasirhq/kasira/internal/transaction"
	txndomain "github.com/kasirhq/kasira/internal/transaction/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	auth.Module,
	audit.Module,
	pdf.Module,
	ratelimit.Module,
	transaction.Module,
	receipt.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    ":" + strings.TrimPrefix(cfg.HTTPPort, ":"),
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
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
	engine     *gin.Engine
	cfg        config.Config
	log        *zap.Logger
	genID      *snowflake.Node
	tokens     *auth.Manager
	guard      *ratelimit.Guard
	txnSvc     txndomain.Service
	receiptSvc receiptdomain.Service
	auditSvc   auditdomain.Service
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	Log        *zap.Logger
	GenID      *snowflake.Node
	Tokens     *auth.Manager
	Guard      *ratelimit.Guard `optional:"true"`
	TxnSvc     txndomain.Service
	ReceiptSvc receiptdomain.Service
	AuditSvc   auditdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		log:        p.Log.Named("http.server"),
		genID:      p.GenID,
		tokens:     p.Tokens,
		guard:      p.Guard,
		txnSvc:     p.TxnSvc,
		receiptSvc: p.ReceiptSvc,
		auditSvc:   p.AuditSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.AuthRequired(), s.TenantRateLimit())

	// -------- Transactions --------
	api.POST("/transactions", s.CreateTransaction)
	api.GET("/transactions", s.ListTransactions)
	api.GET("/transactions/:id", s.GetTransactionByID)
	api.GET("/transactions/number/:number", s.GetTransactionByNumber)
	api.POST("/transactions/:id/cancel", s.CancelTransaction)
	api.POST("/transactions/:id/receipt", s.GenerateReceipt)
	api.GET("/transactions/:id/receipt", s.GetReceiptByTransaction)

	// -------- Receipts --------
	api.GET("/receipts/:id", s.GetReceiptByID)
	api.GET("/receipts/:id/content", s.GetReceiptContent)
	api.GET("/receipts/:id/pdf", s.GetReceiptPDF)
	api.POST("/receipts/:id/print", s.PrintReceipt)

	// -------- Audit trail --------
	api.GET("/audit-logs", s.ListAuditLogs)
}

func parseSnowflake(value string) (snowflake.ID, bool) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
