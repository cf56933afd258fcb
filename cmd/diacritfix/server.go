package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/diacritfix/diacritfix/api/handlers"
	"github.com/diacritfix/diacritfix/config"
	"github.com/diacritfix/diacritfix/internal/metrics"
	"github.com/diacritfix/diacritfix/internal/server"
	"github.com/diacritfix/diacritfix/internal/store"
	"github.com/diacritfix/diacritfix/internal/telemetry"
	"github.com/diacritfix/diacritfix/lifecycle"
	"github.com/diacritfix/diacritfix/payment"
	"github.com/diacritfix/diacritfix/processor"
	"github.com/diacritfix/diacritfix/types"
)

// =============================================================================
// Server
// =============================================================================

// Server wires the artifact store, lifecycle controller, HTTP handlers, and
// the metrics listener together.
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	httpManager    *server.Manager
	metricsManager *server.Manager

	store *store.Store
	ctrl  *lifecycle.Controller

	healthHandler   *handlers.HealthHandler
	processHandler  *handlers.ProcessHandler
	verifyHandler   *handlers.VerifyHandler
	downloadHandler *handlers.DownloadHandler
	webhookHandler  *handlers.WebhookHandler

	metricsCollector *metrics.Collector
	otelProviders    *telemetry.Providers

	// background holds the sweeper and the rate limiter cleanup goroutine.
	background       *errgroup.Group
	backgroundCtx    context.Context
	backgroundCancel context.CancelFunc
}

// NewServer creates the server from loaded configuration.
func NewServer(cfg *config.Config, logger *zap.Logger, otelProviders *telemetry.Providers) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	group, groupCtx := errgroup.WithContext(ctx)
	return &Server{
		cfg:              cfg,
		logger:           logger,
		otelProviders:    otelProviders,
		background:       group,
		backgroundCtx:    groupCtx,
		backgroundCancel: cancel,
	}
}

// =============================================================================
// Startup
// =============================================================================

// Start brings up the store, the sweeper, and both listeners.
func (s *Server) Start() error {
	s.metricsCollector = metrics.NewCollector("diacritfix", s.logger)

	s.initStore()
	s.initHandlers()

	if err := s.startHTTPServer(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	if err := s.startMetricsServer(); err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}

	s.logger.Info("all servers started",
		zap.Int("http_port", s.cfg.Server.HTTPPort),
		zap.Int("metrics_port", s.cfg.Server.MetricsPort),
		zap.Duration("artifact_ttl", s.cfg.Store.TTL),
	)

	return nil
}

// initStore creates the artifact store and starts its expiry sweeper.
func (s *Server) initStore() {
	s.store = store.New(store.Config{
		TTL:           s.cfg.Store.TTL,
		SweepInterval: s.cfg.Store.SweepInterval,
	}, s.logger)

	s.metricsCollector.TrackLiveRecords(s.store.Len)

	sweepInterval := s.cfg.Store.SweepInterval
	s.background.Go(func() error {
		s.store.RunSweeper(s.backgroundCtx, sweepInterval, func(removed int) {
			s.metricsCollector.RecordArtifactsExpired(removed)
		})
		return nil
	})
}

// initHandlers builds the upstream clients, the controller, and the handlers.
func (s *Server) initHandlers() {
	proc := processor.NewPDFCo(processor.Config{
		APIKey:  s.cfg.Processor.APIKey,
		BaseURL: s.cfg.Processor.BaseURL,
		Timeout: s.cfg.Processor.Timeout,
	}, s.logger)

	gateway := payment.NewClient(payment.Config{
		SecretKey:     s.cfg.Payment.SecretKey,
		WebhookSecret: s.cfg.Payment.WebhookSecret,
		BaseURL:       s.cfg.Payment.BaseURL,
		SiteURL:       s.cfg.Payment.SiteURL,
		ProductName:   s.cfg.Payment.ProductName,
		Currency:      s.cfg.Payment.Currency,
		AmountCents:   s.cfg.Payment.AmountCents,
		Timeout:       s.cfg.Payment.Timeout,
	}, s.logger)

	s.ctrl = lifecycle.NewController(
		s.store,
		&measuredProcessor{proc: proc, collector: s.metricsCollector},
		&measuredGateway{gw: gateway, collector: s.metricsCollector},
		s.logger,
	)

	ctrl := &instrumentedLifecycle{ctrl: s.ctrl, collector: s.metricsCollector}

	s.healthHandler = handlers.NewHealthHandler(s.logger)
	s.healthHandler.RegisterCheck(handlers.NewPingHealthCheck("payment_gateway", gateway.Ping))
	s.processHandler = handlers.NewProcessHandler(ctrl, s.cfg.Server.MaxUploadBytes, s.logger)
	s.verifyHandler = handlers.NewVerifyHandler(ctrl, s.logger)
	s.downloadHandler = handlers.NewDownloadHandler(ctrl, s.logger)
	s.webhookHandler = handlers.NewWebhookHandler(ctrl, s.cfg.Payment.WebhookSecret, s.logger)

	s.logger.Info("handlers initialized")
}

// =============================================================================
// HTTP server
// =============================================================================

func (s *Server) startHTTPServer() error {
	mux := http.NewServeMux()

	// Health endpoints
	mux.HandleFunc("GET /health", s.healthHandler.HandleHealth)
	mux.HandleFunc("GET /healthz", s.healthHandler.HandleHealthz)
	mux.HandleFunc("GET /ready", s.healthHandler.HandleReady)
	mux.HandleFunc("GET /readyz", s.healthHandler.HandleReady)
	mux.HandleFunc("GET /version", s.healthHandler.HandleVersion(Version, BuildTime, GitCommit))

	// Artifact lifecycle endpoints
	mux.HandleFunc("POST /process-and-pay", s.processHandler.HandleProcess)
	mux.HandleFunc("POST /verify-payment", s.verifyHandler.HandleVerify)
	mux.HandleFunc("GET /get-file", s.downloadHandler.HandleDownload)
	mux.HandleFunc("POST /webhook", s.webhookHandler.HandleWebhook)

	handler := Chain(mux,
		Recovery(s.logger),
		RequestID(),
		SecurityHeaders(),
		RequestLogger(s.logger),
		CORS(s.cfg.Server.CORSAllowedOrigins),
		RateLimiter(s.backgroundCtx, s.cfg.Server.RateLimitRPS, s.cfg.Server.RateLimitBurst, s.logger),
		MetricsMiddleware(s.metricsCollector),
		OTelTracing(),
	)

	serverConfig := server.Config{
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.HTTPPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		IdleTimeout:     2 * s.cfg.Server.ReadTimeout,
		MaxHeaderBytes:  1 << 20, // 1 MB
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}

	s.httpManager = server.NewManager("api", handler, serverConfig, s.logger)

	if err := s.httpManager.Start(); err != nil {
		return err
	}

	s.logger.Info("HTTP server started", zap.Int("port", s.cfg.Server.HTTPPort))
	return nil
}

// =============================================================================
// Metrics server
// =============================================================================

func (s *Server) startMetricsServer() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	serverConfig := server.Config{
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.MetricsPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}

	s.metricsManager = server.NewManager("metrics", mux, serverConfig, s.logger)

	if err := s.metricsManager.Start(); err != nil {
		return err
	}

	s.logger.Info("metrics server started", zap.Int("port", s.cfg.Server.MetricsPort))
	return nil
}

// =============================================================================
// Shutdown
// =============================================================================

// WaitForShutdown blocks until a shutdown signal arrives, then cleans up.
func (s *Server) WaitForShutdown() {
	if s.httpManager != nil {
		s.httpManager.WaitForShutdown()
	}

	s.Shutdown()
}

// Shutdown stops all components gracefully.
func (s *Server) Shutdown() {
	s.logger.Info("starting graceful shutdown...")

	ctx := context.Background()

	// Stop the sweeper and the rate limiter cleanup.
	s.backgroundCancel()
	_ = s.background.Wait()

	if s.httpManager != nil {
		if err := s.httpManager.Shutdown(ctx); err != nil {
			s.logger.Error("HTTP server shutdown error", zap.Error(err))
		}
	}

	if s.metricsManager != nil {
		if err := s.metricsManager.Shutdown(ctx); err != nil {
			s.logger.Error("metrics server shutdown error", zap.Error(err))
		}
	}

	if s.otelProviders != nil {
		flushCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := s.otelProviders.Shutdown(flushCtx); err != nil {
			s.logger.Error("telemetry shutdown error", zap.Error(err))
		}
	}

	s.logger.Info("graceful shutdown completed")
}

// =============================================================================
// Instrumentation wrappers
// =============================================================================

// instrumentedLifecycle counts lifecycle transitions on top of the controller.
type instrumentedLifecycle struct {
	ctrl      *lifecycle.Controller
	collector *metrics.Collector
}

func (l *instrumentedLifecycle) Begin(ctx context.Context, content []byte, displayName string) (*lifecycle.BeginResult, error) {
	res, err := l.ctrl.Begin(ctx, content, displayName)
	if err == nil {
		l.collector.RecordArtifactCreated()
	}
	return res, err
}

func (l *instrumentedLifecycle) Confirm(ctx context.Context, sessionID string) (*lifecycle.ConfirmResult, error) {
	res, err := l.ctrl.Confirm(ctx, sessionID)
	if err == nil {
		l.collector.RecordArtifactPaid()
	}
	return res, err
}

func (l *instrumentedLifecycle) ConfirmPaid(session *types.CheckoutSession) (*lifecycle.ConfirmResult, error) {
	res, err := l.ctrl.ConfirmPaid(session)
	if err == nil {
		l.collector.RecordArtifactPaid()
	}
	return res, err
}

func (l *instrumentedLifecycle) Deliver(id string) (*lifecycle.Delivery, error) {
	res, err := l.ctrl.Deliver(id)
	if err == nil {
		l.collector.RecordArtifactDelivered()
	}
	return res, err
}

// measuredProcessor times document processor calls.
type measuredProcessor struct {
	proc      lifecycle.Processor
	collector *metrics.Collector
}

func (p *measuredProcessor) Process(ctx context.Context, data []byte, name string) (*types.ProcessedDocument, error) {
	start := time.Now()
	doc, err := p.proc.Process(ctx, data, name)
	p.collector.RecordProcessorRequest(callStatus(err), time.Since(start))
	return doc, err
}

// measuredGateway times payment gateway calls.
type measuredGateway struct {
	gw        lifecycle.Gateway
	collector *metrics.Collector
}

func (g *measuredGateway) CreateCheckout(ctx context.Context, params types.CheckoutParams) (*types.CheckoutSession, error) {
	start := time.Now()
	session, err := g.gw.CreateCheckout(ctx, params)
	g.collector.RecordCheckoutRequest("create", callStatus(err), time.Since(start))
	return session, err
}

func (g *measuredGateway) RetrieveCheckout(ctx context.Context, sessionID string) (*types.CheckoutSession, error) {
	start := time.Now()
	session, err := g.gw.RetrieveCheckout(ctx, sessionID)
	g.collector.RecordCheckoutRequest("retrieve", callStatus(err), time.Since(start))
	return session, err
}

func callStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
