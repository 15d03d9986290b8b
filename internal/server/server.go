package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"

	"parking-garage/internal/logging"
	"parking-garage/internal/parking"
)

type Config struct {
	Port               string
	ServiceName        string
	RateLimitPerMinute int
	// TracerProvider overrides the global provider for HTTP spans.
	TracerProvider trace.TracerProvider
}

type Server struct {
	httpServer *http.Server
	handler    *Handler
	logger     zerolog.Logger
}

func NewServer(cfg Config, lot *parking.InstrumentedParkingLot) *Server {
	logger := logging.WithComponent("http")
	handler := NewHandler(lot, cfg.ServiceName)
	metrics := NewMetrics(lot.ParkingLot)

	r := chi.NewRouter()

	r.Use(RecoveryMiddleware(logger))
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))
	var tracingOpts []otelhttp.Option
	if cfg.TracerProvider != nil {
		tracingOpts = append(tracingOpts, otelhttp.WithTracerProvider(cfg.TracerProvider))
	}
	r.Use(TracingMiddleware(cfg.ServiceName, tracingOpts...))
	r.Use(CORSMiddleware)
	r.Use(metrics.Middleware)

	r.Get("/health", handler.HealthCheck)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/parking-lot", func(r chi.Router) {
		r.Use(RateLimitMiddleware(cfg.RateLimitPerMinute))

		r.Post("/", handler.InitializeFloors)
		r.Post("/park", handler.ParkVehicle)
		r.Post("/unpark", handler.UnparkVehicle)
		r.Get("/available", handler.ListAvailableSpots)
		r.Get("/status", handler.GetStatus)
		r.Get("/tickets/{ticketID}", handler.GetTicket)
		r.Get("/find/{plate}", handler.FindByLicensePlate)
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		handler:    handler,
		logger:     logger,
	}
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start blocks until the server stops. A graceful Shutdown is not an error.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info().Str("addr", ln.Addr().String()).Msg("starting HTTP server")
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) GetAddress() string {
	return fmt.Sprintf("http://localhost%s", s.httpServer.Addr)
}
