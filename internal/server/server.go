package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tournevent/sameday/internal/telemetry"
	"github.com/tournevent/sameday/pkg/sameday"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Carrier is the subset of *sameday.Client the gateway exposes.
type Carrier interface {
	GetServices(ctx context.Context, opts ...sameday.CallOption) ([]sameday.ServiceType, error)
	GetPickupPoints(ctx context.Context, page, perPage int, opts ...sameday.CallOption) (*sameday.PickupPointResponse, error)
	GetCities(ctx context.Context, params *sameday.CityQueryParams, opts ...sameday.CallOption) (*sameday.GetCitiesResponse, error)
	GetCounties(ctx context.Context, params *sameday.CountyQueryParams, opts ...sameday.CallOption) (*sameday.GetCountiesResponse, error)
	TrackShipment(ctx context.Context, awbNumber string, opts ...sameday.CallOption) (json.RawMessage, error)
	CreateShipment(ctx context.Context, req *sameday.ShipmentRequest, opts ...sameday.CallOption) (*sameday.AWB, error)
	SetPickupPoint(id string)
	PickupPoint() string
}

// Server is the HTTP gateway in front of the Sameday client.
type Server struct {
	port     int
	carrier  Carrier
	logger   *otelzap.Logger
	metrics  *telemetry.Metrics
	gatherer prometheus.Gatherer
}

// Config holds server configuration.
type Config struct {
	Port int
	// Registry receives the gateway metrics and backs /metrics. Nil uses the
	// Prometheus default registry.
	Registry *prometheus.Registry
}

// New creates a new server instance.
func New(cfg Config, carrier Carrier, logger *otelzap.Logger) *Server {
	var (
		reg      prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if cfg.Registry != nil {
		reg, gatherer = cfg.Registry, cfg.Registry
	}

	return &Server{
		port:     cfg.Port,
		carrier:  carrier,
		logger:   logger,
		metrics:  telemetry.NewMetrics(reg),
		gatherer: gatherer,
	}
}

// Handler returns the gateway routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", s.handleHealth)

	// Prometheus metrics
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	mux.HandleFunc("GET /api/services", s.handleServices)
	mux.HandleFunc("GET /api/pickup-points", s.handlePickupPoints)
	mux.HandleFunc("GET /api/pickup-point", s.handleGetPickupPoint)
	mux.HandleFunc("PUT /api/pickup-point", s.handleSetPickupPoint)
	mux.HandleFunc("GET /api/cities", s.handleCities)
	mux.HandleFunc("GET /api/counties", s.handleCounties)
	mux.HandleFunc("GET /api/track/{awb}", s.handleTrack)
	mux.HandleFunc("POST /api/awb", s.handleCreateAWB)

	return mux
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error    string          `json:"error"`
	Code     string          `json:"code,omitempty"`
	Children json.RawMessage `json:"children,omitempty"`
}

// returnErrors makes every call surface its failure to the gateway.
var returnErrors = sameday.WithErrorPolicy(sameday.ErrorPolicyReturn)

func (s *Server) handleServices(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	services, err := s.carrier.GetServices(r.Context(), returnErrors)
	s.respond(w, r, "getServices", start, services, err)
}

func (s *Server) handlePickupPoints(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()

	page, err := intParam(q.Get("page"))
	if err != nil {
		s.badRequest(w, r, "getPickupPoints", start, err)
		return
	}
	perPage, err := intParam(q.Get("perPage"))
	if err != nil {
		s.badRequest(w, r, "getPickupPoints", start, err)
		return
	}

	points, err := s.carrier.GetPickupPoints(r.Context(), page, perPage, returnErrors)
	s.respond(w, r, "getPickupPoints", start, points, err)
}

func (s *Server) handleGetPickupPoint(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, pickupPointBody{PickupPoint: s.carrier.PickupPoint()})
}

type pickupPointBody struct {
	PickupPoint string `json:"pickupPoint"`
}

func (s *Server) handleSetPickupPoint(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var body pickupPointBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.badRequest(w, r, "setPickupPoint", start, fmt.Errorf("invalid JSON: %w", err))
		return
	}
	if body.PickupPoint == "" {
		s.badRequest(w, r, "setPickupPoint", start, errors.New("pickupPoint is required"))
		return
	}

	s.carrier.SetPickupPoint(body.PickupPoint)
	s.logger.Ctx(r.Context()).Info("Pickup point set", zap.String("pickup_point", body.PickupPoint))
	s.respond(w, r, "setPickupPoint", start, body, nil)
}

func (s *Server) handleCities(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()

	params := &sameday.CityQueryParams{
		Name:        stringParam(q, "name"),
		County:      stringParam(q, "county"),
		PostalCode:  stringParam(q, "postalCode"),
		CountryCode: stringParam(q, "countryCode"),
	}
	var err error
	if params.Page, err = optionalIntParam(q, "page"); err != nil {
		s.badRequest(w, r, "getCities", start, err)
		return
	}
	if params.CountPerPage, err = optionalIntParam(q, "countPerPage"); err != nil {
		s.badRequest(w, r, "getCities", start, err)
		return
	}

	cities, err := s.carrier.GetCities(r.Context(), params, returnErrors)
	s.respond(w, r, "getCities", start, cities, err)
}

func (s *Server) handleCounties(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()

	params := &sameday.CountyQueryParams{
		Name:        stringParam(q, "name"),
		CountryCode: stringParam(q, "countryCode"),
	}
	var err error
	if params.Page, err = optionalIntParam(q, "page"); err != nil {
		s.badRequest(w, r, "getCounties", start, err)
		return
	}
	if params.CountPerPage, err = optionalIntParam(q, "countPerPage"); err != nil {
		s.badRequest(w, r, "getCounties", start, err)
		return
	}

	counties, err := s.carrier.GetCounties(r.Context(), params, returnErrors)
	s.respond(w, r, "getCounties", start, counties, err)
}

func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status, err := s.carrier.TrackShipment(r.Context(), r.PathValue("awb"), returnErrors)
	s.respond(w, r, "trackShipment", start, status, err)
}

func (s *Server) handleCreateAWB(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req sameday.ShipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, r, "createShipment", start, fmt.Errorf("invalid JSON: %w", err))
		return
	}

	awb, err := s.carrier.CreateShipment(r.Context(), &req, returnErrors)
	s.respond(w, r, "createShipment", start, awb, err)
}

// respond records metrics and writes either result or the mapped error.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, op string, start time.Time, result any, err error) {
	s.metrics.ObserveCall(op, start, err)

	if err != nil {
		status := statusFor(err)
		s.logger.Ctx(r.Context()).Error("Request failed",
			zap.String("operation", op),
			zap.Int("status", status),
			zap.Error(err),
		)

		body := errorResponse{Error: err.Error(), Code: telemetry.ErrorType(err)}
		body.Children = sameday.ValidationChildren(err)
		writeJSON(w, status, body)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// codeInvalidInput labels requests rejected before reaching Sameday.
const codeInvalidInput = "INVALID_INPUT"

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, op string, start time.Time, err error) {
	s.metrics.RecordError(sameday.CarrierName, codeInvalidInput)
	s.metrics.RecordRequest(op, sameday.CarrierName, "error", time.Since(start).Seconds())
	s.logger.Ctx(r.Context()).Warn("Bad request", zap.String("operation", op), zap.Error(err))
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Code: codeInvalidInput})
}

// statusFor maps a client error to the gateway status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, sameday.ErrInvalidAWB), errors.Is(err, sameday.ErrEncode):
		return http.StatusBadRequest
	case errors.Is(err, sameday.ErrAuthentication),
		errors.Is(err, sameday.ErrTransport),
		errors.Is(err, sameday.ErrDecode):
		return http.StatusBadGateway
	case errors.Is(err, sameday.ErrRemoteValidation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", raw)
	}
	return n, nil
}

func optionalIntParam(q map[string][]string, key string) (*int, error) {
	values, ok := q[key]
	if !ok || len(values) == 0 {
		return nil, nil
	}
	n, err := strconv.Atoi(values[0])
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", key, values[0])
	}
	return &n, nil
}

func stringParam(q map[string][]string, key string) *string {
	values, ok := q[key]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}
