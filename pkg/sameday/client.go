// Package sameday provides a typed client for the Sameday courier API.
package sameday

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// CarrierName identifies Sameday in logs and metrics.
const CarrierName = "sameday"

// Page size used by GetPickupPoints when none is given.
const (
	defaultPage    = 1
	defaultPerPage = 50
)

// ErrorPolicy decides what an operation does with a failed API call.
type ErrorPolicy int

const (
	// ErrorPolicyDefault defers to the client configuration. Tracking
	// returns errors; every other operation logs them.
	ErrorPolicyDefault ErrorPolicy = iota
	// ErrorPolicyLog logs the failure and returns a nil result with a nil
	// error. Callers must treat a nil result as failure.
	ErrorPolicyLog
	// ErrorPolicyReturn returns the failure to the caller.
	ErrorPolicyReturn
)

// String returns the policy name as accepted by ParseErrorPolicy.
func (p ErrorPolicy) String() string {
	switch p {
	case ErrorPolicyLog:
		return "log"
	case ErrorPolicyReturn:
		return "return"
	default:
		return "default"
	}
}

// ParseErrorPolicy parses "log", "return" or "" (default).
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return ErrorPolicyDefault, nil
	case "log":
		return ErrorPolicyLog, nil
	case "return":
		return ErrorPolicyReturn, nil
	}
	return ErrorPolicyDefault, fmt.Errorf("unknown error policy %q", s)
}

// CallOption customizes a single operation.
type CallOption func(*callOptions)

type callOptions struct {
	policy ErrorPolicy
}

// WithErrorPolicy overrides the error policy for one call.
func WithErrorPolicy(p ErrorPolicy) CallOption {
	return func(o *callOptions) {
		o.policy = p
	}
}

// Config holds Sameday configuration.
type Config struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
	BaseURL  string `validate:"required,url"`

	// Sandbox logs request and response bodies. It does not change the host.
	Sandbox bool
	// StrictCredentials makes New fail when Username, Password or BaseURL
	// are missing or malformed.
	StrictCredentials bool

	// DefaultShipmentData replaces StandardShipmentDefaults when set.
	DefaultShipmentData *DefaultShipmentData
	// ErrorPolicy applies to every operation except tracking.
	ErrorPolicy ErrorPolicy

	// TrackWithCachedToken lets TrackShipment reuse a valid token instead of
	// logging in before every call.
	TrackWithCachedToken bool
	// LegacyTrackPath tracks through EndpointTrackLegacy.
	LegacyTrackPath bool

	UseMock bool          // When true, uses mock API client
	Timeout time.Duration // Zero means no client-side timeout
	Clock   func() time.Time
}

// Client is the Sameday client. It owns one session and delegates API calls
// to the underlying APIClient (mock or HTTP).
type Client struct {
	config    Config
	apiClient APIClient
	session   *Session
	defaults  DefaultShipmentData
	logger    *otelzap.Logger
	tracer    trace.Tracer

	mu          sync.RWMutex
	pickupPoint *string
}

var validate = validator.New()

// New creates a new Sameday client.
// If cfg.UseMock is true, it uses a mock API client.
// Otherwise, it uses the real HTTP API client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) (*Client, error) {
	if cfg.StrictCredentials {
		if err := validateCredentials(cfg); err != nil {
			return nil, err
		}
	}

	var apiClient APIClient
	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		trackPath := EndpointTrack
		if cfg.LegacyTrackPath {
			trackPath = EndpointTrackLegacy
		}
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL:   cfg.BaseURL,
			TrackPath: trackPath,
			Timeout:   cfg.Timeout,
		})
	}

	return NewWithAPIClient(cfg, apiClient, logger, tracer), nil
}

// NewWithAPIClient creates a new Sameday client with a custom API client.
// No credential validation is done.
func NewWithAPIClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	if logger == nil {
		logger = otelzap.New(zap.NewNop())
	}
	if tracer == nil {
		tracer = otel.Tracer(CarrierName)
	}

	defaults := StandardShipmentDefaults()
	if cfg.DefaultShipmentData != nil {
		defaults = cfg.DefaultShipmentData.Clone()
	}

	return &Client{
		config:    cfg,
		apiClient: apiClient,
		session:   NewSession(cfg.Clock),
		defaults:  defaults,
		logger:    logger,
		tracer:    tracer,
	}
}

func validateCredentials(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == "required" {
				return fmt.Errorf("%w: %s is empty", ErrMissingCredentials, fe.Field())
			}
		}
	}
	return fmt.Errorf("invalid sameday config: %w", err)
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return CarrierName
}

// Session returns the client's session state.
func (c *Client) Session() *Session {
	return c.session
}

// SetPickupPoint sets the pickup point used by later CreateShipment calls
// that do not name one. It takes precedence over DefaultShipmentData.
func (c *Client) SetPickupPoint(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pickupPoint = &id
}

// PickupPoint returns the pickup point set with SetPickupPoint, or "".
func (c *Client) PickupPoint() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.pickupPoint == nil {
		return ""
	}
	return *c.pickupPoint
}

func (c *Client) localPickupPoint() *string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pickupPoint
}

// Authenticate logs in and returns the new token. Failures are always
// returned and match ErrAuthentication.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	ctx, span := c.startSpan(ctx, opAuthenticate)
	defer span.End()

	token, err := c.login(ctx)
	if err != nil {
		recordError(span, err)
		return "", err
	}
	return token, nil
}

func (c *Client) login(ctx context.Context) (string, error) {
	log := c.logger.Ctx(ctx)
	log.Debug("Authenticating with Sameday", zap.String("username", c.config.Username))

	resp, err := c.apiClient.Authenticate(ctx, c.config.Username, c.config.Password)
	if err != nil {
		authErr := NewError(opAuthenticate, CodeAuthentication, "login failed").WithCause(err)
		var apiErr *Error
		if errors.As(err, &apiErr) {
			authErr.WithStatusCode(apiErr.StatusCode)
		}
		log.Error("Sameday authentication failed", zap.Error(err), zap.Int("status_code", authErr.StatusCode))
		return "", authErr
	}
	if resp == nil || resp.Token == "" {
		log.Error("Sameday authentication returned no token")
		return "", NewError(opAuthenticate, CodeAuthentication, "login response carried no token")
	}

	expiresAt := ParseExpiry(resp.ExpireAtUTC)
	if expiresAt.IsZero() && resp.ExpireAtUTC != "" {
		log.Warn("Unparseable Sameday token expiry", zap.String("expire_at_utc", resp.ExpireAtUTC))
	}
	c.session.Store(resp.Token, expiresAt)

	if c.config.Sandbox {
		log.Info("Sameday authentication succeeded", zap.Time("expires_at", expiresAt))
	}
	return resp.Token, nil
}

// ensureAuthenticated returns the cached token when it is still valid and
// logs in otherwise. force skips the cache.
func (c *Client) ensureAuthenticated(ctx context.Context, force bool) (string, error) {
	if !force {
		if token, ok := c.session.Token(); ok {
			return token, nil
		}
	}
	return c.login(ctx)
}

// CreateShipment creates an AWB. Unset fields of req are filled from the
// pickup point set with SetPickupPoint, then the client defaults, then
// built-in fallbacks. req is not modified.
func (c *Client) CreateShipment(ctx context.Context, req *ShipmentRequest, opts ...CallOption) (*AWB, error) {
	payload := c.defaults.Apply(req, c.localPickupPoint())

	return call(ctx, c, opCreateShipment, opts, func(ctx context.Context, token string) (*AWB, error) {
		c.dump(ctx, opCreateShipment, "request", payload)
		return c.apiClient.CreateAWB(ctx, token, payload)
	})
}

// GetServices returns the services available to the account.
func (c *Client) GetServices(ctx context.Context, opts ...CallOption) ([]ServiceType, error) {
	return call(ctx, c, opGetServices, opts, func(ctx context.Context, token string) ([]ServiceType, error) {
		resp, err := c.apiClient.GetServices(ctx, token)
		if err != nil {
			return nil, err
		}
		return resp.Data, nil
	})
}

// TrackShipment returns the raw status payload of an AWB. Unless
// TrackWithCachedToken is set, it logs in before every call. A blank AWB
// fails with ErrInvalidAWB under the call's error policy, without logging in.
func (c *Client) TrackShipment(ctx context.Context, awbNumber string, opts ...CallOption) (json.RawMessage, error) {
	if strings.TrimSpace(awbNumber) == "" {
		return reject[json.RawMessage](ctx, c, opTrackShipment, opts, ErrInvalidAWB)
	}

	return call(ctx, c, opTrackShipment, opts, func(ctx context.Context, token string) (json.RawMessage, error) {
		c.dump(ctx, opTrackShipment, "request", map[string]string{"awbNumber": awbNumber})
		return c.apiClient.TrackShipment(ctx, token, awbNumber)
	})
}

// GetPickupPoints lists pickup points. Non-positive page and perPage default
// to 1 and 50.
func (c *Client) GetPickupPoints(ctx context.Context, page, perPage int, opts ...CallOption) (*PickupPointResponse, error) {
	if page <= 0 {
		page = defaultPage
	}
	if perPage <= 0 {
		perPage = defaultPerPage
	}

	return call(ctx, c, opGetPickupPoints, opts, func(ctx context.Context, token string) (*PickupPointResponse, error) {
		c.dump(ctx, opGetPickupPoints, "request", map[string]int{"page": page, "perPage": perPage})
		return c.apiClient.GetPickupPoints(ctx, token, page, perPage)
	})
}

// GetCities looks up cities. Nil params sends no filters.
func (c *Client) GetCities(ctx context.Context, params *CityQueryParams, opts ...CallOption) (*GetCitiesResponse, error) {
	return call(ctx, c, opGetCities, opts, func(ctx context.Context, token string) (*GetCitiesResponse, error) {
		c.dump(ctx, opGetCities, "request", params)
		return c.apiClient.GetCities(ctx, token, params)
	})
}

// GetCounties looks up counties. Nil params sends no filters.
func (c *Client) GetCounties(ctx context.Context, params *CountyQueryParams, opts ...CallOption) (*GetCountiesResponse, error) {
	return call(ctx, c, opGetCounties, opts, func(ctx context.Context, token string) (*GetCountiesResponse, error) {
		c.dump(ctx, opGetCounties, "request", params)
		return c.apiClient.GetCounties(ctx, token, params)
	})
}

// call runs one authenticated operation inside a span and applies the error
// policy to its outcome. Authentication failures bypass the policy.
func call[T any](ctx context.Context, c *Client, op string, opts []CallOption, fn func(ctx context.Context, token string) (T, error)) (T, error) {
	var zero T

	ctx, span := c.startSpan(ctx, op)
	defer span.End()

	log := c.logger.Ctx(ctx)
	log.Debug("Calling Sameday API", zap.String("operation", op))

	force := op == opTrackShipment && !c.config.TrackWithCachedToken
	token, err := c.ensureAuthenticated(ctx, force)
	if err != nil {
		recordError(span, err)
		return zero, err
	}

	result, err := fn(ctx, token)
	if err != nil {
		return zero, c.fail(ctx, span, op, opts, err)
	}

	c.dump(ctx, op, "response", result)
	return result, nil
}

// reject fails op before any API call, under the same span and policy
// handling as call.
func reject[T any](ctx context.Context, c *Client, op string, opts []CallOption, err error) (T, error) {
	var zero T

	ctx, span := c.startSpan(ctx, op)
	defer span.End()

	return zero, c.fail(ctx, span, op, opts, err)
}

// fail records and logs err, then returns it unless the policy for op is
// ErrorPolicyLog.
func (c *Client) fail(ctx context.Context, span trace.Span, op string, opts []CallOption, err error) error {
	recordError(span, err)

	fields := []zap.Field{zap.String("operation", op), zap.Error(err)}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		fields = append(fields,
			zap.String("code", apiErr.Code),
			zap.Int("status_code", apiErr.StatusCode),
		)
		if len(apiErr.Children) > 0 {
			fields = append(fields, zap.ByteString("children", apiErr.Children))
		}
	}
	c.logger.Ctx(ctx).Error("Sameday API error", fields...)

	if c.policyFor(op, opts) == ErrorPolicyLog {
		return nil
	}
	return err
}

func (c *Client) policyFor(op string, opts []CallOption) ErrorPolicy {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.policy != ErrorPolicyDefault {
		return o.policy
	}
	if op == opTrackShipment {
		return ErrorPolicyReturn
	}
	if c.config.ErrorPolicy != ErrorPolicyDefault {
		return c.config.ErrorPolicy
	}
	return ErrorPolicyLog
}

// dump logs a request or response body in sandbox mode.
func (c *Client) dump(ctx context.Context, op, kind string, body any) {
	if !c.config.Sandbox {
		return
	}
	c.logger.Ctx(ctx).Info("Sameday sandbox "+kind,
		zap.String("operation", op),
		zap.Any(kind, body),
	)
}

func (c *Client) startSpan(ctx context.Context, op string) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, "sameday."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("carrier", CarrierName),
			attribute.String("sameday.operation", op),
		),
	)
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
