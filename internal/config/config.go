package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/tournevent/sameday/pkg/sameday"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"80"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Sameday connection
	Username      string        `envconfig:"SAMEDAY_USERNAME"`
	Password      string        `envconfig:"SAMEDAY_PASSWORD"`
	URI           string        `envconfig:"SAMEDAY_URI"`
	SandboxAPIURL string        `envconfig:"SAMEDAY_SANDBOX_API_URL" default:"https://sameday-api.demo.zitec.com"`
	Sandbox       bool          `envconfig:"SAMEDAY_SANDBOX" default:"false"`
	UseMock       bool          `envconfig:"SAMEDAY_USE_MOCK" default:"false"`
	Timeout       time.Duration `envconfig:"SAMEDAY_TIMEOUT" default:"0s"`

	// Sameday behavior
	StrictCredentials bool   `envconfig:"SAMEDAY_STRICT_CREDENTIALS" default:"true"`
	ErrorPolicy       string `envconfig:"SAMEDAY_ERROR_POLICY" default:"log"`
	TrackCachedToken  bool   `envconfig:"SAMEDAY_TRACK_CACHED_TOKEN" default:"false"`
	LegacyTrackPath   bool   `envconfig:"SAMEDAY_LEGACY_TRACK_PATH" default:"false"`

	// Shipment defaults. Unset values keep the built-in defaults.
	PickupPoint      *string  `envconfig:"SAMEDAY_PICKUP_POINT"`
	PackageType      *int     `envconfig:"SAMEDAY_PACKAGE_TYPE"`
	PackageWeight    *float64 `envconfig:"SAMEDAY_PACKAGE_WEIGHT"`
	InsuredValue     *float64 `envconfig:"SAMEDAY_INSURED_VALUE"`
	ThirdPartyPickup *int     `envconfig:"SAMEDAY_THIRD_PARTY_PICKUP"`
	Currency         *string  `envconfig:"SAMEDAY_CURRENCY"`
	Service          *string  `envconfig:"SAMEDAY_SERVICE"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"sameday-gateway"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if _, err := sameday.ParseErrorPolicy(cfg.ErrorPolicy); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// BaseURL returns SAMEDAY_URI, or the sandbox URL when it is unset.
func (c *Config) BaseURL() string {
	if c.URI != "" {
		return c.URI
	}
	return c.SandboxAPIURL
}

// ShipmentDefaults returns the built-in shipment defaults with any
// SAMEDAY_* overrides applied.
func (c *Config) ShipmentDefaults() *sameday.DefaultShipmentData {
	d := sameday.StandardShipmentDefaults()
	if c.PickupPoint != nil {
		d.PickupPoint = c.PickupPoint
	}
	if c.PackageType != nil {
		pt := sameday.PackageType(*c.PackageType)
		d.PackageType = &pt
	}
	if c.PackageWeight != nil {
		d.PackageWeight = c.PackageWeight
	}
	if c.InsuredValue != nil {
		d.InsuredValue = c.InsuredValue
	}
	if c.ThirdPartyPickup != nil {
		d.ThirdPartyPickup = c.ThirdPartyPickup
	}
	if c.Currency != nil {
		d.Currency = c.Currency
	}
	if c.Service != nil {
		d.Service = c.Service
	}
	return &d
}

// Sameday returns the client configuration.
func (c *Config) Sameday() sameday.Config {
	// Load already rejected unknown policies.
	policy, _ := sameday.ParseErrorPolicy(c.ErrorPolicy)

	return sameday.Config{
		Username:             c.Username,
		Password:             c.Password,
		BaseURL:              c.BaseURL(),
		Sandbox:              c.Sandbox,
		StrictCredentials:    c.StrictCredentials && !c.UseMock,
		DefaultShipmentData:  c.ShipmentDefaults(),
		ErrorPolicy:          policy,
		TrackWithCachedToken: c.TrackCachedToken,
		LegacyTrackPath:      c.LegacyTrackPath,
		UseMock:              c.UseMock,
		Timeout:              c.Timeout,
	}
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.String("sameday.base_url", c.BaseURL()),
		attribute.Bool("sameday.sandbox", c.Sandbox),
		attribute.Bool("sameday.mock", c.UseMock),
	}
}
