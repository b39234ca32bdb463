package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/sameday/internal/config"
	"github.com/tournevent/sameday/pkg/sameday"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 80, cfg.Port)
	assert.Equal(t, "https://sameday-api.demo.zitec.com", cfg.BaseURL())
	assert.True(t, cfg.StrictCredentials)
	assert.Nil(t, cfg.PickupPoint)

	sc := cfg.Sameday()
	assert.Equal(t, sameday.ErrorPolicyLog, sc.ErrorPolicy)
	assert.Equal(t, time.Duration(0), sc.Timeout)
	assert.Equal(t, sameday.StandardShipmentDefaults(), *sc.DefaultShipmentData)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SAMEDAY_USERNAME", "user")
	t.Setenv("SAMEDAY_PASSWORD", "secret")
	t.Setenv("SAMEDAY_URI", "https://api.sameday.ro")
	t.Setenv("SAMEDAY_TIMEOUT", "15s")
	t.Setenv("SAMEDAY_ERROR_POLICY", "return")
	t.Setenv("SAMEDAY_TRACK_CACHED_TOKEN", "true")
	t.Setenv("SAMEDAY_PICKUP_POINT", "9999")
	t.Setenv("SAMEDAY_PACKAGE_TYPE", "0")
	t.Setenv("SAMEDAY_CURRENCY", "EUR")

	cfg, err := config.Load()
	require.NoError(t, err)

	sc := cfg.Sameday()
	assert.Equal(t, "user", sc.Username)
	assert.Equal(t, "https://api.sameday.ro", sc.BaseURL)
	assert.Equal(t, 15*time.Second, sc.Timeout)
	assert.Equal(t, sameday.ErrorPolicyReturn, sc.ErrorPolicy)
	assert.True(t, sc.TrackWithCachedToken)
	assert.True(t, sc.StrictCredentials)

	d := sc.DefaultShipmentData
	assert.Equal(t, "9999", *d.PickupPoint)
	assert.Equal(t, sameday.PackageTypePackage, *d.PackageType)
	assert.Equal(t, "EUR", *d.Currency)
	assert.Equal(t, "7", *d.Service, "unset values keep the built-in default")
}

func TestLoad_MockRelaxesCredentials(t *testing.T) {
	t.Setenv("SAMEDAY_USE_MOCK", "true")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.False(t, cfg.Sameday().StrictCredentials)
}

func TestLoad_InvalidErrorPolicy(t *testing.T) {
	t.Setenv("SAMEDAY_ERROR_POLICY", "ignore")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestAttributes(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	attrs := cfg.Attributes()
	require.NotEmpty(t, attrs)
	assert.Equal(t, "service.name", string(attrs[0].Key))
	assert.Equal(t, "sameday-gateway", attrs[0].Value.AsString())
}
