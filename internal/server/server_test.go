package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/sameday/internal/server"
	"github.com/tournevent/sameday/pkg/sameday"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

type testGateway struct {
	handler  http.Handler
	api      *sameday.MockAPIClient
	client   *sameday.Client
	registry *prometheus.Registry
}

func newTestGateway(t *testing.T) *testGateway {
	t.Helper()

	logger := otelzap.New(zap.NewNop())
	api := sameday.NewMockAPIClient()
	client := sameday.NewWithAPIClient(sameday.Config{}, api, logger, nil)
	registry := prometheus.NewRegistry()

	srv := server.New(server.Config{Port: 8080, Registry: registry}, client, logger)
	return &testGateway{
		handler:  srv.Handler(),
		api:      api,
		client:   client,
		registry: registry,
	}
}

func (g *testGateway) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	g.handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestServer_Health(t *testing.T) {
	g := newTestGateway(t)

	rec := g.do(http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestServer_Services(t *testing.T) {
	g := newTestGateway(t)

	rec := g.do(http.MethodGet, "/api/services", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var services []sameday.ServiceType
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &services))
	assert.Len(t, services, 2)
}

func TestServer_PickupPoints(t *testing.T) {
	g := newTestGateway(t)
	var gotPage, gotPerPage int
	g.api.OnGetPickupPoints = func(ctx context.Context, token string, page, perPage int) (*sameday.PickupPointResponse, error) {
		gotPage, gotPerPage = page, perPage
		return &sameday.PickupPointResponse{CurrentPage: page, PerPage: perPage}, nil
	}

	rec := g.do(http.MethodGet, "/api/pickup-points?page=2", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, gotPage)
	assert.Equal(t, 50, gotPerPage)
}

func TestServer_PickupPointsBadPage(t *testing.T) {
	g := newTestGateway(t)

	rec := g.do(http.MethodGet, "/api/pickup-points?page=two", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", decodeError(t, rec)["code"])
	assert.Equal(t, 0, g.api.Calls("getPickupPoints"))

	expected := `
# HELP sameday_carrier_errors_total Total carrier API errors by carrier and error type
# TYPE sameday_carrier_errors_total counter
sameday_carrier_errors_total{carrier="sameday",error_type="INVALID_INPUT"} 1
# HELP sameday_requests_total Total number of requests by operation, carrier, and status
# TYPE sameday_requests_total counter
sameday_requests_total{carrier="sameday",operation="getPickupPoints",status="error"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(g.registry, strings.NewReader(expected),
		"sameday_carrier_errors_total", "sameday_requests_total"))
}

func TestServer_CitiesOnlySendsGivenFilters(t *testing.T) {
	g := newTestGateway(t)
	var got *sameday.CityQueryParams
	g.api.OnGetCities = func(ctx context.Context, token string, params *sameday.CityQueryParams) (*sameday.GetCitiesResponse, error) {
		got = params
		return &sameday.GetCitiesResponse{}, nil
	}

	rec := g.do(http.MethodGet, "/api/cities?name=Timisoara&countPerPage=5", "")

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "Timisoara", *got.Name)
	assert.Equal(t, 5, *got.CountPerPage)
	assert.Nil(t, got.County)
	assert.Nil(t, got.Page)
}

func TestServer_Counties(t *testing.T) {
	g := newTestGateway(t)

	rec := g.do(http.MethodGet, "/api/counties?countryCode=RO", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp sameday.GetCountiesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "TM", resp.Data[0].Code)
}

func TestServer_Track(t *testing.T) {
	g := newTestGateway(t)

	rec := g.do(http.MethodGet, "/api/track/1ONB24000000001", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "1ONB24000000001")
}

func TestServer_CreateAWB(t *testing.T) {
	g := newTestGateway(t)
	var sent *sameday.ShipmentRequest
	g.api.OnCreateAWB = func(ctx context.Context, token string, req *sameday.ShipmentRequest) (*sameday.AWB, error) {
		sent = req
		return &sameday.AWB{AwbNumber: "1ONB1", AwbCost: 12}, nil
	}

	rec := g.do(http.MethodPut, "/api/pickup-point", `{"pickupPoint":"2000"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = g.do(http.MethodPost, "/api/awb", `{"packageWeight":2,"awbRecipient":{"name":"Ion","phoneNumber":"07","personType":0}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, sent)
	assert.Equal(t, "2000", *sent.PickupPoint)
	assert.Equal(t, 2.0, *sent.PackageWeight)

	var awb sameday.AWB
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &awb))
	assert.Equal(t, "1ONB1", awb.AwbNumber)
}

func TestServer_PickupPointRoundTrip(t *testing.T) {
	g := newTestGateway(t)

	rec := g.do(http.MethodPut, "/api/pickup-point", `{"pickupPoint":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	g.do(http.MethodPut, "/api/pickup-point", `{"pickupPoint":"4242"}`)
	rec = g.do(http.MethodGet, "/api/pickup-point", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"pickupPoint":"4242"}`, rec.Body.String())
	assert.Equal(t, "4242", g.client.PickupPoint())
}

func TestServer_CreateAWBInvalidJSON(t *testing.T) {
	g := newTestGateway(t)

	rec := g.do(http.MethodPost, "/api/awb", `{"packageWeight":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, g.api.Calls("createShipment"))
}

func TestServer_ValidationErrorIs422(t *testing.T) {
	g := newTestGateway(t)
	g.api.OnCreateAWB = func(ctx context.Context, token string, req *sameday.ShipmentRequest) (*sameday.AWB, error) {
		return nil, sameday.NewError("createShipment", sameday.CodeRemoteValidation, "Validation Failed").
			WithStatusCode(400).
			WithChildren(json.RawMessage(`{"service":{"errors":["invalid"]}}`))
	}

	rec := g.do(http.MethodPost, "/api/awb", `{}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, sameday.CodeRemoteValidation, body["code"])
	assert.NotNil(t, body["children"])

	expected := `
# HELP sameday_carrier_errors_total Total carrier API errors by carrier and error type
# TYPE sameday_carrier_errors_total counter
sameday_carrier_errors_total{carrier="sameday",error_type="REMOTE_VALIDATION_ERROR"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(g.registry, strings.NewReader(expected), "sameday_carrier_errors_total"))
}

func TestServer_AuthenticationErrorIs502(t *testing.T) {
	g := newTestGateway(t)
	g.api.SimulateErrors = true

	rec := g.do(http.MethodGet, "/api/services", "")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, sameday.CodeAuthentication, decodeError(t, rec)["code"])
}

func TestServer_Metrics(t *testing.T) {
	g := newTestGateway(t)
	g.do(http.MethodGet, "/api/services", "")

	rec := g.do(http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `sameday_requests_total{carrier="sameday",operation="getServices",status="success"} 1`)
}
