package sameday

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const userAgent = "sameday-go/1.0"

// Operation names used in errors, logs and span names.
const (
	opAuthenticate    = "authenticate"
	opCreateShipment  = "createShipment"
	opGetServices     = "getServices"
	opTrackShipment   = "trackShipment"
	opGetPickupPoints = "getPickupPoints"
	opGetCities       = "getCities"
	opGetCounties     = "getCounties"
)

// HTTPAPIClient is the production implementation of APIClient using HTTP.
type HTTPAPIClient struct {
	baseURL    string
	trackPath  string
	httpClient *http.Client
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	BaseURL string
	// TrackPath overrides EndpointTrack.
	TrackPath string
	// Timeout bounds each request. Zero leaves requests unbounded.
	Timeout time.Duration
	// HTTPClient replaces the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	trackPath := cfg.TrackPath
	if trackPath == "" {
		trackPath = EndpointTrack
	}

	return &HTTPAPIClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		trackPath:  trackPath,
		httpClient: httpClient,
	}
}

// Authenticate logs in with credentials sent as headers and asks for a
// persistent session.
// POST /api/authenticate
func (c *HTTPAPIClient) Authenticate(ctx context.Context, username, password string) (*AuthResponse, error) {
	body := url.Values{"remember_me": {"true"}}.Encode()

	req, err := c.newRequest(ctx, opAuthenticate, http.MethodPost, EndpointAuth, "", strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Auth-Username", username)
	req.Header.Set("X-Auth-Password", password)

	var result AuthResponse
	if err := c.send(opAuthenticate, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateAWB creates a shipment. The request is sent form-encoded.
// POST /api/awb
func (c *HTTPAPIClient) CreateAWB(ctx context.Context, token string, shipment *ShipmentRequest) (*AWB, error) {
	form, err := encodeValues(shipment)
	if err != nil {
		return nil, NewError(opCreateShipment, CodeEncode, "failed to encode shipment").WithCause(err)
	}

	req, err := c.newRequest(ctx, opCreateShipment, http.MethodPost, EndpointCreateAWB, token, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}

	var result AWB
	if err := c.send(opCreateShipment, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetServices lists the account's services.
// GET /api/client/services
func (c *HTTPAPIClient) GetServices(ctx context.Context, token string) (*ServicesResponse, error) {
	req, err := c.newRequest(ctx, opGetServices, http.MethodGet, EndpointServices, token, nil)
	if err != nil {
		return nil, err
	}

	var result ServicesResponse
	if err := c.send(opGetServices, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// TrackShipment returns the untyped status payload of an AWB.
// GET /api/client/status-sync/{awb}
func (c *HTTPAPIClient) TrackShipment(ctx context.Context, token, awbNumber string) (json.RawMessage, error) {
	path := fmt.Sprintf("%s/%s", c.trackPath, url.PathEscape(awbNumber))

	req, err := c.newRequest(ctx, opTrackShipment, http.MethodGet, path, token, nil)
	if err != nil {
		return nil, err
	}

	var result json.RawMessage
	if err := c.send(opTrackShipment, req, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetPickupPoints lists pickup points one page at a time.
// GET /api/client/pickup-points?page=&perPage=
func (c *HTTPAPIClient) GetPickupPoints(ctx context.Context, token string, page, perPage int) (*PickupPointResponse, error) {
	query := url.Values{
		"page":    {strconv.Itoa(page)},
		"perPage": {strconv.Itoa(perPage)},
	}

	req, err := c.newRequest(ctx, opGetPickupPoints, http.MethodGet, EndpointPickupPoints+"?"+query.Encode(), token, nil)
	if err != nil {
		return nil, err
	}

	var result PickupPointResponse
	if err := c.send(opGetPickupPoints, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetCities looks up cities. Unset filters are not sent.
// GET /api/geolocation/city
func (c *HTTPAPIClient) GetCities(ctx context.Context, token string, params *CityQueryParams) (*GetCitiesResponse, error) {
	query, err := encodeQuery(params)
	if err != nil {
		return nil, NewError(opGetCities, CodeEncode, "failed to encode query").WithCause(err)
	}

	req, err := c.newRequest(ctx, opGetCities, http.MethodGet, EndpointCity+query, token, nil)
	if err != nil {
		return nil, err
	}

	var result GetCitiesResponse
	if err := c.send(opGetCities, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetCounties looks up counties. Unset filters are not sent.
// GET /api/geolocation/county
func (c *HTTPAPIClient) GetCounties(ctx context.Context, token string, params *CountyQueryParams) (*GetCountiesResponse, error) {
	query, err := encodeQuery(params)
	if err != nil {
		return nil, NewError(opGetCounties, CodeEncode, "failed to encode query").WithCause(err)
	}

	req, err := c.newRequest(ctx, opGetCounties, http.MethodGet, EndpointCounty+query, token, nil)
	if err != nil {
		return nil, err
	}

	var result GetCountiesResponse
	if err := c.send(opGetCounties, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// newRequest builds a request with the common headers. A non-empty token is
// sent in X-Auth-Token.
func (c *HTTPAPIClient) newRequest(ctx context.Context, op, method, path, token string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, NewError(op, CodeTransport, "failed to create request").WithCause(err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if token != "" {
		req.Header.Set("X-Auth-Token", token)
	}
	return req, nil
}

// send performs req and decodes a 2xx JSON body into out.
func (c *HTTPAPIClient) send(op string, req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return NewError(op, CodeTransport, "no response received").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(op, resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewError(op, CodeTransport, "failed to read response").
			WithStatusCode(resp.StatusCode).
			WithCause(err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return NewError(op, CodeDecode, "failed to decode response").
			WithStatusCode(resp.StatusCode).
			WithCause(err)
	}
	return nil
}

// parseError turns a non-2xx response into an Error. Bodies of the form
// {"errors": {"children": ...}} keep their children; anything else falls
// back to a message field or the raw body.
func parseError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	apiErr := NewError(op, CodeRemoteValidation, http.StatusText(resp.StatusCode)).
		WithStatusCode(resp.StatusCode)

	var payload struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
		Errors  json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		if msg := strings.TrimSpace(string(body)); msg != "" {
			apiErr.Message = msg
		}
		return apiErr
	}

	var errorText string
	if len(payload.Error) > 0 {
		_ = json.Unmarshal(payload.Error, &errorText)
	}
	switch {
	case payload.Message != "":
		apiErr.Message = payload.Message
	case errorText != "":
		apiErr.Message = errorText
	}

	var nested struct {
		Children json.RawMessage `json:"children"`
	}
	if len(payload.Errors) > 0 && json.Unmarshal(payload.Errors, &nested) == nil &&
		len(nested.Children) > 0 && string(nested.Children) != "null" {
		apiErr.Children = nested.Children
	}
	return apiErr
}

var _ APIClient = (*HTTPAPIClient)(nil)
