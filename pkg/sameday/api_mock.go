package sameday

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnAuthenticate    func(ctx context.Context, username, password string) (*AuthResponse, error)
	OnCreateAWB       func(ctx context.Context, token string, req *ShipmentRequest) (*AWB, error)
	OnGetServices     func(ctx context.Context, token string) (*ServicesResponse, error)
	OnTrackShipment   func(ctx context.Context, token, awbNumber string) (json.RawMessage, error)
	OnGetPickupPoints func(ctx context.Context, token string, page, perPage int) (*PickupPointResponse, error)
	OnGetCities       func(ctx context.Context, token string, params *CityQueryParams) (*GetCitiesResponse, error)
	OnGetCounties     func(ctx context.Context, token string, params *CountyQueryParams) (*GetCountiesResponse, error)

	mu     sync.Mutex
	calls  map[string]int
	tokens []string
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{calls: make(map[string]int)}
}

// Calls returns how many times the named operation was invoked, e.g.
// "authenticate" or "getServices".
func (m *MockAPIClient) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// Tokens returns the tokens presented by authenticated calls, in order.
func (m *MockAPIClient) Tokens() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.tokens...)
}

func (m *MockAPIClient) record(op, token string) error {
	m.mu.Lock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[op]++
	if op != opAuthenticate {
		m.tokens = append(m.tokens, token)
	}
	m.mu.Unlock()

	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}
	if m.SimulateErrors {
		return NewError(op, CodeRemoteValidation, "Simulated API error").
			WithStatusCode(400).
			WithChildren(json.RawMessage(`{"service":{"errors":["Simulated API error"]}}`))
	}
	return nil
}

// Authenticate returns a mock token valid for one hour.
func (m *MockAPIClient) Authenticate(ctx context.Context, username, password string) (*AuthResponse, error) {
	if err := m.record(opAuthenticate, ""); err != nil {
		return nil, err
	}
	if m.OnAuthenticate != nil {
		return m.OnAuthenticate(ctx, username, password)
	}

	expires := time.Now().UTC().Add(time.Hour)
	return &AuthResponse{
		Token:       "mock-token-" + uuid.New().String()[:8],
		ExpireAt:    expires.Format("2006-01-02 15:04"),
		ExpireAtUTC: expires.Format("2006-01-02 15:04"),
	}, nil
}

// CreateAWB creates a mock AWB.
func (m *MockAPIClient) CreateAWB(ctx context.Context, token string, req *ShipmentRequest) (*AWB, error) {
	if err := m.record(opCreateShipment, token); err != nil {
		return nil, err
	}
	if m.OnCreateAWB != nil {
		return m.OnCreateAWB(ctx, token, req)
	}

	awbNumber := fmt.Sprintf("1ONB%08d", time.Now().UnixNano()%100000000)
	parcels := make([]AWBParcel, len(req.Parcels))
	for i := range req.Parcels {
		parcels[i] = AWBParcel{Position: i + 1, AwbNumber: fmt.Sprintf("%s%03d", awbNumber, i+1)}
	}

	return &AWB{
		AwbNumber:                awbNumber,
		AwbCost:                  17.5,
		PDFLink:                  fmt.Sprintf("https://sameday-api.demo.zitec.com/api/awb/download/%s", awbNumber),
		PickupLogisticLocation:   "TM",
		DeliveryLogisticLocation: "TM",
		DeliveryLogisticCircle:   "TM-CIRCLE",
		SortingHub:               "Timisoara",
		DeliveryZone:             "TM-1",
		DeliveryCourier:          "TM1",
		Parcels:                  parcels,
	}, nil
}

// GetServices returns mock services.
func (m *MockAPIClient) GetServices(ctx context.Context, token string) (*ServicesResponse, error) {
	if err := m.record(opGetServices, token); err != nil {
		return nil, err
	}
	if m.OnGetServices != nil {
		return m.OnGetServices(ctx, token)
	}

	return &ServicesResponse{
		Total:       2,
		CurrentPage: 1,
		Pages:       1,
		PerPage:     50,
		Data: []ServiceType{
			{ID: 7, Name: "Nextday 24H", ServiceCode: "24", DefaultService: true,
				DeliveryType: &DeliveryType{ID: "1", Name: "Nextday"}},
			{ID: 15, Name: "Locker NextDay", ServiceCode: "LN",
				DeliveryType: &DeliveryType{ID: "1", Name: "Nextday"}},
		},
	}, nil
}

// TrackShipment returns a mock status payload.
func (m *MockAPIClient) TrackShipment(ctx context.Context, token, awbNumber string) (json.RawMessage, error) {
	if err := m.record(opTrackShipment, token); err != nil {
		return nil, err
	}
	if m.OnTrackShipment != nil {
		return m.OnTrackShipment(ctx, token, awbNumber)
	}

	payload := map[string]any{
		"awbNumber": awbNumber,
		"awbHistory": []map[string]any{
			{
				"status":      "Colet in tranzit",
				"statusState": "In tranzit",
				"county":      "Timis",
				"statusDate":  time.Now().UTC().Add(-24 * time.Hour).Format(time.RFC3339),
			},
		},
	}
	return json.Marshal(payload)
}

// GetPickupPoints returns a single mock pickup point.
func (m *MockAPIClient) GetPickupPoints(ctx context.Context, token string, page, perPage int) (*PickupPointResponse, error) {
	if err := m.record(opGetPickupPoints, token); err != nil {
		return nil, err
	}
	if m.OnGetPickupPoints != nil {
		return m.OnGetPickupPoints(ctx, token, page, perPage)
	}

	return &PickupPointResponse{
		Total:       1,
		CurrentPage: page,
		Pages:       1,
		PerPage:     perPage,
		Data: []PickupPoint{
			{
				Country:            Country{ID: 187, Name: "Romania", Code: "RO"},
				ID:                 261421,
				County:             CountyRef{ID: 39, Name: "Timis", Code: "TM"},
				City:               PickupPointCity{ID: 13762, Name: "Timisoara", SamedayDeliveryAgency: "Timisoara", SamedayPickupAgency: "Timisoara"},
				Address:            "Strada Lunei 1",
				PostalCode:         "300111",
				DefaultPickupPoint: true,
				PickupPointContactPerson: ContactPerson{
					ID: 1, Name: "Depozit", PhoneNumber: "0700000000", DefaultContactPerson: true,
				},
				Alias:  "Depozit Timisoara",
				CutOff: "16:00",
				Status: true,
			},
		},
	}, nil
}

// GetCities returns a mock city matching the requested name.
func (m *MockAPIClient) GetCities(ctx context.Context, token string, params *CityQueryParams) (*GetCitiesResponse, error) {
	if err := m.record(opGetCities, token); err != nil {
		return nil, err
	}
	if m.OnGetCities != nil {
		return m.OnGetCities(ctx, token, params)
	}

	name := "Timisoara"
	if params != nil && params.Name != nil {
		name = *params.Name
	}
	return &GetCitiesResponse{
		Total:       1,
		CurrentPage: 1,
		Pages:       1,
		PerPage:     50,
		Data: []City{
			{
				ID:             13762,
				Name:           name,
				PostalCode:     "300111",
				Country:        Country{ID: 187, Name: "Romania", Code: "RO"},
				County:         CountyRef{ID: 39, Name: "Timis", Code: "TM"},
				LogisticCircle: "TM",
			},
		},
	}, nil
}

// GetCounties returns a mock county.
func (m *MockAPIClient) GetCounties(ctx context.Context, token string, params *CountyQueryParams) (*GetCountiesResponse, error) {
	if err := m.record(opGetCounties, token); err != nil {
		return nil, err
	}
	if m.OnGetCounties != nil {
		return m.OnGetCounties(ctx, token, params)
	}

	return &GetCountiesResponse{
		Total:       1,
		CurrentPage: 1,
		Pages:       1,
		PerPage:     50,
		Data: []County{
			{CountryID: 187, Country: "Romania", ID: 39, Name: "Timis", Code: "TM"},
		},
	}, nil
}

var _ APIClient = (*MockAPIClient)(nil)
