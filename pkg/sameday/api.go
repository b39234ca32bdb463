package sameday

import (
	"context"
	"encoding/json"
)

// APIClient defines the raw Sameday API operations.
// Client layers session handling, defaulting and error policy on top of it;
// the mock implementation stands in for the HTTP one in tests.
type APIClient interface {
	// Authenticate exchanges credentials for a token.
	Authenticate(ctx context.Context, username, password string) (*AuthResponse, error)

	// CreateAWB creates a shipment from a fully merged request.
	CreateAWB(ctx context.Context, token string, req *ShipmentRequest) (*AWB, error)

	// GetServices lists the services available to the account.
	GetServices(ctx context.Context, token string) (*ServicesResponse, error)

	// TrackShipment returns the raw status payload of an AWB.
	TrackShipment(ctx context.Context, token, awbNumber string) (json.RawMessage, error)

	// GetPickupPoints lists the account's pickup points.
	GetPickupPoints(ctx context.Context, token string, page, perPage int) (*PickupPointResponse, error)

	// GetCities looks up cities.
	GetCities(ctx context.Context, token string, params *CityQueryParams) (*GetCitiesResponse, error)

	// GetCounties looks up counties.
	GetCounties(ctx context.Context, token string, params *CountyQueryParams) (*GetCountiesResponse, error)
}
