package sameday

// API paths relative to the configured base URL.
const (
	EndpointAuth         = "/api/authenticate"
	EndpointPickupPoints = "/api/client/pickup-points"
	EndpointServices     = "/api/client/services"
	EndpointCounty       = "/api/geolocation/county"
	EndpointCity         = "/api/geolocation/city"
	EndpointCreateAWB    = "/api/awb"
	EndpointTrack        = "/api/client/status-sync"

	// EndpointTrackLegacy is the tracking path used by an older client build.
	// It disagrees with EndpointTrack and is only used when
	// Config.LegacyTrackPath is set, until the provider confirms which one is
	// current.
	EndpointTrackLegacy = "/api/track"
)
