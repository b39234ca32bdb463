package sameday

import (
	"encoding/json"
	"fmt"
)

// PackageType is the parcel category expected by the AWB endpoint.
type PackageType int

const (
	PackageTypePackage      PackageType = 0
	PackageTypeSmallPackage PackageType = 1
	PackageTypeLargePackage PackageType = 2
)

// AwbPayment identifies who pays for the AWB.
type AwbPayment int

const (
	AwbPaymentClient     AwbPayment = 1
	AwbPaymentReceiver   AwbPayment = 2
	AwbPaymentThirdParty AwbPayment = 3
)

// PersonType distinguishes private recipients from companies.
type PersonType int

const (
	PersonTypeIndividual  PersonType = 0
	PersonTypeLegalEntity PersonType = 1
)

// DeliveryInterval is an opaque delivery window code assigned by Sameday.
// The numbering is not ordered by time of day.
type DeliveryInterval int

const (
	DeliveryInterval10to13 DeliveryInterval = 1
	DeliveryInterval14to17 DeliveryInterval = 2
	DeliveryInterval19to22 DeliveryInterval = 3
	DeliveryInterval09to11 DeliveryInterval = 4
	DeliveryInterval11to13 DeliveryInterval = 5
	DeliveryInterval13to15 DeliveryInterval = 6
	DeliveryInterval15to17 DeliveryInterval = 7
	DeliveryInterval17to19 DeliveryInterval = 8
	DeliveryInterval19to21 DeliveryInterval = 9
	DeliveryInterval13to16 DeliveryInterval = 10
	DeliveryInterval15to18 DeliveryInterval = 11
	DeliveryInterval13to18 DeliveryInterval = 12
	DeliveryInterval18to22 DeliveryInterval = 13
	DeliveryInterval18to20 DeliveryInterval = 14
	DeliveryInterval20to22 DeliveryInterval = 15
)

var deliveryIntervalLabels = map[DeliveryInterval]string{
	DeliveryInterval10to13: "10-13",
	DeliveryInterval14to17: "14-17",
	DeliveryInterval19to22: "19-22",
	DeliveryInterval09to11: "09-11",
	DeliveryInterval11to13: "11-13",
	DeliveryInterval13to15: "13-15",
	DeliveryInterval15to17: "15-17",
	DeliveryInterval17to19: "17-19",
	DeliveryInterval19to21: "19-21",
	DeliveryInterval13to16: "13-16",
	DeliveryInterval15to18: "15-18",
	DeliveryInterval13to18: "13-18",
	DeliveryInterval18to22: "18-22",
	DeliveryInterval18to20: "18-20",
	DeliveryInterval20to22: "20-22",
}

// String returns the clock-range label, e.g. "10-13".
func (d DeliveryInterval) String() string {
	if label, ok := deliveryIntervalLabels[d]; ok {
		return label
	}
	return fmt.Sprintf("DeliveryInterval(%d)", int(d))
}

// ParseDeliveryInterval maps a label such as "14-17" to its code.
func ParseDeliveryInterval(label string) (DeliveryInterval, error) {
	for code, l := range deliveryIntervalLabels {
		if l == label {
			return code, nil
		}
	}
	return 0, fmt.Errorf("unknown delivery interval %q", label)
}

// ============================================================================
// Shipment request
// ============================================================================

// ThirdPartyDetails describes the party a shipment is picked up from when
// ThirdPartyPickup is 1.
type ThirdPartyDetails struct {
	County            string      `json:"county,omitempty"`
	City              string      `json:"city,omitempty"`
	Address           string      `json:"address,omitempty"`
	Name              string      `json:"name,omitempty"`
	PhoneNumber       string      `json:"phoneNumber,omitempty"`
	PersonType        *PersonType `json:"personType,omitempty"`
	CityString        string      `json:"cityString,omitempty"`
	CountyString      string      `json:"countyString,omitempty"`
	CompanyName       string      `json:"companyName,omitempty"`
	CompanyCUI        string      `json:"companyCui,omitempty"`
	CompanyONRCNumber string      `json:"companyOnrcNumber,omitempty"`
	CompanyIBAN       string      `json:"companyIban,omitempty"`
	CompanyBank       string      `json:"companyBank,omitempty"`
}

// AWBRecipient is the consignee of a shipment.
type AWBRecipient struct {
	Name              string     `json:"name"`
	PhoneNumber       string     `json:"phoneNumber"`
	PersonType        PersonType `json:"personType"`
	CompanyName       string     `json:"companyName,omitempty"`
	CompanyCUI        string     `json:"companyCui,omitempty"`
	CompanyONRCNumber string     `json:"companyOnrcNumber,omitempty"`
	CompanyIBAN       string     `json:"companyIban,omitempty"`
	CompanyBank       string     `json:"companyBank,omitempty"`
	PostalCode        string     `json:"postalCode,omitempty"`
	County            string     `json:"county,omitempty"`
	City              string     `json:"city,omitempty"`
	CityString        string     `json:"cityString,omitempty"`
	CountyString      string     `json:"countyString,omitempty"`
	Address           string     `json:"address,omitempty"`
}

// Parcel is a single physical package of a shipment. Dimensions are in cm,
// weight in kg.
type Parcel struct {
	Weight          float64  `json:"weight"`
	Width           *float64 `json:"width,omitempty"`
	Length          *float64 `json:"length,omitempty"`
	Height          *float64 `json:"height,omitempty"`
	AwbParcelNumber string   `json:"awbParcelNumber,omitempty"`
}

// ShipmentRequest is the AWB creation payload. Pointer fields are optional;
// nil means "not set" so the defaulting policy can fill them in.
type ShipmentRequest struct {
	PickupPoint             *string            `json:"pickupPoint,omitempty"`
	ReturnLocationID        string             `json:"returnLocationId,omitempty"`
	ContactPerson           string             `json:"contactPerson,omitempty"`
	PackageType             *PackageType       `json:"packageType,omitempty"`
	PackageNumber           *int               `json:"packageNumber,omitempty"`
	PackageWeight           *float64           `json:"packageWeight,omitempty"`
	Service                 *string            `json:"service,omitempty"`
	AwbPayment              *AwbPayment        `json:"awbPayment,omitempty"`
	CashOnDelivery          *float64           `json:"cashOnDelivery,omitempty"`
	CashOnDeliveryReturns   *int               `json:"cashOnDeliveryReturns,omitempty"`
	InsuredValue            *float64           `json:"insuredValue,omitempty"`
	ThirdPartyPickup        *int               `json:"thirdPartyPickup,omitempty"`
	ThirdParty              *ThirdPartyDetails `json:"thirdParty,omitempty"`
	ServiceTaxes            []string           `json:"serviceTaxes,omitempty"`
	DeliveryInterval        *DeliveryInterval  `json:"deliveryInterval,omitempty"`
	AwbRecipient            *AWBRecipient      `json:"awbRecipient,omitempty"`
	ClientInternalReference string             `json:"clientInternalReference,omitempty"`
	Parcels                 []Parcel           `json:"parcels,omitempty"`
	Observation             string             `json:"observation,omitempty"`
	PriceObservation        string             `json:"priceObservation,omitempty"`
	Currency                *string            `json:"currency,omitempty"`

	// Locker and out-of-home routing.
	LockerRedirectEligible *int `json:"lockerRedirectEligible,omitempty"`
	LockerFirstMile        *int `json:"lockerFirstMile,omitempty"`
	LockerLastMile         *int `json:"lockerLastMile,omitempty"`
	OOHFirstMile           *int `json:"oohFirstMile,omitempty"`
	OOHLastMile            *int `json:"oohLastMile,omitempty"`
	// Deprecated: use LockerLastMile.
	LockerID *int `json:"lockerId,omitempty"`

	ClientID           string         `json:"clientId,omitempty"`
	OrderNumber        string         `json:"orderNumber,omitempty"`
	ReturnLockerParcel map[string]any `json:"returnLockerParcel,omitempty"`
	ClientOOHParcel    map[string]any `json:"clientOohParcel,omitempty"`
	ClientObservation  string         `json:"clientObservation,omitempty"`
	AwbNumber          string         `json:"awbNumber,omitempty"`

	// Returns and fulfillment.
	FulfillmentType       *int           `json:"fulfillmentType,omitempty"` // 1 own AWB, 2 third-party AWB
	GeniusOrder           *int           `json:"geniusOrder,omitempty"`
	OrderDate             string         `json:"orderDate,omitempty"`
	PickupStartDate       string         `json:"pickupStartDate,omitempty"`
	PickupEndDate         string         `json:"pickupEndDate,omitempty"`
	ReturnAwbs            []string       `json:"returnAwbs,omitempty"`
	OptionalPickupReturns *int           `json:"optionalPickupReturns,omitempty"`
	ForwardedTC           map[string]any `json:"forwardedTC,omitempty"`
	StandbyReturn         *int           `json:"standbyReturn,omitempty"`
}

// ============================================================================
// Responses
// ============================================================================

// AWB is the result of a successful shipment creation.
type AWB struct {
	AwbNumber                string      `json:"awbNumber"`
	AwbCost                  float64     `json:"awbCost"`
	PDFLink                  string      `json:"pdfLink"`
	PickupLogisticLocation   string      `json:"pickupLogisticLocation"`
	DeliveryLogisticLocation string      `json:"deliveryLogisticLocation"`
	DeliveryLogisticCircle   string      `json:"deliveryLogisticCircle"`
	SortingHub               string      `json:"sortingHub"`
	LockerReturnChargeCode   string      `json:"lockerReturnChargeCode"`
	DeliveryZone             string      `json:"deliveryZone"`
	DeliveryCourier          string      `json:"deliveryCourier"`
	OOHClientChargeCode      string      `json:"oohClientChargeCode"`
	Parcels                  []AWBParcel `json:"parcels,omitempty"`
}

// AWBParcel maps a parcel position to its own barcode.
type AWBParcel struct {
	Position  int    `json:"position"`
	AwbNumber string `json:"awbNumber"`
}

// Page is the envelope shared by every list endpoint.
type Page[T any] struct {
	Total       int `json:"total"`
	CurrentPage int `json:"currentPage"`
	Pages       int `json:"pages"`
	PerPage     int `json:"perPage"`
	Data        []T `json:"data"`
}

type (
	PickupPointResponse = Page[PickupPoint]
	GetCitiesResponse   = Page[City]
	GetCountiesResponse = Page[County]
	ServicesResponse    = Page[ServiceType]
)

// ServiceType is a delivery service available to the account.
type ServiceType struct {
	ID                   int           `json:"id"`
	Name                 string        `json:"name,omitempty"`
	ServiceCode          string        `json:"serviceCode,omitempty"`
	DeliveryType         *DeliveryType `json:"deliveryType,omitempty"`
	DefaultService       bool          `json:"defaultService,omitempty"`
	ServiceOptionalTaxes []ServiceTax  `json:"serviceOptionalTaxes,omitempty"`
}

// DeliveryType groups services by delivery mode.
type DeliveryType struct {
	ID   json.Number `json:"id,omitempty"`
	Name string      `json:"name,omitempty"`
}

// ServiceTax is an optional surcharge that can be requested with a service.
type ServiceTax struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	TaxCode     string  `json:"taxCode"`
	CostType    string  `json:"costType"`
	Tax         float64 `json:"tax"`
	PackageType int     `json:"packageType"`
}

// Country is the country reference embedded in geolocation records.
type Country struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// CountyRef is the county reference embedded in pickup points and cities.
type CountyRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// PickupPointCity is the city reference embedded in a pickup point.
type PickupPointCity struct {
	SamedayDeliveryAgency string  `json:"samedayDeliveryAgency"`
	SamedayPickupAgency   string  `json:"samedayPickupAgency"`
	ID                    int     `json:"id"`
	Name                  string  `json:"name"`
	ExtraKM               float64 `json:"extraKM"`
}

// ContactPerson is the person responsible for a pickup point.
type ContactPerson struct {
	ID                   int    `json:"id"`
	Name                 string `json:"name"`
	Position             string `json:"position"`
	PhoneNumber          string `json:"phoneNumber"`
	Email                string `json:"email"`
	DefaultContactPerson bool   `json:"defaultContactPerson"`
	Nationality          string `json:"nationality"`
	NationalID           string `json:"nationalID"`
}

// PickupPoint is a client location from which the courier collects parcels.
type PickupPoint struct {
	Country                  Country         `json:"country"`
	ID                       int             `json:"id"`
	County                   CountyRef       `json:"county"`
	City                     PickupPointCity `json:"city"`
	Address                  string          `json:"address"`
	PostalCode               string          `json:"postalCode"`
	DefaultPickupPoint       bool            `json:"defaultPickupPoint"`
	PickupPointContactPerson ContactPerson   `json:"pickupPointContactPerson"`
	Alias                    string          `json:"alias"`
	CutOff                   string          `json:"cutOff"`
	DeliveryInterval         string          `json:"deliveryInterval"`
	Status                   bool            `json:"status"`
}

// City is a geolocation city record.
type City struct {
	SamedayDeliveryAgencyID int       `json:"samedayDeliveryAgencyId"`
	SamedayDeliveryAgency   string    `json:"samedayDeliveryAgency"`
	SamedayPickupAgency     string    `json:"samedayPickupAgency"`
	NextDayDeliveryAgencyID int       `json:"nextDayDeliveryAgencyId"`
	NextDayDeliveryAgency   string    `json:"nextDayDeliveryAgency"`
	NextDayPickupAgency     string    `json:"nextDayPickupAgency"`
	WhiteDeliveryAgencyID   int       `json:"whiteDeliveryAgencyId"`
	WhiteDeliveryAgency     string    `json:"whiteDeliveryAgency"`
	WhitePickupAgency       string    `json:"whitePickupAgency"`
	LogisticCircle          string    `json:"logisticCircle"`
	Country                 Country   `json:"country"`
	ID                      int       `json:"id"`
	Name                    string    `json:"name"`
	ExtraKM                 float64   `json:"extraKM"`
	Village                 string    `json:"village"`
	BrokerDelivery          int       `json:"brokerDelivery"`
	PostalCode              string    `json:"postalCode"`
	County                  CountyRef `json:"county"`
}

// County is a geolocation county record.
type County struct {
	CountryID int    `json:"countryId"`
	Country   string `json:"country"`
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
}

// ============================================================================
// Query parameters
// ============================================================================

// CityQueryParams filters the city lookup. Nil fields are not sent.
type CityQueryParams struct {
	Name         *string `json:"name,omitempty"`
	County       *string `json:"county,omitempty"`
	PostalCode   *string `json:"postalCode,omitempty"`
	CountryCode  *string `json:"countryCode,omitempty"`
	Page         *int    `json:"page,omitempty"`
	CountPerPage *int    `json:"countPerPage,omitempty"`
}

// CountyQueryParams filters the county lookup. Nil fields are not sent.
type CountyQueryParams struct {
	Name         *string `json:"name,omitempty"`
	CountryCode  *string `json:"countryCode,omitempty"`
	Page         *int    `json:"page,omitempty"`
	CountPerPage *int    `json:"countPerPage,omitempty"`
}

// AuthResponse is the body returned by the login endpoint.
type AuthResponse struct {
	Token       string `json:"token"`
	ExpireAt    string `json:"expire_at,omitempty"`
	ExpireAtUTC string `json:"expire_at_utc"`
}
