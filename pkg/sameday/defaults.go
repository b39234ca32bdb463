package sameday

import (
	"github.com/samber/lo"
)

// Last-resort values used when neither the request nor the client defaults
// set a field.
const (
	fallbackPickupPoint      = "defaultPickupPoint"
	fallbackPackageType      = PackageTypeSmallPackage
	fallbackPackageWeight    = 1.0
	fallbackService          = "7"
	fallbackAwbPayment       = AwbPaymentClient
	fallbackInsuredValue     = 0.0
	fallbackThirdPartyPickup = 0
	fallbackCashOnDelivery   = 0.0
)

// DefaultShipmentData holds client-level values applied to every shipment
// that does not set them itself.
type DefaultShipmentData struct {
	PickupPoint      *string      `json:"pickupPoint,omitempty"`
	PackageType      *PackageType `json:"packageType,omitempty"`
	PackageWeight    *float64     `json:"packageWeight,omitempty"`
	Service          *string      `json:"service,omitempty"`
	AwbPayment       *AwbPayment  `json:"awbPayment,omitempty"`
	InsuredValue     *float64     `json:"insuredValue,omitempty"`
	ThirdPartyPickup *int         `json:"thirdPartyPickup,omitempty"`
	CashOnDelivery   *float64     `json:"cashOnDelivery,omitempty"`
	Currency         *string      `json:"currency,omitempty"`
}

// StandardShipmentDefaults returns the defaults used when a client is built
// without its own DefaultShipmentData.
func StandardShipmentDefaults() DefaultShipmentData {
	return DefaultShipmentData{
		PickupPoint:      lo.ToPtr("261421"),
		PackageType:      lo.ToPtr(PackageTypeSmallPackage),
		PackageWeight:    lo.ToPtr(1.0),
		InsuredValue:     lo.ToPtr(0.0),
		ThirdPartyPickup: lo.ToPtr(0),
		Currency:         lo.ToPtr("RON"),
		Service:          lo.ToPtr("7"),
	}
}

// Apply builds the payload sent for in. For each defaulted field the first
// set value wins, in this order: in, localPickupPoint (pickup point only),
// d, hard-coded fallback. Every other field of in is copied as-is. in is not
// modified.
func (d DefaultShipmentData) Apply(in *ShipmentRequest, localPickupPoint *string) *ShipmentRequest {
	var out ShipmentRequest
	if in != nil {
		out = *in
	}

	out.PickupPoint = first(in, func(r *ShipmentRequest) *string { return r.PickupPoint },
		localPickupPoint, d.PickupPoint, lo.ToPtr(fallbackPickupPoint))
	out.PackageType = first(in, func(r *ShipmentRequest) *PackageType { return r.PackageType },
		d.PackageType, lo.ToPtr(fallbackPackageType))
	out.PackageWeight = first(in, func(r *ShipmentRequest) *float64 { return r.PackageWeight },
		d.PackageWeight, lo.ToPtr(fallbackPackageWeight))
	out.Service = first(in, func(r *ShipmentRequest) *string { return r.Service },
		d.Service, lo.ToPtr(fallbackService))
	out.AwbPayment = first(in, func(r *ShipmentRequest) *AwbPayment { return r.AwbPayment },
		d.AwbPayment, lo.ToPtr(fallbackAwbPayment))
	out.InsuredValue = first(in, func(r *ShipmentRequest) *float64 { return r.InsuredValue },
		d.InsuredValue, lo.ToPtr(fallbackInsuredValue))
	out.ThirdPartyPickup = first(in, func(r *ShipmentRequest) *int { return r.ThirdPartyPickup },
		d.ThirdPartyPickup, lo.ToPtr(fallbackThirdPartyPickup))
	out.CashOnDelivery = first(in, func(r *ShipmentRequest) *float64 { return r.CashOnDelivery },
		d.CashOnDelivery, lo.ToPtr(fallbackCashOnDelivery))
	out.Currency = first(in, func(r *ShipmentRequest) *string { return r.Currency },
		d.Currency)

	return &out
}

// Clone returns a copy of d that shares no pointers with it.
func (d DefaultShipmentData) Clone() DefaultShipmentData {
	return DefaultShipmentData{
		PickupPoint:      clonePtr(d.PickupPoint),
		PackageType:      clonePtr(d.PackageType),
		PackageWeight:    clonePtr(d.PackageWeight),
		Service:          clonePtr(d.Service),
		AwbPayment:       clonePtr(d.AwbPayment),
		InsuredValue:     clonePtr(d.InsuredValue),
		ThirdPartyPickup: clonePtr(d.ThirdPartyPickup),
		CashOnDelivery:   clonePtr(d.CashOnDelivery),
		Currency:         clonePtr(d.Currency),
	}
}

// first returns a copy of the request's own value if set, else of the first
// non-nil fallback. The payload never aliases the client's defaults.
func first[T any](in *ShipmentRequest, get func(*ShipmentRequest) *T, fallbacks ...*T) *T {
	var own *T
	if in != nil {
		own = get(in)
	}
	v, _ := lo.Coalesce(append([]*T{own}, fallbacks...)...)
	return clonePtr(v)
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	return lo.ToPtr(*v)
}
