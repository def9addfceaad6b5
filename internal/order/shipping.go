package order

import (
	"errors"
	"strings"
)

const (
	ShipStandard = "standard"
	ShipExpress  = "express"
)

var ErrUnknownShipping = errors.New("unknown shipping method")

// Flat GHS rates keyed by method and destination. Greater Accra is cheaper
// than upcountry for both methods.
var shippingRates = map[string]struct{ accra, other float64 }{
	ShipStandard: {accra: 15, other: 25},
	ShipExpress:  {accra: 30, other: 45},
}

// ShippingCost returns the flat rate for a method and destination region.
func ShippingCost(method, region string) (float64, error) {
	rate, ok := shippingRates[method]
	if !ok {
		return 0, ErrUnknownShipping
	}
	if strings.EqualFold(strings.TrimSpace(region), "Greater Accra") {
		return rate.accra, nil
	}
	return rate.other, nil
}
