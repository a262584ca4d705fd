// services/pricing.go
package services

import "errors"

// ErrInvalidDuration is returned for durations outside {30, 45, 60}. It is
// never wrapped into a PaymentError so callers can tell bad input apart from
// provider or database failures.
var ErrInvalidDuration = errors.New("invalid lesson duration")

var singleRates = map[int]float64{
	30: 30,
	45: 45,
	60: 60,
}

var packageRates = map[int]float64{
	30: 110,
	45: 170,
	60: 220,
}

// ResolvePrice maps (duration, isPackage) to the price in dollars.
func ResolvePrice(duration int, isPackage bool) (float64, error) {
	rates := singleRates
	if isPackage {
		rates = packageRates
	}

	amount, ok := rates[duration]
	if !ok {
		return 0, ErrInvalidDuration
	}
	return amount, nil
}
