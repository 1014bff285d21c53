package pricing

import (
	"math"
	"time"

	"github.com/stayvia/booking/config"
	"github.com/stayvia/booking/utils"
)

// FeePolicy carries the flat fees applied on top of the nightly subtotal.
// Values come from configuration, not business law.
type FeePolicy struct {
	ServiceFee  float64
	DeliveryFee float64
}

// LoadFeePolicy reads the fee configuration from the environment.
func LoadFeePolicy() FeePolicy {
	return FeePolicy{
		ServiceFee:  config.GetEnvFloat("SERVICE_FEE", 0),
		DeliveryFee: config.GetEnvFloat("DELIVERY_FEE", 1000),
	}
}

// Discount describes the promo rule relevant to pricing. Amount takes
// precedence over Percent when both are set.
type Discount struct {
	Percent float64
	Amount  float64
}

// Quote is the price breakdown for a prospective booking.
type Quote struct {
	Subtotal    float64 `json:"subtotal"`
	ServiceFee  float64 `json:"serviceFee"`
	DeliveryFee float64 `json:"deliveryFee"`
	Discount    float64 `json:"discount"`
	Total       float64 `json:"total"`
}

// Nights returns the number of nights between check-in and check-out,
// rounding partial days up. A stay shorter than one night is invalid.
func Nights(checkIn, checkOut time.Time) (int, error) {
	nights := int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
	if nights < 1 {
		return 0, utils.BadRequest(utils.CodeInvalidDateRange, "Check-out must be after check-in")
	}
	return nights, nil
}

// ApplyDiscount computes the discount against the room subtotal only; fees
// are never part of the discount base. A fixed amount is clamped to the
// subtotal so the discount can never exceed what the rooms cost.
func ApplyDiscount(subtotal float64, d Discount) float64 {
	if d.Amount > 0 {
		return math.Min(d.Amount, subtotal)
	}
	if d.Percent > 0 {
		return subtotal * d.Percent / 100
	}
	return 0
}

// Compute builds the full price breakdown. The total is floored at zero.
func Compute(nights int, nightlyPrice float64, fees FeePolicy, promo *Discount) Quote {
	subtotal := nightlyPrice * float64(nights)

	var discount float64
	if promo != nil {
		discount = ApplyDiscount(subtotal, *promo)
	}

	total := subtotal + fees.ServiceFee + fees.DeliveryFee - discount
	if total < 0 {
		total = 0
	}

	return Quote{
		Subtotal:    subtotal,
		ServiceFee:  fees.ServiceFee,
		DeliveryFee: fees.DeliveryFee,
		Discount:    discount,
		Total:       total,
	}
}
