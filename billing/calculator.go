// Package billing computes the monetary amount owed for a timed appointment.
// All arithmetic is decimal; results are rounded half-up to two places only
// at the edge, so intermediate values carry full precision.
package billing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var sixty = decimal.NewFromInt(60)

// RateCard is the resolved per-modality pricing record.
type RateCard struct {
	HourlyRate            decimal.Decimal
	MinimumCharge         decimal.Decimal
	ThresholdMinutes      int
	ChargeExcessPerMinute bool
}

// Overrides short-circuit the rate card: warranty forces a zero amount,
// manual override prices the whole session from ManualUnitPrice.
type Overrides struct {
	IsWarranty          bool
	ManualPriceOverride bool
	ManualUnitPrice     decimal.Decimal
}

type Result struct {
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	DurationHours decimal.Decimal `json:"duration_hours"`
	Description   string          `json:"description"`
}

// Calculate prices a session of durationMinutes against the rate card.
// Evaluation order: warranty, then manual override, then the
// minimum-charge / threshold / excess ladder. Up to and including the
// threshold only the minimum charge applies; past it the excess is billed
// per minute (prorated) or per whole hour rounded up, per the rate card.
func Calculate(durationMinutes int, rate RateCard, ov Overrides) Result {
	hours := decimal.NewFromInt(int64(durationMinutes)).Div(sixty)

	if ov.IsWarranty {
		return Result{
			UnitPrice:     decimal.Zero.Round(2),
			TotalAmount:   decimal.Zero.Round(2),
			DurationHours: hours.Round(2),
			Description:   fmt.Sprintf("%d min under warranty, no charge", durationMinutes),
		}
	}

	if ov.ManualPriceOverride {
		total := ov.ManualUnitPrice.Mul(hours)
		return Result{
			UnitPrice:     ov.ManualUnitPrice.Round(2),
			TotalAmount:   total.Round(2),
			DurationHours: hours.Round(2),
			Description:   fmt.Sprintf("%d min at manual rate %s/h", durationMinutes, ov.ManualUnitPrice.StringFixed(2)),
		}
	}

	if durationMinutes <= rate.ThresholdMinutes {
		return Result{
			UnitPrice:     rate.HourlyRate.Round(2),
			TotalAmount:   rate.MinimumCharge.Round(2),
			DurationHours: hours.Round(2),
			Description: fmt.Sprintf("%d min within the %d min minimum (%s)",
				durationMinutes, rate.ThresholdMinutes, rate.MinimumCharge.StringFixed(2)),
		}
	}

	excess := durationMinutes - rate.ThresholdMinutes
	var total decimal.Decimal
	var desc string
	if rate.ChargeExcessPerMinute {
		total = rate.MinimumCharge.Add(
			rate.HourlyRate.Mul(decimal.NewFromInt(int64(excess))).Div(sixty))
		desc = fmt.Sprintf("minimum %s + %d min excess at %s/h per minute",
			rate.MinimumCharge.StringFixed(2), excess, rate.HourlyRate.StringFixed(2))
	} else {
		excessHours := int64((excess + 59) / 60)
		total = rate.MinimumCharge.Add(
			rate.HourlyRate.Mul(decimal.NewFromInt(excessHours)))
		desc = fmt.Sprintf("minimum %s + %dh excess (rounded up) at %s/h",
			rate.MinimumCharge.StringFixed(2), excessHours, rate.HourlyRate.StringFixed(2))
	}

	return Result{
		UnitPrice:     rate.HourlyRate.Round(2),
		TotalAmount:   total.Round(2),
		DurationHours: hours.Round(2),
		Description:   desc,
	}
}
