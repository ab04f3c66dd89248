package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ============================================================
// Reward rules
// ============================================================

// RewardKind tags the variant of a RewardRule.
type RewardKind string

const (
	// RewardPoints earns reward points redeemable at a fixed value per point.
	RewardPoints RewardKind = "points"
	// RewardCashback pays a percentage of the amount back.
	RewardCashback RewardKind = "cashback"
)

// Rounding selects how a rule turns exact amounts into displayed values.
// Cards differ here and the difference is visible to users comparing them.
type Rounding string

const (
	RoundHalfEven Rounding = "half_even"
	RoundHalfUp   Rounding = "half_up"
	RoundTruncate Rounding = "truncate"
	// RoundFloatHalfEven multiplies in float64 and rounds the binary result
	// half to even, so 35 * 0.015 lands on 0.53 rather than the exact 0.525
	// tie.
	RoundFloatHalfEven Rounding = "float_half_even"
)

func (r Rounding) apply(d decimal.Decimal, places int32) decimal.Decimal {
	switch r {
	case RoundTruncate:
		return d.Truncate(places)
	case RoundHalfUp:
		return d.Round(places)
	case RoundFloatHalfEven:
		return roundFloat(d.InexactFloat64(), places)
	default:
		return d.RoundBank(places)
	}
}

// mul rounds a*b to places. The float mode multiplies the float64 operands so
// the product carries the same representation error the rounding expects.
func (r Rounding) mul(a, b decimal.Decimal, places int32) decimal.Decimal {
	if r == RoundFloatHalfEven {
		return roundFloat(a.InexactFloat64()*b.InexactFloat64(), places)
	}
	return r.apply(a.Mul(b), places)
}

// roundFloat rounds f to places using its exact binary value, ties to even.
func roundFloat(f float64, places int32) decimal.Decimal {
	d, err := decimal.NewFromString(strconv.FormatFloat(f, 'f', int(places), 64))
	if err != nil {
		return decimal.NewFromFloat(f).RoundBank(places)
	}
	return d
}

// RewardRule is a named reward formula for one card and category.
//
// A points rule earns amount / SpendUnit * PointsPerUnit points worth
// PointValue each; points and value are both rounded to whole units from the
// unrounded points. A cashback rule pays amount * Rate rounded to Places
// decimals.
type RewardRule struct {
	Kind          RewardKind      `json:"kind" yaml:"kind" validate:"required,oneof=points cashback"`
	SpendUnit     decimal.Decimal `json:"spend_unit,omitempty" yaml:"spend_unit,omitempty" validate:"gte=0"`
	PointsPerUnit decimal.Decimal `json:"points_per_unit,omitempty" yaml:"points_per_unit,omitempty" validate:"gte=0"`
	PointValue    decimal.Decimal `json:"point_value,omitempty" yaml:"point_value,omitempty" validate:"gte=0"`
	Rate          decimal.Decimal `json:"rate,omitempty" yaml:"rate,omitempty" validate:"gte=0"`
	Places        int32           `json:"places,omitempty" yaml:"places,omitempty" validate:"min=0,max=4"`
	Rounding      Rounding        `json:"rounding" yaml:"rounding" validate:"required,oneof=half_even half_up truncate float_half_even"`
}

// PointsRule builds a points rule.
func PointsRule(spendUnit, pointsPerUnit, pointValue float64, rounding Rounding) RewardRule {
	return RewardRule{
		Kind:          RewardPoints,
		SpendUnit:     decimal.NewFromFloat(spendUnit),
		PointsPerUnit: decimal.NewFromFloat(pointsPerUnit),
		PointValue:    decimal.NewFromFloat(pointValue),
		Rounding:      rounding,
	}
}

// CashbackRule builds a cashback rule.
func CashbackRule(rate float64, places int32, rounding Rounding) RewardRule {
	return RewardRule{
		Kind:     RewardCashback,
		Rate:     decimal.NewFromFloat(rate),
		Places:   places,
		Rounding: rounding,
	}
}

// Check reports the first variant-specific defect of the rule.
func (r RewardRule) Check() error {
	switch r.Kind {
	case RewardPoints:
		if !r.SpendUnit.IsPositive() {
			return fmt.Errorf("points rule: spend_unit must be positive")
		}
		if !r.PointsPerUnit.IsPositive() {
			return fmt.Errorf("points rule: points_per_unit must be positive")
		}
		if r.PointValue.IsNegative() {
			return fmt.Errorf("points rule: point_value must not be negative")
		}
	case RewardCashback:
		if !r.Rate.IsPositive() {
			return fmt.Errorf("cashback rule: rate must be positive")
		}
	default:
		return fmt.Errorf("unknown reward kind %q", r.Kind)
	}
	return nil
}

// RewardDescription is what a rule earns for an amount.
type RewardDescription struct {
	Text   string          `json:"text"`
	Points int64           `json:"points,omitempty"`
	Value  decimal.Decimal `json:"value"`
}

// Evaluate computes the reward for amount. currency prefixes monetary values.
func (r RewardRule) Evaluate(amount decimal.Decimal, currency string) RewardDescription {
	switch r.Kind {
	case RewardPoints:
		raw := amount.Div(r.SpendUnit).Mul(r.PointsPerUnit)
		if r.Rounding == RoundFloatHalfEven {
			raw = decimal.NewFromFloat(amount.InexactFloat64() / r.SpendUnit.InexactFloat64() * r.PointsPerUnit.InexactFloat64())
		}
		points := r.Rounding.apply(raw, 0)
		value := r.Rounding.mul(raw, r.PointValue, 0)
		return RewardDescription{
			Text:   fmt.Sprintf("%s RP (~%s%s)", points.String(), currency, value.String()),
			Points: points.IntPart(),
			Value:  value,
		}
	case RewardCashback:
		value := r.Rounding.mul(amount, r.Rate, r.Places)
		return RewardDescription{
			Text:  fmt.Sprintf("%s%s cashback", currency, cashString(value)),
			Value: value,
		}
	}
	return RewardDescription{Value: decimal.Zero}
}

// cashString renders a cashback value with at least one fractional digit.
func cashString(d decimal.Decimal) string {
	s := d.String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
