// Package utilization provides in-process utilization sources.
package utilization

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Zero reports no balance on any card. It is the default source.
type Zero struct{}

// CurrentUtilization implements port.UtilizationSource.
func (Zero) CurrentUtilization(context.Context, string, time.Time) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

// Fixed reports a constant balance per card; unknown cards owe nothing.
// The map must not be modified after construction.
type Fixed map[string]decimal.Decimal

// CurrentUtilization implements port.UtilizationSource.
func (f Fixed) CurrentUtilization(_ context.Context, cardName string, _ time.Time) (decimal.Decimal, error) {
	return f[cardName], nil
}

// ParseBalances builds a Fixed source from "Card Name=1234.50" pairs.
func ParseBalances(pairs []string) (Fixed, error) {
	f := make(Fixed, len(pairs))
	for _, p := range pairs {
		name, amount, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("balance %q: expected NAME=AMOUNT", p)
		}
		d, err := decimal.NewFromString(strings.TrimSpace(amount))
		if err != nil {
			return nil, fmt.Errorf("balance %q: %w", p, err)
		}
		if d.IsNegative() {
			return nil, fmt.Errorf("balance %q: must not be negative", p)
		}
		f[name] = d
	}
	return f, nil
}
