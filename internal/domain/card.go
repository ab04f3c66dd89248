package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Card catalog
// ============================================================

// Category is a spending category a reward rule applies to.
type Category string

const (
	CategoryShopping    Category = "shopping"
	CategoryGroceries   Category = "groceries"
	CategoryMemberships Category = "memberships"
)

// CardProfile is one entry of the card catalog. Profiles are read-only once the
// catalog that owns them is built.
type CardProfile struct {
	Name          string                  `json:"name" yaml:"name" validate:"required"`
	BillingDay    int                     `json:"billing_day" yaml:"billing_day" validate:"min=1,max=28"`
	DueOffsetDays int                     `json:"due_offset_days" yaml:"due_offset_days" validate:"min=0"`
	CreditLimit   decimal.Decimal         `json:"credit_limit" yaml:"credit_limit" validate:"gt=0"`
	Rewards       map[Category]RewardRule `json:"rewards" yaml:"rewards" validate:"required,min=1,dive"`
	Artwork       string                  `json:"artwork,omitempty" yaml:"artwork,omitempty"`
	ActiveFrom    *time.Time              `json:"active_from,omitempty" yaml:"active_from,omitempty"`
	ActiveUntil   *time.Time              `json:"active_until,omitempty" yaml:"active_until,omitempty"`
}

// ActiveOn reports whether the card exists on the given date.
// Both bounds are inclusive; a nil bound is open.
func (c CardProfile) ActiveOn(d time.Time) bool {
	d = DateOf(d)
	if c.ActiveFrom != nil && d.Before(DateOf(*c.ActiveFrom)) {
		return false
	}
	if c.ActiveUntil != nil && d.After(DateOf(*c.ActiveUntil)) {
		return false
	}
	return true
}

// ============================================================
// Billing window
// ============================================================

// BillingWindow is the statement cycle a reference date falls in.
type BillingWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Due   time.Time `json:"due"`
}

// Contains reports whether d lies in [Start, End]. The end day is inclusive, so
// the last day of a cycle is also the first day of the next one.
func (w BillingWindow) Contains(d time.Time) bool {
	d = DateOf(d)
	return !d.Before(w.Start) && !d.After(w.End)
}

// DaysUntilDue returns whole days from d to the due date. Negative when the due
// date precedes d.
func (w BillingWindow) DaysUntilDue(d time.Time) int {
	return int(w.Due.Sub(DateOf(d)) / (24 * time.Hour))
}

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// LabelLayout is the short display format used for window labels ("Jul 22").
const LabelLayout = "Jan 02"

// DateOf truncates t to midnight UTC of its calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, &ErrInvalidInput{Field: "planned_date", Message: "expected YYYY-MM-DD"}
	}
	return t, nil
}

// ============================================================
// Recommendation
// ============================================================

// RecommendRequest is the input of a single recommendation.
type RecommendRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Category    Category        `json:"category"`
	PlannedDate time.Time       `json:"planned_date"`
}

// UtilizationWarningThreshold is the utilization percentage above which a
// candidate carries a warning.
var UtilizationWarningThreshold = decimal.NewFromInt(30)

// Candidate is a card whose billing window covers the planned date.
type Candidate struct {
	CardName           string            `json:"card_name"`
	Reward             RewardDescription `json:"reward"`
	DaysToDue          int               `json:"days_to_due"`
	Window             BillingWindow     `json:"window"`
	StartLabel         string            `json:"start_label"`
	EndLabel           string            `json:"end_label"`
	DueLabel           string            `json:"due_label"`
	ProjectedBalance   decimal.Decimal   `json:"projected_balance"`
	UtilizationPercent float64           `json:"utilization_percent"`
	Warning            string            `json:"warning,omitempty"`
	Artwork            string            `json:"artwork,omitempty"`
}

// HasWarning reports whether the utilization warning is set.
func (c Candidate) HasWarning() bool { return c.Warning != "" }

// Recommendation is the ranked result of a recommendation request.
type Recommendation struct {
	ID          string          `json:"id,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Category    Category        `json:"category"`
	PlannedDate string          `json:"planned_date"`
	Best        Candidate       `json:"best"`
	Ranked      []Candidate     `json:"ranked"`
}

// ============================================================
// Artwork
// ============================================================

// ArtworkPlaceholder is shown when a card has no usable image.
const ArtworkPlaceholder = "📷 Image not found"

// Artwork is the display image of a card. When Path is empty the caller shows
// Placeholder instead.
type Artwork struct {
	CardName    string `json:"card_name"`
	Path        string `json:"-"`
	ContentType string `json:"content_type,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
}

// Available reports whether an image file was found.
func (a *Artwork) Available() bool { return a != nil && a.Path != "" }
