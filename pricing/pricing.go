// Package pricing computes rental quotes for a date range.
package pricing

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// DateLayout 与前端 format(date, 'yyyy-MM-dd') 保持一致
const DateLayout = "2006-01-02"

// FeeRate is the platform's share of the rental subtotal.
const FeeRate = 0.1

var (
	ErrMissingDates   = errors.New("please select rental dates")
	ErrEndBeforeStart = errors.New("end date is before start date")
	ErrStartInPast    = errors.New("start date is in the past")
	ErrBadRate        = errors.New("daily rate must be a positive amount in pence")
	ErrInvalidDate    = errors.New("dates must be yyyy-MM-dd")
)

type Quote struct {
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	TotalDays     int     `json:"total_days"`
	DailyRate     float64 `json:"daily_rate"`
	Subtotal      float64 `json:"subtotal"`
	PlatformFee   float64 `json:"platform_fee"`
	TotalCost     float64 `json:"total_cost"`
	OwnerEarnings float64 `json:"owner_earnings"`

	BelowMinDays bool `json:"below_min_days,omitempty"`
	AboveMaxDays bool `json:"above_max_days,omitempty"`
}

// Round2 rounds to pence.
func Round2(v float64) float64 { return math.Round(v*100) / 100 }

// WholePence reports whether v has no fraction of a penny.
func WholePence(v float64) bool { return math.Abs(v-Round2(v)) < 1e-9 }

// ParseDate parses a yyyy-MM-dd calendar day in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// Day truncates t to its calendar day in UTC, keeping t's wall-clock date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const secondsPerDay = 24 * 60 * 60

// dayNumber counts calendar days since the Unix epoch.
func dayNumber(t time.Time) int64 { return Day(t).Unix() / secondsPerDay }

// TotalDays is the inclusive number of calendar days between start and end.
// It works on day numbers so ranges longer than a time.Duration stay exact.
func TotalDays(start, end time.Time) int {
	return int(dayNumber(end)-dayNumber(start)) + 1
}

// Compute prices a rental of days at rate. rate must be whole pence, so the
// subtotal is exact and Round2 only clears float noise.
func Compute(days int, rate float64) Quote {
	subtotal := Round2(float64(days) * rate)
	fee := Round2(subtotal * FeeRate)
	return Quote{
		TotalDays:     days,
		DailyRate:     rate,
		Subtotal:      subtotal,
		PlatformFee:   fee,
		TotalCost:     Round2(subtotal + fee),
		OwnerEarnings: Round2(subtotal - fee),
	}
}

// Limits holds the listing's advertised rental length bounds; zero means unbounded.
type Limits struct {
	MinDays int
	MaxDays int
}

// Request is a booking date range as submitted by a renter.
type Request struct {
	Start string
	End   string
	Today time.Time
}

// QuoteFor validates the range and prices it.
func QuoteFor(req Request, rate float64, lim Limits) (Quote, error) {
	if req.Start == "" || req.End == "" {
		return Quote{}, ErrMissingDates
	}
	if rate <= 0 || !WholePence(rate) {
		return Quote{}, ErrBadRate
	}
	start, err := ParseDate(req.Start)
	if err != nil {
		return Quote{}, err
	}
	end, err := ParseDate(req.End)
	if err != nil {
		return Quote{}, err
	}
	if end.Before(start) {
		return Quote{}, ErrEndBeforeStart
	}
	if !req.Today.IsZero() && start.Before(Day(req.Today)) {
		return Quote{}, ErrStartInPast
	}

	q := Compute(TotalDays(start, end), rate)
	q.StartDate = start.Format(DateLayout)
	q.EndDate = end.Format(DateLayout)
	if lim.MinDays > 0 && q.TotalDays < lim.MinDays {
		q.BelowMinDays = true
	}
	if lim.MaxDays > 0 && q.TotalDays > lim.MaxDays {
		q.AboveMaxDays = true
	}
	return q, nil
}
