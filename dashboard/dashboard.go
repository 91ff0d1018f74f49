// Package dashboard derives per-user booking views and totals.
package dashboard

import (
	"fmt"

	"rentkit/models"
)

type Stats struct {
	TotalEarnings    float64 `json:"total_earnings"`
	TotalSpent       float64 `json:"total_spent"`
	ActiveListings   int     `json:"active_listings"`
	CompletedRentals int     `json:"completed_rentals"`
}

// Split partitions bookings into those the user rents and those on the user's equipment.
func Split(userID string, bookings []models.Booking) (renting, owning []models.Booking) {
	for _, b := range bookings {
		if b.RenterID == userID {
			renting = append(renting, b)
		}
		if b.OwnerID == userID {
			owning = append(owning, b)
		}
	}
	return renting, owning
}

// Compute sums completed bookings only.
func Compute(renting, owning []models.Booking, mine []models.Equipment) Stats {
	var s Stats
	for _, b := range owning {
		if b.Status == models.StatusCompleted {
			s.TotalEarnings += b.OwnerEarnings
		}
	}
	for _, b := range renting {
		if b.Status == models.StatusCompleted {
			s.TotalSpent += b.TotalCost
			s.CompletedRentals++
		}
	}
	for _, e := range mine {
		if e.Availability {
			s.ActiveListings++
		}
	}
	return s
}

func Head[T any](xs []T, n int) []T {
	if len(xs) <= n {
		return xs
	}
	return xs[:n]
}

type Tab string

const (
	TabAll      Tab = "all"
	TabUpcoming Tab = "upcoming"
	TabCurrent  Tab = "current"
	TabPast     Tab = "past"
)

var Tabs = []Tab{TabAll, TabUpcoming, TabCurrent, TabPast}

func (t Tab) Includes(s models.BookingStatus) bool {
	switch t {
	case TabUpcoming:
		return s == models.StatusPending || s == models.StatusConfirmed
	case TabCurrent:
		return s == models.StatusActive
	case TabPast:
		return s == models.StatusCompleted || s == models.StatusCancelled
	}
	return true
}

func ParseTab(s string) (Tab, error) {
	if s == "" {
		return TabAll, nil
	}
	for _, t := range Tabs {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tab %q", s)
}

// ByTab filters bookings for one tab.
func ByTab(bs []models.Booking, t Tab) []models.Booking {
	out := make([]models.Booking, 0, len(bs))
	for _, b := range bs {
		if t.Includes(b.Status) {
			out = append(out, b)
		}
	}
	return out
}

// Counts returns the size of every tab.
func Counts(bs []models.Booking) map[Tab]int {
	m := make(map[Tab]int, len(Tabs))
	for _, t := range Tabs {
		m[t] = len(ByTab(bs, t))
	}
	return m
}

type ListingSummary struct {
	Equipment      models.Equipment `json:"equipment"`
	TotalBookings  int              `json:"total_bookings"`
	ActiveBookings int              `json:"active_bookings"`
	Earnings       float64          `json:"earnings"`
	Recent         []models.Booking `json:"recent_bookings"`
}

// Summaries attaches booking stats to each listing. bookings should be newest first.
func Summaries(items []models.Equipment, bookings []models.Booking) []ListingSummary {
	byItem := make(map[string][]models.Booking)
	for _, b := range bookings {
		byItem[b.EquipmentID] = append(byItem[b.EquipmentID], b)
	}
	out := make([]ListingSummary, 0, len(items))
	for _, e := range items {
		bs := byItem[e.ID]
		s := ListingSummary{Equipment: e, TotalBookings: len(bs), Recent: Head(bs, 2)}
		for _, b := range bs {
			if b.Status.Open() {
				s.ActiveBookings++
			}
			if b.Status == models.StatusCompleted {
				s.Earnings += b.OwnerEarnings
			}
		}
		if s.Recent == nil {
			s.Recent = []models.Booking{}
		}
		out = append(out, s)
	}
	return out
}
