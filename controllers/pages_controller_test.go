package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"rentkit/dashboard"
	"rentkit/db"
	"rentkit/models"
)

func TestRouteTableAndHowItWorks(t *testing.T) {
	e := newEnv(t)
	w := e.do(http.MethodGet, "/api/pages/routes", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	routes := decode[struct {
		Routes map[string]string `json:"routes"`
	}](t, w).Routes
	require.Equal(t, "/my-bookings", routes["MyBookings"])
	require.Equal(t, "/", routes["Home"])
	require.Len(t, routes, 9)

	w = e.do(http.MethodGet, "/api/pages/how-it-works", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Keep 90% of the rental fee")
}

func TestHomeAndBrowse(t *testing.T) {
	e := newEnv(t)
	owner, sid := e.signIn("owner@example.com", models.UserOwner)
	for i := 0; i < 5; i++ {
		e.listing(owner.ID, fmt.Sprintf("Spanner %d", i), "hand_tools", float64(5+i), true)
	}
	e.listing(owner.ID, "Cordless Drill", "power_tools", 20, true)
	e.listing(owner.ID, "Concrete Mixer", "construction", 100, true)
	e.listing(owner.ID, "Hidden Drill", "power_tools", 30, false)

	w := e.do(http.MethodGet, "/api/pages/home", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	home := decode[struct {
		User     *models.User       `json:"user"`
		Featured []models.Equipment `json:"featured"`
	}](t, w)
	require.Nil(t, home.User)
	require.Len(t, home.Featured, 6)

	w = e.do(http.MethodGet, "/api/pages/home", nil, sid)
	require.Equal(t, owner.ID, decode[struct {
		User *models.User `json:"user"`
	}](t, w).User.ID)

	browse := func(query string) []string {
		w := e.do(http.MethodGet, "/api/pages/browse?"+query, nil, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var names []string
		for _, it := range decode[struct {
			Equipment []models.Equipment `json:"equipment"`
		}](t, w).Equipment {
			names = append(names, it.Name)
		}
		return names
	}
	require.Len(t, browse(""), 7)
	require.Equal(t, []string{"Cordless Drill"}, browse("q=DRILL"))
	require.Equal(t, []string{"Cordless Drill"}, browse("category=power_tools&price=all"))
	require.Equal(t, []string{"Concrete Mixer"}, browse("price=100%2B"))
	require.Equal(t, []string{"Cordless Drill"}, browse("price=20-50&location=ls1"))

	high := browse("sort=price_high")
	require.Equal(t, "Concrete Mixer", high[0])
	low := browse("sort=price_low")
	require.Equal(t, "Spanner 0", low[0])

	require.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/api/pages/browse?sort=random", nil, "").Code)
	require.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/api/pages/browse?price=cheap", nil, "").Code)
}

type equipmentPage struct {
	Equipment     models.Equipment `json:"equipment"`
	Owner         *models.Contact  `json:"owner"`
	AverageRating float64          `json:"average_rating"`
	CanBook       bool             `json:"can_book"`
	BookLabel     string           `json:"book_label"`
	Quote         *struct {
		TotalCost float64 `json:"total_cost"`
	} `json:"quote"`
	QuoteError string `json:"quote_error"`
}

func TestEquipmentPage(t *testing.T) {
	e := newEnv(t)
	owner, ownerSID := e.signIn("owner@example.com", models.UserOwner)
	_, renterSID := e.signIn("renter@example.com", models.UserRenter)
	eq := e.listing(owner.ID, "Tile Cutter", "construction", 20, true)

	for _, path := range []string{"/api/pages/equipment", "/api/pages/equipment?id=nope"} {
		w := e.do(http.MethodGet, path, nil, "")
		require.Equal(t, http.StatusNotFound, w.Code)
		require.Equal(t, "/browse", decode[errorBody](t, w).Redirect)
	}

	base := "/api/pages/equipment?id=" + eq.ID
	w := e.do(http.MethodGet, base, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	p := decode[equipmentPage](t, w)
	require.Equal(t, "owner@example.com", p.Owner.Email)
	require.Equal(t, 4.8, p.AverageRating)
	require.False(t, p.CanBook)
	require.Equal(t, "Sign In to Book", p.BookLabel)

	p = decode[equipmentPage](t, e.do(http.MethodGet, base+"&start=2026-10-20&end=2026-10-22", nil, ownerSID))
	require.Equal(t, "You own this equipment", p.BookLabel)
	require.False(t, p.CanBook)

	p = decode[equipmentPage](t, e.do(http.MethodGet, base, nil, renterSID))
	require.Equal(t, "Book Now", p.BookLabel)
	require.False(t, p.CanBook)

	p = decode[equipmentPage](t, e.do(http.MethodGet, base+"&start=2026-10-20&end=2026-10-22", nil, renterSID))
	require.True(t, p.CanBook)
	require.Equal(t, 66.0, p.Quote.TotalCost)

	p = decode[equipmentPage](t, e.do(http.MethodGet, base+"&start=2026-10-22&end=2026-10-20", nil, renterSID))
	require.False(t, p.CanBook)
	require.Nil(t, p.Quote)
	require.NotEmpty(t, p.QuoteError)
}

func TestDashboardAndMyPages(t *testing.T) {
	e := newEnv(t)
	owner, ownerSID := e.signIn("owner@example.com", models.UserOwner)
	_, renterSID := e.signIn("renter@example.com", models.UserRenter)
	drill := e.listing(owner.ID, "Cordless Drill", "power_tools", 20, true)
	e.listing(owner.ID, "Spare Drill", "power_tools", 10, false)

	book := func(start, end string) string {
		w := e.do(http.MethodPost, "/api/bookings", map[string]any{
			"equipment_id": drill.ID, "start_date": start, "end_date": end,
		}, renterSID)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		return decode[bookingResp](t, w).Booking.ID
	}
	status := func(id, s string) {
		w := e.do(http.MethodPatch, "/api/bookings/"+id+"/status", map[string]any{"status": s}, ownerSID)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	done := book("2026-10-20", "2026-10-22")
	status(done, "completed")
	active := book("2026-10-25", "2026-10-25")
	status(active, "active")
	book("2026-11-01", "2026-11-02")

	require.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/pages/dashboard", nil, "").Code)

	type dash struct {
		Stats          dashboard.Stats    `json:"stats"`
		RecentRentals  []models.Booking   `json:"recent_rentals"`
		RecentBookings []models.Booking   `json:"recent_bookings"`
		MyEquipment    []models.Equipment `json:"my_equipment"`
	}
	d := decode[dash](t, e.do(http.MethodGet, "/api/pages/dashboard", nil, ownerSID))
	require.Equal(t, 54.0, d.Stats.TotalEarnings)
	require.Equal(t, 1, d.Stats.ActiveListings)
	require.Len(t, d.RecentBookings, 3)
	require.Empty(t, d.RecentRentals)
	require.Len(t, d.MyEquipment, 2)

	d = decode[dash](t, e.do(http.MethodGet, "/api/pages/dashboard", nil, renterSID))
	require.Equal(t, 66.0, d.Stats.TotalSpent)
	require.Equal(t, 1, d.Stats.CompletedRentals)
	require.Empty(t, d.MyEquipment)

	type myBookings struct {
		Tab      string         `json:"tab"`
		Counts   map[string]int `json:"counts"`
		Bookings []struct {
			ID                string            `json:"id"`
			Status            string            `json:"status"`
			StatusDescription string            `json:"status_description"`
			Equipment         *models.Equipment `json:"equipment"`
			Owner             *models.Contact   `json:"owner"`
		} `json:"bookings"`
	}
	mb := decode[myBookings](t, e.do(http.MethodGet, "/api/pages/my-bookings?tab=upcoming", nil, renterSID))
	require.Equal(t, "upcoming", mb.Tab)
	require.Equal(t, map[string]int{"all": 3, "upcoming": 1, "current": 1, "past": 1}, mb.Counts)
	require.Len(t, mb.Bookings, 1)
	require.Equal(t, "Waiting for owner confirmation", mb.Bookings[0].StatusDescription)
	require.Equal(t, "Cordless Drill", mb.Bookings[0].Equipment.Name)
	require.Equal(t, "owner@example.com", mb.Bookings[0].Owner.Email)

	mb = decode[myBookings](t, e.do(http.MethodGet, "/api/pages/my-bookings?tab=current", nil, renterSID))
	require.Equal(t, active, mb.Bookings[0].ID)
	require.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/api/pages/my-bookings?tab=later", nil, renterSID).Code)

	w := e.do(http.MethodGet, "/api/pages/my-listings", nil, renterSID)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "/dashboard", decode[errorBody](t, w).Redirect)

	w = e.do(http.MethodGet, "/api/pages/my-listings", nil, ownerSID)
	require.Equal(t, http.StatusOK, w.Code)
	listings := decode[struct {
		Listings []dashboard.ListingSummary `json:"listings"`
	}](t, w).Listings
	require.Len(t, listings, 2)
	for _, l := range listings {
		if l.Equipment.ID != drill.ID {
			require.Zero(t, l.TotalBookings)
			continue
		}
		require.Equal(t, 3, l.TotalBookings)
		require.Equal(t, 2, l.ActiveBookings)
		require.Equal(t, 54.0, l.Earnings)
		require.Len(t, l.Recent, 2)
	}
}

func TestFormPages(t *testing.T) {
	e := newEnv(t)
	u, sid := e.signIn("owner@example.com", models.UserOwner)
	_, err := e.app.Repo.UpdateProfile(t.Context(), u.ID, profileLocation("Derby"))
	require.NoError(t, err)

	w := e.do(http.MethodGet, "/api/pages/list-equipment", nil, sid)
	require.Equal(t, http.StatusOK, w.Code)
	form := decode[struct {
		Form struct {
			Location      string `json:"location"`
			Condition     string `json:"condition"`
			MinRentalDays int    `json:"min_rental_days"`
			MaxRentalDays int    `json:"max_rental_days"`
		} `json:"form"`
		MaxImages int `json:"max_images"`
	}](t, w)
	require.Equal(t, "Derby", form.Form.Location)
	require.Equal(t, "good", form.Form.Condition)
	require.Equal(t, 1, form.Form.MinRentalDays)
	require.Equal(t, 30, form.Form.MaxRentalDays)
	require.Equal(t, 5, form.MaxImages)

	w = e.do(http.MethodGet, "/api/pages/profile", nil, sid)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"location":"Derby"`)
	require.Contains(t, w.Body.String(), "Renter Only")
}

func profileLocation(l string) db.ProfilePatch { return db.ProfilePatch{Location: &l} }
