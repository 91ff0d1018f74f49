// controllers/pages_controller.go
package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"rentkit/app"
	"rentkit/catalog"
	"rentkit/dashboard"
	"rentkit/db"
	"rentkit/listing"
	"rentkit/models"
	"rentkit/pages"
	"rentkit/pricing"
)

const (
	LabelSignIn = "Sign In to Book"
	LabelOwn    = "You own this equipment"
	LabelBook   = "Book Now"

	featuredCount = 6
	recentCount   = 3
)

// GET /api/pages/routes
func (s *Srv) RouteTable(c *gin.Context) {
	c.JSON(http.StatusOK, app.H{"routes": s.Pages.Paths()})
}

// GET /api/pages/home
func (s *Srv) HomePage(c *gin.Context) {
	items, err := s.Repo.ListEquipment(c.Request.Context(),
		db.EquipmentFilter{}, db.ListOptions{Sort: "-created_date", Limit: featuredCount})
	if err != nil {
		fail(c, err)
		return
	}
	u, _ := app.CurrentUser(c)
	c.JSON(http.StatusOK, app.H{
		"user":       u,
		"featured":   items,
		"categories": models.Categories,
		"browse_url": s.Pages.URL(pages.Browse),
	})
}

// GET /api/pages/browse?q=&location=&category=&price=&sort=
func (s *Srv) BrowsePage(c *gin.Context) {
	var q catalog.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	all, err := s.Repo.ListEquipment(c.Request.Context(), db.EquipmentFilter{}, db.ListOptions{Sort: "-created_date"})
	if err != nil {
		fail(c, err)
		return
	}
	items, err := catalog.Browse(all, q)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{
		"equipment":        items,
		"count":            len(items),
		"query":            q,
		"category_options": catalog.CategoryOptions,
		"price_options":    catalog.PriceOptions,
		"sort_options":     catalog.SortOptions,
	})
}

// BookState is the booking sidebar's button.
type BookState struct {
	CanBook bool   `json:"can_book"`
	Label   string `json:"book_label"`
}

// bookState follows the sidebar rules: owners and signed-out users cannot
// book, and a quote has to be valid when dates were given.
func bookState(u *models.User, e *models.Equipment, haveDates bool, quoteErr error) BookState {
	switch {
	case u == nil:
		return BookState{Label: LabelSignIn}
	case u.ID == e.OwnerID:
		return BookState{Label: LabelOwn}
	}
	return BookState{CanBook: e.Availability && haveDates && quoteErr == nil, Label: LabelBook}
}

// GET /api/pages/equipment?id=&start=&end=
func (s *Srv) EquipmentPage(c *gin.Context) {
	ctx := c.Request.Context()
	notFound := func() {
		c.JSON(http.StatusNotFound, app.H{"error": "equipment not found", "redirect": s.Pages.URL(pages.Browse)})
	}
	id := c.Query("id")
	if id == "" {
		notFound()
		return
	}
	e, err := s.Repo.FindEquipmentByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		notFound()
		return
	}
	if err != nil {
		fail(c, err)
		return
	}

	var owner *models.Contact
	if o, err := s.Repo.FindUserByID(ctx, e.OwnerID); err == nil {
		ct := o.Contact()
		owner = &ct
	}
	reviews, err := s.Repo.ListReviews(ctx, e.ID, db.ListOptions{})
	if err != nil {
		fail(c, err)
		return
	}

	u, _ := app.CurrentUser(c)
	start, end := c.Query("start"), c.Query("end")
	haveDates := start != "" && end != ""
	resp := app.H{
		"equipment":      e,
		"owner":          owner,
		"reviews":        reviews,
		"average_rating": db.AverageRating(reviews),
		"user":           u,
	}

	var qerr error
	if haveDates {
		uid := ""
		if u != nil {
			uid = u.ID
		}
		var q pricing.Quote
		q, qerr = s.quote(e, uid, start, end)
		if qerr == nil {
			resp["quote"] = q
		} else {
			resp["quote_error"] = qerr.Error()
		}
	}
	st := bookState(u, e, haveDates, qerr)
	resp["can_book"], resp["book_label"] = st.CanBook, st.Label
	c.JSON(http.StatusOK, resp)
}

// GET /api/pages/dashboard
func (s *Srv) DashboardPage(c *gin.Context) {
	ctx := c.Request.Context()
	u := me(c)

	bookings, err := s.Repo.ListBookings(ctx, db.BookingFilter{Party: u.ID}, db.ListOptions{Sort: "-created_date"})
	if err != nil {
		fail(c, err)
		return
	}
	renting, owning := dashboard.Split(u.ID, bookings)

	mine := []models.Equipment{}
	if u.UserType.CanList() {
		mine, err = s.Repo.ListEquipment(ctx, db.EquipmentFilter{OwnerID: u.ID}, db.ListOptions{Sort: "-created_date"})
		if err != nil {
			fail(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, app.H{
		"user":            u,
		"stats":           dashboard.Compute(renting, owning, mine),
		"recent_rentals":  nonNil(dashboard.Head(renting, recentCount)),
		"recent_bookings": nonNil(dashboard.Head(owning, recentCount)),
		"my_equipment":    dashboard.Head(mine, recentCount),
		"can_list":        u.UserType.CanList(),
	})
}

func nonNil(bs []models.Booking) []models.Booking {
	if bs == nil {
		return []models.Booking{}
	}
	return bs
}

// BookingView is a renter booking with what the My Bookings page shows next to it.
type BookingView struct {
	models.Booking
	StatusDescription string            `json:"status_description"`
	Equipment         *models.Equipment `json:"equipment"`
	Owner             *models.Contact   `json:"owner"`
}

func (s *Srv) enrich(ctx context.Context, bs []models.Booking) ([]BookingView, error) {
	eqIDs := make([]string, 0, len(bs))
	ownerIDs := make([]string, 0, len(bs))
	for _, b := range bs {
		eqIDs = append(eqIDs, b.EquipmentID)
		ownerIDs = append(ownerIDs, b.OwnerID)
	}
	eqs, err := s.Repo.EquipmentByID(ctx, eqIDs)
	if err != nil {
		return nil, err
	}
	owners, err := s.Repo.UsersByID(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}
	out := make([]BookingView, 0, len(bs))
	for _, b := range bs {
		v := BookingView{Booking: b, StatusDescription: b.Status.Description()}
		if e, ok := eqs[b.EquipmentID]; ok {
			v.Equipment = &e
		}
		if o, ok := owners[b.OwnerID]; ok {
			ct := o.Contact()
			v.Owner = &ct
		}
		out = append(out, v)
	}
	return out, nil
}

// GET /api/pages/my-bookings?tab=all|upcoming|current|past
func (s *Srv) MyBookingsPage(c *gin.Context) {
	tab, err := dashboard.ParseTab(c.DefaultQuery("tab", string(dashboard.TabAll)))
	if err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	bs, err := s.Repo.ListBookings(ctx, db.BookingFilter{RenterID: me(c).ID}, db.ListOptions{Sort: "-created_date"})
	if err != nil {
		fail(c, err)
		return
	}
	views, err := s.enrich(ctx, dashboard.ByTab(bs, tab))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{
		"tab":      tab,
		"counts":   dashboard.Counts(bs),
		"bookings": views,
	})
}

// GET /api/pages/my-listings (owners only)
func (s *Srv) MyListingsPage(c *gin.Context) {
	ctx := c.Request.Context()
	uid := me(c).ID
	items, err := s.Repo.ListEquipment(ctx, db.EquipmentFilter{OwnerID: uid}, db.ListOptions{Sort: "-created_date"})
	if err != nil {
		fail(c, err)
		return
	}
	bs, err := s.Repo.ListBookings(ctx, db.BookingFilter{OwnerID: uid}, db.ListOptions{Sort: "-created_date"})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{
		"listings":           dashboard.Summaries(items, bs),
		"list_equipment_url": s.Pages.URL(pages.ListEquipment),
	})
}

// GET /api/pages/list-equipment
func (s *Srv) ListEquipmentPage(c *gin.Context) {
	c.JSON(http.StatusOK, app.H{
		"form":       listing.Defaults(me(c)),
		"categories": models.Categories,
		"conditions": models.Conditions,
		"max_images": listing.MaxImages,
	})
}

// GET /api/pages/profile
func (s *Srv) ProfilePage(c *gin.Context) {
	u := me(c)
	c.JSON(http.StatusOK, app.H{
		"user": u,
		"form": db.ProfilePatch{
			FullName:     &u.FullName,
			UserType:     &u.UserType,
			Location:     &u.Location,
			PhoneNumber:  &u.PhoneNumber,
			Bio:          &u.Bio,
			ProfileImage: &u.ProfileImage,
		},
		"user_types": models.UserTypes,
	})
}

// GET /api/pages/how-it-works
func (s *Srv) HowItWorksPage(c *gin.Context) {
	c.JSON(http.StatusOK, pages.HowItWorksSteps)
}
