package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"rentkit/app"
	"rentkit/db"
	"rentkit/models"
	"rentkit/notify"
	"rentkit/pages"
	"rentkit/pricing"
)

var (
	errOwnEquipment = errors.New("you own this equipment")
	errUnavailable  = errors.New("equipment is not available")
	errPickup       = errors.New("pickup_method must be collection or delivery")
)

// quote prices a date range for e on behalf of renterID ("" for anonymous).
func (s *Srv) quote(e *models.Equipment, renterID, start, end string) (pricing.Quote, error) {
	if renterID != "" && renterID == e.OwnerID {
		return pricing.Quote{}, errOwnEquipment
	}
	if !e.Availability {
		return pricing.Quote{}, errUnavailable
	}
	req := pricing.Request{Start: start, End: end, Today: s.Now()}
	return pricing.QuoteFor(req, e.PricePerDay, pricing.Limits{MinDays: e.MinRentalDays, MaxDays: e.MaxRentalDays})
}

// GET /api/equipment/:id/quote?start=2026-10-20&end=2026-10-22
func (s *Srv) Quote(c *gin.Context) {
	e, err := s.Repo.FindEquipmentByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	var uid string
	if u, ok := app.CurrentUser(c); ok {
		uid = u.ID
	}
	q, err := s.quote(e, uid, c.Query("start"), c.Query("end"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"quote": q})
}

type createBookingReq struct {
	EquipmentID  string              `json:"equipment_id" binding:"required"`
	StartDate    string              `json:"start_date"`
	EndDate      string              `json:"end_date"`
	PickupMethod models.PickupMethod `json:"pickup_method"`
	Notes        string              `json:"notes"`
}

// POST /api/bookings
func (s *Srv) CreateBooking(c *gin.Context) {
	var in createBookingReq
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	if in.PickupMethod == "" {
		in.PickupMethod = models.PickupCollection
	}
	if !in.PickupMethod.Valid() {
		fail(c, errPickup)
		return
	}
	ctx := c.Request.Context()
	renter := me(c)

	e, err := s.Repo.FindEquipmentByID(ctx, in.EquipmentID)
	if err != nil {
		fail(c, err)
		return
	}
	q, err := s.quote(e, renter.ID, in.StartDate, in.EndDate)
	if err != nil {
		fail(c, err)
		return
	}

	b := &models.Booking{
		EquipmentID:   e.ID,
		RenterID:      renter.ID,
		OwnerID:       e.OwnerID,
		StartDate:     q.StartDate,
		EndDate:       q.EndDate,
		TotalDays:     q.TotalDays,
		DailyRate:     q.DailyRate,
		Subtotal:      q.Subtotal,
		PlatformFee:   q.PlatformFee,
		TotalCost:     q.TotalCost,
		OwnerEarnings: q.OwnerEarnings,
		Status:        models.StatusPending,
		PickupMethod:  in.PickupMethod,
		Notes:         in.Notes,
	}
	if err := s.Repo.CreateBooking(ctx, b); err != nil {
		fail(c, err)
		return
	}
	s.Log.WithField("booking", b.ID).WithField("equipment", e.ID).Info("booking requested")
	s.notifyOwner(ctx, renter, e, b)

	c.JSON(http.StatusCreated, app.H{"booking": b, "redirect": s.Pages.URL(pages.MyBookings)})
}

// notifyOwner loads the owner now and sends the email in the background.
func (s *Srv) notifyOwner(ctx context.Context, renter *models.User, e *models.Equipment, b *models.Booking) {
	owner, err := s.Repo.FindUserByID(ctx, e.OwnerID)
	if err != nil {
		s.Log.WithError(err).WithField("owner", e.OwnerID).Warn("booking email: owner lookup")
		return
	}
	req := notify.BookingRequest{
		OwnerEmail:    owner.Email,
		OwnerName:     owner.FullName,
		RenterName:    renter.FullName,
		EquipmentName: e.Name,
		StartDate:     b.StartDate,
		EndDate:       b.EndDate,
		TotalDays:     b.TotalDays,
		OwnerEarnings: b.OwnerEarnings,
		Message:       b.Notes,
		Link:          s.Cfg.WebOrigin + s.Pages.URL(pages.Dashboard),
	}
	go s.Mailer.NotifyBookingRequest(req)
}

// GET /api/bookings?role=renter|owner&status=&equipment_id=&sort=&limit=
func (s *Srv) ListBookings(c *gin.Context) {
	uid := me(c).ID
	f := db.BookingFilter{
		EquipmentID: c.Query("equipment_id"),
		Status:      models.BookingStatus(c.Query("status")),
	}
	switch c.Query("role") {
	case "renter":
		f.RenterID = uid
	case "owner":
		f.OwnerID = uid
	case "":
		f.Party = uid
	default:
		c.JSON(http.StatusBadRequest, app.H{"error": "role must be renter or owner"})
		return
	}
	if f.Status != "" && !f.Status.Valid() {
		fail(c, db.ErrInvalidStatus)
		return
	}
	bs, err := s.Repo.ListBookings(c.Request.Context(), f, listOptions(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"bookings": bs})
}

// GET /api/bookings/:id
func (s *Srv) GetBooking(c *gin.Context) {
	b, err := s.Repo.FindBookingByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if uid := me(c).ID; uid != b.RenterID && uid != b.OwnerID {
		// 非当事人一律 404
		fail(c, db.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, app.H{"booking": b})
}

// PATCH /api/bookings/:id/status
func (s *Srv) UpdateBookingStatus(c *gin.Context) {
	var in struct {
		Status models.BookingStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	b, err := s.Repo.SetBookingStatus(c.Request.Context(), c.Param("id"), me(c).ID, in.Status)
	if err != nil {
		fail(c, err)
		return
	}
	s.Log.WithField("booking", b.ID).WithField("status", b.Status).Info("booking status changed")
	c.JSON(http.StatusOK, app.H{"booking": b, "status_description": b.Status.Description()})
}
