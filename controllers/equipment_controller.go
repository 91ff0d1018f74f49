package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rentkit/app"
	"rentkit/db"
	"rentkit/listing"
	"rentkit/models"
)

// GET /api/equipment?owner_id=&available=true&sort=-created_date&limit=
func (s *Srv) ListEquipment(c *gin.Context) {
	f := db.EquipmentFilter{
		OwnerID:       c.Query("owner_id"),
		AvailableOnly: c.Query("available") == "true",
	}
	items, err := s.Repo.ListEquipment(c.Request.Context(), f, listOptions(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"equipment": items})
}

// GET /api/equipment/:id
func (s *Srv) GetEquipment(c *gin.Context) {
	e, err := s.Repo.FindEquipmentByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"equipment": e})
}

// POST /api/equipment
func (s *Srv) CreateEquipment(c *gin.Context) {
	var f listing.Form
	if err := c.ShouldBindJSON(&f); err != nil {
		badRequest(c, err)
		return
	}
	if err := f.Validate(); err != nil {
		fail(c, err)
		return
	}
	e := f.Equipment(me(c).ID)
	if err := s.Repo.CreateEquipment(c.Request.Context(), &e); err != nil {
		fail(c, err)
		return
	}
	s.Log.WithField("equipment", e.ID).WithField("owner", e.OwnerID).Info("listing created")
	c.JSON(http.StatusCreated, app.H{"equipment": e})
}

// checkListing re-validates a patched listing with the creation rules.
func checkListing(e *models.Equipment) error {
	f := listing.FromEquipment(*e)
	return f.Validate()
}

// PATCH /api/equipment/:id
func (s *Srv) UpdateEquipment(c *gin.Context) {
	var p db.EquipmentPatch
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	e, err := s.Repo.UpdateEquipment(c.Request.Context(), c.Param("id"), me(c).ID, p, checkListing)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"equipment": e})
}

// POST /api/equipment/:id/toggle
func (s *Srv) ToggleAvailability(c *gin.Context) {
	e, err := s.Repo.ToggleAvailability(c.Request.Context(), c.Param("id"), me(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"equipment": e})
}
