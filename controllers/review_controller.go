package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rentkit/app"
	"rentkit/db"
	"rentkit/models"
)

// GET /api/equipment/:id/reviews
func (s *Srv) ListReviews(c *gin.Context) {
	rs, err := s.Repo.ListReviews(c.Request.Context(), c.Param("id"), listOptions(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"reviews": rs, "average_rating": db.AverageRating(rs)})
}

// POST /api/equipment/:id/reviews
func (s *Srv) CreateReview(c *gin.Context) {
	var in struct {
		Rating  int    `json:"rating" binding:"required,min=1,max=5"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	e, err := s.Repo.FindEquipmentByID(ctx, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if e.OwnerID == me(c).ID {
		fail(c, errOwnEquipment)
		return
	}
	rv := &models.Review{EquipmentID: e.ID, ReviewerID: me(c).ID, Rating: in.Rating, Comment: in.Comment}
	if err := s.Repo.CreateReview(ctx, rv); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, app.H{"review": rv})
}
