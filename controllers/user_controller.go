package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rentkit/app"
	"rentkit/db"
)

// listOptions reads ?sort=-created_date&limit=6.
func listOptions(c *gin.Context) db.ListOptions {
	limit, _ := strconv.Atoi(c.Query("limit"))
	return db.ListOptions{Sort: c.Query("sort"), Limit: limit}
}

// GET /api/users/me
func (s *Srv) Me(c *gin.Context) {
	c.JSON(http.StatusOK, app.H{"user": me(c)})
}

// PUT /api/users/me
func (s *Srv) UpdateMe(c *gin.Context) {
	var p db.ProfilePatch
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	u, err := s.Repo.UpdateProfile(c.Request.Context(), me(c).ID, p)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"user": u})
}

// GET /api/users?sort=&limit=
func (s *Srv) ListUsers(c *gin.Context) {
	users, err := s.Repo.ListUsers(c.Request.Context(), listOptions(c))
	if err != nil {
		fail(c, err)
		return
	}
	contacts := make([]any, 0, len(users))
	for _, u := range users {
		contacts = append(contacts, u.Contact())
	}
	c.JSON(http.StatusOK, app.H{"users": contacts})
}

// GET /api/users/:id
func (s *Srv) GetUser(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid uuid"})
		return
	}
	u, err := s.Repo.FindUserByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"user": u.Contact()})
}
