package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rentkit/app"
)

// POST /api/uploads (multipart field "file")
func (s *Srv) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "missing file"})
		return
	}
	if fh.Size > s.Cfg.Upload.MaxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, app.H{"error": "file too large"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, err)
		return
	}
	defer f.Close()

	res, err := s.Uploads.Upload(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}
