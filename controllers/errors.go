package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"rentkit/app"
	"rentkit/db"
	"rentkit/listing"
	"rentkit/pricing"
	"rentkit/session"
	"rentkit/storage"
)

func statusFor(err error) int {
	var verr *listing.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, db.ErrNotOwner), errors.Is(err, db.ErrForbidden), errors.Is(err, errOwnEquipment):
		return http.StatusForbidden
	case errors.Is(err, db.ErrEmailTaken), errors.Is(err, db.ErrNotCancelable), errors.Is(err, errUnavailable):
		return http.StatusConflict
	case errors.Is(err, session.ErrNoSession):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, storage.ErrNotAnImage):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, errPickup),
		errors.Is(err, db.ErrInvalidSort),
		errors.Is(err, db.ErrInvalidStatus),
		errors.Is(err, db.ErrInvalidUserType),
		errors.Is(err, storage.ErrEmptyUpload),
		errors.Is(err, pricing.ErrMissingDates),
		errors.Is(err, pricing.ErrEndBeforeStart),
		errors.Is(err, pricing.ErrStartInPast),
		errors.Is(err, pricing.ErrBadRate),
		errors.Is(err, pricing.ErrInvalidDate):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// fail writes {"error": ...}. Internal errors are logged and hidden.
func fail(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = "internal error"
	}
	var verr *listing.ValidationError
	if errors.As(err, &verr) && verr.Field != "" {
		c.AbortWithStatusJSON(status, app.H{"error": msg, "field": verr.Field})
		return
	}
	c.AbortWithStatusJSON(status, app.H{"error": msg})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, app.H{"error": err.Error()})
}
