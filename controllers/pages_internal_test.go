package controllers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"rentkit/models"
)

func TestBookState(t *testing.T) {
	owner := &models.User{ID: "o"}
	renter := &models.User{ID: "r"}
	e := &models.Equipment{OwnerID: "o", Availability: true}
	off := &models.Equipment{OwnerID: "o"}

	require.Equal(t, BookState{Label: LabelSignIn}, bookState(nil, e, true, nil))
	require.Equal(t, BookState{Label: LabelOwn}, bookState(owner, e, true, nil))
	require.Equal(t, BookState{Label: LabelBook}, bookState(renter, e, false, nil))
	require.Equal(t, BookState{Label: LabelBook}, bookState(renter, e, true, errors.New("bad dates")))
	require.Equal(t, BookState{Label: LabelBook}, bookState(renter, off, true, nil))
	require.Equal(t, BookState{CanBook: true, Label: LabelBook}, bookState(renter, e, true, nil))
}

func TestStatusFor(t *testing.T) {
	require.Equal(t, 403, statusFor(errOwnEquipment))
	require.Equal(t, 409, statusFor(errUnavailable))
	require.Equal(t, 500, statusFor(errors.New("boom")))
}
