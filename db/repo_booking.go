// db/repo_booking.go
package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rentkit/models"
)

var (
	ErrForbidden     = errors.New("not a party to this booking")
	ErrInvalidStatus = errors.New("invalid booking status")
	ErrNotCancelable = errors.New("booking can no longer be cancelled by the renter")
)

var bookingSorts = map[string]string{
	"created_date": "created_date",
	"start_date":   "start_date",
	"total_cost":   "total_cost",
}

func (r *Repo) CreateBooking(ctx context.Context, b *models.Booking) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = models.StatusPending
	}
	return r.DB.WithContext(ctx).Create(b).Error
}

func (r *Repo) FindBookingByID(ctx context.Context, id string) (*models.Booking, error) {
	if badID(id) {
		return nil, ErrNotFound
	}
	var b models.Booking
	if err := r.DB.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

// BookingFilter narrows a booking query. Party matches renter or owner.
type BookingFilter struct {
	RenterID    string
	OwnerID     string
	Party       string
	EquipmentID string
	Status      models.BookingStatus
}

func (r *Repo) ListBookings(ctx context.Context, f BookingFilter, opt ListOptions) ([]models.Booking, error) {
	tx := r.DB.WithContext(ctx).Model(&models.Booking{})
	if f.RenterID != "" {
		tx = tx.Where("renter_id = ?", f.RenterID)
	}
	if f.OwnerID != "" {
		tx = tx.Where("owner_id = ?", f.OwnerID)
	}
	if f.Party != "" {
		tx = tx.Where("(renter_id = ? OR owner_id = ?)", f.Party, f.Party)
	}
	if f.EquipmentID != "" {
		if badID(f.EquipmentID) {
			return []models.Booking{}, nil
		}
		tx = tx.Where("equipment_id = ?", f.EquipmentID)
	}
	if f.Status != "" {
		tx = tx.Where("status = ?", f.Status)
	}
	tx, err := opt.apply(tx, bookingSorts, "created_date DESC")
	if err != nil {
		return nil, err
	}
	var bs []models.Booking
	if err := tx.Find(&bs).Error; err != nil {
		return nil, err
	}
	return bs, nil
}

// SetBookingStatus changes status on behalf of actorID.
// The owner may set any status; the renter may only cancel while pending or confirmed.
func (r *Repo) SetBookingStatus(ctx context.Context, id, actorID string, status models.BookingStatus) (*models.Booking, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if badID(id) {
		return nil, ErrNotFound
	}
	var b models.Booking
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&b, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		switch actorID {
		case b.OwnerID:
		case b.RenterID:
			if status != models.StatusCancelled {
				return ErrForbidden
			}
			if b.Status != models.StatusPending && b.Status != models.StatusConfirmed {
				return ErrNotCancelable
			}
		default:
			return ErrForbidden
		}
		// 幂等：状态未变直接返回
		if b.Status == status {
			return nil
		}
		b.Status = status
		return tx.Model(&models.Booking{}).
			Where("id = ?", b.ID).
			Update("status", status).Error
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}
