// db/repo_equipment.go
package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rentkit/models"
)

var ErrNotOwner = errors.New("not the owner of this equipment")

var equipmentSorts = map[string]string{
	"created_date":  "created_date",
	"price_per_day": "price_per_day",
	"name":          "name",
}

func (r *Repo) CreateEquipment(ctx context.Context, e *models.Equipment) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return r.DB.WithContext(ctx).Create(e).Error
}

func (r *Repo) FindEquipmentByID(ctx context.Context, id string) (*models.Equipment, error) {
	if badID(id) {
		return nil, ErrNotFound
	}
	var e models.Equipment
	if err := r.DB.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

// EquipmentFilter narrows a listing query; zero values match everything.
type EquipmentFilter struct {
	OwnerID       string
	AvailableOnly bool
}

func (r *Repo) ListEquipment(ctx context.Context, f EquipmentFilter, opt ListOptions) ([]models.Equipment, error) {
	if f.OwnerID != "" && badID(f.OwnerID) {
		return []models.Equipment{}, nil
	}
	tx := r.DB.WithContext(ctx).Model(&models.Equipment{})
	if f.OwnerID != "" {
		tx = tx.Where("owner_id = ?", f.OwnerID)
	}
	if f.AvailableOnly {
		tx = tx.Where("availability = ?", true)
	}
	tx, err := opt.apply(tx, equipmentSorts, "created_date DESC")
	if err != nil {
		return nil, err
	}
	var items []models.Equipment
	if err := tx.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// EquipmentPatch is a partial update; nil fields are left alone.
type EquipmentPatch struct {
	Name            *string           `json:"name"`
	Description     *string           `json:"description"`
	Brand           *string           `json:"brand"`
	Model           *string           `json:"model"`
	Category        *string           `json:"category"`
	Condition       *models.Condition `json:"condition"`
	PricePerDay     *float64          `json:"price_per_day"`
	DepositRequired *float64          `json:"deposit_required"`
	MinRentalDays   *int              `json:"min_rental_days"`
	MaxRentalDays   *int              `json:"max_rental_days"`
	Location        *string           `json:"location"`
	Postcode        *string           `json:"postcode"`
	Images          *[]string         `json:"images"`
	Availability    *bool             `json:"availability"`
}

func (p EquipmentPatch) apply(e *models.Equipment) {
	set(&e.Name, p.Name)
	set(&e.Description, p.Description)
	set(&e.Brand, p.Brand)
	set(&e.Model, p.Model)
	set(&e.Category, p.Category)
	set(&e.Condition, p.Condition)
	set(&e.PricePerDay, p.PricePerDay)
	set(&e.DepositRequired, p.DepositRequired)
	set(&e.MinRentalDays, p.MinRentalDays)
	set(&e.MaxRentalDays, p.MaxRentalDays)
	set(&e.Location, p.Location)
	set(&e.Postcode, p.Postcode)
	set(&e.Images, p.Images)
	set(&e.Availability, p.Availability)
}

// UpdateEquipment applies p when ownerID owns the listing. check may reject the patched record.
func (r *Repo) UpdateEquipment(ctx context.Context, id, ownerID string, p EquipmentPatch, check func(*models.Equipment) error) (*models.Equipment, error) {
	if badID(id) {
		return nil, ErrNotFound
	}
	var e models.Equipment
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&e, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		if e.OwnerID != ownerID {
			return ErrNotOwner
		}
		p.apply(&e)
		if check != nil {
			if err := check(&e); err != nil {
				return err
			}
		}
		return tx.Save(&e).Error
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ToggleAvailability flips the listing's availability flag.
func (r *Repo) ToggleAvailability(ctx context.Context, id, ownerID string) (*models.Equipment, error) {
	if badID(id) {
		return nil, ErrNotFound
	}
	var e models.Equipment
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&e, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		if e.OwnerID != ownerID {
			return ErrNotOwner
		}
		e.Availability = !e.Availability
		return tx.Model(&models.Equipment{}).
			Where("id = ?", e.ID).
			Update("availability", e.Availability).Error
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// EquipmentByID loads the given listings keyed by id. Unknown ids are skipped.
func (r *Repo) EquipmentByID(ctx context.Context, ids []string) (map[string]models.Equipment, error) {
	out := make(map[string]models.Equipment, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var items []models.Equipment
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	for _, e := range items {
		out[e.ID] = e
	}
	return out, nil
}
