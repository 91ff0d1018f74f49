package db

import (
	"context"

	"github.com/google/uuid"

	"rentkit/models"
)

// DefaultRating is shown for listings nobody has reviewed yet.
const DefaultRating = 4.8

func (r *Repo) CreateReview(ctx context.Context, rv *models.Review) error {
	if rv.ID == "" {
		rv.ID = uuid.NewString()
	}
	return r.DB.WithContext(ctx).Create(rv).Error
}

func (r *Repo) ListReviews(ctx context.Context, equipmentID string, opt ListOptions) ([]models.Review, error) {
	tx := r.DB.WithContext(ctx).Model(&models.Review{})
	if equipmentID != "" {
		if badID(equipmentID) {
			return []models.Review{}, nil
		}
		tx = tx.Where("equipment_id = ?", equipmentID)
	}
	tx, err := opt.apply(tx, map[string]string{"created_date": "created_date", "rating": "rating"}, "created_date DESC")
	if err != nil {
		return nil, err
	}
	var rs []models.Review
	if err := tx.Find(&rs).Error; err != nil {
		return nil, err
	}
	return rs, nil
}

// AverageRating falls back to DefaultRating when there are no reviews.
func AverageRating(rs []models.Review) float64 {
	if len(rs) == 0 {
		return DefaultRating
	}
	sum := 0
	for _, r := range rs {
		sum += r.Rating
	}
	return float64(sum) / float64(len(rs))
}
