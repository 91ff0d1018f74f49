package models

import "time"

type Review struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	EquipmentID string    `gorm:"type:uuid;index;not null" json:"equipment_id"`
	ReviewerID  string    `gorm:"type:uuid;index" json:"reviewer_id"`
	Rating      int       `gorm:"not null" json:"rating"`
	Comment     string    `gorm:"type:text" json:"comment"`
	CreatedDate time.Time `gorm:"column:created_date;autoCreateTime;index" json:"created_date"`
}

func (Review) TableName() string { return "rk_reviews" }
