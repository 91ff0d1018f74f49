// models/booking.go
package models

import "time"

const BookingTable = "rk_bookings"

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusActive    BookingStatus = "active"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Open reports whether the booking still ties up the equipment.
func (s BookingStatus) Open() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusActive
}

func (s BookingStatus) Description() string {
	switch s {
	case StatusPending:
		return "Waiting for owner confirmation"
	case StatusConfirmed:
		return "Confirmed and ready for pickup"
	case StatusActive:
		return "Currently rented"
	case StatusCompleted:
		return "Rental completed successfully"
	case StatusCancelled:
		return "Booking was cancelled"
	}
	return ""
}

type PickupMethod string

const (
	PickupCollection PickupMethod = "collection"
	PickupDelivery   PickupMethod = "delivery"
)

func (p PickupMethod) Valid() bool { return p == PickupCollection || p == PickupDelivery }

type Booking struct {
	ID            string        `gorm:"type:uuid;primaryKey" json:"id"`
	EquipmentID   string        `gorm:"type:uuid;index;not null" json:"equipment_id"`
	RenterID      string        `gorm:"type:uuid;index;not null" json:"renter_id"`
	OwnerID       string        `gorm:"type:uuid;index;not null" json:"owner_id"`
	StartDate     string        `gorm:"size:10;not null" json:"start_date"` // yyyy-MM-dd
	EndDate       string        `gorm:"size:10;not null" json:"end_date"`
	TotalDays     int           `gorm:"not null" json:"total_days"`
	DailyRate     float64       `gorm:"not null" json:"daily_rate"`
	Subtotal      float64       `gorm:"not null" json:"subtotal"`
	PlatformFee   float64       `gorm:"not null" json:"platform_fee"`
	TotalCost     float64       `gorm:"not null" json:"total_cost"`
	OwnerEarnings float64       `gorm:"not null" json:"owner_earnings"`
	Status        BookingStatus `gorm:"size:16;index;not null;default:'pending'" json:"status"`
	PickupMethod  PickupMethod  `gorm:"size:16;not null;default:'collection'" json:"pickup_method"`
	Notes         string        `gorm:"type:text" json:"notes"`
	CreatedDate   time.Time     `gorm:"column:created_date;autoCreateTime;index" json:"created_date"`
	UpdatedAt     time.Time     `json:"-"`
}

func (Booking) TableName() string { return BookingTable }
