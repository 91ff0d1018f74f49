package models

import "time"

const EquipmentTable = "rk_equipment"

type Condition string

const (
	ConditionExcellent Condition = "excellent"
	ConditionVeryGood  Condition = "very_good"
	ConditionGood      Condition = "good"
	ConditionFair      Condition = "fair"
)

// Option is a value/label pair offered to forms and filters.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var Conditions = []Option{
	{Value: string(ConditionExcellent), Label: "Excellent - Like new"},
	{Value: string(ConditionVeryGood), Label: "Very Good - Minor wear"},
	{Value: string(ConditionGood), Label: "Good - Some wear"},
	{Value: string(ConditionFair), Label: "Fair - Well used"},
}

var Categories = []Option{
	{Value: "power_tools", Label: "Power Tools"},
	{Value: "hand_tools", Label: "Hand Tools"},
	{Value: "garden_tools", Label: "Garden Tools"},
	{Value: "construction", Label: "Construction Equipment"},
	{Value: "automotive", Label: "Automotive Tools"},
	{Value: "cleaning", Label: "Cleaning Equipment"},
	{Value: "ladders_access", Label: "Ladders & Access"},
	{Value: "measuring", Label: "Measuring Tools"},
	{Value: "safety", Label: "Safety Equipment"},
	{Value: "other", Label: "Other"},
}

func KnownCategory(v string) bool { return hasOption(Categories, v) }

func (c Condition) Valid() bool { return hasOption(Conditions, string(c)) }

func hasOption(opts []Option, v string) bool {
	for _, o := range opts {
		if o.Value == v {
			return true
		}
	}
	return false
}

type Equipment struct {
	ID              string    `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID         string    `gorm:"type:uuid;index;not null" json:"owner_id"`
	Name            string    `gorm:"size:200;not null" json:"name"`
	Description     string    `gorm:"type:text;not null" json:"description"`
	Brand           string    `gorm:"size:120" json:"brand"`
	Model           string    `gorm:"size:120" json:"model"`
	Category        string    `gorm:"size:40;index;not null" json:"category"`
	Condition       Condition `gorm:"size:16;not null;default:'good'" json:"condition"`
	PricePerDay     float64   `gorm:"not null" json:"price_per_day"`
	DepositRequired float64   `gorm:"not null;default:0" json:"deposit_required"`
	MinRentalDays   int       `gorm:"not null;default:1" json:"min_rental_days"`
	MaxRentalDays   int       `gorm:"not null;default:30" json:"max_rental_days"`
	Location        string    `gorm:"size:255;not null" json:"location"`
	Postcode        string    `gorm:"size:16" json:"postcode"`
	Images          []string  `gorm:"serializer:json" json:"images"`
	Availability    bool      `gorm:"not null;index" json:"availability"`
	CreatedDate     time.Time `gorm:"column:created_date;autoCreateTime;index" json:"created_date"`
	UpdatedAt       time.Time `json:"-"`
}

func (Equipment) TableName() string { return EquipmentTable }
