// Package listing validates the list-equipment form.
package listing

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"rentkit/models"
	"rentkit/pricing"
)

const (
	MaxImages      = 5
	DefaultMinDays = 1
	DefaultMaxDays = 30
)

const (
	MsgRequired  = "Please fill in all required fields"
	MsgNoImages  = "Please upload at least one image"
	MsgTooMany   = "Maximum 5 images allowed"
	MsgCategory  = "Unknown category"
	MsgCondition = "Unknown condition"
	MsgDays      = "Minimum rental days cannot exceed maximum rental days"
	MsgPrice     = "Price per day must be greater than zero"
	MsgPence     = "Prices cannot have fractions of a penny"
)

// ValidationError carries the message shown next to the form.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"error"`
}

func (e *ValidationError) Error() string { return e.Message }

// Form is the submitted listing.
type Form struct {
	Name            string   `json:"name" validate:"required"`
	Description     string   `json:"description" validate:"required"`
	Category        string   `json:"category" validate:"required,category"`
	PricePerDay     float64  `json:"price_per_day" validate:"required,gt=0,pence"`
	Location        string   `json:"location" validate:"required"`
	Postcode        string   `json:"postcode"`
	Brand           string   `json:"brand"`
	Model           string   `json:"model"`
	Condition       string   `json:"condition" validate:"omitempty,condition"`
	DepositRequired float64  `json:"deposit_required" validate:"gte=0,pence"`
	MinRentalDays   int      `json:"min_rental_days" validate:"gte=0"`
	MaxRentalDays   int      `json:"max_rental_days" validate:"gte=0"`
	Images          []string `json:"images" validate:"min=1,max=5,dive,required"`
	Availability    *bool    `json:"availability"`
}

// Defaults is the blank form, with location prefilled from the profile.
func Defaults(u *models.User) Form {
	f := Form{
		Condition:     string(models.ConditionGood),
		MinRentalDays: DefaultMinDays,
		MaxRentalDays: DefaultMaxDays,
		Images:        []string{},
	}
	if u != nil {
		f.Location = u.Location
	}
	return f
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return models.KnownCategory(fl.Field().String())
	})
	_ = v.RegisterValidation("condition", func(fl validator.FieldLevel) bool {
		return models.Condition(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("pence", func(fl validator.FieldLevel) bool {
		return pricing.WholePence(fl.Field().Float())
	})
	return v
}

func (f *Form) normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)
	f.Location = strings.TrimSpace(f.Location)
	f.Postcode = strings.ToUpper(strings.TrimSpace(f.Postcode))
	if f.Condition == "" {
		f.Condition = string(models.ConditionGood)
	}
	if f.MinRentalDays == 0 {
		f.MinRentalDays = DefaultMinDays
	}
	if f.MaxRentalDays == 0 {
		f.MaxRentalDays = DefaultMaxDays
	}
}

// Validate normalizes f and reports the first problem, in the order the form shows them.
func (f *Form) Validate() error {
	f.normalize()
	err := validate.Struct(f)
	if err == nil {
		if f.MinRentalDays > f.MaxRentalDays {
			return &ValidationError{Field: "min_rental_days", Message: MsgDays}
		}
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	// required fields first, then images, then the rest
	for _, fe := range verrs {
		if fe.Tag() == "required" && fe.Field() != "Images" && !strings.HasPrefix(fe.Namespace(), "Form.Images[") {
			return &ValidationError{Message: MsgRequired}
		}
	}
	for _, fe := range verrs {
		if fe.Field() == "Images" {
			if fe.Tag() == "max" {
				return &ValidationError{Field: "images", Message: MsgTooMany}
			}
			return &ValidationError{Field: "images", Message: MsgNoImages}
		}
		if strings.HasPrefix(fe.Namespace(), "Form.Images[") {
			return &ValidationError{Field: "images", Message: MsgNoImages}
		}
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "category":
		return &ValidationError{Field: "category", Message: MsgCategory}
	case "condition":
		return &ValidationError{Field: "condition", Message: MsgCondition}
	case "gt":
		return &ValidationError{Field: "price_per_day", Message: MsgPrice}
	case "pence":
		return &ValidationError{Field: fe.Field(), Message: MsgPence}
	}
	return &ValidationError{Field: fe.Field(), Message: fe.Error()}
}

// Equipment builds the record for ownerID from a validated form.
func (f Form) Equipment(ownerID string) models.Equipment {
	avail := true
	if f.Availability != nil {
		avail = *f.Availability
	}
	return models.Equipment{
		OwnerID:         ownerID,
		Name:            f.Name,
		Description:     f.Description,
		Brand:           strings.TrimSpace(f.Brand),
		Model:           strings.TrimSpace(f.Model),
		Category:        f.Category,
		Condition:       models.Condition(f.Condition),
		PricePerDay:     f.PricePerDay,
		DepositRequired: f.DepositRequired,
		MinRentalDays:   f.MinRentalDays,
		MaxRentalDays:   f.MaxRentalDays,
		Location:        f.Location,
		Postcode:        f.Postcode,
		Images:          f.Images,
		Availability:    avail,
	}
}

// FromEquipment is the inverse of Equipment, used to re-validate edits.
func FromEquipment(e models.Equipment) Form {
	avail := e.Availability
	return Form{
		Name:            e.Name,
		Description:     e.Description,
		Category:        e.Category,
		PricePerDay:     e.PricePerDay,
		Location:        e.Location,
		Postcode:        e.Postcode,
		Brand:           e.Brand,
		Model:           e.Model,
		Condition:       string(e.Condition),
		DepositRequired: e.DepositRequired,
		MinRentalDays:   e.MinRentalDays,
		MaxRentalDays:   e.MaxRentalDays,
		Images:          e.Images,
		Availability:    &avail,
	}
}
