package services

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// RegisterInput carries the registration form.
type RegisterInput struct {
	Name            string `form:"name" validate:"required"`
	Email           string `form:"email" validate:"required"`
	Password        string `form:"password" validate:"required"`
	ConfirmPassword string `form:"confirm_password" validate:"eqfield=Password"`
}

// ProductInput carries the add and edit product forms.
type ProductInput struct {
	Name        string `form:"name" validate:"required"`
	ExpiryDate  string `form:"expiry_date" validate:"required,datetime=2006-01-02"`
	Description string `form:"description"`
}

// ProfileInput carries the profile form. The password pair is optional.
type ProfileInput struct {
	Name            string `form:"name" validate:"required"`
	Password        string `form:"password"`
	ConfirmPassword string `form:"confirm_password" validate:"eqfield=Password"`
}

// failedTags collects the validation tags that failed, keyed by tag name.
func failedTags(err error) map[string]bool {
	tags := make(map[string]bool)
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			tags[e.Tag()] = true
		}
	}
	return tags
}
