package services

import "errors"

var (
	ErrMissingFields         = errors.New("all fields are required")
	ErrPasswordMismatch      = errors.New("passwords do not match")
	ErrEmailTaken            = errors.New("email already registered")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrNameRequired          = errors.New("name is required")
	ErrProductFieldsRequired = errors.New("name and expiry date are required")
	ErrInvalidExpiryDate     = errors.New("expiry date must be a valid YYYY-MM-DD date")
	ErrUserNotFound          = errors.New("user not found")
	ErrProductNotFound       = errors.New("product not found")
	ErrInternal              = errors.New("internal server error")
)
