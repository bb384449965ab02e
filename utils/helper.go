package utils

import (
	"github.com/go-playground/validator/v10"
	"github.com/ttacon/libphonenumber"
)

func ValidatePhoneNumber(phoneNumber, countryCode string) error {
	num, err := libphonenumber.Parse(phoneNumber, countryCode)
	if err != nil {
		return NewValidationError("invalid phone number: %v", err)
	}
	if !libphonenumber.IsValidNumber(num) {
		return NewValidationError("invalid phone number")
	}
	return nil
}

// map binding errors to field:message for API responses
func ProcessValidationErrors(err error) map[string]string {
	errs := make(map[string]string)
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			errs[fieldError.Field()] = fieldError.Tag()
		}
	} else {
		errs["error"] = err.Error()
	}
	return errs
}

func NewTrue() *bool {
	b := true
	return &b
}

func NewFalse() *bool {
	b := false
	return &b
}

func DereferencePtr[T any](ptr *T, defaults ...T) T {
	if ptr != nil {
		return *ptr
	}
	if len(defaults) > 0 {
		return defaults[0]
	}
	var zero T
	return zero
}
