// Package validator provides validation infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package validator

import (
	"strings"

	"callerid_backend/platform/phone"

	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"
)

// Validator wraps the go-playground validator for structured validation.
type Validator struct {
	v *validator.Validate
}

// New creates a new Validator with the phone-specific rules registered:
//
//	region     - an ISO 3166-1 region code known to the numbering plan, or empty
//	dialstring - at least one dialable character after normalization
func New() *Validator {
	v := validator.New()
	_ = v.RegisterValidation("region", validateRegion)
	_ = v.RegisterValidation("dialstring", validateDialString)
	return &Validator{v: v}
}

// Struct validates a struct based on validation tags.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

// Var validates a single variable against a tag.
func (val *Validator) Var(field interface{}, tag string) error {
	return val.v.Var(field, tag)
}

// RegisterValidation registers a custom validation function.
func (val *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return val.v.RegisterValidation(tag, fn)
}

// FieldErrors flattens validation errors into field -> failed tag.
func FieldErrors(err error) map[string]string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

func validateRegion(fl validator.FieldLevel) bool {
	region := strings.TrimSpace(fl.Field().String())
	if region == "" {
		return true
	}
	region = strings.ToUpper(region)
	if region == phone.UnknownRegion {
		return true
	}
	return phonenumbers.GetCountryCodeForRegion(region) != 0
}

func validateDialString(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	return phone.NetworkPortion(raw) != "" || phone.PostDialPortion(raw) != ""
}
