package validator

import (
	"github.com/go-playground/validator/v10"
)

// Validator wraps the struct validator and the business rule validator.
type Validator struct {
	validate *validator.Validate
	business *BusinessValidator
}

func New() *Validator {
	return &Validator{
		validate: validator.New(),
		business: NewBusinessValidator(),
	}
}

// ValidateStruct runs tag-based validation on a request struct.
func (v *Validator) ValidateStruct(s interface{}) ValidationErrors {
	if err := v.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

func (v *Validator) GetBusinessValidator() *BusinessValidator {
	return v.business
}
