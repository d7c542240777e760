package validator

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// BusinessValidator handles rule validation beyond struct tags.
type BusinessValidator struct {
	validate *validator.Validate
}

func NewBusinessValidator() *BusinessValidator {
	return &BusinessValidator{validate: validator.New()}
}

func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	if err := bv.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// DueDateLayouts are the accepted due date formats, tried in order.
var DueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDueDate parses a form-supplied due date. ok is false when the
// string is non-empty but unparseable; the caller surfaces a warning and
// continues without a due date.
func ParseDueDate(raw string) (t *time.Time, ok bool) {
	if raw == "" {
		return nil, true
	}
	for _, layout := range DueDateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return &parsed, true
		}
	}
	return nil, false
}
