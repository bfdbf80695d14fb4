package profile

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var phoneCodePattern = regexp.MustCompile(`^\+?[0-9]{1,4}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("phone_code", func(fl validator.FieldLevel) bool {
		return phoneCodePattern.MatchString(fl.Field().String())
	})
	return v
}

// ValidationError lists the draft inputs that failed validation
type ValidationError struct {
	Fields map[Field]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range sortedFields(e.Fields) {
		parts = append(parts, fmt.Sprintf("%s %s", f, e.Fields[f]))
	}
	return "invalid profile: " + strings.Join(parts, ", ")
}

var draftStructFields = map[Field]string{
	FieldName:        "Name",
	FieldDOB:         "DOB",
	FieldEmail:       "Email",
	FieldPhoneCode:   "PhoneCode",
	FieldPhoneNumber: "PhoneNumber",
}

var structFieldNames = func() map[string]Field {
	m := make(map[string]Field, len(draftStructFields))
	for f, s := range draftStructFields {
		m[s] = f
	}
	return m
}()

// MergeFields builds the partial update for d. Name and date of birth are
// always written; of the contact fields only the group the signup method
// leaves editable is included.
func (m SignupMethod) MergeFields(d *Draft) Fields {
	fields := Fields{
		FieldName: d.Name,
		FieldDOB:  d.DOB,
	}

	editable := m.Editable()
	if editable.Email {
		fields[FieldEmail] = d.Email
	}
	if editable.Phone {
		fields[FieldPhoneCode] = d.PhoneCode
		fields[FieldPhoneNumber] = d.PhoneNumber
	}

	return fields
}

// Validate checks only the draft inputs that will be written
func (d *Draft) Validate(fields Fields) error {
	names := make([]string, 0, len(fields))
	for f := range fields {
		if s, ok := draftStructFields[f]; ok {
			names = append(names, s)
		}
	}

	err := validate.StructPartial(d, names...)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate profile: %w", err)
	}

	out := &ValidationError{Fields: make(map[Field]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[structFieldNames[fe.StructField()]] = describe(fe)
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "email":
		return "must be a valid email address"
	case "numeric":
		return "must contain digits only"
	case "phone_code":
		return "must be a country calling code like +91"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}
