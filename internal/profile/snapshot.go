package profile

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Snapshot is one read of a record. Values keep whatever type the store
// returned; missing and NULL columns are absent or nil.
type Snapshot map[Field]any

// Child returns the raw value of f and whether it holds anything
func (s Snapshot) Child(f Field) (any, bool) {
	v, ok := s[f]
	return v, ok && v != nil
}

// String renders f as text, or "" when the value is missing
func (s Snapshot) String(f Field) string {
	v, ok := s.Child(f)
	if !ok {
		return ""
	}
	return stringify(v)
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// DecodeError is a field that could not be interpreted. The rest of the
// view is still populated.
type DecodeError struct {
	Field Field
	Value string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Project turns a snapshot into the view the user edits. Missing text
// fields become empty strings and a missing image becomes placeholderImage.
func Project(userID string, snap Snapshot, placeholderImage string) (*View, []error) {
	var errs []error

	method := ParseSignupMethod(snap.String(FieldUserType))
	phoneCode := snap.String(FieldPhoneCode)
	phoneNumber := snap.String(FieldPhoneNumber)

	v := &View{
		UserID:          userID,
		Name:            snap.String(FieldName),
		DOB:             snap.String(FieldDOB),
		Email:           snap.String(FieldEmail),
		PhoneCode:       phoneCode,
		PhoneNumber:     phoneNumber,
		Phone:           phoneCode + phoneNumber,
		ProfileImageURL: snap.String(FieldProfileImageURL),
		UserType:        method,
		Timestamp:       snap.String(FieldTimestamp),
		Editable:        method.Editable(),
	}

	if v.ProfileImageURL == "" {
		v.ProfileImageURL = placeholderImage
	}

	if phoneCode != "" {
		code, err := ParseCountryCode(phoneCode)
		if err != nil {
			errs = append(errs, &DecodeError{Field: FieldPhoneCode, Value: phoneCode, Err: err})
		}
		v.CountryCode = code
	}

	return v, errs
}

// ParseCountryCode converts "+91" to 91
func ParseCountryCode(s string) (int, error) {
	code, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(s), "+"))
	if err != nil {
		return 0, err
	}
	if code <= 0 {
		return 0, fmt.Errorf("country code must be positive, got %d", code)
	}
	return code, nil
}

func sortedFields[V any](m map[Field]V) []Field {
	out := make([]Field, 0, len(m))
	for f := range m {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
