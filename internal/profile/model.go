package profile

import (
	"errors"
	"io"
	"strings"
)

var (
	ErrNotFound      = errors.New("profile not found")
	ErrInvalidUserID = errors.New("user id is required")
	ErrUpload        = errors.New("failed to upload profile image")
	ErrUpdate        = errors.New("failed to update profile")
	ErrUnknownField  = errors.New("field cannot be merged")
)

// Field names a record attribute as clients and snapshots see it
type Field string

const (
	FieldName            Field = "name"
	FieldDOB             Field = "dob"
	FieldEmail           Field = "email"
	FieldPhoneCode       Field = "phoneCode"
	FieldPhoneNumber     Field = "phoneNumber"
	FieldProfileImageURL Field = "profileImageUrl"
	FieldUserType        Field = "userType"
	FieldTimestamp       Field = "timestamp"
)

// Fields is a partial set of values to merge into a record
type Fields map[Field]string

// SignupMethod is the channel the account was created with. It fixes which
// contact group the user may edit.
type SignupMethod string

const (
	SignupPhone   SignupMethod = "Phone"
	SignupEmail   SignupMethod = "Email"
	SignupGoogle  SignupMethod = "Google"
	SignupUnknown SignupMethod = ""
)

// ParseSignupMethod matches case-insensitively; anything else is SignupUnknown
func ParseSignupMethod(s string) SignupMethod {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "phone":
		return SignupPhone
	case "email":
		return SignupEmail
	case "google":
		return SignupGoogle
	default:
		return SignupUnknown
	}
}

// Editable reports which contact group is open for editing
type Editable struct {
	Email bool `json:"email"`
	Phone bool `json:"phone"`
}

func (m SignupMethod) Editable() Editable {
	switch m {
	case SignupPhone:
		return Editable{Email: true}
	case SignupEmail, SignupGoogle:
		return Editable{Phone: true}
	default:
		return Editable{}
	}
}

// View is the populated form shown to the user
type View struct {
	UserID          string       `json:"uid"`
	Name            string       `json:"name"`
	DOB             string       `json:"dob"`
	Email           string       `json:"email"`
	PhoneCode       string       `json:"phoneCode"`
	PhoneNumber     string       `json:"phoneNumber"`
	Phone           string       `json:"phone"`
	CountryCode     int          `json:"countryCode"`
	ProfileImageURL string       `json:"profileImageUrl"`
	UserType        SignupMethod `json:"userType"`
	Timestamp       string       `json:"timestamp"`
	Editable        Editable     `json:"editable"`
}

// StagedImage is a locally selected picture waiting to be uploaded
type StagedImage struct {
	Body        io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// Draft holds the form values the user entered plus an optional staged
// image. A successful Submit clears Image.
type Draft struct {
	Name        string `validate:"max=100"`
	DOB         string `validate:"max=32"`
	Email       string `validate:"omitempty,email,max=254"`
	PhoneCode   string `validate:"omitempty,phone_code"`
	PhoneNumber string `validate:"omitempty,numeric,min=4,max=15"`
	Image       *StagedImage
}

// NewDraft trims every text input
func NewDraft(name, dob, email, phoneCode, phoneNumber string) *Draft {
	return &Draft{
		Name:        strings.TrimSpace(name),
		DOB:         strings.TrimSpace(dob),
		Email:       strings.TrimSpace(email),
		PhoneCode:   strings.TrimSpace(phoneCode),
		PhoneNumber: strings.TrimSpace(phoneNumber),
	}
}

// Stage replaces the staged image
func (d *Draft) Stage(img *StagedImage) {
	d.Image = img
}

// HasImage reports whether a picture is staged for upload
func (d *Draft) HasImage() bool {
	return d.Image != nil
}

// ImagePath is the storage path of a user's avatar. Every upload for the
// same user overwrites it.
func ImagePath(userID string) string {
	return "UserProfile/profile_" + userID
}
