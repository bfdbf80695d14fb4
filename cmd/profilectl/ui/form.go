package ui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/redmonkez12/profile-api/internal/client"
	"github.com/redmonkez12/profile-api/internal/profile"
)

// formValues backs the edit form. It starts out as the stored profile.
type formValues struct {
	name        string
	dob         string
	email       string
	phoneCode   string
	phoneNumber string
	imagePath   string
}

func newFormValues(v *profile.View, imagePath string) *formValues {
	return &formValues{
		name:        v.Name,
		dob:         v.DOB,
		email:       v.Email,
		phoneCode:   v.PhoneCode,
		phoneNumber: v.PhoneNumber,
		imagePath:   imagePath,
	}
}

func (f *formValues) update() client.Update {
	return client.Update{
		Name:        f.name,
		DOB:         f.dob,
		Email:       f.email,
		PhoneCode:   f.phoneCode,
		PhoneNumber: f.phoneNumber,
		ImagePath:   f.imagePath,
	}
}

// check applies the server's rules to a single field so the form can reject
// a value before it is submitted
func check(field profile.Field) func(string) error {
	return func(s string) error {
		s = strings.TrimSpace(s)
		d := &profile.Draft{}
		switch field {
		case profile.FieldName:
			d.Name = s
		case profile.FieldDOB:
			d.DOB = s
		case profile.FieldEmail:
			d.Email = s
		case profile.FieldPhoneCode:
			d.PhoneCode = s
		case profile.FieldPhoneNumber:
			d.PhoneNumber = s
		}

		err := d.Validate(profile.Fields{field: s})
		var verr *profile.ValidationError
		if errors.As(err, &verr) {
			return errors.New(verr.Fields[field])
		}
		return err
	}
}

func checkImagePath(s string) error {
	if s == "" {
		return nil
	}
	info, err := os.Stat(s)
	if err != nil {
		return fmt.Errorf("cannot read %s", s)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", s)
	}
	return nil
}

func buildFields(v *profile.View, f *formValues) []huh.Field {
	fields := []huh.Field{
		huh.NewInput().Title("Name").Value(&f.name).Validate(check(profile.FieldName)),
		huh.NewInput().Title("Date of birth").Placeholder("1990-01-31").Value(&f.dob).Validate(check(profile.FieldDOB)),
	}

	if v.Editable.Email {
		fields = append(fields, huh.NewInput().Title("Email").Value(&f.email).Validate(check(profile.FieldEmail)))
	} else {
		fields = append(fields, huh.NewNote().Title("Email").Description(v.Email+" "+readOnly))
	}

	if v.Editable.Phone {
		fields = append(fields,
			huh.NewInput().Title("Country code").Placeholder("+91").Value(&f.phoneCode).Validate(check(profile.FieldPhoneCode)),
			huh.NewInput().Title("Phone number").Value(&f.phoneNumber).Validate(check(profile.FieldPhoneNumber)),
		)
	} else {
		fields = append(fields, huh.NewNote().Title("Phone").Description(v.Phone+" "+readOnly))
	}

	fields = append(fields, huh.NewInput().
		Title("Profile image").
		Description("Path to a new picture, leave empty to keep the current one").
		Value(&f.imagePath).
		Validate(checkImagePath))

	return fields
}

// RunEditForm shows the profile prefilled for editing and returns what the
// user submitted. The contact group the signup method locks is shown but
// not offered as input.
func RunEditForm(v *profile.View, imagePath string) (client.Update, error) {
	values := newFormValues(v, imagePath)

	form := huh.NewForm(
		huh.NewGroup(buildFields(v, values)...),
	).WithTheme(huh.ThemeCatppuccin())

	if err := form.Run(); err != nil {
		return client.Update{}, err
	}

	return values.update(), nil
}
