package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/redmonkez12/profile-api/internal/profile"
)

const readOnly = "(read-only)"

// PrintProfile renders a profile with the locked contact group marked
func PrintProfile(w io.Writer, v *profile.View) {
	fmt.Fprintln(w, titleStyle.Render("Profile "+v.UserID))

	row := func(label, value string, editable bool) {
		line := labelStyle.Render(label) + " " + value
		if !editable {
			line += " " + subtleStyle.Render(readOnly)
		}
		fmt.Fprintln(w, line)
	}

	row("Name", v.Name, true)
	row("Date of birth", v.DOB, true)
	row("Email", v.Email, v.Editable.Email)
	row("Phone", v.Phone, v.Editable.Phone)
	row("Country code", fmt.Sprint(v.CountryCode), v.Editable.Phone)
	row("Signed up via", string(v.UserType), false)
	row("Image", v.ProfileImageURL, true)
	fmt.Fprintln(w)
}

// ProgressBar draws a fixed-width bar for pct in 0..100
func ProgressBar(pct float64, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int(pct / 100 * float64(width))
	return "[" + barStyle.Render(strings.Repeat("=", filled)) + strings.Repeat(" ", width-filled) + "]" + fmt.Sprintf(" %3.0f%%", pct)
}

// PrintProgress overwrites the current line with the upload progress
func PrintProgress(w io.Writer, pct float64) {
	fmt.Fprintf(w, "\rUploading %s", ProgressBar(pct, 30))
}

func PrintSuccess(w io.Writer, msg string) {
	fmt.Fprintln(w, successStyle.Render(msg))
}

// PrintError prints an error message.
func PrintError(w io.Writer, msg string) {
	fmt.Fprintln(w, errorStyle.Render("Error: "+msg))
}
