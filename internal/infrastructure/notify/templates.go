package notify

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Kinds of account notifications
const (
	KindActivation    = "activation"
	KindPasswordReset = "password_reset"
	KindOTP           = "otp"
)

var subjects = map[string]string{
	KindActivation:    "Activate your %s account",
	KindPasswordReset: "Reset your %s password",
	KindOTP:           "Your %s verification code",
}

// Data is the template payload
type Data struct {
	SiteName      string
	Name          string
	Link          string
	Code          string
	ExpiryMinutes int
}

// Render returns the subject and HTML body for a notification kind
func Render(kind string, data Data) (string, string, error) {
	subject, ok := subjects[kind]
	if !ok {
		return "", "", fmt.Errorf("unknown notification kind %q", kind)
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, kind+".html", data); err != nil {
		return "", "", fmt.Errorf("render %s: %w", kind, err)
	}
	return fmt.Sprintf(subject, data.SiteName), buf.String(), nil
}
