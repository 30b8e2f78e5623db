package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

const ResetSubject = "Reset your Gram Panchayat portal password"

var resetTemplate = template.Must(template.New("reset").Parse(`<p>Namaste {{.Name}},</p>
<p>We received a request to reset the password for your Gram Panchayat portal account.</p>
<p><a href="{{.Link}}">Reset your password</a></p>
<p>This link expires in {{.Validity}}. If you did not ask for a reset you can ignore this message.</p>`))

// ResetBody renders the password reset mail. baseURL gets the token appended as the last path segment.
func ResetBody(name, baseURL, token, validity string) (string, error) {
	var buf bytes.Buffer
	err := resetTemplate.Execute(&buf, struct {
		Name     string
		Link     string
		Validity string
	}{
		Name:     name,
		Link:     strings.TrimRight(baseURL, "/") + "/" + token,
		Validity: validity,
	})
	if err != nil {
		return "", fmt.Errorf("render reset mail: %w", err)
	}
	return buf.String(), nil
}
