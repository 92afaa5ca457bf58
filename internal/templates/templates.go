// Package templates renders the HTML relay page shown in the OAuth popup
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/wrale/decap-oauth-proxy/internal/delivery"
)

//go:embed html/*.html
var content embed.FS

// TemplateError wraps template loading and rendering failures
type TemplateError struct {
	Cause   error
	Message string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template error: %s: %v", e.Message, e.Cause)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// Templates manages the HTML templates
type Templates struct {
	relay *template.Template
}

// LoadTemplates loads and parses all HTML templates
func LoadTemplates() (*Templates, error) {
	t := &Templates{}
	var err error

	// Load relay page template
	if t.relay, err = template.ParseFS(content, "html/relay.html", "html/layout.html"); err != nil {
		return nil, &TemplateError{Cause: err, Message: "failed to parse relay template"}
	}

	return t, nil
}

// RenderRelay renders the page that hands a delivery plan to the opener window.
// Output is buffered so a failed render never leaves a partial page behind.
func (t *Templates) RenderRelay(w io.Writer, plan delivery.Plan) error {
	out, err := t.RenderToString(t.relay, plan)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(w, out); err != nil {
		return fmt.Errorf("writing relay page: %w", err)
	}
	return nil
}

// RenderToString renders a template to a string
func (t *Templates) RenderToString(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", &TemplateError{Cause: err, Message: "failed to render template"}
	}
	return buf.String(), nil
}
