// Package render turns card sets into HTML fragments for the board.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"

	"schedboard/internal/cards"
)

// Layout template ids.
const (
	TemplateSingle = "single"
	TemplateDual   = "dual"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("schedboard").ParseFS(templateFS, "templates/*.html"))

// ErrUnknownTemplate is returned by Render for an id with no definition.
var ErrUnknownTemplate = errors.New("unknown template")

// Render executes the named template against data.
func Render(templateID string, data any) (string, error) {
	t := templates.Lookup(templateID)
	if t == nil {
		return "", fmt.Errorf("render %q: %w", templateID, ErrUnknownTemplate)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %q: %w", templateID, err)
	}
	return buf.String(), nil
}

// renderSet renders every card of set with the set's template and joins the
// fragments in card order.
func renderSet(set cards.Set) (template.HTML, error) {
	var buf bytes.Buffer
	for _, c := range set.Cards {
		s, err := Render(set.TemplateID, c)
		if err != nil {
			return "", err
		}
		buf.WriteString(s)
	}
	// Fragments come out of html/template already escaped.
	return template.HTML(buf.String()), nil
}

type singleView struct {
	Body template.HTML
}

type dualView struct {
	LeftHeader  string
	Left        template.HTML
	RightHeader string
	Right       template.HTML
}
