// Package emailtmpl renders approval notification emails from embedded
// templates.
package emailtmpl

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/sonntkms/taskapproval/internal/domain/approval"
)

//go:embed templates/*
var templateFS embed.FS

// Data is the model every template renders against.
type Data struct {
	TaskName  string
	RequestID string
}

type pair struct {
	subject *texttemplate.Template
	body    *htmltemplate.Template
}

// Renderer produces (subject, body) pairs per notification kind.
type Renderer struct {
	kinds map[approval.NotificationKind]pair
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	r := &Renderer{kinds: make(map[approval.NotificationKind]pair, 3)}
	for _, kind := range []approval.NotificationKind{approval.KindStarted, approval.KindApproved, approval.KindRejected} {
		subject, err := texttemplate.ParseFS(templateFS, fmt.Sprintf("templates/%s_subject.txt", kind))
		if err != nil {
			return nil, fmt.Errorf("parse %s subject: %w", kind, err)
		}
		body, err := htmltemplate.ParseFS(templateFS, fmt.Sprintf("templates/%s_body.html", kind))
		if err != nil {
			return nil, fmt.Errorf("parse %s body: %w", kind, err)
		}
		r.kinds[kind] = pair{subject: subject, body: body}
	}
	return r, nil
}

// Render returns the subject and HTML body for kind.
func (r *Renderer) Render(kind approval.NotificationKind, data Data) (subject, body string, err error) {
	p, ok := r.kinds[kind]
	if !ok {
		return "", "", fmt.Errorf("unknown notification kind %q", kind)
	}

	var sb, bb bytes.Buffer
	if err := p.subject.Execute(&sb, data); err != nil {
		return "", "", fmt.Errorf("render %s subject: %w", kind, err)
	}
	if err := p.body.Execute(&bb, data); err != nil {
		return "", "", fmt.Errorf("render %s body: %w", kind, err)
	}
	return sb.String(), bb.String(), nil
}
