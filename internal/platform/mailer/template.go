package mailer

import (
	"fmt"
	"strings"
	"sync"
)

// Template defines a reusable email template.
type Template struct {
	ID      string
	Name    string
	Subject string
	Body    string
}

// TemplateEngine manages email templates and renders them with data.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine creates a TemplateEngine with the built-in templates
// pre-registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{
		templates: make(map[string]*Template),
	}
	e.registerBuiltIn()
	return e
}

func (e *TemplateEngine) registerBuiltIn() {
	builtIn := []Template{
		{
			ID:      "password-reset",
			Name:    "Password Reset",
			Subject: "Réinitialisation de votre mot de passe",
			Body:    "Vous avez demandé la réinitialisation de votre mot de passe. Cliquez sur le lien suivant pour continuer : {{reset_link}}\n\nCe lien expire dans une heure.",
		},
		{
			ID:      "appointment-confirmed",
			Name:    "Appointment Confirmed",
			Subject: "Votre rendez-vous du {{date}} est confirmé",
			Body:    "Bonjour {{patient_name}}, votre rendez-vous du {{date}} à {{time}} avec {{provider}} est confirmé.",
		},
		{
			ID:      "appointment-cancelled",
			Name:    "Appointment Cancelled",
			Subject: "Votre rendez-vous du {{date}} est annulé",
			Body:    "Bonjour {{patient_name}}, votre rendez-vous du {{date}} à {{time}} a été annulé.",
		},
		{
			ID:      "analysis-ready",
			Name:    "Analysis Ready",
			Subject: "Vos résultats d'analyse sont disponibles",
			Body:    "Bonjour {{patient_name}}, vos résultats d'analyse ({{analysis_type}}) sont disponibles. Connectez-vous pour les consulter.",
		},
	}
	for i := range builtIn {
		t := builtIn[i]
		e.templates[t.ID] = &t
	}
}

// RegisterTemplate adds or replaces a template in the engine.
func (e *TemplateEngine) RegisterTemplate(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Render looks up a template by ID and performs {{key}} replacement using the
// supplied data map. Keys present in the template but absent from data are
// left as-is.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (subject, body string, err error) {
	e.mu.RLock()
	t, ok := e.templates[templateID]
	e.mu.RUnlock()
	if !ok {
		return "", "", fmt.Errorf("template %q not found", templateID)
	}

	subject = t.Subject
	body = t.Body
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		subject = strings.ReplaceAll(subject, placeholder, v)
		body = strings.ReplaceAll(body, placeholder, v)
	}
	return subject, body, nil
}
