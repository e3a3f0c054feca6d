package httperr

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func performError(t *testing.T, err error, acceptLanguage string, production bool) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if acceptLanguage != "" {
		req.Header.Set("Accept-Language", acceptLanguage)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := NewHTTPErrorHandler(zerolog.Nop(), production)
	handler(err, c)

	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	return rec, env
}

func TestHandler_AppError(t *testing.T) {
	rec, env := performError(t, NotFound("appointment not found"), "", false)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if env.Success {
		t.Error("expected success=false")
	}
	if env.Code != CodeNotFound {
		t.Errorf("expected code %s, got %s", CodeNotFound, env.Code)
	}
	if env.Message != "appointment not found" {
		t.Errorf("expected specific message, got %q", env.Message)
	}
}

func TestHandler_ValidationFields(t *testing.T) {
	err := Validation(map[string]string{"email": "invalid email format"})
	rec, env := performError(t, err, "", false)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if env.Errors["email"] != "invalid email format" {
		t.Errorf("expected field error, got %v", env.Errors)
	}
}

func TestHandler_EchoHTTPError(t *testing.T) {
	rec, env := performError(t, echo.NewHTTPError(http.StatusUnauthorized, "invalid token"), "", false)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if env.Code != CodeUnauthorized {
		t.Errorf("expected code %s, got %s", CodeUnauthorized, env.Code)
	}
}

func TestHandler_RedactsInternalInProduction(t *testing.T) {
	appErr := Internal(echo.ErrInternalServerError)
	appErr.Message = "pgx: connection refused at 10.1.2.3"
	rec, env := performError(t, appErr, "en", true)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if env.Message != localized["en"][CodeInternal] {
		t.Errorf("expected redacted generic message, got %q", env.Message)
	}
}

func TestHandler_LocalizesByAcceptLanguage(t *testing.T) {
	tests := []struct {
		header string
		lang   string
	}{
		{"", "fr"},
		{"fr-FR", "fr"},
		{"en-US,en;q=0.9", "en"},
		{"ar-TN", "ar"},
		{"de-DE", "fr"}, // unsupported falls back to French
	}

	for _, tt := range tests {
		// An unknown error has no detail, so the localized generic is used.
		_, env := performError(t, echo.ErrServiceUnavailable, tt.header, true)
		want := localized[tt.lang][CodeInternal]
		if env.Message != want {
			t.Errorf("Accept-Language %q: expected %q, got %q", tt.header, want, env.Message)
		}
	}
}

func TestLangFor(t *testing.T) {
	if got := langFor("ar"); got != "ar" {
		t.Errorf("expected ar, got %s", got)
	}
	if got := langFor("not-a-language;;;"); got != "fr" {
		t.Errorf("expected fr fallback, got %s", got)
	}
}
