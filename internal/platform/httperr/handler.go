package httperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
)

// Supported response languages. French is the default, matching the
// clinic's user base.
var supportedLanguages = language.NewMatcher([]language.Tag{
	language.French,
	language.English,
	language.Arabic,
})

// localized carries the generic message for each error code per language.
var localized = map[string]map[string]string{
	"fr": {
		CodeValidation:   "Les données fournies sont invalides",
		CodeUnauthorized: "Authentification requise ou invalide",
		CodeForbidden:    "Accès refusé",
		CodeNotFound:     "Ressource introuvable",
		CodeConflict:     "La ressource existe déjà",
		CodeUpstream:     "Le service externe est indisponible",
		CodeRateLimited:  "Trop de requêtes, veuillez réessayer plus tard",
		CodeInternal:     "Une erreur interne est survenue",
	},
	"en": {
		CodeValidation:   "The provided data is invalid",
		CodeUnauthorized: "Authentication required or invalid",
		CodeForbidden:    "Access denied",
		CodeNotFound:     "Resource not found",
		CodeConflict:     "The resource already exists",
		CodeUpstream:     "The external service is unavailable",
		CodeRateLimited:  "Too many requests, please retry later",
		CodeInternal:     "An internal error occurred",
	},
	"ar": {
		CodeValidation:   "البيانات المقدمة غير صالحة",
		CodeUnauthorized: "المصادقة مطلوبة أو غير صالحة",
		CodeForbidden:    "تم رفض الوصول",
		CodeNotFound:     "المورد غير موجود",
		CodeConflict:     "المورد موجود بالفعل",
		CodeUpstream:     "الخدمة الخارجية غير متوفرة",
		CodeRateLimited:  "طلبات كثيرة جدًا، يرجى المحاولة لاحقًا",
		CodeInternal:     "حدث خطأ داخلي",
	},
}

// langFor resolves the response language from the Accept-Language header,
// falling back to French.
func langFor(header string) string {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return "fr"
	}
	_, idx, _ := supportedLanguages.Match(tags...)
	switch idx {
	case 1:
		return "en"
	case 2:
		return "ar"
	}
	return "fr"
}

// codeForStatus maps an HTTP status to a stable error code.
func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeValidation
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusTooManyRequests:
		return CodeRateLimited
	case http.StatusBadGateway:
		return CodeUpstream
	}
	return CodeInternal
}

// NewHTTPErrorHandler builds the central echo error handler. Every error is
// rendered as an Envelope with a localized generic message; the specific
// message is only included outside production or for client (4xx) errors.
func NewHTTPErrorHandler(logger zerolog.Logger, production bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		code := CodeInternal
		detail := ""
		var fields map[string]string

		var appErr *Error
		var echoErr *echo.HTTPError
		switch {
		case errors.As(err, &appErr):
			status = appErr.Status
			code = appErr.Code
			detail = appErr.Message
			fields = appErr.Fields
		case errors.As(err, &echoErr):
			status = echoErr.Code
			code = codeForStatus(status)
			detail = fmt.Sprintf("%v", echoErr.Message)
		}

		lang := langFor(c.Request().Header.Get("Accept-Language"))
		message := localized[lang][code]

		// Client errors keep their specific detail; server errors are
		// redacted in production.
		if detail != "" && (status < http.StatusInternalServerError || !production) {
			message = detail
		}

		if status >= http.StatusInternalServerError {
			rid, _ := c.Get("request_id").(string)
			logger.Error().
				Err(err).
				Str("request_id", rid).
				Str("path", c.Request().URL.Path).
				Int("status", status).
				Msg("request failed")
		}

		resp := Envelope{
			Success: false,
			Message: message,
			Code:    code,
			Errors:  fields,
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, resp)
		}
		if writeErr != nil {
			logger.Error().Err(writeErr).Msg("write error response")
		}
	}
}
