package i18n

import "strings"

// DefaultLanguage is Spanish: the product's first audience.
const DefaultLanguage = "es"

var supported = map[string]bool{"es": true, "en": true}

// DetectLanguage picks a supported language from an Accept-Language header
// value, falling back to the default.
func DetectLanguage(acceptLanguage string) string {
	for _, part := range strings.Split(acceptLanguage, ",") {
		lang := strings.ToLower(strings.TrimSpace(part))
		if i := strings.IndexAny(lang, "-;"); i >= 0 {
			lang = lang[:i]
		}
		if supported[lang] {
			return lang
		}
	}
	return DefaultLanguage
}

// Supported reports whether lang is a language this catalog carries.
func Supported(lang string) bool { return supported[lang] }

var messages = map[string]map[string]string{
	"es": {
		"required": "Obligatorio",
		"invalid_email": "Email no válido",
		"must_be_positive": "Debe ser mayor que cero",
		"must_not_be_negative": "No puede ser negativo",
		"out_of_range": "Fuera de rango",
		"invalid_value": "Valor no válido",
		"invalid_payload": "Datos no válidos",
		"invalid_json": "JSON no válido",
		"validation_failed": "Por favor completa todos los campos obligatorios",
		"invalid_items": "Por favor completa todos los elementos de la factura",
		"no_items": "La factura debe tener al menos un elemento",
		"unauthorized": "No autorizado",
		"invalid_credentials": "Email o contraseña incorrectos",
		"email_taken": "Ya existe una cuenta con este email",
		"not_found": "No encontrado",
		"invalid_transition": "Cambio de estado no permitido",
		"duplicate_number": "Ya existe una factura con este número",
		"internal_error": "No se pudo completar la operación",
		"method_not_allowed": "Método no permitido",
		"unknown_client": "Cliente desconocido",
		"invalid_period": "Período no válido",
	},
	"en": {
		"required": "Required",
		"invalid_email": "Invalid email",
		"must_be_positive": "Must be greater than zero",
		"must_not_be_negative": "Must not be negative",
		"out_of_range": "Out of range",
		"invalid_value": "Invalid value",
		"invalid_payload": "Invalid payload",
		"invalid_json": "Invalid JSON",
		"validation_failed": "Please fill in all required fields",
		"invalid_items": "Please complete every invoice line",
		"no_items": "An invoice needs at least one line",
		"unauthorized": "Unauthorized",
		"invalid_credentials": "Wrong email or password",
		"email_taken": "An account with this email already exists",
		"not_found": "Not found",
		"invalid_transition": "Status change not allowed",
		"duplicate_number": "An invoice with this number already exists",
		"internal_error": "The operation could not be completed",
		"method_not_allowed": "Method not allowed",
		"unknown_client": "Unknown client",
		"invalid_period": "Invalid period",
	},
}

// T translates a message code for the given language. Unknown languages fall
// back to the default catalog; unknown codes fall back to the code itself.
func T(lang, code string) string {
	catalog, ok := messages[lang]
	if !ok {
		catalog = messages[DefaultLanguage]
	}
	if msg, ok := catalog[code]; ok {
		return msg
	}
	if lang != DefaultLanguage {
		if msg, ok := messages[DefaultLanguage][code]; ok {
			return msg
		}
	}
	return code
}
