package server

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// BindError shapes a request binding failure into a response body. Binding-tag
// violations are reported per field; anything else (malformed JSON, wrong
// types) collapses to a generic message so decoder internals stay out of
// responses.
func BindError(err error) gin.H {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[lowerFirst(fe.Field())] = fieldMessage(fe)
		}
		return gin.H{"message": "validation failed", "fields": fields}
	}
	return gin.H{"message": "invalid request body"}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}

// lowerFirst approximates the JSON casing of a struct field name (Email →
// email).
func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
