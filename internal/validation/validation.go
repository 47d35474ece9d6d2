// Package validation holds field checks shared by services.
package validation

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Email reports whether s is a syntactically valid email address.
func Email(s string) bool {
	return validate.Var(s, "required,email") == nil
}
