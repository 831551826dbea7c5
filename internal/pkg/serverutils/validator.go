package serverutils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest runs struct-tag validation and folds all violations into
// one readable error.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		var violations []string
		for _, fieldErr := range err.(validator.ValidationErrors) {
			violations = append(violations, fmt.Sprintf("%s failed on '%s'", fieldErr.Field(), fieldErr.Tag()))
		}
		return fmt.Errorf("validation failed: %s", strings.Join(violations, ", "))
	}
	return nil
}
