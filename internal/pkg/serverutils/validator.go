package serverutils

import (
	"errors"
	"fmt"
	"strings"

	"cortex-ai-be/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateRequest runs the struct's validate tags and reports failures as a
// Validation error whose details map each field to the failed rule.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperror.Validation(err.Error())
	}

	details := make(map[string]interface{}, len(fieldErrs))
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fe.Field()
		if _, rest, ok := strings.Cut(fe.Namespace(), "."); ok {
			field = rest
		}
		details[field] = fe.Tag()
		messages = append(messages, fmt.Sprintf("%s failed on %s", field, fe.Tag()))
	}

	verr := apperror.Validation(strings.Join(messages, "; "))
	verr.Details = details
	return verr
}
