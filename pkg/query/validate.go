package query

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct runs the validator tags and reports every violation at once.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	result := &multierror.Error{}
	for _, fe := range fieldErrs {
		result = multierror.Append(result, fmt.Errorf("%s: value %v fails %q", fe.Namespace(), fe.Value(), fe.ActualTag()))
	}
	return result.ErrorOrNil()
}
