package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/event-manager/internal/apperror"
)

// validate is shared by all services. A *validator.Validate caches struct
// metadata and is safe for concurrent use, so one instance is enough.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON names ("speakerPerformer") rather than Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateRequired runs the struct's validate tags. Any failure becomes a
// ValidationError carrying message, with Field set to the first failing field.
//
// The API answers every missing-field case with one fixed sentence listing
// all mandatory fields, so the individual validator messages are not exposed.
func validateRequired(s any, message string) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return apperror.ValidationFailed(verrs[0].Field(), message)
	}
	return apperror.ValidationFailed("", message)
}
