package validators

import (
	"errors"
	"fmt"

	"github.com/anonto42/quartfeed/pkg/security"
	"github.com/go-playground/validator/v10"
)

// CustomValidator adapts go-playground/validator to echo.Validator.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator registers the app's custom tags:
//
//	nomarkup  rejects strings containing HTML markup
func NewValidator() *CustomValidator {
	v := validator.New()
	if err := v.RegisterValidation("nomarkup", noMarkup); err != nil {
		panic(err)
	}
	return &CustomValidator{validator: v}
}

func noMarkup(fl validator.FieldLevel) bool {
	return !security.ContainsMarkup(fl.Field().String())
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// Describe turns the first validation failure into a message suitable for a
// form error. Non-validation errors are returned verbatim.
func Describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "alphanum":
		return fmt.Sprintf("%s may only contain letters and digits", fe.Field())
	case "nomarkup":
		return fmt.Sprintf("%s may not contain markup", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
