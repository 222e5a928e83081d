package validation

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var (
	hexAddressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	accountIDPattern  = regexp.MustCompile(`^[A-Za-z0-9._:-]{3,128}$`)
)

func init() {
	validate = validator.New()
	registerDomainValidations(validate)

	// Register the same tags on gin's binding engine so request structs
	// can use them directly.
	if engine, ok := binding.Validator.Engine().(*validator.Validate); ok {
		registerDomainValidations(engine)
	}
}

func registerDomainValidations(v *validator.Validate) {
	_ = v.RegisterValidation("entity_id", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
			return hexAddressPattern.MatchString(value)
		}
		return accountIDPattern.MatchString(value)
	})

	_ = v.RegisterValidation("risk_level", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "LOW", "MEDIUM", "HIGH", "CRITICAL":
			return true
		}
		return false
	})

	_ = v.RegisterValidation("case_status", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "new", "under_investigation", "escalated", "resolved", "closed":
			return true
		}
		return false
	})

	_ = v.RegisterValidation("case_priority", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "low", "medium", "high", "critical":
			return true
		}
		return false
	})
}

// ValidateStruct validates a struct using its validate tags
func ValidateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			return NewValidationError(errs)
		}
		return err
	}
	return nil
}
