package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
	validateErr  error
)

func getValidator() (*validator.Validate, error) {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validateErr = RegisterCustomValidators(validate)
	})
	return validate, validateErr
}

// RegisterCustomValidators registers custom validation functions
func RegisterCustomValidators(v *validator.Validate) error {
	return v.RegisterValidation("tz", validateTimezone)
}

// validateTimezone accepts "Local", "" and any IANA zone name.
func validateTimezone(fl validator.FieldLevel) bool {
	_, err := loadLocation(fl.Field().String())
	return err == nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	v, err := getValidator()
	if err != nil {
		return fmt.Errorf("failed to initialize validator: %w", err)
	}
	if err := v.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
