// Package validators builds the shared go-playground validator with the
// domain tags used on request and import structs.
package validators

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/iqueue/staffing/internal/models"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// New returns the process-wide validator. Registered tags:
//
//	role      - any models.Role
//	shiftrole - a role a shift may require (never Admin)
func New() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
			return models.Role(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("shiftrole", func(fl validator.FieldLevel) bool {
			return models.Role(fl.Field().String()).ValidForShift()
		})
		instance = v
	})
	return instance
}

// Struct validates s and flattens field errors into one readable message.
func Struct(s any) error {
	err := New().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", strings.ToLower(fe.Field()), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return errors.New(strings.Join(parts, "; "))
}
