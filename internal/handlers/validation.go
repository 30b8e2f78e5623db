package handlers

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"panchayat/internal/models"
)

var validatorsOnce sync.Once

// registerValidators adds the domain tags used in request binding:
// "role" for user roles and "requeststatus" for service request states.
func registerValidators() {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
			return models.UserRole(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("requeststatus", func(fl validator.FieldLevel) bool {
			return models.ServiceRequestStatus(fl.Field().String()).Valid()
		})
	})
}
