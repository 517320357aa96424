package helpers

import (
	"regexp"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	objectIDPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{1,64}$`)
	registerOnce    sync.Once
	registerErr     error
)

// IsObjectID reports whether s looks like a ledger object id
func IsObjectID(s string) bool {
	return objectIDPattern.MatchString(s)
}

// RegisterValidators installs the custom binding rules on gin's validator. Safe to call more than once.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		registerErr = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
			return IsObjectID(fl.Field().String())
		})
	})
	return registerErr
}
