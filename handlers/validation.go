package handlers

import (
	"counselbook/utils"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the custom binding tags used by request models.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("timelabel", func(fl validator.FieldLevel) bool {
		_, _, err := utils.ParseTimeLabel(fl.Field().String())
		return err == nil
	})
}
