package services

import (
	"fmt"

	"github.com/dmitrijs2005/orgdrive/internal/common"
	"github.com/dmitrijs2005/orgdrive/internal/server/models"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator returns a validator that also understands the "filetype"
// tag, backed by models.FileType.Valid.
func newValidator() *validator.Validate {
	v := validator.New()
	err := v.RegisterValidation("filetype", func(fl validator.FieldLevel) bool {
		return models.FileType(fl.Field().String()).Valid()
	})
	if err != nil {
		panic(err)
	}
	return v
}

// validateInput checks struct tags and maps failures to common.ErrValidation.
func validateInput(in any) error {
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	return nil
}
