package validator

import (
	"modelhub_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules wires the domain enum rules. Empty values pass here;
// required-ness is a separate tag and the store applies defaults.
func registerCustomRules(v *validator.Validate) error {
	if err := v.RegisterValidation("assettype", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		return models.ValidAssetType(models.AssetType(value))
	}); err != nil {
		return err
	}

	if err := v.RegisterValidation("parceltype", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		return models.ValidParcelType(models.ParcelType(value))
	}); err != nil {
		return err
	}

	return nil
}
