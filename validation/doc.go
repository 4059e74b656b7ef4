// Package validation checks configuration structs against go-playground
// validator tags and reports failures as INVALID_CONFIG errors keyed by
// config field name.
//
//	type Config struct {
//	    FolderID string        `mapstructure:"folder_id" validate:"required"`
//	    Interval time.Duration `mapstructure:"poll_interval" validate:"gte=0"`
//	}
//
//	if err := validation.Validate(cfg); err != nil {
//	    // errors.IsInvalidConfig(err) == true
//	}
package validation
