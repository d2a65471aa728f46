package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidateConfig checks the validate tags of cfg and reports every failing
// field at once.
func ValidateConfig(cfg *Config) error {
	err := validator.New().Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	messages := make([]string, 0, len(verrs))
	for _, e := range verrs {
		messages = append(messages, fmt.Sprintf("%s failed %s (value: '%v')", e.Namespace(), e.Tag(), e.Value()))
	}
	return fmt.Errorf("invalid configuration:\n  %s", strings.Join(messages, "\n  "))
}
