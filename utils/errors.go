package utils

import (
	"github.com/pkg/errors"
)

// NewObjectNotFoundError is used when an object handle is not present in the scene.
func NewObjectNotFoundError(handle string) error {
	return errors.Errorf("object %q not found", handle)
}

// NewTemplateNotFoundError is used when no object template matches a requested name.
func NewTemplateNotFoundError(name string) error {
	return errors.Errorf("no matching template for %q in the dataset", name)
}

// NewConfigValidationError is used when a config value at path is invalid.
func NewConfigValidationError(path string, err error) error {
	return errors.Wrapf(err, "error validating %q", path)
}

// NewConfigValidationFieldRequiredError is used when a required config field is missing.
func NewConfigValidationFieldRequiredError(path, field string) error {
	return NewConfigValidationError(path, errors.Errorf("%q is required", field))
}
