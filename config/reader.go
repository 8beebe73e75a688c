package config

import (
	"bytes"
	"io"

	"github.com/a8m/envsubst"
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/yosuke-furukawa/json5/encoding/json5"

	"go.viam.com/sceneviewer/logging"
)

// Read reads settings from the given file, substituting ${ENV} references first.
func Read(filePath string, logger logging.Logger) (*Settings, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read settings file %q", filePath)
	}
	return FromReader(filePath, bytes.NewReader(buf), logger)
}

// FromReader reads settings from r over the defaults and validates them. originalPath names
// where the reader came from, if anywhere. Settings files are JSON5, so hand-edited files may
// carry comments and trailing commas. Values are weakly typed so that substituted environment
// variables such as "720" decode into numeric fields; unknown keys are an error.
func FromReader(originalPath string, r io.Reader, logger logging.Logger) (*Settings, error) {
	var attributes map[string]interface{}
	if err := json5.NewDecoder(r).Decode(&attributes); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings from json")
	}

	settings := Default()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &settings,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	settings.ConfigFilePath = originalPath

	if err := settings.Validate("settings"); err != nil {
		return nil, err
	}
	logger.Debugw("read settings", "path", originalPath, "scene", settings.Scene, "dataset", settings.Dataset)
	return &settings, nil
}
