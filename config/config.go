// Package config defines the scene viewer settings and how they are read from disk.
package config

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/sceneviewer/logging"
	"go.viam.com/sceneviewer/markers"
	"go.viam.com/sceneviewer/recfilter"
	"go.viam.com/sceneviewer/shapemetrics"
	"go.viam.com/sceneviewer/utils"
)

// Default settings.
const (
	DefaultScene   = "./data/test_assets/scenes/simple_room.glb"
	DefaultDataset = "default"
	DefaultWidth   = 1080
	DefaultHeight  = 720
	DefaultFPS     = 60.0
)

// Settings configures a viewer session.
type Settings struct {
	// Scene is the scene to load, by file path or dataset scene handle.
	Scene string `json:"scene"`
	// Dataset is the scene dataset config file, or "default".
	Dataset string `json:"dataset"`
	// SceneFile is a static scene description used when no engine is attached.
	SceneFile string `json:"scene_file,omitempty"`

	DisablePhysics  bool    `json:"disable_physics"`
	NumEnvironments int     `json:"num_environments"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	FPS             float64 `json:"fps"`

	// RecFilterFile is where receptacle filter annotations are saved and loaded.
	RecFilterFile   string `json:"rec_filter_file"`
	WatchFilterFile bool   `json:"watch_filter_file"`

	// MarkerSetsFile is where marker sets of articulated objects are saved and loaded.
	MarkerSetsFile string `json:"marker_sets_file"`

	// MetricsFile holds precomputed shape metrics. When empty, metrics are computed at startup
	// if InitShapeMetrics is set.
	MetricsFile      string `json:"metrics_file,omitempty"`
	InitShapeMetrics bool   `json:"init_shape_metrics"`

	AccessThreshold    float64 `json:"rec_access_filter_threshold"`
	StabilityThreshold float64 `json:"rec_stability_filter_threshold"`
	FilterShape        string  `json:"rec_filter_shape"`

	ClutterTemplates []string `json:"clutter_templates,omitempty"`

	// LogLevel is one of debug, info, warn or error. Debug overrides it.
	LogLevel string `json:"log_level,omitempty"`
	Debug    bool   `json:"debug"`
	LogFile  string `json:"log_file,omitempty"`

	// ConfigFilePath is the file the settings were read from, if any.
	ConfigFilePath string `json:"-"`
}

// Default returns the settings used when nothing is configured.
func Default() Settings {
	return Settings{
		Scene:              DefaultScene,
		Dataset:            DefaultDataset,
		NumEnvironments:    1,
		Width:              DefaultWidth,
		Height:             DefaultHeight,
		FPS:                DefaultFPS,
		RecFilterFile:      recfilter.DefaultPath,
		MarkerSetsFile:     markers.DefaultPath,
		AccessThreshold:    recfilter.DefaultAccessThreshold,
		StabilityThreshold: recfilter.DefaultStabilityThreshold,
		FilterShape:        shapemetrics.Proxy,
		LogLevel:           "info",
	}
}

// Validate ensures the settings are usable.
func (s *Settings) Validate(path string) error {
	if s.Scene == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "scene")
	}
	if s.RecFilterFile == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "rec_filter_file")
	}
	if s.MarkerSetsFile == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "marker_sets_file")
	}
	for field, value := range map[string]int{
		"width":            s.Width,
		"height":           s.Height,
		"num_environments": s.NumEnvironments,
	} {
		if value < 1 {
			return utils.NewConfigValidationError(path, errors.Errorf("%q must be at least 1, got %d", field, value))
		}
	}
	if s.FPS <= 0 {
		return utils.NewConfigValidationError(path, errors.Errorf(`"fps" must be positive, got %v`, s.FPS))
	}
	for field, value := range map[string]float64{
		"rec_access_filter_threshold":    s.AccessThreshold,
		"rec_stability_filter_threshold": s.StabilityThreshold,
	} {
		if value < 0 || value > 1 {
			return utils.NewConfigValidationError(path, errors.Errorf("%q must be in [0, 1], got %v", field, value))
		}
	}
	if !lo.Contains([]string{shapemetrics.Proxy, shapemetrics.GroundTruth}, s.FilterShape) {
		return utils.NewConfigValidationError(path,
			errors.Errorf(`"rec_filter_shape" must be %q or %q, got %q`, shapemetrics.Proxy, shapemetrics.GroundTruth, s.FilterShape))
	}
	if _, err := logging.LevelFromString(s.LogLevel); err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	return nil
}

// Level is the configured log level.
func (s *Settings) Level() logging.Level {
	if s.Debug {
		return logging.DEBUG
	}
	level, err := logging.LevelFromString(s.LogLevel)
	if err != nil {
		return logging.INFO
	}
	return level
}

// ClassifyOptions returns the automatic filter options the settings describe.
func (s *Settings) ClassifyOptions() recfilter.Options {
	return recfilter.Options{
		AccessThreshold:    s.AccessThreshold,
		StabilityThreshold: s.StabilityThreshold,
		Shape:              s.FilterShape,
	}
}
