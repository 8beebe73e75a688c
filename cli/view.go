package cli

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/sceneviewer/markers"
	"go.viam.com/sceneviewer/scene"
	"go.viam.com/sceneviewer/shapemetrics"
	"go.viam.com/sceneviewer/viewer"
)

const defaultViewDuration = time.Second

// ViewAction runs a headless viewer session over a static scene description.
func ViewAction(c *cli.Context) error {
	return withSession(view)(c)
}

func view(c *cli.Context, s *session) error {
	settings := s.settings
	scenePath := c.String(viewFlagScene)
	if scenePath == "" {
		scenePath = settings.SceneFile
	}
	if scenePath == "" {
		return errors.New("no scene file given; pass --scene or configure scene_file")
	}
	f, err := scene.ReadFile(scenePath)
	if err != nil {
		return err
	}
	static := scene.NewStatic(f)

	var provider shapemetrics.Provider
	metricsPath := c.String(viewFlagMetrics)
	if metricsPath == "" {
		metricsPath = settings.MetricsFile
	}
	if metricsPath != "" {
		metrics, err := shapemetrics.LoadFile(metricsPath)
		if err != nil {
			return err
		}
		provider = shapemetrics.NewStaticProvider(metrics)
	} else {
		warningf(c.App.ErrWriter, "no shape metrics given; receptacles will not be classified")
	}

	var transforms scene.TransformStore
	if path := c.String(viewFlagTransforms); path != "" {
		transforms = &scene.JSONTransformStore{Path: path}
	}

	fps := settings.FPS
	if c.IsSet(viewFlagFPS) {
		fps = c.Float64(viewFlagFPS)
	}
	classify := settings.ClassifyOptions()
	v, err := viewer.New(c.Context, static, transforms, provider, nil, viewer.Options{
		FPS:              fps,
		FilterPath:       settings.RecFilterFile,
		Classify:         &classify,
		ClutterTemplates: settings.ClutterTemplates,
		WatchFilterFile:  settings.WatchFilterFile,
		Markers:          &markers.JSONStore{Path: settings.MarkerSetsFile},
	}, s.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := v.Close(); err != nil {
			s.logger.Warnw("cannot close viewer", "error", err)
		}
	}()

	if transforms != nil {
		if _, err := v.LoadObjectTransforms(c.Context); err != nil {
			warningf(c.App.ErrWriter, "%v", err)
		}
	}
	if err := v.ReceptacleCommand(c.Context, viewer.Modifiers{}); err != nil {
		return err
	}
	if c.Bool(viewFlagSimulate) && !settings.DisablePhysics {
		v.ToggleSimulating()
	}

	ctx, cancel := context.WithTimeout(c.Context, c.Duration(viewFlagDuration))
	defer cancel()
	if err := v.Run(ctx); err != nil {
		return err
	}
	// the session may be shorter than one frame
	if v.FilterState() == nil && provider != nil {
		if err := v.ClassifyReceptacles(c.Context); err != nil {
			return err
		}
	}

	if c.Bool(viewFlagExport) {
		if err := v.ExportFilter(); err != nil {
			return err
		}
		printf(c.App.Writer, "exported filter state to %s", v.FilterPath())
	}
	if transforms != nil {
		if err := v.SaveObjectTransforms(c.Context); err != nil {
			return err
		}
	}

	printf(c.App.Writer, "%s", v.Status())
	printf(c.App.Writer, "Simulated: %s", static.Elapsed())
	if state := v.FilterState(); state != nil {
		printf(c.App.Writer, "%s", summaryTable(state.Summary()))
	}
	return nil
}
