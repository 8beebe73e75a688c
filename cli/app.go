// Package cli contains the sceneviewer command line application.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"

	"go.viam.com/sceneviewer/shapemetrics"
)

// Flags.
const (
	generalFlagConfig  = "config"
	generalFlagDebug   = "debug"
	generalFlagLogFile = "log-file"

	filterFlagFile               = "file"
	filterFlagScene              = "scene"
	filterFlagMetrics            = "metrics"
	filterFlagOut                = "out"
	filterFlagAccessThreshold    = "access-threshold"
	filterFlagStabilityThreshold = "stability-threshold"
	filterFlagShape              = "shape"
	filterFlagKeepManual         = "keep-manual"

	metricsFlagFile  = "file"
	metricsFlagShape = "shape"

	viewFlagScene      = "scene"
	viewFlagMetrics    = "metrics"
	viewFlagFPS        = "fps"
	viewFlagDuration   = "duration"
	viewFlagSimulate   = "simulate"
	viewFlagTransforms = "transforms"
	viewFlagExport     = "export"

	markersFlagFile = "file"
)

var filterFileFlag = &cli.StringFlag{
	Name:    filterFlagFile,
	Aliases: []string{"f"},
	Usage:   "receptacle filter `FILE`; defaults to the configured rec_filter_file",
}

var app = &cli.App{
	Name:            "sceneviewer",
	Usage:           "curate receptacle annotations for simulation scenes",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    generalFlagConfig,
			Aliases: []string{"c"},
			Usage:   "load settings from `FILE`",
		},
		&cli.BoolFlag{
			Name:    generalFlagDebug,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging",
		},
		&cli.StringFlag{
			Name:  generalFlagLogFile,
			Usage: "also write logs to a rotating `FILE`",
		},
	},
	Commands: []*cli.Command{
		{
			Name:            "filter",
			Usage:           "work with receptacle filter annotations",
			HideHelpCommand: true,
			Subcommands: []*cli.Command{
				{
					Name:  "classify",
					Usage: "classify the receptacles of a scene by their shape metrics and export the result",
					UsageText: "sceneviewer filter classify --scene <scene.json> --metrics <metrics.json> " +
						"[other options]",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:     filterFlagScene,
							Usage:    "static scene description `FILE`",
							Required: true,
						},
						&cli.StringFlag{
							Name:     filterFlagMetrics,
							Usage:    "shape metrics `FILE`",
							Required: true,
						},
						&cli.StringFlag{
							Name:  filterFlagOut,
							Usage: "where to export the filter state; defaults to the configured rec_filter_file",
						},
						&cli.Float64Flag{
							Name:  filterFlagAccessThreshold,
							Usage: "minimum receptacle access score",
						},
						&cli.Float64Flag{
							Name:  filterFlagStabilityThreshold,
							Usage: "minimum receptacle stability success ratio",
						},
						&cli.StringFlag{
							Name:  filterFlagShape,
							Usage: "shape variant to filter on: " + shapemetrics.Proxy + " or " + shapemetrics.GroundTruth,
						},
						&cli.BoolFlag{
							Name:  filterFlagKeepManual,
							Usage: "start from the existing output file so manual overrides are kept",
							Value: true,
						},
					},
					Action: FilterClassifyAction,
				},
				{
					Name:   "show",
					Usage:  "print the receptacles in each filter bucket",
					Flags:  []cli.Flag{filterFileFlag},
					Action: FilterShowAction,
				},
				{
					Name:      "toggle",
					Usage:     "toggle the manual filter of receptacles",
					ArgsUsage: "<receptacle unique name>...",
					Flags:     []cli.Flag{filterFileFlag},
					Action:    FilterToggleAction,
				},
				{
					Name:   "watch",
					Usage:  "print a summary whenever the filter file changes",
					Flags:  []cli.Flag{filterFileFlag},
					Action: FilterWatchAction,
				},
			},
		},
		{
			Name:            "metrics",
			Usage:           "work with receptacle shape metrics",
			HideHelpCommand: true,
			Subcommands: []*cli.Command{
				{
					Name:  "show",
					Usage: "print receptacle access and stability scores",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:     metricsFlagFile,
							Aliases:  []string{"f"},
							Usage:    "shape metrics `FILE`",
							Required: true,
						},
						&cli.StringFlag{
							Name:  metricsFlagShape,
							Usage: "shape variant to show",
							Value: shapemetrics.Proxy,
						},
					},
					Action: MetricsShowAction,
				},
			},
		},
		{
			Name:            "markers",
			Usage:           "work with marker sets of articulated objects",
			HideHelpCommand: true,
			Subcommands: []*cli.Command{
				{
					Name:  "show",
					Usage: "print every marker set and its point count",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:    markersFlagFile,
							Aliases: []string{"f"},
							Usage:   "marker sets `FILE`; defaults to the configured marker_sets_file",
						},
					},
					Action: MarkersShowAction,
				},
			},
		},
		{
			Name:  "view",
			Usage: "run a headless viewer session over a static scene",
			Description: "Loads the scene's receptacles and filter file, classifies them once shape metrics are " +
				"available, runs the frame loop for the given duration and prints the final status.",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  viewFlagScene,
					Usage: "static scene description `FILE`; defaults to the configured scene_file",
				},
				&cli.StringFlag{
					Name:  viewFlagMetrics,
					Usage: "shape metrics `FILE`; defaults to the configured metrics_file",
				},
				&cli.Float64Flag{
					Name:  viewFlagFPS,
					Usage: "frame and physics step rate",
				},
				&cli.DurationFlag{
					Name:  viewFlagDuration,
					Usage: "how long to run the frame loop",
					Value: defaultViewDuration,
				},
				&cli.BoolFlag{
					Name:  viewFlagSimulate,
					Usage: "step physics every frame",
				},
				&cli.StringFlag{
					Name:  viewFlagTransforms,
					Usage: "object transforms `FILE` to apply at start and save at exit",
				},
				&cli.BoolFlag{
					Name:  viewFlagExport,
					Usage: "export the filter state at exit",
				},
			},
			Action: ViewAction,
		},
	},
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}
