package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/sceneviewer/receptacle"
	"go.viam.com/sceneviewer/recfilter"
	"go.viam.com/sceneviewer/scene"
	"go.viam.com/sceneviewer/shapemetrics"
)

var displayBuckets = []recfilter.Bucket{
	recfilter.Active,
	recfilter.ManuallyFiltered,
	recfilter.AccessFiltered,
	recfilter.StabilityFiltered,
	recfilter.HeightFiltered,
}

// FilterClassifyAction classifies a static scene's receptacles against a metrics file and
// exports the filter state.
func FilterClassifyAction(c *cli.Context) error {
	return withSession(filterClassify)(c)
}

func filterClassify(c *cli.Context, s *session) error {
	opts := s.settings.ClassifyOptions()
	if c.IsSet(filterFlagAccessThreshold) {
		opts.AccessThreshold = c.Float64(filterFlagAccessThreshold)
	}
	if c.IsSet(filterFlagStabilityThreshold) {
		opts.StabilityThreshold = c.Float64(filterFlagStabilityThreshold)
	}
	if c.IsSet(filterFlagShape) {
		opts.Shape = c.String(filterFlagShape)
	}
	if opts.Shape != shapemetrics.Proxy && opts.Shape != shapemetrics.GroundTruth {
		return errors.Errorf("unknown shape variant %q", opts.Shape)
	}
	out := c.String(filterFlagOut)
	if out == "" {
		out = s.settings.RecFilterFile
	}

	f, err := scene.ReadFile(c.String(filterFlagScene))
	if err != nil {
		return err
	}
	metrics, err := shapemetrics.LoadFile(c.String(filterFlagMetrics))
	if err != nil {
		return err
	}
	idx, err := receptacle.Discover(c.Context, f, f, s.logger)
	if err != nil {
		return err
	}

	var state *recfilter.State
	if c.Bool(filterFlagKeepManual) {
		switch existing, err := recfilter.Import(out); {
		case err == nil:
			state = existing
		case errors.Is(err, os.ErrNotExist):
		default:
			return err
		}
	}
	state, err = recfilter.Classify(state, idx, shapemetrics.NewStaticProvider(metrics), opts, s.logger)
	if err != nil {
		return err
	}
	if err := state.Export(out); err != nil {
		return err
	}
	printf(c.App.Writer, "classified %d receptacles into %s", idx.Len(), out)
	printf(c.App.Writer, "%s", summaryTable(state.Summary()))
	return nil
}

// FilterShowAction prints the receptacles in each bucket of a filter file.
func FilterShowAction(c *cli.Context) error {
	return withSession(filterShow)(c)
}

func filterShow(c *cli.Context, s *session) error {
	path := s.filterPath(c)
	state, err := recfilter.Import(path)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.Style().Format.Footer = text.FormatDefault
	t.AppendHeader(table.Row{"Bucket", "Count", "Receptacles"})
	for _, b := range displayBuckets {
		names := state.Set(b).Names()
		t.AppendRow(table.Row{bucketName(b), len(names), strings.Join(names, "\n")})
	}
	t.AppendFooter(table.Row{"Thresholds", "", fmt.Sprintf("access %v, stability %v",
		state.AccessThreshold, state.StabilityThreshold)})
	printf(c.App.Writer, "%s", path)
	printf(c.App.Writer, "%s", t.Render())
	return nil
}

// FilterToggleAction toggles the manual filter of each named receptacle and re-exports the
// filter file.
func FilterToggleAction(c *cli.Context) error {
	return withSession(filterToggle)(c)
}

func filterToggle(c *cli.Context, s *session) error {
	if c.NArg() == 0 {
		return errors.New("no receptacles given to toggle")
	}
	path := s.filterPath(c)
	state, err := recfilter.Import(path)
	if err != nil {
		return err
	}
	for _, name := range c.Args().Slice() {
		if _, _, err := receptacle.SplitUniqueName(name); err != nil {
			return err
		}
		if state.Bucket(name) == recfilter.Unknown {
			warningf(c.App.ErrWriter, "%q is not in the filter file; it will be manually filtered", name)
		}
		printf(c.App.Writer, "%s: %s", name, bucketName(state.ToggleManual(name)))
	}
	return state.Export(path)
}

// FilterWatchAction prints a bucket summary every time the filter file changes until the
// command is interrupted.
func FilterWatchAction(c *cli.Context) error {
	return withSession(filterWatch)(c)
}

func filterWatch(c *cli.Context, s *session) error {
	w, err := recfilter.NewWatcher(s.filterPath(c), s.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := w.Close(); err != nil {
			s.logger.Warnw("cannot close filter file watcher", "error", err)
		}
	}()
	printf(c.App.Writer, "watching %s", w.Path())
	for {
		select {
		case <-c.Context.Done():
			return nil
		case <-w.Changes():
			state, err := recfilter.Import(w.Path())
			if err != nil {
				warningf(c.App.ErrWriter, "%v", err)
				continue
			}
			printf(c.App.Writer, "%s", state.Summary())
		}
	}
}

func summaryTable(summary recfilter.Summary) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Bucket", "Count"})
	counts := map[recfilter.Bucket]int{
		recfilter.Active:            summary.Active,
		recfilter.ManuallyFiltered:  summary.ManuallyFiltered,
		recfilter.AccessFiltered:    summary.AccessFiltered,
		recfilter.StabilityFiltered: summary.StabilityFiltered,
		recfilter.HeightFiltered:    summary.HeightFiltered,
	}
	for _, b := range displayBuckets {
		t.AppendRow(table.Row{bucketName(b), counts[b]})
	}
	return t.Render()
}
