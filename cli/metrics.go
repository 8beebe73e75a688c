package cli

import (
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/montanaflynn/stats"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"

	"go.viam.com/sceneviewer/shapemetrics"
)

// MetricsShowAction prints the access and stability score of every receptacle in a metrics
// file for one shape variant.
func MetricsShowAction(c *cli.Context) error {
	return withSession(metricsShow)(c)
}

func metricsShow(c *cli.Context, s *session) error {
	metrics, err := shapemetrics.LoadFile(c.String(metricsFlagFile))
	if err != nil {
		return err
	}
	variant := c.String(metricsFlagShape)

	t := table.NewWriter()
	t.Style().Format.Footer = text.FormatDefault
	t.AppendHeader(table.Row{"Object", "Receptacle", "Access", "Stability", "Samples"})
	var accessScores, stabilityScores stats.Float64Data
	objects := lo.Keys(metrics)
	sort.Strings(objects)
	for _, object := range objects {
		if metrics[object] == nil {
			continue
		}
		receptacles := lo.Keys(metrics[object].Receptacles)
		sort.Strings(receptacles)
		for _, name := range receptacles {
			rm, ok := metrics.Receptacle(object, name)
			if !ok {
				continue
			}
			access, stability := "-", "-"
			if res, ok := rm.Shape(variant); ok {
				if res.Access != nil {
					access = fmt.Sprintf("%.3f", res.Access.ReceptacleAccessScore)
					accessScores = append(accessScores, res.Access.ReceptacleAccessScore)
				}
				if res.Stability != nil {
					stability = fmt.Sprintf("%.3f", res.Stability.SuccessRatio)
					stabilityScores = append(stabilityScores, res.Stability.SuccessRatio)
				}
			}
			t.AppendRow(table.Row{object, name, access, stability, len(rm.SamplePoints)})
		}
	}
	t.AppendFooter(table.Row{"Mean", "", meanScore(accessScores), meanScore(stabilityScores), ""})
	s.logger.Debugw("showing shape metrics", "objects", len(objects), "shape", variant)
	printf(c.App.Writer, "%s", t.Render())
	return nil
}

// meanScore formats the mean of scores, or "-" when there are none.
func meanScore(scores stats.Float64Data) string {
	mean, err := stats.Mean(scores)
	if err != nil {
		return "-"
	}
	return fmt.Sprintf("%.3f", mean)
}
