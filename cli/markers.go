package cli

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"

	"go.viam.com/sceneviewer/markers"
)

// MarkersShowAction prints the marker sets in a marker file.
func MarkersShowAction(c *cli.Context) error {
	return withSession(markersShow)(c)
}

func markersShow(c *cli.Context, s *session) error {
	path := c.String(markersFlagFile)
	if path == "" {
		path = s.settings.MarkerSetsFile
	}
	sets, err := (&markers.JSONStore{Path: path}).Load(c.Context)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Object", "Link", "Set", "Points"})
	for _, object := range sets.Objects() {
		byLink := sets.Object(object)
		for _, link := range sets.Links(object) {
			for _, set := range byLink[link] {
				t.AppendRow(table.Row{object, link, set.Name, len(set.Points)})
			}
		}
	}
	printf(c.App.Writer, "%s", path)
	printf(c.App.Writer, "%s", t.Render())
	return nil
}
