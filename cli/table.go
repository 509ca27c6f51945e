package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"go.viam.com/laneplanner/lane"
	"go.viam.com/laneplanner/spatialmath"
	"go.viam.com/laneplanner/store"
)

// writeWaypointTable prints one row per waypoint of every lane.
func writeWaypointTable(w io.Writer, c *lane.Collection) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Lane", "#", "X", "Y", "Yaw (deg)", "Speed (m/s)"})
	for li, l := range c.Lanes {
		for wi, wp := range l.Waypoints {
			t.AppendRow(table.Row{
				li,
				wi,
				fmt.Sprintf("%.3f", wp.Position.X),
				fmt.Sprintf("%.3f", wp.Position.Y),
				fmt.Sprintf("%.1f", spatialmath.RadToDeg(wp.Yaw)),
				fmt.Sprintf("%.2f", wp.Speed),
			})
		}
	}
	t.Render()
}

// writeHistoryTable prints one row per recorded collection, newest first.
func writeHistoryTable(w io.Writer, records []store.Record) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "ID", "Published", "Waypoints", "Length"})
	for i, rec := range records {
		var waypoints int
		var length float64
		for _, l := range rec.Lanes {
			waypoints += len(l.Waypoints)
			length += l.Length()
		}
		t.AppendRow(table.Row{
			i,
			rec.ID,
			rec.PublishedAt.UTC().Format(time.RFC3339),
			waypoints,
			fmt.Sprintf("%.2f", length),
		})
	}
	t.Render()
}
