package visualization

import (
	"image"
	"image/color"
	"io"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"

	"go.viam.com/laneplanner/lane"
	"go.viam.com/laneplanner/occupancy"
)

var (
	freeColor     = color.RGBA{255, 255, 255, 255}
	occupiedColor = color.RGBA{40, 40, 40, 255}
	laneColor     = color.RGBA{220, 30, 30, 255}
	waypointColor = color.RGBA{30, 30, 220, 255}
)

// Render draws the grid with scale pixels per cell and overlays the lanes. The image has y
// pointing up, like the map.
func Render(grid *occupancy.Grid, lanes *lane.Collection, scale int) (image.Image, error) {
	if grid == nil {
		return nil, errors.New("no grid to render")
	}
	if scale <= 0 {
		scale = 1
	}
	w, h := grid.Width*scale, grid.Height*scale
	dc := gg.NewContext(w, h)
	dc.SetColor(freeColor)
	dc.Clear()

	dc.SetColor(occupiedColor)
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			if grid.At(x, y) != 0 {
				dc.DrawRectangle(float64(x*scale), float64(h-(y+1)*scale), float64(scale), float64(scale))
			}
		}
	}
	dc.Fill()

	toPixel := func(wx, wy float64) (float64, float64) {
		px := (wx - grid.Origin.X) / grid.CellSize * float64(scale)
		py := (wy - grid.Origin.Y) / grid.CellSize * float64(scale)
		return px, float64(h) - py
	}
	if lanes != nil {
		for _, l := range lanes.Lanes {
			dc.SetColor(laneColor)
			dc.SetLineWidth(float64(scale) / 4)
			for i, wp := range l.Waypoints {
				px, py := toPixel(wp.Position.X, wp.Position.Y)
				if i == 0 {
					dc.MoveTo(px, py)
				} else {
					dc.LineTo(px, py)
				}
			}
			dc.Stroke()

			dc.SetColor(waypointColor)
			for _, wp := range l.Waypoints {
				px, py := toPixel(wp.Position.X, wp.Position.Y)
				dc.DrawCircle(px, py, float64(scale)/3)
			}
			dc.Fill()
		}
	}
	return dc.Image(), nil
}

// RenderPNG writes Render's image to w as a PNG.
func RenderPNG(w io.Writer, grid *occupancy.Grid, lanes *lane.Collection, scale int) error {
	img, err := Render(grid, lanes, scale)
	if err != nil {
		return err
	}
	dc := gg.NewContextForImage(img)
	return dc.EncodePNG(w)
}
