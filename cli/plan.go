package cli

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"go.viam.com/laneplanner/lane"
	"go.viam.com/laneplanner/occupancy"
	"go.viam.com/laneplanner/planner"
	"go.viam.com/laneplanner/ros"
	"go.viam.com/laneplanner/spatialmath"
	"go.viam.com/laneplanner/visualization"
)

// PlanAction is the corresponding action for 'plan'.
func PlanAction(c *cli.Context) error {
	logger := newLogger(c)
	cfg, err := loadConfig(c, logger)
	if err != nil {
		return err
	}
	grid, err := readMap(c.Path(mapFlag))
	if err != nil {
		return err
	}
	start, err := parsePose(c.String(startFlag))
	if err != nil {
		return errors.Wrap(err, "invalid --start")
	}
	goal, err := parsePose(c.String(goalFlag))
	if err != nil {
		return errors.Wrap(err, "invalid --goal")
	}

	conf := cfg.Planner
	conf.Manual = true
	p, err := planner.New(conf, planner.Options{}, logger.Sublogger("planner"))
	if err != nil {
		return err
	}
	if _, err := p.SetMap(c.Context, grid); err != nil {
		return err
	}
	if _, err := p.SetStart(c.Context, start); err != nil {
		return err
	}
	lanes, err := p.SetGoal(c.Context, goal)
	if err != nil {
		return err
	}
	session := p.Session()
	switch {
	case !session.ValidStart:
		return errors.Errorf("start %s is outside the map", start)
	case !session.ValidGoal:
		return errors.Errorf("goal %s is outside the map", goal)
	case lanes == nil:
		return errors.New("no path found")
	}

	if c.Bool(tableFlag) {
		writeWaypointTable(c.App.Writer, lanes)
	} else if err := json.NewEncoder(c.App.Writer).Encode(ros.NewLaneArray(lanes)); err != nil {
		return err
	}
	if path := c.Path(pngFlag); path != "" {
		return writePNG(path, grid, lanes, c.Int(scaleFlag))
	}
	return nil
}

func readMap(path string) (*occupancy.Grid, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var msg ros.OccupancyGrid
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, errors.Wrapf(err, "decoding map %q", path)
	}
	return msg.Grid()
}

// parsePose parses "x,y,yaw" with yaw in radians.
func parsePose(s string) (spatialmath.Pose, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return spatialmath.Pose{}, errors.Errorf("expected x,y,yaw but got %q", s)
	}
	var vals [3]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return spatialmath.Pose{}, err
		}
		vals[i] = v
	}
	return spatialmath.NewPose(vals[0], vals[1], vals[2]), nil
}

func writePNG(path string, grid *occupancy.Grid, lanes *lane.Collection, scale int) (err error) {
	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	return visualization.RenderPNG(f, grid, lanes, scale)
}
