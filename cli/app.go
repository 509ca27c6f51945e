// Package cli contains the laneplanner command line.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

const (
	// Flags.
	configFlag = "config"
	debugFlag  = "debug"
	mapFlag    = "map"
	startFlag  = "start"
	goalFlag   = "goal"
	pngFlag    = "png"
	scaleFlag  = "scale"
	bagFlag    = "bag"
	tableFlag  = "table"
	limitFlag  = "limit"
)

// NewApp returns the laneplanner application writing lanes to out and logs to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "laneplanner",
		Usage:           "plan drivable lanes over occupancy grids",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    configFlag,
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:    debugFlag,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "plan from JSON-lines events read on stdin, printing every published lane array",
				UsageText: "laneplanner [--config FILE] run",
				Action:    RunAction,
			},
			{
				Name:      "plan",
				Usage:     "plan once between two poses on a map",
				UsageText: "laneplanner plan --map FILE --start x,y,yaw --goal x,y,yaw [--png FILE]",
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:     mapFlag,
						Usage:    "occupancy grid message as JSON",
						Required: true,
					},
					&cli.StringFlag{
						Name:     startFlag,
						Usage:    "start pose in map coordinates, yaw in radians",
						Required: true,
					},
					&cli.StringFlag{
						Name:     goalFlag,
						Usage:    "goal pose in map coordinates, yaw in radians",
						Required: true,
					},
					&cli.PathFlag{
						Name:  pngFlag,
						Usage: "also render the map and lane to `FILE`",
					},
					&cli.IntFlag{
						Name:  scaleFlag,
						Usage: "pixels per grid cell in the rendered image",
						Value: 4,
					},
					&cli.BoolFlag{
						Name:  tableFlag,
						Usage: "print waypoints as a table instead of JSON",
					},
				},
				Action: PlanAction,
			},
			{
				Name:      "replay",
				Usage:     "feed a rosbag through the planner, printing every published lane array",
				UsageText: "laneplanner [--config FILE] replay --bag FILE",
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:     bagFlag,
						Usage:    "rosbag to replay",
						Required: true,
					},
				},
				Action: ReplayAction,
			},
			{
				Name:      "history",
				Usage:     "list lane collections recorded in the configured store",
				UsageText: "laneplanner --config FILE history [--limit N]",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  limitFlag,
						Usage: "show at most `N` collections",
						Value: 20,
					},
				},
				Action: HistoryAction,
			},
			{
				Name:   "schema",
				Usage:  "print the JSON schema of the configuration file",
				Action: SchemaAction,
			},
		},
	}
}
